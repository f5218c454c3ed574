// Copyright The Renewable Simulator Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package simulator

import (
	"context"
	"errors"
	"net"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// Reason classifies a failed API call for logs and metrics.
type Reason string

const (
	ReasonNotFound    Reason = "NotFound"
	ReasonConflict    Reason = "Conflict"
	ReasonUnavailable Reason = "Unavailable"
	ReasonUnknown     Reason = "Unknown"
)

// ReasonFor classifies err. None of the reasons is retried within a cycle;
// the classification only changes how the failure is reported.
func ReasonFor(err error) Reason {
	var netErr net.Error
	switch {
	case apierrors.IsNotFound(err):
		return ReasonNotFound
	case apierrors.IsConflict(err), apierrors.IsAlreadyExists(err):
		return ReasonConflict
	case apierrors.IsServerTimeout(err),
		apierrors.IsTimeout(err),
		apierrors.IsServiceUnavailable(err),
		apierrors.IsInternalError(err),
		apierrors.IsTooManyRequests(err),
		apierrors.IsUnauthorized(err),
		apierrors.IsForbidden(err),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr):
		return ReasonUnavailable
	default:
		return ReasonUnknown
	}
}
