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

package health

import (
	"context"
	"fmt"
	"time"
)

// Checker reports the health of one component.
type Checker interface {
	// Name returns the unique name of the component.
	Name() string

	// Check returns the current status. It must honour ctx cancellation.
	Check(ctx context.Context) Status
}

// Status is the result of a single check.
type Status struct {
	Healthy   bool      `json:"healthy"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Healthy returns a healthy Status stamped with the current time.
func Healthy(message string) Status {
	return Status{Healthy: true, Message: message, Timestamp: time.Now()}
}

// Unhealthy returns an unhealthy Status stamped with the current time.
func Unhealthy(message string) Status {
	return Status{Healthy: false, Message: message, Timestamp: time.Now()}
}

// String returns a human-readable representation of the status.
func (s Status) String() string {
	status := "UNHEALTHY"
	if s.Healthy {
		status = "HEALTHY"
	}
	return fmt.Sprintf("[%s] %s (checked at %s)", status, s.Message, s.Timestamp.Format(time.RFC3339))
}

type funcChecker struct {
	name  string
	check func(ctx context.Context) Status
}

// NewChecker wraps check as a named Checker.
func NewChecker(name string, check func(ctx context.Context) Status) Checker {
	return &funcChecker{name: name, check: check}
}

func (f *funcChecker) Name() string {
	return f.name
}

func (f *funcChecker) Check(ctx context.Context) Status {
	if f.check == nil {
		return Unhealthy(fmt.Sprintf("no health check function defined for %s", f.name))
	}
	return f.check(ctx)
}
