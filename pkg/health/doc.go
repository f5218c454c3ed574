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

// Package health provides liveness and readiness probes.
//
// Components expose a Checker; a Probe aggregates checkers and serves the
// result over HTTP for the kubelet:
//
//	probe := health.NewProbe(5*time.Second, controller.LivenessChecker())
//	mux.Handle("/healthz", probe)
//
// Appending ?verbose to the request returns the per-component status as JSON.
package health
