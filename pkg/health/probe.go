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
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// ProbeResult aggregates the status of all checkers of a Probe.
type ProbeResult struct {
	Healthy      bool              `json:"healthy"`
	Message      string            `json:"message"`
	Components   map[string]Status `json:"components"`
	HealthyCount int               `json:"healthy_count"`
	TotalCount   int               `json:"total_count"`
	Timestamp    time.Time         `json:"timestamp"`
}

// Probe is an http.Handler that fails when any of its checkers is unhealthy.
type Probe struct {
	checkers []Checker
	timeout  time.Duration
}

// NewProbe returns a probe bounded by timeout per check.
func NewProbe(timeout time.Duration, checkers ...Checker) *Probe {
	return &Probe{
		checkers: checkers,
		timeout:  timeout,
	}
}

// Check runs every checker in order.
func (p *Probe) Check(ctx context.Context) ProbeResult {
	result := ProbeResult{
		Components: make(map[string]Status, len(p.checkers)),
		TotalCount: len(p.checkers),
		Timestamp:  time.Now(),
	}

	var issues []string
	for _, checker := range p.checkers {
		checkCtx, cancel := context.WithTimeout(ctx, p.timeout)
		status := checker.Check(checkCtx)
		cancel()

		result.Components[checker.Name()] = status
		if status.Healthy {
			result.HealthyCount++
		} else {
			issues = append(issues, fmt.Sprintf("%s: %s", checker.Name(), status.Message))
		}
	}

	sort.Strings(issues)
	result.Healthy = len(issues) == 0
	if result.Healthy {
		result.Message = fmt.Sprintf("all %d components are healthy", result.TotalCount)
	} else {
		result.Message = strings.Join(issues, "; ")
	}
	return result
}

// ServeHTTP implements http.Handler.
func (p *Probe) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	result := p.Check(r.Context())

	code := http.StatusOK
	if !result.Healthy {
		code = http.StatusServiceUnavailable
	}

	if _, verbose := r.URL.Query()["verbose"]; verbose {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(result)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	if result.Healthy {
		fmt.Fprint(w, "ok")
		return
	}
	fmt.Fprintf(w, "check failed: %s", result.Message)
}
