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

// DefaultThreshold is the share at or below which a node is restricted.
const DefaultThreshold = 0.3

// Decision is the placement policy derived for a node.
type Decision int

const (
	// DecisionAllow keeps the node schedulable; its taints are cleared.
	DecisionAllow Decision = iota
	// DecisionRestrict taints the node so workloads are evicted.
	DecisionRestrict
)

// String returns the decision name used in logs and metrics.
func (d Decision) String() string {
	switch d {
	case DecisionRestrict:
		return "Restrict"
	case DecisionAllow:
		return "Allow"
	default:
		return "Unknown"
	}
}

// Evaluator maps a formatted share onto a Decision.
type Evaluator struct {
	Threshold float64
}

// NewEvaluator returns an Evaluator using threshold.
func NewEvaluator(threshold float64) Evaluator {
	return Evaluator{Threshold: threshold}
}

// Evaluate restricts when share <= Threshold and allows otherwise.
// The result depends only on the formatted string, never on the raw sample.
func (e Evaluator) Evaluate(share string) (Decision, error) {
	v, err := ParseShare(share)
	if err != nil {
		return DecisionAllow, err
	}
	if v <= e.Threshold {
		return DecisionRestrict, nil
	}
	return DecisionAllow, nil
}
