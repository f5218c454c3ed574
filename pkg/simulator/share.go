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
	"fmt"
	"math"
	"strconv"
)

// FormatShare renders a renewable share with one fractional digit.
// Halves round away from zero, so 0.25 becomes "0.3" and 0.24 becomes "0.2".
// Values outside [0, 1] are clamped first.
func FormatShare(v float64) string {
	switch {
	case math.IsNaN(v), v < 0:
		v = 0
	case v > 1:
		v = 1
	}
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
}

// ParseShare parses a share previously written by FormatShare.
func ParseShare(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid renewable share %q: %w", s, err)
	}
	if math.IsNaN(v) || v < 0 || v > 1 {
		return 0, fmt.Errorf("renewable share %q out of range [0, 1]", s)
	}
	return v, nil
}
