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


// Package features holds the feature gates shared by the binaries.
package features

import (
	"github.com/spf13/pflag"

	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/component-base/featuregate"
)

const (
	// beta: v0.1
	// Records a Warning event on a node each time it is tainted for a low
	// renewable share.
	RestrictionEvents featuregate.Feature = "RestrictionEvents"

	// beta: v0.1
	// Starts the next simulation cycle immediately on SIGHUP.
	HangupWake featuregate.Feature = "HangupWake"
)

// DefaultMutableFeatureGate is the gate set by --feature-gates.
var DefaultMutableFeatureGate featuregate.MutableFeatureGate = featuregate.NewFeatureGate()

// DefaultFeatureGate is the read only view of DefaultMutableFeatureGate.
var DefaultFeatureGate featuregate.FeatureGate = DefaultMutableFeatureGate

func init() {
	utilruntime.Must(DefaultMutableFeatureGate.Add(defaultFeatureGates))
}

// defaultFeatureGates lists every known feature. To add a feature, define a
// key above and add it here.
var defaultFeatureGates = map[featuregate.Feature]featuregate.FeatureSpec{
	RestrictionEvents: {Default: true, PreRelease: featuregate.Beta},
	HangupWake:        {Default: true, PreRelease: featuregate.Beta},
}

// AddFlag registers --feature-gates on fs.
func AddFlag(fs *pflag.FlagSet) {
	DefaultMutableFeatureGate.AddFlag(fs)
}

// Enabled reports whether f is on in the default gate.
func Enabled(f featuregate.Feature) bool {
	return DefaultFeatureGate.Enabled(f)
}
