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


package features

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"k8s.io/component-base/featuregate"
	featuregatetesting "k8s.io/component-base/featuregate/testing"
)

func TestDefaults(t *testing.T) {
	assert.True(t, Enabled(RestrictionEvents))
	assert.True(t, Enabled(HangupWake))
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		name    string
		feature featuregate.Feature
		enabled bool
	}{
		{name: "events disabled", feature: RestrictionEvents, enabled: false},
		{name: "hangup disabled", feature: HangupWake, enabled: false},
		{name: "events enabled", feature: RestrictionEvents, enabled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			featuregatetesting.SetFeatureGateDuringTest(t, DefaultFeatureGate, tt.feature, tt.enabled)
			assert.Equal(t, tt.enabled, Enabled(tt.feature))
		})
	}
}

func TestAddFlag(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlag(fs)
	require.NotNil(t, fs.Lookup("feature-gates"))
}

