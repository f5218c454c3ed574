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


package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"k8s.io/client-go/rest"
)

const sampleKubeconfig = `
apiVersion: v1
kind: Config
clusters:
- cluster:
    server: https://localhost:6443
  name: test-cluster
contexts:
- context:
    cluster: test-cluster
    user: test-user
  name: test-context
current-context: test-context
users:
- name: test-user
  user:
    token: test-token
`

func writeKubeconfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kubeconfig")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// isolate keeps the default loading rules and in-cluster detection away
// from the machine running the tests.
func isolate(t *testing.T) {
	t.Setenv("KUBECONFIG", filepath.Join(t.TempDir(), "missing"))
	t.Setenv("KUBERNETES_SERVICE_HOST", "")
	t.Setenv("KUBERNETES_SERVICE_PORT", "")
}

func fixed(name string, config *rest.Config, err error) Provider {
	return provider{name: name, load: func() (*rest.Config, error) { return config, err }}
}

func TestKubeconfig(t *testing.T) {
	t.Run("loads explicit file", func(t *testing.T) {
		config, err := Kubeconfig(writeKubeconfig(t, sampleKubeconfig)).Config()
		require.NoError(t, err)
		assert.Equal(t, "https://localhost:6443", config.Host)
		assert.Equal(t, "test-token", config.BearerToken)
	})

	t.Run("empty path skips", func(t *testing.T) {
		_, err := Kubeconfig("").Config()
		assert.ErrorIs(t, err, ErrSkip)
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := Kubeconfig("/nonexistent/path/config").Config()
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrSkip)
	})

	t.Run("invalid content fails", func(t *testing.T) {
		_, err := Kubeconfig(writeKubeconfig(t, "invalid: yaml: content: [")).Config()
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrSkip)
	})
}

func TestInCluster_SkipsOutsidePod(t *testing.T) {
	isolate(t)
	_, err := InCluster().Config()
	assert.ErrorIs(t, err, ErrSkip)
}

func TestDefaultKubeconfig(t *testing.T) {
	t.Run("uses KUBECONFIG", func(t *testing.T) {
		isolate(t)
		t.Setenv("KUBECONFIG", writeKubeconfig(t, sampleKubeconfig))

		config, err := DefaultKubeconfig().Config()
		require.NoError(t, err)
		assert.Equal(t, "https://localhost:6443", config.Host)
	})

	t.Run("skips without any config", func(t *testing.T) {
		isolate(t)
		_, err := DefaultKubeconfig().Config()
		assert.ErrorIs(t, err, ErrSkip)
	})
}

func TestChain_Load(t *testing.T) {
	first := &rest.Config{Host: "https://first"}
	second := &rest.Config{Host: "https://second"}
	boom := errors.New("boom")

	tests := map[string]struct {
		chain    Chain
		wantHost string
		wantErr  error
	}{
		"first usable provider wins": {
			chain:    Chain{fixed("a", first, nil), fixed("b", second, nil)},
			wantHost: "https://first",
		},
		"skips fall through": {
			chain:    Chain{fixed("a", nil, ErrSkip), fixed("b", second, nil)},
			wantHost: "https://second",
		},
		"hard failure stops the chain": {
			chain:   Chain{fixed("a", nil, boom), fixed("b", second, nil)},
			wantErr: boom,
		},
		"all skipped": {
			chain:   Chain{fixed("a", nil, ErrSkip), fixed("b", nil, ErrSkip)},
			wantErr: ErrNoCredentials,
		},
		"empty chain": {
			wantErr: ErrNoCredentials,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			config, err := tt.chain.Load()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, config)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, config.Host)
		})
	}
}

func TestChain_AggregatesSkipReasons(t *testing.T) {
	_, err := Chain{fixed("a", nil, ErrSkip), fixed("b", nil, ErrSkip)}.Load()
	require.ErrorIs(t, err, ErrNoCredentials)

	var joined interface{ Unwrap() []error }
	require.ErrorAs(t, err, &joined)
	causes := multierr.Errors(joined.Unwrap()[1])
	require.Len(t, causes, 2)
	assert.Contains(t, causes[0].Error(), "a:")
	assert.Contains(t, causes[1].Error(), "b:")
}

func TestDefaultChain(t *testing.T) {
	t.Run("explicit kubeconfig wins", func(t *testing.T) {
		isolate(t)
		t.Setenv("KUBECONFIG", writeKubeconfig(t, `
apiVersion: v1
kind: Config
clusters:
- cluster:
    server: https://from-env:6443
  name: env
contexts:
- context:
    cluster: env
    user: env
  name: env
current-context: env
users:
- name: env
  user:
    token: env-token
`))

		config, err := DefaultChain(writeKubeconfig(t, sampleKubeconfig)).Load()
		require.NoError(t, err)
		assert.Equal(t, "https://localhost:6443", config.Host)
	})

	t.Run("falls back to KUBECONFIG", func(t *testing.T) {
		isolate(t)
		t.Setenv("KUBECONFIG", writeKubeconfig(t, sampleKubeconfig))

		config, err := DefaultChain("").Load()
		require.NoError(t, err)
		assert.Equal(t, "https://localhost:6443", config.Host)
	})

	t.Run("nothing available", func(t *testing.T) {
		isolate(t)
		_, err := DefaultChain("").Load()
		assert.ErrorIs(t, err, ErrNoCredentials)
	})
}

func TestTune(t *testing.T) {
	original := &rest.Config{Host: "https://localhost:6443"}

	tuned := Tune(original, 25, 50, "renewable-simulator")
	assert.Equal(t, float32(25), tuned.QPS)
	assert.Equal(t, 50, tuned.Burst)
	assert.Equal(t, "renewable-simulator", tuned.UserAgent)
	assert.Equal(t, "https://localhost:6443", tuned.Host)
	assert.Zero(t, original.QPS, "the input config is not modified")
}
