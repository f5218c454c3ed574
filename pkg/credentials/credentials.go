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


// Package credentials resolves the REST configuration used to reach the
// cluster. Providers are tried in order and the first usable one wins.
package credentials

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/klog/v2"
)

var (
	// ErrSkip is returned by a provider that does not apply to the current
	// environment. The chain moves on to the next provider.
	ErrSkip = errors.New("provider not applicable")

	// ErrNoCredentials is returned when every provider was skipped.
	ErrNoCredentials = errors.New("no usable cluster credentials found")
)

// Provider produces a REST configuration.
type Provider interface {
	// Name identifies the provider in logs and errors.
	Name() string

	// Config returns the configuration, an error wrapping ErrSkip, or any
	// other error which aborts the chain.
	Config() (*rest.Config, error)
}

type provider struct {
	name string
	load func() (*rest.Config, error)
}

func (p provider) Name() string                  { return p.name }
func (p provider) Config() (*rest.Config, error) { return p.load() }

// Kubeconfig loads an explicitly named kubeconfig file. An empty path skips.
// A path that cannot be loaded is an error, not a skip.
func Kubeconfig(path string) Provider {
	return provider{
		name: "kubeconfig",
		load: func() (*rest.Config, error) {
			if path == "" {
				return nil, fmt.Errorf("%w: no kubeconfig path given", ErrSkip)
			}
			config, err := clientcmd.BuildConfigFromFlags("", path)
			if err != nil {
				return nil, fmt.Errorf("failed to load kubeconfig %q: %w", path, err)
			}
			return config, nil
		},
	}
}

// InCluster uses the service account of the pod the process runs in.
func InCluster() Provider {
	return provider{
		name: "in-cluster",
		load: func() (*rest.Config, error) {
			config, err := rest.InClusterConfig()
			if errors.Is(err, rest.ErrNotInCluster) {
				return nil, fmt.Errorf("%w: %v", ErrSkip, err)
			}
			if err != nil {
				return nil, fmt.Errorf("failed to load in-cluster config: %w", err)
			}
			return config, nil
		},
	}
}

// DefaultKubeconfig follows the standard loading rules: $KUBECONFIG, then
// ~/.kube/config.
func DefaultKubeconfig() Provider {
	return provider{
		name: "default-kubeconfig",
		load: func() (*rest.Config, error) {
			rules := clientcmd.NewDefaultClientConfigLoadingRules()
			config, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, &clientcmd.ConfigOverrides{}).ClientConfig()
			if clientcmd.IsEmptyConfig(err) {
				return nil, fmt.Errorf("%w: %v", ErrSkip, err)
			}
			if err != nil {
				return nil, fmt.Errorf("failed to load default kubeconfig: %w", err)
			}
			return config, nil
		},
	}
}

// Chain is an ordered list of providers.
type Chain []Provider

// DefaultChain is the lookup order of the binaries: the explicit kubeconfig,
// then in-cluster, then the default kubeconfig locations.
func DefaultChain(kubeconfig string) Chain {
	return Chain{Kubeconfig(kubeconfig), InCluster(), DefaultKubeconfig()}
}

// Load returns the configuration of the first provider that does not skip.
func (c Chain) Load() (*rest.Config, error) {
	var skipped error
	for _, p := range c {
		config, err := p.Config()
		switch {
		case err == nil:
			klog.V(2).InfoS("Loaded cluster credentials", "provider", p.Name(), "host", config.Host)
			return config, nil
		case errors.Is(err, ErrSkip):
			klog.V(4).InfoS("Skipping credential provider", "provider", p.Name(), "reason", err.Error())
			skipped = multierr.Append(skipped, fmt.Errorf("%s: %w", p.Name(), err))
		default:
			return nil, fmt.Errorf("credential provider %s failed: %w", p.Name(), err)
		}
	}
	if skipped == nil {
		return nil, ErrNoCredentials
	}
	return nil, fmt.Errorf("%w: %w", ErrNoCredentials, skipped)
}

// Tune applies client side rate limits and the user agent to config.
func Tune(config *rest.Config, qps float32, burst int, userAgent string) *rest.Config {
	config = rest.CopyConfig(config)
	config.QPS = qps
	config.Burst = burst
	if userAgent != "" {
		config.UserAgent = userAgent
	}
	return config
}
