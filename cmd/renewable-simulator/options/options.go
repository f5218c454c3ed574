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


package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"k8s.io/apimachinery/pkg/labels"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/green-k8s/renewable-simulator/pkg/simulator"
)

// Options holds the renewable-simulator command line configuration.
type Options struct {
	// Kubeconfig is an explicit kubeconfig path. When empty the in-cluster
	// config and then the default kubeconfig locations are tried.
	Kubeconfig string

	Interval     time.Duration
	Threshold    float64
	NodeSelector string

	// Seed makes the simulated shares reproducible. Zero seeds from the clock.
	Seed uint64

	MetricsBindAddress string

	QPS   float32
	Burst int
}

// NewOptions returns the defaults.
func NewOptions() *Options {
	return &Options{
		Interval:           simulator.DefaultInterval,
		Threshold:          simulator.DefaultThreshold,
		MetricsBindAddress: ":8080",
		QPS:                20,
		Burst:              40,
	}
}

// AddFlags registers the options on fs.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Kubeconfig, "kubeconfig", o.Kubeconfig,
		"Path to a kubeconfig file. Falls back to the in-cluster config, then $KUBECONFIG and ~/.kube/config")
	fs.DurationVar(&o.Interval, "interval", o.Interval,
		"Pause between two simulation cycles")
	fs.Float64Var(&o.Threshold, "threshold", o.Threshold,
		"Renewable share at or below which nodes are tainted green=false:NoExecute")
	fs.StringVar(&o.NodeSelector, "node-selector", o.NodeSelector,
		"Label selector limiting the simulated nodes. Empty selects all nodes")
	fs.Uint64Var(&o.Seed, "seed", o.Seed,
		"Seed for the share generator. 0 seeds from the current time")
	fs.StringVar(&o.MetricsBindAddress, "metrics-bind-address", o.MetricsBindAddress,
		"Address serving /metrics, /healthz and /readyz. Empty disables the server")
	fs.Float32Var(&o.QPS, "qps", o.QPS,
		"Client side queries per second limit towards the API server")
	fs.IntVar(&o.Burst, "burst", o.Burst,
		"Client side burst limit towards the API server")
}

// Validate reports every invalid option at once.
func (o *Options) Validate() error {
	var errs []error

	if o.Interval <= 0 {
		errs = append(errs, fmt.Errorf("--interval must be positive, got %v", o.Interval))
	}
	if o.Threshold < 0 || o.Threshold > 1 {
		errs = append(errs, fmt.Errorf("--threshold must be within [0, 1], got %v", o.Threshold))
	}
	if _, err := o.Selector(); err != nil {
		errs = append(errs, err)
	}
	if o.QPS <= 0 {
		errs = append(errs, fmt.Errorf("--qps must be positive, got %v", o.QPS))
	}
	if o.Burst < 1 {
		errs = append(errs, fmt.Errorf("--burst must be at least 1, got %d", o.Burst))
	}

	return utilerrors.NewAggregate(errs)
}

// Selector parses NodeSelector.
func (o *Options) Selector() (labels.Selector, error) {
	selector, err := labels.Parse(o.NodeSelector)
	if err != nil {
		return nil, fmt.Errorf("invalid --node-selector %q: %w", o.NodeSelector, err)
	}
	return selector, nil
}

// Config converts validated options into a controller configuration.
func (o *Options) Config() (simulator.Config, error) {
	selector, err := o.Selector()
	if err != nil {
		return simulator.Config{}, err
	}
	return simulator.Config{
		Interval:     o.Interval,
		Threshold:    o.Threshold,
		NodeSelector: selector,
		Generator:    simulator.NewUniformGenerator(o.Seed),
	}, nil
}
