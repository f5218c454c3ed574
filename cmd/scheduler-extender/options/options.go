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

	"github.com/spf13/pflag"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/green-k8s/renewable-simulator/pkg/simulator"
)

// Options holds the scheduler-extender command line configuration.
type Options struct {
	BindAddress string
	Threshold   float64
}

// NewOptions returns the defaults.
func NewOptions() *Options {
	return &Options{
		BindAddress: ":8888",
		Threshold:   simulator.DefaultThreshold,
	}
}

// AddFlags registers the options on fs.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.BindAddress, "bind-address", o.BindAddress,
		"Address serving the extender endpoints")
	fs.Float64Var(&o.Threshold, "threshold", o.Threshold,
		"Renewable share at or below which nodes are filtered out. Should match the simulator")
}

// Validate reports every invalid option at once.
func (o *Options) Validate() error {
	var errs []error
	if o.BindAddress == "" {
		errs = append(errs, fmt.Errorf("--bind-address must not be empty"))
	}
	if o.Threshold < 0 || o.Threshold > 1 {
		errs = append(errs, fmt.Errorf("--threshold must be within [0, 1], got %v", o.Threshold))
	}
	return utilerrors.NewAggregate(errs)
}
