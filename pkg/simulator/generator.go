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
	"math/rand/v2"
	"time"
)

// Generator produces a simulated renewable share in [0, 1].
// It is called once per node per cycle.
type Generator interface {
	Generate() float64
}

// UniformGenerator draws shares uniformly from [0, 1).
type UniformGenerator struct {
	rnd *rand.Rand
}

// NewUniformGenerator returns a generator seeded with seed.
// A zero seed is replaced by the current time.
func NewUniformGenerator(seed uint64) *UniformGenerator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &UniformGenerator{
		rnd: rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
}

// Generate implements Generator.
func (g *UniformGenerator) Generate() float64 {
	return g.rnd.Float64()
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func() float64

// Generate implements Generator.
func (f GeneratorFunc) Generate() float64 {
	return f()
}
