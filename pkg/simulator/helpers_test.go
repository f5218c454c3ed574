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
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	ktesting "k8s.io/client-go/testing"
)

// scriptedGenerator returns its values in order, starting over at the end.
type scriptedGenerator struct {
	mu     sync.Mutex
	values []float64
	calls  int
}

func newScriptedGenerator(values ...float64) *scriptedGenerator {
	return &scriptedGenerator{values: values}
}

func (g *scriptedGenerator) Generate() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	v := g.values[g.calls%len(g.values)]
	g.calls++
	return v
}

func (g *scriptedGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func newNode(name string, taints ...corev1.Taint) *corev1.Node {
	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Spec:       corev1.NodeSpec{Taints: taints},
	}
}

// listNodesInOrder makes node listing deterministic. The object tracker
// lists from a map, so without this the generator values would land on
// random nodes.
func listNodesInOrder(client *fake.Clientset, names ...string) {
	client.PrependReactor("list", "nodes", func(action ktesting.Action) (bool, runtime.Object, error) {
		list := &corev1.NodeList{}
		for _, name := range names {
			list.Items = append(list.Items, *newNode(name))
		}
		return true, list, nil
	})
}

func getNode(t *testing.T, client *fake.Clientset, name string) *corev1.Node {
	t.Helper()
	node, err := client.CoreV1().Nodes().Get(context.Background(), name, metav1.GetOptions{})
	require.NoError(t, err)
	return node
}

func patchedNodes(client *fake.Clientset) []string {
	var names []string
	for _, action := range client.Actions() {
		if patch, ok := action.(ktesting.PatchAction); ok && action.GetResource().Resource == "nodes" {
			names = append(names, patch.GetName())
		}
	}
	return names
}

func greenTaint() corev1.Taint {
	return corev1.Taint{Key: GreenTaintKey, Value: GreenTaintValue, Effect: corev1.TaintEffectNoExecute}
}
