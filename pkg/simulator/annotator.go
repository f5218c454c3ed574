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
	"encoding/json"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
	"k8s.io/klog/v2"
)

// RenewableAnnotationKey is the node annotation holding the formatted share.
const RenewableAnnotationKey = "renewable"

// Annotator writes a freshly generated share onto a node and, once the API
// server accepted it, into the StateStore.
type Annotator struct {
	client    kubernetes.Interface
	generator Generator
	store     *StateStore
}

// NewAnnotator returns an Annotator writing into store.
func NewAnnotator(client kubernetes.Interface, generator Generator, store *StateStore) *Annotator {
	return &Annotator{
		client:    client,
		generator: generator,
		store:     store,
	}
}

// Annotate generates a share for node, patches it into the node's
// annotations and records it. On error the store is left untouched.
func (a *Annotator) Annotate(ctx context.Context, node string) (string, error) {
	logger := klog.FromContext(ctx).WithValues("node", node)

	share := FormatShare(a.generator.Generate())
	patch, err := annotationPatch(share)
	if err != nil {
		return "", err
	}

	if _, err := a.client.CoreV1().Nodes().Patch(ctx, node, types.MergePatchType, patch, metav1.PatchOptions{}); err != nil {
		return "", fmt.Errorf("failed to annotate node %s: %w", node, err)
	}

	a.store.Set(node, share)
	logger.Info("Annotated node", "annotation", RenewableAnnotationKey, "renewable", share)
	return share, nil
}

func annotationPatch(share string) ([]byte, error) {
	patch := map[string]interface{}{
		"metadata": map[string]interface{}{
			"annotations": map[string]string{
				RenewableAnnotationKey: share,
			},
		},
	}
	data, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to build annotation patch: %w", err)
	}
	return data, nil
}
