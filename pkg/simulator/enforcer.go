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

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/record"
	"k8s.io/klog/v2"
)

const (
	// GreenTaintKey and GreenTaintValue identify the restriction taint.
	GreenTaintKey   = "green"
	GreenTaintValue = "false"

	// EventReasonRestricted is recorded on a node when it gets tainted.
	EventReasonRestricted = "RenewableShareLow"
)

// DesiredTaints returns the complete taint list a node should carry for
// decision. Restrict yields exactly one green=false:NoExecute taint, Allow
// yields an empty list.
func DesiredTaints(decision Decision) []corev1.Taint {
	if decision != DecisionRestrict {
		return []corev1.Taint{}
	}
	return []corev1.Taint{
		{
			Key:    GreenTaintKey,
			Value:  GreenTaintValue,
			Effect: corev1.TaintEffectNoExecute,
		},
	}
}

// Enforcer applies a Decision to a node's taints.
type Enforcer struct {
	client   kubernetes.Interface
	recorder record.EventRecorder
}

// NewEnforcer returns an Enforcer. recorder may be nil.
func NewEnforcer(client kubernetes.Interface, recorder record.EventRecorder) *Enforcer {
	return &Enforcer{
		client:   client,
		recorder: recorder,
	}
}

// Enforce replaces the node's taint list with DesiredTaints(decision).
// The patch carries the full list, so repeating it is a no-op.
func (e *Enforcer) Enforce(ctx context.Context, node string, decision Decision) error {
	logger := klog.FromContext(ctx).WithValues("node", node, "decision", decision)

	patch, err := taintPatch(DesiredTaints(decision))
	if err != nil {
		return err
	}

	if _, err := e.client.CoreV1().Nodes().Patch(ctx, node, types.MergePatchType, patch, metav1.PatchOptions{}); err != nil {
		return fmt.Errorf("failed to set taints on node %s: %w", node, err)
	}

	if decision == DecisionRestrict && e.recorder != nil {
		ref := &corev1.ObjectReference{Kind: "Node", Name: node, UID: types.UID(node)}
		e.recorder.Eventf(ref, corev1.EventTypeWarning, EventReasonRestricted,
			"Tainted node with %s=%s:%s, renewable share at or below threshold",
			GreenTaintKey, GreenTaintValue, corev1.TaintEffectNoExecute)
	}

	logger.V(2).Info("Enforced placement policy")
	return nil
}

func taintPatch(taints []corev1.Taint) ([]byte, error) {
	patch := map[string]interface{}{
		"spec": map[string]interface{}{
			"taints": taints,
		},
	}
	data, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to build taint patch: %w", err)
	}
	return data, nil
}
