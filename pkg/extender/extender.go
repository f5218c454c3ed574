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


// Package extender implements a kube-scheduler HTTP extender that keeps pods
// off nodes whose simulated renewable share is too low and prefers nodes
// with a high share.
package extender

import (
	"errors"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/klog/v2"
	extenderv1 "k8s.io/kube-scheduler/extender/v1"

	"github.com/green-k8s/renewable-simulator/pkg/simulator"
)

// Failure reasons reported for filtered nodes.
const (
	ReasonMissingShare = "RenewableShareMissing"
	ReasonInvalidShare = "RenewableShareInvalid"
	ReasonLowShare     = "RenewableShareLow"
)

var errNodesRequired = errors.New("extender args carry no nodes, node cache capable mode is not supported")

// Extender scores and filters nodes by their renewable annotation.
type Extender struct {
	evaluator simulator.Evaluator
}

// New returns an Extender that filters out nodes at or below threshold.
func New(threshold float64) *Extender {
	return &Extender{evaluator: simulator.NewEvaluator(threshold)}
}

// Filter keeps the nodes whose annotated share evaluates to Allow.
func (e *Extender) Filter(args extenderv1.ExtenderArgs) (*extenderv1.ExtenderFilterResult, error) {
	if args.Nodes == nil {
		return nil, errNodesRequired
	}

	result := &extenderv1.ExtenderFilterResult{
		Nodes:       &corev1.NodeList{Items: []corev1.Node{}},
		FailedNodes: extenderv1.FailedNodesMap{},
	}
	for _, node := range args.Nodes.Items {
		if reason := e.rejection(&node); reason != "" {
			result.FailedNodes[node.Name] = reason
			klog.V(4).InfoS("Filtered out node", "pod", podName(args.Pod), "node", node.Name, "reason", reason)
			continue
		}
		result.Nodes.Items = append(result.Nodes.Items, node)
	}
	return result, nil
}

func (e *Extender) rejection(node *corev1.Node) string {
	share, ok := node.Annotations[simulator.RenewableAnnotationKey]
	if !ok {
		return ReasonMissingShare
	}
	decision, err := e.evaluator.Evaluate(share)
	if err != nil {
		return ReasonInvalidShare
	}
	if decision == simulator.DecisionRestrict {
		return ReasonLowShare
	}
	return ""
}

// Prioritize scores every node with its share scaled to the extender
// priority range. Nodes without a usable share score zero.
func (e *Extender) Prioritize(args extenderv1.ExtenderArgs) (extenderv1.HostPriorityList, error) {
	if args.Nodes == nil {
		return nil, errNodesRequired
	}

	priorities := make(extenderv1.HostPriorityList, 0, len(args.Nodes.Items))
	for _, node := range args.Nodes.Items {
		priorities = append(priorities, extenderv1.HostPriority{
			Host:  node.Name,
			Score: Score(node.Annotations[simulator.RenewableAnnotationKey]),
		})
	}
	return priorities, nil
}

// Score converts an annotated share into an extender priority.
func Score(share string) int64 {
	v, err := simulator.ParseShare(share)
	if err != nil {
		return 0
	}
	return int64(v * float64(extenderv1.MaxExtenderPriority))
}

func podName(pod *corev1.Pod) string {
	if pod == nil {
		return ""
	}
	return fmt.Sprintf("%s/%s", pod.Namespace, pod.Name)
}
