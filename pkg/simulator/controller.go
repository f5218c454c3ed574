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
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/record"
	"k8s.io/klog/v2"
	"k8s.io/utils/clock"

	"github.com/green-k8s/renewable-simulator/pkg/health"
)

// DefaultInterval is the pause between two cycles.
const DefaultInterval = 120 * time.Second

// livenessIntervals is how many intervals may pass without a cycle starting
// before the controller reports itself unhealthy.
const livenessIntervals = 3

// Config configures a Controller. Zero values are replaced by defaults,
// except Threshold which is used as given.
type Config struct {
	// Interval is the pause after each cycle.
	Interval time.Duration

	// Threshold is the share at or below which nodes are restricted.
	Threshold float64

	// NodeSelector limits the managed nodes. Nil selects every node.
	NodeSelector labels.Selector

	// Generator produces the simulated shares.
	Generator Generator

	// Clock drives the pause between cycles.
	Clock clock.Clock

	// Metrics receives loop observations. May be nil.
	Metrics *Metrics
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		Interval:  DefaultInterval,
		Threshold: DefaultThreshold,
	}
}

// Controller runs the simulate, annotate, evaluate and enforce cycle.
type Controller struct {
	client    kubernetes.Interface
	store     *StateStore
	annotator *Annotator
	evaluator Evaluator
	enforcer  *Enforcer

	interval time.Duration
	selector labels.Selector
	clock    clock.Clock
	metrics  *Metrics

	wakeCh chan struct{}

	// Unix nanoseconds, read by the health endpoints.
	lastCycleStart    atomic.Int64
	lastListSucceeded atomic.Int64
}

// NewController creates a Controller owning a fresh, empty StateStore.
func NewController(client kubernetes.Interface, recorder record.EventRecorder, cfg Config) (*Controller, error) {
	if client == nil {
		return nil, fmt.Errorf("a kubernetes client is required")
	}
	if cfg.Interval < 0 {
		return nil, fmt.Errorf("interval must not be negative, got %v", cfg.Interval)
	}
	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return nil, fmt.Errorf("threshold must be within [0, 1], got %v", cfg.Threshold)
	}

	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.NodeSelector == nil {
		cfg.NodeSelector = labels.Everything()
	}
	if cfg.Generator == nil {
		cfg.Generator = NewUniformGenerator(0)
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}

	store := NewStateStore()
	return &Controller{
		client:    client,
		store:     store,
		annotator: NewAnnotator(client, cfg.Generator, store),
		evaluator: NewEvaluator(cfg.Threshold),
		enforcer:  NewEnforcer(client, recorder),
		interval:  cfg.Interval,
		selector:  cfg.NodeSelector,
		clock:     cfg.Clock,
		metrics:   cfg.Metrics,
		wakeCh:    make(chan struct{}, 1),
	}, nil
}

// Store returns the controller's state store.
func (c *Controller) Store() *StateStore {
	return c.store
}

// Start runs cycles until ctx is cancelled. A cycle runs immediately, then
// the controller waits for the interval or a Wake call.
func (c *Controller) Start(ctx context.Context) error {
	defer utilruntime.HandleCrash()

	logger := klog.FromContext(ctx)
	logger.Info("Starting renewable simulator",
		"interval", c.interval,
		"threshold", c.evaluator.Threshold,
		"selector", c.selector.String())

	for ctx.Err() == nil {
		// Failures are logged and counted inside the cycle.
		_ = c.RunCycle(ctx)

		if !c.waitForNextCycle(ctx) {
			break
		}
	}

	logger.Info("Stopping renewable simulator")
	return nil
}

// Wake ends the current pause early. Calls made while a cycle is running
// are coalesced into a single immediate follow-up cycle.
func (c *Controller) Wake() {
	select {
	case c.wakeCh <- struct{}{}:
	default:
	}
}

func (c *Controller) waitForNextCycle(ctx context.Context) bool {
	timer := c.clock.NewTimer(c.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C():
		return true
	case <-c.wakeCh:
		klog.FromContext(ctx).V(2).Info("Woken up before the interval elapsed")
		return true
	}
}

// RunCycle performs one full cycle. It only returns an error when the nodes
// could not be listed; in that case the store is untouched and no taints
// are written. Per-node failures are logged and skipped.
func (c *Controller) RunCycle(ctx context.Context) error {
	logger := klog.FromContext(ctx)
	start := c.clock.Now()
	c.lastCycleStart.Store(start.UnixNano())

	nodes, err := c.client.CoreV1().Nodes().List(ctx, metav1.ListOptions{LabelSelector: c.selector.String()})
	if err != nil {
		reason := ReasonFor(err)
		c.metrics.observeFailure(OperationList, reason)
		c.metrics.observeCycle(CycleFailed, c.clock.Since(start), c.store.Len())
		logger.Error(err, "Failed to list nodes, skipping cycle", "reason", reason)
		return fmt.Errorf("failed to list nodes: %w", err)
	}
	c.lastListSucceeded.Store(c.clock.Now().UnixNano())

	failures := 0
	for i := range nodes.Items {
		name := nodes.Items[i].Name
		share, err := c.annotator.Annotate(ctx, name)
		if err != nil {
			failures++
			c.reportFailure(logger, OperationAnnotate, name, err)
			continue
		}
		c.metrics.observeShare(name, share)
	}

	for _, entry := range c.store.Entries() {
		decision, err := c.evaluator.Evaluate(entry.Share)
		if err != nil {
			failures++
			c.reportFailure(logger, OperationEvaluate, entry.Node, err)
			continue
		}
		if err := c.enforcer.Enforce(ctx, entry.Node, decision); err != nil {
			if ReasonFor(err) == ReasonNotFound {
				// Stale store entry for a node that left the cluster.
				c.metrics.observeFailure(OperationEnforce, ReasonNotFound)
				logger.V(4).Info("Skipping enforcement for missing node", "node", entry.Node)
				continue
			}
			failures++
			c.reportFailure(logger, OperationEnforce, entry.Node, err)
			continue
		}
		c.metrics.observeDecision(entry.Node, decision)
	}

	result := CycleSucceeded
	if failures > 0 {
		result = CycleDegraded
	}
	duration := c.clock.Since(start)
	c.metrics.observeCycle(result, duration, c.store.Len())
	logger.V(2).Info("Completed cycle",
		"nodes", len(nodes.Items),
		"tracked", c.store.Len(),
		"failures", failures,
		"duration", duration)
	return nil
}

func (c *Controller) reportFailure(logger logr.Logger, operation, node string, err error) {
	reason := ReasonFor(err)
	c.metrics.observeFailure(operation, reason)
	logger.Error(err, "Node operation failed", "operation", operation, "node", node, "reason", reason)
}

// LivenessChecker reports healthy while cycles keep starting on schedule.
func (c *Controller) LivenessChecker() health.Checker {
	return health.NewChecker("renewable-simulator-loop", func(ctx context.Context) health.Status {
		last := c.lastCycleStart.Load()
		if last == 0 {
			return health.Unhealthy("no cycle started yet")
		}
		age := c.clock.Since(time.Unix(0, last))
		if age > livenessIntervals*c.interval {
			return health.Unhealthy(fmt.Sprintf("last cycle started %v ago", age.Round(time.Second)))
		}
		return health.Healthy(fmt.Sprintf("last cycle started %v ago", age.Round(time.Second)))
	})
}

// ReadinessChecker reports ready once nodes were listed successfully.
func (c *Controller) ReadinessChecker() health.Checker {
	return health.NewChecker("renewable-simulator-api", func(ctx context.Context) health.Status {
		if c.lastListSucceeded.Load() == 0 {
			return health.Unhealthy("nodes have not been listed yet")
		}
		return health.Healthy("nodes listed")
	})
}
