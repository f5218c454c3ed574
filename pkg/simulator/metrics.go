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
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "renewable_simulator"

// Operation names used for the failures metric.
const (
	OperationList     = "list"
	OperationAnnotate = "annotate"
	OperationEvaluate = "evaluate"
	OperationEnforce  = "enforce"
)

// Cycle results used for the cycles metric.
const (
	CycleSucceeded = "succeeded"
	CycleDegraded  = "degraded"
	CycleFailed    = "failed"
)

// Metrics exposes the control loop state to Prometheus.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	nodeShare      *prometheus.GaugeVec
	nodeRestricted *prometheus.GaugeVec
	trackedNodes   prometheus.Gauge
	cyclesTotal    *prometheus.CounterVec
	failuresTotal  *prometheus.CounterVec
	cycleDuration  prometheus.Histogram
}

// NewMetrics creates the loop metrics. They still need to be registered.
func NewMetrics() *Metrics {
	return &Metrics{
		nodeShare: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "node_renewable_share",
				Help:      "Last simulated renewable share written to the node, rounded to one digit.",
			},
			[]string{"node"},
		),
		nodeRestricted: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "node_restricted",
				Help:      "1 if the node was last tainted green=false:NoExecute, 0 if its taints were cleared.",
			},
			[]string{"node"},
		),
		trackedNodes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "tracked_nodes",
				Help:      "Number of nodes held in the in-memory state store.",
			},
		),
		cyclesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "cycles_total",
				Help:      "Control loop cycles by result.",
			},
			[]string{"result"},
		),
		failuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "operation_failures_total",
				Help:      "Failed cluster operations by operation and reason.",
			},
			[]string{"operation", "reason"},
		),
		cycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "cycle_duration_seconds",
				Help:      "Wall time of one control loop cycle.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
	}
}

// MustRegister registers all collectors with registry.
func (m *Metrics) MustRegister(registry prometheus.Registerer) {
	registry.MustRegister(
		m.nodeShare,
		m.nodeRestricted,
		m.trackedNodes,
		m.cyclesTotal,
		m.failuresTotal,
		m.cycleDuration,
	)
}

func (m *Metrics) observeShare(node string, share string) {
	if m == nil {
		return
	}
	v, err := ParseShare(share)
	if err != nil {
		return
	}
	m.nodeShare.WithLabelValues(node).Set(v)
}

func (m *Metrics) observeDecision(node string, decision Decision) {
	if m == nil {
		return
	}
	restricted := 0.0
	if decision == DecisionRestrict {
		restricted = 1
	}
	m.nodeRestricted.WithLabelValues(node).Set(restricted)
}

func (m *Metrics) observeFailure(operation string, reason Reason) {
	if m == nil {
		return
	}
	m.failuresTotal.WithLabelValues(operation, string(reason)).Inc()
}

func (m *Metrics) observeCycle(result string, duration time.Duration, tracked int) {
	if m == nil {
		return
	}
	m.cyclesTotal.WithLabelValues(result).Inc()
	m.cycleDuration.Observe(duration.Seconds())
	m.trackedNodes.Set(float64(tracked))
}
