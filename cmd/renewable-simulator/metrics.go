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


package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"k8s.io/klog/v2"

	"github.com/green-k8s/renewable-simulator/pkg/health"
)

const probeTimeout = 5 * time.Second

// MetricsServer serves the loop metrics and the health probes.
type MetricsServer struct {
	server   *http.Server
	registry *prometheus.Registry
}

// NewMetricsServer builds the server. The registry receives the Go runtime
// and process collectors in addition to whatever the caller registered.
func NewMetricsServer(addr string, registry *prometheus.Registry, liveness, readiness health.Checker) *MetricsServer {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.Handle("/healthz", health.NewProbe(probeTimeout, liveness))
	mux.Handle("/readyz", health.NewProbe(probeTimeout, liveness, readiness))

	return &MetricsServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      30 * time.Second,
		},
		registry: registry,
	}
}

// Start binds the listener and serves until ctx is cancelled. Bind errors
// are returned synchronously.
func (m *MetricsServer) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", m.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", m.server.Addr, err)
	}

	go func() {
		klog.InfoS("Starting metrics server", "address", listener.Addr().String())
		if err := m.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			klog.ErrorS(err, "Metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		klog.InfoS("Shutting down metrics server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.server.Shutdown(shutdownCtx); err != nil {
			klog.ErrorS(err, "Metrics server shutdown failed")
		}
	}()

	return nil
}

// Handler exposes the routes for tests.
func (m *MetricsServer) Handler() http.Handler {
	return m.server.Handler
}
