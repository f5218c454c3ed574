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
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/scheme"
	typedcorev1 "k8s.io/client-go/kubernetes/typed/core/v1"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/record"
	"k8s.io/component-base/logs"
	"k8s.io/klog/v2"

	"github.com/green-k8s/renewable-simulator/cmd/renewable-simulator/options"
	"github.com/green-k8s/renewable-simulator/pkg/credentials"
	"github.com/green-k8s/renewable-simulator/pkg/features"
	"github.com/green-k8s/renewable-simulator/pkg/simulator"
)

const componentName = "renewable-simulator"

// version is set at build time.
var version = "dev"

func main() {
	logs.InitLogs()
	defer logs.FlushLogs()

	ctx, hangup := setupSignalHandler()
	if err := newCommand(hangup).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		logs.FlushLogs()
		os.Exit(1)
	}
}

func newCommand(hangup <-chan struct{}) *cobra.Command {
	opts := options.NewOptions()

	cmd := &cobra.Command{
		Use:   componentName,
		Short: "Simulates renewable energy shares for nodes and taints the ones running on too little",
		Long: `The renewable simulator periodically assigns every node a random renewable
energy share, records it in the "renewable" node annotation and taints nodes
at or below the threshold with green=false:NoExecute. Nodes above the
threshold have their taints cleared.

Send SIGHUP to start the next cycle without waiting for the interval.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), opts, hangup)
		},
		SilenceUsage: true,
	}

	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	cmd.Flags().AddGoFlagSet(klogFlags)
	opts.AddFlags(cmd.Flags())
	features.AddFlag(cmd.Flags())

	return cmd
}

func run(ctx context.Context, opts *options.Options, hangup <-chan struct{}) error {
	logger := klog.FromContext(ctx)
	logger.Info("Starting "+componentName, "version", version)

	config, err := buildClientConfig(opts)
	if err != nil {
		return err
	}
	client, err := kubernetes.NewForConfig(config)
	if err != nil {
		return fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	var recorder record.EventRecorder
	if features.Enabled(features.RestrictionEvents) {
		broadcaster := record.NewBroadcaster(record.WithContext(ctx))
		broadcaster.StartStructuredLogging(3)
		broadcaster.StartRecordingToSink(&typedcorev1.EventSinkImpl{Interface: client.CoreV1().Events("")})
		defer broadcaster.Shutdown()
		recorder = broadcaster.NewRecorder(scheme.Scheme, corev1.EventSource{Component: componentName})
	}

	cfg, err := opts.Config()
	if err != nil {
		return err
	}
	registry := prometheus.NewRegistry()
	cfg.Metrics = simulator.NewMetrics()
	cfg.Metrics.MustRegister(registry)

	controller, err := simulator.NewController(client, recorder, cfg)
	if err != nil {
		return fmt.Errorf("failed to create controller: %w", err)
	}

	if opts.MetricsBindAddress != "" {
		metricsServer := NewMetricsServer(opts.MetricsBindAddress, registry,
			controller.LivenessChecker(), controller.ReadinessChecker())
		if err := metricsServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	if !features.Enabled(features.HangupWake) {
		hangup = nil
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hangup:
				logger.Info("Received SIGHUP, starting the next cycle now")
				controller.Wake()
			}
		}
	}()

	return controller.Start(ctx)
}

// buildClientConfig resolves the cluster credentials. Running without any
// is fatal.
func buildClientConfig(opts *options.Options) (*rest.Config, error) {
	config, err := credentials.DefaultChain(opts.Kubeconfig).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to build cluster config: %w", err)
	}
	return credentials.Tune(config, opts.QPS, opts.Burst, componentName+"/"+version), nil
}

// setupSignalHandler returns a context cancelled on SIGINT or SIGTERM and a
// channel receiving SIGHUP notifications. A second termination signal exits
// immediately.
func setupSignalHandler() (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	hangup := make(chan struct{}, 1)

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		terminating := false
		for sig := range c {
			if sig == syscall.SIGHUP {
				select {
				case hangup <- struct{}{}:
				default:
				}
				continue
			}
			if terminating {
				os.Exit(1) // second signal. Exit directly.
			}
			terminating = true
			cancel()
		}
	}()
	return ctx, hangup
}
