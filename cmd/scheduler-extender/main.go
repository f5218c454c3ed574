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
	"time"

	"github.com/spf13/cobra"

	"k8s.io/component-base/logs"
	"k8s.io/klog/v2"

	"github.com/green-k8s/renewable-simulator/cmd/scheduler-extender/options"
	"github.com/green-k8s/renewable-simulator/pkg/extender"
	"github.com/green-k8s/renewable-simulator/pkg/health"
)

// version is set at build time.
var version = "dev"

func main() {
	logs.InitLogs()
	defer logs.FlushLogs()

	if err := newCommand().ExecuteContext(setupSignalHandler()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		logs.FlushLogs()
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	opts := options.NewOptions()

	cmd := &cobra.Command{
		Use:   "scheduler-extender",
		Short: "kube-scheduler extender steering pods towards nodes with a high renewable share",
		Long: `The scheduler extender reads the "renewable" annotation maintained by the
renewable simulator. Its filter endpoint rejects nodes at or below the
threshold and its prioritize endpoint scores nodes by their share.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), opts)
		},
		SilenceUsage: true,
	}

	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	cmd.Flags().AddGoFlagSet(klogFlags)
	opts.AddFlags(cmd.Flags())

	return cmd
}

func run(ctx context.Context, opts *options.Options) error {
	klog.InfoS("Starting scheduler-extender", "version", version, "threshold", opts.Threshold)

	alive := health.NewChecker("scheduler-extender", func(context.Context) health.Status {
		return health.Healthy("serving")
	})
	server := extender.NewServer(extender.New(opts.Threshold), version, health.NewProbe(5*time.Second, alive))
	return server.Run(ctx, opts.BindAddress)
}

// setupSignalHandler returns a context cancelled on SIGINT or SIGTERM.
func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1) // second signal. Exit directly.
	}()
	return ctx
}
