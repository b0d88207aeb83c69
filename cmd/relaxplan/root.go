// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/AleutianAI/relaxplan/pkg/logging"
	"github.com/AleutianAI/relaxplan/pkg/ux"
	"github.com/AleutianAI/relaxplan/services/planner/config"
	"github.com/AleutianAI/relaxplan/services/planner/telemetry"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("relaxplan.cmd")

// Metric name prefixes printed by --metrics: the prometheus estimate
// metrics and the otel cache counters bridged into prometheus.
var metricPrefixes = []string{"relaxplan_", "estimate_cache_"}

// rootOptions holds the persistent flags.
type rootOptions struct {
	configPath string
	logLevel   string
	trace      string
	metrics    bool
	plain      bool
}

// app is the state shared by every command of one run.
type app struct {
	opts   rootOptions
	stdout io.Writer
	stderr io.Writer

	cfg      config.Config
	logger   *logging.Logger
	log      *slog.Logger
	printer  *ux.Printer
	runID    string
	registry *prometheus.Registry
	shutdown func(context.Context) error

	// prevDefault is the slog default replaced by setup, restored on close.
	prevDefault *slog.Logger
}

// run executes one command line and releases everything it set up.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{stdout: stdout, stderr: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if closeErr := a.close(closeCtx); closeErr != nil {
		fmt.Fprintf(stderr, "Error: %v\n", closeErr)
		err = errors.Join(err, closeErr)
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relaxplan",
		Short: "Relaxed planning graph heuristic estimates",
		Long: `relaxplan estimates the cost of reaching a planning goal by growing a
relaxed planning graph that ignores delete effects. It supports the h_max
and h_add cost rules over built-in problems or YAML problem files.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.opts.configPath, "config", "", "path to a YAML config file")
	flags.StringVar(&a.opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&a.opts.trace, "trace", "", "trace exporter: stdout, otlp or none")
	flags.BoolVar(&a.opts.metrics, "metrics", false, "print relaxplan metrics when the command finishes")
	flags.BoolVar(&a.opts.plain, "plain", false, "plain tab-separated output")

	cmd.AddCommand(newEstimateCmd(a), newCompareCmd(a), newDomainsCmd(a))
	return cmd
}

// setup loads configuration and starts logging and telemetry.
//
// Description:
//
//	Precedence is defaults, then the config file, then RELAXPLAN_*
//	environment variables, then flags.
func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(a.opts.configPath)
	if err != nil {
		return err
	}
	if a.opts.logLevel != "" {
		cfg.Logging.Level = a.opts.logLevel
	}
	if a.opts.trace != "" {
		cfg.Telemetry.TraceExporter = a.opts.trace
	}
	if a.opts.metrics && cfg.Telemetry.MetricExporter == telemetry.ExporterNone {
		cfg.Telemetry.MetricExporter = telemetry.ExporterPrometheus
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	a.logger = logging.New(logging.Config{
		Level:   level,
		Service: cfg.Logging.Service,
		JSON:    cfg.Logging.JSON,
		Output:  a.stderr,
	})
	a.runID = uuid.NewString()[:8]
	a.log = a.logger.With(slog.String("run_id", a.runID)).Slog()
	a.prevDefault = slog.Default()
	a.logger.SetDefault()
	a.printer = ux.NewPrinter(a.stdout, a.opts.plain || redirected(a.stdout))

	a.registry = prometheus.NewRegistry()
	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
		TraceExporter:  cfg.Telemetry.TraceExporter,
		MetricExporter: cfg.Telemetry.MetricExporter,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure:   cfg.Telemetry.OTLPInsecure,
		Writer:         a.stderr,
		Registerer:     a.registry,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	a.shutdown = shutdown

	a.log.Debug("relaxplan started",
		slog.String("rule", cfg.Heuristic.Rule),
		slog.Bool("cache", cfg.Cache.Enabled),
		slog.String("trace_exporter", cfg.Telemetry.TraceExporter),
		slog.String("metric_exporter", cfg.Telemetry.MetricExporter),
	)
	return nil
}

// close prints metrics if asked, then stops telemetry and logging.
func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.opts.metrics && a.registry != nil {
		gatherer := prometheus.Gatherers{prometheus.DefaultGatherer, a.registry}
		for _, prefix := range metricPrefixes {
			if err := telemetry.WriteMetrics(a.stdout, gatherer, prefix); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if a.shutdown != nil {
		if err := a.shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown telemetry: %w", err))
		}
	}
	if a.prevDefault != nil {
		slog.SetDefault(a.prevDefault)
	}
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// redirected reports whether w is a file that is not a terminal, such as a
// pipe or a redirect. Other writers are left to the --plain flag.
func redirected(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
}

// estimateContext applies the configured per-estimate timeout.
func (a *app) estimateContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.Heuristic.Timeout > 0 {
		return context.WithTimeout(ctx, a.cfg.Heuristic.Timeout)
	}
	return context.WithCancel(ctx)
}
