// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry wires OpenTelemetry tracing and metrics for relaxplan.
//
// Instrumented packages only use the otel API (otel.Tracer, otel.Meter) and
// the prometheus default registry. Init installs the SDK providers and
// exporters behind those APIs; without Init every span and otel instrument
// is a no-op.
//
// # Trace Exporters
//
//	stdout  spans written as JSON to Config.Writer (stderr by default)
//	otlp    spans pushed over gRPC to Config.OTLPEndpoint
//	none    no TracerProvider installed
//
// # Metric Exporters
//
//	stdout      otel metrics written as JSON to Config.Writer on shutdown
//	prometheus  otel metrics bridged into the prometheus default registry,
//	            readable with WriteMetrics
//	none        no MeterProvider installed
//
// # Usage
//
//	shutdown, err := telemetry.Init(ctx, telemetry.DefaultConfig())
//	if err != nil {
//	    return fmt.Errorf("init telemetry: %w", err)
//	}
//	defer shutdown(context.Background())
package telemetry
