// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package heuristics

import (
	"context"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("relaxplan.heuristics")

// Estimate outcomes used as the "outcome" metric label.
const (
	outcomeReachable   = "reachable"
	outcomeUnreachable = "unreachable"
	outcomeError       = "error"
)

var (
	estimatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relaxplan_estimates_total",
		Help: "Total heuristic estimates by cost rule and outcome",
	}, []string{"rule", "outcome"})

	estimateDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "relaxplan_estimate_duration_seconds",
		Help:    "Duration of heuristic estimates",
		Buckets: []float64{.00001, .0001, .0005, .001, .005, .01, .05, .1, .5, 1},
	}, []string{"rule"})

	fixpointPasses = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "relaxplan_fixpoint_passes",
		Help:    "Number of relaxed planning graph passes per estimate",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
	})

	unresolvedLiterals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relaxplan_unresolved_literals_total",
		Help: "Literals left at infinite cost because every supporter was a forward-reference cycle",
	})

	passLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relaxplan_pass_limit_hits_total",
		Help: "Estimates stopped by the fixpoint pass limit before costs settled",
	})
)

func startEstimateSpan(ctx context.Context, rule string, stateSize int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Heuristics.Estimate",
		trace.WithAttributes(
			attribute.String("heuristics.rule", rule),
			attribute.Int("heuristics.state_size", stateSize),
		),
	)
}

func recordEstimate(span trace.Span, rule string, value float64, deltas *DeltaMap, elapsed time.Duration, err error) {
	estimateDuration.WithLabelValues(rule).Observe(elapsed.Seconds())

	if err != nil {
		estimatesTotal.WithLabelValues(rule, outcomeError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	outcome := outcomeReachable
	if math.IsInf(value, 1) {
		outcome = outcomeUnreachable
	}
	estimatesTotal.WithLabelValues(rule, outcome).Inc()
	fixpointPasses.Observe(float64(deltas.Passes))

	span.SetAttributes(
		attribute.Int("heuristics.passes", deltas.Passes),
		attribute.Int("heuristics.relaxed_size", deltas.RelaxedSize),
		attribute.Bool("heuristics.converged", deltas.Converged),
		attribute.Bool("heuristics.unreachable", outcome == outcomeUnreachable),
	)
	if outcome == outcomeReachable {
		span.SetAttributes(attribute.Float64("heuristics.estimate", value))
	}
}
