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
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/AleutianAI/relaxplan/services/planner/action"
)

// Package-level error definitions.
var (
	ErrNilDomain   = errors.New("domain must not be nil")
	ErrInvalidRule = errors.New("invalid cost rule")
)

// EstimateError wraps failures of a heuristic operation.
type EstimateError struct {
	Operation string
	Err       error
}

func (e *EstimateError) Error() string {
	return "heuristics." + e.Operation + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *EstimateError) Unwrap() error {
	return e.Err
}

// actionCost is the cost of applying any action.
const actionCost = 1.0

// Domain is the planning problem the heuristic reasons about.
//
// Implementations must stay immutable while estimates run.
type Domain interface {
	// ApplicableActions returns every grounded action whose full
	// precondition list, "=" literals included, holds in state.
	ApplicableActions(state []action.Literal) []*action.Action

	// Goal returns the goal literals.
	Goal() []action.Literal
}

// Estimator produces a heuristic value for a state.
type Estimator interface {
	Estimate(ctx context.Context, state []action.Literal) (float64, error)
}

// -----------------------------------------------------------------------------
// Heuristics
// -----------------------------------------------------------------------------

// Heuristics estimates the remaining cost to the goal with a relaxed
// planning graph.
//
// Description:
//
//	Estimate grows a relaxed state from the given state by applying every
//	applicable action while ignoring delete effects. Each literal is
//	labelled with the cheapest unit-cost way found to reach it, where an
//	action's cost is 1 plus its filtered preconditions' costs combined by
//	the CostRule. The goal literals' costs, combined by the same rule, are
//	the estimate. Unreachable goals give +Inf.
//
//	Algorithm:
//	1. Label every state literal with cost 0.
//	2. Pass: ask the domain for actions applicable in the relaxed state.
//	   For each, aggregate its precondition costs. Add its positive effects
//	   to the relaxed state and lower each effect's cost to 1 + that
//	   aggregate. An action whose aggregate is still +Inf is a forward
//	   reference: its effects join the relaxed state unlabelled and it is
//	   re-evaluated on the next pass.
//	3. Repeat until a pass neither adds a literal (leveled off) nor lowers
//	   a cost (settled).
//	4. Literals still unlabelled sit on a cycle of forward references with
//	   no grounded support; they stay +Inf and are reported as unresolved.
//
// Thread Safety: Safe for concurrent use. Each call owns its cost map and
// relaxed state; the Domain must not change while calls run.
type Heuristics struct {
	domain    Domain
	rule      CostRule
	maxPasses int
	logger    *slog.Logger
}

// Option configures a Heuristics.
type Option func(*Heuristics)

// WithLogger sets the logger. Per-pass details are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Heuristics) {
		if logger != nil {
			h.logger = logger.With(slog.String("component", "heuristics"))
		}
	}
}

// WithMaxPasses caps the total number of fixpoint passes per estimate.
// Zero or negative keeps the default bound, which the built-in rules never
// reach.
func WithMaxPasses(n int) Option {
	return func(h *Heuristics) {
		h.maxPasses = n
	}
}

// New creates a heuristic over domain using rule.
//
// Inputs:
//   - domain: Source of applicable actions and the goal.
//   - rule: Aggregation rule for precondition and goal costs.
//   - opts: Optional settings.
//
// Outputs:
//   - *Heuristics: The heuristic. Misconfiguration surfaces on first use
//     and through HealthCheck.
func New(domain Domain, rule CostRule, opts ...Option) *Heuristics {
	h := &Heuristics{
		domain: domain,
		rule:   rule,
		logger: slog.Default().With(slog.String("component", "heuristics")),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Rule returns the configured cost rule.
func (h *Heuristics) Rule() CostRule {
	return h.rule
}

// Estimate returns the estimated cost from state to the goal.
//
// Inputs:
//   - ctx: Checked between fixpoint passes. An outer search imposes its
//     deadline here.
//   - state: The literals that hold.
//
// Outputs:
//   - float64: The estimate, >= 0, or +Inf when the goal is unreachable.
//   - error: Non-nil on misconfiguration or cancellation, in which case the
//     value is +Inf.
func (h *Heuristics) Estimate(ctx context.Context, state []action.Literal) (float64, error) {
	value, _, err := h.estimate(ctx, state)
	return value, err
}

// EstimateDeltaValues runs the relaxed planning graph fixpoint from state
// and returns the resulting cost of every literal reached.
func (h *Heuristics) EstimateDeltaValues(ctx context.Context, state []action.Literal) (*DeltaMap, error) {
	if err := h.validate(); err != nil {
		return nil, &EstimateError{Operation: "EstimateDeltaValues", Err: err}
	}
	deltas, err := h.fixpoint(ctx, state)
	if err != nil {
		return nil, &EstimateError{Operation: "EstimateDeltaValues", Err: err}
	}
	return deltas, nil
}

// Observe estimates state and returns everything the estimate was computed
// from, for property checks and diagnostics.
func (h *Heuristics) Observe(ctx context.Context, state []action.Literal) (*Observation, error) {
	value, deltas, err := h.estimate(ctx, state)
	if err != nil {
		return nil, err
	}
	return &Observation{
		Rule:   h.rule,
		State:  action.CloneLiterals(state),
		Goal:   h.domain.Goal(),
		Value:  value,
		Deltas: deltas,
	}, nil
}

func (h *Heuristics) estimate(ctx context.Context, state []action.Literal) (float64, *DeltaMap, error) {
	start := time.Now()
	ctx, span := startEstimateSpan(ctx, h.rule.Name(), len(state))
	defer span.End()

	deltas, err := h.EstimateDeltaValues(ctx, state)
	if err != nil {
		recordEstimate(span, h.rule.Name(), 0, nil, time.Since(start), err)
		return math.Inf(1), nil, err
	}

	value := h.rule.Aggregate(deltas.Deltas(h.domain.Goal()))
	recordEstimate(span, h.rule.Name(), value, deltas, time.Since(start), nil)
	return value, deltas, nil
}

func (h *Heuristics) validate() error {
	if h.domain == nil {
		return ErrNilDomain
	}
	if !h.rule.Valid() {
		return ErrInvalidRule
	}
	return nil
}

// fixpoint grows the relaxed state from state until it levels off and every
// cost has settled.
func (h *Heuristics) fixpoint(ctx context.Context, state []action.Literal) (*DeltaMap, error) {
	deltas := newDeltaMap(len(state))
	relaxed := action.NewLiteralSet()
	for _, l := range state {
		deltas.values[l.Key()] = 0
		relaxed.Add(l)
	}

	debug := h.logger.Enabled(ctx, slog.LevelDebug)
	buf := make(DeltaValues, 0, 8)
	stalePasses := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		deltas.Passes++

		leveledOff, settled := true, true
		deferred := 0

		actions := h.domain.ApplicableActions(relaxed.Literals())
		for _, act := range actions {
			buf = buf[:0]
			act.VisitFilteredPreconditions(func(p action.Literal) {
				buf = append(buf, deltas.Delta(p))
			})
			cost := h.rule.Aggregate(buf)
			forwardRef := math.IsInf(cost, 1)
			if forwardRef {
				deferred++
			}

			act.VisitEffects(func(e action.Literal) {
				if !e.Positive {
					return
				}
				if relaxed.Add(e) {
					leveledOff = false
				}
				if forwardRef {
					return
				}
				if deltas.relax(e.Key(), actionCost+cost) {
					settled = false
				}
			})
		}

		if debug {
			h.logger.Debug("fixpoint pass",
				slog.Int("pass", deltas.Passes),
				slog.Int("applicable", len(actions)),
				slog.Int("relaxed", relaxed.Len()),
				slog.Int("deferred", deferred),
				slog.Bool("leveled_off", leveledOff),
				slog.Bool("settled", settled),
			)
		}

		if leveledOff && settled {
			deltas.Converged = true
			break
		}

		if h.maxPasses > 0 && deltas.Passes >= h.maxPasses {
			break
		}

		// Once the relaxed state stops growing the action set is fixed, and
		// monotone rules settle within one pass per relaxed literal.
		if leveledOff {
			stalePasses++
			if h.maxPasses <= 0 && stalePasses > relaxed.Len()+1 {
				break
			}
		} else {
			stalePasses = 0
		}
	}

	if !deltas.Converged {
		passLimitHits.Inc()
		h.logger.Warn("fixpoint stopped before costs settled",
			slog.String("rule", h.rule.Name()),
			slog.Int("passes", deltas.Passes),
			slog.Int("relaxed", relaxed.Len()),
		)
	}

	deltas.RelaxedSize = relaxed.Len()
	for _, l := range relaxed.Literals() {
		if !l.Positive {
			continue
		}
		if _, ok := deltas.values[l.Key()]; !ok {
			deltas.unresolved = append(deltas.unresolved, l)
		}
	}
	if n := len(deltas.unresolved); n > 0 {
		unresolvedLiterals.Add(float64(n))
		h.logger.Debug("unresolved literals treated as unreachable",
			slog.Int("count", n),
			slog.String("first", deltas.unresolved[0].String()),
		)
	}

	return deltas, nil
}
