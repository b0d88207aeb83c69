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
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AleutianAI/relaxplan/pkg/ux"
	"github.com/AleutianAI/relaxplan/services/planner/action"
	"github.com/AleutianAI/relaxplan/services/planner/cache"
	"github.com/AleutianAI/relaxplan/services/planner/heuristics"
	"github.com/AleutianAI/relaxplan/services/planner/problem"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

// ErrOrderingViolated is returned by compare when an additive estimate is
// below the max estimate of the same state.
var ErrOrderingViolated = errors.New("additive estimate below max estimate")

// labelledState is a state with the name shown in the compare table.
type labelledState struct {
	label string
	state []action.Literal
}

// successorStates returns the initial state followed by the state each
// initially applicable action leads to, in action order.
func successorStates(p *problem.Problem) []labelledState {
	start := p.Init()
	out := []labelledState{{label: "init", state: start}}
	for _, a := range p.ApplicableActions(start) {
		out = append(out, labelledState{
			label: actionLabel(a),
			state: problem.Apply(start, a),
		})
	}
	return out
}

// actionLabel renders a grounded action as name(param, ...).
func actionLabel(a *action.Action) string {
	return a.Name() + "(" + strings.Join(a.Parameters(), ",") + ")"
}

func newCompareCmd(a *app) *cobra.Command {
	var prob problemOptions

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the max and additive rules on the initial state and its successors",
		Long: `compare estimates the initial state and every state one action away
under both cost rules and checks that the additive estimate is never below
the max estimate.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := prob.load()
			if err != nil {
				return err
			}

			ctx, cancel := a.estimateContext(cmd.Context())
			defer cancel()
			ctx, span := tracer.Start(ctx, "relaxplan.compare")
			defer span.End()

			states := successorStates(p)
			batch := make([][]action.Literal, len(states))
			for i, s := range states {
				batch[i] = s.state
			}
			span.SetAttributes(
				attribute.String("problem", p.Name()),
				attribute.Int("states", len(states)),
			)

			rules := []heuristics.CostRule{heuristics.MaxCost(), heuristics.AdditiveCost()}
			values := make([][]float64, len(rules))
			for i, rule := range rules {
				est := a.estimator(p, rule)
				values[i], err = heuristics.EstimateBatch(ctx, est, batch, a.cfg.Heuristic.Concurrency)
				if err != nil {
					span.RecordError(err)
					return fmt.Errorf("estimate %s: %w", rule.Name(), err)
				}
				if c, ok := est.(*cache.EstimateCache); ok {
					stats := c.Stats()
					a.log.Debug("estimate cache",
						slog.String("rule", rule.Name()),
						slog.Int("entries", stats.Entries),
						slog.Int64("hits", stats.Hits),
						slog.Int64("misses", stats.Misses),
						slog.Float64("hit_rate", stats.HitRate()),
					)
				}
			}

			rows := make([][]string, len(states))
			violations := 0
			for i, s := range states {
				hmax, hadd := values[0][i], values[1][i]
				mark := string(ux.IconSuccess)
				if hadd < hmax {
					mark = string(ux.IconError)
					violations++
				}
				rows[i] = []string{s.label, ux.FormatCost(hmax), ux.FormatCost(hadd), mark}
			}

			a.printer.Title(fmt.Sprintf("relaxplan compare: %s", p.Name()))
			a.printer.Table([]string{"state", "max", "additive", "add>=max"}, rows)

			a.log.Info("compare complete",
				slog.String("problem", p.Name()),
				slog.Int("states", len(states)),
				slog.Int("violations", violations),
			)
			if violations > 0 {
				return fmt.Errorf("%w: %d states", ErrOrderingViolated, violations)
			}
			return nil
		},
	}

	prob.register(cmd)
	return cmd
}

// estimator returns the heuristic for rule, behind the estimate cache when
// caching is enabled.
func (a *app) estimator(p *problem.Problem, rule heuristics.CostRule) heuristics.Estimator {
	h := a.heuristic(p, rule)
	if !a.cfg.Cache.Enabled {
		return h
	}
	return cache.New(h, cache.WithCapacity(a.cfg.Cache.Capacity))
}
