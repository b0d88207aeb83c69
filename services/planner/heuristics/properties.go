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
	"fmt"
	"math"

	"github.com/AleutianAI/relaxplan/services/planner/action"
	"github.com/AleutianAI/relaxplan/services/planner/eval"
)

// Observation is one estimate together with the data it was computed from.
type Observation struct {
	Rule   CostRule
	State  []action.Literal
	Goal   []action.Literal
	Value  float64
	Deltas *DeltaMap
}

// -----------------------------------------------------------------------------
// Evaluable Implementation
// -----------------------------------------------------------------------------

// Name returns the component name used in verification results.
func (h *Heuristics) Name() string {
	return "relaxed_planning_graph_" + h.rule.Name()
}

// Properties returns the invariants every estimate satisfies. Checks take
// any input and an *Observation output.
func (h *Heuristics) Properties() []eval.Property {
	return []eval.Property{
		{
			Name:        "non_negative_costs",
			Description: "The estimate and every literal cost are >= 0 or +Inf, never negative or NaN",
			Tags:        []string{"critical"},
			Check: func(_, output any) error {
				obs, ok := output.(*Observation)
				if !ok {
					return nil
				}
				if !validCost(obs.Value) {
					return propertyFailed("non_negative_costs", "estimate %v", obs.Value)
				}
				var bad error
				obs.Deltas.Each(func(key string, cost float64) {
					if bad == nil && !validCost(cost) {
						bad = propertyFailed("non_negative_costs", "%s costs %v", key, cost)
					}
				})
				return bad
			},
		},
		{
			Name:        "state_literals_cost_zero",
			Description: "Every literal of the estimated state costs 0",
			Check: func(_, output any) error {
				obs, ok := output.(*Observation)
				if !ok {
					return nil
				}
				for _, l := range obs.State {
					if c := obs.Deltas.Delta(l); c != 0 {
						return propertyFailed("state_literals_cost_zero", "%s costs %v", l, c)
					}
				}
				return nil
			},
		},
		{
			Name:        "goal_state_is_zero",
			Description: "A state containing every goal literal is estimated at 0",
			Tags:        []string{"critical"},
			Check: func(_, output any) error {
				obs, ok := output.(*Observation)
				if !ok {
					return nil
				}
				state := action.NewLiteralSet(obs.State...)
				for _, g := range obs.Goal {
					if g.Positive && !state.Contains(g) {
						return nil
					}
				}
				if obs.Value != 0 {
					return propertyFailed("goal_state_is_zero", "estimate %v", obs.Value)
				}
				return nil
			},
		},
		{
			Name:        "unreachable_goal_is_infinite",
			Description: "With a built-in rule, a goal literal of infinite cost makes the estimate +Inf",
			Tags:        []string{"builtin_rule"},
			Check: func(_, output any) error {
				obs, ok := output.(*Observation)
				if !ok || obs.Rule.Kind() == RuleCustom {
					return nil
				}
				for _, g := range obs.Goal {
					if math.IsInf(obs.Deltas.Delta(g), 1) && !math.IsInf(obs.Value, 1) {
						return propertyFailed("unreachable_goal_is_infinite", "%s is unreachable but estimate is %v", g, obs.Value)
					}
				}
				return nil
			},
		},
		{
			Name:        "additive_dominates_max",
			Description: "For a built-in rule, the additive estimate of the state is >= its max estimate",
			Tags:        []string{"builtin_rule"},
			Check: func(_, output any) error {
				obs, ok := output.(*Observation)
				if !ok {
					return nil
				}
				other, ok := counterpart(obs.Rule)
				if !ok {
					return nil
				}
				v, err := h.withRule(other).Estimate(context.Background(), obs.State)
				if err != nil {
					return err
				}
				hmax, hadd := obs.Value, v
				if obs.Rule.Kind() == RuleAdditiveCost {
					hmax, hadd = v, obs.Value
				}
				if hadd < hmax {
					return propertyFailed("additive_dominates_max", "additive %v < max %v", hadd, hmax)
				}
				return nil
			},
		},
	}
}

// counterpart returns the other built-in rule. Custom rules have none.
func counterpart(rule CostRule) (CostRule, bool) {
	switch rule.Kind() {
	case RuleMaxCost:
		return AdditiveCost(), true
	case RuleAdditiveCost:
		return MaxCost(), true
	default:
		return CostRule{}, false
	}
}

// withRule returns a copy of h estimating with rule.
func (h *Heuristics) withRule(rule CostRule) *Heuristics {
	c := *h
	c.rule = rule
	return &c
}

// HealthCheck verifies the heuristic is configured.
func (h *Heuristics) HealthCheck(_ context.Context) error {
	if err := h.validate(); err != nil {
		return &EstimateError{Operation: "HealthCheck", Err: err}
	}
	return nil
}

func validCost(c float64) bool {
	return !math.IsNaN(c) && c >= 0
}

func propertyFailed(name, format string, args ...any) error {
	return &EstimateError{
		Operation: "Property." + name,
		Err:       fmt.Errorf("%w: "+format, append([]any{eval.ErrPropertyFailed}, args...)...),
	}
}
