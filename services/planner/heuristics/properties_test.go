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
	"testing"

	"github.com/AleutianAI/relaxplan/services/planner/action"
	"github.com/AleutianAI/relaxplan/services/planner/domains"
	"github.com/AleutianAI/relaxplan/services/planner/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ eval.Evaluable = (*Heuristics)(nil)

func failedNames(r *eval.VerifyResult) []string {
	var names []string
	for _, pr := range r.FailedProperties() {
		names = append(names, pr.Name)
	}
	return names
}

func TestProperties_HoldOnEveryDomain(t *testing.T) {
	for _, e := range domains.Catalog() {
		for _, rule := range []CostRule{MaxCost(), AdditiveCost()} {
			t.Run(e.Name+"/"+rule.Name(), func(t *testing.T) {
				p := must(t)(domains.Lookup(e.Name, 0))
				h := New(p, rule, WithLogger(quietLogger()))

				states := [][]action.Literal{p.Init(), append(p.Init(), p.Goal()...)}
				for _, state := range states {
					obs, err := h.Observe(context.Background(), state)
					require.NoError(t, err)

					result, err := eval.Verify(context.Background(), h, state, obs)
					require.NoError(t, err)
					assert.True(t, result.Passed, "failed: %v", failedNames(result))
					assert.Len(t, result.Properties, len(h.Properties()))
				}
			})
		}
	}
}

func TestProperties_DetectViolations(t *testing.T) {
	p := moveProblem(t)
	h := New(p, MaxCost(), WithLogger(quietLogger()))

	obs, err := h.Observe(context.Background(), p.Init())
	require.NoError(t, err)
	require.Equal(t, 1.0, obs.Value)

	t.Run("negative estimate", func(t *testing.T) {
		bad := *obs
		bad.Value = -1
		result, err := eval.Verify(context.Background(), h, nil, &bad)
		require.NoError(t, err)
		assert.False(t, result.Passed)
		assert.Contains(t, failedNames(result), "non_negative_costs")
	})

	t.Run("nonzero goal state", func(t *testing.T) {
		bad := *obs
		bad.State = p.Goal()
		result, err := eval.Verify(context.Background(), h, nil, &bad)
		require.NoError(t, err)
		assert.Contains(t, failedNames(result), "goal_state_is_zero")
	})

	t.Run("finite estimate for unreachable goal", func(t *testing.T) {
		u := must(t)(domains.Unreachable())
		uh := New(u, MaxCost(), WithLogger(quietLogger()))
		uobs, err := uh.Observe(context.Background(), u.Init())
		require.NoError(t, err)
		require.True(t, math.IsInf(uobs.Value, 1))

		uobs.Value = 3
		result, err := eval.Verify(context.Background(), uh, nil, uobs)
		require.NoError(t, err)
		assert.Contains(t, failedNames(result), "unreachable_goal_is_infinite")
	})

	t.Run("max estimate above additive", func(t *testing.T) {
		bad := *obs
		bad.Value = 5
		result, err := eval.Verify(context.Background(), h, nil, &bad)
		require.NoError(t, err)
		assert.Equal(t, []string{"additive_dominates_max"}, failedNames(result))
	})

	t.Run("additive estimate below max", func(t *testing.T) {
		ah := New(p, AdditiveCost(), WithLogger(quietLogger()))
		aobs, err := ah.Observe(context.Background(), p.Init())
		require.NoError(t, err)

		aobs.Value = 0.5
		result, err := eval.Verify(context.Background(), ah, nil, aobs)
		require.NoError(t, err)
		assert.Equal(t, []string{"additive_dominates_max"}, failedNames(result))
	})
}

func TestProperties_AdditiveDominatesMaxOnIndependentGoals(t *testing.T) {
	p := must(t)(domains.Independent(3))
	for _, rule := range []CostRule{MaxCost(), AdditiveCost()} {
		h := New(p, rule, WithLogger(quietLogger()))
		obs, err := h.Observe(context.Background(), p.Init())
		require.NoError(t, err)

		result, err := eval.Verify(context.Background(), h, nil, obs)
		require.NoError(t, err)
		assert.True(t, result.Passed, "%s failed: %v", rule.Name(), failedNames(result))
	}
}

func TestProperties_CustomRuleSkipsInfinityCheck(t *testing.T) {
	u := must(t)(domains.Unreachable())
	zero := Custom("zero", func(DeltaValues) float64 { return 0 })
	h := New(u, zero, WithLogger(quietLogger()))

	obs, err := h.Observe(context.Background(), u.Init())
	require.NoError(t, err)
	assert.Equal(t, 0.0, obs.Value)

	result, err := eval.Verify(context.Background(), h, nil, obs)
	require.NoError(t, err)
	assert.True(t, result.Passed)
}

func TestHeuristics_NameAndHealthCheck(t *testing.T) {
	p := moveProblem(t)
	assert.Equal(t, "relaxed_planning_graph_additive", New(p, AdditiveCost()).Name())
	assert.NoError(t, New(p, MaxCost()).HealthCheck(context.Background()))

	err := New(nil, MaxCost()).HealthCheck(context.Background())
	assert.ErrorIs(t, err, ErrNilDomain)

	_, err = eval.Verify(context.Background(), New(p, CostRule{}), nil, nil)
	assert.ErrorIs(t, err, eval.ErrHealthCheckFailed)
	assert.ErrorIs(t, err, ErrInvalidRule)
}
