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
	"strconv"
	"testing"

	"github.com/AleutianAI/relaxplan/services/planner/action"
	"github.com/AleutianAI/relaxplan/services/planner/domains"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateBatch_PreservesOrder(t *testing.T) {
	p := must(t)(domains.Chain(6))
	h := New(p, AdditiveCost(), WithLogger(quietLogger()))

	states := make([][]action.Literal, 7)
	for i := range states {
		states[i] = lits(action.Pos("at", "l"+strconv.Itoa(i)))
	}

	got, err := EstimateBatch(context.Background(), h, states, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{6, 5, 4, 3, 2, 1, 0}, got)
}

func TestEstimateBatch_DefaultConcurrency(t *testing.T) {
	p := must(t)(domains.Independent(3))
	h := New(p, MaxCost(), WithLogger(quietLogger()))

	got, err := EstimateBatch(context.Background(), h, [][]action.Literal{nil, p.Goal()}, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, got)
}

func TestEstimateBatch_Empty(t *testing.T) {
	got, err := EstimateBatch(context.Background(), New(nil, MaxCost()), nil, 2)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEstimateBatch_Error(t *testing.T) {
	p := must(t)(domains.Chain(2))
	h := New(p, MaxCost(), WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := EstimateBatch(ctx, h, [][]action.Literal{p.Init(), p.Init()}, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)
}
