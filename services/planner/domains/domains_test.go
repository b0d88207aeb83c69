// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package domains

import (
	"testing"

	"github.com/AleutianAI/relaxplan/services/planner/problem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain(t *testing.T) {
	p, err := Chain(3)
	require.NoError(t, err)

	assert.Equal(t, "chain-3", p.Name())
	assert.Len(t, p.Actions(), 3)
	assert.Equal(t, "at(l3)", p.Goal()[0].Key())

	state := p.Init()
	for i := 0; i < 3; i++ {
		applicable := p.ApplicableActions(state)
		require.Len(t, applicable, 1, "step %d", i)
		state = problem.Apply(state, applicable[0])
	}
	assert.True(t, p.Satisfies(state))
}

func TestGripper(t *testing.T) {
	p, err := Gripper(2)
	require.NoError(t, err)

	// 4 moves, plus pick and drop per ball, room and gripper.
	assert.Len(t, p.Actions(), 4+2*2*2*2)
	assert.Len(t, p.Goal(), 2)

	// Only move(rooma, roomb) and the four rooma picks apply initially;
	// the self-move is excluded by its equality precondition.
	applicable := p.ApplicableActions(p.Init())
	names := map[string]int{}
	for _, a := range applicable {
		names[a.Name()]++
	}
	assert.Equal(t, map[string]int{"move": 1, "pick": 4}, names)
}

func TestIndependent(t *testing.T) {
	p, err := Independent(4)
	require.NoError(t, err)

	assert.Len(t, p.Goal(), 4)
	assert.Len(t, p.ApplicableActions(nil), 4)
	assert.Empty(t, p.Init())
}

func TestUnreachable(t *testing.T) {
	p, err := Unreachable()
	require.NoError(t, err)

	assert.Equal(t, "r()", p.Goal()[0].Key())
	assert.Len(t, p.ApplicableActions(p.Init()), 1)
}

func TestInvalidSizes(t *testing.T) {
	for name, build := range map[string]func(int) (*problem.Problem, error){
		"chain":       Chain,
		"gripper":     Gripper,
		"independent": Independent,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := build(0)
			assert.ErrorIs(t, err, ErrInvalidSize)
		})
	}
}

func TestLookup(t *testing.T) {
	p, err := Lookup("Chain", 2)
	require.NoError(t, err)
	assert.Equal(t, "chain-2", p.Name())

	p, err = Lookup("gripper", 0)
	require.NoError(t, err)
	assert.Equal(t, "gripper-4", p.Name())

	p, err = Lookup("unreachable", 99)
	require.NoError(t, err)
	assert.Equal(t, "unreachable", p.Name())

	_, err = Lookup("blocksworld", 3)
	assert.ErrorIs(t, err, ErrUnknownDomain)
}

func TestCatalog(t *testing.T) {
	entries := Catalog()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
		assert.NotEmpty(t, e.Description)
		assert.Positive(t, e.DefaultSize)
	}
	assert.Equal(t, []string{"chain", "gripper", "independent", "unreachable"}, names)
}
