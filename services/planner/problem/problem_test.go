// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package problem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AleutianAI/relaxplan/services/planner/action"
	"github.com/AleutianAI/relaxplan/services/planner/heuristics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ heuristics.Domain = (*Problem)(nil)

func moveDefinition() Definition {
	return Definition{
		Name: "move",
		Actions: []ActionDef{
			{
				Name:          "move",
				Parameters:    []string{"a", "b"},
				Types:         map[string]string{"a": "room", "b": "room"},
				Preconditions: []action.Literal{action.Pos("at", "a"), action.Neg("=", "a", "b")},
				Effects:       []action.Literal{action.Pos("at", "b"), action.Neg("at", "a")},
			},
		},
		Init: []action.Literal{action.Pos("at", "a")},
		Goal: []action.Literal{action.Pos("at", "b")},
	}
}

func actionNames(actions []*action.Action) []string {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = a.Name()
	}
	return names
}

// =============================================================================
// New / Validate
// =============================================================================

func TestNew_Valid(t *testing.T) {
	p, err := New(moveDefinition())
	require.NoError(t, err)

	assert.Equal(t, "move", p.Name())
	assert.Len(t, p.Actions(), 1)
	assert.Equal(t, "at(a)", p.Init()[0].Key())
	assert.Equal(t, "at(b)", p.Goal()[0].Key())
}

func TestNew_CopiesDefinition(t *testing.T) {
	def := moveDefinition()
	p, err := New(def)
	require.NoError(t, err)

	def.Goal[0].Args[0] = "mutated"
	def.Init[0] = action.Pos("elsewhere")

	assert.Equal(t, "at(b)", p.Goal()[0].Key())
	assert.Equal(t, "at(a)", p.Init()[0].Key())

	goal := p.Goal()
	goal[0].Args[0] = "mutated"
	assert.Equal(t, "at(b)", p.Goal()[0].Key())
}

func TestDefinition_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Definition)
	}{
		{"missing name", func(d *Definition) { d.Name = "" }},
		{"no actions", func(d *Definition) { d.Actions = nil }},
		{"no goal", func(d *Definition) { d.Goal = nil }},
		{"unnamed action", func(d *Definition) { d.Actions[0].Name = "" }},
		{"no effects", func(d *Definition) { d.Actions[0].Effects = nil }},
		{"unnamed literal", func(d *Definition) { d.Goal = []action.Literal{{Positive: true}} }},
		{"empty parameter", func(d *Definition) { d.Actions[0].Parameters = []string{"a", ""} }},
		{"undeclared typed parameter", func(d *Definition) { d.Actions[0].Types["c"] = "room" }},
		{"unary equality", func(d *Definition) {
			d.Actions[0].Preconditions = append(d.Actions[0].Preconditions, action.Pos("=", "a"))
		}},
		{"equality effect", func(d *Definition) {
			d.Actions[0].Effects = append(d.Actions[0].Effects, action.Pos("=", "a", "b"))
		}},
		{"equality in init", func(d *Definition) { d.Init = append(d.Init, action.Pos("=", "a", "a")) }},
		{"equality in goal", func(d *Definition) { d.Goal = append(d.Goal, action.Pos("=", "a", "a")) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := moveDefinition()
			tt.mutate(&def)
			_, err := New(def)
			assert.ErrorIs(t, err, ErrInvalidDefinition)
		})
	}
}

func TestDefinition_Validate_EmptyInitAllowed(t *testing.T) {
	def := moveDefinition()
	def.Init = nil
	assert.NoError(t, def.Validate())
}

// =============================================================================
// ApplicableActions
// =============================================================================

func TestApplicableActions(t *testing.T) {
	def := Definition{
		Name: "applicability",
		Actions: []ActionDef{
			{Name: "needs-p", Preconditions: []action.Literal{action.Pos("p")}, Effects: []action.Literal{action.Pos("x")}},
			{Name: "needs-not-q", Preconditions: []action.Literal{action.Neg("q")}, Effects: []action.Literal{action.Pos("x")}},
			{Name: "same", Preconditions: []action.Literal{action.Pos("=", "c", "c")}, Effects: []action.Literal{action.Pos("x")}},
			{Name: "different", Preconditions: []action.Literal{action.Neg("=", "c", "d")}, Effects: []action.Literal{action.Pos("x")}},
			{Name: "not-different", Preconditions: []action.Literal{action.Neg("=", "c", "c")}, Effects: []action.Literal{action.Pos("x")}},
			{Name: "free", Effects: []action.Literal{action.Pos("x")}},
		},
		Goal: []action.Literal{action.Pos("x")},
	}
	p, err := New(def)
	require.NoError(t, err)

	t.Run("empty state", func(t *testing.T) {
		got := actionNames(p.ApplicableActions(nil))
		assert.Equal(t, []string{"needs-not-q", "same", "different", "free"}, got)
	})

	t.Run("p and q hold", func(t *testing.T) {
		got := actionNames(p.ApplicableActions([]action.Literal{action.Pos("p"), action.Pos("q")}))
		assert.Equal(t, []string{"needs-p", "same", "different", "free"}, got)
	})
}

func TestApplicableActions_ReturnsSharedActions(t *testing.T) {
	p, err := New(moveDefinition())
	require.NoError(t, err)

	first := p.ApplicableActions(p.Init())
	second := p.ApplicableActions(p.Init())
	require.Len(t, first, 1)
	assert.Same(t, first[0], second[0])
}

// =============================================================================
// Satisfies / Apply
// =============================================================================

func TestSatisfies(t *testing.T) {
	def := moveDefinition()
	def.Goal = []action.Literal{action.Pos("at", "b"), action.Neg("at", "a")}
	p, err := New(def)
	require.NoError(t, err)

	assert.False(t, p.Satisfies(p.Init()))
	assert.False(t, p.Satisfies([]action.Literal{action.Pos("at", "a"), action.Pos("at", "b")}))
	assert.True(t, p.Satisfies([]action.Literal{action.Pos("at", "b")}))
}

func TestApply(t *testing.T) {
	p, err := New(moveDefinition())
	require.NoError(t, err)

	next := Apply(p.Init(), p.Actions()[0])
	assert.True(t, p.Satisfies(next))
	require.Len(t, next, 1)
	assert.Equal(t, "at(b)", next[0].Key())
}

// =============================================================================
// YAML
// =============================================================================

const moveYAML = `
name: move
actions:
  - name: move
    parameters: [a, b]
    types: {a: room, b: room}
    preconditions: ["at(a)", "NOT =(a, b)"]
    effects: ["at(b)", "NOT at(a)"]
init: ["at(a)"]
goal: ["at(b)"]
`

func TestParseDefinition(t *testing.T) {
	def, err := ParseDefinition([]byte(moveYAML))
	require.NoError(t, err)

	p, err := New(*def)
	require.NoError(t, err)

	a := p.Actions()[0]
	assert.Equal(t, moveDefinition().Actions[0].Types, a.ParameterTypes())
	assert.Len(t, a.Preconditions(), 2)
	assert.Len(t, a.FilteredPreconditions(), 1)
	assert.Len(t, p.ApplicableActions(p.Init()), 1)
}

func TestParseDefinition_Errors(t *testing.T) {
	tests := map[string]string{
		"bad yaml":        "name: [",
		"bad literal":     "name: x\nactions: [{name: a, effects: ['p(']}]\ngoal: [p]",
		"bad goal":        "name: x\nactions: [{name: a, effects: [p]}]\ngoal: ['(p)']",
		"fails validate":  "name: x\ngoal: [p]",
		"equality effect": "name: x\nactions: [{name: a, effects: ['=(a, b)']}]\ngoal: [p]",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDefinition([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalidDefinition)
		})
	}
}

func TestLoadDefinition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "move.yaml")
	require.NoError(t, os.WriteFile(path, []byte(moveYAML), 0o600))

	def, err := LoadDefinition(path)
	require.NoError(t, err)
	assert.Equal(t, "move", def.Name)

	_, err = LoadDefinition(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
