// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package problem holds grounded planning problems: a fixed action set, an
// initial state and a goal.
//
// A Problem answers which actions apply in a state, which is all a relaxed
// planning graph heuristic needs from a domain.
package problem

import (
	"github.com/AleutianAI/relaxplan/services/planner/action"
)

// Problem is a validated, immutable grounded planning problem.
//
// Thread Safety: Immutable after New, safe for concurrent use.
type Problem struct {
	name    string
	actions []*action.Action
	init    []action.Literal
	goal    []action.Literal
}

// New validates def and builds a Problem from it.
//
// Inputs:
//   - def: The problem definition. Deep-copied.
//
// Outputs:
//   - *Problem: The problem.
//   - error: Wraps ErrInvalidDefinition if def is invalid.
func New(def Definition) (*Problem, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	p := &Problem{
		name:    def.Name,
		actions: make([]*action.Action, 0, len(def.Actions)),
		init:    action.CloneLiterals(def.Init),
		goal:    action.CloneLiterals(def.Goal),
	}
	for _, a := range def.Actions {
		p.actions = append(p.actions, action.New(a.Name, a.Parameters, a.Types, a.Preconditions, a.Effects))
	}
	return p, nil
}

// Name returns the problem name.
func (p *Problem) Name() string {
	return p.name
}

// Actions returns every grounded action, in definition order.
func (p *Problem) Actions() []*action.Action {
	out := make([]*action.Action, len(p.actions))
	copy(out, p.actions)
	return out
}

// Init returns the initial state.
func (p *Problem) Init() []action.Literal {
	return action.CloneLiterals(p.init)
}

// Goal returns the goal literals.
func (p *Problem) Goal() []action.Literal {
	return action.CloneLiterals(p.goal)
}

// ApplicableActions returns the actions whose preconditions all hold in
// state, in definition order.
//
// Description:
//
//	A positive precondition holds when its atom is in state, a negative one
//	when its atom is absent. "=(x, y)" holds when x and y are the same
//	constant and "NOT =(x, y)" when they differ.
func (p *Problem) ApplicableActions(state []action.Literal) []*action.Action {
	set := action.NewLiteralSet(state...)
	holds := func(l action.Literal) bool {
		return Holds(set, l)
	}

	var out []*action.Action
	for _, a := range p.actions {
		if a.AllPreconditions(holds) {
			out = append(out, a)
		}
	}
	return out
}

// Satisfies reports whether every goal literal holds in state.
func (p *Problem) Satisfies(state []action.Literal) bool {
	set := action.NewLiteralSet(state...)
	for _, g := range p.goal {
		if !Holds(set, g) {
			return false
		}
	}
	return true
}

// Apply returns the successor of state under a: negative effects removed,
// then positive effects added. It does not check applicability.
func Apply(state []action.Literal, a *action.Action) []action.Literal {
	removed := make(map[string]struct{})
	a.VisitEffects(func(e action.Literal) {
		if !e.Positive {
			removed[e.Atom().Key()] = struct{}{}
		}
	})

	next := action.NewLiteralSet()
	for _, l := range state {
		if _, gone := removed[l.Key()]; !gone {
			next.Add(l)
		}
	}
	a.VisitEffects(func(e action.Literal) {
		if e.Positive {
			next.Add(e)
		}
	})
	return next.Literals()
}

// Holds reports whether l is true in the state represented by set.
func Holds(set *action.LiteralSet, l action.Literal) bool {
	if l.IsEquality() {
		equal := len(l.Args) == 2 && l.Args[0] == l.Args[1]
		return equal == l.Positive
	}
	if l.Positive {
		return set.Contains(l)
	}
	return !set.Contains(l.Atom())
}
