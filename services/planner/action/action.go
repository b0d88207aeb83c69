// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package action defines grounded planning operators and the literals they
// are made of.
//
// An Action is a fully grounded operator: concrete parameters, their types,
// and ordered precondition and effect literal lists. Actions are built once
// during grounding and shared, read-only, for the lifetime of a planner.
package action

import (
	"strings"
)

// Action is an immutable grounded operator.
//
// Description:
//
//	All accessors return copies, so no caller can change an Action after
//	New returns. The precondition list may contain "=" pseudo-literals
//	that grounding uses to check parameter bindings; FilteredPreconditions
//	is the view to use when reasoning about world facts.
//
// Thread Safety: Immutable after creation, safe for concurrent use.
type Action struct {
	name          string
	params        []string
	types         map[string]string
	preconditions []Literal
	effects       []Literal
}

// New creates an Action, deep-copying every input.
//
// Inputs:
//   - name: Operator name, e.g. "move".
//   - params: Ordered parameter identifiers. May be nil.
//   - types: Parameter to type mapping. Parameters without an entry are
//     untyped. May be nil.
//   - preconditions: Ordered precondition literals, "=" literals included.
//   - effects: Ordered effect literals.
//
// Outputs:
//   - *Action: The new action.
func New(name string, params []string, types map[string]string, preconditions, effects []Literal) *Action {
	var t map[string]string
	if types != nil {
		t = make(map[string]string, len(types))
		for k, v := range types {
			t[k] = v
		}
	}
	return &Action{
		name:          name,
		params:        cloneStrings(params),
		types:         t,
		preconditions: CloneLiterals(preconditions),
		effects:       CloneLiterals(effects),
	}
}

// Name returns the operator name.
func (a *Action) Name() string {
	return a.name
}

// Parameters returns the ordered parameter identifiers.
func (a *Action) Parameters() []string {
	return cloneStrings(a.params)
}

// ParameterTypes returns the parameter to type mapping.
func (a *Action) ParameterTypes() map[string]string {
	out := make(map[string]string, len(a.types))
	for k, v := range a.types {
		out[k] = v
	}
	return out
}

// Preconditions returns the full precondition list, including any "="
// pseudo-literals.
func (a *Action) Preconditions() []Literal {
	return CloneLiterals(a.preconditions)
}

// FilteredPreconditions returns the preconditions without any literal whose
// predicate is the "=" pseudo-predicate, of either polarity.
//
// Description:
//
//	The result is a fresh slice on every call and never aliases the stored
//	preconditions, so callers may keep or modify it freely.
func (a *Action) FilteredPreconditions() []Literal {
	out := make([]Literal, 0, len(a.preconditions))
	for _, p := range a.preconditions {
		if p.IsEquality() {
			continue
		}
		out = append(out, p.Clone())
	}
	return out
}

// Effects returns the ordered effect literals.
func (a *Action) Effects() []Literal {
	return CloneLiterals(a.effects)
}

// VisitFilteredPreconditions calls fn for every non-equality precondition
// in order, without allocating. fn must treat the literal as read-only.
func (a *Action) VisitFilteredPreconditions(fn func(Literal)) {
	for _, p := range a.preconditions {
		if !p.IsEquality() {
			fn(p)
		}
	}
}

// AllPreconditions reports whether holds returns true for every
// precondition, "=" literals included. It stops at the first false.
func (a *Action) AllPreconditions(holds func(Literal) bool) bool {
	for _, p := range a.preconditions {
		if !holds(p) {
			return false
		}
	}
	return true
}

// VisitEffects calls fn for every effect in order, without allocating. fn
// must treat the literal as read-only.
func (a *Action) VisitEffects(fn func(Literal)) {
	for _, e := range a.effects {
		fn(e)
	}
}

// String renders the action for diagnostics:
//
//	Action(name:move)
//	>> params:[?from - room, ?to - room]
//	>> precond:[at(?from), NOT =(?from, ?to)]
//	>> effects:[at(?to), NOT at(?from)])
func (a *Action) String() string {
	var b strings.Builder
	b.WriteString("Action(name:")
	b.WriteString(a.name)
	b.WriteString(")\n")

	if len(a.params) > 0 {
		b.WriteString(">> params:[")
		for i, p := range a.params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p)
			if t, ok := a.types[p]; ok {
				b.WriteString(" - ")
				b.WriteString(t)
			}
		}
		b.WriteString("]\n")
	}

	b.WriteString(">> precond:[")
	writeLiterals(&b, a.preconditions)
	b.WriteString("]\n")

	b.WriteString(">> effects:[")
	writeLiterals(&b, a.effects)
	b.WriteString("])\n")
	return b.String()
}

func writeLiterals(b *strings.Builder, literals []Literal) {
	for i, l := range literals {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(l.String())
	}
}
