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
	"math"

	"github.com/AleutianAI/relaxplan/services/planner/action"
)

// DeltaMap holds the minimal known reach-cost of every literal seen during
// one estimation, keyed by Literal.Key.
//
// Description:
//
//	Unknown positive literals cost +Inf. Negative literals always cost 0:
//	the relaxation never deletes, so a negated condition is treated as
//	already satisfied once the domain has judged the action applicable.
//
// Invariants:
//   - Every stored cost is >= 0 or +Inf.
//   - A stored cost only ever decreases during the fixpoint.
//
// Thread Safety: Read-only once returned by EstimateDeltaValues.
type DeltaMap struct {
	values     map[string]float64
	unresolved []action.Literal

	// Passes is the number of fixpoint passes run.
	Passes int

	// RelaxedSize is the size of the relaxed state at the fixpoint.
	RelaxedSize int

	// Converged is false only when the pass limit stopped the fixpoint
	// before costs settled.
	Converged bool
}

func newDeltaMap(capacity int) *DeltaMap {
	return &DeltaMap{values: make(map[string]float64, capacity)}
}

// Delta returns the cost of lit.
func (d *DeltaMap) Delta(lit action.Literal) float64 {
	if !lit.Positive {
		return 0
	}
	if v, ok := d.values[lit.Key()]; ok {
		return v
	}
	return math.Inf(1)
}

// Deltas returns the cost of each literal, in order.
func (d *DeltaMap) Deltas(literals []action.Literal) DeltaValues {
	out := make(DeltaValues, len(literals))
	for i, l := range literals {
		out[i] = d.Delta(l)
	}
	return out
}

// Known returns the stored cost of lit and whether one is stored.
func (d *DeltaMap) Known(lit action.Literal) (float64, bool) {
	v, ok := d.values[lit.Key()]
	return v, ok
}

// Len returns the number of stored costs.
func (d *DeltaMap) Len() int {
	return len(d.values)
}

// Each calls fn for every stored key and cost, in no particular order.
func (d *DeltaMap) Each(fn func(key string, cost float64)) {
	for k, v := range d.values {
		fn(k, v)
	}
}

// Unresolved returns the literals that entered the relaxed state but never
// received a finite cost: each is only supported through a cycle of
// forward references and is treated as unreachable.
func (d *DeltaMap) Unresolved() []action.Literal {
	return action.CloneLiterals(d.unresolved)
}

// relax lowers the cost stored under key to cost if that is an improvement
// and reports whether it was.
func (d *DeltaMap) relax(key string, cost float64) bool {
	if cur, ok := d.values[key]; ok && cur <= cost {
		return false
	}
	d.values[key] = cost
	return true
}
