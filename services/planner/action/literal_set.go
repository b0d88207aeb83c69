// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package action

// LiteralSet is an insertion-ordered, grow-only set of literals keyed by
// Literal.Key.
//
// Invariants:
//   - Once added, a literal stays a member for the life of the set.
//   - Literals() preserves insertion order.
//
// Thread Safety: NOT safe for concurrent use.
type LiteralSet struct {
	order []Literal
	index map[string]struct{}
}

// NewLiteralSet builds a set from the given literals, dropping duplicates.
func NewLiteralSet(literals ...Literal) *LiteralSet {
	s := &LiteralSet{
		order: make([]Literal, 0, len(literals)),
		index: make(map[string]struct{}, len(literals)),
	}
	for _, l := range literals {
		s.Add(l)
	}
	return s
}

// Add inserts lit and reports whether the set grew.
func (s *LiteralSet) Add(lit Literal) bool {
	key := lit.Key()
	if _, ok := s.index[key]; ok {
		return false
	}
	s.index[key] = struct{}{}
	s.order = append(s.order, lit)
	return true
}

// Contains reports whether a literal structurally equal to lit is a member.
func (s *LiteralSet) Contains(lit Literal) bool {
	_, ok := s.index[lit.Key()]
	return ok
}

// ContainsKey reports whether a literal with the given canonical key is a
// member.
func (s *LiteralSet) ContainsKey(key string) bool {
	_, ok := s.index[key]
	return ok
}

// Len returns the number of members.
func (s *LiteralSet) Len() int {
	return len(s.order)
}

// Literals returns the members in insertion order. The returned slice is a
// copy; appending to it does not affect the set.
func (s *LiteralSet) Literals() []Literal {
	out := make([]Literal, len(s.order))
	copy(out, s.order)
	return out
}
