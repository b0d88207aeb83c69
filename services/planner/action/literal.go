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

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedLiteral indicates a literal string could not be parsed.
var ErrMalformedLiteral = errors.New("malformed literal")

// EqualityPredicate is the pseudo-predicate used by grounding to check
// parameter bindings. It never describes a world fact.
const EqualityPredicate = "="

// negationMarker prefixes the canonical key of a negative literal.
const negationMarker = "¬"

// Literal is a predicate application tagged positive or negative.
//
// Description:
//
//	Two Literal values denote the same ground atom when their names and
//	arguments match, regardless of where they were constructed. Use Key or
//	Equal for identity; never compare slices or pointers.
//
// Thread Safety: Immutable by convention. Do not mutate Args after use.
type Literal struct {
	// Name is the predicate name, e.g. "at".
	Name string `validate:"required"`

	// Args are the grounded arguments, e.g. ["robby", "room-a"].
	Args []string

	// Positive is true when the literal asserts the atom, false when it
	// asserts the atom's negation.
	Positive bool
}

// Pos builds a positive literal.
func Pos(name string, args ...string) Literal {
	return Literal{Name: name, Args: cloneStrings(args), Positive: true}
}

// Neg builds a negative literal.
func Neg(name string, args ...string) Literal {
	return Literal{Name: name, Args: cloneStrings(args), Positive: false}
}

// Key returns the canonical, hashable identity of the literal.
//
// Description:
//
//	The key is "name(arg1,arg2)" for positive literals and the same string
//	prefixed with "¬" for negative ones. Keys are the interned form used by
//	every map in the planner, so lookups are O(1) instead of a scan with
//	Equal.
//
//	Backslash, comma, parentheses and NUL inside the name or an argument
//	are escaped, as is a "¬" leading the name, and an empty argument is
//	written as "\_", so two literals share a key exactly when Equal reports
//	true. Keys never contain a NUL byte.
func (l Literal) Key() string {
	var b strings.Builder
	n := len(l.Name) + 2
	for _, a := range l.Args {
		n += len(a) + 1
	}
	if !l.Positive {
		n += len(negationMarker)
	}
	b.Grow(n)

	if !l.Positive {
		b.WriteString(negationMarker)
	}
	if strings.HasPrefix(l.Name, negationMarker) {
		b.WriteByte('\\')
	}
	writeKeyPart(&b, l.Name)
	b.WriteByte('(')
	for i, a := range l.Args {
		if i > 0 {
			b.WriteByte(',')
		}
		if a == "" {
			b.WriteString(`\_`)
			continue
		}
		writeKeyPart(&b, a)
	}
	b.WriteByte(')')
	return b.String()
}

// writeKeyPart writes s with the key delimiters escaped.
func writeKeyPart(b *strings.Builder, s string) {
	if !strings.ContainsAny(s, "\\,()\x00") {
		b.WriteString(s)
		return
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', ',', '(', ')':
			b.WriteByte('\\')
			b.WriteByte(c)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteByte(c)
		}
	}
}

// Equal reports whether two literals have the same polarity, predicate
// name and arguments.
func (l Literal) Equal(other Literal) bool {
	if l.Positive != other.Positive || l.Name != other.Name || len(l.Args) != len(other.Args) {
		return false
	}
	for i := range l.Args {
		if l.Args[i] != other.Args[i] {
			return false
		}
	}
	return true
}

// Atom returns the positive form of the literal.
func (l Literal) Atom() Literal {
	return Literal{Name: l.Name, Args: l.Args, Positive: true}
}

// Negate returns the literal with its polarity flipped.
func (l Literal) Negate() Literal {
	return Literal{Name: l.Name, Args: l.Args, Positive: !l.Positive}
}

// IsEquality reports whether the literal uses the "=" pseudo-predicate.
func (l Literal) IsEquality() bool {
	return l.Name == EqualityPredicate
}

// String renders the literal as "name(a, b)", prefixed with "NOT " when
// negative.
func (l Literal) String() string {
	var b strings.Builder
	if !l.Positive {
		b.WriteString("NOT ")
	}
	b.WriteString(l.Name)
	b.WriteByte('(')
	b.WriteString(strings.Join(l.Args, ", "))
	b.WriteByte(')')
	return b.String()
}

// Clone returns a deep copy of the literal.
func (l Literal) Clone() Literal {
	return Literal{Name: l.Name, Args: cloneStrings(l.Args), Positive: l.Positive}
}

// IndexOf returns the position of the first literal in literals that is
// structurally equal to lit.
func IndexOf(literals []Literal, lit Literal) (int, bool) {
	for i := range literals {
		if literals[i].Equal(lit) {
			return i, true
		}
	}
	return -1, false
}

// CloneLiterals deep-copies a literal slice. A nil input yields nil.
func CloneLiterals(literals []Literal) []Literal {
	if literals == nil {
		return nil
	}
	out := make([]Literal, len(literals))
	for i, l := range literals {
		out[i] = l.Clone()
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// ParseLiteral parses the String form of a literal: "name(a, b)", "name()"
// or "name", optionally prefixed by "NOT " or "¬" for negation.
func ParseLiteral(s string) (Literal, error) {
	s = strings.TrimSpace(s)
	positive := true
	switch {
	case strings.HasPrefix(s, negationMarker):
		positive = false
		s = strings.TrimSpace(strings.TrimPrefix(s, negationMarker))
	case len(s) > 4 && strings.EqualFold(s[:4], "not "):
		positive = false
		s = strings.TrimSpace(s[4:])
	}

	name, rest, hasArgs := strings.Cut(s, "(")
	name = strings.TrimSpace(name)
	if name == "" {
		return Literal{}, fmt.Errorf("%w: %q has no predicate name", ErrMalformedLiteral, s)
	}
	if strings.ContainsAny(name, ") ,") {
		return Literal{}, fmt.Errorf("%w: bad predicate name %q", ErrMalformedLiteral, name)
	}

	var args []string
	if hasArgs {
		inner, ok := strings.CutSuffix(strings.TrimSpace(rest), ")")
		if !ok || strings.ContainsAny(inner, "()") {
			return Literal{}, fmt.Errorf("%w: unbalanced parentheses in %q", ErrMalformedLiteral, s)
		}
		if strings.TrimSpace(inner) != "" {
			for _, a := range strings.Split(inner, ",") {
				a = strings.TrimSpace(a)
				if a == "" {
					return Literal{}, fmt.Errorf("%w: empty argument in %q", ErrMalformedLiteral, s)
				}
				args = append(args, a)
			}
		}
	}
	return Literal{Name: name, Args: args, Positive: positive}, nil
}
