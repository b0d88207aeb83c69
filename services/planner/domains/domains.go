// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package domains builds small grounded benchmark problems with known
// heuristic values.
//
// Known values under unit action costs:
//
//	chain(n)        max = n   additive = n
//	gripper(balls)  max = 2   additive = 3 * balls
//	independent(n)  max = 1   additive = n
//	unreachable     max = +Inf additive = +Inf
package domains

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/AleutianAI/relaxplan/services/planner/action"
	"github.com/AleutianAI/relaxplan/services/planner/problem"
)

// Package-level error definitions.
var (
	ErrUnknownDomain = errors.New("unknown domain")
	ErrInvalidSize   = errors.New("invalid domain size")
)

// Entry describes a built-in problem family.
type Entry struct {
	Name        string
	Description string
	DefaultSize int
	build       func(size int) (*problem.Problem, error)
}

var catalog = map[string]Entry{
	"chain": {
		Name:        "chain",
		Description: "Walk a line of n+1 locations; every action has one precondition",
		DefaultSize: 5,
		build:       Chain,
	},
	"gripper": {
		Name:        "gripper",
		Description: "Carry balls between two rooms with two grippers",
		DefaultSize: 4,
		build:       Gripper,
	},
	"independent": {
		Name:        "independent",
		Description: "n goal facts, each made true by its own precondition-free action",
		DefaultSize: 3,
		build:       Independent,
	},
	"unreachable": {
		Name:        "unreachable",
		Description: "A goal no action ever adds; size is ignored",
		DefaultSize: 1,
		build:       func(int) (*problem.Problem, error) { return Unreachable() },
	},
}

// Catalog returns every built-in problem family, sorted by name.
func Catalog() []Entry {
	out := make([]Entry, 0, len(catalog))
	for _, e := range catalog {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup builds the named problem at the given size. A size <= 0 uses the
// family's default.
func Lookup(name string, size int) (*problem.Problem, error) {
	e, ok := catalog[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDomain, name)
	}
	if size <= 0 {
		size = e.DefaultSize
	}
	return e.build(size)
}

// Chain builds a problem whose shortest plan moves along n locations.
func Chain(n int) (*problem.Problem, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: chain needs n >= 1, got %d", ErrInvalidSize, n)
	}

	loc := func(i int) string { return "l" + strconv.Itoa(i) }
	def := problem.Definition{
		Name: fmt.Sprintf("chain-%d", n),
		Init: []action.Literal{action.Pos("at", loc(0))},
		Goal: []action.Literal{action.Pos("at", loc(n))},
	}
	for i := 0; i < n; i++ {
		from, to := loc(i), loc(i+1)
		def.Actions = append(def.Actions, problem.ActionDef{
			Name:          "move",
			Parameters:    []string{from, to},
			Types:         map[string]string{from: "location", to: "location"},
			Preconditions: []action.Literal{action.Pos("at", from)},
			Effects:       []action.Literal{action.Pos("at", to), action.Neg("at", from)},
		})
	}
	return problem.New(def)
}

// Gripper builds the two-room gripper problem with the given number of
// balls, all starting in rooma and wanted in roomb.
//
// Every move(from, to) pair is grounded, including from == to; the
// "NOT =(from, to)" precondition rules the self-moves out.
func Gripper(balls int) (*problem.Problem, error) {
	if balls < 1 {
		return nil, fmt.Errorf("%w: gripper needs balls >= 1, got %d", ErrInvalidSize, balls)
	}

	rooms := []string{"rooma", "roomb"}
	grippers := []string{"left", "right"}

	def := problem.Definition{
		Name: fmt.Sprintf("gripper-%d", balls),
		Init: []action.Literal{action.Pos("at-robby", "rooma")},
	}
	for _, g := range grippers {
		def.Init = append(def.Init, action.Pos("free", g))
	}

	for _, from := range rooms {
		for _, to := range rooms {
			def.Actions = append(def.Actions, problem.ActionDef{
				Name:       "move",
				Parameters: []string{from, to},
				Types:      map[string]string{from: "room", to: "room"},
				Preconditions: []action.Literal{
					action.Pos("at-robby", from),
					action.Neg(action.EqualityPredicate, from, to),
				},
				Effects: []action.Literal{action.Pos("at-robby", to), action.Neg("at-robby", from)},
			})
		}
	}

	for i := 1; i <= balls; i++ {
		ball := "ball" + strconv.Itoa(i)
		def.Init = append(def.Init, action.Pos("at", ball, "rooma"))
		def.Goal = append(def.Goal, action.Pos("at", ball, "roomb"))

		for _, room := range rooms {
			for _, g := range grippers {
				types := map[string]string{ball: "ball", room: "room", g: "gripper"}
				def.Actions = append(def.Actions,
					problem.ActionDef{
						Name:       "pick",
						Parameters: []string{ball, room, g},
						Types:      types,
						Preconditions: []action.Literal{
							action.Pos("at", ball, room),
							action.Pos("at-robby", room),
							action.Pos("free", g),
						},
						Effects: []action.Literal{
							action.Pos("carry", ball, g),
							action.Neg("at", ball, room),
							action.Neg("free", g),
						},
					},
					problem.ActionDef{
						Name:       "drop",
						Parameters: []string{ball, room, g},
						Types:      types,
						Preconditions: []action.Literal{
							action.Pos("carry", ball, g),
							action.Pos("at-robby", room),
						},
						Effects: []action.Literal{
							action.Pos("at", ball, room),
							action.Pos("free", g),
							action.Neg("carry", ball, g),
						},
					},
				)
			}
		}
	}
	return problem.New(def)
}

// Independent builds n goal facts p1..pn, each added by its own action
// with no preconditions.
func Independent(n int) (*problem.Problem, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: independent needs n >= 1, got %d", ErrInvalidSize, n)
	}

	def := problem.Definition{Name: fmt.Sprintf("independent-%d", n)}
	for i := 1; i <= n; i++ {
		fact := "p" + strconv.Itoa(i)
		def.Actions = append(def.Actions, problem.ActionDef{
			Name:    "make-" + fact,
			Effects: []action.Literal{action.Pos(fact)},
		})
		def.Goal = append(def.Goal, action.Pos(fact))
	}
	return problem.New(def)
}

// Unreachable builds a problem whose goal r is never added: state {p}, one
// action p -> q.
func Unreachable() (*problem.Problem, error) {
	return problem.New(problem.Definition{
		Name: "unreachable",
		Actions: []problem.ActionDef{
			{
				Name:          "a",
				Preconditions: []action.Literal{action.Pos("p")},
				Effects:       []action.Literal{action.Pos("q")},
			},
		},
		Init: []action.Literal{action.Pos("p")},
		Goal: []action.Literal{action.Pos("r")},
	})
}
