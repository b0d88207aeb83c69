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
	"errors"
	"fmt"
	"os"

	"github.com/AleutianAI/relaxplan/services/planner/action"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrInvalidDefinition indicates a definition failed validation.
	ErrInvalidDefinition = errors.New("invalid problem definition")
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

var definitionValidate = validator.New()

// =============================================================================
// Definition Types
// =============================================================================

// ActionDef describes one grounded action.
type ActionDef struct {
	// Name is the operator name, e.g. "move".
	Name string `validate:"required"`

	// Parameters are the ordered parameter identifiers.
	Parameters []string `validate:"dive,required"`

	// Types maps parameters to type names. Every key must be a declared
	// parameter.
	Types map[string]string

	// Preconditions may include "=" literals over two arguments.
	Preconditions []action.Literal `validate:"dive"`

	// Effects must be non-empty and must not use "=".
	Effects []action.Literal `validate:"required,min=1,dive"`
}

// Definition is a complete grounded planning problem.
type Definition struct {
	Name    string           `validate:"required"`
	Actions []ActionDef      `validate:"required,min=1,dive"`
	Init    []action.Literal `validate:"dive"`
	Goal    []action.Literal `validate:"required,min=1,dive"`
}

// Validate checks the definition's structure and semantics.
//
// Description:
//
//	Structural rules come from the validate tags. Semantic rules: every
//	Types key is a declared parameter, "=" literals take exactly two
//	arguments and appear only in preconditions, and Init and Goal hold no
//	"=" literals.
//
// Outputs:
//   - error: Wraps ErrInvalidDefinition on failure.
func (d *Definition) Validate() error {
	if err := definitionValidate.Struct(d); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}

	for i, a := range d.Actions {
		declared := make(map[string]struct{}, len(a.Parameters))
		for _, p := range a.Parameters {
			declared[p] = struct{}{}
		}
		for p := range a.Types {
			if _, ok := declared[p]; !ok {
				return fmt.Errorf("%w: action %d (%s): type for undeclared parameter %q", ErrInvalidDefinition, i, a.Name, p)
			}
		}
		for _, p := range a.Preconditions {
			if p.IsEquality() && len(p.Args) != 2 {
				return fmt.Errorf("%w: action %d (%s): %s must have two arguments", ErrInvalidDefinition, i, a.Name, p)
			}
		}
		for _, e := range a.Effects {
			if e.IsEquality() {
				return fmt.Errorf("%w: action %d (%s): effect %s uses \"=\"", ErrInvalidDefinition, i, a.Name, e)
			}
		}
	}

	for _, l := range d.Init {
		if l.IsEquality() {
			return fmt.Errorf("%w: init literal %s uses \"=\"", ErrInvalidDefinition, l)
		}
	}
	for _, l := range d.Goal {
		if l.IsEquality() {
			return fmt.Errorf("%w: goal literal %s uses \"=\"", ErrInvalidDefinition, l)
		}
	}
	return nil
}

// =============================================================================
// YAML Format
// =============================================================================

// definitionFile is the YAML form of a Definition. Literals are written in
// their String form, e.g. "at(robby, room-a)" or "NOT free(left)".
type definitionFile struct {
	Name    string       `yaml:"name"`
	Actions []actionFile `yaml:"actions"`
	Init    []string     `yaml:"init"`
	Goal    []string     `yaml:"goal"`
}

type actionFile struct {
	Name          string            `yaml:"name"`
	Parameters    []string          `yaml:"parameters"`
	Types         map[string]string `yaml:"types"`
	Preconditions []string          `yaml:"preconditions"`
	Effects       []string          `yaml:"effects"`
}

// ParseDefinition decodes and validates a YAML problem definition.
//
// Example:
//
//	name: move
//	actions:
//	  - name: move
//	    parameters: [a, b]
//	    preconditions: ["at(a)"]
//	    effects: ["at(b)", "NOT at(a)"]
//	init: ["at(a)"]
//	goal: ["at(b)"]
func ParseDefinition(data []byte) (*Definition, error) {
	var f definitionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: parsing yaml: %v", ErrInvalidDefinition, err)
	}

	def := &Definition{Name: f.Name}
	var err error
	for _, a := range f.Actions {
		ad := ActionDef{Name: a.Name, Parameters: a.Parameters, Types: a.Types}
		if ad.Preconditions, err = parseLiterals(a.Preconditions); err != nil {
			return nil, fmt.Errorf("%w: action %s: %v", ErrInvalidDefinition, a.Name, err)
		}
		if ad.Effects, err = parseLiterals(a.Effects); err != nil {
			return nil, fmt.Errorf("%w: action %s: %v", ErrInvalidDefinition, a.Name, err)
		}
		def.Actions = append(def.Actions, ad)
	}
	if def.Init, err = parseLiterals(f.Init); err != nil {
		return nil, fmt.Errorf("%w: init: %v", ErrInvalidDefinition, err)
	}
	if def.Goal, err = parseLiterals(f.Goal); err != nil {
		return nil, fmt.Errorf("%w: goal: %v", ErrInvalidDefinition, err)
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// LoadDefinition reads and parses a YAML problem definition from path.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading problem %s: %w", path, err)
	}
	return ParseDefinition(data)
}

func parseLiterals(in []string) ([]action.Literal, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]action.Literal, 0, len(in))
	for _, s := range in {
		l, err := action.ParseLiteral(s)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}
