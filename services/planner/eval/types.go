// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package eval provides executable correctness properties for planner
// components.
//
// A component that implements Evaluable publishes the invariants it
// guarantees as Property values. Tests and the CLI run them against real
// input/output pairs with Verify.
package eval

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrNilComponent is returned when verifying a nil component.
	ErrNilComponent = errors.New("component must not be nil")

	// ErrInvalidProperty is returned when a property is malformed.
	ErrInvalidProperty = errors.New("invalid property definition")

	// ErrPropertyFailed is returned when a property check fails.
	ErrPropertyFailed = errors.New("property check failed")

	// ErrHealthCheckFailed is returned when a health check fails.
	ErrHealthCheckFailed = errors.New("health check failed")
)

// -----------------------------------------------------------------------------
// Core Interfaces
// -----------------------------------------------------------------------------

// Evaluable is implemented by components that publish correctness
// properties.
//
// Thread Safety: Implementations must be safe for concurrent use.
type Evaluable interface {
	// Name returns a stable identifier suitable for metric labels.
	Name() string

	// Properties returns the invariants this component guarantees.
	Properties() []Property

	// HealthCheck verifies the component is configured correctly.
	HealthCheck(ctx context.Context) error
}

// -----------------------------------------------------------------------------
// Property Definition
// -----------------------------------------------------------------------------

// Property defines a correctness invariant checked against one
// input/output pair.
type Property struct {
	// Name is a unique identifier, lowercase with underscores.
	Name string

	// Description explains what the property verifies.
	Description string

	// Check returns nil if the property holds for the pair. Checks that do
	// not apply to the pair (wrong types, preconditions unmet) return nil.
	Check func(input any, output any) error

	// Tags categorize the property, e.g. "critical".
	Tags []string
}

// Validate checks that the property is well-formed.
func (p *Property) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProperty)
	}
	if p.Description == "" {
		return fmt.Errorf("%w: description is required for %s", ErrInvalidProperty, p.Name)
	}
	if p.Check == nil {
		return fmt.Errorf("%w: check function is required for %s", ErrInvalidProperty, p.Name)
	}
	return nil
}

// HasTag returns true if this property has the specified tag.
func (p *Property) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Verification Results
// -----------------------------------------------------------------------------

// VerifyResult contains the results of verifying a component's properties.
type VerifyResult struct {
	// Component is the name of the verified component.
	Component string

	// Properties contains one result per property, in declaration order.
	Properties []PropertyResult

	// Duration is the total time spent verifying.
	Duration time.Duration

	// Passed is true if every property passed.
	Passed bool
}

// FailedProperties returns the properties that failed.
func (r *VerifyResult) FailedProperties() []PropertyResult {
	var failed []PropertyResult
	for _, pr := range r.Properties {
		if !pr.Passed {
			failed = append(failed, pr)
		}
	}
	return failed
}

// PropertyResult contains the result of checking a single property.
type PropertyResult struct {
	Name     string
	Passed   bool
	Duration time.Duration
	Error    error
}
