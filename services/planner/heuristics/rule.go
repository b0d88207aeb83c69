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
	"fmt"
	"math"
	"strings"
)

// DeltaValues holds one cost per literal, in the order of the literal list
// it was computed from. Costs are non-negative or +Inf.
type DeltaValues []float64

// AggregateFunc combines per-literal costs into one cost.
//
// The function must be pure and must not retain the slice it receives; the
// estimator reuses the backing array between calls.
type AggregateFunc func(DeltaValues) float64

// RuleKind identifies which aggregation rule a CostRule applies.
type RuleKind int

const (
	ruleUnset RuleKind = iota

	// RuleMaxCost aggregates by taking the maximum cost.
	RuleMaxCost

	// RuleAdditiveCost aggregates by summing costs.
	RuleAdditiveCost

	// RuleCustom delegates to a caller-supplied AggregateFunc.
	RuleCustom
)

// String returns the rule kind name.
func (k RuleKind) String() string {
	switch k {
	case RuleMaxCost:
		return "max"
	case RuleAdditiveCost:
		return "additive"
	case RuleCustom:
		return "custom"
	default:
		return "unset"
	}
}

// CostRule is the closed choice of aggregation rules: max-cost,
// additive-cost, or a custom function.
//
// Description:
//
//	Every rule returns 0 for an empty cost list. Max and additive both
//	propagate +Inf. A custom function result of NaN is treated as +Inf and
//	negative results are clamped to 0, so aggregated costs are never
//	negative.
//
//	The zero CostRule is invalid; build one with MaxCost, AdditiveCost,
//	Custom or ParseCostRule.
//
// Thread Safety: Immutable, safe for concurrent use if the custom function
// is.
type CostRule struct {
	kind RuleKind
	name string
	fn   AggregateFunc
}

// MaxCost returns the max-cost rule. Admissible under unit action costs.
func MaxCost() CostRule {
	return CostRule{kind: RuleMaxCost, name: RuleMaxCost.String()}
}

// AdditiveCost returns the additive-cost rule. Treats precondition costs as
// independent; not admissible, usually more informative.
func AdditiveCost() CostRule {
	return CostRule{kind: RuleAdditiveCost, name: RuleAdditiveCost.String()}
}

// Custom returns a rule that delegates to fn. name labels metrics and logs;
// it defaults to "custom".
func Custom(name string, fn AggregateFunc) CostRule {
	if name == "" {
		name = RuleCustom.String()
	}
	return CostRule{kind: RuleCustom, name: name, fn: fn}
}

// ParseCostRule maps a configuration string to a built-in rule.
//
// Accepted (case-insensitive): "max", "max_cost", "max-cost", "hmax",
// "additive", "add", "additive_cost", "additive-cost", "hadd", "sum".
func ParseCostRule(s string) (CostRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "max", "max_cost", "max-cost", "maxcost", "hmax":
		return MaxCost(), nil
	case "additive", "add", "additive_cost", "additive-cost", "additivecost", "hadd", "sum":
		return AdditiveCost(), nil
	default:
		return CostRule{}, fmt.Errorf("%w: %q", ErrInvalidRule, s)
	}
}

// Kind returns which rule this is.
func (r CostRule) Kind() RuleKind {
	return r.kind
}

// Name returns the rule label.
func (r CostRule) Name() string {
	if r.name == "" {
		return r.kind.String()
	}
	return r.name
}

// Valid reports whether the rule can aggregate.
func (r CostRule) Valid() bool {
	switch r.kind {
	case RuleMaxCost, RuleAdditiveCost:
		return true
	case RuleCustom:
		return r.fn != nil
	default:
		return false
	}
}

// Aggregate combines costs according to the rule. An invalid rule yields
// +Inf.
func (r CostRule) Aggregate(costs DeltaValues) float64 {
	if len(costs) == 0 {
		return 0
	}

	switch r.kind {
	case RuleMaxCost:
		return maxCost(costs)
	case RuleAdditiveCost:
		return additiveCost(costs)
	case RuleCustom:
		if r.fn == nil {
			return math.Inf(1)
		}
		v := r.fn(costs)
		switch {
		case math.IsNaN(v):
			return math.Inf(1)
		case v < 0:
			return 0
		default:
			return v
		}
	default:
		return math.Inf(1)
	}
}

func maxCost(costs DeltaValues) float64 {
	m := costs[0]
	for _, c := range costs[1:] {
		if c > m {
			m = c
		}
	}
	return m
}

func additiveCost(costs DeltaValues) float64 {
	var sum float64
	for _, c := range costs {
		sum += c
	}
	return sum
}
