// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package heuristics implements relaxed planning graph heuristics for
// classical planning.
//
// Architecture:
//
//	┌──────────────────────────────────────────────────────────────────┐
//	│  outer search (external)                                         │
//	│      │ Estimate(ctx, state)                                      │
//	│      ▼                                                           │
//	│  Heuristics ──ApplicableActions/Goal──▶ Domain (external)        │
//	│      │                                                           │
//	│      ├── fixpoint: relaxed state grows, DeltaMap costs shrink    │
//	│      └── CostRule.Aggregate(goal costs) ──▶ estimate             │
//	└──────────────────────────────────────────────────────────────────┘
//
// Cost rules:
//
//	MaxCost       h_max, admissible under unit costs
//	AdditiveCost  h_add, inadmissible, usually better informed
//	Custom        any AggregateFunc, for experiments
//
// Unreachability is never an error. It is the value +Inf, which both
// built-in rules propagate.
//
// Example Usage:
//
//	h := heuristics.New(problem, heuristics.AdditiveCost())
//	value, err := h.Estimate(ctx, state)
//	if err != nil {
//	    return err // misconfiguration or ctx deadline
//	}
//	if math.IsInf(value, 1) {
//	    // dead end
//	}
package heuristics
