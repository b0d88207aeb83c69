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
	"context"
	"runtime"

	"github.com/AleutianAI/relaxplan/services/planner/action"
	"golang.org/x/sync/errgroup"
)

// EstimateBatch estimates several states with at most concurrency
// estimates in flight.
//
// Description:
//
//	Results are returned in the order of states. The first error cancels
//	the remaining estimates and is returned.
//
// Inputs:
//   - ctx: Parent context.
//   - est: The estimator. Must be safe for concurrent use.
//   - states: States to estimate.
//   - concurrency: Maximum parallel estimates. <= 0 uses GOMAXPROCS.
//
// Outputs:
//   - []float64: One estimate per state.
//   - error: The first estimate error, if any.
func EstimateBatch(ctx context.Context, est Estimator, states [][]action.Literal, concurrency int) ([]float64, error) {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	results := make([]float64, len(states))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, state := range states {
		g.Go(func() error {
			v, err := est.Estimate(gctx, state)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
