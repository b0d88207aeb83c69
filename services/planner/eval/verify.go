// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package eval

import (
	"context"
	"fmt"
	"time"
)

// Verify runs every property of component against one input/output pair.
//
// Description:
//
//	The health check runs first; an unhealthy component fails verification
//	without running its properties. Malformed properties are reported as
//	failed results rather than aborting the run.
//
// Inputs:
//   - ctx: Context for cancellation. Checked between properties.
//   - component: The component to verify. Must not be nil.
//   - input: The input given to the component.
//   - output: The output the component produced.
//
// Outputs:
//   - *VerifyResult: Per-property results.
//   - error: ErrNilComponent, a wrapped ErrHealthCheckFailed, or ctx.Err().
func Verify(ctx context.Context, component Evaluable, input, output any) (*VerifyResult, error) {
	if component == nil {
		return nil, ErrNilComponent
	}

	start := time.Now()
	result := &VerifyResult{Component: component.Name(), Passed: true}

	if err := component.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrHealthCheckFailed, component.Name(), err)
	}

	for _, p := range component.Properties() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		propStart := time.Now()
		pr := PropertyResult{Name: p.Name, Passed: true}

		if err := p.Validate(); err != nil {
			pr.Passed = false
			pr.Error = err
		} else if err := p.Check(input, output); err != nil {
			pr.Passed = false
			pr.Error = err
		}

		pr.Duration = time.Since(propStart)
		if !pr.Passed {
			result.Passed = false
		}
		result.Properties = append(result.Properties, pr)
	}

	result.Duration = time.Since(start)
	return result, nil
}
