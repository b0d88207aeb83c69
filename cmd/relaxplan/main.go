// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command relaxplan computes relaxed planning graph heuristic estimates
// for built-in or YAML-defined planning problems.
//
// Usage:
//
//	relaxplan domains
//	relaxplan estimate --domain gripper --size 4 --rule max
//	relaxplan estimate --problem problem.yaml --verify
//	relaxplan compare --domain chain --size 8
//
// With spans and metrics:
//
//	relaxplan estimate --domain chain --trace stdout --metrics
//
// Configuration is read from --config (YAML) and RELAXPLAN_* environment
// variables; flags override both.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
