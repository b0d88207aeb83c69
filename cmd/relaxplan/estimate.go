// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/AleutianAI/relaxplan/pkg/ux"
	"github.com/AleutianAI/relaxplan/services/planner/domains"
	"github.com/AleutianAI/relaxplan/services/planner/eval"
	"github.com/AleutianAI/relaxplan/services/planner/heuristics"
	"github.com/AleutianAI/relaxplan/services/planner/problem"
	"github.com/AleutianAI/relaxplan/services/planner/telemetry"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

// ErrPropertiesFailed is returned by estimate --verify when an estimate
// breaks one of its critical invariants.
var ErrPropertiesFailed = errors.New("estimate failed property checks")

// criticalTag marks properties whose failure fails estimate --verify.
const criticalTag = "critical"

// problemOptions selects the problem a command works on.
type problemOptions struct {
	domain string
	size   int
	path   string
}

func (o *problemOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.domain, "domain", "chain", "built-in problem: chain, gripper, independent or unreachable")
	cmd.Flags().IntVar(&o.size, "size", 0, "problem size; 0 uses the domain default")
	cmd.Flags().StringVar(&o.path, "problem", "", "YAML problem file; overrides --domain")
}

// load returns the problem from --problem, or the built-in --domain.
func (o *problemOptions) load() (*problem.Problem, error) {
	if o.path == "" {
		return domains.Lookup(o.domain, o.size)
	}
	def, err := problem.LoadDefinition(o.path)
	if err != nil {
		return nil, err
	}
	return problem.New(*def)
}

// heuristic builds a Heuristics for p from the loaded configuration.
func (a *app) heuristic(p *problem.Problem, rule heuristics.CostRule) *heuristics.Heuristics {
	opts := []heuristics.Option{
		heuristics.WithLogger(a.log.With(slog.String("problem", p.Name()))),
	}
	if a.cfg.Heuristic.MaxPasses > 0 {
		opts = append(opts, heuristics.WithMaxPasses(a.cfg.Heuristic.MaxPasses))
	}
	return heuristics.New(p, rule, opts...)
}

func newEstimateCmd(a *app) *cobra.Command {
	var (
		prob   problemOptions
		rule   string
		verify bool
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the cost from a problem's initial state to its goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := prob.load()
			if err != nil {
				return err
			}

			costRule, err := a.cfg.CostRule()
			if rule != "" {
				costRule, err = heuristics.ParseCostRule(rule)
			}
			if err != nil {
				return err
			}
			h := a.heuristic(p, costRule)

			ctx, cancel := a.estimateContext(cmd.Context())
			defer cancel()
			ctx, span := tracer.Start(ctx, "relaxplan.estimate")
			defer span.End()
			span.SetAttributes(
				attribute.String("problem", p.Name()),
				attribute.String("rule", costRule.Name()),
			)

			obs, err := h.Observe(ctx, p.Init())
			if err != nil {
				span.RecordError(err)
				return err
			}

			log := telemetry.LoggerWithTrace(ctx, a.log)
			log.Info("estimate complete",
				slog.String("problem", p.Name()),
				slog.String("rule", costRule.Name()),
				slog.Float64("value", obs.Value),
				slog.Int("passes", obs.Deltas.Passes),
				slog.Int("relaxed_size", obs.Deltas.RelaxedSize),
			)

			a.printer.Title("relaxplan estimate")
			a.printer.KeyValues("Estimate", [][2]string{
				{"problem", p.Name()},
				{"rule", costRule.Name()},
				{"value", ux.FormatCost(obs.Value)},
				{"passes", strconv.Itoa(obs.Deltas.Passes)},
				{"relaxed size", strconv.Itoa(obs.Deltas.RelaxedSize)},
				{"converged", strconv.FormatBool(obs.Deltas.Converged)},
				{"unresolved", strconv.Itoa(len(obs.Deltas.Unresolved()))},
				{"run", a.runID},
			})
			if !obs.Deltas.Converged {
				a.printer.Warning("pass limit reached before costs settled")
			}

			if !verify {
				return nil
			}
			return a.verify(cmd, h, p, obs)
		},
	}

	prob.register(cmd)
	cmd.Flags().StringVar(&rule, "rule", "", "cost rule: max or additive; defaults to the configured rule")
	cmd.Flags().BoolVar(&verify, "verify", false, "check the estimate against its invariants")
	return cmd
}

// verify checks obs against the heuristic's properties and prints one
// line per property.
func (a *app) verify(cmd *cobra.Command, h *heuristics.Heuristics, p *problem.Problem, obs *heuristics.Observation) error {
	result, err := eval.Verify(cmd.Context(), h, p.Init(), obs)
	if err != nil {
		return err
	}
	return a.report(result, h.Properties())
}

// report prints a verification result. Only failures of properties tagged
// "critical" fail the command; other failures are warnings.
func (a *app) report(result *eval.VerifyResult, props []eval.Property) error {
	critical := make(map[string]bool, len(props))
	for i := range props {
		critical[props[i].Name] = props[i].HasTag(criticalTag)
	}

	var failed []string
	for _, pr := range result.Properties {
		switch {
		case pr.Passed:
			a.printer.Success(pr.Name)
		case critical[pr.Name]:
			failed = append(failed, pr.Name)
			a.printer.Error(fmt.Sprintf("%s: %v", pr.Name, pr.Error))
		default:
			a.printer.Warning(fmt.Sprintf("%s: %v", pr.Name, pr.Error))
		}
	}
	if result.Passed {
		return nil
	}

	a.log.Warn("property check failed",
		slog.String("component", result.Component),
		slog.Int("failed", len(result.FailedProperties())),
		slog.Int("critical", len(failed)),
	)
	if len(failed) > 0 {
		return fmt.Errorf("%w: %s", ErrPropertiesFailed, strings.Join(failed, ", "))
	}
	return nil
}
