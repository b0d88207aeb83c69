// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads relaxplan settings.
//
// Precedence, lowest to highest: DefaultConfig, the YAML file, RELAXPLAN_*
// environment variables. The merged result is validated before use.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/AleutianAI/relaxplan/services/planner/heuristics"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "RELAXPLAN_"

// ErrInvalidConfig indicates the merged configuration failed validation.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full relaxplan configuration.
type Config struct {
	// Heuristic configures the estimator.
	Heuristic HeuristicConfig `yaml:"heuristic" envPrefix:"HEURISTIC_"`

	// Cache configures the estimate cache.
	Cache CacheConfig `yaml:"cache" envPrefix:"CACHE_"`

	// Logging configures the process logger.
	Logging LoggingConfig `yaml:"logging" envPrefix:"LOG_"`

	// Telemetry configures trace and metric export.
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"TELEMETRY_"`
}

// HeuristicConfig selects the cost rule and fixpoint bounds.
type HeuristicConfig struct {
	// Rule is a cost rule name accepted by heuristics.ParseCostRule.
	Rule string `yaml:"rule" env:"RULE" validate:"required,costrule"`

	// MaxPasses caps fixpoint passes per estimate. 0 keeps the default
	// bound.
	MaxPasses int `yaml:"max_passes" env:"MAX_PASSES" validate:"gte=0"`

	// Timeout bounds each estimate. 0 disables the bound.
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT" validate:"gte=0"`

	// Concurrency bounds parallel estimates in batch commands. 0 uses
	// GOMAXPROCS.
	Concurrency int `yaml:"concurrency" env:"CONCURRENCY" validate:"gte=0"`
}

// CacheConfig configures the estimate cache.
type CacheConfig struct {
	Enabled  bool `yaml:"enabled" env:"ENABLED"`
	Capacity int  `yaml:"capacity" env:"CAPACITY" validate:"gte=1"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level   string `yaml:"level" env:"LEVEL" validate:"oneof=debug info warn warning error"`
	JSON    bool   `yaml:"json" env:"JSON"`
	Service string `yaml:"service" env:"SERVICE" validate:"required"`
}

// TelemetryConfig selects exporters. OTLPInsecure disables TLS to the
// OTLP collector.
type TelemetryConfig struct {
	TraceExporter  string `yaml:"trace_exporter" env:"TRACE_EXPORTER" validate:"oneof=stdout otlp none"`
	MetricExporter string `yaml:"metric_exporter" env:"METRIC_EXPORTER" validate:"oneof=stdout prometheus none"`
	OTLPEndpoint   string `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	OTLPInsecure   bool   `yaml:"otlp_insecure" env:"OTLP_INSECURE"`
	ServiceName    string `yaml:"service_name" env:"SERVICE_NAME" validate:"required"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Heuristic: HeuristicConfig{
			Rule:      "additive",
			MaxPasses: 0,
			Timeout:   0,
		},
		Cache: CacheConfig{
			Enabled:  true,
			Capacity: 4096,
		},
		Logging: LoggingConfig{
			Level:   "info",
			JSON:    false,
			Service: "relaxplan",
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "none",
			OTLPEndpoint:   "localhost:4317",
			OTLPInsecure:   true,
			ServiceName:    "relaxplan",
		},
	}
}

var configValidate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("costrule", func(fl validator.FieldLevel) bool {
		_, err := heuristics.ParseCostRule(fl.Field().String())
		return err == nil
	})
	return v
}

// Load builds the configuration from defaults, the file at path and the
// environment.
//
// Inputs:
//   - path: YAML file path. Empty or missing means defaults only.
//
// Outputs:
//   - Config: The merged configuration.
//   - error: Non-nil if the file cannot be parsed, an environment value
//     cannot be converted, or validation fails.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ParseEnv applies RELAXPLAN_* environment variables to target. Unset
// variables leave fields unchanged.
func ParseEnv(target *Config) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks every field.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// CostRule returns the configured heuristic rule.
func (c Config) CostRule() (heuristics.CostRule, error) {
	return heuristics.ParseCostRule(c.Heuristic.Rule)
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
