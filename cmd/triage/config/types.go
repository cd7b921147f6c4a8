// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the triage CLI settings file.
package config

import (
	"fmt"

	"github.com/AleutianAI/AleutianTriage/pkg/telemetry"
	"github.com/go-playground/validator/v10"
)

// CurrentConfigVersion is written to meta.version of new config files.
const CurrentConfigVersion = "1.0.0"

var validate = validator.New()

type TriageConfig struct {
	// Meta: file format bookkeeping
	Meta MetaConfig `yaml:"meta"`

	// Model: which rule model to load and how finely to sample outputs
	Model ModelConfig `yaml:"model"`

	// Logging: console level, optional JSON file sink
	Logging LoggingConfig `yaml:"logging"`

	// Batch: worker pool sizing for `triage batch`
	Batch BatchConfig `yaml:"batch"`

	// Telemetry: trace and metric exporters
	Telemetry telemetry.Config `yaml:"telemetry"`

	// UI: output personality (full, minimal, machine)
	UI UIConfig `yaml:"ui"`

	// Audit: append-only JSON Lines record of every assessment
	Audit AuditConfig `yaml:"audit"`
}

type MetaConfig struct {
	Version string `yaml:"version"`
}

type ModelConfig struct {
	// Path to a model YAML file. Empty uses the embedded urgency model.
	Path string `yaml:"path,omitempty"`

	// Discretization overrides every output's sample count. 0 keeps the
	// model's own value.
	Discretization int `yaml:"discretization,omitempty" validate:"omitempty,min=2,max=100000"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Dir   string `yaml:"dir,omitempty"` // e.g. ~/.aleutian/logs
	JSON  bool   `yaml:"json"`
}

type BatchConfig struct {
	// Workers bounds concurrent assessments. 0 means GOMAXPROCS.
	Workers int `yaml:"workers" validate:"min=0,max=1024"`
}

type UIConfig struct {
	Personality string `yaml:"personality,omitempty" validate:"omitempty,oneof=full minimal machine"`
}

type AuditConfig struct {
	// Path of the audit log. Empty disables auditing.
	Path string `yaml:"path,omitempty"` // e.g. ~/.aleutian/triage_audit.jsonl

	// Operator is recorded as the user of every event. Empty records "system".
	Operator string `yaml:"operator,omitempty" validate:"omitempty,max=128"`
}

// Validate checks field ranges and enumerations.
func (c TriageConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func DefaultConfig() TriageConfig {
	return TriageConfig{
		Meta:  MetaConfig{Version: CurrentConfigVersion},
		Model: ModelConfig{},
		Logging: LoggingConfig{
			Level: "warn",
		},
		Batch:     BatchConfig{Workers: 0},
		Telemetry: telemetry.DefaultConfig(),
		UI:        UIConfig{},
		Audit:     AuditConfig{},
	}
}
