// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package triage_engine

import (
	"bytes"
	"fmt"

	"github.com/AleutianAI/AleutianTriage/pkg/validation"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Wildcard in a `when` clause matches every set of the variable.
const Wildcard = "*"

// =============================================================================
// Shared Validator Instance
// =============================================================================

// modelValidate is the validator instance for model documents.
// Initialized in init() with custom validators.
var modelValidate *validator.Validate

func init() {
	modelValidate = validator.New()

	// Variable keys double as CLI flag values and CSV headers.
	_ = modelValidate.RegisterValidation("identifier", validateIdentifier)
}

func validateIdentifier(fl validator.FieldLevel) bool {
	return validation.IsIdentifier(fl.Field().String())
}

// =============================================================================
// Shape Kind
// =============================================================================

// ShapeKind names a membership function family.
type ShapeKind string

const (
	ShapeTriangular  ShapeKind = "triangular"
	ShapeTrapezoidal ShapeKind = "trapezoidal"
)

// PointCount returns the number of breakpoints the shape takes.
func (s ShapeKind) PointCount() int {
	switch s {
	case ShapeTriangular:
		return 3
	case ShapeTrapezoidal:
		return 4
	default:
		return 0
	}
}

func (s *ShapeKind) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	incoming := ShapeKind(raw)
	switch incoming {
	case ShapeTriangular, ShapeTrapezoidal:
		*s = incoming
		return nil
	default:
		return fmt.Errorf("invalid value for shape: %q (line %d)", raw, value.Line)
	}
}

// =============================================================================
// Model Document
// =============================================================================

// ModelDocument is the YAML form of a triage model.
type ModelDocument struct {
	Name        string         `yaml:"name" validate:"required"`
	Version     string         `yaml:"version"`
	Description string         `yaml:"description"`
	Inputs      []VariableSpec `yaml:"inputs" validate:"required,min=1,dive"`
	Outputs     []VariableSpec `yaml:"outputs" validate:"required,min=1,dive"`
	Rules       []RuleSpec     `yaml:"rules" validate:"required,min=1,dive"`
}

// VariableSpec declares an input or output variable and its fuzzy sets.
//
// Prompt is only used for inputs; Discretization only for outputs, where 0
// means fuzzy.DefaultDiscretizationLevel.
type VariableSpec struct {
	Key            string     `yaml:"key" validate:"required,identifier"`
	Name           string     `yaml:"name" validate:"required"`
	Prompt         string     `yaml:"prompt,omitempty"`
	Unit           string     `yaml:"unit,omitempty"`
	Domain         DomainSpec `yaml:"domain"`
	Discretization int        `yaml:"discretization,omitempty" validate:"omitempty,min=2"`
	Sets           []SetSpec  `yaml:"sets" validate:"required,min=1,dive"`
}

// DomainSpec is the closed range of a variable.
type DomainSpec struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max" validate:"gtfield=Min"`
}

// SetSpec declares one fuzzy set.
//
// Label is the display name used in explanations; it defaults to Name.
type SetSpec struct {
	Name   string    `yaml:"name" validate:"required"`
	Label  string    `yaml:"label,omitempty"`
	Shape  ShapeKind `yaml:"shape" validate:"required"`
	Points []float64 `yaml:"points" validate:"min=3,max=4"`
}

// RuleSpec is one row of the rule table.
type RuleSpec struct {
	Description string       `yaml:"description,omitempty"`
	When        []ClauseSpec `yaml:"when" validate:"required,min=1,dive"`
	Then        []ClauseSpec `yaml:"then" validate:"required,min=1,dive"`
}

// ClauseSpec is "variable IS set". Is may be Wildcard in `when` clauses.
type ClauseSpec struct {
	Variable string `yaml:"variable" validate:"required,identifier"`
	Is       string `yaml:"is" validate:"required"`
}

// ParseModel decodes and validates a model document.
//
// Unknown YAML fields are rejected so that typos in a hand-edited model
// fail loudly instead of being ignored.
func ParseModel(data []byte) (*ModelDocument, error) {
	var doc ModelDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal the model: %w", ErrInvalidModel, err)
	}
	if err := modelValidate.Struct(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	return &doc, nil
}
