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
	"context"
	"time"

	"github.com/AleutianAI/AleutianTriage/pkg/fuzzy"
	"github.com/AleutianAI/AleutianTriage/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// =============================================================================
// Model Summary
// =============================================================================

// ModelSummary describes a compiled model for display.
type ModelSummary struct {
	Name        string            `json:"name" yaml:"name"`
	Version     string            `json:"version" yaml:"version"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Hash        string            `json:"hash" yaml:"hash"`
	Inputs      []VariableSummary `json:"inputs" yaml:"inputs"`
	Outputs     []VariableSummary `json:"outputs" yaml:"outputs"`
	Rules       []RuleSummary     `json:"rules" yaml:"rules"`
}

// VariableSummary describes one variable and its sets.
type VariableSummary struct {
	Key            string       `json:"key" yaml:"key"`
	Name           string       `json:"name" yaml:"name"`
	Unit           string       `json:"unit,omitempty" yaml:"unit,omitempty"`
	Domain         fuzzy.Domain `json:"domain" yaml:"domain"`
	Discretization int          `json:"discretization,omitempty" yaml:"discretization,omitempty"`
	Sets           []SetSummary `json:"sets" yaml:"sets"`
}

// SetSummary describes one fuzzy set.
type SetSummary struct {
	Name   string    `json:"name" yaml:"name"`
	Label  string    `json:"label" yaml:"label"`
	Shape  ShapeKind `json:"shape" yaml:"shape"`
	Points []float64 `json:"points" yaml:"points,flow"`
}

// RuleSummary describes one expanded rule.
type RuleSummary struct {
	Index       int    `json:"index" yaml:"index"`
	Source      int    `json:"source" yaml:"source"`
	Rule        string `json:"rule" yaml:"rule"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Describe summarises the compiled model.
func (e *TriageEngine) Describe() ModelSummary {
	m := e.model
	s := ModelSummary{
		Name:        m.Name,
		Version:     m.Version,
		Description: m.Description,
		Hash:        e.hash,
		Inputs:      make([]VariableSummary, 0, len(m.Inputs)),
		Outputs:     make([]VariableSummary, 0, len(m.Outputs)),
		Rules:       make([]RuleSummary, 0, len(m.Rules)),
	}
	for _, v := range m.Inputs {
		vs := VariableSummary{Key: v.Key, Name: v.Name(), Unit: v.Unit, Domain: v.Input.Domain()}
		for _, a := range v.Sets {
			vs.Sets = append(vs.Sets, summarizeSet(a.MembershipFunction(), a.Label()))
		}
		s.Inputs = append(s.Inputs, vs)
	}
	for _, v := range m.Outputs {
		vs := VariableSummary{
			Key:            v.Key,
			Name:           v.Name(),
			Unit:           v.Unit,
			Domain:         v.Output.Domain(),
			Discretization: v.Output.DiscretizationLevel(),
		}
		for _, c := range v.Sets {
			vs.Sets = append(vs.Sets, summarizeSet(c.MembershipFunction(), c.Label()))
		}
		s.Outputs = append(s.Outputs, vs)
	}
	for i, r := range m.Rules {
		s.Rules = append(s.Rules, RuleSummary{
			Index:       i,
			Source:      r.Source,
			Rule:        r.Rule.String(),
			Description: r.Description,
		})
	}
	return s
}

func summarizeSet(mf fuzzy.MembershipFunction, label string) SetSummary {
	s := SetSummary{Name: mf.Name(), Label: label}
	switch f := mf.(type) {
	case *fuzzy.Triangular:
		s.Shape = ShapeTriangular
		s.Points = []float64{f.A, f.B, f.C}
	case *fuzzy.Trapezoidal:
		s.Shape = ShapeTrapezoidal
		s.Points = []float64{f.A, f.B, f.C, f.D}
	default:
		lo, hi := mf.Support()
		s.Points = []float64{lo, hi}
	}
	return s
}

// =============================================================================
// Curves
// =============================================================================

// CurveSet holds sampled membership curves for plotting.
type CurveSet struct {
	Model   string           `json:"model"`
	Inputs  []VariableCurves `json:"inputs"`
	Outputs []VariableCurves `json:"outputs"`
}

// VariableCurves holds the curves of one variable.
//
// Value and Aggregate are set only when Curves was given readings; Aggregate
// is the clipped and merged output curve that was defuzzified to Value.
type VariableCurves struct {
	Key       string       `json:"key"`
	Name      string       `json:"name"`
	Domain    fuzzy.Domain `json:"domain"`
	Value     *float64     `json:"value,omitempty"`
	Sets      []SetCurve   `json:"sets"`
	Aggregate *fuzzy.Curve `json:"aggregate,omitempty"`
}

// SetCurve is one fuzzy set sampled over its variable's domain.
type SetCurve struct {
	Name  string      `json:"name"`
	Label string      `json:"label"`
	Curve fuzzy.Curve `json:"curve"`
}

// Curves samples every fuzzy set of the model at points equally spaced
// points, with the degrees the engine computes.
//
// When readings is non-empty the model is also evaluated and every output
// carries its aggregated curve and defuzzified value.
//
// points <= 0 keeps the model's discretization: output sets are sampled on
// the output's own sample points, the same x values as the aggregated
// curve, and input sets at fuzzy.DefaultDiscretizationLevel. Curves records
// no assessment metrics.
func (e *TriageEngine) Curves(ctx context.Context, readings map[string]float64, points int) (*CurveSet, error) {
	ctx, span := e.tracer.Start(ctx, "TriageEngine.Curves",
		trace.WithAttributes(
			attribute.String("triage.model", e.ModelRef()),
			attribute.Int("triage.points", points),
		),
	)
	defer span.End()
	start := time.Now()

	inputPoints := points
	if points <= 0 {
		inputPoints = fuzzy.DefaultDiscretizationLevel
	}

	var eval *fuzzy.Evaluation
	if len(readings) > 0 {
		inputs, err := e.model.Snapshot(readings)
		if err == nil {
			eval, err = e.model.Rulebase.Evaluate(inputs)
		}
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	set := &CurveSet{
		Model:   e.ModelRef(),
		Inputs:  make([]VariableCurves, 0, len(e.model.Inputs)),
		Outputs: make([]VariableCurves, 0, len(e.model.Outputs)),
	}
	for _, v := range e.model.Inputs {
		domain := v.Input.Domain()
		vc := VariableCurves{Key: v.Key, Name: v.Name(), Domain: domain}
		if value, ok := readings[v.Key]; ok && eval != nil {
			vc.Value = &value
		}
		for _, a := range v.Sets {
			mf := a.MembershipFunction()
			vc.Sets = append(vc.Sets, SetCurve{Name: mf.Name(), Label: a.Label(), Curve: fuzzy.Sample(mf, domain, inputPoints)})
		}
		set.Inputs = append(set.Inputs, vc)
	}
	for _, v := range e.model.Outputs {
		domain := v.Output.Domain()
		vc := VariableCurves{Key: v.Key, Name: v.Name(), Domain: domain}
		for _, c := range v.Sets {
			mf := c.MembershipFunction()
			curve := fuzzy.SampleAt(mf, v.Output.Samples())
			if points > 0 {
				curve = fuzzy.Sample(mf, domain, points)
			}
			vc.Sets = append(vc.Sets, SetCurve{Name: mf.Name(), Label: c.Label(), Curve: curve})
		}
		if eval != nil {
			if value, ok := eval.Value(v.Output); ok {
				vc.Value = &value
			}
			if curve, ok := eval.Curve(v.Output); ok {
				vc.Aggregate = &curve
			}
		}
		set.Outputs = append(set.Outputs, vc)
	}

	telemetry.SetSpanOK(span)
	telemetry.LoggerWithTrace(ctx, e.logger).Debug("curves sampled",
		"points", inputPoints,
		"evaluated", eval != nil,
		"duration", time.Since(start),
	)
	return set, nil
}
