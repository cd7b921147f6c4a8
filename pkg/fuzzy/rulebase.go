// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package fuzzy

import (
	"fmt"
	"math"
)

// Rulebase is an ordered collection of rules evaluated together.
//
// It owns no variables or membership functions; those are shared by
// reference with the antecedents and consequents of its rules.
type Rulebase struct {
	rules []*Rule
}

// NewRulebase creates a rulebase from the given rules, in order.
func NewRulebase(rules ...*Rule) *Rulebase {
	rb := &Rulebase{}
	for _, r := range rules {
		rb.AddRule(r)
	}
	return rb
}

// AddRule appends a rule. Nil rules are ignored.
func (rb *Rulebase) AddRule(r *Rule) {
	if r == nil {
		return
	}
	rb.rules = append(rb.rules, r)
}

// Rules returns the rules in insertion order.
func (rb *Rulebase) Rules() []*Rule {
	return append([]*Rule(nil), rb.rules...)
}

// Len returns the number of rules.
func (rb *Rulebase) Len() int { return len(rb.rules) }

// Outputs returns every output referenced by a consequent, in order of first
// reference.
func (rb *Rulebase) Outputs() []*Output {
	var outputs []*Output
	seen := make(map[*Output]bool)
	for _, r := range rb.rules {
		for _, c := range r.consequents {
			if !seen[c.output] {
				seen[c.output] = true
				outputs = append(outputs, c.output)
			}
		}
	}
	return outputs
}

// Inputs returns every input referenced by an antecedent, in order of first
// reference.
func (rb *Rulebase) Inputs() []*Input {
	var inputs []*Input
	seen := make(map[*Input]bool)
	for _, r := range rb.rules {
		for _, a := range r.antecedents {
			if !seen[a.input] {
				seen[a.input] = true
				inputs = append(inputs, a.input)
			}
		}
	}
	return inputs
}

// =============================================================================
// Evaluation
// =============================================================================

// OutputEvaluation is the result for one output variable.
type OutputEvaluation struct {
	// Output is the evaluated variable.
	Output *Output `json:"-"`

	// Name is Output.Name(), repeated for serialisation.
	Name string `json:"name"`

	// Value is the centroid of Curve.
	Value float64 `json:"value"`

	// Curve is the aggregated curve that was defuzzified.
	Curve Curve `json:"curve"`
}

// Evaluation is the result of one Rulebase.Evaluate call.
type Evaluation struct {
	// Outputs holds one entry per output, in order of first reference.
	Outputs []OutputEvaluation `json:"outputs"`

	// Strengths holds the firing strength of each rule, in rule order.
	Strengths []float64 `json:"strengths"`
}

// Value returns the defuzzified value of out.
func (e *Evaluation) Value(out *Output) (float64, bool) {
	for _, o := range e.Outputs {
		if o.Output == out {
			return o.Value, true
		}
	}
	return 0, false
}

// Curve returns the aggregated curve of out.
func (e *Evaluation) Curve(out *Output) (Curve, bool) {
	for _, o := range e.Outputs {
		if o.Output == out {
			return o.Curve, true
		}
	}
	return Curve{}, false
}

// Values returns the defuzzified values keyed by output name.
func (e *Evaluation) Values() map[string]float64 {
	values := make(map[string]float64, len(e.Outputs))
	for _, o := range e.Outputs {
		values[o.Name] = o.Value
	}
	return values
}

// Evaluate runs Mamdani inference on the snapshot.
//
// # Algorithm
//
//  1. Every referenced output starts with an all-zero curve sampled at its
//     discretisation points.
//  2. Each rule's firing strength s is the min of its antecedent degrees.
//     Rules with s == 0 contribute nothing.
//  3. Each consequent is clipped at s, min(μ(x), s), and merged into its
//     output's curve with a pointwise max.
//  4. Each curve is defuzzified by Centroid.
//
// Rule order does not change the result. Evaluate stores nothing on the
// rulebase and is safe to call concurrently with distinct snapshots.
//
// # Errors
//
//   - ErrMissingInput if the snapshot lacks a value a rule needs
//   - ErrNoRuleFired if some output's curve has zero area
//
// On error no partial result is returned.
func (rb *Rulebase) Evaluate(inputs *Inputs) (*Evaluation, error) {
	outputs := rb.Outputs()
	curves := make(map[*Output]Curve, len(outputs))
	for _, out := range outputs {
		curves[out] = newCurve(out.Samples())
	}

	strengths := make([]float64, len(rb.rules))
	for i, r := range rb.rules {
		s, err := r.FiringStrength(inputs)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		strengths[i] = s
		if s == 0 {
			continue
		}
		for _, c := range r.consequents {
			implicate(curves[c.output], c.mf, s)
		}
	}

	result := &Evaluation{
		Outputs:   make([]OutputEvaluation, 0, len(outputs)),
		Strengths: strengths,
	}
	for _, out := range outputs {
		curve := curves[out]
		value, err := Centroid(curve)
		if err != nil {
			return nil, fmt.Errorf("output %q: %w", out.Name(), err)
		}
		result.Outputs = append(result.Outputs, OutputEvaluation{
			Output: out,
			Name:   out.Name(),
			Value:  value,
			Curve:  curve,
		})
	}
	return result, nil
}

// implicate clips mf at strength and max-merges it into agg in place.
func implicate(agg Curve, mf MembershipFunction, strength float64) {
	for i, x := range agg.X {
		clipped := math.Min(mf.Degree(x), strength)
		if clipped > agg.Y[i] {
			agg.Y[i] = clipped
		}
	}
}
