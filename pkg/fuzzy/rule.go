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
	"strings"
)

// Rule is "IF a1 AND a2 ... THEN c1, c2 ...".
//
// Antecedents are combined with the minimum t-norm. Every consequent receives
// the same firing strength. Disjunction is written as several rules with the
// same consequent.
type Rule struct {
	antecedents []*Antecedent
	consequents []*Consequent
}

// NewRule creates a rule.
//
// Returns ErrEmptyRule without antecedents and ErrNoConsequent without
// consequents. The slices are copied; the antecedents are shared.
func NewRule(antecedents []*Antecedent, consequents ...*Consequent) (*Rule, error) {
	if len(antecedents) == 0 {
		return nil, ErrEmptyRule
	}
	if len(consequents) == 0 {
		return nil, ErrNoConsequent
	}
	return &Rule{
		antecedents: append([]*Antecedent(nil), antecedents...),
		consequents: append([]*Consequent(nil), consequents...),
	}, nil
}

// Antecedents returns the conditions in order.
func (r *Rule) Antecedents() []*Antecedent {
	return append([]*Antecedent(nil), r.antecedents...)
}

// Consequents returns the conclusions in order.
func (r *Rule) Consequents() []*Consequent {
	return append([]*Consequent(nil), r.consequents...)
}

// FiringStrength returns the minimum degree over the antecedents for the
// given snapshot. It is recomputed on every call.
func (r *Rule) FiringStrength(inputs *Inputs) (float64, error) {
	strength := 1.0
	for _, a := range r.antecedents {
		d, err := a.Fire(inputs)
		if err != nil {
			return 0, err
		}
		strength = math.Min(strength, d)
	}
	return strength, nil
}

// String renders the rule as "IF x IS A AND y IS B THEN z IS C".
func (r *Rule) String() string {
	var sb strings.Builder
	sb.WriteString("IF ")
	for i, a := range r.antecedents {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteString(" THEN ")
	for i, c := range r.consequents {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c.String())
	}
	return sb.String()
}

var _ fmt.Stringer = (*Rule)(nil)
