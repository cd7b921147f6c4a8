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
	"fmt"
	"sort"
	"strings"

	"github.com/AleutianAI/AleutianTriage/pkg/fuzzy"
)

// =============================================================================
// Compiled Model
// =============================================================================

// Model is a compiled model document.
//
// It is immutable once Compile returns; the fuzzy objects it holds are
// shared by every evaluation.
type Model struct {
	Name        string
	Version     string
	Description string
	Inputs      []*InputVariable
	Outputs     []*OutputVariable

	// Rules holds one entry per expanded rule, in Rulebase order.
	Rules    []CompiledRule
	Rulebase *fuzzy.Rulebase

	inputsByKey  map[string]*InputVariable
	outputsByKey map[string]*OutputVariable
}

// InputVariable is a compiled input with its fuzzy sets in declared order.
type InputVariable struct {
	Key    string
	Prompt string
	Unit   string
	Input  *fuzzy.Input
	Sets   []*fuzzy.Antecedent
}

// Name returns the display name of the variable.
func (v *InputVariable) Name() string { return v.Input.Name() }

// OutputVariable is a compiled output with its fuzzy sets in declared order.
type OutputVariable struct {
	Key    string
	Unit   string
	Output *fuzzy.Output
	Sets   []*fuzzy.Consequent
}

// Name returns the display name of the variable.
func (v *OutputVariable) Name() string { return v.Output.Name() }

// CompiledRule is one rule after wildcard expansion.
type CompiledRule struct {
	// Source is the index of the rule table row it was expanded from.
	Source      int
	Description string
	Rule        *fuzzy.Rule
}

// Input returns the input declared under key.
func (m *Model) Input(key string) (*InputVariable, bool) {
	v, ok := m.inputsByKey[key]
	return v, ok
}

// Output returns the output declared under key.
func (m *Model) Output(key string) (*OutputVariable, bool) {
	v, ok := m.outputsByKey[key]
	return v, ok
}

// =============================================================================
// Compilation
// =============================================================================

// Compile builds the fuzzy objects described by doc.
//
// # Description
//
// Compile performs the following operations:
//  1. Builds every input and output variable with its domain.
//  2. Builds every fuzzy set, checking the point count against the shape.
//  3. Expands wildcard rows of the rule table into concrete rules.
//  4. Collects the rules into a Rulebase.
//
// Every error wraps ErrInvalidModel. doc is expected to have passed
// ParseModel; Compile repeats only the checks validator tags cannot express.
func Compile(doc *ModelDocument) (*Model, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", ErrInvalidModel)
	}

	m := &Model{
		Name:         doc.Name,
		Version:      doc.Version,
		Description:  doc.Description,
		inputsByKey:  make(map[string]*InputVariable, len(doc.Inputs)),
		outputsByKey: make(map[string]*OutputVariable, len(doc.Outputs)),
	}

	for _, spec := range doc.Inputs {
		if err := m.checkKey(spec.Key); err != nil {
			return nil, err
		}
		v, err := compileInput(spec)
		if err != nil {
			return nil, fmt.Errorf("%w: input %q: %w", ErrInvalidModel, spec.Key, err)
		}
		m.Inputs = append(m.Inputs, v)
		m.inputsByKey[spec.Key] = v
	}

	for _, spec := range doc.Outputs {
		if err := m.checkKey(spec.Key); err != nil {
			return nil, err
		}
		v, err := compileOutput(spec)
		if err != nil {
			return nil, fmt.Errorf("%w: output %q: %w", ErrInvalidModel, spec.Key, err)
		}
		m.Outputs = append(m.Outputs, v)
		m.outputsByKey[spec.Key] = v
	}

	rb := fuzzy.NewRulebase()
	for i, spec := range doc.Rules {
		rules, err := m.expandRule(spec)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %d: %w", ErrInvalidModel, i+1, err)
		}
		for _, r := range rules {
			rb.AddRule(r)
			m.Rules = append(m.Rules, CompiledRule{Source: i, Description: spec.Description, Rule: r})
		}
	}
	m.Rulebase = rb

	concluded := make(map[*fuzzy.Output]bool)
	for _, out := range rb.Outputs() {
		concluded[out] = true
	}
	for _, v := range m.Outputs {
		if !concluded[v.Output] {
			return nil, fmt.Errorf("%w: output %q is not concluded by any rule", ErrInvalidModel, v.Key)
		}
	}

	return m, nil
}

func (m *Model) checkKey(key string) error {
	_, isInput := m.inputsByKey[key]
	_, isOutput := m.outputsByKey[key]
	if isInput || isOutput {
		return fmt.Errorf("%w: duplicate variable key %q", ErrInvalidModel, key)
	}
	return nil
}

func compileInput(spec VariableSpec) (*InputVariable, error) {
	in, err := fuzzy.NewInput(spec.Name, fuzzy.Domain{Min: spec.Domain.Min, Max: spec.Domain.Max})
	if err != nil {
		return nil, err
	}
	v := &InputVariable{Key: spec.Key, Prompt: spec.Prompt, Unit: spec.Unit, Input: in}
	err = eachSet(spec.Sets, func(mf fuzzy.MembershipFunction, label string) {
		v.Sets = append(v.Sets, fuzzy.NewAntecedent(mf, in, label))
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func compileOutput(spec VariableSpec) (*OutputVariable, error) {
	out, err := fuzzy.NewOutput(spec.Name, fuzzy.Domain{Min: spec.Domain.Min, Max: spec.Domain.Max})
	if err != nil {
		return nil, err
	}
	if spec.Discretization > 0 {
		if err := out.SetDiscretizationLevel(spec.Discretization); err != nil {
			return nil, err
		}
	}
	v := &OutputVariable{Key: spec.Key, Unit: spec.Unit, Output: out}
	err = eachSet(spec.Sets, func(mf fuzzy.MembershipFunction, label string) {
		v.Sets = append(v.Sets, fuzzy.NewConsequent(mf, out, label))
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// eachSet builds the membership function of every set and hands it to add
// with its display label.
func eachSet(sets []SetSpec, add func(fuzzy.MembershipFunction, string)) error {
	seen := make(map[string]bool, len(sets))
	for _, s := range sets {
		if s.Name == Wildcard {
			return fmt.Errorf("set name %q is reserved", Wildcard)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate set %q", s.Name)
		}
		seen[s.Name] = true

		mf, err := buildMembership(s)
		if err != nil {
			return err
		}
		label := s.Label
		if label == "" {
			label = s.Name
		}
		add(mf, label)
	}
	return nil
}

func buildMembership(s SetSpec) (fuzzy.MembershipFunction, error) {
	if want := s.Shape.PointCount(); len(s.Points) != want {
		return nil, fmt.Errorf("set %q: %s shape takes %d points, got %d", s.Name, s.Shape, want, len(s.Points))
	}
	p := s.Points
	switch s.Shape {
	case ShapeTriangular:
		return fuzzy.NewTriangular(s.Name, p[0], p[1], p[2])
	case ShapeTrapezoidal:
		return fuzzy.NewTrapezoidal(s.Name, [4]float64{p[0], p[1], p[2], p[3]})
	default:
		return nil, fmt.Errorf("set %q: unknown shape %q", s.Name, s.Shape)
	}
}

// =============================================================================
// Rule Expansion
// =============================================================================

// expandRule resolves the clauses of one rule table row and expands its
// wildcards.
func (m *Model) expandRule(spec RuleSpec) ([]*fuzzy.Rule, error) {
	choices := make([][]*fuzzy.Antecedent, 0, len(spec.When))
	used := make(map[string]bool, len(spec.When))
	for _, c := range spec.When {
		v, ok := m.inputsByKey[c.Variable]
		if !ok {
			return nil, fmt.Errorf("unknown input %q", c.Variable)
		}
		if used[c.Variable] {
			return nil, fmt.Errorf("input %q appears twice", c.Variable)
		}
		used[c.Variable] = true

		if c.Is == Wildcard {
			choices = append(choices, v.Sets)
			continue
		}
		a := findAntecedent(v.Sets, c.Is)
		if a == nil {
			return nil, fmt.Errorf("input %q has no set %q (have %s)", c.Variable, c.Is, antecedentNames(v.Sets))
		}
		choices = append(choices, []*fuzzy.Antecedent{a})
	}

	consequents := make([]*fuzzy.Consequent, 0, len(spec.Then))
	for _, c := range spec.Then {
		v, ok := m.outputsByKey[c.Variable]
		if !ok {
			return nil, fmt.Errorf("unknown output %q", c.Variable)
		}
		if c.Is == Wildcard {
			return nil, fmt.Errorf("output %q: wildcard is only allowed in when clauses", c.Variable)
		}
		cons := findConsequent(v.Sets, c.Is)
		if cons == nil {
			return nil, fmt.Errorf("output %q has no set %q", c.Variable, c.Is)
		}
		consequents = append(consequents, cons)
	}

	var rules []*fuzzy.Rule
	for _, ants := range cartesian(choices) {
		r, err := fuzzy.NewRule(ants, consequents...)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// cartesian returns every combination picking one element per slot, with
// the first slot varying slowest.
func cartesian(choices [][]*fuzzy.Antecedent) [][]*fuzzy.Antecedent {
	combos := [][]*fuzzy.Antecedent{{}}
	for _, slot := range choices {
		next := make([][]*fuzzy.Antecedent, 0, len(combos)*len(slot))
		for _, prefix := range combos {
			for _, a := range slot {
				combo := make([]*fuzzy.Antecedent, len(prefix), len(prefix)+1)
				copy(combo, prefix)
				next = append(next, append(combo, a))
			}
		}
		combos = next
	}
	return combos
}

func findAntecedent(sets []*fuzzy.Antecedent, name string) *fuzzy.Antecedent {
	for _, a := range sets {
		if a.MembershipFunction().Name() == name {
			return a
		}
	}
	return nil
}

func findConsequent(sets []*fuzzy.Consequent, name string) *fuzzy.Consequent {
	for _, c := range sets {
		if c.MembershipFunction().Name() == name {
			return c
		}
	}
	return nil
}

func antecedentNames(sets []*fuzzy.Antecedent) string {
	names := make([]string, len(sets))
	for i, a := range sets {
		names[i] = a.MembershipFunction().Name()
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
