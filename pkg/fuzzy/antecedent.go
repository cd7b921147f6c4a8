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

import "fmt"

// Antecedent binds a membership function to an input variable:
// "temperature IS LowTemp".
type Antecedent struct {
	mf    MembershipFunction
	input *Input
	label string
}

// NewAntecedent creates an antecedent. The input is referenced, not copied.
func NewAntecedent(mf MembershipFunction, input *Input, label string) *Antecedent {
	return &Antecedent{mf: mf, input: input, label: label}
}

// MembershipFunction returns the bound fuzzy set.
func (a *Antecedent) MembershipFunction() MembershipFunction { return a.mf }

// Input returns the bound input variable.
func (a *Antecedent) Input() *Input { return a.input }

// Label returns the antecedent label, e.g. "TempLow".
func (a *Antecedent) Label() string { return a.label }

// Fire returns the membership degree of the input's value in the snapshot.
//
// Returns ErrMissingInput if the snapshot has no value for the input.
func (a *Antecedent) Fire(inputs *Inputs) (float64, error) {
	v, ok := inputs.Value(a.input)
	if !ok {
		return 0, fmt.Errorf("%w: %s (antecedent %s)", ErrMissingInput, a.input.Name(), a.label)
	}
	return a.mf.Degree(v), nil
}

func (a *Antecedent) String() string {
	return fmt.Sprintf("%s IS %s", a.input.Name(), a.mf.Name())
}

// Consequent binds a membership function to an output variable:
// "urgency IS Emergency". It has no truth value of its own; a Rule clips it
// at its firing strength.
type Consequent struct {
	mf     MembershipFunction
	output *Output
	label  string
}

// NewConsequent creates a consequent. The output is referenced, not copied.
func NewConsequent(mf MembershipFunction, output *Output, label string) *Consequent {
	return &Consequent{mf: mf, output: output, label: label}
}

// MembershipFunction returns the bound fuzzy set.
func (c *Consequent) MembershipFunction() MembershipFunction { return c.mf }

// Output returns the bound output variable.
func (c *Consequent) Output() *Output { return c.output }

// Label returns the consequent label, e.g. "UrgencyEmergency".
func (c *Consequent) Label() string { return c.label }

func (c *Consequent) String() string {
	return fmt.Sprintf("%s IS %s", c.output.Name(), c.mf.Name())
}
