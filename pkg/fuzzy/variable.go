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

// DefaultDiscretizationLevel is the number of sample points used for an
// Output unless SetDiscretizationLevel is called.
const DefaultDiscretizationLevel = 100

// Domain is a closed interval [Min, Max].
type Domain struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// NewDomain returns [lo, hi], or ErrInvalidDomain unless lo < hi.
func NewDomain(lo, hi float64) (Domain, error) {
	d := Domain{Min: lo, Max: hi}
	if err := d.Validate(); err != nil {
		return Domain{}, err
	}
	return d, nil
}

// Validate checks that Min < Max and neither bound is NaN.
func (d Domain) Validate() error {
	if math.IsNaN(d.Min) || math.IsNaN(d.Max) || d.Min >= d.Max {
		return fmt.Errorf("%w: [%g, %g]", ErrInvalidDomain, d.Min, d.Max)
	}
	return nil
}

// Contains reports whether v lies in [Min, Max].
func (d Domain) Contains(v float64) bool {
	return v >= d.Min && v <= d.Max
}

// Width returns Max - Min.
func (d Domain) Width() float64 { return d.Max - d.Min }

// Midpoint returns the centre of the domain.
func (d Domain) Midpoint() float64 { return d.Min + d.Width()/2 }

// Linspace returns n equally spaced points from Min to Max inclusive.
// n must be at least 2.
func (d Domain) Linspace(n int) []float64 {
	xs := make([]float64, n)
	step := d.Width() / float64(n-1)
	for i := range xs {
		xs[i] = d.Min + float64(i)*step
	}
	// pin the last sample to Max so rounding never leaves the domain
	xs[n-1] = d.Max
	return xs
}

func (d Domain) String() string { return fmt.Sprintf("[%g, %g]", d.Min, d.Max) }

// =============================================================================
// Input
// =============================================================================

// Input is a named input variable with a closed domain.
//
// Input holds no current value; crisp values are supplied per evaluation
// through an Inputs snapshot.
type Input struct {
	name   string
	domain Domain
}

// NewInput creates an input variable. Returns ErrInvalidDomain for an empty
// or inverted domain.
func NewInput(name string, domain Domain) (*Input, error) {
	if err := domain.Validate(); err != nil {
		return nil, fmt.Errorf("input %q: %w", name, err)
	}
	return &Input{name: name, domain: domain}, nil
}

// Name returns the variable name.
func (in *Input) Name() string { return in.name }

// Domain returns the variable's domain.
func (in *Input) Domain() Domain { return in.domain }

// Validate returns ErrOutOfDomain unless v lies in the domain.
func (in *Input) Validate(v float64) error {
	if math.IsNaN(v) || !in.domain.Contains(v) {
		return fmt.Errorf("%w: %s = %g not in %s", ErrOutOfDomain, in.name, v, in.domain)
	}
	return nil
}

// =============================================================================
// Output
// =============================================================================

// Output is a named output variable. It carries the discretisation level used
// to sample its domain at defuzzification time and is otherwise only an
// aggregation target.
type Output struct {
	name           string
	domain         Domain
	discretization int
}

// NewOutput creates an output variable with DefaultDiscretizationLevel
// sample points.
func NewOutput(name string, domain Domain) (*Output, error) {
	if err := domain.Validate(); err != nil {
		return nil, fmt.Errorf("output %q: %w", name, err)
	}
	return &Output{name: name, domain: domain, discretization: DefaultDiscretizationLevel}, nil
}

// Name returns the variable name.
func (out *Output) Name() string { return out.name }

// Domain returns the variable's domain.
func (out *Output) Domain() Domain { return out.domain }

// DiscretizationLevel returns the number of sample points.
func (out *Output) DiscretizationLevel() int { return out.discretization }

// SetDiscretizationLevel sets the number of equally spaced sample points
// spanning the domain. n must be at least 2.
//
// This is a build-time operation; it must not run concurrently with an
// evaluation that reads this output.
func (out *Output) SetDiscretizationLevel(n int) error {
	if n < 2 {
		return fmt.Errorf("%w: output %q needs at least 2 points, got %d", ErrInvalidDiscretization, out.name, n)
	}
	out.discretization = n
	return nil
}

// Samples returns the sample points used for defuzzification.
func (out *Output) Samples() []float64 {
	return out.domain.Linspace(out.discretization)
}

// =============================================================================
// Inputs
// =============================================================================

// Inputs is a snapshot of crisp values for one evaluation.
//
// Build a fresh Inputs per evaluation. A single Inputs is not safe for
// concurrent Set calls, but any number of evaluations may read it at once.
type Inputs struct {
	values map[*Input]float64
}

// NewInputs creates an empty snapshot.
func NewInputs() *Inputs {
	return &Inputs{values: make(map[*Input]float64)}
}

// Set stores v as the crisp value of in.
//
// Out-of-domain values fail with ErrOutOfDomain rather than being clamped.
func (s *Inputs) Set(in *Input, v float64) error {
	if err := in.Validate(v); err != nil {
		return err
	}
	s.values[in] = v
	return nil
}

// Value returns the crisp value of in and whether it was set.
func (s *Inputs) Value(in *Input) (float64, bool) {
	if s == nil {
		return 0, false
	}
	v, ok := s.values[in]
	return v, ok
}

// Len returns the number of inputs set.
func (s *Inputs) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}
