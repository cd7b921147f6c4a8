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

// MembershipFunction maps a crisp value to a membership degree.
//
// Degree is pure and total on the real line: it returns a value in [0,1]
// for every x, and 0 outside Support.
type MembershipFunction interface {
	// Name identifies the fuzzy set, e.g. "LowTemp".
	Name() string

	// Degree returns the membership degree of x in [0,1].
	Degree(x float64) float64

	// Support returns the outer breakpoints; Degree is 0 outside them.
	Support() (lo, hi float64)
}

// =============================================================================
// Triangular
// =============================================================================

// Triangular is a triangle with feet at A and C and its peak at B.
type Triangular struct {
	name    string
	A, B, C float64
}

// NewTriangular creates a triangular membership function.
//
// Breakpoints must satisfy a <= b <= c. Equal breakpoints give a vertical
// edge; the peak still has degree 1.
//
// Returns ErrInvalidShape if the breakpoints are out of order or NaN.
func NewTriangular(name string, a, b, c float64) (*Triangular, error) {
	if err := checkBreakpoints(name, a, b, c); err != nil {
		return nil, err
	}
	return &Triangular{name: name, A: a, B: b, C: c}, nil
}

// Name returns the set name.
func (t *Triangular) Name() string { return t.name }

// Support returns [A, C].
func (t *Triangular) Support() (float64, float64) { return t.A, t.C }

// Degree evaluates the triangle at x.
func (t *Triangular) Degree(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x == t.B:
		return 1
	case x <= t.A || x >= t.C:
		return 0
	case x < t.B:
		return (x - t.A) / (t.B - t.A)
	default:
		return (t.C - x) / (t.C - t.B)
	}
}

func (t *Triangular) String() string {
	return fmt.Sprintf("%s triangular(%g, %g, %g)", t.name, t.A, t.B, t.C)
}

// =============================================================================
// Trapezoidal
// =============================================================================

// Trapezoidal is a trapezoid with feet at A and D and a plateau on [B, C].
type Trapezoidal struct {
	name       string
	A, B, C, D float64
}

// NewTrapezoidal creates a trapezoidal membership function from the four
// breakpoints [a, b, c, d].
//
// Breakpoints must satisfy a <= b <= c <= d. Shoulders are written with
// repeated breakpoints, e.g. [30, 30, 35.5, 36.3] is 1 from 30 to 35.5.
//
// Returns ErrInvalidShape if the breakpoints are out of order or NaN.
func NewTrapezoidal(name string, points [4]float64) (*Trapezoidal, error) {
	if err := checkBreakpoints(name, points[:]...); err != nil {
		return nil, err
	}
	return &Trapezoidal{name: name, A: points[0], B: points[1], C: points[2], D: points[3]}, nil
}

// Name returns the set name.
func (t *Trapezoidal) Name() string { return t.name }

// Support returns [A, D].
func (t *Trapezoidal) Support() (float64, float64) { return t.A, t.D }

// Degree evaluates the trapezoid at x. The plateau [B, C] is closed.
func (t *Trapezoidal) Degree(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x >= t.B && x <= t.C:
		return 1
	case x <= t.A || x >= t.D:
		return 0
	case x < t.B:
		return (x - t.A) / (t.B - t.A)
	default:
		return (t.D - x) / (t.D - t.C)
	}
}

func (t *Trapezoidal) String() string {
	return fmt.Sprintf("%s trapezoidal(%g, %g, %g, %g)", t.name, t.A, t.B, t.C, t.D)
}

// checkBreakpoints rejects NaN and decreasing breakpoints.
func checkBreakpoints(name string, points ...float64) error {
	for i, p := range points {
		if math.IsNaN(p) {
			return fmt.Errorf("%w: %q breakpoint %d is NaN", ErrInvalidShape, name, i)
		}
		if i > 0 && points[i-1] > p {
			return fmt.Errorf("%w: %q breakpoints %v are not non-decreasing", ErrInvalidShape, name, points)
		}
	}
	return nil
}

// Compile-time interface checks.
var (
	_ MembershipFunction = (*Triangular)(nil)
	_ MembershipFunction = (*Trapezoidal)(nil)
)
