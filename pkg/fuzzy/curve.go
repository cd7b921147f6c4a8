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

// Curve is a sampled membership curve: Y[i] is the degree at X[i].
type Curve struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// newCurve returns a zero curve over xs. xs is shared, not copied.
func newCurve(xs []float64) Curve {
	return Curve{X: xs, Y: make([]float64, len(xs))}
}

// Len returns the number of samples.
func (c Curve) Len() int { return len(c.X) }

// Sample evaluates mf at n equally spaced points of domain. Use it to plot a
// membership function with exactly the values the engine computes.
func Sample(mf MembershipFunction, domain Domain, n int) Curve {
	if n < 2 {
		n = 2
	}
	return sampleAt(mf, domain.Linspace(n))
}

// SampleAt evaluates mf at xs, e.g. an output's Samples, so a set curve
// lines up point for point with the aggregated curve. xs is copied.
func SampleAt(mf MembershipFunction, xs []float64) Curve {
	return sampleAt(mf, append([]float64(nil), xs...))
}

func sampleAt(mf MembershipFunction, xs []float64) Curve {
	c := newCurve(xs)
	for i, x := range c.X {
		c.Y[i] = mf.Degree(x)
	}
	return c
}

// Centroid defuzzifies a curve: Σ x·μ(x) / Σ μ(x), summed in sample order.
//
// Returns ErrNoRuleFired when the curve has zero area.
func Centroid(c Curve) (float64, error) {
	if len(c.X) != len(c.Y) {
		return 0, fmt.Errorf("centroid: %d sample points but %d degrees", len(c.X), len(c.Y))
	}
	var num, den float64
	for i, x := range c.X {
		num += x * c.Y[i]
		den += c.Y[i]
	}
	if den == 0 {
		return 0, ErrNoRuleFired
	}
	return num / den, nil
}
