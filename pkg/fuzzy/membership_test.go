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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTriangular_PeakAndFeet verifies degree(b)=1 and degree(a)=degree(c)=0.
func TestTriangular_PeakAndFeet(t *testing.T) {
	mf := mustTri(t, "ModerateHeadache", 3, 5, 7)

	assert.Equal(t, 1.0, mf.Degree(5))
	assert.Equal(t, 0.0, mf.Degree(3))
	assert.Equal(t, 0.0, mf.Degree(7))
	assert.InDelta(t, 0.5, mf.Degree(4), 1e-12)
	assert.InDelta(t, 0.25, mf.Degree(6.5), 1e-12)
	assert.Equal(t, 0.0, mf.Degree(-100))
	assert.Equal(t, 0.0, mf.Degree(100))
}

// TestTrapezoidal_Plateau verifies degree == 1 on the whole of [b,c].
func TestTrapezoidal_Plateau(t *testing.T) {
	mf := mustTrap(t, "Standard", 0, 0, 30, 50)

	for x := 0.0; x <= 30; x += 0.5 {
		assert.Equal(t, 1.0, mf.Degree(x), "x=%g", x)
	}
	assert.InDelta(t, 0.5, mf.Degree(40), 1e-12)
	assert.Equal(t, 0.0, mf.Degree(50))
	assert.Equal(t, 0.0, mf.Degree(-0.001))
}

// TestTrapezoidal_VerticalEdges verifies shoulders built from repeated
// breakpoints: the plateau wins at the shared breakpoint, and the degree
// drops to 0 immediately outside it.
func TestTrapezoidal_VerticalEdges(t *testing.T) {
	low := mustTrap(t, "LowTemp", 30, 30, 35.5, 36.3)
	assert.Equal(t, 1.0, low.Degree(30))
	assert.Equal(t, 0.0, low.Degree(29.999))
	assert.Equal(t, 0.0, low.Degree(36.3))

	elderly := mustTrap(t, "Elderly", 55, 80, 130, 130)
	assert.Equal(t, 1.0, elderly.Degree(130))
	assert.Equal(t, 0.0, elderly.Degree(130.001))
	assert.Equal(t, 0.0, elderly.Degree(55))
	assert.InDelta(t, 0.2, elderly.Degree(60), 1e-12)
}

// TestTriangular_Degenerate verifies spikes and one-sided triangles.
func TestTriangular_Degenerate(t *testing.T) {
	spike := mustTri(t, "Spike", 2, 2, 2)
	assert.Equal(t, 1.0, spike.Degree(2))
	assert.Equal(t, 0.0, spike.Degree(2.0001))

	right := mustTri(t, "Right", 0, 0, 10)
	assert.Equal(t, 1.0, right.Degree(0))
	assert.InDelta(t, 0.5, right.Degree(5), 1e-12)
	assert.Equal(t, 0.0, right.Degree(-1))
}

// TestMembership_DegreeInUnitInterval sweeps every shape across and beyond
// its support.
func TestMembership_DegreeInUnitInterval(t *testing.T) {
	shapes := []MembershipFunction{
		mustTri(t, "NormalTemp", 35.8, 37, 38.3),
		mustTri(t, "Adult", 20, 40, 65),
		mustTri(t, "Spike", 1, 1, 1),
		mustTrap(t, "HighTemp", 37.8, 39.5, 45, 45),
		mustTrap(t, "MildHeadache", 0, 0, 1.5, 4.5),
		mustTrap(t, "Box", 2, 2, 3, 3),
	}
	for _, mf := range shapes {
		for x := -200.0; x <= 200; x += 0.137 {
			d := mf.Degree(x)
			require.GreaterOrEqual(t, d, 0.0, "%s at %g", mf.Name(), x)
			require.LessOrEqual(t, d, 1.0, "%s at %g", mf.Name(), x)
		}
		assert.Equal(t, 0.0, mf.Degree(math.NaN()))
		assert.Equal(t, 0.0, mf.Degree(math.Inf(1)))
		assert.Equal(t, 0.0, mf.Degree(math.Inf(-1)))
	}
}

// TestNewShapes_InvalidBreakpoints verifies construction-time validation.
func TestNewShapes_InvalidBreakpoints(t *testing.T) {
	triangles := []struct {
		name    string
		a, b, c float64
	}{
		{"a greater than b", 5, 3, 7},
		{"b greater than c", 3, 8, 7},
		{"reversed", 7, 5, 3},
		{"nan peak", 3, math.NaN(), 7},
	}
	for _, tc := range triangles {
		t.Run("triangular/"+tc.name, func(t *testing.T) {
			mf, err := NewTriangular("bad", tc.a, tc.b, tc.c)
			assert.Nil(t, mf)
			assert.ErrorIs(t, err, ErrInvalidShape)
		})
	}

	trapezoids := []struct {
		name   string
		points [4]float64
	}{
		{"a greater than b", [4]float64{2, 1, 3, 4}},
		{"b greater than c", [4]float64{1, 3, 2, 4}},
		{"c greater than d", [4]float64{1, 2, 4, 3}},
		{"nan foot", [4]float64{math.NaN(), 1, 2, 3}},
	}
	for _, tc := range trapezoids {
		t.Run("trapezoidal/"+tc.name, func(t *testing.T) {
			mf, err := NewTrapezoidal("bad", tc.points)
			assert.Nil(t, mf)
			assert.ErrorIs(t, err, ErrInvalidShape)
		})
	}
}

// TestSample_MatchesDegree verifies Sample re-evaluates the shape exactly.
func TestSample_MatchesDegree(t *testing.T) {
	mf := mustTri(t, "Urgent", 40, 55, 70)
	c := Sample(mf, Domain{Min: 0, Max: 100}, 201)

	require.Equal(t, 201, c.Len())
	assert.Equal(t, 0.0, c.X[0])
	assert.Equal(t, 100.0, c.X[200])
	for i, x := range c.X {
		assert.Equal(t, mf.Degree(x), c.Y[i])
	}
	assert.Equal(t, 1.0, c.Y[110], "x=55 is the peak")
}

func TestSampleAt_UsesGivenPoints(t *testing.T) {
	mf := mustTri(t, "Urgent", 40, 55, 70)
	xs := []float64{0, 47.5, 55, 100}

	c := SampleAt(mf, xs)
	assert.Equal(t, xs, c.X)
	assert.Equal(t, []float64{0, 0.5, 1, 0}, c.Y)

	c.X[0] = -1
	assert.Equal(t, 0.0, xs[0], "points are copied")
}
