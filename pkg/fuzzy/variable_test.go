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

func TestNewDomain(t *testing.T) {
	d, err := NewDomain(30, 45)
	require.NoError(t, err)
	assert.Equal(t, 15.0, d.Width())
	assert.Equal(t, 37.5, d.Midpoint())
	assert.True(t, d.Contains(30))
	assert.True(t, d.Contains(45))
	assert.False(t, d.Contains(45.01))

	for _, bad := range [][2]float64{{1, 1}, {2, 1}, {math.NaN(), 1}} {
		_, err := NewDomain(bad[0], bad[1])
		assert.ErrorIs(t, err, ErrInvalidDomain, "domain %v", bad)
	}
}

func TestNewInput_InvalidDomain(t *testing.T) {
	in, err := NewInput("Patient Age", Domain{Min: 130, Max: 0})
	assert.Nil(t, in)
	assert.ErrorIs(t, err, ErrInvalidDomain)
	assert.Contains(t, err.Error(), "Patient Age")
}

// TestInputs_SetRejectsOutOfDomain verifies the fail-fast policy: values
// outside [min,max] are rejected, never clamped.
func TestInputs_SetRejectsOutOfDomain(t *testing.T) {
	temp := mustInput(t, "Patient Temperature", 30, 45)
	s := NewInputs()

	tests := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{"lower bound", 30, false},
		{"upper bound", 45, false},
		{"inside", 37.2, false},
		{"below", 29.9, true},
		{"above", 45.1, true},
		{"nan", math.NaN(), true},
		{"infinite", math.Inf(1), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := s.Set(temp, tc.value)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrOutOfDomain)
				return
			}
			require.NoError(t, err)
			v, ok := s.Value(temp)
			assert.True(t, ok)
			assert.Equal(t, tc.value, v)
		})
	}
}

// TestInputs_RejectedValueKeepsPrevious verifies a failed Set leaves the
// snapshot unchanged.
func TestInputs_RejectedValueKeepsPrevious(t *testing.T) {
	age := mustInput(t, "Patient Age", 0, 130)
	s := NewInputs()
	require.NoError(t, s.Set(age, 40))

	assert.Error(t, s.Set(age, 131))
	v, ok := s.Value(age)
	assert.True(t, ok)
	assert.Equal(t, 40.0, v)
	assert.Equal(t, 1, s.Len())
}

func TestInputs_NilSnapshot(t *testing.T) {
	var s *Inputs
	_, ok := s.Value(mustInput(t, "x", 0, 1))
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestOutput_Discretization(t *testing.T) {
	out := mustOutput(t, "Patient Urgency", 0, 100)
	assert.Equal(t, DefaultDiscretizationLevel, out.DiscretizationLevel())

	xs := out.Samples()
	require.Len(t, xs, 100)
	assert.Equal(t, 0.0, xs[0])
	assert.Equal(t, 100.0, xs[99])
	assert.InDelta(t, 100.0/99.0, xs[1], 1e-12)

	require.NoError(t, out.SetDiscretizationLevel(2))
	assert.Equal(t, []float64{0, 100}, out.Samples())

	for _, n := range []int{1, 0, -5} {
		err := out.SetDiscretizationLevel(n)
		assert.ErrorIs(t, err, ErrInvalidDiscretization)
	}
	assert.Equal(t, 2, out.DiscretizationLevel(), "rejected level must not be applied")
}

// TestDomain_LinspaceSymmetric verifies samples mirror around the midpoint,
// which the centroid relies on for symmetric curves.
func TestDomain_LinspaceSymmetric(t *testing.T) {
	d := Domain{Min: 0, Max: 100}
	for _, n := range []int{2, 3, 100, 101} {
		xs := d.Linspace(n)
		for i := range xs {
			assert.InDelta(t, 100.0, xs[i]+xs[n-1-i], 1e-9, "n=%d i=%d", n, i)
		}
	}
}
