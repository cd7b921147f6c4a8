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
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// triageModel is the three-input urgency model used across the tests.
type triageModel struct {
	age, headache, temperature *Input
	urgency                    *Output

	tempLow, tempNormal, tempHigh      *Antecedent
	headMild, headModerate, headSevere *Antecedent
	ageYoung, ageAdult, ageElderly     *Antecedent
	standard, urgent, emergency        *Consequent
	standardMF, urgentMF, emergencyMF  MembershipFunction
	rules                              []*Rule
}

func mustTri(t *testing.T, name string, a, b, c float64) *Triangular {
	t.Helper()
	mf, err := NewTriangular(name, a, b, c)
	require.NoError(t, err)
	return mf
}

func mustTrap(t *testing.T, name string, a, b, c, d float64) *Trapezoidal {
	t.Helper()
	mf, err := NewTrapezoidal(name, [4]float64{a, b, c, d})
	require.NoError(t, err)
	return mf
}

func mustInput(t *testing.T, name string, lo, hi float64) *Input {
	t.Helper()
	in, err := NewInput(name, Domain{Min: lo, Max: hi})
	require.NoError(t, err)
	return in
}

func mustOutput(t *testing.T, name string, lo, hi float64) *Output {
	t.Helper()
	out, err := NewOutput(name, Domain{Min: lo, Max: hi})
	require.NoError(t, err)
	return out
}

func mustRule(t *testing.T, ants []*Antecedent, cons ...*Consequent) *Rule {
	t.Helper()
	r, err := NewRule(ants, cons...)
	require.NoError(t, err)
	return r
}

func newTriageModel(t *testing.T) *triageModel {
	t.Helper()
	m := &triageModel{
		age:         mustInput(t, "Patient Age", 0, 130),
		headache:    mustInput(t, "Headache Severity", 0, 10),
		temperature: mustInput(t, "Patient Temperature", 30, 45),
		urgency:     mustOutput(t, "Patient Urgency", 0, 100),
	}

	m.tempLow = NewAntecedent(mustTrap(t, "LowTemp", 30, 30, 35.5, 36.3), m.temperature, "TempLow")
	m.tempNormal = NewAntecedent(mustTri(t, "NormalTemp", 35.8, 37, 38.3), m.temperature, "TempNormal")
	m.tempHigh = NewAntecedent(mustTrap(t, "HighTemp", 37.8, 39.5, 45, 45), m.temperature, "TempHigh")

	m.headMild = NewAntecedent(mustTrap(t, "MildHeadache", 0, 0, 1.5, 4.5), m.headache, "HeadacheMild")
	m.headModerate = NewAntecedent(mustTri(t, "ModerateHeadache", 3, 5, 7), m.headache, "HeadacheModerate")
	m.headSevere = NewAntecedent(mustTrap(t, "SevereHeadache", 5.5, 8.5, 10, 10), m.headache, "HeadacheSevere")

	m.ageYoung = NewAntecedent(mustTrap(t, "Young", 0, 0, 12, 25), m.age, "AgeYoung")
	m.ageAdult = NewAntecedent(mustTri(t, "Adult", 20, 40, 65), m.age, "AgeAdult")
	m.ageElderly = NewAntecedent(mustTrap(t, "Elderly", 55, 80, 130, 130), m.age, "AgeElderly")

	m.standardMF = mustTrap(t, "Standard", 0, 0, 30, 50)
	m.urgentMF = mustTri(t, "Urgent", 40, 55, 70)
	m.emergencyMF = mustTrap(t, "Emergency", 60, 80, 100, 100)
	m.standard = NewConsequent(m.standardMF, m.urgency, "UrgencyStandard")
	m.urgent = NewConsequent(m.urgentMF, m.urgency, "UrgencyUrgent")
	m.emergency = NewConsequent(m.emergencyMF, m.urgency, "UrgencyEmergency")

	headaches := []*Antecedent{m.headMild, m.headModerate, m.headSevere}
	ages := []*Antecedent{m.ageYoung, m.ageAdult, m.ageElderly}

	for _, temp := range []*Antecedent{m.tempLow, m.tempHigh} {
		for _, h := range headaches {
			for _, a := range ages {
				m.rules = append(m.rules, mustRule(t, []*Antecedent{temp, h, a}, m.emergency))
			}
		}
	}
	for _, a := range ages {
		m.rules = append(m.rules, mustRule(t, []*Antecedent{m.tempNormal, m.headMild, a}, m.standard))
	}
	m.rules = append(m.rules,
		mustRule(t, []*Antecedent{m.tempNormal, m.headModerate, m.ageYoung}, m.urgent),
		mustRule(t, []*Antecedent{m.tempNormal, m.headModerate, m.ageAdult}, m.standard),
		mustRule(t, []*Antecedent{m.tempNormal, m.headModerate, m.ageElderly}, m.urgent),
	)
	for _, a := range ages {
		m.rules = append(m.rules, mustRule(t, []*Antecedent{m.tempNormal, m.headSevere, a}, m.urgent))
	}
	return m
}

func (m *triageModel) rulebase() *Rulebase {
	return NewRulebase(m.rules...)
}

func (m *triageModel) inputs(t *testing.T, age, headache, temperature float64) *Inputs {
	t.Helper()
	s := NewInputs()
	require.NoError(t, s.Set(m.age, age))
	require.NoError(t, s.Set(m.headache, headache))
	require.NoError(t, s.Set(m.temperature, temperature))
	return s
}
