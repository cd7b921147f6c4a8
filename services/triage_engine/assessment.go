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
	"time"

	"github.com/AleutianAI/AleutianTriage/pkg/fuzzy"
)

// =============================================================================
// Point Assessment
// =============================================================================

// Assessment is the result of scoring one set of readings.
type Assessment struct {
	// ID uniquely identifies this assessment in logs and traces.
	ID string `json:"id"`

	// Model is "name@version" of the model that produced it.
	Model string `json:"model"`

	AssessedAt time.Time          `json:"assessed_at"`
	Readings   map[string]float64 `json:"readings"`
	Inputs     []InputScore       `json:"inputs"`
	Outputs    []OutputScore      `json:"outputs"`

	// FiredRules lists rules with a non-zero firing strength, in rule order.
	FiredRules []FiredRule `json:"fired_rules"`

	// TraceID links the assessment to its span. Empty when tracing is off.
	TraceID string `json:"trace_id,omitempty"`
}

// Output returns the score for the output declared under key.
func (a *Assessment) Output(key string) (OutputScore, bool) {
	for _, o := range a.Outputs {
		if o.Key == key {
			return o, true
		}
	}
	return OutputScore{}, false
}

// InputScore shows how one reading was fuzzified.
type InputScore struct {
	Key         string      `json:"key"`
	Name        string      `json:"name"`
	Value       float64     `json:"value"`
	Memberships []SetDegree `json:"memberships"`
}

// OutputScore is the defuzzified value of one output.
type OutputScore struct {
	Key   string  `json:"key"`
	Name  string  `json:"name"`
	Unit  string  `json:"unit,omitempty"`
	Value float64 `json:"value"`

	// Category is the output set with the highest degree at Value.
	Category    string      `json:"category"`
	Memberships []SetDegree `json:"memberships"`
}

// SetDegree is the membership degree of a value in one fuzzy set.
type SetDegree struct {
	Name   string  `json:"name"`
	Label  string  `json:"label"`
	Degree float64 `json:"degree"`
}

// FiredRule is a rule that contributed to an assessment.
type FiredRule struct {
	Index       int     `json:"index"`
	Rule        string  `json:"rule"`
	Description string  `json:"description,omitempty"`
	Strength    float64 `json:"strength"`
}

// =============================================================================
// Interval Assessment
// =============================================================================

// IntervalAssessment is the result of scoring ranges of readings.
//
// Low and High are the outputs at the all-low and all-high corners of the
// input ranges. They are not sorted: Low may exceed High.
type IntervalAssessment struct {
	ID         string                    `json:"id"`
	Model      string                    `json:"model"`
	AssessedAt time.Time                 `json:"assessed_at"`
	Ranges     map[string]fuzzy.Interval `json:"ranges"`
	Inputs     []InputRange              `json:"inputs"`
	Outputs    []OutputRange             `json:"outputs"`
	TraceID    string                    `json:"trace_id,omitempty"`
}

// Output returns the range for the output declared under key.
func (a *IntervalAssessment) Output(key string) (OutputRange, bool) {
	for _, o := range a.Outputs {
		if o.Key == key {
			return o, true
		}
	}
	return OutputRange{}, false
}

// InputRange holds the endpoint degrees of one input range in each set.
type InputRange struct {
	Key   string         `json:"key"`
	Name  string         `json:"name"`
	Range fuzzy.Interval `json:"range"`
	Sets  []SetRange     `json:"sets"`
}

// SetRange is [μ(low), μ(high)] for one fuzzy set.
type SetRange struct {
	Name    string         `json:"name"`
	Label   string         `json:"label"`
	Degrees fuzzy.Interval `json:"degrees"`
}

// OutputRange is the bracketed value of one output.
type OutputRange struct {
	Key  string  `json:"key"`
	Name string  `json:"name"`
	Unit string  `json:"unit,omitempty"`
	Low  float64 `json:"low"`
	High float64 `json:"high"`
	Mid  float64 `json:"mid"`

	// Category is the dominant output set at Mid.
	Category string `json:"category"`
}

// =============================================================================
// Helpers
// =============================================================================

// dominantSet returns the degree of x in every set and the name of the set
// with the highest degree. Ties go to the set declared first.
func dominantSet(sets []*fuzzy.Consequent, x float64) (string, []SetDegree) {
	degrees := make([]SetDegree, len(sets))
	best, bestDegree := "", -1.0
	for i, c := range sets {
		mf := c.MembershipFunction()
		d := mf.Degree(x)
		degrees[i] = SetDegree{Name: mf.Name(), Label: c.Label(), Degree: d}
		if d > bestDegree {
			best, bestDegree = mf.Name(), d
		}
	}
	return best, degrees
}

func inputDegrees(sets []*fuzzy.Antecedent, x float64) []SetDegree {
	degrees := make([]SetDegree, len(sets))
	for i, a := range sets {
		mf := a.MembershipFunction()
		degrees[i] = SetDegree{Name: mf.Name(), Label: a.Label(), Degree: mf.Degree(x)}
	}
	return degrees
}

// checkKeys rejects keys the model does not declare as inputs.
func (m *Model) checkKeys(keys []string) error {
	var unknown []string
	for _, k := range keys {
		if _, ok := m.inputsByKey[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("%w: %s", ErrUnknownVariable, strings.Join(unknown, ", "))
}

// Snapshot converts readings keyed by input key into a fuzzy.Inputs.
//
// # Errors
//
//   - ErrUnknownVariable if a key is not a declared input
//   - ErrMissingReading if a declared input has no reading
//   - fuzzy.ErrOutOfDomain if a reading lies outside its domain
func (m *Model) Snapshot(readings map[string]float64) (*fuzzy.Inputs, error) {
	keys := make([]string, 0, len(readings))
	for k := range readings {
		keys = append(keys, k)
	}
	if err := m.checkKeys(keys); err != nil {
		return nil, err
	}

	inputs := fuzzy.NewInputs()
	for _, v := range m.Inputs {
		value, ok := readings[v.Key]
		if !ok {
			return nil, &ReadingError{Key: v.Key, Err: fmt.Errorf("%w: %s (%s)", ErrMissingReading, v.Key, v.Name())}
		}
		if err := inputs.Set(v.Input, value); err != nil {
			return nil, &ReadingError{Key: v.Key, Err: err}
		}
	}
	return inputs, nil
}

// checkRange applies the interval evaluator's own bound checks.
func checkRange(in *fuzzy.Input, iv fuzzy.Interval) error {
	if err := iv.Validate(); err != nil {
		return fmt.Errorf("input %q: %w", in.Name(), err)
	}
	if err := in.Validate(iv.Low); err != nil {
		return err
	}
	return in.Validate(iv.High)
}

// Ranges converts ranges keyed by input key into the form the interval
// evaluator takes, after checking keys, presence and bounds.
func (m *Model) Ranges(ranges map[string]fuzzy.Interval) (map[*fuzzy.Input]fuzzy.Interval, error) {
	keys := make([]string, 0, len(ranges))
	for k := range ranges {
		keys = append(keys, k)
	}
	if err := m.checkKeys(keys); err != nil {
		return nil, err
	}

	byInput := make(map[*fuzzy.Input]fuzzy.Interval, len(ranges))
	for _, v := range m.Inputs {
		iv, ok := ranges[v.Key]
		if !ok {
			return nil, &ReadingError{Key: v.Key, Err: fmt.Errorf("%w: %s (%s)", ErrMissingReading, v.Key, v.Name())}
		}
		byInput[v.Input] = iv
	}
	for _, v := range m.Inputs {
		if err := checkRange(v.Input, ranges[v.Key]); err != nil {
			return nil, &ReadingError{Key: v.Key, Err: err}
		}
	}
	return byInput, nil
}
