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
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// Interval is a closed range of crisp values for one input.
type Interval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Point returns the degenerate interval [v, v].
func Point(v float64) Interval { return Interval{Low: v, High: v} }

// Validate returns ErrInvalidInterval if Low > High or either bound is NaN.
func (iv Interval) Validate() error {
	if math.IsNaN(iv.Low) || math.IsNaN(iv.High) || iv.Low > iv.High {
		return fmt.Errorf("%w: [%g, %g]", ErrInvalidInterval, iv.Low, iv.High)
	}
	return nil
}

// Midpoint returns (Low+High)/2.
func (iv Interval) Midpoint() float64 { return (iv.Low + iv.High) / 2 }

// EndpointDegrees returns mf's degree at the low and at the high endpoint.
//
// These are the degrees at the two corners the IntervalEvaluator uses, not
// the minimum and maximum degree over the interval.
func EndpointDegrees(mf MembershipFunction, iv Interval) Interval {
	return Interval{Low: mf.Degree(iv.Low), High: mf.Degree(iv.High)}
}

// OutputInterval is the bracketed result for one output variable.
type OutputInterval struct {
	Output *Output `json:"-"`
	Name   string  `json:"name"`

	// Low is the output with every input at its low bound.
	Low float64 `json:"low"`

	// High is the output with every input at its high bound.
	High float64 `json:"high"`

	// Mid is (Low+High)/2, a representative crisp estimate.
	Mid float64 `json:"mid"`
}

// IntervalEvaluation is the result of IntervalEvaluator.Evaluate.
type IntervalEvaluation struct {
	Outputs []OutputInterval `json:"outputs"`

	// LowEvaluation and HighEvaluation are the two corner evaluations.
	LowEvaluation  *Evaluation `json:"low_evaluation"`
	HighEvaluation *Evaluation `json:"high_evaluation"`
}

// Output returns the interval for out.
func (e *IntervalEvaluation) Output(out *Output) (OutputInterval, bool) {
	for _, o := range e.Outputs {
		if o.Output == out {
			return o, true
		}
	}
	return OutputInterval{}, false
}

// IntervalEvaluator brackets a rulebase's output over ranges of inputs by
// evaluating it at the all-low and all-high corners.
//
// # Known Approximation
//
// This does not compute the image of the input box under the inference
// mapping. The mapping is generally non-monotonic, so true extrema can lie
// at interior points, and Low may exceed High. The corner results are
// reported as they are, without sorting or searching.
type IntervalEvaluator struct {
	rulebase *Rulebase
}

// NewIntervalEvaluator wraps rb.
func NewIntervalEvaluator(rb *Rulebase) *IntervalEvaluator {
	return &IntervalEvaluator{rulebase: rb}
}

// Evaluate evaluates the rulebase at the low and high corners of ranges.
//
// The two corner evaluations use independent snapshots and run concurrently.
//
// # Errors
//
//   - ErrInvalidInterval if a range has Low > High
//   - ErrOutOfDomain if a bound lies outside its input's domain
//   - any error from Rulebase.Evaluate at either corner
//   - ctx.Err() if ctx is done before both corners finish
func (ie *IntervalEvaluator) Evaluate(ctx context.Context, ranges map[*Input]Interval) (*IntervalEvaluation, error) {
	lows, highs := NewInputs(), NewInputs()
	for in, iv := range ranges {
		if err := iv.Validate(); err != nil {
			return nil, fmt.Errorf("input %q: %w", in.Name(), err)
		}
		if err := lows.Set(in, iv.Low); err != nil {
			return nil, err
		}
		if err := highs.Set(in, iv.High); err != nil {
			return nil, err
		}
	}

	var low, high *Evaluation
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		low, err = evaluateCtx(gCtx, ie.rulebase, lows)
		if err != nil {
			return fmt.Errorf("low bound: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		high, err = evaluateCtx(gCtx, ie.rulebase, highs)
		if err != nil {
			return fmt.Errorf("high bound: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &IntervalEvaluation{
		Outputs:        make([]OutputInterval, 0, len(low.Outputs)),
		LowEvaluation:  low,
		HighEvaluation: high,
	}
	for _, lo := range low.Outputs {
		hi, _ := high.Value(lo.Output)
		result.Outputs = append(result.Outputs, OutputInterval{
			Output: lo.Output,
			Name:   lo.Name,
			Low:    lo.Value,
			High:   hi,
			Mid:    (lo.Value + hi) / 2,
		})
	}
	return result, nil
}

// evaluateCtx skips the evaluation when ctx is already done.
func evaluateCtx(ctx context.Context, rb *Rulebase, inputs *Inputs) (*Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rb.Evaluate(inputs)
}
