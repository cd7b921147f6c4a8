// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/AleutianTriage/pkg/fuzzy"
	"github.com/AleutianAI/AleutianTriage/pkg/ux"
	"github.com/AleutianAI/AleutianTriage/pkg/validation"
	"github.com/AleutianAI/AleutianTriage/services/triage_engine"
	"github.com/spf13/cobra"
)

func newIntervalCmd(a *app) *cobra.Command {
	var inputs []string
	cmd := &cobra.Command{
		Use:   "interval",
		Short: "Bracket the urgency of a patient known only by ranges",
		Long: `Score ranges of readings. Each input is given as --input key=low:high
(or a single value for an exact reading), or prompted for as a minimum and a
maximum when no --input is given.

The model is evaluated at the all-minimum and all-maximum corners. The two
scores are printed as given, so the first may exceed the second, followed by
their midpoint and the membership degrees at each end of every input range.`,
		Example: `  triage interval --input age=30:50 --input headache=4:6 --input temperature=30:37`,
		Args:    inputArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ranges, err := a.ranges(inputs)
			if err != nil {
				return err
			}
			assessment, err := a.engine.AssessInterval(cmd.Context(), ranges)
			if err != nil {
				return err
			}
			if a.flags.jsonOut {
				return outputJSON(a.stdout, assessment)
			}
			a.printInterval(assessment)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "range as key=low:high, once per input (prompts when omitted)")
	return cmd
}

func (a *app) ranges(assignments []string) (map[string]fuzzy.Interval, error) {
	ranges := make(map[string]fuzzy.Interval, len(a.engine.Model().Inputs))
	if len(assignments) > 0 {
		for _, s := range assignments {
			key, value, err := validation.ParseAssignment(s)
			if err != nil {
				return nil, err
			}
			if _, dup := ranges[key]; dup {
				return nil, fmt.Errorf("%w: %s given twice", validation.ErrInvalidInput, key)
			}
			low, high, err := validation.ParseRange(value)
			if err != nil {
				return nil, fmt.Errorf("%w (%s)", err, key)
			}
			ranges[key] = fuzzy.Interval{Low: low, High: high}
		}
		return ranges, nil
	}

	reader := a.inputReader()
	w := a.promptWriter()
	for _, v := range a.engine.Model().Inputs {
		low, err := ux.ReadNumber(reader, w, boundPrompt(v, "minimum"))
		if err != nil {
			return nil, fmt.Errorf("%w (%s)", err, v.Key)
		}
		high, err := ux.ReadNumber(reader, w, boundPrompt(v, "maximum"))
		if err != nil {
			return nil, fmt.Errorf("%w (%s)", err, v.Key)
		}
		ranges[v.Key] = fuzzy.Interval{Low: low, High: high}
	}
	endPrompts(reader, w)
	return ranges, nil
}

// boundPrompt asks for one end of a range, keeping the range hint of the
// model prompt: "Enter patient age (0–130): " becomes
// "Enter patient age minimum (0–130): ". Without a hinted prompt the domain
// is shown instead.
func boundPrompt(v *triage_engine.InputVariable, bound string) string {
	if i := strings.LastIndex(v.Prompt, " ("); i >= 0 {
		return v.Prompt[:i] + " " + bound + v.Prompt[i:]
	}
	return fmt.Sprintf("%s %s %s: ", v.Name(), bound, v.Input.Domain())
}

func (a *app) printInterval(as *triage_engine.IntervalAssessment) {
	model := a.engine.Model()
	for _, o := range as.Outputs {
		fmt.Fprintf(a.stdout, "Defuzzified %s Interval: [%.2f, %.2f]\n", o.Name, o.Low, o.High)
		v, _ := model.Output(o.Key)
		ux.Score("Midpoint", o.Mid, o.Category, severity(v, o.Category))
	}

	ux.Title("Endpoint degrees")
	for _, in := range as.Inputs {
		ux.KeyValue(in.Name, fmt.Sprintf("[%g, %g]", in.Range.Low, in.Range.High))
		for _, s := range in.Sets {
			fmt.Fprintf(a.stdout, "    %-18s μ ∈ [%.2f, %.2f]\n", s.Name, s.Degrees.Low, s.Degrees.High)
		}
	}
}
