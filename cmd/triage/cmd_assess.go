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
	"io"

	"github.com/AleutianAI/AleutianTriage/pkg/ux"
	"github.com/AleutianAI/AleutianTriage/pkg/validation"
	"github.com/AleutianAI/AleutianTriage/services/triage_engine"
	"github.com/spf13/cobra"
)

func newAssessCmd(a *app) *cobra.Command {
	var (
		inputs  []string
		explain bool
	)
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Score one patient from crisp readings",
		Long: `Score one patient. Readings come from --input key=value flags, or are
prompted for in model order when no --input is given.

Prints the defuzzified urgency with two decimals and its dominant category.`,
		Example: `  triage assess --input age=40 --input headache=5 --input temperature=30
  echo "40 5 30" | tr ' ' '\n' | triage assess`,
		Args: inputArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			readings, err := a.readings(inputs)
			if err != nil {
				return err
			}
			assessment, err := a.engine.Assess(cmd.Context(), readings)
			if err != nil {
				return err
			}
			if a.flags.jsonOut {
				return outputJSON(a.stdout, assessment)
			}
			a.printAssessment(assessment, explain)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "reading as key=value, once per input (prompts when omitted)")
	cmd.Flags().BoolVar(&explain, "explain", false, "show input memberships and fired rules")
	return cmd
}

// readings parses --input assignments, or prompts for every model input
// when there are none.
func (a *app) readings(assignments []string) (map[string]float64, error) {
	if len(assignments) > 0 {
		return parseReadings(assignments)
	}

	reader := a.inputReader()
	w := a.promptWriter()
	readings := make(map[string]float64, len(a.engine.Model().Inputs))
	for _, v := range a.engine.Model().Inputs {
		x, err := ux.ReadNumber(reader, w, promptFor(v))
		if err != nil {
			return nil, fmt.Errorf("%w (%s)", err, v.Key)
		}
		readings[v.Key] = x
	}
	endPrompts(reader, w)
	return readings, nil
}

func parseReadings(assignments []string) (map[string]float64, error) {
	readings := make(map[string]float64, len(assignments))
	for _, s := range assignments {
		key, value, err := validation.ParseAssignment(s)
		if err != nil {
			return nil, err
		}
		if _, dup := readings[key]; dup {
			return nil, fmt.Errorf("%w: %s given twice", validation.ErrInvalidInput, key)
		}
		x, err := validation.ParseReading(value)
		if err != nil {
			return nil, fmt.Errorf("%w (%s)", err, key)
		}
		readings[key] = x
	}
	return readings, nil
}

func promptFor(v *triage_engine.InputVariable) string {
	if v.Prompt != "" {
		return v.Prompt
	}
	return v.Name() + ": "
}

// endPrompts terminates the prompt line a plain reader leaves open.
func endPrompts(reader ux.InputReader, w io.Writer) {
	if _, ok := reader.(ux.PromptingInputReader); !ok {
		fmt.Fprintln(w)
	}
}

func (a *app) printAssessment(as *triage_engine.Assessment, explain bool) {
	if explain {
		ux.Title("Fuzzified readings")
		for _, in := range as.Inputs {
			ux.KeyValue(in.Name, fmt.Sprintf("%g", in.Value))
			for _, m := range in.Memberships {
				if m.Degree > 0 {
					ux.Info(fmt.Sprintf("  %-18s %s", m.Name, ux.DegreeBar(m.Degree, 20)))
				}
			}
		}
		ux.Title("Fired rules")
		for _, r := range as.FiredRules {
			title := fmt.Sprintf("#%d [%.2f]", r.Index, r.Strength)
			if r.Description != "" {
				title = fmt.Sprintf("#%d %s [%.2f]", r.Index, r.Description, r.Strength)
			}
			ux.Box(title, r.Rule)
		}
	}

	model := a.engine.Model()
	for _, o := range as.Outputs {
		v, _ := model.Output(o.Key)
		ux.Score("Defuzzified "+o.Name, o.Value, o.Category, severity(v, o.Category))
	}
}
