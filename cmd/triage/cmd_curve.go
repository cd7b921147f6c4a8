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
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/AleutianAI/AleutianTriage/pkg/fuzzy"
	"github.com/AleutianAI/AleutianTriage/pkg/validation"
	"github.com/AleutianAI/AleutianTriage/services/triage_engine"
	"github.com/spf13/cobra"
)

// Curve output formats.
const (
	curveFormatCSV  = "csv"
	curveFormatJSON = "json"
)

func newCurveCmd(a *app) *cobra.Command {
	var (
		inputs []string
		format string
		points int
	)
	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Export membership curves for plotting",
		Long: `Sample every fuzzy set of the model over its variable's domain.

With --input readings the model is also evaluated, and every output gains
its aggregated (clipped and merged) curve and defuzzified value.

CSV columns are kind,variable,set,x,degree where kind is input, output or
aggregate.`,
		Example: `  triage curve --points 200 > sets.csv
  triage curve -i age=40 -i headache=5 -i temperature=30 --format json`,
		Args: inputArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != curveFormatCSV && format != curveFormatJSON {
				return fmt.Errorf("%w: --format must be csv or json, got %q", validation.ErrInvalidInput, format)
			}
			if points < 0 || points == 1 {
				return fmt.Errorf("%w: --points must be 0 or at least 2, got %d", validation.ErrInvalidInput, points)
			}

			var readings map[string]float64
			if len(inputs) > 0 {
				var err error
				if readings, err = parseReadings(inputs); err != nil {
					return err
				}
			}
			curves, err := a.engine.Curves(cmd.Context(), readings, points)
			if err != nil {
				return err
			}
			if format == curveFormatJSON || a.flags.jsonOut {
				return outputJSON(a.stdout, curves)
			}
			return writeCurvesCSV(a.stdout, curves)
		},
	}
	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "reading as key=value; adds aggregated output curves")
	cmd.Flags().StringVarP(&format, "format", "f", curveFormatCSV, "output format: csv or json")
	cmd.Flags().IntVarP(&points, "points", "n", 0, "samples per curve (default 100)")
	return cmd
}

func writeCurvesCSV(w io.Writer, curves *triage_engine.CurveSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"kind", "variable", "set", "x", "degree"}); err != nil {
		return err
	}

	writeCurve := func(kind, variable, set string, c fuzzy.Curve) error {
		for i := range c.X {
			record := []string{kind, variable, set, formatFloat(c.X[i]), formatFloat(c.Y[i])}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		return nil
	}

	for _, v := range curves.Inputs {
		for _, s := range v.Sets {
			if err := writeCurve("input", v.Key, s.Name, s.Curve); err != nil {
				return err
			}
		}
	}
	for _, v := range curves.Outputs {
		for _, s := range v.Sets {
			if err := writeCurve("output", v.Key, s.Name, s.Curve); err != nil {
				return err
			}
		}
		if v.Aggregate != nil {
			if err := writeCurve("aggregate", v.Key, "", *v.Aggregate); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}
