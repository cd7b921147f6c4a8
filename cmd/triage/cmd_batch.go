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
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/AleutianAI/AleutianTriage/pkg/ux"
	"github.com/AleutianAI/AleutianTriage/pkg/validation"
	"github.com/AleutianAI/AleutianTriage/services/triage_engine"
	"github.com/spf13/cobra"
)

func newBatchCmd(a *app) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "batch <file.csv|->",
		Short: "Score every patient in a CSV file",
		Long: `Score one patient per CSV row. The header row names the model inputs
by key, in any order; lines starting with '#' are comments. Use - to read
from stdin.

Each row produces one JSON line on stdout, in file order. A row that cannot
be parsed or scored carries an "error" field; the rest of the batch is still
scored and the command exits 0.`,
		Example: `  triage batch patients.csv --workers 8 > scores.jsonl`,
		Args:    inputArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeFn, err := openInput(args[0], a.stdin)
			if err != nil {
				return err
			}
			defer closeFn()

			rows, err := triage_engine.ReadBatchCSV(r, a.engine.Model())
			if err != nil {
				return err
			}
			if workers <= 0 {
				workers = a.cfg.Batch.Workers
			}
			results, err := a.engine.AssessBatch(cmd.Context(), rows, workers)
			if err != nil {
				return err
			}
			return a.printBatch(results)
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent assessments (default batch.workers, then GOMAXPROCS)")
	return cmd
}

// openInput opens path for reading, or returns stdin for "-".
func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", validation.ErrInvalidInput, err)
	}
	return f, func() { _ = f.Close() }, nil
}

// printBatch writes one compact JSON object per result and a summary line
// on stderr.
func (a *app) printBatch(results []triage_engine.BatchResult) error {
	encoder := json.NewEncoder(a.stdout)
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
		if err := encoder.Encode(r); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
	}

	if !ux.GetPersonality().Machine() {
		fmt.Fprintf(a.stderr, "%d rows scored, %d failed\n", len(results)-failed, failed)
	}
	return nil
}
