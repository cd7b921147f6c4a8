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
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianTriage/pkg/telemetry"
	"github.com/AleutianAI/AleutianTriage/pkg/validation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// BatchRow is one patient in a batch.
//
// Err is set when the row could not be parsed; AssessBatch reports it
// without scoring the row.
type BatchRow struct {
	Line     int
	Readings map[string]float64
	Err      error
}

// BatchResult is the outcome of one BatchRow, in input order.
type BatchResult struct {
	Line       int         `json:"line"`
	Assessment *Assessment `json:"assessment,omitempty"`
	Err        error       `json:"-"`
	Error      string      `json:"error,omitempty"`
}

// AssessBatch scores rows concurrently with at most workers goroutines.
//
// # Description
//
// A failing row does not abort the batch: its error is stored in its
// BatchResult and the remaining rows are still scored. Results are returned
// in the order of rows regardless of completion order.
//
// # Inputs
//
//   - ctx: cancels the batch; rows not yet started are not scored
//   - rows: the rows to score
//   - workers: concurrency limit; <= 0 means runtime.GOMAXPROCS(0)
//
// # Outputs
//
//   - []BatchResult: one result per row
//   - error: only ctx.Err() if the batch was canceled
func (e *TriageEngine) AssessBatch(ctx context.Context, rows []BatchRow, workers int) ([]BatchResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	ctx, span := e.tracer.Start(ctx, "TriageEngine.AssessBatch",
		trace.WithAttributes(
			attribute.String("triage.model", e.ModelRef()),
			attribute.Int("triage.batch.rows", len(rows)),
			attribute.Int("triage.batch.workers", workers),
		),
	)
	defer span.End()
	start := time.Now()

	results := make([]BatchResult, len(rows))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, row := range rows {
		if gCtx.Err() != nil {
			break
		}
		i, row := i, row
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = e.assessRow(gCtx, row)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	scored, failed := 0, 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
		case r.Assessment != nil:
			scored++
		}
	}
	recordBatchMetrics(ctx, scored, failed, time.Since(start))
	e.auditBatch(ctx, len(rows), scored, failed, err, time.Since(start))
	span.SetAttributes(attribute.Int("triage.batch.failed", failed))

	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetSpanOK(span)
	telemetry.LoggerWithTrace(ctx, e.logger).Info("batch scored",
		"rows", len(rows),
		"failed", failed,
		"workers", workers,
		"duration", time.Since(start),
	)
	return results, nil
}

func (e *TriageEngine) assessRow(ctx context.Context, row BatchRow) BatchResult {
	result := BatchResult{Line: row.Line}
	if row.Err != nil {
		result.Err = row.Err
	} else {
		result.Assessment, result.Err = e.Assess(ctx, row.Readings)
	}
	if result.Err != nil {
		result.Error = result.Err.Error()
	}
	return result
}

// =============================================================================
// CSV Intake
// =============================================================================

// ReadBatchCSV reads one BatchRow per CSV record.
//
// The header names model inputs by key, in any order; every input must have
// a column. Lines starting with '#' are comments. A record that cannot be
// parsed becomes a row with Err set, so one bad line does not lose the rest
// of the file.
//
// # Errors
//
//   - ErrUnknownVariable or ErrMissingReading for a bad header
//   - validation.ErrInvalidInput for an empty file
//   - any I/O error from r
func ReadBatchCSV(r io.Reader, model *Model) ([]BatchRow, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty batch file", validation.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if err := model.checkKeys(header); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	present := make(map[string]bool, len(header))
	for _, key := range header {
		if present[key] {
			return nil, fmt.Errorf("header: %w: duplicate column %q", validation.ErrInvalidInput, key)
		}
		present[key] = true
	}
	for _, v := range model.Inputs {
		if !present[v.Key] {
			return nil, fmt.Errorf("header: %w: no column for %s", ErrMissingReading, v.Key)
		}
	}

	var rows []BatchRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, fmt.Errorf("read batch: %w", err)
			}
			rows = append(rows, BatchRow{Line: parseErr.StartLine, Err: fmt.Errorf("%w: %w", validation.ErrInvalidInput, err)})
			continue
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, parseRecord(line, header, record))
	}
	return rows, nil
}

func parseRecord(line int, header, record []string) BatchRow {
	row := BatchRow{Line: line, Readings: make(map[string]float64, len(header))}
	for i, key := range header {
		value, err := validation.ParseReading(record[i])
		if err != nil {
			row.Err = fmt.Errorf("column %s: %w", key, err)
			row.Readings = nil
			return row
		}
		row.Readings[key] = value
	}
	return row
}
