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
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Package-level meter for batch operations.
var meter = otel.Meter("aleutian.triage")

// Metrics for batch operations.
var (
	batchRows     metric.Int64Counter
	batchDuration metric.Float64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		batchRows, err = meter.Int64Counter(
			"triage_batch_rows_total",
			metric.WithDescription("Total batch rows scored, by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		batchDuration, err = meter.Float64Histogram(
			"triage_batch_duration_seconds",
			metric.WithDescription("Duration of batch scoring runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordBatchMetrics records the outcome of one batch run.
func recordBatchMetrics(ctx context.Context, scored, failed int, duration time.Duration) {
	if err := initMetrics(); err != nil {
		return
	}

	batchRows.Add(ctx, int64(scored), metric.WithAttributes(attribute.String("status", StatusOK)))
	batchRows.Add(ctx, int64(failed), metric.WithAttributes(attribute.String("status", StatusError)))
	batchDuration.Record(ctx, duration.Seconds())
}
