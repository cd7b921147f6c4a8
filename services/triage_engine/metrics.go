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
	"errors"
	"time"

	"github.com/AleutianAI/AleutianTriage/pkg/fuzzy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Prometheus Metrics for Assessments
// =============================================================================

// Assessment modes.
const (
	ModePoint    = "point"
	ModeInterval = "interval"
)

// Assessment statuses.
const (
	StatusOK           = "ok"
	StatusInvalidInput = "invalid_input"
	StatusNoRuleFired  = "no_rule_fired"
	StatusCanceled     = "canceled"
	StatusError        = "error"
)

var (
	// assessmentsTotal counts assessments by outcome.
	// Labels: mode (point, interval), status (ok, invalid_input, no_rule_fired, canceled, error)
	assessmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "triage",
		Subsystem: "engine",
		Name:      "assessments_total",
		Help:      "Total assessments by mode and status",
	}, []string{"mode", "status"})

	// assessmentLatency measures the time taken to score one assessment.
	// Labels: mode
	assessmentLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "triage",
		Subsystem: "engine",
		Name:      "latency_seconds",
		Help:      "Assessment latency in seconds",
		Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.1},
	}, []string{"mode"})

	// outputScore tracks the distribution of defuzzified values.
	// Labels: output (output variable key)
	outputScore = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "triage",
		Subsystem: "engine",
		Name:      "output_score",
		Help:      "Distribution of defuzzified output values",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	}, []string{"output"})

	// categoryTotal counts assessments by dominant output set.
	// Labels: output, category (set name)
	categoryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "triage",
		Subsystem: "engine",
		Name:      "category_total",
		Help:      "Total assessments by dominant output category",
	}, []string{"output", "category"})

	// rulesFired tracks how many rules fire per point assessment.
	rulesFired = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "triage",
		Subsystem: "engine",
		Name:      "rules_fired",
		Help:      "Number of rules with non-zero firing strength per assessment",
		Buckets:   []float64{0, 1, 2, 3, 4, 6, 8, 12, 16, 24, 32},
	})
)

// RecordAssessment records the outcome and latency of one assessment.
func RecordAssessment(mode, status string, duration time.Duration) {
	assessmentsTotal.WithLabelValues(mode, status).Inc()
	assessmentLatency.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordOutput records a defuzzified value and its dominant category.
func RecordOutput(output, category string, value float64) {
	outputScore.WithLabelValues(output).Observe(value)
	categoryTotal.WithLabelValues(output, category).Inc()
}

// RecordRulesFired records the number of rules that fired.
func RecordRulesFired(n int) {
	rulesFired.Observe(float64(n))
}

// statusOf maps an assessment error to its status label.
func statusOf(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusCanceled
	case errors.Is(err, fuzzy.ErrNoRuleFired):
		return StatusNoRuleFired
	case IsInputError(err):
		return StatusInvalidInput
	default:
		return StatusError
	}
}
