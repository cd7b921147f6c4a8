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
	"time"

	"github.com/AleutianAI/AleutianTriage/pkg/extensions"
	"github.com/AleutianAI/AleutianTriage/pkg/telemetry"
)

// auditOutcome maps an assessment error to an audit outcome.
func auditOutcome(err error) string {
	switch {
	case err == nil:
		return extensions.OutcomeSuccess
	case IsInputError(err):
		return extensions.OutcomeRejected
	default:
		return extensions.OutcomeFailure
	}
}

// auditMetadata never records the text of an input error, which may quote
// the rejected reading.
func (e *TriageEngine) auditMetadata(err error, elapsed time.Duration) map[string]any {
	md := map[string]any{
		"model":       e.ModelRef(),
		"model_hash":  e.hash,
		"status":      statusOf(err),
		"duration_ms": elapsed.Milliseconds(),
	}
	switch {
	case err == nil:
	case IsInputError(err):
		if key := readingKey(err); key != "" {
			md["variable"] = key
		}
	default:
		md["error"] = err.Error()
	}
	return md
}

func (e *TriageEngine) auditAssessment(ctx context.Context, a *Assessment, err error, elapsed time.Duration) {
	event := extensions.AuditEvent{
		EventType:    extensions.EventAssess,
		Action:       "score",
		ResourceType: "assessment",
		Outcome:      auditOutcome(err),
		Metadata:     e.auditMetadata(err, elapsed),
	}
	if a != nil {
		event.ResourceID = a.ID
		event.Timestamp = a.AssessedAt
		event.Metadata["rules_fired"] = len(a.FiredRules)
		for _, o := range a.Outputs {
			event.Metadata["output."+o.Key] = o.Value
			event.Metadata["category."+o.Key] = o.Category
		}
	}
	e.writeAudit(ctx, event)
}

func (e *TriageEngine) auditInterval(ctx context.Context, a *IntervalAssessment, err error, elapsed time.Duration) {
	event := extensions.AuditEvent{
		EventType:    extensions.EventAssessInterval,
		Action:       "score_interval",
		ResourceType: "assessment",
		Outcome:      auditOutcome(err),
		Metadata:     e.auditMetadata(err, elapsed),
	}
	if a != nil {
		event.ResourceID = a.ID
		event.Timestamp = a.AssessedAt
		for _, o := range a.Outputs {
			event.Metadata["output."+o.Key+".low"] = o.Low
			event.Metadata["output."+o.Key+".high"] = o.High
			event.Metadata["category."+o.Key] = o.Category
		}
	}
	e.writeAudit(ctx, event)
}

func (e *TriageEngine) auditBatch(ctx context.Context, rows, scored, failed int, err error, elapsed time.Duration) {
	md := e.auditMetadata(err, elapsed)
	md["rows"] = rows
	md["scored"] = scored
	md["failed"] = failed
	e.writeAudit(ctx, extensions.AuditEvent{
		EventType:    extensions.EventBatch,
		Action:       "score_batch",
		ResourceType: "batch",
		Outcome:      auditOutcome(err),
		Metadata:     md,
	})
}

// writeAudit logs event detached from ctx cancellation so canceled
// assessments are still recorded. A failed write is logged, never returned.
func (e *TriageEngine) writeAudit(ctx context.Context, event extensions.AuditEvent) {
	event.UserID = e.operator
	if err := e.audit.Log(context.WithoutCancel(ctx), event); err != nil {
		telemetry.LoggerWithTrace(ctx, e.logger).Warn("failed to write audit event",
			"event_type", event.EventType,
			"resource_id", event.ResourceID,
			"error", err,
		)
	}
}
