// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.


// Package extensions provides pluggable hooks that deployments can replace
// without touching the scoring code.
//
// The audit trail is the only hook today. The engine emits one AuditEvent
// per assessment; the open source default discards them, and the CLI can
// append them to a JSON Lines file with --audit-log.
package extensions

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Event types emitted by the triage engine.
const (
	EventAssess         = "triage.assess"
	EventAssessInterval = "triage.assess_interval"
	EventBatch          = "triage.batch"
)

// Outcomes recorded on an AuditEvent.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailure  = "failure"
)

// UserSystem is the UserID recorded when no operator is configured.
const UserSystem = "system"

var (
	// ErrInvalidAuditEvent indicates an event without an EventType.
	ErrInvalidAuditEvent = errors.New("invalid audit event")

	// ErrAuditLogClosed indicates a write after Close.
	ErrAuditLogClosed = errors.New("audit log closed")
)

// AuditEvent records one scoring action for later review.
//
// Readings are never recorded. An auditor can tie an event back to the
// patient record through ResourceID, which is the assessment ID returned to
// the caller.
//
// Example:
//
//	event := AuditEvent{
//	    EventType:    EventAssess,
//	    UserID:       "triage-nurse-4",
//	    Action:       "score",
//	    ResourceType: "assessment",
//	    ResourceID:   assessment.ID,
//	    Outcome:      OutcomeSuccess,
//	    Metadata: map[string]any{
//	        "model":            "triage-urgency@1.0",
//	        "category.urgency": "Emergency",
//	    },
//	}
type AuditEvent struct {
	// EventType is "category.action", e.g. "triage.assess".
	EventType string `json:"event_type"`

	// Timestamp is when the event occurred, in UTC.
	// Loggers set it to time.Now().UTC() when zero.
	Timestamp time.Time `json:"timestamp"`

	// UserID identifies who requested the assessment.
	// Loggers set it to UserSystem when empty.
	UserID string `json:"user_id"`

	// Action is what was attempted: "score", "score_interval", "score_batch".
	Action string `json:"action"`

	// ResourceType is "assessment" or "batch".
	ResourceType string `json:"resource_type"`

	// ResourceID is the assessment ID. Empty when scoring failed.
	ResourceID string `json:"resource_id,omitempty"`

	// Outcome is one of OutcomeSuccess, OutcomeRejected, OutcomeFailure.
	Outcome string `json:"outcome"`

	// Metadata holds event-specific details such as the model reference,
	// output values, categories and the error message on failure.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// AuditLogger records assessment events.
//
// Implementations must be safe for concurrent use; batch scoring logs from
// many goroutines at once.
type AuditLogger interface {
	// Log records event. It fills in Timestamp and UserID when unset.
	Log(ctx context.Context, event AuditEvent) error

	// Flush persists buffered events. Call it before the process exits.
	Flush(ctx context.Context) error
}

// NopAuditLogger discards every event. It is the engine default.
type NopAuditLogger struct{}

// Log discards the event.
func (l *NopAuditLogger) Log(ctx context.Context, event AuditEvent) error {
	return nil
}

// Flush is a no-op.
func (l *NopAuditLogger) Flush(ctx context.Context) error {
	return nil
}

var _ AuditLogger = (*NopAuditLogger)(nil)

// =============================================================================
// JSON Lines Logger
// =============================================================================

// JSONLAuditLogger writes one JSON object per line.
//
// Writes are buffered; Flush or Close pushes them to the underlying writer.
type JSONLAuditLogger struct {
	mu     sync.Mutex
	buf    *bufio.Writer
	enc    *json.Encoder
	closer io.Closer
	closed bool
	now    func() time.Time
}

var _ AuditLogger = (*JSONLAuditLogger)(nil)

// NewJSONLAuditLogger writes events to w. Close does not close w.
func NewJSONLAuditLogger(w io.Writer) *JSONLAuditLogger {
	buf := bufio.NewWriter(w)
	return &JSONLAuditLogger{
		buf: buf,
		enc: json.NewEncoder(buf),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// OpenAuditLog appends events to the file at path, creating it with mode
// 0600 if needed. Close flushes and closes the file.
func OpenAuditLog(path string) (*JSONLAuditLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	l := NewJSONLAuditLogger(f)
	l.closer = f
	return l, nil
}

// Log encodes event as one line.
func (l *JSONLAuditLogger) Log(ctx context.Context, event AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.EventType == "" {
		return fmt.Errorf("%w: event type is required", ErrInvalidAuditEvent)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = l.now()
	}
	if event.UserID == "" {
		event.UserID = UserSystem
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrAuditLogClosed
	}
	if err := l.enc.Encode(event); err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}
	return nil
}

// Flush writes buffered events to the underlying writer.
func (l *JSONLAuditLogger) Flush(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	return l.buf.Flush()
}

// Close flushes and, for loggers from OpenAuditLog, closes the file.
// Calling Close twice is a no-op.
func (l *JSONLAuditLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	err := l.buf.Flush()
	if l.closer != nil {
		if cerr := l.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
