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
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/AleutianAI/AleutianTriage/pkg/extensions"
	"github.com/AleutianAI/AleutianTriage/pkg/fuzzy"
	"github.com/AleutianAI/AleutianTriage/pkg/logging"
	"github.com/AleutianAI/AleutianTriage/pkg/telemetry"
	"github.com/AleutianAI/AleutianTriage/services/triage_engine/models"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer for triage operations.
var tracer = otel.Tracer("aleutian.triage")

// TriageEngine serves as the main entry point for urgency scoring.
// It holds a compiled model and provides methods to assess readings with it.
type TriageEngine struct {
	model    *Model
	source   []byte
	hash     string
	interval *fuzzy.IntervalEvaluator

	logger         *logging.Logger
	tracer         trace.Tracer
	audit          extensions.AuditLogger
	operator       string
	discretization int
}

// Option configures a TriageEngine.
type Option func(*TriageEngine)

// WithLogger sets the logger. Default: logging.Discard().
func WithLogger(logger *logging.Logger) Option {
	return func(e *TriageEngine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracer sets the tracer. Default: the global "aleutian.triage" tracer.
func WithTracer(t trace.Tracer) Option {
	return func(e *TriageEngine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithAuditLogger records one audit event per assessment, attributed to
// operator. Default: extensions.NopAuditLogger.
func WithAuditLogger(audit extensions.AuditLogger, operator string) Option {
	return func(e *TriageEngine) {
		if audit != nil {
			e.audit = audit
		}
		e.operator = operator
	}
}

// WithDiscretization overrides the discretization level of every output.
// Zero keeps the levels declared in the model.
func WithDiscretization(n int) Option {
	return func(e *TriageEngine) {
		e.discretization = n
	}
}

// NewTriageEngine creates an engine for the urgency model embedded in the
// binary via the models package.
func NewTriageEngine(opts ...Option) (*TriageEngine, error) {
	return NewTriageEngineFromYAML(models.UrgencyModel, opts...)
}

// NewTriageEngineFromYAML creates an engine for the model document in data.
//
// It performs the following operations:
//  1. Unmarshals and validates the YAML document.
//  2. Compiles the variables, fuzzy sets and rule table.
//  3. Applies the discretization override, if any.
//
// Returns an error wrapping ErrInvalidModel if any step fails.
func NewTriageEngineFromYAML(data []byte, opts ...Option) (*TriageEngine, error) {
	e := &TriageEngine{
		logger: logging.Discard(),
		tracer: tracer,
		audit:  &extensions.NopAuditLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}

	doc, err := ParseModel(data)
	if err != nil {
		return nil, err
	}
	model, err := Compile(doc)
	if err != nil {
		return nil, err
	}
	if e.discretization != 0 {
		for _, out := range model.Outputs {
			if err := out.Output.SetDiscretizationLevel(e.discretization); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
			}
		}
	}

	sum := sha256.Sum256(data)
	e.model = model
	e.source = bytes.Clone(data)
	e.hash = fmt.Sprintf("sha256:%x", sum)
	e.interval = fuzzy.NewIntervalEvaluator(model.Rulebase)

	e.logger.Info("triage model compiled",
		"model", model.Name,
		"version", model.Version,
		"inputs", len(model.Inputs),
		"outputs", len(model.Outputs),
		"rules", model.Rulebase.Len(),
		"hash", e.hash,
	)
	return e, nil
}

// Model returns the compiled model.
func (e *TriageEngine) Model() *Model { return e.model }

// Source returns a copy of the YAML the model was compiled from.
func (e *TriageEngine) Source() []byte { return bytes.Clone(e.source) }

// Hash returns "sha256:<hex>" of the model source.
func (e *TriageEngine) Hash() string { return e.hash }

// ModelRef returns "name@version", or just the name when unversioned.
func (e *TriageEngine) ModelRef() string {
	if e.model.Version == "" {
		return e.model.Name
	}
	return e.model.Name + "@" + e.model.Version
}

// =============================================================================
// Point Assessment
// =============================================================================

// Assess scores one set of readings keyed by input key.
//
// # Errors
//
//   - ErrUnknownVariable, ErrMissingReading, fuzzy.ErrOutOfDomain for bad
//     readings; IsInputError reports true for all of them
//   - fuzzy.ErrNoRuleFired when the rule table does not cover the readings
//   - ctx.Err() if ctx is already done
func (e *TriageEngine) Assess(ctx context.Context, readings map[string]float64) (*Assessment, error) {
	ctx, span := e.tracer.Start(ctx, "TriageEngine.Assess",
		trace.WithAttributes(attribute.String("triage.model", e.ModelRef())),
	)
	defer span.End()
	start := time.Now()

	result, err := e.assess(ctx, readings)
	RecordAssessment(ModePoint, statusOf(err), time.Since(start))
	e.auditAssessment(ctx, result, err, time.Since(start))
	if err != nil {
		telemetry.RecordError(span, err)
		e.logFailure(ctx, ModePoint, err)
		return nil, err
	}

	result.TraceID = telemetry.TraceID(ctx)
	attrs := []attribute.KeyValue{
		attribute.String("triage.assessment_id", result.ID),
		attribute.Int("triage.rules_fired", len(result.FiredRules)),
	}
	for _, o := range result.Outputs {
		RecordOutput(o.Key, o.Category, o.Value)
		attrs = append(attrs,
			attribute.Float64("triage.output."+o.Key, o.Value),
			attribute.String("triage.category."+o.Key, o.Category),
		)
	}
	RecordRulesFired(len(result.FiredRules))
	span.SetAttributes(attrs...)
	telemetry.SetSpanOK(span)

	telemetry.LoggerWithTrace(ctx, e.logger).Debug("assessment scored",
		"assessment_id", result.ID,
		"readings", result.Readings,
		"rules_fired", len(result.FiredRules),
		"duration", time.Since(start),
	)
	return result, nil
}

func (e *TriageEngine) assess(ctx context.Context, readings map[string]float64) (*Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	inputs, err := e.model.Snapshot(readings)
	if err != nil {
		return nil, err
	}
	eval, err := e.model.Rulebase.Evaluate(inputs)
	if err != nil {
		return nil, err
	}

	a := &Assessment{
		ID:         uuid.NewString(),
		Model:      e.ModelRef(),
		AssessedAt: time.Now().UTC(),
		Readings:   maps.Clone(readings),
		Inputs:     make([]InputScore, 0, len(e.model.Inputs)),
		Outputs:    make([]OutputScore, 0, len(e.model.Outputs)),
		FiredRules: []FiredRule{},
	}
	for _, v := range e.model.Inputs {
		value := readings[v.Key]
		a.Inputs = append(a.Inputs, InputScore{
			Key:         v.Key,
			Name:        v.Name(),
			Value:       value,
			Memberships: inputDegrees(v.Sets, value),
		})
	}
	for _, v := range e.model.Outputs {
		value, _ := eval.Value(v.Output)
		category, degrees := dominantSet(v.Sets, value)
		a.Outputs = append(a.Outputs, OutputScore{
			Key:         v.Key,
			Name:        v.Name(),
			Unit:        v.Unit,
			Value:       value,
			Category:    category,
			Memberships: degrees,
		})
	}
	for i, s := range eval.Strengths {
		if s == 0 {
			continue
		}
		r := e.model.Rules[i]
		a.FiredRules = append(a.FiredRules, FiredRule{
			Index:       i,
			Rule:        r.Rule.String(),
			Description: r.Description,
			Strength:    s,
		})
	}
	return a, nil
}

// =============================================================================
// Interval Assessment
// =============================================================================

// AssessInterval scores ranges of readings keyed by input key.
//
// The model is evaluated at the all-low and all-high corners of the ranges,
// concurrently. This is an approximation: the inference mapping is not
// monotonic, so the true extremes over the ranges may lie inside them, and
// Low may exceed High.
//
// # Errors
//
//   - ErrUnknownVariable, ErrMissingReading for bad keys
//   - fuzzy.ErrInvalidInterval if a range has low > high
//   - fuzzy.ErrOutOfDomain if a bound lies outside its domain
//   - fuzzy.ErrNoRuleFired if either corner fires no rule
func (e *TriageEngine) AssessInterval(ctx context.Context, ranges map[string]fuzzy.Interval) (*IntervalAssessment, error) {
	ctx, span := e.tracer.Start(ctx, "TriageEngine.AssessInterval",
		trace.WithAttributes(attribute.String("triage.model", e.ModelRef())),
	)
	defer span.End()
	start := time.Now()

	result, err := e.assessInterval(ctx, ranges)
	RecordAssessment(ModeInterval, statusOf(err), time.Since(start))
	e.auditInterval(ctx, result, err, time.Since(start))
	if err != nil {
		telemetry.RecordError(span, err)
		e.logFailure(ctx, ModeInterval, err)
		return nil, err
	}

	result.TraceID = telemetry.TraceID(ctx)
	attrs := []attribute.KeyValue{attribute.String("triage.assessment_id", result.ID)}
	for _, o := range result.Outputs {
		attrs = append(attrs,
			attribute.Float64("triage.output."+o.Key+".low", o.Low),
			attribute.Float64("triage.output."+o.Key+".high", o.High),
		)
	}
	span.SetAttributes(attrs...)
	telemetry.SetSpanOK(span)

	telemetry.LoggerWithTrace(ctx, e.logger).Debug("interval assessment scored",
		"assessment_id", result.ID,
		"duration", time.Since(start),
	)
	return result, nil
}

func (e *TriageEngine) assessInterval(ctx context.Context, ranges map[string]fuzzy.Interval) (*IntervalAssessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	byInput, err := e.model.Ranges(ranges)
	if err != nil {
		return nil, err
	}
	eval, err := e.interval.Evaluate(ctx, byInput)
	if err != nil {
		return nil, err
	}

	a := &IntervalAssessment{
		ID:         uuid.NewString(),
		Model:      e.ModelRef(),
		AssessedAt: time.Now().UTC(),
		Ranges:     maps.Clone(ranges),
		Inputs:     make([]InputRange, 0, len(e.model.Inputs)),
		Outputs:    make([]OutputRange, 0, len(e.model.Outputs)),
	}
	for _, v := range e.model.Inputs {
		iv := ranges[v.Key]
		sets := make([]SetRange, len(v.Sets))
		for i, s := range v.Sets {
			mf := s.MembershipFunction()
			sets[i] = SetRange{Name: mf.Name(), Label: s.Label(), Degrees: fuzzy.EndpointDegrees(mf, iv)}
		}
		a.Inputs = append(a.Inputs, InputRange{Key: v.Key, Name: v.Name(), Range: iv, Sets: sets})
	}
	for _, v := range e.model.Outputs {
		oi, _ := eval.Output(v.Output)
		category, _ := dominantSet(v.Sets, oi.Mid)
		a.Outputs = append(a.Outputs, OutputRange{
			Key:      v.Key,
			Name:     v.Name(),
			Unit:     v.Unit,
			Low:      oi.Low,
			High:     oi.High,
			Mid:      oi.Mid,
			Category: category,
		})
	}
	return a, nil
}

// logFailure logs an assessment error at a level matching its cause.
// Input error messages may quote the reading, so they go to Debug only.
func (e *TriageEngine) logFailure(ctx context.Context, mode string, err error) {
	logger := telemetry.LoggerWithTrace(ctx, e.logger)
	switch {
	case errors.Is(err, fuzzy.ErrNoRuleFired):
		logger.Warn("no rule fired for readings; rule table has a coverage gap",
			"mode", mode, "model", e.ModelRef(), "error", err)
	case IsInputError(err):
		logger.Warn("rejected readings", "mode", mode, "status", statusOf(err), "variable", readingKey(err))
		logger.Debug("rejected readings detail", "mode", mode, "error", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Debug("assessment canceled", "mode", mode, "error", err)
	default:
		logger.Error("assessment failed", "mode", mode, "error", err)
	}
}
