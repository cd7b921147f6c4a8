// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/AleutianAI/AleutianTriage/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// restoreGlobals puts the previous global providers back after a test that
// calls Init.
func restoreGlobals(t *testing.T) {
	t.Helper()
	tp := otel.GetTracerProvider()
	mp := otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(tp)
		otel.SetMeterProvider(mp)
	})
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("OTEL_TRACES_EXPORTER", "")
	t.Setenv("OTEL_METRICS_EXPORTER", "")

	cfg := DefaultConfig()
	assert.Equal(t, "aleutian-triage", cfg.ServiceName)
	assert.Equal(t, ExporterNone, cfg.TraceExporter)
	assert.Equal(t, ExporterNone, cfg.MetricExporter)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
}

func TestDefaultConfig_EnvOverrides(t *testing.T) {
	t.Setenv("OTEL_TRACES_EXPORTER", "stdout")
	t.Setenv("OTEL_METRICS_EXPORTER", "prometheus")

	cfg := DefaultConfig()
	assert.Equal(t, ExporterStdout, cfg.TraceExporter)
	assert.Equal(t, ExporterPrometheus, cfg.MetricExporter)
}

func TestInit_NilContext(t *testing.T) {
	_, err := Init(nil, Config{})
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestInit_NoExporters(t *testing.T) {
	restoreGlobals(t)
	cfg := Config{TraceExporter: ExporterNone, MetricExporter: ExporterNone}

	shutdown, err := Init(context.Background(), cfg)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_UnknownExporter(t *testing.T) {
	restoreGlobals(t)

	_, err := Init(context.Background(), Config{TraceExporter: "zipkin"})
	assert.ErrorIs(t, err, ErrUnknownExporter)
	assert.Contains(t, err.Error(), "zipkin")

	_, err = Init(context.Background(), Config{MetricExporter: "statsd"})
	assert.ErrorIs(t, err, ErrUnknownExporter)
}

func TestInit_MeterFailureLeavesGlobalsUntouched(t *testing.T) {
	restoreGlobals(t)
	tpBefore := otel.GetTracerProvider()
	mpBefore := otel.GetMeterProvider()
	var buf bytes.Buffer

	_, err := Init(context.Background(), Config{
		TraceExporter:  ExporterStdout,
		MetricExporter: "statsd",
		Writer:         &buf,
	})
	require.ErrorIs(t, err, ErrUnknownExporter)

	assert.Equal(t, tpBefore, otel.GetTracerProvider())
	assert.Equal(t, mpBefore, otel.GetMeterProvider())
}

func TestInit_StdoutTraceExporter(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer

	shutdown, err := Init(context.Background(), Config{
		ServiceName:   "triage-test",
		TraceExporter: ExporterStdout,
		Writer:        &buf,
	})
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "TriageEngine.Assess")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "TriageEngine.Assess")
	assert.Contains(t, buf.String(), "triage-test")
}

func TestInit_PrometheusBridge(t *testing.T) {
	restoreGlobals(t)
	reg := prometheus.NewRegistry()

	shutdown, err := Init(context.Background(), Config{
		MetricExporter: ExporterPrometheus,
		Registerer:     reg,
	})
	require.NoError(t, err)
	defer shutdown(context.Background())

	counter, err := otel.Meter("test").Int64Counter("triage_bridge_events")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	var buf bytes.Buffer
	require.NoError(t, DumpMetrics(&buf, reg, "triage_bridge"))
	assert.Contains(t, buf.String(), "triage_bridge_events")
}

func TestInit_StdoutMetricExporter(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer

	shutdown, err := Init(context.Background(), Config{
		MetricExporter: ExporterStdout,
		Writer:         &buf,
	})
	require.NoError(t, err)

	counter, err := otel.Meter("test").Int64Counter("triage_stdout_events")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "triage_stdout_events")
}

func TestDumpMetrics_PrefixFilter(t *testing.T) {
	reg := prometheus.NewRegistry()
	promauto.With(reg).NewCounter(prometheus.CounterOpts{Name: "triage_assessments_total", Help: "h"}).Add(2)
	promauto.With(reg).NewCounter(prometheus.CounterOpts{Name: "unrelated_total", Help: "h"}).Inc()

	var buf bytes.Buffer
	require.NoError(t, DumpMetrics(&buf, reg, "triage_"))

	assert.Contains(t, buf.String(), "triage_assessments_total 2")
	assert.NotContains(t, buf.String(), "unrelated_total")
}

func TestRecordError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	RecordError(span, errors.New("no rule fired"))
	RecordError(span, nil)
	RecordError(nil, errors.New("ignored"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "no rule fired", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestSetSpanOK(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	SetSpanOK(span)
	SetSpanOK(nil)
	span.End()

	assert.Equal(t, codes.Ok, recorder.Ended()[0].Status().Code)
}

func TestTraceIDAndLoggerWithTrace(t *testing.T) {
	traceID := trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10}
	spanID := trace.SpanID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	assert.Equal(t, traceID.String(), TraceID(ctx))
	assert.Empty(t, TraceID(context.Background()))

	exporter := logging.NewBufferedExporter()
	logger := logging.New(logging.Config{Quiet: true, Exporter: exporter})

	LoggerWithTrace(ctx, logger).Info("traced")
	LoggerWithTrace(context.Background(), logger).Info("untraced")

	entries := exporter.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, traceID.String(), entries[0].Attrs["trace_id"])
	assert.Equal(t, spanID.String(), entries[0].Attrs["span_id"])
	assert.NotContains(t, entries[1].Attrs, "trace_id")

	assert.NotNil(t, LoggerWithTrace(ctx, nil))
}
