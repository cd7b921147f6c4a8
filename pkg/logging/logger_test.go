// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Level Tests
// =============================================================================

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.level.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{" warn ", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"Error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// =============================================================================
// Logger Tests
// =============================================================================

func TestLogger_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Service: "triage", Output: &buf})

	logger.Info("model compiled", "rules", 27)
	logger.Debug("filtered out")

	out := buf.String()
	assert.Contains(t, out, "model compiled")
	assert.Contains(t, out, "rules=27")
	assert.Contains(t, out, "service=triage")
	assert.NotContains(t, out, "filtered out")
}

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelDebug, JSON: true, Output: &buf})

	logger.Debug("assessment", "urgency", 84.7)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "assessment", record["msg"])
	assert.Equal(t, "DEBUG", record["level"])
	assert.Equal(t, 84.7, record["urgency"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewBufferedExporter()
	logger := New(Config{Level: LevelWarn, Output: &buf, Exporter: exporter})

	logger.Debug("d")
	logger.Info("i")
	logger.Warn("w")
	logger.Error("e")

	assert.Equal(t, []string{"w", "e"}, exporter.Messages(LevelDebug))
	assert.NotContains(t, buf.String(), "msg=i")
	assert.Contains(t, buf.String(), "msg=w")
}

func TestLogger_QuietDiscardsConsole(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewBufferedExporter()
	logger := New(Config{Quiet: true, Output: &buf, Exporter: exporter})

	logger.Info("hidden")

	assert.Empty(t, buf.String())
	assert.Equal(t, []string{"hidden"}, exporter.Messages(LevelInfo))
}

func TestLogger_WithAddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewBufferedExporter()
	logger := New(Config{Output: &buf, Exporter: exporter})

	child := logger.With("assessment_id", "abc")
	child.Info("scored", "category", "Emergency")

	assert.Contains(t, buf.String(), "assessment_id=abc")
	entries := exporter.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0].Attrs["assessment_id"])
	assert.Equal(t, "Emergency", entries[0].Attrs["category"])
}

func TestLogger_FileOutput(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	logger := New(Config{Service: "triage", LogDir: dir, Output: &buf})

	logger.Info("to file", "rows", 3)
	require.NoError(t, logger.Close())

	path := filepath.Join(dir, "triage_"+time.Now().Format("2006-01-02")+".log")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &record))
	assert.Equal(t, "to file", record["msg"])
	assert.Equal(t, float64(3), record["rows"])
	assert.Contains(t, buf.String(), "to file", "console output continues alongside the file")
}

func TestLogger_UnwritableLogDirFallsBack(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	var buf bytes.Buffer
	logger := New(Config{LogDir: filepath.Join(blocker, "logs"), Output: &buf})
	logger.Info("still logged")

	assert.Contains(t, buf.String(), "still logged")
	assert.NoError(t, logger.Close())
}

type failingExporter struct {
	BufferedExporter
	flushErr error
	closeErr error
}

func (e *failingExporter) Flush(context.Context) error { return e.flushErr }
func (e *failingExporter) Close() error                { return e.closeErr }

func TestLogger_CloseReturnsFirstError(t *testing.T) {
	exporter := &failingExporter{flushErr: errors.New("flush boom"), closeErr: errors.New("close boom")}
	logger := New(Config{Quiet: true, Exporter: exporter})

	err := logger.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flush boom")

	assert.NoError(t, logger.Close(), "second Close is a no-op")
}

func TestLogger_ConcurrentUse(t *testing.T) {
	exporter := NewBufferedExporter()
	logger := New(Config{Quiet: true, Exporter: exporter})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			logger.With("worker", n).Info("row scored")
		}(i)
	}
	wg.Wait()

	assert.Len(t, exporter.Entries(), 16)
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("nothing")
	assert.NotNil(t, logger.Slog())
	assert.NoError(t, logger.Close())
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestMultiHandler_FansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}}
	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String("k", "v")}))

	logger.Info("info only in a")
	logger.Warn("warn in both")

	assert.Contains(t, a.String(), "info only in a")
	assert.NotContains(t, b.String(), "info only in a")
	assert.Contains(t, b.String(), "warn in both")
	assert.Equal(t, 2, strings.Count(a.String(), "k=v"))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".aleutian/logs"), expandPath("~/.aleutian/logs"))
	assert.Equal(t, "/var/log", expandPath("/var/log"))
	assert.Equal(t, "relative", expandPath("relative"))
}

func TestArgsToMap(t *testing.T) {
	got := argsToMap([]any{"a", 1, 2, "skipped", "b", "x", "dangling"})
	assert.Equal(t, map[string]any{"a": 1, "b": "x"}, got)
}

func TestBufferedExporter_EntriesReturnsCopy(t *testing.T) {
	e := NewBufferedExporter()
	require.NoError(t, e.Export(context.Background(), LogEntry{Message: "one"}))

	entries := e.Entries()
	entries[0].Message = "changed"
	assert.Equal(t, "one", e.Entries()[0].Message)
}
