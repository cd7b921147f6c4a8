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
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianTriage/cmd/triage/config"
	"github.com/AleutianAI/AleutianTriage/pkg/extensions"
	"github.com/AleutianAI/AleutianTriage/pkg/logging"
	"github.com/AleutianAI/AleutianTriage/pkg/telemetry"
	"github.com/AleutianAI/AleutianTriage/pkg/ux"
	"github.com/AleutianAI/AleutianTriage/pkg/validation"
	"github.com/AleutianAI/AleutianTriage/services/triage_engine"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath     string
	modelPath      string
	discretization int
	logLevel       string
	logDir         string
	logJSON        bool
	personality    string
	jsonOut        bool
	trace          bool
	metrics        bool
	auditLog       string
	operator       string
}

// app carries the state of one invocation from setup to report.
type app struct {
	flags globalFlags

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg    config.TriageConfig
	logger *logging.Logger
	engine *triage_engine.TriageEngine
	audit  *extensions.JSONLAuditLogger

	// Set when --metrics bridges otel instruments into Prometheus.
	registry *prometheus.Registry
	shutdown func(context.Context) error
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: logging.Discard(),
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "triage",
		Short: "Score patient urgency with a Mamdani fuzzy inference model",
		Long: `Triage fuzzifies clinical readings (age, headache severity, temperature),
fires the model's rule table and defuzzifies a 0-100 urgency score.

The embedded patient-urgency model is used unless --model or model.path in
~/.aleutian/triage.yaml names another model file.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", validation.ErrInvalidInput, err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "config file (default ~/.aleutian/triage.yaml)")
	pf.StringVar(&a.flags.modelPath, "model", "", "model YAML file (default: embedded patient-urgency model)")
	pf.IntVar(&a.flags.discretization, "discretization", 0, "output sample count override (0 keeps the model's value)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&a.flags.logDir, "log-dir", "", "also write JSON logs to a daily file in this directory")
	pf.BoolVar(&a.flags.logJSON, "log-json", false, "write console logs as JSON")
	pf.StringVar(&a.flags.personality, "personality", "", "output style: full, minimal, machine")
	pf.BoolVar(&a.flags.jsonOut, "json", false, "print results as JSON")
	pf.BoolVar(&a.flags.trace, "trace", false, "print OpenTelemetry spans to stderr on exit")
	pf.BoolVar(&a.flags.metrics, "metrics", false, "print triage metrics in Prometheus text format to stderr on exit")
	pf.StringVar(&a.flags.auditLog, "audit-log", "", "append one JSON line per assessment to this file")
	pf.StringVar(&a.flags.operator, "operator", "", "operator recorded in the audit log (default \"system\")")

	root.AddCommand(
		newAssessCmd(a),
		newIntervalCmd(a),
		newBatchCmd(a),
		newCurveCmd(a),
		newModelCmd(a),
	)
	return root
}

// =============================================================================
// Setup and teardown
// =============================================================================

// setup loads the config, then builds the logger, telemetry and engine.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg
	if err := a.applyPersonality(); err != nil {
		return err
	}

	levelName := a.flags.logLevel
	if levelName == "" {
		levelName = cfg.Logging.Level
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return fmt.Errorf("%w: --log-level: %w", validation.ErrInvalidInput, err)
	}
	logDir := a.flags.logDir
	if logDir == "" {
		logDir = cfg.Logging.Dir
	}
	a.logger = logging.New(logging.Config{
		Level:   level,
		LogDir:  logDir,
		Service: "triage",
		JSON:    a.flags.logJSON || cfg.Logging.JSON,
		Output:  a.stderr,
	})
	p := ux.GetPersonality()
	a.logger.Debug("output personality", "level", p.Level, "source", p.Source)

	if err := a.initTelemetry(cmd.Context()); err != nil {
		return err
	}

	if err := a.openAudit(); err != nil {
		return err
	}

	engine, err := a.loadEngine()
	if err != nil {
		return err
	}
	a.engine = engine
	return nil
}

func (a *app) loadConfig() (config.TriageConfig, error) {
	if a.flags.configPath != "" {
		return config.LoadFrom(a.flags.configPath)
	}
	path, err := config.DefaultPath()
	if err != nil {
		return config.TriageConfig{}, err
	}
	return config.LoadOrCreate(path, a.stderr)
}

// applyPersonality sets the output style for this run.
func (a *app) applyPersonality() error {
	stdout, _ := a.stdout.(*os.File)
	p, err := ux.ResolvePersonality(ux.PersonalityRequest{
		JSON:   a.flags.jsonOut,
		Flag:   a.flags.personality,
		Config: a.cfg.UI.Personality,
		Stdout: stdout,
	})
	if err != nil {
		return fmt.Errorf("%w: --personality: %w", validation.ErrInvalidInput, err)
	}
	ux.SetPersonality(p)
	return nil
}

func (a *app) initTelemetry(ctx context.Context) error {
	tcfg := a.cfg.Telemetry
	if a.flags.trace {
		tcfg.TraceExporter = telemetry.ExporterStdout
	}
	if a.flags.metrics {
		tcfg.MetricExporter = telemetry.ExporterPrometheus
		a.registry = prometheus.NewRegistry()
		tcfg.Registerer = a.registry
	}
	if isNone(tcfg.TraceExporter) && isNone(tcfg.MetricExporter) {
		return nil
	}
	tcfg.Writer = a.stderr

	shutdown, err := telemetry.Init(ctx, tcfg)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	a.shutdown = shutdown
	return nil
}

func isNone(exporter string) bool {
	return exporter == "" || exporter == telemetry.ExporterNone
}

func (a *app) openAudit() error {
	path := a.flags.auditLog
	if path == "" {
		path = a.cfg.Audit.Path
	}
	if path == "" {
		return nil
	}
	audit, err := extensions.OpenAuditLog(expandHome(path))
	if err != nil {
		return err
	}
	a.audit = audit
	return nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func (a *app) loadEngine() (*triage_engine.TriageEngine, error) {
	discretization := a.flags.discretization
	if discretization == 0 {
		discretization = a.cfg.Model.Discretization
	}
	opts := []triage_engine.Option{
		triage_engine.WithLogger(a.logger),
		triage_engine.WithDiscretization(discretization),
	}
	if a.audit != nil {
		operator := a.flags.operator
		if operator == "" {
			operator = a.cfg.Audit.Operator
		}
		opts = append(opts, triage_engine.WithAuditLogger(a.audit, operator))
	}

	path := a.flags.modelPath
	if path == "" {
		path = a.cfg.Model.Path
	}
	if path == "" {
		return triage_engine.NewTriageEngine(opts...)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the model file: %w", err)
	}
	return triage_engine.NewTriageEngineFromYAML(data, opts...)
}

// close dumps metrics, closes the audit log, flushes telemetry and closes
// the logger.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.flags.metrics {
		gatherers := prometheus.Gatherers{prometheus.DefaultGatherer}
		if a.registry != nil {
			gatherers = append(gatherers, a.registry)
		}
		if err := telemetry.DumpMetrics(a.stderr, gatherers, "triage_"); err != nil {
			a.logger.Warn("metrics dump failed", "error", err)
		}
	}
	if a.audit != nil {
		if err := a.audit.Close(); err != nil {
			a.logger.Warn("failed to close the audit log", "error", err)
		}
	}
	if a.shutdown != nil {
		if err := a.shutdown(ctx); err != nil {
			a.logger.Warn("telemetry shutdown failed", "error", err)
		}
	}
	if err := a.logger.Close(); err != nil {
		fmt.Fprintf(a.stderr, "failed to close the log: %v\n", err)
	}
}

// inputReader returns an interactive prompt on a terminal and a line
// reader over stdin otherwise.
func (a *app) inputReader() ux.InputReader {
	if f, ok := a.stdin.(*os.File); ok && ux.IsInteractive(f) {
		return ux.NewInteractiveInputReader(ux.ValidateNumber)
	}
	return ux.NewStdinReader(a.stdin)
}

// promptWriter is where prompts for a plain reader go. JSON output keeps
// stdout clean.
func (a *app) promptWriter() io.Writer {
	if a.flags.jsonOut {
		return a.stderr
	}
	return a.stdout
}

// inputArgs marks positional argument errors as input errors.
func inputArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return fmt.Errorf("%w: %w", validation.ErrInvalidInput, err)
		}
		return nil
	}
}
