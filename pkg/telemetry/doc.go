// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry initializes OpenTelemetry tracing and metrics for the
// triage CLI.
//
// Components use the OTel API directly (otel.Tracer, otel.Meter) and never
// depend on this package for instrumentation. This package only decides
// where the data goes.
//
// # Trace Exporters
//
//   - "stdout": pretty-printed spans on Config.Writer (the --trace flag)
//   - "otlp": OTLP/gRPC to Config.OTLPEndpoint
//   - "none": spans are dropped (default)
//
// # Metric Exporters
//
//   - "prometheus": OTel instruments are bridged into a Prometheus registry,
//     next to the promauto collectors the engine registers itself, so a
//     single DumpMetrics call prints both (the --metrics flag)
//   - "stdout": periodic JSON dumps on Config.Writer
//   - "none": instruments are no-ops (default)
//
// # Usage
//
//	shutdown, err := telemetry.Init(ctx, cfg)
//	if err != nil {
//	    return fmt.Errorf("init telemetry: %w", err)
//	}
//	defer shutdown(context.Background())
//
// # Thread Safety
//
// Init must be called once at startup. Everything else is safe for
// concurrent use.
package telemetry
