// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package triage_engine scores patient urgency with a fuzzy rule model.
//
// A model is data: a YAML document declaring input variables, output
// variables, their fuzzy sets and a rule table. Compile turns the document
// into pkg/fuzzy objects; TriageEngine wraps the compiled model with
// tracing, logging and metrics.
//
// # Model Documents
//
//	inputs:
//	  - key: temperature
//	    name: Patient Temperature
//	    domain: { min: 30, max: 45 }
//	    sets:
//	      - { name: LowTemp, shape: trapezoidal, points: [30, 30, 35.5, 36.3] }
//	rules:
//	  - when:
//	      - { variable: temperature, is: LowTemp }
//	      - { variable: headache, is: "*" }
//	    then:
//	      - { variable: urgency, is: Emergency }
//
// A "*" in a `when` clause expands the rule into one rule per set of that
// input. Expansion is a cartesian product with the first clause outermost,
// so rule indices in an Assessment are stable for a given document.
//
// # Audit
//
// WithAuditLogger sends one extensions.AuditEvent per Assess,
// AssessInterval and AssessBatch call, successful or not. Events carry the
// assessment ID, outputs and categories but never the readings.
//
// # Thread Safety
//
// A TriageEngine is immutable after construction. Assess, AssessInterval,
// AssessBatch and Curves may be called from any number of goroutines.
package triage_engine
