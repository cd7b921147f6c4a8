// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package models bakes the default triage model into the binary.
//
// The CLI reports the SHA256 of these bytes (`triage model verify`) so an
// operator can confirm which rule table a given build scores with.
package models

import (
	_ "embed"
)

// UrgencyModel holds the raw bytes of 'urgency_model.yaml'.
//
// Usage:
//
//	engine, err := triage_engine.NewTriageEngineFromYAML(models.UrgencyModel)
//
//go:embed urgency_model.yaml
var UrgencyModel []byte
