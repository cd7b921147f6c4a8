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
	"errors"

	"github.com/AleutianAI/AleutianTriage/pkg/fuzzy"
	"github.com/AleutianAI/AleutianTriage/pkg/validation"
)

var (
	// ErrInvalidModel is returned when a model document cannot be parsed,
	// fails validation, or references undeclared variables or sets.
	ErrInvalidModel = errors.New("invalid triage model")

	// ErrUnknownVariable is returned when a reading names a variable the
	// model does not declare.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrMissingReading is returned when a declared input has no reading.
	ErrMissingReading = errors.New("missing reading")
)

// ReadingError ties an input error to the model input it concerns.
//
// Error returns the wrapped message unchanged, which may include the
// reading. Key never does, so audit records and Warn logs use Key alone.
type ReadingError struct {
	Key string
	Err error
}

func (e *ReadingError) Error() string { return e.Err.Error() }

func (e *ReadingError) Unwrap() error { return e.Err }

// readingKey returns the input key carried by err, or "".
func readingKey(err error) string {
	var re *ReadingError
	if errors.As(err, &re) {
		return re.Key
	}
	return ""
}

// IsInputError reports whether err was caused by the caller's readings
// rather than by the model or the engine.
//
// The CLI uses it to choose between "Invalid input" (exit 1) and an
// internal failure (exit 2).
func IsInputError(err error) bool {
	return errors.Is(err, validation.ErrInvalidInput) ||
		errors.Is(err, fuzzy.ErrOutOfDomain) ||
		errors.Is(err, fuzzy.ErrInvalidInterval) ||
		errors.Is(err, ErrUnknownVariable) ||
		errors.Is(err, ErrMissingReading)
}
