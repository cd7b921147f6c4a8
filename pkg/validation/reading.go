// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides parsing and validation of user-provided values.
//
// Readings typed at a prompt, passed as --input flags or read from a batch
// file all go through this package before they reach the inference engine,
// so a malformed value is rejected with the same message everywhere.
package validation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidInput is wrapped by every parse failure in this package.
var ErrInvalidInput = errors.New("invalid input")

// ErrInvalidIdentifier is returned for malformed variable or model keys.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// identifierPattern matches model keys such as "age" or "body_temp".
// Lowercase letter first, then lowercase letters, digits or underscores.
// Max length: 32 characters.
var identifierPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,31}$`)

// IsIdentifier reports whether id is a valid model key.
func IsIdentifier(id string) bool {
	return identifierPattern.MatchString(id)
}

// ValidateIdentifier validates a variable key used in model files and on the
// command line.
//
// Valid keys:
//   - 1-32 characters
//   - Lowercase letters a-z, digits 0-9 and underscores
//   - Must start with a letter
//
// Example:
//
//	if err := validation.ValidateIdentifier(key); err != nil {
//	    return fmt.Errorf("input %d: %w", i, err)
//	}
func ValidateIdentifier(id string) error {
	if id == "" {
		return fmt.Errorf("%w: key cannot be empty", ErrInvalidIdentifier)
	}
	if !IsIdentifier(id) {
		return fmt.Errorf("%w: %q (must be 1-32 lowercase alphanumeric chars or underscores, starting with a letter)", ErrInvalidIdentifier, id)
	}
	return nil
}

// ParseReading parses a single crisp reading such as "37.5".
//
// Surrounding whitespace is ignored. NaN and infinities are rejected even
// though strconv accepts them, since no input domain can contain them.
func ParseReading(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidInput)
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidInput, trimmed)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not a finite number", ErrInvalidInput, trimmed)
	}
	return v, nil
}

// ParseRange parses "low:high" into its two bounds.
//
// A single value "v" is accepted as the degenerate range v:v. The bounds
// must satisfy low <= high.
func ParseRange(s string) (low, high float64, err error) {
	lo, hi, found := strings.Cut(s, ":")
	if !found {
		v, err := ParseReading(s)
		return v, v, err
	}
	if low, err = ParseReading(lo); err != nil {
		return 0, 0, fmt.Errorf("range minimum: %w", err)
	}
	if high, err = ParseReading(hi); err != nil {
		return 0, 0, fmt.Errorf("range maximum: %w", err)
	}
	if low > high {
		return 0, 0, fmt.Errorf("%w: minimum %g is greater than maximum %g", ErrInvalidInput, low, high)
	}
	return low, high, nil
}

// ParseAssignment splits "key=value" and validates the key.
//
// The value is returned untrimmed of inner content so the caller can parse
// it as a reading or a range.
func ParseAssignment(s string) (key, value string, err error) {
	k, v, found := strings.Cut(s, "=")
	if !found {
		return "", "", fmt.Errorf("%w: %q must have the form key=value", ErrInvalidInput, s)
	}
	k = strings.TrimSpace(k)
	if err := ValidateIdentifier(k); err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return k, strings.TrimSpace(v), nil
}
