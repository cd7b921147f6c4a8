// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package fuzzy

import "errors"

// Sentinel errors for model construction and evaluation.
//
// Errors returned by this package wrap one of these values with context
// (variable names, breakpoints); test with errors.Is.
var (
	// ErrInvalidShape is returned when membership function breakpoints are
	// not monotonically non-decreasing (or are NaN).
	ErrInvalidShape = errors.New("invalid membership function shape")

	// ErrOutOfDomain is returned when a crisp value lies outside the
	// declared [min,max] of its input variable.
	ErrOutOfDomain = errors.New("value outside variable domain")

	// ErrEmptyRule is returned when a rule is built without antecedents.
	ErrEmptyRule = errors.New("rule has no antecedents")

	// ErrNoConsequent is returned when a rule is built without consequents.
	ErrNoConsequent = errors.New("rule has no consequents")

	// ErrNoRuleFired is returned when an output's aggregated curve has zero
	// area, i.e. no rule concluding on it fired for the given inputs.
	// It signals a coverage gap in the rule table.
	ErrNoRuleFired = errors.New("no rule fired")

	// ErrInvalidDomain is returned when a domain has min >= max.
	ErrInvalidDomain = errors.New("invalid domain")

	// ErrInvalidDiscretization is returned when an output discretisation
	// level is below two sample points.
	ErrInvalidDiscretization = errors.New("invalid discretization level")

	// ErrMissingInput is returned when an Inputs snapshot has no value for
	// an input referenced by a rule.
	ErrMissingInput = errors.New("missing input value")

	// ErrInvalidInterval is returned when an interval has low > high.
	ErrInvalidInterval = errors.New("invalid interval")
)
