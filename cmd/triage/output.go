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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AleutianAI/AleutianTriage/pkg/ux"
	"github.com/AleutianAI/AleutianTriage/pkg/validation"
	"github.com/AleutianAI/AleutianTriage/services/triage_engine"
)

// Exit codes.
const (
	ExitSuccess    = 0
	ExitInputError = 1
	ExitError      = 2
)

// isInputError reports whether err is the user's fault: a bad reading, a
// bad flag, or an aborted prompt.
func isInputError(err error) bool {
	return triage_engine.IsInputError(err) || errors.Is(err, ux.ErrPromptAborted)
}

// inputReason strips the generic sentinel text so the message reads
// "Invalid input: <reason>".
func inputReason(err error) string {
	return strings.TrimPrefix(err.Error(), validation.ErrInvalidInput.Error()+": ")
}

// report prints err and maps it to an exit code.
func (a *app) report(err error) int {
	if err == nil {
		return ExitSuccess
	}

	code, msg := ExitError, err.Error()
	if isInputError(err) {
		code, msg = ExitInputError, "Invalid input: "+inputReason(err)
	}

	if a.flags.jsonOut {
		outputJSONError(a.stdout, msg)
	} else {
		ux.Error(msg)
	}
	return code
}

func outputJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func outputJSONError(w io.Writer, msg string) {
	_ = outputJSON(w, map[string]any{
		"success": false,
		"error":   msg,
	})
}

// severity places category among the sets of output, 0 for the first
// declared set and 1 for the last.
func severity(v *triage_engine.OutputVariable, category string) float64 {
	if len(v.Sets) < 2 {
		return 0
	}
	for i, c := range v.Sets {
		if c.MembershipFunction().Name() == category {
			return float64(i) / float64(len(v.Sets)-1)
		}
	}
	return 0
}
