// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

// withPersonality sets level and captures both output streams for the test.
func withPersonality(t *testing.T, level PersonalityLevel) (out, errOut *bytes.Buffer) {
	t.Helper()
	orig := GetPersonality()
	SetPersonalityLevel(level)

	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	restore := SetOutput(out, errOut)
	t.Cleanup(func() {
		restore()
		SetPersonality(orig)
	})
	return out, errOut
}

// =============================================================================
// Icon.Render Tests
// =============================================================================

func TestIcon_Render(t *testing.T) {
	for _, icon := range []Icon{IconSuccess, IconWarning, IconError} {
		if !strings.Contains(icon.Render(), string(icon)) {
			t.Errorf("expected %q in rendered icon, got %q", icon, icon.Render())
		}
	}
	for _, icon := range []Icon{IconArrow, IconBullet} {
		if icon.Render() != string(icon) {
			t.Errorf("expected %q unstyled, got %q", icon, icon.Render())
		}
	}
}

// =============================================================================
// Print Helper Tests
// =============================================================================

func TestTitle_MachineMode(t *testing.T) {
	out, _ := withPersonality(t, PersonalityMachine)

	Title("Patient Urgency")

	if out.String() != "" {
		t.Errorf("expected no output in machine mode, got %q", out.String())
	}
}

func TestTitle_FullMode(t *testing.T) {
	out, _ := withPersonality(t, PersonalityFull)

	Title("Patient Urgency")

	if !strings.Contains(out.String(), "Patient Urgency") {
		t.Errorf("expected title in output, got %q", out.String())
	}
}

func TestSuccess_Levels(t *testing.T) {
	tests := []struct {
		level PersonalityLevel
		want  string
	}{
		{PersonalityMachine, "OK: model verified\n"},
		{PersonalityMinimal, "model verified"},
		{PersonalityFull, "model verified"},
	}
	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			out, _ := withPersonality(t, tt.level)
			Success("model verified")
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("expected %q in %q", tt.want, out.String())
			}
		})
	}
}

func TestWarningAndError_GoToStderr(t *testing.T) {
	out, errOut := withPersonality(t, PersonalityMachine)

	Warning("coverage gap")
	Error("bad reading")

	if out.Len() != 0 {
		t.Errorf("expected nothing on stdout, got %q", out.String())
	}
	want := "WARN: coverage gap\nERROR: bad reading\n"
	if errOut.String() != want {
		t.Errorf("expected %q, got %q", want, errOut.String())
	}
}

func TestInfoAndMuted(t *testing.T) {
	out, _ := withPersonality(t, PersonalityMachine)

	Info("27 rules")
	Muted("hidden in machine mode")

	if out.String() != "27 rules\n" {
		t.Errorf("unexpected machine output %q", out.String())
	}

	out, _ = withPersonality(t, PersonalityFull)
	Muted("shown")
	if !strings.Contains(out.String(), "shown") {
		t.Errorf("expected muted text, got %q", out.String())
	}
}

func TestBox(t *testing.T) {
	out, _ := withPersonality(t, PersonalityMachine)
	Box("Model", "patient-urgency@1.0.0")
	if out.String() != "Model: patient-urgency@1.0.0\n" {
		t.Errorf("unexpected machine box %q", out.String())
	}

	out, _ = withPersonality(t, PersonalityFull)
	Box("Model", "patient-urgency@1.0.0")
	if !strings.Contains(out.String(), "patient-urgency@1.0.0") {
		t.Errorf("expected content in box, got %q", out.String())
	}
}

func TestKeyValue(t *testing.T) {
	out, _ := withPersonality(t, PersonalityMachine)
	KeyValue("Hash", "sha256:abc")
	if out.String() != "Hash: sha256:abc\n" {
		t.Errorf("unexpected output %q", out.String())
	}

	out, _ = withPersonality(t, PersonalityFull)
	KeyValue("Hash", "sha256:abc")
	if !strings.Contains(out.String(), "Hash:") || !strings.Contains(out.String(), "sha256:abc") {
		t.Errorf("unexpected output %q", out.String())
	}
}

// =============================================================================
// Score Tests
// =============================================================================

func TestScore_MachineMode(t *testing.T) {
	out, _ := withPersonality(t, PersonalityMachine)

	Score("Defuzzified Patient Urgency", 84.7034, "Emergency", 1)

	want := "Defuzzified Patient Urgency: 84.70\nCategory: Emergency\n"
	if out.String() != want {
		t.Errorf("expected %q, got %q", want, out.String())
	}
}

func TestScore_FullModeKeepsNumericLine(t *testing.T) {
	out, _ := withPersonality(t, PersonalityFull)

	Score("Defuzzified Patient Urgency", 20.161, "Standard", 0)

	if !strings.Contains(out.String(), "Defuzzified Patient Urgency: ") {
		t.Errorf("missing label in %q", out.String())
	}
	if !strings.Contains(out.String(), "20.16") || !strings.Contains(out.String(), "Standard") {
		t.Errorf("missing value or category in %q", out.String())
	}
}

func TestScore_NoCategory(t *testing.T) {
	out, _ := withPersonality(t, PersonalityMachine)

	Score("Midpoint", 52.85, "", 0)

	if out.String() != "Midpoint: 52.85\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestSeverityStyle(t *testing.T) {
	tests := []struct {
		severity float64
		want     lipgloss.TerminalColor
	}{
		{0, ColorSuccess},
		{0.5, ColorWarning},
		{1, ColorError},
	}
	for _, tt := range tests {
		got := SeverityStyle(tt.severity).GetForeground()
		if got != tt.want {
			t.Errorf("severity %v: expected %v, got %v", tt.severity, tt.want, got)
		}
	}
}

// =============================================================================
// DegreeBar Tests
// =============================================================================

func TestDegreeBar(t *testing.T) {
	withPersonality(t, PersonalityFull)

	bar := DegreeBar(0.5, 10)
	if strings.Count(bar, "█") != 5 || strings.Count(bar, "░") != 5 {
		t.Errorf("expected half-filled bar, got %q", bar)
	}
	if !strings.HasSuffix(bar, " 0.50") {
		t.Errorf("expected degree suffix, got %q", bar)
	}

	full := DegreeBar(1.7, 4)
	if strings.Count(full, "█") != 4 || !strings.HasSuffix(full, " 1.00") {
		t.Errorf("expected clamped full bar, got %q", full)
	}

	empty := DegreeBar(-1, 4)
	if strings.Count(empty, "░") != 4 {
		t.Errorf("expected empty bar, got %q", empty)
	}
}

func TestDegreeBar_MachineMode(t *testing.T) {
	withPersonality(t, PersonalityMachine)

	if got := DegreeBar(0.8, 10); got != "0.80" {
		t.Errorf("expected plain degree, got %q", got)
	}
}

func TestRepeatChar(t *testing.T) {
	if repeatChar('x', 0) != "" || repeatChar('x', -2) != "" {
		t.Error("expected empty string for non-positive counts")
	}
	if repeatChar('█', 3) != "███" {
		t.Errorf("unexpected %q", repeatChar('█', 3))
	}
}
