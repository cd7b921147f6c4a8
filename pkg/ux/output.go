// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ux provides terminal output styling and prompting for the triage CLI.
package ux

import (
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Aleutian color palette - deep ocean teals and arctic waters
var (
	// Primary palette (brightest to darkest)
	ColorTealBright  = lipgloss.Color("#2CD7C7") // Bright teal - highlights, success
	ColorTealPrimary = lipgloss.Color("#20B9B4") // Primary teal - main brand color
	ColorTealDeep    = lipgloss.Color("#16858E") // Deep teal - borders, accents

	// Dark palette (for muted elements)
	ColorSlate = lipgloss.Color("#2C4A54") // Slate - muted text, borders

	// Semantic colors
	ColorSuccess = lipgloss.Color("#2CD7C7") // Bright teal for success
	ColorWarning = lipgloss.Color("#F4D03F") // Gold/amber for warnings
	ColorError   = lipgloss.Color("#E74C3C") // Red for errors
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	// Text styles
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style

	// Box styles
	Box      lipgloss.Style
	ErrorBox lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Subtitle:  lipgloss.NewStyle().Foreground(ColorTealPrimary),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorSlate),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorTealBright).Bold(true),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorTealDeep).
		Padding(0, 1),
	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(0, 1),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconArrow   Icon = "→"
	IconBullet  Icon = "•"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	default:
		return string(i)
	}
}

// =============================================================================
// Output Destinations
// =============================================================================

var (
	stdout   io.Writer = os.Stdout
	stderr   io.Writer = os.Stderr
	outputMu sync.RWMutex
)

// SetOutput redirects the print helpers. It returns a function restoring
// the previous writers, for tests.
func SetOutput(out, errOut io.Writer) (restore func()) {
	outputMu.Lock()
	defer outputMu.Unlock()
	prevOut, prevErr := stdout, stderr
	stdout, stderr = out, errOut
	return func() {
		outputMu.Lock()
		defer outputMu.Unlock()
		stdout, stderr = prevOut, prevErr
	}
}

func outWriter() io.Writer {
	outputMu.RLock()
	defer outputMu.RUnlock()
	return stdout
}

func errWriter() io.Writer {
	outputMu.RLock()
	defer outputMu.RUnlock()
	return stderr
}

// =============================================================================
// Print helpers that respect personality level
// =============================================================================

// Title prints a styled title
func Title(text string) {
	if GetPersonality().Machine() {
		return
	}
	fmt.Fprintln(outWriter(), Styles.Title.Render(text))
}

// Success prints a success message with checkmark
func Success(text string) {
	w := outWriter()
	switch GetPersonality().Level {
	case PersonalityMachine:
		fmt.Fprintf(w, "OK: %s\n", text)
	case PersonalityMinimal:
		fmt.Fprintf(w, "%s %s\n", IconSuccess.Render(), text)
	default:
		fmt.Fprintf(w, "%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
	}
}

// Warning prints a warning message to stderr
func Warning(text string) {
	w := errWriter()
	switch GetPersonality().Level {
	case PersonalityMachine:
		fmt.Fprintf(w, "WARN: %s\n", text)
	case PersonalityMinimal:
		fmt.Fprintf(w, "%s %s\n", IconWarning.Render(), text)
	default:
		fmt.Fprintf(w, "%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
	}
}

// Error prints an error message to stderr
func Error(text string) {
	w := errWriter()
	switch GetPersonality().Level {
	case PersonalityMachine:
		fmt.Fprintf(w, "ERROR: %s\n", text)
	case PersonalityMinimal:
		fmt.Fprintf(w, "%s %s\n", IconError.Render(), text)
	default:
		fmt.Fprintf(w, "%s %s\n", IconError.Render(), Styles.Error.Render(text))
	}
}

// Info prints an informational message
func Info(text string) {
	w := outWriter()
	switch GetPersonality().Level {
	case PersonalityMachine:
		fmt.Fprintln(w, text)
	default:
		fmt.Fprintf(w, "%s %s\n", Styles.Muted.Render("│"), text)
	}
}

// Muted prints muted/secondary text
func Muted(text string) {
	if GetPersonality().Machine() {
		return
	}
	fmt.Fprintln(outWriter(), Styles.Muted.Render(text))
}

// Box prints text in a rounded box
func Box(title, content string) {
	w := outWriter()
	if GetPersonality().Machine() {
		fmt.Fprintf(w, "%s: %s\n", title, content)
		return
	}
	boxStyle := Styles.Box.Width(60)
	titleLine := Styles.Title.Render(title)
	fmt.Fprintln(w, boxStyle.Render(titleLine+"\n"+content))
}

// KeyValue prints an aligned "key: value" line
func KeyValue(key, value string) {
	w := outWriter()
	if GetPersonality().Machine() {
		fmt.Fprintf(w, "%s: %s\n", key, value)
		return
	}
	fmt.Fprintf(w, "  %s %s\n", Styles.Muted.Render(fmt.Sprintf("%-22s", key+":")), value)
}

// =============================================================================
// Scores
// =============================================================================

// SeverityStyle colors a category by its position among the output's sets,
// 0 for the mildest and 1 for the most severe.
func SeverityStyle(severity float64) lipgloss.Style {
	switch {
	case severity < 1.0/3:
		return Styles.Success.Bold(true)
	case severity < 2.0/3:
		return Styles.Warning.Bold(true)
	default:
		return Styles.Error.Bold(true)
	}
}

// Score prints a defuzzified value as "label: 84.70" followed by its
// category. The numeric line is identical at every personality level.
func Score(label string, value float64, category string, severity float64) {
	w := outWriter()
	if GetPersonality().Machine() {
		fmt.Fprintf(w, "%s: %.2f\n", label, value)
		if category != "" {
			fmt.Fprintf(w, "Category: %s\n", category)
		}
		return
	}
	fmt.Fprintf(w, "%s: %s", label, Styles.Highlight.Render(fmt.Sprintf("%.2f", value)))
	if category != "" {
		fmt.Fprintf(w, "  %s %s", IconArrow.Render(), SeverityStyle(severity).Render(category))
	}
	fmt.Fprintln(w)
}

// DegreeBar renders a membership degree in [0,1] as a bar of width cells.
func DegreeBar(degree float64, width int) string {
	if GetPersonality().Machine() {
		return fmt.Sprintf("%.2f", degree)
	}
	degree = math.Max(0, math.Min(1, degree))
	filled := int(math.Round(degree * float64(width)))
	empty := width - filled

	bar := Styles.Success.Render(repeatChar('█', filled)) +
		Styles.Muted.Render(repeatChar('░', empty))

	return fmt.Sprintf("%s %.2f", bar, degree)
}

func repeatChar(c rune, n int) string {
	if n <= 0 {
		return ""
	}
	result := make([]rune, n)
	for i := range result {
		result[i] = c
	}
	return string(result)
}
