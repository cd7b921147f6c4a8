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
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/AleutianAI/AleutianTriage/pkg/validation"
	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// StdinReader Tests
// =============================================================================

func TestStdinReader_ReadLine(t *testing.T) {
	r := NewStdinReader(strings.NewReader("  40 \n\n37.5"))

	want := []string{"40", "", "37.5"}
	for _, w := range want {
		got, err := r.ReadLine()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != w {
			t.Errorf("expected %q, got %q", w, got)
		}
	}

	if _, err := r.ReadLine(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

// =============================================================================
// ReadNumber Tests
// =============================================================================

func TestReadNumber_WritesPromptForPlainReaders(t *testing.T) {
	var w bytes.Buffer
	r := NewMockInputReader("40")

	v, err := ReadNumber(r, &w, "Patient Age: ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 40 {
		t.Errorf("expected 40, got %v", v)
	}
	if w.String() != "Patient Age: " {
		t.Errorf("expected prompt to be written, got %q", w.String())
	}
}

type promptingReader struct {
	MockInputReader
	prompt string
}

func (r *promptingReader) SetPrompt(p string) { r.prompt = p }

func TestReadNumber_PromptingReaderDrawsItsOwnPrompt(t *testing.T) {
	var w bytes.Buffer
	r := &promptingReader{MockInputReader: *NewMockInputReader("5")}

	if _, err := ReadNumber(r, &w, "Headache Severity: "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Len() != 0 {
		t.Errorf("expected no prompt on writer, got %q", w.String())
	}
	if r.prompt != "Headache Severity: " {
		t.Errorf("expected prompt to be set, got %q", r.prompt)
	}
}

func TestReadNumber_Errors(t *testing.T) {
	_, err := ReadNumber(NewMockInputReader("warm"), nil, "Temperature: ")
	if !errors.Is(err, validation.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}

	_, err = ReadNumber(NewMockInputReader(), nil, "Temperature: ")
	if !errors.Is(err, ErrPromptAborted) {
		t.Errorf("expected ErrPromptAborted, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "Temperature:") {
		t.Errorf("expected prompt in error, got %q", err.Error())
	}
}

func TestValidateNumber(t *testing.T) {
	if err := ValidateNumber("36.6"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, bad := range []string{"", "abc", "NaN", "Inf"} {
		if err := ValidateNumber(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

// =============================================================================
// inputModel Tests
// =============================================================================

func typeText(m inputModel, s string) inputModel {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(inputModel)
}

func press(m inputModel, k tea.KeyType) (inputModel, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(inputModel), cmd
}

func TestInputModel_EnterRejectsInvalidValue(t *testing.T) {
	m := newInputModel("> ", ValidateNumber, nil)
	m = typeText(m, "abc")

	m, cmd := press(m, tea.KeyEnter)
	if m.done || cmd != nil {
		t.Fatal("invalid input should keep the prompt open")
	}
	if m.errMsg == "" || !strings.Contains(m.View(), m.errMsg) {
		t.Errorf("expected error in view, got %q", m.View())
	}
}

func TestInputModel_EnterAcceptsValidValue(t *testing.T) {
	m := newInputModel("> ", ValidateNumber, nil)
	m = typeText(m, "38.5")

	m, cmd := press(m, tea.KeyEnter)
	if !m.done || m.cancelled || cmd == nil {
		t.Fatal("valid input should finish the prompt")
	}
	if m.textInput.Value() != "38.5" {
		t.Errorf("expected value 38.5, got %q", m.textInput.Value())
	}
	if m.View() != "" {
		t.Errorf("finished model renders nothing, got %q", m.View())
	}
}

func TestInputModel_CtrlCancels(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyCtrlC, tea.KeyCtrlD} {
		m := newInputModel("> ", nil, nil)
		m, _ = press(m, k)
		if !m.cancelled || !m.done {
			t.Errorf("%v should cancel the prompt", k)
		}
	}
}

func TestInputModel_History(t *testing.T) {
	m := newInputModel("> ", nil, []string{"30", "40"})
	m = typeText(m, "5")

	m, _ = press(m, tea.KeyUp)
	if m.textInput.Value() != "40" {
		t.Errorf("expected most recent entry, got %q", m.textInput.Value())
	}
	m, _ = press(m, tea.KeyUp)
	m, _ = press(m, tea.KeyUp)
	if m.textInput.Value() != "30" {
		t.Errorf("expected oldest entry, got %q", m.textInput.Value())
	}
	m, _ = press(m, tea.KeyDown)
	m, _ = press(m, tea.KeyDown)
	if m.textInput.Value() != "5" {
		t.Errorf("expected typed input restored, got %q", m.textInput.Value())
	}
}

func TestInteractiveInputReader_History(t *testing.T) {
	r := NewInteractiveInputReader(nil)
	r.SetPrompt("Age: ")
	r.addToHistory("40")
	r.addToHistory("40")
	r.addToHistory("")
	r.addToHistory("70")

	if len(r.history) != 2 || r.history[1] != "70" {
		t.Errorf("unexpected history %v", r.history)
	}
	if r.prompt != "Age: " {
		t.Errorf("unexpected prompt %q", r.prompt)
	}
}

func TestMockInputReader(t *testing.T) {
	r := NewMockInputReader(" 1 ", "2")
	a, _ := r.ReadLine()
	b, _ := r.ReadLine()
	_, err := r.ReadLine()
	if a != "1" || b != "2" || !errors.Is(err, io.EOF) {
		t.Errorf("unexpected sequence %q %q %v", a, b, err)
	}
}
