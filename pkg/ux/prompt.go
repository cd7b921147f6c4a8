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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AleutianAI/AleutianTriage/pkg/validation"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrPromptAborted is returned when the user ends input before a value
// was entered (Ctrl+C, Ctrl+D or a closed stdin).
var ErrPromptAborted = errors.New("prompt aborted")

// =============================================================================
// InputReader Interfaces
// =============================================================================

// InputReader abstracts line-oriented user input for testability.
//
// ReadLine returns the trimmed line, or io.EOF when input is exhausted.
type InputReader interface {
	ReadLine() (string, error)
}

// PromptingInputReader is implemented by readers that draw their own prompt.
// Callers check for it to avoid printing the prompt twice.
type PromptingInputReader interface {
	InputReader
	SetPrompt(prompt string)
}

// ReadNumber prompts for and parses one numeric reading.
//
// Parsing goes through validation.ParseReading, so NaN, Inf and non-numeric
// text are rejected with validation.ErrInvalidInput.
func ReadNumber(r InputReader, w io.Writer, prompt string) (float64, error) {
	if p, ok := r.(PromptingInputReader); ok {
		p.SetPrompt(prompt)
	} else if w != nil {
		fmt.Fprint(w, prompt)
	}

	line, err := r.ReadLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("%w: %s", ErrPromptAborted, strings.TrimSpace(prompt))
		}
		return 0, err
	}
	return validation.ParseReading(line)
}

// ValidateNumber is the validate func for numeric prompts.
func ValidateNumber(s string) error {
	_, err := validation.ParseReading(s)
	return err
}

// =============================================================================
// StdinReader
// =============================================================================

// StdinReader reads newline-terminated lines from an io.Reader.
//
// Not safe for concurrent use.
type StdinReader struct {
	reader *bufio.Reader
}

// NewStdinReader wraps r in a buffered line reader.
func NewStdinReader(r io.Reader) *StdinReader {
	return &StdinReader{reader: bufio.NewReader(r)}
}

// ReadLine reads up to the next newline. A final line without a trailing
// newline is returned before io.EOF.
func (r *StdinReader) ReadLine() (string, error) {
	line, err := r.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// =============================================================================
// InteractiveInputReader
// =============================================================================

// InteractiveInputReader reads a line with a bubbletea text input, keeping
// the user on the prompt until validate accepts the value. Up and Down walk
// previously entered values.
type InteractiveInputReader struct {
	validate   func(string) error
	history    []string
	maxHistory int
	prompt     string
}

// NewInteractiveInputReader creates a terminal reader. validate may be nil.
func NewInteractiveInputReader(validate func(string) error) *InteractiveInputReader {
	return &InteractiveInputReader{
		validate:   validate,
		maxHistory: 50,
		prompt:     "> ",
	}
}

// SetPrompt sets the prompt drawn before the input field.
func (r *InteractiveInputReader) SetPrompt(prompt string) {
	r.prompt = prompt
}

// ReadLine runs the input program until Enter with a valid value, or until
// Ctrl+C / Ctrl+D, which yield io.EOF.
func (r *InteractiveInputReader) ReadLine() (string, error) {
	p := tea.NewProgram(newInputModel(r.prompt, r.validate, r.history), tea.WithOutput(os.Stderr))
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	result, ok := finalModel.(inputModel)
	if !ok {
		return "", fmt.Errorf("unexpected model type from bubbletea: %T", finalModel)
	}
	if result.cancelled {
		return "", io.EOF
	}

	input := strings.TrimSpace(result.textInput.Value())
	r.addToHistory(input)
	return input, nil
}

func (r *InteractiveInputReader) addToHistory(input string) {
	if input == "" {
		return
	}
	if len(r.history) > 0 && r.history[len(r.history)-1] == input {
		return
	}
	r.history = append(r.history, input)
	if len(r.history) > r.maxHistory {
		r.history = r.history[1:]
	}
}

type inputModel struct {
	textInput    textinput.Model
	validate     func(string) error
	history      []string
	historyIndex int
	currentInput string
	errMsg       string
	done         bool
	cancelled    bool
}

func newInputModel(prompt string, validate func(string) error, history []string) inputModel {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.CharLimit = 64
	ti.Width = 32
	ti.Focus()

	return inputModel{
		textInput:    ti,
		validate:     validate,
		history:      history,
		historyIndex: -1,
	}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			if m.validate != nil {
				if err := m.validate(strings.TrimSpace(m.textInput.Value())); err != nil {
					m.errMsg = err.Error()
					return m, nil
				}
			}
			m.errMsg = ""
			m.done = true
			return m, tea.Quit

		case tea.KeyCtrlC, tea.KeyCtrlD:
			m.cancelled = true
			m.done = true
			return m, tea.Quit

		case tea.KeyUp:
			if len(m.history) == 0 {
				return m, nil
			}
			if m.historyIndex == -1 {
				m.currentInput = m.textInput.Value()
				m.historyIndex = len(m.history) - 1
			} else if m.historyIndex > 0 {
				m.historyIndex--
			}
			m.textInput.SetValue(m.history[m.historyIndex])
			m.textInput.CursorEnd()
			return m, nil

		case tea.KeyDown:
			if m.historyIndex == -1 {
				return m, nil
			}
			if m.historyIndex < len(m.history)-1 {
				m.historyIndex++
				m.textInput.SetValue(m.history[m.historyIndex])
			} else {
				m.historyIndex = -1
				m.textInput.SetValue(m.currentInput)
			}
			m.textInput.CursorEnd()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done {
		return ""
	}
	if m.errMsg != "" {
		return m.textInput.View() + "\n" + Styles.Error.Render(m.errMsg)
	}
	return m.textInput.View()
}

// =============================================================================
// MockInputReader
// =============================================================================

// MockInputReader returns predetermined lines, then io.EOF.
type MockInputReader struct {
	inputs []string
	index  int
}

// NewMockInputReader creates a reader that yields inputs in order.
func NewMockInputReader(inputs ...string) *MockInputReader {
	return &MockInputReader{inputs: inputs}
}

// ReadLine returns the next scripted line.
func (r *MockInputReader) ReadLine() (string, error) {
	if r.index >= len(r.inputs) {
		return "", io.EOF
	}
	line := r.inputs[r.index]
	r.index++
	return strings.TrimSpace(line), nil
}
