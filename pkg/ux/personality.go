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
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// PersonalityLevel defines the verbosity and richness of CLI output
type PersonalityLevel string

const (
	// PersonalityFull enables colors, icons, boxes and degree bars
	PersonalityFull PersonalityLevel = "full"

	// PersonalityMinimal uses icons and basic formatting only
	PersonalityMinimal PersonalityLevel = "minimal"

	// PersonalityMachine prints one fact per line: "Defuzzified Patient
	// Urgency: 84.70", "Category: Emergency". Scripts and batch pipelines
	// parse it.
	PersonalityMachine PersonalityLevel = "machine"
)

// PersonalitySource records what chose the level.
type PersonalitySource string

const (
	SourceDefault PersonalitySource = "default"
	SourceJSON    PersonalitySource = "json"
	SourceFlag    PersonalitySource = "flag"
	SourceConfig  PersonalitySource = "config"
	SourceEnv     PersonalitySource = "env"
	SourcePipe    PersonalitySource = "pipe"
	SourceTTY     PersonalitySource = "terminal"
)

// PersonalityEnv overrides terminal detection when set.
const PersonalityEnv = "ALEUTIAN_PERSONALITY"

// ErrUnknownPersonality is returned for a level name that is not recognized.
var ErrUnknownPersonality = errors.New("unknown personality")

// Personality holds the current UX personality configuration
type Personality struct {
	Level  PersonalityLevel
	Source PersonalitySource
}

// Machine reports whether output must stay parseable.
func (p Personality) Machine() bool { return p.Level == PersonalityMachine }

var (
	currentPersonality = DefaultPersonality()
	personalityMu      sync.RWMutex
)

// GetPersonality returns the current personality settings
func GetPersonality() Personality {
	personalityMu.RLock()
	defer personalityMu.RUnlock()
	return currentPersonality
}

// SetPersonality replaces the current personality settings
func SetPersonality(p Personality) {
	personalityMu.Lock()
	defer personalityMu.Unlock()
	currentPersonality = p
}

// SetPersonalityLevel updates the personality level
func SetPersonalityLevel(level PersonalityLevel) {
	personalityMu.Lock()
	defer personalityMu.Unlock()
	currentPersonality.Level = level
}

// LookupPersonalityLevel maps a level name or its abbreviation to a level.
func LookupPersonalityLevel(s string) (PersonalityLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full", "f":
		return PersonalityFull, true
	case "minimal", "min", "m":
		return PersonalityMinimal, true
	case "machine", "quiet", "q":
		return PersonalityMachine, true
	default:
		return "", false
	}
}

// ParsePersonalityLevel is LookupPersonalityLevel with full as the fallback.
func ParsePersonalityLevel(s string) PersonalityLevel {
	if level, ok := LookupPersonalityLevel(s); ok {
		return level
	}
	return PersonalityFull
}

// =============================================================================
// Resolution
// =============================================================================

// PersonalityRequest gathers the settings that pick an output level.
type PersonalityRequest struct {
	// JSON is set by --json. The document on stdout must not be interleaved
	// with styled text, so it forces machine output.
	JSON bool

	// Flag is the --personality value. An unknown name is an error.
	Flag string

	// Config is ui.personality from the config file, already validated.
	Config string

	// Stdout decides between full and machine output when nothing else does.
	Stdout *os.File
}

// ResolvePersonality picks the level in this order: --json, --personality,
// the config file, ALEUTIAN_PERSONALITY, then full on a terminal and machine
// when stdout is piped, e.g. into a file of assessments.
func ResolvePersonality(req PersonalityRequest) (Personality, error) {
	switch {
	case req.JSON:
		return Personality{Level: PersonalityMachine, Source: SourceJSON}, nil
	case req.Flag != "":
		level, ok := LookupPersonalityLevel(req.Flag)
		if !ok {
			return Personality{}, fmt.Errorf("%w: %q (want full, minimal or machine)", ErrUnknownPersonality, req.Flag)
		}
		return Personality{Level: level, Source: SourceFlag}, nil
	case req.Config != "":
		return Personality{Level: ParsePersonalityLevel(req.Config), Source: SourceConfig}, nil
	}
	if env := os.Getenv(PersonalityEnv); env != "" {
		return Personality{Level: ParsePersonalityLevel(env), Source: SourceEnv}, nil
	}
	if !IsTerminal(req.Stdout) {
		return Personality{Level: PersonalityMachine, Source: SourcePipe}, nil
	}
	return Personality{Level: PersonalityFull, Source: SourceTTY}, nil
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// IsInteractive reports whether readings should be prompted for with the
// interactive reader: in is a terminal and output is not machine-readable.
func IsInteractive(in *os.File) bool {
	return !GetPersonality().Machine() && IsTerminal(in)
}

// DefaultPersonality returns the default personality settings
func DefaultPersonality() Personality {
	return Personality{Level: PersonalityFull, Source: SourceDefault}
}
