// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The openknob authors

package knob

import (
	"fmt"
	"strconv"
	"strings"
)

// Line protocol markers (exact match, as emitted by the firmware).
const (
	BlockStartMarker = "--- Current Knob Settings ---"
	BlockEndMarker   = "-----------------------------"
	StepPrefix       = "STEP:"
)

// LineKind classifies a raw protocol line.
type LineKind int

const (
	// KindStep is a "STEP:<int>" position update.
	KindStep LineKind = iota
	// KindBlockStart is the settings block start marker.
	KindBlockStart
	// KindBlockEnd is the settings block end marker.
	KindBlockEnd
	// KindOther is any other line; inside a block these are setting lines.
	KindOther
)

// Classify determines the kind of a raw line. Marker comparison is exact;
// near-miss dash lines fall through to KindOther and are ignored downstream.
func Classify(line string) LineKind {
	switch {
	case strings.HasPrefix(line, StepPrefix):
		return KindStep
	case line == BlockStartMarker:
		return KindBlockStart
	case line == BlockEndMarker:
		return KindBlockEnd
	default:
		return KindOther
	}
}

// ParseStep extracts the integer position from a "STEP:<int>" line.
func ParseStep(line string) (int, error) {
	value := strings.TrimPrefix(line, StepPrefix)
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, &ParseError{Field: "step", Line: line, Err: err}
	}
	return n, nil
}

// ParseError reports a malformed value in a single protocol line. It is
// scoped to one field: the snapshot keeps every previously parsed field and
// parsing continues with the next line.
type ParseError struct {
	Field string
	Line  string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %q: %v", e.Field, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Setting line labels, including the ": " separator.
const (
	labelName           = "Name: "
	labelBounded        = "Bounded: "
	labelMinAngle       = "Min Angle (rad): "
	labelMaxAngle       = "Max Angle (rad): "
	labelNumDetents     = "Num Detents: "
	labelDetentStrength = "Detent Strength (P): "
	labelStepsPerRev    = "Steps/Revolution: "
)

// ParseSettingLine applies one settings line to cfg. Recognized labels write
// their typed field (last write wins); unrecognized lines are ignored so new
// firmware revisions can add informational lines freely. A malformed value
// returns a *ParseError and leaves cfg untouched.
func ParseSettingLine(line string, cfg *Config) error {
	switch {
	case strings.HasPrefix(line, labelName):
		cfg.Name = strings.TrimSpace(strings.TrimPrefix(line, labelName))

	case strings.HasPrefix(line, labelBounded):
		// The firmware emits exactly YES or NO; anything else means false.
		cfg.Bounded = strings.TrimSpace(strings.TrimPrefix(line, labelBounded)) == "YES"

	case strings.HasPrefix(line, labelMinAngle):
		v, err := parseFloatField("min angle", line, labelMinAngle)
		if err != nil {
			return err
		}
		cfg.MinAngle = v

	case strings.HasPrefix(line, labelMaxAngle):
		v, err := parseFloatField("max angle", line, labelMaxAngle)
		if err != nil {
			return err
		}
		cfg.MaxAngle = v

	case strings.HasPrefix(line, labelNumDetents):
		v, err := parseIntField("num detents", line, labelNumDetents)
		if err != nil {
			return err
		}
		cfg.NumDetents = v

	case strings.HasPrefix(line, labelDetentStrength):
		v, err := parseFloatField("detent strength", line, labelDetentStrength)
		if err != nil {
			return err
		}
		cfg.DetentStrength = v

	case strings.HasPrefix(line, labelStepsPerRev):
		v, err := parseIntField("steps/revolution", line, labelStepsPerRev)
		if err != nil {
			return err
		}
		cfg.StepsPerRevolution = v
	}
	return nil
}

func parseIntField(field, line, label string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, label)))
	if err != nil {
		return 0, &ParseError{Field: field, Line: line, Err: err}
	}
	return v, nil
}

func parseFloatField(field, line, label string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, label)), 64)
	if err != nil {
		return 0, &ParseError{Field: field, Line: line, Err: err}
	}
	return v, nil
}

// Assembler states
const (
	asmIdle = iota
	asmAccumulating
)

// Assembler is the settings block state machine. It accepts marker and
// setting lines and produces one complete Config per well-bracketed block.
//
// Transition table:
//
//	idle         + start   -> accumulating (fresh draft)
//	idle         + end     -> idle (no-op)
//	idle         + setting -> idle (stray line, ignored)
//	accumulating + start   -> accumulating (previous draft discarded)
//	accumulating + end     -> idle (draft published)
//	accumulating + setting -> accumulating (field applied)
//
// A draft that never reaches its end marker is silently discarded; the
// firmware makes no block-completion guarantee.
type Assembler struct {
	state int
	draft Config
}

// NewAssembler creates an assembler in the idle state.
func NewAssembler() *Assembler {
	return &Assembler{state: asmIdle}
}

// Accumulating reports whether a settings block is currently open.
func (a *Assembler) Accumulating() bool { return a.state == asmAccumulating }

// Reset discards any open draft and returns to the idle state. Used when
// the transport drops mid-block.
func (a *Assembler) Reset() {
	a.state = asmIdle
	a.draft = Config{}
}

// Feed processes one non-STEP line. It returns the completed snapshot when
// line is the end marker of an open block, otherwise nil. The returned error
// is always a field-scoped *ParseError; the block itself stays usable.
func (a *Assembler) Feed(line string) (*Config, error) {
	switch Classify(line) {
	case KindBlockStart:
		a.draft = Config{}
		a.state = asmAccumulating
		return nil, nil

	case KindBlockEnd:
		if a.state != asmAccumulating {
			return nil, nil
		}
		a.state = asmIdle
		done := a.draft
		a.draft = Config{}
		return &done, nil

	default:
		if a.state != asmAccumulating {
			return nil, nil
		}
		return nil, ParseSettingLine(line, &a.draft)
	}
}
