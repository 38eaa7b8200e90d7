// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The openknob authors

// Package knob implements the smart-knob serial line protocol and the dial
// geometry derived from it.
//
// The firmware reports two kinds of lines: single-line position updates
// ("STEP:<int>") and multi-line settings blocks bracketed by fixed marker
// lines. This package provides line framing, classification, the settings
// block assembler, command string builders, and the pure geometry engine
// that maps a step position plus a mode configuration onto needle/arc/tick
// angles for rendering.
package knob

import "strings"

// Config is one complete knob mode configuration as reported by the
// firmware in a settings block. The zero value is the empty snapshot a
// block-start marker resets to.
type Config struct {
	// Name is the firmware's identifier for the active mode.
	Name string

	// Bounded restricts rotation to the [MinAngle, MaxAngle] range.
	Bounded  bool
	MinAngle float64 // radians, meaningful only when Bounded
	MaxAngle float64 // radians, meaningful only when Bounded

	// NumDetents is the count of detent positions inside the bounded range.
	NumDetents int

	// DetentStrength is the firmware's haptic gain parameter (display only).
	DetentStrength float64

	// StepsPerRevolution normalizes a raw step count: the divisor of the
	// bounded range when Bounded, the wrap modulus otherwise. Zero when the
	// firmware never reported it.
	StepsPerRevolution int
}

// Visual selects which representation a configuration is rendered with.
type Visual int

const (
	// VisualDial is the default polar dial with needle, ticks and arc.
	VisualDial Visual = iota
	// VisualSlider is a linear gauge, used for volume-style modes.
	VisualSlider
)

// VisualFor returns the representation for cfg. Modes whose name contains
// the substring "volume" (case-insensitive) render as a linear slider.
func VisualFor(cfg Config) Visual {
	if strings.Contains(strings.ToLower(cfg.Name), "volume") {
		return VisualSlider
	}
	return VisualDial
}
