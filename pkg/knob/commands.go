// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The openknob authors

package knob

import (
	"fmt"
	"strconv"
)

// Command builder functions produce the firmware's single-character-prefixed
// command strings. The session layer appends the newline terminator when
// writing to the wire.

// RequestSettings builds the settings query command ("S"). The firmware
// answers with a full settings block.
func RequestSettings() string { return "S" }

// NumPresets is the number of firmware preset slots (M0..M5).
const NumPresets = 6

// PresetLabels names the firmware's preset slots, indexed by preset number.
var PresetLabels = [NumPresets]string{
	"Unbound Smooth",
	"Unbound 12 Detents",
	"Bounded 0-180 8 Detents",
	"Volume",
	"Fine Unbound",
	"Switch",
}

// SelectPreset builds the preset selection command ("M0".."M5").
func SelectPreset(n int) (string, error) {
	if n < 0 || n >= NumPresets {
		return "", fmt.Errorf("preset %d out of range [0,%d]", n, NumPresets-1)
	}
	return fmt.Sprintf("M%d", n), nil
}

// SetBounded builds the bounded-flag command ("b0" or "b1").
func SetBounded(bounded bool) string {
	if bounded {
		return "b1"
	}
	return "b0"
}

// SetNumDetents builds the detent count command ("d<int>").
func SetNumDetents(n int) string { return "d" + strconv.Itoa(n) }

// SetDetentStrength builds the detent strength command ("p<float>").
func SetDetentStrength(p float64) string { return "p" + formatFloat(p) }

// SetStepsPerRevolution builds the steps-per-revolution command ("r<int>").
func SetStepsPerRevolution(n int) string { return "r" + strconv.Itoa(n) }

// SetMinAngle builds the minimum-angle command ("n<float>", radians).
func SetMinAngle(rad float64) string { return "n" + formatFloat(rad) }

// SetMaxAngle builds the maximum-angle command ("x<float>", radians).
func SetMaxAngle(rad float64) string { return "x" + formatFloat(rad) }

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
