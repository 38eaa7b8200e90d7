// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The openknob authors

package knob

import (
	"fmt"
	"strings"
)

// FormatConfig formats a configuration snapshot into a human-readable
// multi-line string for CLI output.
func FormatConfig(cfg Config) string {
	var b strings.Builder

	name := cfg.Name
	if name == "" {
		name = "(unknown)"
	}
	fmt.Fprintf(&b, "Mode:              %s\n", name)

	if cfg.Bounded {
		fmt.Fprintf(&b, "Bounded:           yes\n")
		fmt.Fprintf(&b, "Min angle:         %.3f rad\n", cfg.MinAngle)
		fmt.Fprintf(&b, "Max angle:         %.3f rad\n", cfg.MaxAngle)
	} else {
		fmt.Fprintf(&b, "Bounded:           no\n")
	}

	fmt.Fprintf(&b, "Detents:           %d\n", cfg.NumDetents)
	fmt.Fprintf(&b, "Detent strength:   %.1f\n", cfg.DetentStrength)
	fmt.Fprintf(&b, "Steps/revolution:  %d\n", cfg.StepsPerRevolution)
	fmt.Fprintf(&b, "Representation:    %s", FormatVisual(VisualFor(cfg)))

	return b.String()
}

// FormatVisual returns the human-readable name for a visual representation.
func FormatVisual(v Visual) string {
	switch v {
	case VisualSlider:
		return "slider"
	case VisualDial:
		return "dial"
	default:
		return "unknown"
	}
}

// FormatLineKind returns the human-readable name for a line classification.
func FormatLineKind(k LineKind) string {
	switch k {
	case KindStep:
		return "STEP"
	case KindBlockStart:
		return "BLOCK_START"
	case KindBlockEnd:
		return "BLOCK_END"
	case KindOther:
		return "SETTING"
	default:
		return "UNKNOWN"
	}
}
