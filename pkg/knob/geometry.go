// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The openknob authors

package knob

import "math"

// Visual-tick default when the firmware never reported a step count.
const defaultDialSteps = 12

// Tick rendering is suppressed above this count; the step count is surfaced
// as a label instead.
const maxVisualTicks = 72

// Tick is one tick mark on the dial face.
type Tick struct {
	Angle float64 // radians, screen angle (0 = 3 o'clock, -π/2 = 12 o'clock)
	Major bool    // rendered thicker
}

// ArcSpec describes the valid travel range of a bounded mode as degrees for
// an arc rendering primitive.
type ArcSpec struct {
	StartDeg  float64
	ExtentDeg float64
}

// Frame is the complete dial geometry for one (position, config) pair.
type Frame struct {
	// Needle is the needle's screen angle in radians. The midpoint of a
	// bounded range, or step zero of an unbounded dial, points to 12
	// o'clock (-π/2).
	Needle float64

	// Bounded mirrors the config; Arc is non-nil only when it is set.
	Bounded bool
	Arc     *ArcSpec

	Ticks []Tick

	// StepLabel carries the step count when there are too many steps to
	// draw individual ticks. Zero otherwise.
	StepLabel int
}

// Compute derives the dial geometry for a step position under cfg. It is a
// pure function: identical inputs always yield identical output.
func Compute(position int, cfg Config) Frame {
	if cfg.Bounded {
		return computeBounded(position, cfg)
	}
	return computeUnbounded(position, cfg)
}

func computeBounded(position int, cfg Config) Frame {
	total := float64(cfg.StepsPerRevolution)
	if total == 0 {
		total = 1
	}
	normalized := float64(position) / total
	normalized = math.Max(0, math.Min(1, normalized))

	span := cfg.MaxAngle - cfg.MinAngle
	if span <= 0 {
		span = 0.001
	}
	physical := cfg.MinAngle + normalized*span

	// Rotate the range midpoint to the top of the dial.
	offset := -math.Pi/2 - (cfg.MinAngle+cfg.MaxAngle)/2

	frame := Frame{
		Needle:  physical + offset,
		Bounded: true,
		Arc:     boundedArc(cfg, offset),
	}

	if cfg.NumDetents > 0 {
		spacing := span / float64(cfg.NumDetents)
		for i := 0; i <= cfg.NumDetents; i++ {
			major := i == 0 || i == cfg.NumDetents ||
				(cfg.NumDetents > 4 && i%(cfg.NumDetents/2) == 0)
			frame.Ticks = append(frame.Ticks, Tick{
				Angle: cfg.MinAngle + float64(i)*spacing + offset,
				Major: major,
			})
		}
	}
	return frame
}

func boundedArc(cfg Config, offset float64) *ArcSpec {
	start := -degrees(cfg.MaxAngle + offset)
	end := -degrees(cfg.MinAngle + offset)
	extent := end - start

	// Guards keep an arc primitive from degenerating: a full circle is
	// pulled just short of 360 and a near-zero extent is widened to 1.
	switch {
	case math.Abs(extent) >= 360:
		if extent < 0 {
			extent = -359.9
		} else {
			extent = 359.9
		}
	case math.Abs(extent) < 0.1:
		if extent < 0 {
			extent = -1
		} else {
			extent = 1
		}
	}
	return &ArcSpec{StartDeg: start, ExtentDeg: extent}
}

func computeUnbounded(position int, cfg Config) Frame {
	steps := cfg.StepsPerRevolution
	if steps <= 0 {
		steps = defaultDialSteps
	}

	effective := position % steps
	if effective < 0 {
		effective += steps
	}

	frame := Frame{
		Needle: float64(effective)/float64(steps)*2*math.Pi - math.Pi/2,
	}

	if steps > maxVisualTicks {
		frame.StepLabel = steps
		return frame
	}

	majorEvery := steps / 4
	if majorEvery < 1 {
		majorEvery = 1
	}
	for i := 0; i < steps; i++ {
		frame.Ticks = append(frame.Ticks, Tick{
			Angle: float64(i)/float64(steps)*2*math.Pi - math.Pi/2,
			Major: steps <= 16 || i%majorEvery == 0,
		})
	}
	return frame
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
