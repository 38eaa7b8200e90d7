// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The openknob authors

package knob

import (
	"errors"
	"math"
	"testing"
)

// ============================================================
// Line classification
// ============================================================

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		line string
		want LineKind
	}{
		{"step update", "STEP:42", KindStep},
		{"negative step", "STEP:-7", KindStep},
		{"block start", "--- Current Knob Settings ---", KindBlockStart},
		{"block end", "-----------------------------", KindBlockEnd},
		{"setting line", "Name: Volume", KindOther},
		{"short dash run", "---------------------------", KindOther},
		{"long dash run", "------------------------------", KindOther},
		{"empty", "", KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.line); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

// ============================================================
// STEP parsing
// ============================================================

func TestParseStep(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    int
		wantErr bool
	}{
		{"positive", "STEP:128", 128, false},
		{"zero", "STEP:0", 0, false},
		{"negative", "STEP:-45", -45, false},
		{"trailing space", "STEP:7 ", 7, false},
		{"empty value", "STEP:", 0, true},
		{"non-numeric", "STEP:abc", 0, true},
		{"float", "STEP:1.5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStep(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStep(%q) err = %v, wantErr %v", tt.line, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseStep(%q) = %d, want %d", tt.line, got, tt.want)
			}
			if err != nil {
				var pe *ParseError
				if !errors.As(err, &pe) {
					t.Errorf("expected *ParseError, got %T", err)
				}
			}
		})
	}
}

// ============================================================
// Setting line parsing
// ============================================================

func TestParseSettingLine_Fields(t *testing.T) {
	var cfg Config

	lines := []string{
		"Name: Bounded 0-180",
		"Bounded: YES",
		"Min Angle (rad): 0.0",
		"Max Angle (rad): 3.14159",
		"Num Detents: 8",
		"Detent Strength (P): 2.5",
		"Steps/Revolution: 40",
	}
	for _, line := range lines {
		if err := ParseSettingLine(line, &cfg); err != nil {
			t.Fatalf("ParseSettingLine(%q) err = %v", line, err)
		}
	}

	if cfg.Name != "Bounded 0-180" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if !cfg.Bounded {
		t.Error("Bounded should be true")
	}
	if cfg.MinAngle != 0 || math.Abs(cfg.MaxAngle-3.14159) > 1e-12 {
		t.Errorf("angles = %v, %v", cfg.MinAngle, cfg.MaxAngle)
	}
	if cfg.NumDetents != 8 {
		t.Errorf("NumDetents = %d", cfg.NumDetents)
	}
	if cfg.DetentStrength != 2.5 {
		t.Errorf("DetentStrength = %v", cfg.DetentStrength)
	}
	if cfg.StepsPerRevolution != 40 {
		t.Errorf("StepsPerRevolution = %d", cfg.StepsPerRevolution)
	}
}

func TestParseSettingLine_BoundedLiteral(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"Bounded: YES", true},
		{"Bounded: NO", false},
		{"Bounded: yes", false}, // case-sensitive as received
		{"Bounded: Y", false},
		{"Bounded: ", false},
	}

	for _, tt := range tests {
		cfg := Config{Bounded: !tt.want} // start from the opposite
		if err := ParseSettingLine(tt.line, &cfg); err != nil {
			t.Fatalf("ParseSettingLine(%q) err = %v", tt.line, err)
		}
		if cfg.Bounded != tt.want {
			t.Errorf("ParseSettingLine(%q) bounded = %v, want %v", tt.line, cfg.Bounded, tt.want)
		}
	}
}

func TestParseSettingLine_Idempotent(t *testing.T) {
	var cfg Config
	line := "Num Detents: 8"

	if err := ParseSettingLine(line, &cfg); err != nil {
		t.Fatal(err)
	}
	if err := ParseSettingLine(line, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.NumDetents != 8 {
		t.Errorf("repeated parse accumulated: NumDetents = %d, want 8", cfg.NumDetents)
	}
}

func TestParseSettingLine_LastWriteWins(t *testing.T) {
	var cfg Config
	for _, line := range []string{"Num Detents: 8", "Num Detents: 3"} {
		if err := ParseSettingLine(line, &cfg); err != nil {
			t.Fatal(err)
		}
	}
	if cfg.NumDetents != 3 {
		t.Errorf("NumDetents = %d, want 3", cfg.NumDetents)
	}
}

func TestParseSettingLine_MalformedValueIsolated(t *testing.T) {
	cfg := Config{Name: "Volume", NumDetents: 8}

	err := ParseSettingLine("Num Detents: abc", &cfg)
	if err == nil {
		t.Fatal("expected error for non-numeric detent count")
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Field != "num detents" {
		t.Errorf("Field = %q", pe.Field)
	}

	// Previously parsed fields are untouched.
	if cfg.Name != "Volume" || cfg.NumDetents != 8 {
		t.Errorf("bad line altered snapshot: %+v", cfg)
	}

	// Subsequent lines keep parsing.
	if err := ParseSettingLine("Steps/Revolution: 100", &cfg); err != nil {
		t.Fatalf("parsing should continue after a bad line: %v", err)
	}
	if cfg.StepsPerRevolution != 100 {
		t.Errorf("StepsPerRevolution = %d, want 100", cfg.StepsPerRevolution)
	}
}

func TestParseSettingLine_UnrecognizedIgnored(t *testing.T) {
	cfg := Config{Name: "Switch"}
	for _, line := range []string{
		"Firmware: 2.1.0",
		"some informational text",
		"",
	} {
		if err := ParseSettingLine(line, &cfg); err != nil {
			t.Errorf("ParseSettingLine(%q) err = %v, want nil", line, err)
		}
	}
	if cfg.Name != "Switch" {
		t.Errorf("unrecognized lines altered snapshot: %+v", cfg)
	}
}

// ============================================================
// Block assembler
// ============================================================

func TestAssembler_VolumeBlock(t *testing.T) {
	a := NewAssembler()

	lines := []string{
		"--- Current Knob Settings ---",
		"Name: Volume",
		"Bounded: NO",
		"Steps/Revolution: 100",
	}
	for _, line := range lines {
		cfg, err := a.Feed(line)
		if err != nil {
			t.Fatalf("Feed(%q) err = %v", line, err)
		}
		if cfg != nil {
			t.Fatalf("Feed(%q) completed early", line)
		}
	}

	cfg, err := a.Feed("-----------------------------")
	if err != nil {
		t.Fatal(err)
	}
	if cfg == nil {
		t.Fatal("end marker should complete the block")
	}
	if cfg.StepsPerRevolution != 100 {
		t.Errorf("StepsPerRevolution = %d, want 100", cfg.StepsPerRevolution)
	}
	if cfg.Bounded {
		t.Error("Bounded should be false")
	}
	if VisualFor(*cfg) != VisualSlider {
		t.Error("volume mode should select the slider representation")
	}
	if a.Accumulating() {
		t.Error("assembler should return to idle after the end marker")
	}
}

func TestAssembler_EndWithoutStartNoOp(t *testing.T) {
	a := NewAssembler()
	cfg, err := a.Feed("-----------------------------")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != nil {
		t.Error("end marker without an open block should publish nothing")
	}
}

func TestAssembler_StraySettingIgnoredWhenIdle(t *testing.T) {
	a := NewAssembler()
	if _, err := a.Feed("Name: Stray"); err != nil {
		t.Fatal(err)
	}

	// Open and close an empty block: the stray name must not leak in.
	a.Feed("--- Current Knob Settings ---")
	cfg, err := a.Feed("-----------------------------")
	if err != nil {
		t.Fatal(err)
	}
	if cfg == nil {
		t.Fatal("expected completed block")
	}
	if cfg.Name != "" {
		t.Errorf("stray setting leaked into block: Name = %q", cfg.Name)
	}
}

func TestAssembler_RestartDiscardsPartial(t *testing.T) {
	a := NewAssembler()
	a.Feed("--- Current Knob Settings ---")
	a.Feed("Name: Abandoned")
	a.Feed("Num Detents: 9")

	// A new start marker fully discards the unfinished draft.
	a.Feed("--- Current Knob Settings ---")
	a.Feed("Name: Fresh")
	cfg, err := a.Feed("-----------------------------")
	if err != nil {
		t.Fatal(err)
	}
	if cfg == nil {
		t.Fatal("expected completed block")
	}
	if cfg.Name != "Fresh" || cfg.NumDetents != 0 {
		t.Errorf("partial draft leaked into new block: %+v", cfg)
	}
}

func TestAssembler_ResetDiscardsOpenBlock(t *testing.T) {
	a := NewAssembler()
	a.Feed("--- Current Knob Settings ---")
	a.Feed("Name: Dropped")

	a.Reset()
	if a.Accumulating() {
		t.Fatal("assembler still accumulating after Reset")
	}

	// The end marker of the interrupted block must not publish anything.
	cfg, err := a.Feed("-----------------------------")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != nil {
		t.Errorf("interrupted block published: %+v", cfg)
	}
}

func TestAssembler_MalformedLineDoesNotAbortBlock(t *testing.T) {
	a := NewAssembler()
	a.Feed("--- Current Knob Settings ---")
	a.Feed("Name: Detented")

	if _, err := a.Feed("Num Detents: abc"); err == nil {
		t.Fatal("expected parse error")
	}

	a.Feed("Steps/Revolution: 40")
	cfg, err := a.Feed("-----------------------------")
	if err != nil {
		t.Fatal(err)
	}
	if cfg == nil {
		t.Fatal("block should survive a malformed line")
	}
	if cfg.Name != "Detented" || cfg.StepsPerRevolution != 40 {
		t.Errorf("snapshot = %+v", cfg)
	}
}

func TestAssembler_StepsPerRevolutionDefaultsToZero(t *testing.T) {
	a := NewAssembler()
	a.Feed("--- Current Knob Settings ---")
	a.Feed("Name: Smooth")
	cfg, err := a.Feed("-----------------------------")
	if err != nil {
		t.Fatal(err)
	}
	if cfg == nil {
		t.Fatal("expected completed block")
	}
	if cfg.StepsPerRevolution != 0 {
		t.Errorf("StepsPerRevolution = %d, want 0", cfg.StepsPerRevolution)
	}

	// Downstream, the geometry engine applies the visual default of 12.
	frame := Compute(0, *cfg)
	if len(frame.Ticks) != defaultDialSteps {
		t.Errorf("ticks = %d, want %d", len(frame.Ticks), defaultDialSteps)
	}
}

func TestAssembler_BoundedScenarioBlock(t *testing.T) {
	a := NewAssembler()
	lines := []string{
		"--- Current Knob Settings ---",
		"Name: Bounded 0-180",
		"Bounded: YES",
		"Min Angle (rad): 0.0",
		"Max Angle (rad): 3.14159",
		"Num Detents: 4",
		"Detent Strength (P): 1.0",
		"Steps/Revolution: 40",
	}
	for _, line := range lines {
		if _, err := a.Feed(line); err != nil {
			t.Fatalf("Feed(%q) err = %v", line, err)
		}
	}
	cfg, err := a.Feed("-----------------------------")
	if err != nil {
		t.Fatal(err)
	}
	if cfg == nil {
		t.Fatal("expected completed block")
	}
	if VisualFor(*cfg) != VisualDial {
		t.Error("bounded mode should select the dial representation")
	}

	offset := -math.Pi/2 - (cfg.MinAngle+cfg.MaxAngle)/2
	frame := Compute(20, *cfg)
	physical := frame.Needle - offset
	if math.Abs(physical-1.5708) > 1e-4 {
		t.Errorf("physical angle = %v, want ~1.5708", physical)
	}
}

// ============================================================
// Config visuals
// ============================================================

func TestVisualFor(t *testing.T) {
	tests := []struct {
		name string
		want Visual
	}{
		{"Volume", VisualSlider},
		{"volume", VisualSlider},
		{"Master VOLUME knob", VisualSlider},
		{"Switch", VisualDial},
		{"", VisualDial},
	}

	for _, tt := range tests {
		if got := VisualFor(Config{Name: tt.name}); got != tt.want {
			t.Errorf("VisualFor(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
