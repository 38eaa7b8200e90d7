// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The openknob authors

package knob

import (
	"reflect"
	"strings"
	"testing"
)

func TestLineDecoder_BasicLines(t *testing.T) {
	d := NewLineDecoder()
	lines := d.Decode([]byte("STEP:1\nSTEP:2\n"))
	want := []string{"STEP:1", "STEP:2"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("Decode = %v, want %v", lines, want)
	}
}

func TestLineDecoder_CRLF(t *testing.T) {
	d := NewLineDecoder()
	lines := d.Decode([]byte("Name: Volume\r\nBounded: NO\r\n"))
	want := []string{"Name: Volume", "Bounded: NO"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("Decode = %v, want %v", lines, want)
	}
}

func TestLineDecoder_SplitAcrossReads(t *testing.T) {
	d := NewLineDecoder()

	if lines := d.Decode([]byte("STE")); lines != nil {
		t.Errorf("partial line should emit nothing, got %v", lines)
	}
	if lines := d.Decode([]byte("P:12")); lines != nil {
		t.Errorf("partial line should emit nothing, got %v", lines)
	}
	lines := d.Decode([]byte("3\nST"))
	if !reflect.DeepEqual(lines, []string{"STEP:123"}) {
		t.Errorf("Decode = %v, want [STEP:123]", lines)
	}
}

func TestLineDecoder_EmptyLines(t *testing.T) {
	d := NewLineDecoder()
	lines := d.Decode([]byte("\n\nSTEP:5\n"))
	want := []string{"", "", "STEP:5"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("Decode = %v, want %v", lines, want)
	}
}

func TestLineDecoder_OverlongLineDropped(t *testing.T) {
	d := NewLineDecoder()

	long := strings.Repeat("x", MaxLineLength+10) + "\n"
	if lines := d.Decode([]byte(long)); lines != nil {
		t.Errorf("overlong line should be dropped, got %d lines", len(lines))
	}

	// The stream recovers on the next line.
	lines := d.Decode([]byte("STEP:9\n"))
	if !reflect.DeepEqual(lines, []string{"STEP:9"}) {
		t.Errorf("Decode after overflow = %v, want [STEP:9]", lines)
	}
}

func TestLineDecoder_MaxLengthLineKept(t *testing.T) {
	d := NewLineDecoder()
	exact := strings.Repeat("y", MaxLineLength)
	lines := d.Decode([]byte(exact + "\n"))
	if len(lines) != 1 || lines[0] != exact {
		t.Errorf("line of exactly MaxLineLength should survive, got %d lines", len(lines))
	}
}

func TestLineDecoder_Reset(t *testing.T) {
	d := NewLineDecoder()
	d.Decode([]byte("partial"))
	d.Reset()
	lines := d.Decode([]byte("STEP:1\n"))
	if !reflect.DeepEqual(lines, []string{"STEP:1"}) {
		t.Errorf("Decode after reset = %v, want [STEP:1]", lines)
	}
}
