// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The openknob authors
//
// knobctl - Smart Knob Serial Companion
//
// A terminal tool for visualizing and configuring haptic smart-knob
// controllers over a line-oriented serial link.

package main

import (
	"os"

	"github.com/openknob/knobctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
