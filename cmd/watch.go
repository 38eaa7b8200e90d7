// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The openknob authors

package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Interactive TUI for monitoring and configuring the knob",
	Long: `Watch the knob via an interactive terminal UI.

The display follows the knob position in real time, drawing a dial (or a
slider gauge for volume-style modes) from the current configuration.

Features:
  - Real-time position display with detent ticks and bounded-range arc
  - Haptic preset selection (keys 0-5)
  - Individual parameter editing (bounds, detents, strength, steps)
  - Event logging
  - Automatic reconnection on connection loss

The address of a successful connection is remembered, so a plain
'knobctl watch' reconnects to the last knob.

Supports both serial and WebSocket connections.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	address, err := resolveAddress()
	if err != nil {
		return err
	}
	dial, err := newDialer(address)
	if err != nil {
		return err
	}

	persist := func(addr string) {
		// A failed save only loses the convenience default for next time.
		_ = saveLastAddress(configPath, addr)
	}

	sess := newSession(address, dial, nil, persist)

	m := initialWatchModel(sess, describeAddress(address))
	p := tea.NewProgram(m, tea.WithAltScreen())
	sess.notify = p.Send

	go sess.run()

	if _, err := p.Run(); err != nil {
		sess.stop()
		return fmt.Errorf("TUI error: %v", err)
	}

	sess.stop()
	return nil
}
