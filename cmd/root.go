// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The openknob authors

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket bridge flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Persisted settings file
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "knobctl",
	Short: "Smart knob serial companion",
	Long: `knobctl - A terminal companion for haptic smart-knob controllers.

Maintains a live session to a knob over its line-oriented serial protocol,
parses the firmware's settings blocks and STEP position updates, and
renders the resulting dial geometry in a TUI. Firmware parameters (presets,
bounds, detents) can be inspected and adjusted over the same link.

Connection modes:
  Serial:    --port /dev/ttyACM0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

When neither --port nor --url is given, the last successfully used address
is loaded from the settings file. For WebSocket authentication, the
password is read from the KNOBCTL_PASSWORD environment variable, or
prompted interactively if not set.`,
	Version: "1.2.0",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", defaultBaudRate, "Baud rate (serial only)")

	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().StringVar(&configPath, "config", DefaultSettingsPath, "Settings file (persisted last-used address)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
