// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The openknob authors

package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/openknob/knobctl/pkg/knob"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Display the raw line protocol in human-readable form",
	Long: `Continuously classify and display knob protocol lines as they arrive.

Each line is tagged with its classification (STEP, BLOCK_START, BLOCK_END,
SETTING) and completed settings blocks are echoed as a parsed snapshot.
A settings request is issued once after connecting.

Supports both serial and WebSocket connections.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	address, err := resolveAddress()
	if err != nil {
		return err
	}
	dial, err := newDialer(address)
	if err != nil {
		return err
	}
	conn, err := dial(address)
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("knobctl - Line Monitor\n")
	fmt.Printf("Connection: %s\n", describeAddress(address))
	fmt.Printf("Press Ctrl+C to exit\n\n")

	// Device reset grace period before the first command.
	time.Sleep(connectSettleDelay)
	if _, err := conn.Write([]byte(knob.RequestSettings() + "\n")); err != nil {
		return fmt.Errorf("settings request failed: %v", err)
	}

	decoder := knob.NewLineDecoder()
	assembler := knob.NewAssembler()
	buf := make([]byte, 128)

	for {
		n, err := conn.Read(buf)
		if err != nil {
			// For WebSocket connections, a read error usually means
			// the connection is permanently closed - exit gracefully
			if err == ErrConnectionClosed {
				log.Printf("Connection closed")
				return nil
			}
			log.Printf("Read error: %v", err)
			continue
		}
		if n == 0 {
			continue
		}

		for _, line := range decoder.Decode(buf[:n]) {
			kind := knob.Classify(line)
			timestamp := time.Now().Format("15:04:05.000")
			fmt.Printf("[%s] %-11s %s\n", timestamp, knob.FormatLineKind(kind), line)

			if kind == knob.KindStep {
				if _, err := knob.ParseStep(line); err != nil {
					fmt.Printf("  [ERROR] %v\n", err)
				}
				continue
			}

			cfg, err := assembler.Feed(line)
			if err != nil {
				fmt.Printf("  [ERROR] %v\n", err)
			}
			if cfg != nil {
				fmt.Printf("\n%s\n\n", knob.FormatConfig(*cfg))
			}
		}
	}
}
