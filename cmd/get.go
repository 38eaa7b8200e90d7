// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The openknob authors

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/openknob/knobctl/pkg/knob"
)

var getTimeout int

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Request and print the current knob configuration",
	Long: `Connect to the knob, request the current settings, and print the
first complete settings block that arrives.

Exit codes:
  0 - snapshot received
  1 - connection error
  2 - timed out waiting for a settings block`,
	RunE: runGet,
}

func init() {
	getCmd.Flags().IntVarP(&getTimeout, "timeout", "t", 10, "Seconds to wait for a settings block")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
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
		fmt.Fprintf(os.Stderr, "Connection failed: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	time.Sleep(connectSettleDelay)
	if _, err := conn.Write([]byte(knob.RequestSettings() + "\n")); err != nil {
		fmt.Fprintf(os.Stderr, "Settings request failed: %v\n", err)
		os.Exit(1)
	}

	snapshotChan := make(chan knob.Config, 1)
	errChan := make(chan error, 1)

	go func() {
		decoder := knob.NewLineDecoder()
		assembler := knob.NewAssembler()
		buf := make([]byte, 128)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				errChan <- err
				return
			}
			for _, line := range decoder.Decode(buf[:n]) {
				if knob.Classify(line) == knob.KindStep {
					continue
				}
				cfg, err := assembler.Feed(line)
				if err != nil {
					continue
				}
				if cfg != nil {
					snapshotChan <- *cfg
					return
				}
			}
		}
	}()

	select {
	case cfg := <-snapshotChan:
		fmt.Println(knob.FormatConfig(cfg))
		return nil
	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(1)
	case <-time.After(time.Duration(getTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "Timed out after %d seconds waiting for a settings block\n", getTimeout)
		os.Exit(2)
	}
	return nil
}
