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

var (
	pingTimeout int
	pingCount   int
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test the link by timing settings requests",
	Long: `Send settings requests to the knob and time the responses.

Each round sends the settings request command and waits for the start of
the settings block the firmware prints in reply. The round trip covers the
whole link, so this also verifies WebSocket bridge authentication when a
ws:// or wss:// address is used.

Exit codes:
  0 - All requests answered
  1 - One or more requests timed out
  2 - Connection error`,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().IntVar(&pingTimeout, "timeout", 5, "Timeout in seconds for each request")
	pingCmd.Flags().IntVar(&pingCount, "count", 3, "Number of requests to send")
}

func runPing(cmd *cobra.Command, args []string) error {
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
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("knobctl - Link Test\n")
	fmt.Printf("Connection: %s\n", describeAddress(address))
	fmt.Printf("Timeout: %d seconds per request\n", pingTimeout)
	fmt.Printf("Count: %d requests\n\n", pingCount)

	time.Sleep(connectSettleDelay)

	// One reader for the whole run; rounds consume block starts as they
	// arrive. Position updates and settings lines are ignored.
	blockChan := make(chan struct{}, 1)
	errChan := make(chan error, 1)
	go func() {
		decoder := knob.NewLineDecoder()
		buf := make([]byte, 128)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				errChan <- err
				return
			}
			for _, line := range decoder.Decode(buf[:n]) {
				if knob.Classify(line) == knob.KindBlockStart {
					select {
					case blockChan <- struct{}{}:
					default:
					}
				}
			}
		}
	}()

	successCount := 0
	failCount := 0

	for i := 1; i <= pingCount; i++ {
		fmt.Printf("Request %d/%d: ", i, pingCount)

		// Discard any block start left over from a previous round
		select {
		case <-blockChan:
		default:
		}

		startTime := time.Now()
		if _, err := conn.Write([]byte(knob.RequestSettings() + "\n")); err != nil {
			fmt.Printf("SEND FAILED: %v\n", err)
			failCount++
			continue
		}

		select {
		case <-blockChan:
			rtt := time.Since(startTime)
			fmt.Printf("settings block, rtt=%v\n", rtt.Round(time.Millisecond))
			successCount++

		case err := <-errChan:
			fmt.Printf("READ FAILED: %v\n", err)
			failCount++

		case <-time.After(time.Duration(pingTimeout) * time.Second):
			fmt.Printf("TIMEOUT (no response in %ds)\n", pingTimeout)
			failCount++
		}

		if i < pingCount {
			time.Sleep(100 * time.Millisecond)
		}
	}

	fmt.Printf("\n--- Request statistics ---\n")
	fmt.Printf("%d requests sent, %d answered, %.0f%% loss\n",
		pingCount, successCount, float64(failCount)/float64(pingCount)*100)

	if failCount > 0 {
		os.Exit(1)
	}
	return nil
}
