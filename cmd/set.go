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
	setPreset   int
	setBounded  bool
	setDetents  int
	setStrength float64
	setSteps    int
	setMinAngle float64
	setMaxAngle float64
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Apply a haptic preset or individual knob parameters",
	Long: `Connect to the knob and apply configuration changes.

A preset is applied first if requested, then any individual parameter
flags in a fixed order. Only flags that were explicitly provided are
sent to the device.`,
	Example: `  knobctl set --preset 3
  knobctl set --bounded --detents 8 --strength 2.5
  knobctl set --min-angle 0 --max-angle 3.14159`,
	RunE: runSet,
}

func init() {
	setCmd.Flags().IntVarP(&setPreset, "preset", "P", 0, fmt.Sprintf("Haptic preset to select (0-%d)", knob.NumPresets-1))
	setCmd.Flags().BoolVar(&setBounded, "bounded", false, "Enable or disable angle bounds")
	setCmd.Flags().IntVar(&setDetents, "detents", 0, "Number of detents")
	setCmd.Flags().Float64Var(&setStrength, "strength", 0, "Detent strength (proportional gain)")
	setCmd.Flags().IntVar(&setSteps, "steps", 0, "Steps per revolution")
	setCmd.Flags().Float64Var(&setMinAngle, "min-angle", 0, "Minimum angle in radians")
	setCmd.Flags().Float64Var(&setMaxAngle, "max-angle", 0, "Maximum angle in radians")
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	var commands []string
	if flags.Changed("preset") {
		command, err := knob.SelectPreset(setPreset)
		if err != nil {
			return err
		}
		commands = append(commands, command)
	}
	if flags.Changed("bounded") {
		commands = append(commands, knob.SetBounded(setBounded))
	}
	if flags.Changed("detents") {
		commands = append(commands, knob.SetNumDetents(setDetents))
	}
	if flags.Changed("strength") {
		commands = append(commands, knob.SetDetentStrength(setStrength))
	}
	if flags.Changed("steps") {
		commands = append(commands, knob.SetStepsPerRevolution(setSteps))
	}
	if flags.Changed("min-angle") {
		commands = append(commands, knob.SetMinAngle(setMinAngle))
	}
	if flags.Changed("max-angle") {
		commands = append(commands, knob.SetMaxAngle(setMaxAngle))
	}
	if len(commands) == 0 {
		return fmt.Errorf("no changes requested, see 'knobctl set --help'")
	}

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
	for _, command := range commands {
		if _, err := conn.Write([]byte(command + "\n")); err != nil {
			return fmt.Errorf("sending %q failed: %v", command, err)
		}
		fmt.Printf("Sent: %s\n", command)
		// Give the firmware a moment between consecutive commands
		time.Sleep(50 * time.Millisecond)
	}
	return nil
}
