// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/essentia/pkg/essentia"
)

var allCmd = &cobra.Command{
	Use:   "all on|off|mute|unmute|refresh|volume DB",
	Short: "Send a command to every zone",
	Long: `Send the same command to all six zones, in ascending zone order.

Examples:
  essentia all off
  essentia all volume -40`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAll,
}

func init() {
	rootCmd.AddCommand(allCmd)
}

// queueAll queues the bulk command named by args
func queueAll(d *essentia.Driver, args []string) error {
	verb := args[0]
	if verb == "volume" {
		if len(args) != 2 {
			return fmt.Errorf("volume needs a level in dB")
		}
		v, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid volume %q: %w", args[1], err)
		}
		return d.SetAllVolume(v)
	}
	if len(args) != 1 {
		return fmt.Errorf("%s takes no argument", verb)
	}

	switch verb {
	case "on":
		d.SetAllOn()
	case "off":
		d.SetAllOff()
	case "mute":
		d.SetAllMute()
	case "unmute":
		d.SetAllUnmute()
	case "refresh":
		d.Refresh()
	default:
		return fmt.Errorf("unknown command %q", verb)
	}
	return nil
}

func runAll(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	if err := queueAll(s.driver, args); err != nil {
		return err
	}
	sent := s.driver.QueueLen()

	ctx, cancel := signalContext()
	defer cancel()
	s.start(ctx)

	if err := s.drain(ctx); err != nil {
		return err
	}

	fmt.Printf("Sent %d command(s)\n", sent)
	return nil
}
