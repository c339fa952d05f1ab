// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/essentia/pkg/essentia"
)

var (
	zoneOn      bool
	zoneOff     bool
	zoneSource  int
	zoneGroup   int
	zoneVolume  float64
	zoneBass    int
	zoneTreble  int
	zoneMute    bool
	zoneUnmute  bool
	zoneShow    bool
	zoneTimeout int
)

var zoneCmd = &cobra.Command{
	Use:   "zone ID",
	Short: "Set and show the state of one zone",
	Long: `Send commands to one zone (1-6), then optionally read back its state.

Commands are sent in a fixed order: power, source, group, volume, bass,
treble, mute. Out-of-range values are rejected before anything is sent.

Examples:
  essentia zone 2 --on --source 3 --volume -35
  essentia zone 5 --mute
  essentia zone 1 --show`,
	Args: cobra.ExactArgs(1),
	RunE: runZone,
}

func init() {
	rootCmd.AddCommand(zoneCmd)
	f := zoneCmd.Flags()
	f.BoolVar(&zoneOn, "on", false, "Power the zone on")
	f.BoolVar(&zoneOff, "off", false, "Power the zone off")
	f.IntVar(&zoneSource, "source", 0, "Select input (1-6)")
	f.IntVar(&zoneGroup, "group", 0, "Set group (1-6)")
	f.Float64Var(&zoneVolume, "volume", 0, "Set volume in dB (-78 to 0)")
	f.IntVar(&zoneBass, "bass", 0, "Set bass (-8 to 8)")
	f.IntVar(&zoneTreble, "treble", 0, "Set treble (-8 to 8)")
	f.BoolVar(&zoneMute, "mute", false, "Mute the zone")
	f.BoolVar(&zoneUnmute, "unmute", false, "Unmute the zone")
	f.BoolVar(&zoneShow, "show", false, "Read back and print the zone state")
	f.IntVar(&zoneTimeout, "timeout", 3, "Seconds to wait for the state read back")
	zoneCmd.MarkFlagsMutuallyExclusive("on", "off")
	zoneCmd.MarkFlagsMutuallyExclusive("mute", "unmute")
}

// parseZoneID parses a zone id argument
func parseZoneID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || !essentia.ValidZone(id) {
		return 0, fmt.Errorf("%w: %q (must be 1-%d)", essentia.ErrInvalidZone, arg, essentia.NumZones)
	}
	return id, nil
}

// queueZoneFlags queues the commands selected by the zone flags
func queueZoneFlags(cmd *cobra.Command, d *essentia.Driver, id int) error {
	f := cmd.Flags()
	var errs []error

	switch {
	case zoneOn:
		errs = append(errs, d.PowerOn(id))
	case zoneOff:
		errs = append(errs, d.PowerOff(id))
	}
	if f.Changed("source") {
		errs = append(errs, d.SetSource(id, float64(zoneSource)))
	}
	if f.Changed("group") {
		errs = append(errs, d.SetGroup(id, float64(zoneGroup)))
	}
	if f.Changed("volume") {
		errs = append(errs, d.SetVolume(id, zoneVolume))
	}
	if f.Changed("bass") {
		errs = append(errs, d.SetBass(id, float64(zoneBass)))
	}
	if f.Changed("treble") {
		errs = append(errs, d.SetTreble(id, float64(zoneTreble)))
	}
	switch {
	case zoneMute:
		errs = append(errs, d.MuteOn(id))
	case zoneUnmute:
		errs = append(errs, d.MuteOff(id))
	}

	return errors.Join(errs...)
}

func runZone(cmd *cobra.Command, args []string) error {
	id, err := parseZoneID(args[0])
	if err != nil {
		return err
	}

	updates := make(chan essentia.Report, 16)
	s, err := openSession(essentia.WithZoneUpdateHandler(func(z essentia.Zone, r essentia.Report) {
		if z.ID != id {
			return
		}
		select {
		case updates <- r:
		default:
		}
	}))
	if err != nil {
		return err
	}
	defer s.close()

	// Validate everything before sending anything
	if err := queueZoneFlags(cmd, s.driver, id); err != nil {
		return err
	}
	sent := s.driver.QueueLen()
	if sent == 0 && !zoneShow {
		return fmt.Errorf("nothing to do (see --help)")
	}

	ctx, cancel := signalContext()
	defer cancel()
	pollErr := s.start(ctx)

	if err := s.drain(ctx); err != nil {
		return err
	}
	if sent > 0 {
		fmt.Printf("Sent %d command(s) to zone %d\n", sent, id)
	}
	if !zoneShow {
		return nil
	}

	if err := s.driver.RefreshZone(id); err != nil {
		return err
	}
	var gotConnect, gotZone bool
	timeout := time.After(time.Duration(zoneTimeout) * time.Second)
	for !gotConnect || !gotZone {
		select {
		case r := <-updates:
			switch r.(type) {
			case essentia.ConnectReport:
				gotConnect = true
			case essentia.ZoneReport:
				gotZone = true
			}
		case <-timeout:
			return fmt.Errorf("zone %d did not answer within %ds", id, zoneTimeout)
		case err := <-pollErr:
			return err
		case <-ctx.Done():
			return nil
		}
	}

	fmt.Println(essentia.FormatZone(s.driver.Zone(id)))
	return nil
}
