// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/essentia/pkg/essentia"
)

var probeTimeout int

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check which zones answer state requests",
	Long: `Send a connect-state request to each zone and report which zones answer.

Useful for checking the cable and baud rate, and for finding out how many
zones a unit actually has populated.

Exit codes:
  0 - At least one zone answered
  1 - No zone answered before the timeout
  2 - Connection error`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().IntVar(&probeTimeout, "timeout", 3, "Timeout in seconds to wait for answers")
}

func runProbe(cmd *cobra.Command, args []string) error {
	var (
		mu       sync.Mutex
		answered = make(map[int]essentia.Zone)
	)
	s, err := openSession(essentia.WithZoneUpdateHandler(func(z essentia.Zone, r essentia.Report) {
		if _, ok := r.(essentia.ConnectReport); !ok {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if _, seen := answered[z.ID]; !seen {
			fmt.Printf("Zone %d answered: %s\n", z.ID, essentia.FormatReport(r))
		}
		answered[z.ID] = z
	}))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer s.close()

	_, connInfo := s.getConn()
	fmt.Printf("Essentia - Zone Probe\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n\n", probeTimeout)

	for id := 1; id <= essentia.NumZones; id++ {
		if err := s.driver.RequestConnectState(id); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext()
	defer cancel()
	pollErr := s.start(ctx)

	select {
	case err := <-pollErr:
		if err != nil {
			fmt.Fprintf(os.Stderr, "READ FAILED: %v\n", err)
			os.Exit(2)
		}
	case <-ctx.Done():
	case <-time.After(time.Duration(probeTimeout) * time.Second):
	}

	mu.Lock()
	count := len(answered)
	mu.Unlock()

	fmt.Printf("\n--- Probe summary ---\n")
	fmt.Printf("Zones answered: %d of %d\n", count, essentia.NumZones)
	stats := s.driver.Statistics().Snapshot()
	fmt.Printf("Lines received: %d (%d discarded)\n", stats.TotalLines, stats.Discarded())

	if count == 0 {
		fmt.Printf("No zones answered. Check cable, baud rate and amplifier power.\n")
		os.Exit(1)
	}

	return nil
}
