// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/essentia/pkg/essentia"
)

var (
	lineTestTimeout int
	lineTestPassive bool
)

var lineTestCmd = &cobra.Command{
	Use:   "line_test",
	Short: "Test connection by waiting for a valid zone report",
	Long: `Wait for a valid zone report on the connection until timeout.

A connect-state request for zone 1 is sent first unless --passive is given,
in which case the command only listens (for example while another
controller polls the amplifier). Lines that are not zone reports are
counted and ignored.

Exit codes:
  0 - Report received before timeout
  1 - Timeout reached without receiving a valid report
  2 - Connection error`,
	RunE: runLineTest,
}

func init() {
	rootCmd.AddCommand(lineTestCmd)
	lineTestCmd.Flags().IntVar(&lineTestTimeout, "timeout", 10, "Timeout in seconds to wait for a report")
	lineTestCmd.Flags().BoolVar(&lineTestPassive, "passive", false, "Only listen, do not send a request")
}

func runLineTest(cmd *cobra.Command, args []string) error {
	reports := make(chan essentia.Report, 1)
	s, err := openSession(essentia.WithZoneUpdateHandler(func(z essentia.Zone, r essentia.Report) {
		select {
		case reports <- r:
		default:
		}
	}))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer s.close()

	_, connInfo := s.getConn()
	fmt.Printf("Essentia - Line Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", lineTestTimeout)
	fmt.Printf("Waiting for valid zone report...\n\n")

	if !lineTestPassive {
		if err := s.driver.RequestConnectState(1); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext()
	defer cancel()
	pollErr := s.start(ctx)

	select {
	case r := <-reports:
		stats := s.driver.Statistics().Snapshot()
		if discarded := stats.Discarded(); discarded > 0 {
			fmt.Printf("(skipped %d other lines first)\n", discarded)
		}
		fmt.Printf("SUCCESS: Received valid report\n")
		fmt.Printf("  %s\n", essentia.FormatReport(r))
		os.Exit(0)

	case err := <-pollErr:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)

	case <-ctx.Done():
		os.Exit(1)

	case <-time.After(time.Duration(lineTestTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No valid report received within %d seconds\n", lineTestTimeout)
		os.Exit(1)
	}

	return nil
}
