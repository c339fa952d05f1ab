// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/essentia/pkg/essentia"
	"github.com/Thermoquad/essentia/pkg/transport"
)

var (
	monitorRefresh bool
	monitorRaw     bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Display amplifier reports in human-readable format",
	Long: `Continuously display every line the amplifier sends, together with its
decoded meaning.

Lines that are not zone reports, or that fail to decode, are shown with the
reason they were discarded. Use --refresh to request the state of every zone
at startup, and --raw to print only the received lines.

Supports both serial and WebSocket connections.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().BoolVar(&monitorRefresh, "refresh", false, "Request the state of every zone at startup")
	monitorCmd.Flags().BoolVar(&monitorRaw, "raw", false, "Print received lines without decoding")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	s, err := openSession(essentia.WithLineHandler(printMonitorLine))
	if err != nil {
		return err
	}
	defer s.close()

	_, connInfo := s.getConn()
	fmt.Printf("Essentia - Monitor\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	if monitorRefresh {
		s.driver.Refresh()
	}

	ctx, cancel := signalContext()
	defer cancel()

	err = s.poll(ctx)
	if errors.Is(err, transport.ErrClosed) {
		fmt.Printf("Connection closed\n")
		return nil
	}
	if err == nil {
		fmt.Println()
		fmt.Print(s.driver.Statistics().String())
	}
	return err
}

func printMonitorLine(line string, r essentia.Report, err error) {
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Printf("[%s] %q\n", timestamp, line)
	if monitorRaw {
		return
	}
	if err != nil {
		fmt.Printf("  discarded: %v\n", err)
		return
	}
	fmt.Printf("  %s\n", essentia.FormatReport(r))
}
