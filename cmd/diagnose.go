// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/essentia/pkg/essentia"
)

var (
	diagShowAll       bool
	diagStatsInterval int
	diagPollEvery     int
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Detect and count lines that fail to decode",
	Long: `Track received lines with statistics and highlight the ones that are
discarded.

Discarded lines fall into three groups:
  - Other messages (not zone reports, e.g. command echoes)
  - Unknown zone report types
  - Malformed reports (missing fields, bad numbers, invalid zone)

By default only discarded lines are displayed. Use --show-all to display
decoded reports too. With --poll-every N the command also requests the
state of every zone each N seconds so there is traffic to analyse.

Periodic statistics summaries are printed at --stats-interval.`,
	RunE: runDiagnose,
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)
	diagnoseCmd.Flags().BoolVar(&diagShowAll, "show-all", false, "Show all lines (not just discarded ones)")
	diagnoseCmd.Flags().IntVar(&diagStatsInterval, "stats-interval", 10, "Statistics update interval (seconds)")
	diagnoseCmd.Flags().IntVar(&diagPollEvery, "poll-every", 0, "Request every zone's state each N seconds (0 = listen only)")
}

// printDiscardedLine prints a discarded line in highlighted format
func printDiscardedLine(line string, err error) {
	timestamp := time.Now().Format("15:04:05.000")
	label := "\033[1;31mMALFORMED:\033[0m"
	switch {
	case errors.Is(err, essentia.ErrNotZoneMessage):
		label = "\033[1;33mOTHER:\033[0m"
	case errors.Is(err, essentia.ErrUnknownReport):
		label = "\033[1;33mUNKNOWN REPORT:\033[0m"
	}
	fmt.Printf("[%s] %s %q\n", timestamp, label, line)
	fmt.Printf("  %v\n\n", err)
}

func printDiagnoseLine(line string, r essentia.Report, err error) {
	if err != nil {
		printDiscardedLine(line, err)
		return
	}
	if diagShowAll {
		timestamp := time.Now().Format("15:04:05.000")
		fmt.Printf("[%s] %s\n", timestamp, essentia.FormatReport(r))
	}
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	if diagStatsInterval <= 0 {
		return fmt.Errorf("--stats-interval must be positive")
	}

	s, err := openSession(essentia.WithLineHandler(printDiagnoseLine))
	if err != nil {
		return err
	}
	defer s.close()

	_, connInfo := s.getConn()
	fmt.Printf("Essentia - Diagnose Mode\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Statistics interval: %d seconds\n", diagStatsInterval)
	if diagShowAll {
		fmt.Printf("Mode: All lines\n")
	} else {
		fmt.Printf("Mode: Discarded lines only\n")
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	ctx, cancel := signalContext()
	defer cancel()
	pollErr := s.start(ctx)

	statsTicker := time.NewTicker(time.Duration(diagStatsInterval) * time.Second)
	defer statsTicker.Stop()

	var refresh <-chan time.Time
	if diagPollEvery > 0 {
		s.driver.Refresh()
		refreshTicker := time.NewTicker(time.Duration(diagPollEvery) * time.Second)
		defer refreshTicker.Stop()
		refresh = refreshTicker.C
	}

	for {
		select {
		case <-statsTicker.C:
			fmt.Println()
			fmt.Print(s.driver.Statistics().String())
			fmt.Println()

		case <-refresh:
			if s.driver.QueueEmpty() {
				s.driver.Refresh()
			}

		case err := <-pollErr:
			fmt.Println()
			fmt.Print(s.driver.Statistics().String())
			return err
		}
	}
}
