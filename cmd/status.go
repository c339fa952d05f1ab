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

var (
	statusWait int
	statusJSON bool
	statusCBOR string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Read and print the state of every zone",
	Long: `Request the state of all six zones and print them as a table.

The command waits until every zone has answered both state requests, or
until --wait seconds have passed. Zones that did not answer keep their
power-on defaults.

Output:
  default     zone table
  --json      JSON snapshot on stdout
  --cbor FILE CBOR snapshot written to FILE`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().IntVar(&statusWait, "wait", 3, "Seconds to wait for zone reports")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print a JSON snapshot")
	statusCmd.Flags().StringVar(&statusCBOR, "cbor", "", "Write a CBOR snapshot to this file")
}

// reportTracker records which zones have sent which report types
type reportTracker struct {
	mu      sync.Mutex
	connect [essentia.NumZones]bool
	zone    [essentia.NumZones]bool
	done    chan struct{}
	closed  bool
}

func newReportTracker() *reportTracker {
	return &reportTracker{done: make(chan struct{})}
}

func (t *reportTracker) onUpdate(z essentia.Zone, r essentia.Report) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch r.(type) {
	case essentia.ConnectReport:
		t.connect[z.ID-1] = true
	case essentia.ZoneReport:
		t.zone[z.ID-1] = true
	}
	if t.closed {
		return
	}
	for i := range t.connect {
		if !t.connect[i] || !t.zone[i] {
			return
		}
	}
	t.closed = true
	close(t.done)
}

func (t *reportTracker) answered() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	var ids []int
	for i := range t.connect {
		if t.connect[i] || t.zone[i] {
			ids = append(ids, i+1)
		}
	}
	return ids
}

func runStatus(cmd *cobra.Command, args []string) error {
	tracker := newReportTracker()
	s, err := openSession(essentia.WithZoneUpdateHandler(tracker.onUpdate))
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := signalContext()
	defer cancel()
	pollErr := s.start(ctx)

	s.driver.Refresh()

	timeout := time.NewTimer(time.Duration(statusWait) * time.Second)
	defer timeout.Stop()
	select {
	case <-tracker.done:
	case <-timeout.C:
		logger.Warn("not all zones answered", "answered", tracker.answered())
	case <-ctx.Done():
		return nil
	case err := <-pollErr:
		return err
	}

	snap := s.driver.Snapshot()
	if statusCBOR != "" {
		data, err := snap.EncodeCBOR()
		if err != nil {
			return err
		}
		if err := os.WriteFile(statusCBOR, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", statusCBOR, err)
		}
	}

	if statusJSON {
		data, err := snap.EncodeJSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Print(essentia.FormatZoneTable(snap.Zones))
	return nil
}
