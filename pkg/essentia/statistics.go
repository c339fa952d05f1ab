// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package essentia

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Statistics tracks line and command counters for a session.
//
// Safe for concurrent use; read the counters through Snapshot.
type Statistics struct {
	mu sync.Mutex
	Counters
}

// Counters is a point-in-time copy of the statistics counters
type Counters struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalLines      uint64
	ConnectReports  uint64
	ZoneReports     uint64
	ForeignLines    uint64 // not zone messages
	UnknownReports  uint64
	MalformedLines  uint64
	TruncatedLines  uint64
	CommandsSent    uint64
	CommandsDropped uint64 // rejected by validation

	// Rates (calculated)
	LineRate    float64 // lines/sec
	DiscardRate float64 // discarded lines/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{Counters: Counters{
		StartTime:      now,
		LastUpdateTime: now,
	}}
}

// RecordLine updates statistics for one received line and its decode result
func (s *Statistics) RecordLine(report Report, decodeErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.TotalLines++
	s.LastUpdateTime = time.Now()

	if decodeErr != nil {
		switch {
		case errors.Is(decodeErr, ErrNotZoneMessage):
			s.ForeignLines++
		case errors.Is(decodeErr, ErrUnknownReport):
			s.UnknownReports++
		default:
			s.MalformedLines++
		}
		return
	}

	switch report.(type) {
	case ConnectReport:
		s.ConnectReports++
	case ZoneReport:
		s.ZoneReports++
	}
}

// RecordTruncated sets the truncated line counter
func (s *Statistics) RecordTruncated(total uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TruncatedLines = total
}

// RecordCommand counts a command that was written to the transport
func (s *Statistics) RecordCommand() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CommandsSent++
}

// RecordRejected counts a command that failed validation
func (s *Statistics) RecordRejected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CommandsDropped++
}

// Discarded returns the number of lines that did not update the cache
func (s *Statistics) Discarded() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discarded()
}

func (s *Statistics) discarded() uint64 {
	return s.Counters.Discarded()
}

// Discarded returns the number of lines that did not update the cache
func (c Counters) Discarded() uint64 {
	return c.ForeignLines + c.UnknownReports + c.MalformedLines
}

// CalculateRates calculates line and discard rates
func (s *Statistics) CalculateRates() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calculateRates()
}

func (s *Statistics) calculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.LineRate = float64(s.TotalLines) / elapsed
		s.DiscardRate = float64(s.discarded()) / elapsed
	}
}

// Snapshot returns a copy of the counters with fresh rates
func (s *Statistics) Snapshot() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calculateRates()
	return s.Counters
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	snap := s.Snapshot()

	var validPercent, discardPercent float64
	valid := snap.ConnectReports + snap.ZoneReports
	if snap.TotalLines > 0 {
		validPercent = float64(valid) * 100.0 / float64(snap.TotalLines)
		discardPercent = float64(snap.Discarded()) * 100.0 / float64(snap.TotalLines)
	}

	elapsed := time.Since(snap.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Lines:     %8d\n", snap.TotalLines)
	result += fmt.Sprintf("Zone Reports:    %8d (%.1f%%)\n", valid, validPercent)
	result += fmt.Sprintf("  Connect State:    %5d\n", snap.ConnectReports)
	result += fmt.Sprintf("  Zone State:       %5d\n", snap.ZoneReports)

	if snap.Discarded() > 0 {
		result += fmt.Sprintf("Discarded:       %8d (%.1f%%)\n", snap.Discarded(), discardPercent)
		if snap.ForeignLines > 0 {
			result += fmt.Sprintf("  Other Messages:   %5d\n", snap.ForeignLines)
		}
		if snap.UnknownReports > 0 {
			result += fmt.Sprintf("  Unknown Reports:  %5d\n", snap.UnknownReports)
		}
		if snap.MalformedLines > 0 {
			result += fmt.Sprintf("  Malformed:        %5d\n", snap.MalformedLines)
		}
	}
	if snap.TruncatedLines > 0 {
		result += fmt.Sprintf("Truncated Lines: %8d\n", snap.TruncatedLines)
	}

	result += fmt.Sprintf("Commands Sent:   %8d\n", snap.CommandsSent)
	if snap.CommandsDropped > 0 {
		result += fmt.Sprintf("Commands Reject: %8d\n", snap.CommandsDropped)
	}
	result += fmt.Sprintf("Line Rate:       %8.1f lines/sec\n", snap.LineRate)
	result += fmt.Sprintf("Discard Rate:    %8.1f lines/sec\n", snap.DiscardRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.Counters = Counters{
		StartTime:      now,
		LastUpdateTime: now,
	}
}
