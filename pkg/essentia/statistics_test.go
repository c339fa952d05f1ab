// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package essentia

import (
	"fmt"
	"strings"
	"testing"
)

func TestStatistics_RecordLine(t *testing.T) {
	s := NewStatistics()

	for _, line := range []string{
		"#Z01PWRON,SRC1,GRP1,VOL-10",
		"#Z01ORSTR,BASS+00,TREB+00,GRP1,VRST0",
		"#Z02ORSTR,BASS+00,TREB+00,GRP1,VRST0",
		"OK",
		"#Z01QQQ",
		"#Z01PWRON",
		"#Z01PWRXX,SRC1,GRP1,VOL-10",
	} {
		r, err := Decode(line)
		s.RecordLine(r, err)
	}
	s.RecordCommand()
	s.RecordCommand()
	s.RecordRejected()
	s.RecordTruncated(3)

	c := s.Snapshot()
	checks := []struct {
		name string
		got  uint64
		want uint64
	}{
		{"TotalLines", c.TotalLines, 7},
		{"ConnectReports", c.ConnectReports, 1},
		{"ZoneReports", c.ZoneReports, 2},
		{"ForeignLines", c.ForeignLines, 1},
		{"UnknownReports", c.UnknownReports, 1},
		{"MalformedLines", c.MalformedLines, 2},
		{"TruncatedLines", c.TruncatedLines, 3},
		{"CommandsSent", c.CommandsSent, 2},
		{"CommandsDropped", c.CommandsDropped, 1},
		{"Discarded", c.Discarded(), 4},
		{"Statistics.Discarded", s.Discarded(), 4},
	}
	for _, ck := range checks {
		if ck.got != ck.want {
			t.Errorf("%s = %d, want %d", ck.name, ck.got, ck.want)
		}
	}
	if c.LineRate <= 0 {
		t.Errorf("LineRate = %f, want > 0", c.LineRate)
	}
}

func TestStatistics_String(t *testing.T) {
	s := NewStatistics()
	r, err := Decode("#Z01PWRON,SRC1,GRP1,VOL-10")
	s.RecordLine(r, err)
	r, err = Decode("garbage")
	s.RecordLine(r, err)

	out := s.String()
	for _, want := range []string{
		"Total Lines:            2",
		"Zone Reports:           1 (50.0%)",
		"Discarded:              1 (50.0%)",
		"Other Messages:       1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("String() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Truncated") {
		t.Errorf("String() should omit zero truncation count:\n%s", out)
	}
}

func TestStatistics_Reset(t *testing.T) {
	s := NewStatistics()
	start := s.Snapshot().StartTime
	s.RecordCommand()
	s.RecordLine(nil, fmt.Errorf("%w: test", ErrMalformedReport))

	s.Reset()
	c := s.Snapshot()
	if c.TotalLines != 0 || c.CommandsSent != 0 || c.MalformedLines != 0 {
		t.Errorf("counters not reset: %+v", c)
	}
	if c.StartTime.Before(start) {
		t.Error("StartTime moved backwards")
	}
}
