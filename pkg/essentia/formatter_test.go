// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package essentia

import (
	"strings"
	"testing"
)

func TestDescribeCommand(t *testing.T) {
	tests := []struct {
		cmd  string
		want string
	}{
		{"*Z01ON\r", "POWER_ON zone=1"},
		{"*Z02OFF\r", "POWER_OFF zone=2"},
		{"*Z03SRC4\r", "SOURCE zone=3 arg=4"},
		{"*Z04GRP2\r", "GROUP zone=4 arg=2"},
		{"*Z05VOL45\r", "VOLUME zone=5 arg=45"},
		{"*Z06BASS+03\r", "BASS zone=6 arg=+03"},
		{"*Z01TREB-08\r", "TREBLE zone=1 arg=-08"},
		{"*Z02MTON\r", "MUTE_ON zone=2"},
		{"*Z02MTOFF\r", "MUTE_OFF zone=2"},
		{"*Z03CONSR\r", "CONNECT_STATE_REQUEST zone=3"},
		{"*Z03SETSR\r", "ZONE_STATE_REQUEST zone=3"},
		{"*Z03XYZ\r", `RAW "*Z03XYZ"`},
		{"hello", `RAW "hello"`},
		{"*Z0", `RAW "*Z0"`},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := DescribeCommand(tt.cmd); got != tt.want {
				t.Errorf("DescribeCommand(%q) = %q, want %q", tt.cmd, got, tt.want)
			}
		})
	}
}

func TestDescribeCommand_Builders(t *testing.T) {
	cmd, err := VolumeCommand(2, -45)
	if err != nil {
		t.Fatal(err)
	}
	if got := DescribeCommand(cmd); got != "VOLUME zone=2 arg=45" {
		t.Errorf("DescribeCommand = %q", got)
	}
}

func TestFormatReport(t *testing.T) {
	tests := []struct {
		name   string
		report Report
		want   string
	}{
		{
			name:   "connect",
			report: ConnectReport{Zone: 1, Power: PowerOn, Source: 2, Group: 1, Volume: -45},
			want:   "CONNECT_STATE zone=1 power=ON source=2 group=1 volume=-45 dB",
		},
		{
			name:   "connect muted",
			report: ConnectReport{Zone: 2, Power: PowerOff, Source: 1, Group: 1, Muted: true},
			want:   "CONNECT_STATE zone=2 power=OFF source=1 group=1 volume=MUTED",
		},
		{
			name:   "zone",
			report: ZoneReport{Zone: 3, Bass: 3, Treble: -2, Group: 4, Vrst: 1},
			want:   "ZONE_STATE zone=3 bass=+3 treble=-2 group=4 vrst=1",
		},
		{
			name:   "nil",
			report: nil,
			want:   "UNKNOWN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatReport(tt.report); got != tt.want {
				t.Errorf("FormatReport() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatZone(t *testing.T) {
	z := Zone{ID: 4, Power: PowerOff, Source: 2, Group: 3, Volume: -30, Bass: 1, Treble: -1, Mute: true}
	got := FormatZone(z)
	for _, want := range []string{"Zone 4:", "OFF", "src=2", "grp=3", "-30 dB (muted)", "bass=+1", "treble=-1"} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatZone() = %q, missing %q", got, want)
		}
	}
}

func TestFormatZoneTable(t *testing.T) {
	d := NewDriver()
	table := FormatZoneTable(d.Zones())
	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	if len(lines) != NumZones+1 {
		t.Fatalf("table has %d lines, want %d:\n%s", len(lines), NumZones+1, table)
	}
	if !strings.HasPrefix(lines[0], "ZONE") {
		t.Errorf("missing header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "   1  ON ") {
		t.Errorf("row 1 = %q", lines[1])
	}
}
