// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package essentia

import (
	"errors"
	"testing"
)

func TestDecode_ConnectReport(t *testing.T) {
	tests := []struct {
		name string
		line string
		want ConnectReport
	}{
		{
			name: "powered on with volume",
			line: "#Z01PWRON,SRC2,GRP1,VOL-45",
			want: ConnectReport{Zone: 1, Power: PowerOn, Source: 2, Group: 1, Volume: -45},
		},
		{
			name: "powered off",
			line: "#Z06PWROFF,SRC6,GRP3,VOL-20",
			want: ConnectReport{Zone: 6, Power: PowerOff, Source: 6, Group: 3, Volume: -20},
		},
		{
			name: "muted",
			line: "#Z03PWRON,SRC1,GRP1,VOL-MT",
			want: ConnectReport{Zone: 3, Power: PowerOn, Source: 1, Group: 1, Muted: true},
		},
		{
			name: "alternate mute marker",
			line: "#Z04PWRON,SRC1,GRP2,VOL-XT",
			want: ConnectReport{Zone: 4, Power: PowerOn, Source: 1, Group: 2, Muted: true},
		},
		{
			name: "full volume two digits",
			line: "#Z05PWRON,SRC1,GRP1,VOL00",
			want: ConnectReport{Zone: 5, Power: PowerOn, Source: 1, Group: 1, Volume: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Decode(tt.line)
			if err != nil {
				t.Fatalf("Decode(%q) error: %v", tt.line, err)
			}
			got, ok := r.(ConnectReport)
			if !ok {
				t.Fatalf("Decode(%q) = %T, want ConnectReport", tt.line, r)
			}
			if got != tt.want {
				t.Errorf("Decode(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestDecode_ZoneReport(t *testing.T) {
	r, err := Decode("#Z02ORSTR,BASS+03,TREB-02,GRP4,VRST1")
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	got, ok := r.(ZoneReport)
	if !ok {
		t.Fatalf("Decode = %T, want ZoneReport", r)
	}
	want := ZoneReport{Zone: 2, Bass: 3, Treble: -2, Group: 4, Vrst: 1}
	if got != want {
		t.Errorf("Decode = %+v, want %+v", got, want)
	}
	if got.ZoneID() != 2 {
		t.Errorf("ZoneID() = %d, want 2", got.ZoneID())
	}
}

func TestDecode_Discards(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr error
	}{
		{"empty", "", ErrNotZoneMessage},
		{"single byte", "#", ErrNotZoneMessage},
		{"other message class", "#A01PWRON,SRC1,GRP1,VOL-45", ErrNotZoneMessage},
		{"echo of command", "*Z01ON", ErrMalformedReport},
		{"too short for type", "#Z01", ErrMalformedReport},
		{"unknown report type", "#Z01XYZ,1,2,3", ErrUnknownReport},
		{"connect missing fields", "#Z01PWRON,SRC1", ErrMalformedReport},
		{"connect short power field", "#Z01P,SRC1,GRP1,VOL-45", ErrMalformedReport},
		{"connect bad power", "#Z01PWRXX,SRC1,GRP1,VOL-45", ErrMalformedReport},
		{"connect short source", "#Z01PWRON,SRC,GRP1,VOL-45", ErrMalformedReport},
		{"connect non-numeric group", "#Z01PWRON,SRC1,GRPx,VOL-45", ErrMalformedReport},
		{"connect short volume", "#Z01PWRON,SRC1,GRP1,VOL", ErrMalformedReport},
		{"connect bad volume", "#Z01PWRON,SRC1,GRP1,VOL-?5", ErrMalformedReport},
		{"connect zone 0", "#Z00PWRON,SRC1,GRP1,VOL-45", ErrMalformedReport},
		{"connect zone 7", "#Z07PWRON,SRC1,GRP1,VOL-45", ErrMalformedReport},
		{"zone missing vrst", "#Z02ORSTR,BASS+03,TREB-02,GRP4", ErrMalformedReport},
		{"zone short bass", "#Z02ORSTR,BAS,TREB-02,GRP4,VRST1", ErrMalformedReport},
		{"zone short vrst", "#Z02ORSTR,BASS+03,TREB-02,GRP4,VRST", ErrMalformedReport},
		{"zone non-numeric zone", "#Z0xORSTR,BASS+03,TREB-02,GRP4,VRST1", ErrMalformedReport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Decode(tt.line)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Decode(%q) error = %v, want %v", tt.line, err, tt.wantErr)
			}
			if r != nil {
				t.Errorf("Decode(%q) returned report %+v on error", tt.line, r)
			}
		})
	}
}

func TestZoneStore_ApplyMutedKeepsVolume(t *testing.T) {
	s := NewZoneStore()

	r, err := Decode("#Z03PWRON,SRC2,GRP1,VOL-30")
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	s.Apply(r)

	r, err = Decode("#Z03PWRON,SRC2,GRP1,VOL-MT")
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	z, ok := s.Apply(r)
	if !ok {
		t.Fatal("Apply returned false for zone 3")
	}

	if !z.Mute {
		t.Error("zone 3 should be muted")
	}
	if z.Volume != -30 {
		t.Errorf("muted report changed volume: got %d, want -30", z.Volume)
	}

	all := s.All()
	if all[2] != z {
		t.Errorf("store slot 2 = %+v, want %+v", all[2], z)
	}
}

func TestZoneStore_ApplyUnmutes(t *testing.T) {
	s := NewZoneStore()

	r, _ := Decode("#Z04PWRON,SRC1,GRP1,VOL-MT")
	s.Apply(r)
	r, _ = Decode("#Z04PWRON,SRC1,GRP1,VOL00")
	z, _ := s.Apply(r)

	if z.Mute {
		t.Error("numeric volume should clear mute")
	}
	if z.Volume != 0 {
		t.Errorf("Volume = %d, want 0", z.Volume)
	}
}

func TestZoneStore_ZoneReportLeavesConnectFields(t *testing.T) {
	s := NewZoneStore()

	r, _ := Decode("#Z01PWROFF,SRC5,GRP2,VOL-40")
	s.Apply(r)
	r, _ = Decode("#Z01ORSTR,BASS-04,TREB+06,GRP3,VRST2")
	z, _ := s.Apply(r)

	want := Zone{ID: 1, Power: PowerOff, Source: 5, Group: 3, Volume: -40, Bass: -4, Treble: 6, Vrst: 2}
	if z != want {
		t.Errorf("zone = %+v, want %+v", z, want)
	}
}

func TestZoneStore_Defaults(t *testing.T) {
	s := NewZoneStore()
	for i, z := range s.All() {
		want := DefaultZone(i + 1)
		if z != want {
			t.Errorf("zone %d = %+v, want %+v", i+1, z, want)
		}
	}
	if _, ok := s.Get(0); ok {
		t.Error("Get(0) should fail")
	}
	if _, ok := s.Get(NumZones + 1); ok {
		t.Error("Get(7) should fail")
	}
}
