// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package essentia

import (
	"fmt"
	"strings"
	"sync"
)

// Power represents a zone power state
type Power int

// Power state values
const (
	PowerOn Power = iota
	PowerOff
)

// String returns the wire spelling of the power state
func (p Power) String() string {
	if p == PowerOff {
		return "OFF"
	}
	return "ON"
}

// MarshalText implements encoding.TextMarshaler
func (p Power) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Power) UnmarshalText(text []byte) error {
	v, ok := ParsePower(string(text))
	if !ok {
		return fmt.Errorf("%w: power %q", ErrOutOfRange, text)
	}
	*p = v
	return nil
}

// ParsePower parses a reported power state. The amplifier pads the value
// to three characters, so trailing spaces are ignored.
func ParsePower(s string) (Power, bool) {
	switch strings.TrimRight(s, " ") {
	case "ON":
		return PowerOn, true
	case "OFF":
		return PowerOff, true
	}
	return PowerOn, false
}

// Zone is the cached state of one amplifier zone
type Zone struct {
	ID     int   `json:"id" cbor:"0,keyasint"`
	Power  Power `json:"power" cbor:"1,keyasint"`
	Source int   `json:"source" cbor:"2,keyasint"`
	Group  int   `json:"group" cbor:"3,keyasint"`
	Volume int   `json:"volume" cbor:"4,keyasint"`
	Bass   int   `json:"bass" cbor:"5,keyasint"`
	Treble int   `json:"treble" cbor:"6,keyasint"`
	Vrst   int   `json:"vrst" cbor:"7,keyasint"`
	Mute   bool  `json:"mute" cbor:"8,keyasint"`
}

// DefaultZone returns a zone with power-on defaults
func DefaultZone(id int) Zone {
	return Zone{
		ID:     id,
		Power:  PowerOn,
		Source: 1,
		Group:  1,
	}
}

// On reports whether the zone is powered on
func (z Zone) On() bool {
	return z.Power == PowerOn
}

// zoneIndex converts a 1-based zone id to an index into ZoneStore.zones
func zoneIndex(id int) (int, bool) {
	if id < 1 || id > NumZones {
		return 0, false
	}
	return id - 1, true
}

// ValidZone reports whether id names one of the amplifier's zones
func ValidZone(id int) bool {
	_, ok := zoneIndex(id)
	return ok
}

// ZoneStore holds the last reported state of every zone.
//
// Safe for concurrent use.
type ZoneStore struct {
	mu    sync.RWMutex
	zones [NumZones]Zone
}

// NewZoneStore creates a store with every zone at its defaults
func NewZoneStore() *ZoneStore {
	s := &ZoneStore{}
	for i := range s.zones {
		s.zones[i] = DefaultZone(i + 1)
	}
	return s
}

// Get returns the cached state of zone id
func (s *ZoneStore) Get(id int) (Zone, bool) {
	idx, ok := zoneIndex(id)
	if !ok {
		return Zone{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zones[idx], true
}

// All returns a copy of every zone in ascending id order
func (s *ZoneStore) All() [NumZones]Zone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zones
}

// Apply merges a decoded report into the store.
// All fields carried by the report are committed together.
// Returns the updated zone.
func (s *ZoneStore) Apply(r Report) (Zone, bool) {
	idx, ok := zoneIndex(r.ZoneID())
	if !ok {
		return Zone{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	z := s.zones[idx]
	r.apply(&z)
	s.zones[idx] = z
	return z, true
}
