// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package essentia

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Snapshot is a timestamped copy of the zone cache, used for exporting
// amplifier state
type Snapshot struct {
	Timestamp time.Time        `json:"timestamp" cbor:"0,keyasint"`
	Zones     [NumZones]Zone   `json:"zones" cbor:"1,keyasint"`
	Stats     *SnapshotCounter `json:"stats,omitempty" cbor:"2,keyasint,omitempty"`
}

// snapshotEncMode keeps sub-second timestamps and writes power as the same
// "ON"/"OFF" text the JSON export uses
var snapshotEncMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{
		Time:          cbor.TimeRFC3339Nano,
		TextMarshaler: cbor.TextMarshalerTextString,
	}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

var snapshotDecMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{TextUnmarshaler: cbor.TextUnmarshalerTextString}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}()

// SnapshotCounter carries the line counters at snapshot time
type SnapshotCounter struct {
	Lines     uint64 `json:"lines" cbor:"0,keyasint"`
	Reports   uint64 `json:"reports" cbor:"1,keyasint"`
	Discarded uint64 `json:"discarded" cbor:"2,keyasint"`
	Commands  uint64 `json:"commands" cbor:"3,keyasint"`
}

// Snapshot captures the current zone cache and counters
func (d *Driver) Snapshot() Snapshot {
	c := d.stats.Snapshot()
	return Snapshot{
		Timestamp: time.Now().UTC(),
		Zones:     d.zones.All(),
		Stats: &SnapshotCounter{
			Lines:     c.TotalLines,
			Reports:   c.ConnectReports + c.ZoneReports,
			Discarded: c.Discarded(),
			Commands:  c.CommandsSent,
		},
	}
}

// EncodeCBOR encodes the snapshot as CBOR
func (s Snapshot) EncodeCBOR() ([]byte, error) {
	data, err := snapshotEncMode.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// EncodeJSON encodes the snapshot as indented JSON
func (s Snapshot) EncodeJSON() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a CBOR-encoded snapshot
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if len(data) == 0 {
		return s, fmt.Errorf("empty snapshot")
	}
	if err := snapshotDecMode.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return s, nil
}
