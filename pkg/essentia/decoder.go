// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package essentia

import (
	"fmt"
	"strconv"
	"strings"
)

// Report is a decoded amplifier status report
type Report interface {
	// ZoneID returns the 1-based zone the report describes
	ZoneID() int
	apply(z *Zone)
}

// ConnectReport is the reply to CONSR: power, source, group and volume
type ConnectReport struct {
	Zone   int
	Power  Power
	Source int
	Group  int
	Volume int // valid only when Muted is false
	Muted  bool
}

// ZoneID implements Report
func (r ConnectReport) ZoneID() int { return r.Zone }

func (r ConnectReport) apply(z *Zone) {
	z.Power = r.Power
	z.Source = r.Source
	z.Group = r.Group
	if r.Muted {
		z.Mute = true
		return
	}
	z.Volume = r.Volume
	z.Mute = false
}

// ZoneReport is the reply to SETSR: bass, treble, group and vrst
type ZoneReport struct {
	Zone   int
	Bass   int
	Treble int
	Group  int
	Vrst   int
}

// ZoneID implements Report
func (r ZoneReport) ZoneID() int { return r.Zone }

func (r ZoneReport) apply(z *Zone) {
	z.Bass = r.Bass
	z.Treble = r.Treble
	z.Group = r.Group
	z.Vrst = r.Vrst
}

// Decode parses one framed line into a Report.
//
// Lines that are not zone messages return ErrNotZoneMessage, zone messages
// of an unknown type return ErrUnknownReport. Any field that is missing,
// too short or not numeric yields ErrMalformedReport. Decode never reads
// outside the line.
func Decode(line string) (Report, error) {
	if len(line) <= messageClassOffset || line[messageClassOffset] != zoneMessageMarker {
		return nil, ErrNotZoneMessage
	}
	if len(line) <= reportTypeOffset {
		return nil, fmt.Errorf("%w: line too short (%d bytes)", ErrMalformedReport, len(line))
	}

	switch line[reportTypeOffset] {
	case connectStateMarker:
		return decodeConnectReport(line)
	case zoneStateMarker:
		return decodeZoneReport(line)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownReport, line[reportTypeOffset])
	}
}

func decodeConnectReport(line string) (Report, error) {
	fields := strings.Split(line, fieldSeparator)
	if len(fields) < connectFieldCount {
		return nil, fmt.Errorf("%w: connect report has %d fields (need %d)", ErrMalformedReport, len(fields), connectFieldCount)
	}

	zone, err := zoneField(fields[connectZoneField], connectZoneOffset)
	if err != nil {
		return nil, err
	}

	powerStr, err := substr(fields[connectPowerField], connectPowerOffset, connectPowerWidth)
	if err != nil {
		return nil, err
	}
	power, ok := ParsePower(powerStr)
	if !ok {
		return nil, fmt.Errorf("%w: power %q", ErrMalformedReport, powerStr)
	}

	source, err := intField(fields[connectSourceField], connectSourceOffset, 1)
	if err != nil {
		return nil, err
	}
	group, err := intField(fields[connectGroupField], connectGroupOffset, 1)
	if err != nil {
		return nil, err
	}

	report := ConnectReport{
		Zone:   zone,
		Power:  power,
		Source: source,
		Group:  group,
	}

	volStr, err := substr(fields[connectVolumeField], connectVolumeOffset, connectVolumeWidth)
	if err != nil {
		return nil, err
	}
	if volStr == MuteMarker || volStr == AltMuteMarker {
		report.Muted = true
		return report, nil
	}
	report.Volume, err = parseInt(volStr)
	if err != nil {
		return nil, err
	}

	return report, nil
}

func decodeZoneReport(line string) (Report, error) {
	fields := strings.Split(line, fieldSeparator)
	if len(fields) < zoneFieldCount {
		return nil, fmt.Errorf("%w: zone report has %d fields (need %d)", ErrMalformedReport, len(fields), zoneFieldCount)
	}

	zone, err := zoneField(fields[zoneZoneField], zoneZoneOffset)
	if err != nil {
		return nil, err
	}
	bass, err := intField(fields[zoneBassField], zoneBassOffset, zoneBassWidth)
	if err != nil {
		return nil, err
	}
	treble, err := intField(fields[zoneTrebleField], zoneTrebleOffset, zoneTrebleWidth)
	if err != nil {
		return nil, err
	}
	group, err := intField(fields[zoneGroupField], zoneGroupOffset, 1)
	if err != nil {
		return nil, err
	}
	vrst, err := intField(fields[zoneVrstField], zoneVrstOffset, 1)
	if err != nil {
		return nil, err
	}

	return ZoneReport{
		Zone:   zone,
		Bass:   bass,
		Treble: treble,
		Group:  group,
		Vrst:   vrst,
	}, nil
}

// substr returns up to width bytes of field starting at offset.
// The offset must fall inside the field; a shorter tail is accepted.
func substr(field string, offset, width int) (string, error) {
	if offset >= len(field) {
		return "", fmt.Errorf("%w: field %q shorter than offset %d", ErrMalformedReport, field, offset)
	}
	end := offset + width
	if end > len(field) {
		end = len(field)
	}
	return field[offset:end], nil
}

func intField(field string, offset, width int) (int, error) {
	s, err := substr(field, offset, width)
	if err != nil {
		return 0, err
	}
	return parseInt(s)
}

func zoneField(field string, offset int) (int, error) {
	zone, err := intField(field, offset, 1)
	if err != nil {
		return 0, err
	}
	if !ValidZone(zone) {
		return 0, fmt.Errorf("%w: zone %d", ErrMalformedReport, zone)
	}
	return zone, nil
}

func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrMalformedReport, s)
	}
	return v, nil
}
