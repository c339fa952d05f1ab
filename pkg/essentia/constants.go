// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package essentia provides a Go driver for Essentia six-zone audio
// amplifiers controlled over an RS-232 serial link.
//
// The amplifier speaks a line-oriented ASCII protocol. Commands have the
// form "*Z0<zone><VERB><payload>\r" and the amplifier answers with
// comma-delimited, fixed-offset status reports. This package provides the
// line framer, command encoder, report decoder, outbound command queue and
// a Driver that ties them together around a per-zone state cache.
package essentia

// Line framing bytes
const (
	CR  = 0x0D
	LF  = 0x0A
	NUL = 0x00
)

// MaxLineLength is the size of the line assembly buffer. One byte is kept
// back for the terminator, so at most MaxLineLength-1 bytes are stored.
const MaxLineLength = 80

// NumZones is the number of amplifier zones.
const NumZones = 6

// Value ranges
const (
	MinSelector = 1
	MaxSelector = 6

	MinVolume = -78
	MaxVolume = 0

	MinLevel = -8
	MaxLevel = 8
)

// Defaults returned by getters when the zone id is out of range.
const (
	InvalidZoneSource = 1
	InvalidZoneGroup  = 1
	InvalidZoneVolume = -62
)

// Command framing
const (
	commandPrefix     = "*Z0"
	commandTerminator = "\r"
)

// Command verbs
const (
	VerbPowerOn          = "ON"
	VerbPowerOff         = "OFF"
	VerbSource           = "SRC"
	VerbGroup            = "GRP"
	VerbVolume           = "VOL"
	VerbBass             = "BASS"
	VerbTreble           = "TREB"
	VerbMuteOn           = "MTON"
	VerbMuteOff          = "MTOFF"
	VerbConnectStateReq  = "CONSR"
	VerbZoneStateRequest = "SETSR"
)

// Report markers
const (
	zoneMessageMarker  = 'Z'
	connectStateMarker = 'P'
	zoneStateMarker    = 'O'

	messageClassOffset = 1
	reportTypeOffset   = 4
	fieldSeparator     = ","
)

// Connect-state report layout: "#Z0nPWRON,SRCn,GRPn,VOL-nn"
const (
	connectZoneField    = 0
	connectZoneOffset   = 3
	connectPowerField   = 0
	connectPowerOffset  = 7
	connectPowerWidth   = 3
	connectSourceField  = 1
	connectSourceOffset = 3
	connectGroupField   = 2
	connectGroupOffset  = 3
	connectVolumeField  = 3
	connectVolumeOffset = 3
	connectVolumeWidth  = 3
	connectFieldCount   = 4
)

// Zone-state report layout: "#Z0nORSTR,BASS+nn,TREB-nn,GRPn,VRSTn"
const (
	zoneZoneField    = 0
	zoneZoneOffset   = 3
	zoneBassField    = 1
	zoneBassOffset   = 4
	zoneBassWidth    = 3
	zoneTrebleField  = 2
	zoneTrebleOffset = 4
	zoneTrebleWidth  = 3
	zoneGroupField   = 3
	zoneGroupOffset  = 3
	zoneVrstField    = 4
	zoneVrstOffset   = 4
	zoneFieldCount   = 5
)

// Volume markers reported in place of a level while the zone is muted.
const (
	MuteMarker    = "-MT"
	AltMuteMarker = "-XT"
)
