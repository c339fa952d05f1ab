// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package essentia

import (
	"fmt"
	"math"
	"strconv"
)

// Command builder functions return the complete wire string for a command,
// including the trailing CR. A non-nil error means the command must not be
// sent.

// PowerOnCommand creates an ON command
func PowerOnCommand(zone int) (string, error) {
	return buildCommand(zone, VerbPowerOn, "")
}

// PowerOffCommand creates an OFF command
func PowerOffCommand(zone int) (string, error) {
	return buildCommand(zone, VerbPowerOff, "")
}

// SourceCommand creates a SRC command selecting input v (1-6).
// The value is truncated toward zero before the range check.
func SourceCommand(zone int, v float64) (string, error) {
	return selectorCommand(zone, VerbSource, v)
}

// GroupCommand creates a GRP command assigning the zone to group v (1-6)
func GroupCommand(zone int, v float64) (string, error) {
	return selectorCommand(zone, VerbGroup, v)
}

// VolumeCommand creates a VOL command. v is the level in dB, -78 to 0.
func VolumeCommand(zone int, v float64) (string, error) {
	if !inRange(v, MinVolume, MaxVolume) {
		return "", fmt.Errorf("%w: volume %g (range %d to %d)", ErrOutOfRange, v, MinVolume, MaxVolume)
	}
	return buildCommand(zone, VerbVolume, FormatVolume(v))
}

// BassCommand creates a BASS command. v is the level, -8 to +8.
func BassCommand(zone int, v float64) (string, error) {
	return levelCommand(zone, VerbBass, v)
}

// TrebleCommand creates a TREB command. v is the level, -8 to +8.
func TrebleCommand(zone int, v float64) (string, error) {
	return levelCommand(zone, VerbTreble, v)
}

// MuteOnCommand creates an MTON command
func MuteOnCommand(zone int) (string, error) {
	return buildCommand(zone, VerbMuteOn, "")
}

// MuteOffCommand creates an MTOFF command
func MuteOffCommand(zone int) (string, error) {
	return buildCommand(zone, VerbMuteOff, "")
}

// ConnectStateRequest creates a CONSR command.
// The amplifier answers with a connect-state report.
func ConnectStateRequest(zone int) (string, error) {
	return buildCommand(zone, VerbConnectStateReq, "")
}

// ZoneStateRequest creates a SETSR command.
// The amplifier answers with a zone-state report.
func ZoneStateRequest(zone int) (string, error) {
	return buildCommand(zone, VerbZoneStateRequest, "")
}

// FormatVolume formats a dB level as the two-digit attenuation the
// amplifier expects: -45 becomes "45". Out-of-range input is clamped.
func FormatVolume(v float64) string {
	vol := int(-v)
	if vol < 0 {
		vol = 0
	}
	if vol > -MinVolume {
		vol = -MinVolume
	}
	return fmt.Sprintf("%02d", vol)
}

// FormatLevel formats a tone level as sign plus two digits: 3 becomes
// "+03", -8 becomes "-08". Out-of-range input is clamped.
func FormatLevel(v float64) string {
	level := int(v)
	if level < MinLevel {
		level = MinLevel
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	if level < 0 {
		return fmt.Sprintf("-%02d", -level)
	}
	return fmt.Sprintf("+%02d", level)
}

func selectorCommand(zone int, verb string, v float64) (string, error) {
	if !inRange(math.Trunc(v), MinSelector, MaxSelector) {
		return "", fmt.Errorf("%w: %s %g (range %d to %d)", ErrOutOfRange, verb, v, MinSelector, MaxSelector)
	}
	return buildCommand(zone, verb, strconv.Itoa(int(v)))
}

func levelCommand(zone int, verb string, v float64) (string, error) {
	if !inRange(v, MinLevel, MaxLevel) {
		return "", fmt.Errorf("%w: %s %g (range %d to %d)", ErrOutOfRange, verb, v, MinLevel, MaxLevel)
	}
	return buildCommand(zone, verb, FormatLevel(v))
}

// inRange is false for NaN
func inRange(v float64, lo, hi int) bool {
	return v >= float64(lo) && v <= float64(hi)
}

func buildCommand(zone int, verb, payload string) (string, error) {
	if !ValidZone(zone) {
		return "", fmt.Errorf("%w: %d", ErrInvalidZone, zone)
	}
	return commandPrefix + strconv.Itoa(zone) + verb + payload + commandTerminator, nil
}
