// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package essentia

import "errors"

// Encoder errors. A command that fails validation is never queued.
var (
	ErrInvalidZone = errors.New("essentia: zone id out of range")
	ErrOutOfRange  = errors.New("essentia: value out of range")
)

// Decoder errors. Lines failing to decode are discarded by the Driver.
var (
	ErrNotZoneMessage  = errors.New("essentia: not a zone message")
	ErrUnknownReport   = errors.New("essentia: unknown report type")
	ErrMalformedReport = errors.New("essentia: malformed report")
)
