// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mqttbridge

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Thermoquad/essentia/pkg/essentia"
)

// Target is the part of the driver that commands act on
type Target interface {
	PowerOn(id int) error
	PowerOff(id int) error
	SetSource(id int, v float64) error
	SetGroup(id int, v float64) error
	SetVolume(id int, v float64) error
	SetBass(id int, v float64) error
	SetTreble(id int, v float64) error
	MuteOn(id int) error
	MuteOff(id int) error
	RefreshZone(id int) error
}

// Command is a set request. Absent fields are left alone.
//
//	{"power":"ON","volume":-30,"mute":false}
type Command struct {
	Power   *essentia.Power `json:"power,omitempty"`
	Source  *float64        `json:"source,omitempty"`
	Group   *float64        `json:"group,omitempty"`
	Volume  *float64        `json:"volume,omitempty"`
	Bass    *float64        `json:"bass,omitempty"`
	Treble  *float64        `json:"treble,omitempty"`
	Mute    *bool           `json:"mute,omitempty"`
	Refresh bool            `json:"refresh,omitempty"`
}

// ParseCommand decodes a JSON set payload
func ParseCommand(payload []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return Command{}, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	if cmd.IsEmpty() {
		return Command{}, fmt.Errorf("%w: no fields set", ErrInvalidCommand)
	}
	return cmd, nil
}

// IsEmpty reports whether the command sets nothing
func (c Command) IsEmpty() bool {
	return c.Power == nil && c.Source == nil && c.Group == nil && c.Volume == nil &&
		c.Bass == nil && c.Treble == nil && c.Mute == nil && !c.Refresh
}

// Apply queues the command for each zone in ids.
//
// Fields are applied in a fixed order (power, source, group, volume, bass,
// treble, mute, refresh) and each field is queued for every zone before
// the next field. A field whose value is rejected for the first zone is
// skipped for the rest.
func (c Command) Apply(t Target, ids ...int) error {
	var errs []error

	each := func(set func(id int) error) {
		for _, id := range ids {
			if err := set(id); err != nil {
				errs = append(errs, err)
				if !errors.Is(err, essentia.ErrInvalidZone) {
					return
				}
			}
		}
	}
	value := func(v *float64, set func(id int, v float64) error) {
		if v == nil {
			return
		}
		each(func(id int) error { return set(id, *v) })
	}

	if c.Power != nil {
		if *c.Power == essentia.PowerOff {
			each(t.PowerOff)
		} else {
			each(t.PowerOn)
		}
	}
	value(c.Source, t.SetSource)
	value(c.Group, t.SetGroup)
	value(c.Volume, t.SetVolume)
	value(c.Bass, t.SetBass)
	value(c.Treble, t.SetTreble)
	if c.Mute != nil {
		if *c.Mute {
			each(t.MuteOn)
		} else {
			each(t.MuteOff)
		}
	}
	if c.Refresh {
		each(t.RefreshZone)
	}

	return errors.Join(errs...)
}

// StatePayload encodes a zone for its state topic
func StatePayload(z essentia.Zone) ([]byte, error) {
	data, err := json.Marshal(z)
	if err != nil {
		return nil, fmt.Errorf("failed to encode zone %d: %w", z.ID, err)
	}
	return data, nil
}
