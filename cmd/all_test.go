// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/essentia/pkg/essentia"
)

func TestQueueAll(t *testing.T) {
	tests := []struct {
		args  []string
		first string
		count int
	}{
		{[]string{"on"}, "*Z01ON\r", essentia.NumZones},
		{[]string{"off"}, "*Z01OFF\r", essentia.NumZones},
		{[]string{"mute"}, "*Z01MTON\r", essentia.NumZones},
		{[]string{"unmute"}, "*Z01MTOFF\r", essentia.NumZones},
		{[]string{"refresh"}, "*Z01CONSR\r", 2 * essentia.NumZones},
		{[]string{"volume", "-12"}, "*Z01VOL12\r", essentia.NumZones},
	}

	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			d := essentia.NewDriver()
			require.NoError(t, queueAll(d, tt.args))

			cmds := drainCommands(d)
			require.Len(t, cmds, tt.count)
			assert.Equal(t, tt.first, cmds[0])
		})
	}
}

func TestQueueAll_Errors(t *testing.T) {
	tests := [][]string{
		{"volume"},
		{"volume", "loud"},
		{"volume", "-80"},
		{"on", "2"},
		{"dance"},
	}

	for _, args := range tests {
		d := essentia.NewDriver()
		assert.Error(t, queueAll(d, args), "args %v", args)
		assert.Zero(t, d.QueueLen(), "args %v", args)
	}
}

func TestParseZoneID(t *testing.T) {
	id, err := parseZoneID("4")
	require.NoError(t, err)
	assert.Equal(t, 4, id)

	for _, arg := range []string{"0", "7", "x", ""} {
		_, err := parseZoneID(arg)
		assert.ErrorIs(t, err, essentia.ErrInvalidZone, "arg %q", arg)
	}
}
