// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/essentia/pkg/essentia"
)

func newTestConsole() (*console, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &console{driver: essentia.NewDriver(), out: out}, out
}

func drainCommands(d *essentia.Driver) []string {
	var cmds []string
	for {
		cmd, ok := d.NextCommand()
		if !ok {
			return cmds
		}
		cmds = append(cmds, cmd)
	}
}

func TestConsole_ZoneActions(t *testing.T) {
	c, out := newTestConsole()

	assert.False(t, c.exec("on 2"))
	assert.False(t, c.exec("MUTE 3"))
	assert.False(t, c.exec("off all"))

	cmds := drainCommands(c.driver)
	require.Len(t, cmds, 2+essentia.NumZones)
	assert.Equal(t, "*Z02ON\r", cmds[0])
	assert.Equal(t, "*Z03MTON\r", cmds[1])
	assert.Equal(t, "*Z01OFF\r", cmds[2])
	assert.Contains(t, out.String(), "Queued (1 pending)")
}

func TestConsole_ValueCommands(t *testing.T) {
	c, _ := newTestConsole()

	c.exec("vol 1 -40")
	c.exec("src 2 3")
	c.exec("bass 4 -2")
	c.exec("treb 5 7")
	c.exec("grp 6 1")

	assert.Equal(t, []string{
		"*Z01VOL40\r",
		"*Z02SRC3\r",
		"*Z04BASS-02\r",
		"*Z05TREB+07\r",
		"*Z06GRP1\r",
	}, drainCommands(c.driver))
}

func TestConsole_VolumeAll(t *testing.T) {
	c, _ := newTestConsole()

	c.exec("vol all -20")
	cmds := drainCommands(c.driver)
	require.Len(t, cmds, essentia.NumZones)
	assert.Equal(t, "*Z06VOL20\r", cmds[5])
}

func TestConsole_RefreshDefaultsToAll(t *testing.T) {
	c, _ := newTestConsole()

	c.exec("refresh")
	assert.Len(t, drainCommands(c.driver), 2*essentia.NumZones)

	c.exec("refresh 3")
	assert.Equal(t, []string{"*Z03CONSR\r", "*Z03SETSR\r"}, drainCommands(c.driver))
}

func TestConsole_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"unknown command", "launch 1", "unknown command: launch"},
		{"missing zone", "on", "usage: on <zone|all>"},
		{"bad zone", "on 9", "zone id out of range"},
		{"missing value", "vol 1", "usage: vol <zone|all> <value>"},
		{"bad value", "vol 1 loud", `invalid value "loud"`},
		{"out of range", "vol 1 -90", "Error:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out := newTestConsole()
			assert.False(t, c.exec(tt.line))
			assert.Contains(t, out.String(), tt.want)
			assert.Zero(t, c.driver.QueueLen())
		})
	}
}

func TestConsole_Show(t *testing.T) {
	c, out := newTestConsole()
	c.driver.Feed([]byte("#Z02PWROFF,SRC4,GRP1,VOL-30\r\n"))

	c.exec("show 2")
	assert.Contains(t, out.String(), "Zone 2: OFF")

	out.Reset()
	c.exec("show")
	assert.Contains(t, out.String(), "ZONE  POWER")
	assert.Contains(t, out.String(), "All on: false")
}

func TestConsole_Quit(t *testing.T) {
	c, _ := newTestConsole()

	assert.False(t, c.exec(""))
	assert.False(t, c.exec("help"))
	assert.True(t, c.exec("quit"))
	assert.True(t, c.exec("exit"))
}
