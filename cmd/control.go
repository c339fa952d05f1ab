// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/essentia/pkg/essentia"
)

var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Interactive TUI for controlling amplifier zones",
	Long: `Control an Essentia amplifier via an interactive terminal UI.

Features:
  - Live state of all six zones
  - Power, mute, source, group, volume and tone control
  - Statistics tracking
  - Event logging
  - Automatic reconnection on connection loss

Arrow keys select a zone. Press 'p' to toggle power, 'm' to toggle mute,
'+'/'-' to step the volume, or 'v', 's', 'g', 'b', 't' to enter a value
for volume, source, group, bass or treble. 'r' refreshes the selected zone,
'R' refreshes all zones.

Supports both serial and WebSocket connections.`,
	RunE: runControl,
}

func init() {
	rootCmd.AddCommand(controlCmd)
}

func runControl(cmd *cobra.Command, args []string) error {
	var p *tea.Program
	send := func(msg tea.Msg) {
		if p != nil {
			p.Send(msg)
		}
	}

	s, err := openSession(
		essentia.WithZoneUpdateHandler(func(z essentia.Zone, r essentia.Report) {
			send(zoneUpdateMsg{zone: z, report: r})
		}),
		essentia.WithLineHandler(func(line string, r essentia.Report, err error) {
			if err != nil {
				send(discardedLineMsg{line: line, err: err})
			}
		}),
	)
	if err != nil {
		return err
	}
	defer s.close()

	_, connInfo := s.getConn()
	m := initialControlModel(s.driver, connInfo)
	p = tea.NewProgram(m, tea.WithAltScreen())

	s.onLost = func(err error) { p.Send(connectionLostMsg{err: err}) }
	s.onReconnect = func(connInfo string) { p.Send(reconnectedMsg{connInfo: connInfo}) }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.driver.Refresh()
	go s.runReconnecting(ctx)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
