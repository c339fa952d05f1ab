// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"fmt"

	"go.bug.st/serial"

	"github.com/Thermoquad/essentia/pkg/config"
)

type serialConn struct {
	serial.Port
	name string
	baud int
}

func (c *serialConn) String() string {
	return fmt.Sprintf("Serial: %s @ %d baud", c.name, c.baud)
}

// OpenSerial opens the amplifier's control port at 8N1 and drops anything
// buffered from before the open
func OpenSerial(cfg config.SerialConfig) (Conn, error) {
	port, err := serial.Open(cfg.Port, &serial.Mode{
		BaudRate: cfg.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Port, err)
	}
	if err := port.ResetInputBuffer(); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to flush serial port %s: %w", cfg.Port, err)
	}
	return &serialConn{Port: port, name: cfg.Port, baud: cfg.Baud}, nil
}
