// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Thermoquad/essentia/pkg/transport"
)

const dialTimeout = 15 * time.Second

// openConnection dials the amplifier link from the loaded configuration. A
// prompted password is kept in cfg so reconnects do not ask again.
func openConnection() (transport.Conn, string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	conn, err := transport.Open(ctx, *cfg, func() (string, error) {
		pw, err := transport.PromptPassword(os.Stdin, os.Stderr)
		if err == nil {
			cfg.WebSocket.Password = pw
		}
		return pw, err
	})
	if errors.Is(err, transport.ErrNotConfigured) {
		return nil, "", fmt.Errorf("either --port or --url must be specified")
	}
	if err != nil {
		return nil, "", err
	}
	return conn, conn.String(), nil
}
