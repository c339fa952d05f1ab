// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package transport opens the byte stream to an Essentia amplifier, either
// its RS-232 control port or a serial-over-WebSocket bridge.
package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/Thermoquad/essentia/pkg/config"
)

var (
	// ErrClosed is returned once the remote side of the link has gone away
	ErrClosed = errors.New("transport closed")

	// ErrNotConfigured means neither a serial port nor a WebSocket URL is set
	ErrNotConfigured = errors.New("no serial port or WebSocket URL configured")
)

// Conn is an open link to the amplifier. String describes the link for
// status output.
type Conn interface {
	io.ReadWriteCloser
	fmt.Stringer
}

// PasswordFunc supplies the bridge password when the configuration has a
// username but no password
type PasswordFunc func() (string, error)

// Open dials the link described by cfg. A WebSocket URL takes precedence
// over a serial port.
func Open(ctx context.Context, cfg config.Config, password PasswordFunc) (Conn, error) {
	if cfg.WebSocket.URL != "" {
		ws := cfg.WebSocket
		if ws.Username != "" && ws.Password == "" && password != nil {
			pw, err := password()
			if err != nil {
				return nil, err
			}
			ws.Password = pw
		}
		return DialWebSocket(ctx, ws)
	}
	if cfg.Serial.Port != "" {
		return OpenSerial(cfg.Serial)
	}
	return nil, ErrNotConfigured
}

// PromptPassword writes a prompt to out and reads one line from in. Echo is
// disabled when in is a terminal.
func PromptPassword(in *os.File, out io.Writer) (string, error) {
	fmt.Fprint(out, "Password: ")
	defer fmt.Fprintln(out)

	if fd := int(in.Fd()); term.IsTerminal(fd) {
		pw, err := term.ReadPassword(fd)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
