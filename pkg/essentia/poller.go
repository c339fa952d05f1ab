// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package essentia

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"
)

// DefaultPollInterval is the default time between poll ticks
const DefaultPollInterval = 50 * time.Millisecond

// Transport is the byte stream to the amplifier (serial port, WebSocket
// bridge, ...)
type Transport interface {
	io.Reader
	io.Writer
}

// Poller runs the host loop for a Driver.
//
// A reader goroutine collects bytes from the transport. On every tick the
// poller feeds everything received since the previous tick into the driver
// and then drains at most one queued command to the transport.
type Poller struct {
	driver    *Driver
	transport Transport
	interval  time.Duration
	logger    *slog.Logger

	data chan []byte
	errs chan error
}

// PollerOption configures a Poller
type PollerOption func(*Poller)

// WithPollInterval sets the tick interval
func WithPollInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithPollerLogger sets the poller's logger
func WithPollerLogger(logger *slog.Logger) PollerOption {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPoller creates a poller for driver d on transport t
func NewPoller(d *Driver, t Transport, opts ...PollerOption) *Poller {
	p := &Poller{
		driver:    d,
		transport: t,
		interval:  DefaultPollInterval,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		data:      make(chan []byte, 64),
		errs:      make(chan error, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls until ctx is cancelled or the transport fails.
// Returns nil on cancellation. The reader goroutine exits once the
// transport's Read returns, so callers should close the transport after
// Run returns.
func (p *Poller) Run(ctx context.Context) error {
	go p.readLoop(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-p.errs:
			// Feed whatever arrived before the failure
			p.feedPending()
			return err
		case <-ticker.C:
			if err := p.Tick(); err != nil {
				return err
			}
		}
	}
}

// Tick feeds pending received bytes into the driver, then drains one
// command to the transport
func (p *Poller) Tick() error {
	p.feedPending()
	_, err := p.driver.Drain(p.transport)
	return err
}

func (p *Poller) feedPending() {
	for {
		select {
		case chunk := <-p.data:
			p.driver.Feed(chunk)
		default:
			return
		}
	}
}

func (p *Poller) readLoop(ctx context.Context) {
	buf := make([]byte, 128)
	for {
		n, err := p.transport.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case p.data <- chunk:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				p.logger.Debug("transport closed")
			} else {
				p.logger.Warn("read error", "error", err)
			}
			select {
			case p.errs <- err:
			default:
			}
			return
		}
	}
}

// WaitDrained blocks until the driver's queue is empty and the last
// drained command has been written, or ctx is done
func WaitDrained(ctx context.Context, d *Driver, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for !d.Idle() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
