// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Thermoquad/essentia/pkg/essentia"
	"github.com/Thermoquad/essentia/pkg/transport"
)

const (
	reconnectInitialBackoff = 1 * time.Second
	reconnectMaxBackoff     = 30 * time.Second
)

// session keeps a driver attached to the amplifier connection
type session struct {
	driver *essentia.Driver

	mu       sync.RWMutex
	conn     transport.Conn
	connInfo string

	// Done when the background poller started by start exits
	running context.Context

	// Reconnect notifications (runReconnecting only)
	onLost      func(err error)
	onReconnect func(connInfo string)
}

// openSession opens the configured connection and creates a driver for it
func openSession(opts ...essentia.Option) (*session, error) {
	conn, connInfo, err := openConnection()
	if err != nil {
		return nil, err
	}

	opts = append([]essentia.Option{essentia.WithLogger(logger)}, opts...)
	return &session{
		driver:   essentia.NewDriver(opts...),
		conn:     conn,
		connInfo: connInfo,
	}, nil
}

func (s *session) getConn() (transport.Conn, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn, s.connInfo
}

func (s *session) setConn(conn transport.Conn, connInfo string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn = conn
	s.connInfo = connInfo
}

// poll runs the host loop on the current connection until ctx is done or
// the connection fails
func (s *session) poll(ctx context.Context) error {
	conn, _ := s.getConn()
	poller := essentia.NewPoller(s.driver, conn,
		essentia.WithPollInterval(cfg.TickInterval()),
		essentia.WithPollerLogger(logger),
	)
	return poller.Run(ctx)
}

// start runs poll in the background. The returned channel receives its
// result.
func (s *session) start(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	running, stop := context.WithCancel(ctx)
	s.running = running
	go func() {
		err := s.poll(ctx)
		stop()
		done <- err
	}()
	return done
}

// runReconnecting polls until ctx is done, reopening the connection with
// exponential backoff whenever it fails. The driver's zone cache survives
// reconnects; pending commands are dropped and a full refresh is queued.
func (s *session) runReconnecting(ctx context.Context) {
	for {
		err := s.poll(ctx)
		if ctx.Err() != nil {
			return
		}

		logger.Warn("connection lost", "error", err)
		if s.onLost != nil {
			s.onLost(err)
		}

		if !s.reconnect(ctx) {
			return
		}
	}
}

// reconnect returns false if ctx was cancelled before a connection was made
func (s *session) reconnect(ctx context.Context) bool {
	if conn, _ := s.getConn(); conn != nil {
		conn.Close()
	}

	backoff := reconnectInitialBackoff
	for {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}

		conn, connInfo, err := openConnection()
		if err == nil {
			s.setConn(conn, connInfo)
			s.driver.Reset()
			s.driver.Refresh()
			logger.Info("reconnected", "connection", connInfo)
			if s.onReconnect != nil {
				s.onReconnect(connInfo)
			}
			return true
		}
		logger.Debug("reconnect failed", "error", err, "retry_in", backoff)

		backoff *= 2
		if backoff > reconnectMaxBackoff {
			backoff = reconnectMaxBackoff
		}
	}
}

// close closes the connection, which also stops the poller's reader
func (s *session) close() {
	if conn, _ := s.getConn(); conn != nil {
		conn.Close()
	}
}

// drain waits until every queued command has been sent by the poller
// started with start
func (s *session) drain(ctx context.Context) error {
	if err := essentia.WaitDrained(s.running, s.driver, cfg.TickInterval()); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("connection closed with %d command(s) unsent", s.driver.QueueLen())
	}
	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
