// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Thermoquad/essentia/pkg/config"
)

const (
	handshakeTimeout = 10 * time.Second
	closeGrace       = time.Second
)

// wsConn streams a WebSocket serial bridge as bytes. Bridges frame the
// amplifier's ASCII as text or binary; writes mirror the type of the last
// frame received, binary until one arrives.
type wsConn struct {
	ws  *websocket.Conn
	url string

	// current inbound frame, owned by the reader
	frame io.Reader

	frameType atomic.Int32
	wmu       sync.Mutex
}

// DialWebSocket connects to a ws:// or wss:// bridge, sending HTTP Basic
// credentials when both username and password are set
func DialWebSocket(ctx context.Context, cfg config.WebSocketConfig) (Conn, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: cfg.NoSSLVerify}
	}

	var header http.Header
	if cfg.Username != "" && cfg.Password != "" {
		req := &http.Request{Header: http.Header{}}
		req.SetBasicAuth(cfg.Username, cfg.Password)
		header = req.Header
	}

	ws, resp, err := dialer.DialContext(ctx, cfg.URL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %w", err)
	}

	c := &wsConn{ws: ws, url: cfg.URL}
	c.frameType.Store(websocket.BinaryMessage)
	return c, nil
}

func (c *wsConn) String() string {
	return "WebSocket: " + c.url
}

// Read returns bytes from the current frame, moving to the next frame when
// it is exhausted
func (c *wsConn) Read(p []byte) (int, error) {
	for {
		if c.frame != nil {
			n, err := c.frame.Read(p)
			if errors.Is(err, io.EOF) {
				c.frame = nil
				if n == 0 {
					continue
				}
				err = nil
			}
			return n, err
		}

		mt, r, err := c.ws.NextReader()
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrClosed, err)
		}
		c.frameType.Store(int32(mt))
		c.frame = r
	}
}

func (c *wsConn) Write(p []byte) (int, error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.ws.WriteMessage(int(c.frameType.Load()), p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close sends a normal close frame before dropping the socket
func (c *wsConn) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace))
	return c.ws.Close()
}
