// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package essentia

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeTransport reads from a pipe fed by the test and records writes
type pipeTransport struct {
	r *io.PipeReader
	w *io.PipeWriter

	mu      sync.Mutex
	written bytes.Buffer
}

func newPipeTransport() *pipeTransport {
	r, w := io.Pipe()
	return &pipeTransport{r: r, w: w}
}

func (p *pipeTransport) Read(b []byte) (int, error) {
	return p.r.Read(b)
}

func (p *pipeTransport) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written.Write(b)
}

func (p *pipeTransport) Written() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written.String()
}

func TestPoller_Tick(t *testing.T) {
	d := NewDriver()
	tr := newPipeTransport()
	p := NewPoller(d, tr)

	require.NoError(t, d.PowerOff(1))
	require.NoError(t, d.SetVolume(2, -20))
	p.data <- []byte("#Z01PWROFF,SRC1,")
	p.data <- []byte("GRP1,VOL-40\r")

	require.NoError(t, p.Tick())
	assert.False(t, d.Power(1), "received report should be applied before draining")
	assert.Equal(t, -40, d.Volume(1))
	assert.Equal(t, "*Z01OFF\r", tr.Written())
	assert.Equal(t, 1, d.QueueLen())

	require.NoError(t, p.Tick())
	assert.Equal(t, "*Z01OFF\r*Z02VOL20\r", tr.Written())

	// Empty queue, nothing received
	require.NoError(t, p.Tick())
	assert.Equal(t, "*Z01OFF\r*Z02VOL20\r", tr.Written())
}

func TestPoller_Run(t *testing.T) {
	d := NewDriver()
	tr := newPipeTransport()
	p := NewPoller(d, tr, WithPollInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	d.Refresh()
	_, err := tr.w.Write([]byte("#Z04PWRON,SRC5,GRP2,VOL-12\r\n#Z04ORSTR,BASS+02,TREB-01,GRP2,VRST0\r\n"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return d.QueueEmpty() && d.Source(4) == 5 && d.Bass(4) == 2
	}, 2*time.Second, time.Millisecond)

	assert.Equal(t, -12, d.Volume(4))
	assert.Equal(t, uint64(2*NumZones), d.Statistics().Snapshot().CommandsSent)

	cancel()
	require.NoError(t, <-done)
	_ = tr.w.Close()
}

func TestPoller_RunTransportError(t *testing.T) {
	d := NewDriver()
	tr := newPipeTransport()
	p := NewPoller(d, tr, WithPollInterval(time.Hour))

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	_, err := tr.w.Write([]byte("#Z06PWROFF,SRC1,GRP1,VOL-10\r"))
	require.NoError(t, err)
	failure := errors.New("unplugged")
	_ = tr.w.CloseWithError(failure)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, failure)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after transport failure")
	}
	assert.False(t, d.Power(6), "bytes received before the failure should be fed")
}

func TestWaitDrained(t *testing.T) {
	d := NewDriver()
	require.NoError(t, WaitDrained(context.Background(), d, time.Millisecond))

	require.NoError(t, d.PowerOn(1))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, WaitDrained(ctx, d, time.Millisecond), context.DeadlineExceeded)

	go func() {
		time.Sleep(5 * time.Millisecond)
		d.NextCommand()
	}()
	require.NoError(t, WaitDrained(context.Background(), d, time.Millisecond))
}

// slowTransport delays every write and counts the ones that completed
type slowTransport struct {
	*pipeTransport
	delay     time.Duration
	completed atomic.Int32
}

func (s *slowTransport) Write(b []byte) (int, error) {
	time.Sleep(s.delay)
	n, err := s.pipeTransport.Write(b)
	s.completed.Add(1)
	return n, err
}

func TestWaitDrained_WaitsForWriteInFlight(t *testing.T) {
	d := NewDriver()
	tr := &slowTransport{pipeTransport: newPipeTransport(), delay: 100 * time.Millisecond}
	defer tr.w.Close()

	require.NoError(t, d.PowerOn(3))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := NewPoller(d, tr, WithPollInterval(time.Millisecond))
	go p.Run(ctx)

	require.Eventually(t, func() bool { return d.QueueEmpty() }, time.Second, time.Millisecond)
	assert.False(t, d.Idle(), "queue is empty but the write has not returned")

	require.NoError(t, WaitDrained(context.Background(), d, time.Millisecond))
	assert.EqualValues(t, 1, tr.completed.Load())
	assert.Equal(t, "*Z03ON\r", tr.Written())
}
