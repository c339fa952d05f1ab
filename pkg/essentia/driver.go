// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package essentia

import (
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
)

// ZoneUpdateHandler is called after a report has been applied to a zone.
// It runs on the goroutine that fed the bytes and must not block.
type ZoneUpdateHandler func(z Zone, r Report)

// LineHandler is called for every non-empty received line with its decode
// result; r is nil when err is set. It runs on the goroutine that fed the
// bytes and must not block.
type LineHandler func(line string, r Report, err error)

// Driver ties the line framer, report decoder, zone cache and command
// queue together.
//
// Getters only read the cache and never talk to the amplifier. Setters
// validate their input and queue a command; the cache changes later, when
// the amplifier reports the new state. A setter that fails validation
// queues nothing and returns the validation error.
//
// The host is expected to feed received bytes with Feed and to call Drain
// once per poll tick, so that at most one command is in flight.
type Driver struct {
	framer *LineFramer
	zones  *ZoneStore
	queue  *CommandQueue
	stats  *Statistics
	logger *slog.Logger

	onUpdate ZoneUpdateHandler
	onLine   LineHandler

	// Drain calls between dequeue and write completion
	sending atomic.Int32
}

// Option configures a Driver
type Option func(*Driver)

// WithLogger sets the logger used for protocol traces
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithStatistics sets the statistics tracker
func WithStatistics(stats *Statistics) Option {
	return func(d *Driver) {
		if stats != nil {
			d.stats = stats
		}
	}
}

// WithZoneUpdateHandler registers a callback for cache updates
func WithZoneUpdateHandler(fn ZoneUpdateHandler) Option {
	return func(d *Driver) {
		d.onUpdate = fn
	}
}

// WithLineHandler registers a callback for received lines
func WithLineHandler(fn LineHandler) Option {
	return func(d *Driver) {
		d.onLine = fn
	}
}

// NewDriver creates a driver with every zone at its defaults and an empty
// command queue
func NewDriver(opts ...Option) *Driver {
	d := &Driver{
		framer: NewLineFramer(),
		zones:  NewZoneStore(),
		queue:  NewCommandQueue(),
		stats:  NewStatistics(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Statistics returns the driver's statistics tracker
func (d *Driver) Statistics() *Statistics {
	return d.stats
}

// Reset drops pending commands and any partially received line.
// The zone cache is kept.
func (d *Driver) Reset() {
	d.queue.Clear()
	d.framer.Reset()
}

//////////////////////////////////////////////////////////////
// Inbound
//////////////////////////////////////////////////////////////

// FeedByte passes one received byte to the line framer and handles the
// line it completes, if any
func (d *Driver) FeedByte(b byte) {
	line, ok := d.framer.FeedByte(b)
	if !ok {
		return
	}
	d.stats.RecordTruncated(d.framer.Truncated())
	d.HandleLine(line)
}

// Feed passes a chunk of received bytes to the driver
func (d *Driver) Feed(p []byte) {
	for _, b := range p {
		d.FeedByte(b)
	}
}

// HandleLine decodes one complete line and applies it to the cache.
// Empty lines are ignored; lines that fail to decode are discarded.
func (d *Driver) HandleLine(line string) {
	if line == "" {
		return
	}
	d.logger.Debug("received", "line", line)

	report, err := Decode(line)
	d.stats.RecordLine(report, err)
	if d.onLine != nil {
		d.onLine(line, report, err)
	}
	if err != nil {
		d.logger.Debug("discarded line", "line", line, "error", err)
		return
	}

	z, ok := d.zones.Apply(report)
	if !ok {
		return
	}
	d.logger.Debug("zone updated", "zone", z.ID, "report", FormatReport(report))
	if d.onUpdate != nil {
		d.onUpdate(z, report)
	}
}

//////////////////////////////////////////////////////////////
// Outbound
//////////////////////////////////////////////////////////////

// NextCommand removes the next pending command from the queue
func (d *Driver) NextCommand() (string, bool) {
	return d.queue.DrainOne()
}

// Drain writes at most one pending command to w.
// Returns the command written, or "" when the queue was empty. A command
// that fails to write is not requeued.
func (d *Driver) Drain(w io.Writer) (string, error) {
	d.sending.Add(1)
	defer d.sending.Add(-1)

	cmd, ok := d.queue.DrainOne()
	if !ok {
		return "", nil
	}
	if _, err := io.WriteString(w, cmd); err != nil {
		return cmd, fmt.Errorf("failed to send %s: %w", DescribeCommand(cmd), err)
	}
	d.stats.RecordCommand()
	d.logger.Debug("sent", "command", DescribeCommand(cmd))
	return cmd, nil
}

// QueueEmpty reports whether no command is pending
func (d *Driver) QueueEmpty() bool {
	return d.queue.IsEmpty()
}

// Idle reports whether no command is pending and none is still being
// written by Drain
func (d *Driver) Idle() bool {
	return d.queue.IsEmpty() && d.sending.Load() == 0
}

// QueueLen returns the number of pending commands
func (d *Driver) QueueLen() int {
	return d.queue.Len()
}

func (d *Driver) enqueue(cmd string, err error) error {
	if err != nil {
		d.stats.RecordRejected()
		d.logger.Warn("command rejected", "error", err)
		return err
	}
	d.queue.Enqueue(cmd)
	return nil
}

//////////////////////////////////////////////////////////////
// Getters
//////////////////////////////////////////////////////////////

// Zone returns the cached state of a zone. An invalid id yields a
// default zone with ID 0.
func (d *Driver) Zone(id int) Zone {
	z, ok := d.zones.Get(id)
	if !ok {
		d.logger.Warn("invalid zone id", "zone", id)
		return DefaultZone(0)
	}
	return z
}

// Zones returns the cached state of every zone in ascending id order
func (d *Driver) Zones() [NumZones]Zone {
	return d.zones.All()
}

// Power reports whether a zone is on; false for an invalid id
func (d *Driver) Power(id int) bool {
	z, ok := d.zones.Get(id)
	return ok && z.On()
}

// Source returns a zone's input; 1 for an invalid id
func (d *Driver) Source(id int) int {
	z, ok := d.zones.Get(id)
	if !ok {
		return InvalidZoneSource
	}
	return z.Source
}

// Group returns a zone's group; 1 for an invalid id
func (d *Driver) Group(id int) int {
	z, ok := d.zones.Get(id)
	if !ok {
		return InvalidZoneGroup
	}
	return z.Group
}

// Volume returns a zone's volume in dB; -62 for an invalid id
func (d *Driver) Volume(id int) int {
	z, ok := d.zones.Get(id)
	if !ok {
		return InvalidZoneVolume
	}
	return z.Volume
}

// Bass returns a zone's bass level; 0 for an invalid id
func (d *Driver) Bass(id int) int {
	z, _ := d.zones.Get(id)
	return z.Bass
}

// Treble returns a zone's treble level; 0 for an invalid id
func (d *Driver) Treble(id int) int {
	z, _ := d.zones.Get(id)
	return z.Treble
}

// Mute reports whether a zone is muted; false for an invalid id
func (d *Driver) Mute(id int) bool {
	z, _ := d.zones.Get(id)
	return z.Mute
}

// Vrst returns a zone's reported VRST value; 0 for an invalid id
func (d *Driver) Vrst(id int) int {
	z, _ := d.zones.Get(id)
	return z.Vrst
}

// AllOn reports whether no zone is off
func (d *Driver) AllOn() bool {
	for _, z := range d.zones.All() {
		if z.Power == PowerOff {
			return false
		}
	}
	return true
}

// AllMute reports whether every zone that is on is muted.
// Zones that are off are not considered.
func (d *Driver) AllMute() bool {
	for _, z := range d.zones.All() {
		if z.On() && !z.Mute {
			return false
		}
	}
	return true
}

//////////////////////////////////////////////////////////////
// Setters
//////////////////////////////////////////////////////////////

// PowerOn queues an ON command
func (d *Driver) PowerOn(id int) error {
	return d.enqueue(PowerOnCommand(id))
}

// PowerOff queues an OFF command
func (d *Driver) PowerOff(id int) error {
	return d.enqueue(PowerOffCommand(id))
}

// SetSource queues a SRC command
func (d *Driver) SetSource(id int, v float64) error {
	return d.enqueue(SourceCommand(id, v))
}

// SetGroup queues a GRP command
func (d *Driver) SetGroup(id int, v float64) error {
	return d.enqueue(GroupCommand(id, v))
}

// SetVolume queues a VOL command
func (d *Driver) SetVolume(id int, v float64) error {
	return d.enqueue(VolumeCommand(id, v))
}

// SetBass queues a BASS command
func (d *Driver) SetBass(id int, v float64) error {
	return d.enqueue(BassCommand(id, v))
}

// SetTreble queues a TREB command
func (d *Driver) SetTreble(id int, v float64) error {
	return d.enqueue(TrebleCommand(id, v))
}

// MuteOn queues an MTON command
func (d *Driver) MuteOn(id int) error {
	return d.enqueue(MuteOnCommand(id))
}

// MuteOff queues an MTOFF command
func (d *Driver) MuteOff(id int) error {
	return d.enqueue(MuteOffCommand(id))
}

// RequestConnectState queues a CONSR request
func (d *Driver) RequestConnectState(id int) error {
	return d.enqueue(ConnectStateRequest(id))
}

// RequestZoneState queues a SETSR request
func (d *Driver) RequestZoneState(id int) error {
	return d.enqueue(ZoneStateRequest(id))
}

// RefreshZone queues a connect-state request followed by a zone-state
// request for one zone
func (d *Driver) RefreshZone(id int) error {
	if !ValidZone(id) {
		return d.enqueue("", fmt.Errorf("%w: %d", ErrInvalidZone, id))
	}
	if err := d.RequestConnectState(id); err != nil {
		return err
	}
	return d.RequestZoneState(id)
}

// Refresh queues state requests for every zone
func (d *Driver) Refresh() {
	d.forEachZone(d.RefreshZone)
}

// SetAllOn queues ON for every zone
func (d *Driver) SetAllOn() {
	d.forEachZone(d.PowerOn)
}

// SetAllOff queues OFF for every zone
func (d *Driver) SetAllOff() {
	d.forEachZone(d.PowerOff)
}

// SetAllMute queues MTON for every zone
func (d *Driver) SetAllMute() {
	d.forEachZone(d.MuteOn)
}

// SetAllUnmute queues MTOFF for every zone
func (d *Driver) SetAllUnmute() {
	d.forEachZone(d.MuteOff)
}

// SetAllVolume queues VOL for every zone.
// An out-of-range level queues nothing.
func (d *Driver) SetAllVolume(v float64) error {
	if _, err := VolumeCommand(1, v); err != nil {
		return d.enqueue("", err)
	}
	d.forEachZone(func(id int) error { return d.SetVolume(id, v) })
	return nil
}

func (d *Driver) forEachZone(fn func(id int) error) {
	for id := 1; id <= NumZones; id++ {
		_ = fn(id)
	}
}
