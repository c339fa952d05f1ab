// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package mqttbridge exposes the amplifier's zones over MQTT.
//
// Zone state is published as retained JSON whenever the amplifier reports
// a change. Set requests received on the command topics are turned into
// queued driver commands; the state topics only change once the amplifier
// confirms the new state.
package mqttbridge

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Thermoquad/essentia/pkg/essentia"
)

// Driver is the driver surface used by the bridge
type Driver interface {
	Target
	Zones() [essentia.NumZones]essentia.Zone
	Refresh()
}

// Bridge connects a driver to a broker
type Bridge struct {
	broker Broker
	driver Driver
	topics Topics
	qos    byte
	logger *slog.Logger
}

// New creates a bridge publishing under prefix
func New(broker Broker, driver Driver, prefix string, qos byte, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Bridge{
		broker: broker,
		driver: driver,
		topics: Topics{Prefix: prefix},
		qos:    qos,
		logger: logger,
	}
}

// Topics returns the bridge's topic builder
func (b *Bridge) Topics() Topics {
	return b.topics
}

// Start subscribes to the command topics and publishes the current state
// of every zone
func (b *Bridge) Start() error {
	subs := []struct {
		topic   string
		handler MessageHandler
	}{
		{b.topics.ZoneSetFilter(), b.handleZoneSet},
		{b.topics.AllSet(), b.handleAllSet},
		{b.topics.Refresh(), b.handleRefresh},
	}
	for _, s := range subs {
		if err := b.broker.Subscribe(s.topic, b.qos, s.handler); err != nil {
			return fmt.Errorf("subscribing to %s: %w", s.topic, err)
		}
	}
	return b.PublishAll()
}

// PublishZone publishes one zone's retained state
func (b *Bridge) PublishZone(z essentia.Zone) error {
	payload, err := StatePayload(z)
	if err != nil {
		return err
	}
	return b.broker.Publish(b.topics.ZoneState(z.ID), payload, b.qos, true)
}

// PublishAll publishes the retained state of every zone
func (b *Bridge) PublishAll() error {
	for _, z := range b.driver.Zones() {
		if err := b.PublishZone(z); err != nil {
			return err
		}
	}
	return nil
}

// OnZoneUpdate is an essentia.ZoneUpdateHandler that publishes the
// updated zone
func (b *Bridge) OnZoneUpdate(z essentia.Zone, _ essentia.Report) {
	if err := b.PublishZone(z); err != nil {
		b.logger.Warn("failed to publish zone state", "zone", z.ID, "error", err)
	}
}

func (b *Bridge) handleZoneSet(topic string, payload []byte) error {
	id, err := b.topics.ParseZoneSet(topic)
	if err != nil {
		return err
	}
	cmd, err := ParseCommand(payload)
	if err != nil {
		return err
	}
	b.logger.Debug("zone set", "zone", id, "payload", string(payload))
	return cmd.Apply(b.driver, id)
}

func (b *Bridge) handleAllSet(_ string, payload []byte) error {
	cmd, err := ParseCommand(payload)
	if err != nil {
		return err
	}
	b.logger.Debug("all set", "payload", string(payload))
	return cmd.Apply(b.driver, allZones()...)
}

func (b *Bridge) handleRefresh(_ string, _ []byte) error {
	b.logger.Debug("refresh requested")
	b.driver.Refresh()
	return nil
}

func allZones() []int {
	ids := make([]int, essentia.NumZones)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids
}
