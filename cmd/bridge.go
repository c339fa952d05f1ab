// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/essentia/pkg/essentia"
	"github.com/Thermoquad/essentia/pkg/mqttbridge"
)

var (
	bridgeHost    string
	bridgePort    int
	bridgePrefix  string
	bridgeRefresh int
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Expose the amplifier's zones over MQTT",
	Long: `Run a long-lived bridge between the amplifier and an MQTT broker.

Topics (prefix defaults to "essentia"):
  <prefix>/status           online/offline (retained, last will)
  <prefix>/zone/N/state     zone state as JSON (retained)
  <prefix>/zone/N/set       JSON command for zone N
  <prefix>/all/set          JSON command for every zone
  <prefix>/refresh          request state of every zone

Command payloads set any of: power ("ON"/"OFF"), source, group, volume,
bass, treble, mute (bool) and refresh (bool), e.g.
  {"power": "ON", "volume": -40}

The amplifier connection is reopened automatically if it fails. Broker
settings come from the config file's mqtt section, ESSENTIA_MQTT_*
environment variables, or the flags below.`,
	RunE: runBridge,
}

func init() {
	f := bridgeCmd.Flags()
	f.StringVar(&bridgeHost, "mqtt-host", "", "MQTT broker host")
	f.IntVar(&bridgePort, "mqtt-port", 0, "MQTT broker port")
	f.StringVar(&bridgePrefix, "prefix", "", "Topic prefix")
	f.IntVar(&bridgeRefresh, "refresh", -1, "Seconds between full state refreshes (0 disables)")
	rootCmd.AddCommand(bridgeCmd)
}

func runBridge(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if flags.Changed("mqtt-host") {
		cfg.MQTT.Broker.Host = bridgeHost
	}
	if flags.Changed("mqtt-port") {
		cfg.MQTT.Broker.Port = bridgePort
	}
	if flags.Changed("prefix") {
		cfg.MQTT.TopicPrefix = bridgePrefix
	}
	if flags.Changed("refresh") {
		cfg.Poll.RefreshInterval = bridgeRefresh
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	client, err := mqttbridge.Connect(cfg.MQTT, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	var bridge *mqttbridge.Bridge
	s, err := openSession(essentia.WithZoneUpdateHandler(func(z essentia.Zone, r essentia.Report) {
		bridge.OnZoneUpdate(z, r)
	}))
	if err != nil {
		return err
	}
	defer s.close()

	bridge = mqttbridge.New(client, s.driver, cfg.MQTT.TopicPrefix, byte(cfg.MQTT.QoS), logger)
	if err := bridge.Start(); err != nil {
		return err
	}
	client.SetOnConnect(func() {
		if err := bridge.PublishAll(); err != nil {
			logger.Warn("failed to publish zone state", "error", err)
		}
	})

	ctx, cancel := signalContext()
	defer cancel()

	s.driver.Refresh()
	if every := cfg.RefreshEvery(); every > 0 {
		go refreshLoop(ctx, s.driver, every)
	}

	_, connInfo := s.getConn()
	fmt.Printf("Bridging %s to %s (prefix %q)\n", connInfo, cfg.BrokerURL(), cfg.MQTT.TopicPrefix)
	logger.Info("bridge started", "connection", connInfo, "broker", cfg.BrokerURL())

	s.runReconnecting(ctx)

	fmt.Println("Bridge stopped")
	return nil
}

// refreshLoop queues a full refresh every interval until ctx is done
func refreshLoop(ctx context.Context, d *essentia.Driver, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if d.QueueEmpty() {
				d.Refresh()
			}
		}
	}
}
