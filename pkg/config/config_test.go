// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "essentia.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
serial:
  port: /dev/ttyUSB0
  baud: 19200
poll:
  tick_ms: 100
mqtt:
  broker:
    host: broker.local
    port: 8883
    tls: true
  topic_prefix: house/amp
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Equal(t, 19200, cfg.Serial.Baud)
	assert.Equal(t, 100*time.Millisecond, cfg.TickInterval())
	assert.Equal(t, "ssl://broker.local:8883", cfg.BrokerURL())
	assert.Equal(t, "house/amp", cfg.MQTT.TopicPrefix)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Unset keys keep their defaults
	assert.Equal(t, 1, cfg.MQTT.QoS)
	assert.Equal(t, "essentia", cfg.MQTT.Broker.ClientID)
	assert.Equal(t, time.Minute, cfg.RefreshEvery())
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Serial.Baud, cfg.Serial.Baud)
	assert.Equal(t, "tcp://localhost:1883", cfg.BrokerURL())
	assert.Equal(t, 50*time.Millisecond, cfg.TickInterval())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/essentia.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "serial: [port: broken")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ESSENTIA_SERIAL_PORT", "/dev/ttyAMA0")
	t.Setenv("ESSENTIA_SERIAL_BAUD", "38400")
	t.Setenv("ESSENTIA_MQTT_HOST", "mqtt.example")
	t.Setenv("ESSENTIA_MQTT_PASSWORD", "secret")
	t.Setenv("ESSENTIA_LOG_LEVEL", "error")

	path := writeConfig(t, `
serial:
  port: /dev/ttyUSB0
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyAMA0", cfg.Serial.Port)
	assert.Equal(t, 38400, cfg.Serial.Baud)
	assert.Equal(t, "mqtt.example", cfg.MQTT.Broker.Host)
	assert.Equal(t, "secret", cfg.MQTT.Auth.Password)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"zero baud", func(c *Config) { c.Serial.Baud = 0 }, "serial.baud"},
		{"bad websocket scheme", func(c *Config) { c.WebSocket.URL = "http://host" }, "websocket.url"},
		{"tick too small", func(c *Config) { c.Poll.TickMS = 0 }, "poll.tick_ms"},
		{"negative refresh", func(c *Config) { c.Poll.RefreshInterval = -1 }, "poll.refresh_interval"},
		{"qos", func(c *Config) { c.MQTT.QoS = 3 }, "mqtt.qos"},
		{"port", func(c *Config) { c.MQTT.Broker.Port = 70000 }, "mqtt.broker.port"},
		{"wildcard prefix", func(c *Config) { c.MQTT.TopicPrefix = "amp/#" }, "mqtt.topic_prefix"},
		{"empty prefix", func(c *Config) { c.MQTT.TopicPrefix = "" }, "mqtt.topic_prefix"},
		{"reconnect order", func(c *Config) { c.MQTT.Reconnect.MaxDelay = 0 }, "mqtt.reconnect"},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Serial.Baud = -1
	cfg.MQTT.QoS = 5
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serial.baud")
	assert.Contains(t, err.Error(), "mqtt.qos")
}
