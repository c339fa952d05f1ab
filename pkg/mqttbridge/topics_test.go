// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mqttbridge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/essentia/pkg/config"
)

func TestTopics(t *testing.T) {
	tp := Topics{Prefix: "home/amp"}

	assert.Equal(t, "home/amp/status", tp.Status())
	assert.Equal(t, "home/amp/zone/4/state", tp.ZoneState(4))
	assert.Equal(t, "home/amp/zone/4/set", tp.ZoneSet(4))
	assert.Equal(t, "home/amp/zone/+/set", tp.ZoneSetFilter())
	assert.Equal(t, "home/amp/all/set", tp.AllSet())
	assert.Equal(t, "home/amp/refresh", tp.Refresh())
}

func TestTopics_ParseZoneSet(t *testing.T) {
	tp := Topics{Prefix: "amp"}

	for id := 1; id <= 6; id++ {
		got, err := tp.ParseZoneSet(tp.ZoneSet(id))
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}

	for _, topic := range []string{
		"amp/zone/0/set",
		"amp/zone/7/set",
		"amp/zone/x/set",
		"amp/zone/1/state",
		"other/zone/1/set",
		"amp/all/set",
	} {
		_, err := tp.ParseZoneSet(topic)
		assert.ErrorIs(t, err, ErrInvalidTopic, topic)
	}
}

func TestClientID(t *testing.T) {
	a := ClientID("essentia")
	b := ClientID("essentia")

	assert.True(t, strings.HasPrefix(a, "essentia-"))
	assert.Len(t, a, len("essentia-")+8)
	assert.NotEqual(t, a, b)
}

func TestBuildClientOptions(t *testing.T) {
	cfg := config.Default().MQTT
	cfg.Broker.TLS = true
	cfg.Auth.Username = "amp"
	cfg.Auth.Password = "pw"

	opts := buildClientOptions(cfg, Topics{Prefix: cfg.TopicPrefix})

	require.Len(t, opts.Servers, 1)
	assert.Equal(t, "ssl", opts.Servers[0].Scheme)
	assert.Equal(t, "localhost:1883", opts.Servers[0].Host)
	assert.Equal(t, "amp", opts.Username)
	assert.True(t, opts.WillEnabled)
	assert.Equal(t, "essentia/status", opts.WillTopic)
	assert.True(t, opts.WillRetained)
	assert.NotNil(t, opts.TLSConfig)
	assert.True(t, strings.HasPrefix(opts.ClientID, "essentia-"))
}
