// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mqttbridge

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Thermoquad/essentia/pkg/essentia"
)

// Topics builds the bridge topic names under a common prefix:
//
//	<prefix>/status              online/offline (retained, LWT)
//	<prefix>/zone/<id>/state     zone state JSON (retained)
//	<prefix>/zone/<id>/set       zone command JSON
//	<prefix>/all/set             command JSON applied to every zone
//	<prefix>/refresh             any payload queues a full refresh
type Topics struct {
	Prefix string
}

// Status returns the availability topic
func (t Topics) Status() string {
	return t.Prefix + "/status"
}

// ZoneState returns the state topic for a zone
func (t Topics) ZoneState(id int) string {
	return fmt.Sprintf("%s/zone/%d/state", t.Prefix, id)
}

// ZoneSet returns the command topic for a zone
func (t Topics) ZoneSet(id int) string {
	return fmt.Sprintf("%s/zone/%d/set", t.Prefix, id)
}

// ZoneSetFilter returns the subscription filter matching every zone command topic
func (t Topics) ZoneSetFilter() string {
	return t.Prefix + "/zone/+/set"
}

// AllSet returns the command topic for all zones
func (t Topics) AllSet() string {
	return t.Prefix + "/all/set"
}

// Refresh returns the refresh request topic
func (t Topics) Refresh() string {
	return t.Prefix + "/refresh"
}

// ParseZoneSet extracts the zone id from a zone command topic
func (t Topics) ParseZoneSet(topic string) (int, error) {
	rest, ok := strings.CutPrefix(topic, t.Prefix+"/zone/")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTopic, topic)
	}
	idStr, ok := strings.CutSuffix(rest, "/set")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTopic, topic)
	}
	id, err := strconv.Atoi(idStr)
	if err != nil || !essentia.ValidZone(id) {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidTopic, topic, essentia.ErrInvalidZone)
	}
	return id, nil
}
