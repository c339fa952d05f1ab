// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package essentia

import (
	"fmt"
	"strings"
)

// FormatReport formats a decoded report into a one-line summary
func FormatReport(r Report) string {
	switch v := r.(type) {
	case ConnectReport:
		vol := fmt.Sprintf("%d dB", v.Volume)
		if v.Muted {
			vol = "MUTED"
		}
		return fmt.Sprintf("CONNECT_STATE zone=%d power=%s source=%d group=%d volume=%s",
			v.Zone, v.Power, v.Source, v.Group, vol)
	case ZoneReport:
		return fmt.Sprintf("ZONE_STATE zone=%d bass=%+d treble=%+d group=%d vrst=%d",
			v.Zone, v.Bass, v.Treble, v.Group, v.Vrst)
	default:
		return "UNKNOWN"
	}
}

// verbNames maps command verbs to display names, longest verbs first so
// that prefix matching picks OFF over ON and MTOFF over MTON
var verbNames = []struct {
	verb string
	name string
}{
	{VerbConnectStateReq, "CONNECT_STATE_REQUEST"},
	{VerbZoneStateRequest, "ZONE_STATE_REQUEST"},
	{VerbMuteOff, "MUTE_OFF"},
	{VerbMuteOn, "MUTE_ON"},
	{VerbTreble, "TREBLE"},
	{VerbBass, "BASS"},
	{VerbVolume, "VOLUME"},
	{VerbSource, "SOURCE"},
	{VerbGroup, "GROUP"},
	{VerbPowerOff, "POWER_OFF"},
	{VerbPowerOn, "POWER_ON"},
}

// DescribeCommand returns a human-readable form of an encoded command,
// e.g. "VOLUME zone=2 arg=45"
func DescribeCommand(cmd string) string {
	body := strings.TrimSuffix(cmd, commandTerminator)
	if !strings.HasPrefix(body, commandPrefix) || len(body) < len(commandPrefix)+1 {
		return fmt.Sprintf("RAW %q", body)
	}
	zone := body[len(commandPrefix) : len(commandPrefix)+1]
	rest := body[len(commandPrefix)+1:]

	for _, v := range verbNames {
		if strings.HasPrefix(rest, v.verb) {
			arg := rest[len(v.verb):]
			if arg == "" {
				return fmt.Sprintf("%s zone=%s", v.name, zone)
			}
			return fmt.Sprintf("%s zone=%s arg=%s", v.name, zone, arg)
		}
	}
	return fmt.Sprintf("RAW %q", body)
}

// FormatZone formats a zone into a one-line summary
func FormatZone(z Zone) string {
	vol := fmt.Sprintf("%3d dB", z.Volume)
	if z.Mute {
		vol += " (muted)"
	}
	return fmt.Sprintf("Zone %d: %-3s src=%d grp=%d vol=%s bass=%+d treble=%+d vrst=%d",
		z.ID, z.Power, z.Source, z.Group, vol, z.Bass, z.Treble, z.Vrst)
}

// FormatZoneTable formats all zones as a fixed-width table
func FormatZoneTable(zones [NumZones]Zone) string {
	var s strings.Builder
	s.WriteString("ZONE  POWER  SOURCE  GROUP  VOLUME  MUTE  BASS  TREBLE  VRST\n")
	for _, z := range zones {
		mute := "no"
		if z.Mute {
			mute = "yes"
		}
		fmt.Fprintf(&s, "%4d  %-5s  %6d  %5d  %6d  %-4s  %+4d  %+6d  %4d\n",
			z.ID, z.Power, z.Source, z.Group, z.Volume, mute, z.Bass, z.Treble, z.Vrst)
	}
	return s.String()
}
