// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Essentia - Six-Zone Amplifier Control Tool
//
// A CLI tool for monitoring and controlling Essentia amplifiers over their
// serial control port, directly or through a WebSocket serial bridge.

package main

import (
	"os"

	"github.com/Thermoquad/essentia/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
