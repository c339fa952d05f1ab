// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/essentia/pkg/essentia"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Test connection stability without sending commands",
	Long: `Open the connection and listen without sending anything, printing every
chunk of bytes received along with the lines it completes.

Useful for checking cabling, baud rate and WebSocket bridge stability: the
amplifier reports front-panel changes on its own, so touching a control
while listening should produce output.

Exit codes:
  0 - Listened for the full duration
  1 - Connection dropped during the test
  2 - Connection error`,
	RunE: runListen,
}

var listenDuration int

func init() {
	rootCmd.AddCommand(listenCmd)
	listenCmd.Flags().IntVar(&listenDuration, "duration", 30, "Test duration in seconds")
}

func runListen(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := openConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Essentia - Connection Stability Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Duration: %d seconds\n\n", listenDuration)

	d := essentia.NewDriver(
		essentia.WithLogger(logger),
		essentia.WithLineHandler(func(line string, r essentia.Report, err error) {
			if err != nil {
				fmt.Printf("    line %q (%v)\n", line, err)
				return
			}
			fmt.Printf("    line %s\n", essentia.FormatReport(r))
		}),
	)

	dataCh := make(chan []byte, 100)
	errCh := make(chan error, 1)
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := conn.Read(buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				dataCh <- data
			}
			if err != nil {
				errCh <- err
				return
			}
		}
	}()

	start := time.Now()
	deadline := time.After(time.Duration(listenDuration) * time.Second)
	heartbeat := time.NewTicker(time.Second)
	defer heartbeat.Stop()

	bytesReceived := 0
	chunks := 0

	printResults := func(result string) {
		c := d.Statistics().Snapshot()
		fmt.Printf("\n--- Test Results ---\n")
		fmt.Printf("Duration: %v\n", time.Since(start).Round(time.Millisecond))
		fmt.Printf("Chunks received: %d\n", chunks)
		fmt.Printf("Bytes received: %d\n", bytesReceived)
		fmt.Printf("Lines: %d (%d discarded)\n", c.TotalLines, c.Discarded())
		fmt.Printf("Result: %s\n", result)
	}

	fmt.Printf("Listening for data...\n\n")
	for {
		select {
		case data := <-dataCh:
			bytesReceived += len(data)
			chunks++
			fmt.Printf("[%s] Received %d bytes: %q\n", time.Now().Format("15:04:05.000"), len(data), data)
			d.Feed(data)

		case err := <-errCh:
			fmt.Printf("\n[%s] Connection error: %v\n", time.Now().Format("15:04:05.000"), err)
			printResults("FAILED (connection error)")
			os.Exit(1)

		case <-heartbeat.C:
			if remaining := time.Until(start.Add(time.Duration(listenDuration) * time.Second)); remaining > time.Second {
				fmt.Printf("[%s] Still connected... (%.0fs remaining)\n", time.Now().Format("15:04:05.000"), remaining.Seconds())
			}

		case <-deadline:
			printResults("PASSED (connection stable)")
			return nil
		}
	}
}
