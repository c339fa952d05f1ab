// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/essentia/pkg/essentia"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive shell for controlling zones",
	Long: `Open an interactive shell with line editing and history.

Zone state is refreshed at startup. Commands are queued and sent one per poll
tick; the state shown by 'show' changes once the amplifier reports it.
Type 'help' for the list of commands.`,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

// console executes shell commands against a driver
type console struct {
	driver *essentia.Driver
	out    io.Writer
}

// zoneSetters maps value commands to driver setters
var zoneSetters = map[string]func(d *essentia.Driver, id int, v float64) error{
	"vol":    (*essentia.Driver).SetVolume,
	"volume": (*essentia.Driver).SetVolume,
	"src":    (*essentia.Driver).SetSource,
	"source": (*essentia.Driver).SetSource,
	"grp":    (*essentia.Driver).SetGroup,
	"group":  (*essentia.Driver).SetGroup,
	"bass":   (*essentia.Driver).SetBass,
	"treb":   (*essentia.Driver).SetTreble,
	"treble": (*essentia.Driver).SetTreble,
}

// zoneActions maps argument-less commands to their per-zone and all-zone forms
var zoneActions = map[string]struct {
	one func(d *essentia.Driver, id int) error
	all func(d *essentia.Driver)
}{
	"on":      {(*essentia.Driver).PowerOn, (*essentia.Driver).SetAllOn},
	"off":     {(*essentia.Driver).PowerOff, (*essentia.Driver).SetAllOff},
	"mute":    {(*essentia.Driver).MuteOn, (*essentia.Driver).SetAllMute},
	"unmute":  {(*essentia.Driver).MuteOff, (*essentia.Driver).SetAllUnmute},
	"refresh": {(*essentia.Driver).RefreshZone, (*essentia.Driver).Refresh},
}

func (c *console) printHelp() {
	fmt.Fprintln(c.out, `
Essentia Console Commands:
  State:
    show [zone]            - Show cached zone state (all zones if omitted)
    stats                  - Show line and command statistics
    refresh [zone|all]     - Request zone state from the amplifier

  Control (zone is 1-6 or "all"):
    on <zone>              - Power on
    off <zone>             - Power off
    mute <zone>            - Mute
    unmute <zone>          - Unmute
    vol <zone> <dB>        - Set volume (-78 to 0)
    src <zone> <input>     - Select input (1-6)
    grp <zone> <group>     - Set group (1-6)
    bass <zone> <level>    - Set bass (-8 to 8)
    treb <zone> <level>    - Set treble (-8 to 8)

  Other:
    help                   - Show this help
    quit                   - Exit`)
}

// exec runs one command line. Returns true when the shell should exit.
func (c *console) exec(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	if err := c.dispatch(cmd, args); err != nil {
		if errors.Is(err, errQuit) {
			return true
		}
		fmt.Fprintf(c.out, "Error: %v\n", err)
	}
	return false
}

var errQuit = errors.New("quit")

func (c *console) dispatch(cmd string, args []string) error {
	switch cmd {
	case "help", "?":
		c.printHelp()
		return nil

	case "quit", "exit", "q":
		return errQuit

	case "show", "s":
		return c.cmdShow(args)

	case "stats":
		fmt.Fprint(c.out, c.driver.Statistics().String())
		return nil
	}

	if action, ok := zoneActions[cmd]; ok {
		if cmd == "refresh" && len(args) == 0 {
			args = []string{"all"}
		}
		if len(args) != 1 {
			return fmt.Errorf("usage: %s <zone|all>", cmd)
		}
		if args[0] == "all" {
			action.all(c.driver)
			return c.queued()
		}
		id, err := parseZoneID(args[0])
		if err != nil {
			return err
		}
		if err := action.one(c.driver, id); err != nil {
			return err
		}
		return c.queued()
	}

	if set, ok := zoneSetters[cmd]; ok {
		if len(args) != 2 {
			return fmt.Errorf("usage: %s <zone|all> <value>", cmd)
		}
		v, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid value %q", args[1])
		}
		if args[0] == "all" {
			if cmd == "vol" || cmd == "volume" {
				if err := c.driver.SetAllVolume(v); err != nil {
					return err
				}
				return c.queued()
			}
			for id := 1; id <= essentia.NumZones; id++ {
				if err := set(c.driver, id, v); err != nil {
					return err
				}
			}
			return c.queued()
		}
		id, err := parseZoneID(args[0])
		if err != nil {
			return err
		}
		if err := set(c.driver, id, v); err != nil {
			return err
		}
		return c.queued()
	}

	return fmt.Errorf("unknown command: %s (type 'help' for commands)", cmd)
}

func (c *console) queued() error {
	fmt.Fprintf(c.out, "Queued (%d pending)\n", c.driver.QueueLen())
	return nil
}

func (c *console) cmdShow(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(c.out, essentia.FormatZoneTable(c.driver.Zones()))
		fmt.Fprintf(c.out, "All on: %v  All muted: %v\n", c.driver.AllOn(), c.driver.AllMute())
		return nil
	}
	id, err := parseZoneID(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, essentia.FormatZone(c.driver.Zone(id)))
	return nil
}

func runConsole(cmd *cobra.Command, args []string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "essentia> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	s, err := openSession(essentia.WithZoneUpdateHandler(func(z essentia.Zone, r essentia.Report) {
		logger.Debug("zone updated", "zone", essentia.FormatZone(z))
	}))
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.onLost = func(err error) {
		fmt.Fprintf(rl.Stderr(), "Connection lost: %v (reconnecting)\n", err)
	}
	s.onReconnect = func(connInfo string) {
		fmt.Fprintf(rl.Stderr(), "Reconnected: %s\n", connInfo)
	}
	go s.runReconnecting(ctx)

	c := &console{driver: s.driver, out: rl.Stdout()}
	_, connInfo := s.getConn()
	fmt.Fprintf(c.out, "Essentia Console - %s\n", connInfo)
	c.printHelp()
	s.driver.Refresh()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			return nil
		}
		if c.exec(strings.TrimSpace(line)) {
			fmt.Fprintln(c.out, "Exiting...")
			return nil
		}
	}
}
