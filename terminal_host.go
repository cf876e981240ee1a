// terminal_host.go - monitor console on the controlling terminal

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"golang.org/x/term"
)

// MonitorConsole runs the machine monitor on the controlling terminal.
// stdin is put in raw mode and term.Terminal provides line editing and
// history; output lines are colored with ANSI escapes.
type MonitorConsole struct {
	monitor *MachineMonitor
	sys     *JaguarSystem
	fd      int
	t       *term.Terminal
	raw     *term.State // state to restore while the machine runs
}

func NewMonitorConsole(monitor *MachineMonitor, sys *JaguarSystem) *MonitorConsole {
	return &MonitorConsole{monitor: monitor, sys: sys, fd: int(os.Stdin.Fd())}
}

// Run blocks until the user quits with q or EOF (Ctrl-D).
func (c *MonitorConsole) Run() error {
	if !term.IsTerminal(c.fd) {
		return c.runPlain(os.Stdin, os.Stdout)
	}

	oldState, err := term.MakeRaw(c.fd)
	if err != nil {
		return fmt.Errorf("terminal_host: failed to set raw mode: %w", err)
	}
	defer term.Restore(c.fd, oldState)
	c.raw = oldState

	c.t = term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}, "> ")
	if w, h, err := term.GetSize(c.fd); err == nil {
		_ = c.t.SetSize(w, h)
	}

	c.monitor.Activate()
	for {
		c.flush(c.t, true)
		line, err := c.t.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("terminal_host: %w", err)
		}
		if c.handle(line) {
			return nil
		}
	}
}

// runPlain drives the monitor from a pipe or file, one command per line.
func (c *MonitorConsole) runPlain(in io.Reader, out io.Writer) error {
	c.monitor.Activate()
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("terminal_host: reading commands: %w", err)
	}
	for line := range strings.SplitSeq(string(data), "\n") {
		c.flush(out, false)
		if c.handle(line) {
			break
		}
	}
	c.flush(out, false)
	return nil
}

// handle executes one line. When the monitor exits, the system runs until
// it stops on its own, then the monitor comes back.
func (c *MonitorConsole) handle(line string) bool {
	line = strings.TrimSpace(line)
	if line == "q" || line == "quit" {
		c.monitor.FreezeAll()
		return true
	}
	if !c.monitor.Exec(line) {
		return false
	}

	c.monitor.Deactivate()
	c.waitStopped()
	if !c.monitor.PollBreakpoint() {
		c.monitor.Activate()
	}
	return false
}

// waitStopped blocks until the scheduler exits. The terminal is cooked for
// the duration so Ctrl-C arrives as SIGINT and freezes the machine.
func (c *MonitorConsole) waitStopped() {
	if c.raw != nil {
		_ = term.Restore(c.fd, c.raw)
		defer func() {
			if _, err := term.MakeRaw(c.fd); err != nil {
				fmt.Fprintf(os.Stderr, "terminal_host: failed to set raw mode: %v\n", err)
			}
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	done := make(chan struct{})
	go func() {
		c.sys.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-sig:
		c.sys.Stop()
		<-done
	}
}

func (c *MonitorConsole) flush(w io.Writer, color bool) {
	for _, l := range c.monitor.TakeOutput() {
		if color {
			fmt.Fprintf(w, "%s%s\x1b[0m\r\n", ansiColor(l.Color), l.Text)
		} else {
			fmt.Fprintln(w, l.Text)
		}
	}
}

// ansiColor maps an RGBA monitor color to a 24-bit foreground escape.
func ansiColor(rgba uint32) string {
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", rgba>>24, (rgba>>16)&0xFF, (rgba>>8)&0xFF)
}
