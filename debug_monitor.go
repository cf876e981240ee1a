// debug_monitor.go - machine monitor state

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"sync"
)

// MonitorState represents whether the monitor is active.
type MonitorState int

const (
	MonitorInactive MonitorState = iota
	MonitorActive
)

// OutputLine holds styled text for the monitor scrollback buffer.
type OutputLine struct {
	Text  string
	Color uint32 // RGBA packed
}

// CPUEntry associates a stable integer ID with a debuggable CPU.
type CPUEntry struct {
	ID    int
	Label string
	CPU   DebuggableCPU
	Core  *JaguarCPU
}

// MachineMonitor is the core debugger state machine.
type MachineMonitor struct {
	mu    sync.Mutex
	state MonitorState

	cpus      map[int]*CPUEntry
	nextID    int
	focusedID int

	breakpointChan chan BreakpointEvent

	outputLines []OutputLine
	maxOutput   int
	drained     int // lines already handed to TakeOutput

	history    []string
	historyIdx int

	wasRunning map[int]bool
	resumeAll  bool // set by g: resume even if nothing was running

	sys      *JaguarSystem
	lua      *LuaHost
	prevRegs map[string]uint64 // for change highlighting

	macros      map[string][]string
	scriptDepth int
}

// NewMachineMonitor creates a monitor attached to sys.
func NewMachineMonitor(sys *JaguarSystem) *MachineMonitor {
	return &MachineMonitor{
		state:          MonitorInactive,
		cpus:           make(map[int]*CPUEntry),
		breakpointChan: make(chan BreakpointEvent, 1),
		maxOutput:      500,
		wasRunning:     make(map[int]bool),
		sys:            sys,
		prevRegs:       make(map[string]uint64),
		macros:         make(map[string][]string),
	}
}

// RegisterCPU adds a CPU to the monitor and returns its stable ID.
func (m *MachineMonitor) RegisterCPU(label string, cpu DebuggableCPU, core *JaguarCPU) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.cpus[id] = &CPUEntry{ID: id, Label: label, CPU: cpu, Core: core}
	cpu.SetBreakpointChannel(m.breakpointChan, id)
	if len(m.cpus) == 1 {
		m.focusedID = id
	}
	return id
}

// AttachLua gives the lua command a host to run scripts in.
func (m *MachineMonitor) AttachLua(host *LuaHost) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lua = host
}

// IsActive returns whether the monitor is currently shown.
func (m *MachineMonitor) IsActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == MonitorActive
}

// FocusedCPU returns the currently focused CPU entry, or nil.
func (m *MachineMonitor) FocusedCPU() *CPUEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cpus[m.focusedID]
}

// Activate freezes all CPUs and enters the monitor.
func (m *MachineMonitor) Activate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == MonitorActive {
		return
	}
	m.state = MonitorActive
	m.wasRunning = make(map[int]bool)
	m.resumeAll = false

	for id, entry := range m.cpus {
		if entry.CPU.IsRunning() {
			m.wasRunning[id] = true
			entry.CPU.Freeze()
		}
	}
	m.historyIdx = len(m.history)

	m.saveCurrentRegs()

	m.appendOutput("MACHINE MONITOR - Type ? for help", colorCyan)
	m.showRegisters()
	m.showDisassembly(0, 8)
}

// Deactivate resumes execution and exits the monitor.
func (m *MachineMonitor) Deactivate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == MonitorInactive {
		return
	}
	m.state = MonitorInactive

	// Every adapter shares one scheduler; one Resume restarts both cores.
	resume := m.resumeAll
	for id := range m.cpus {
		if m.wasRunning[id] {
			resume = true
		}
	}
	if entry := m.cpus[m.focusedID]; resume && entry != nil {
		entry.CPU.Resume()
	}
}

// Exec runs one command line under the monitor lock and reports whether
// the monitor should exit.
func (m *MachineMonitor) Exec(input string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendOutput("> "+input, colorDim)
	return m.ExecuteCommand(input)
}

// FreezeAll freezes all registered CPUs.
func (m *MachineMonitor) FreezeAll() {
	for _, entry := range m.cpus {
		if entry.CPU.IsRunning() {
			entry.CPU.Freeze()
		}
	}
}

// appendOutput adds a line to the scrollback buffer.
func (m *MachineMonitor) appendOutput(text string, color uint32) {
	m.outputLines = append(m.outputLines, OutputLine{Text: text, Color: color})
	if len(m.outputLines) > m.maxOutput {
		trim := len(m.outputLines) - m.maxOutput
		m.outputLines = m.outputLines[trim:]
		m.drained = max(0, m.drained-trim)
	}
}

// TakeOutput returns the lines appended since the previous call.
func (m *MachineMonitor) TakeOutput() []OutputLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]OutputLine(nil), m.outputLines[m.drained:]...)
	m.drained = len(m.outputLines)
	return out
}

// Write lets scripts print into the scrollback. The caller holds m.mu.
func (m *MachineMonitor) Write(p []byte) (int, error) {
	m.appendOutput(string(trimNewline(p)), colorWhite)
	return len(p), nil
}

func trimNewline(p []byte) []byte {
	for len(p) > 0 && (p[len(p)-1] == '\n' || p[len(p)-1] == '\r') {
		p = p[:len(p)-1]
	}
	return p
}

// saveCurrentRegs snapshots the focused CPU's registers for change detection.
func (m *MachineMonitor) saveCurrentRegs() {
	entry := m.cpus[m.focusedID]
	if entry == nil {
		return
	}
	m.prevRegs = make(map[string]uint64)
	for _, r := range entry.CPU.GetRegisters() {
		m.prevRegs[r.Name] = r.Value
	}
}

// StartBreakpointListener runs a background goroutine that watches for
// breakpoint events from any CPU and auto-activates the monitor.
func (m *MachineMonitor) StartBreakpointListener() {
	go func() {
		for ev := range m.breakpointChan {
			m.handleBreakpointHit(ev)
		}
	}()
}

// PollBreakpoint handles a pending breakpoint event, if any, on the
// caller's goroutine. It reports whether one was handled.
func (m *MachineMonitor) PollBreakpoint() bool {
	select {
	case ev := <-m.breakpointChan:
		m.handleBreakpointHit(ev)
		return true
	default:
		return false
	}
}

// handleBreakpointHit freezes all CPUs, focuses on the one that hit,
// and activates the monitor.
func (m *MachineMonitor) handleBreakpointHit(ev BreakpointEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// The scheduler stopped itself before publishing the event, so the
	// hitting CPU counts as running for the later resume.
	wasRunning := map[int]bool{ev.CPUID: true}
	m.FreezeAll()

	m.focusedID = ev.CPUID
	label := "???"
	if entry := m.cpus[ev.CPUID]; entry != nil {
		label = entry.Label
	}

	if m.state != MonitorActive {
		m.state = MonitorActive
		m.wasRunning = wasRunning
		m.resumeAll = false
		m.historyIdx = len(m.history)
	}

	m.appendOutput(fmt.Sprintf("BREAK at $%06X on %s (id:%d)", ev.Address, label, ev.CPUID), colorRed)
	m.saveCurrentRegs()
	m.showRegisters()
	m.showDisassembly(0, 8)
}

// Color constants (RGBA packed as 0xRRGGBBAA)
const (
	colorWhite   = 0xFFFFFFFF
	colorCyan    = 0x64C8FFFF
	colorYellow  = 0xFFFF55FF
	colorRed     = 0xFF5555FF
	colorGreen   = 0x55FF55FF
	colorMagenta = 0xFF55FFFF
	colorDim     = 0x5555FFFF
)
