// debug_commands.go - machine monitor commands

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
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// MonitorCommand is a parsed command with name and arguments.
type MonitorCommand struct {
	Name string
	Args []string
}

// ParseCommand splits a raw input line into a command name and arguments.
func ParseCommand(input string) MonitorCommand {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return MonitorCommand{}
	}
	return MonitorCommand{
		Name: strings.ToLower(parts[0]),
		Args: parts[1:],
	}
}

// ParseAddress parses a monitor number: $hex, 0xhex, bare hex, #decimal.
func ParseAddress(s string) (uint64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	base := 16
	switch {
	case strings.HasPrefix(s, "#"):
		s, base = s[1:], 10
	case strings.HasPrefix(s, "$"):
		s = s[1:]
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s = s[2:]
	}
	v, err := strconv.ParseUint(s, base, 64)
	return v, err == nil
}

// EvalAddress evaluates <term> [+|- <term>]* where a term is a register
// name of cpu or a number.
func EvalAddress(expr string, cpu DebuggableCPU) (uint64, bool) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, false
	}

	var result uint64
	op := byte('+')
	start := 0
	for i := 0; i <= len(expr); i++ {
		if i < len(expr) && (i == start || (expr[i] != '+' && expr[i] != '-')) {
			continue
		}
		term := strings.TrimSpace(expr[start:i])
		var val uint64
		ok := false
		if cpu != nil {
			val, ok = cpu.GetRegister(term)
		}
		if !ok {
			if val, ok = ParseAddress(term); !ok {
				return 0, false
			}
		}
		if op == '+' {
			result += val
		} else {
			result -= val
		}
		if i < len(expr) {
			op = expr[i]
			start = i + 1
		}
	}
	return result, true
}

// ExecuteCommand dispatches a parsed command to the appropriate handler.
// Returns true if the monitor should exit.
func (m *MachineMonitor) ExecuteCommand(input string) bool {
	cmd := ParseCommand(input)
	if cmd.Name == "" {
		return false
	}

	if len(m.history) == 0 || m.history[len(m.history)-1] != input {
		m.history = append(m.history, input)
	}
	m.historyIdx = len(m.history)

	switch cmd.Name {
	case "r":
		return m.cmdRegisters(cmd)
	case "d":
		return m.cmdDisassemble(cmd)
	case "m":
		return m.cmdMemoryDump(cmd)
	case "s":
		return m.cmdStep(cmd)
	case "g":
		return m.cmdGo(cmd)
	case "x":
		return true
	case "b":
		return m.cmdBreakpointSet(cmd)
	case "bc":
		return m.cmdBreakpointClear(cmd)
	case "bl":
		return m.cmdBreakpointList(cmd)
	case "w":
		return m.cmdWrite(cmd)
	case "f":
		return m.cmdFill(cmd)
	case "cpu":
		return m.cmdCPU(cmd)
	case "irq":
		return m.cmdIRQ(cmd)
	case "ctrl":
		return m.cmdCtrl(cmd)
	case "bank":
		return m.cmdBank(cmd)
	case "save":
		return m.cmdSaveMemory(cmd)
	case "load":
		return m.cmdLoadMemory(cmd)
	case "ss":
		return m.cmdSaveState(cmd)
	case "sl":
		return m.cmdLoadState(cmd)
	case "script":
		return m.cmdScript(cmd)
	case "macro":
		return m.cmdMacro(cmd)
	case "lua":
		return m.cmdLua(cmd)
	case "?", "help":
		return m.cmdHelp(cmd)
	}
	if cmds, ok := m.macros[cmd.Name]; ok {
		return m.executeMacro(cmds)
	}
	m.appendOutput(fmt.Sprintf("Unknown command: %s", cmd.Name), colorRed)
	return false
}

// focused returns the focused entry or reports that there is none.
func (m *MachineMonitor) focused() *CPUEntry {
	entry := m.cpus[m.focusedID]
	if entry == nil {
		m.appendOutput("No CPU focused", colorRed)
	}
	return entry
}

func (m *MachineMonitor) cmdRegisters(cmd MonitorCommand) bool {
	entry := m.focused()
	if entry == nil {
		return false
	}

	if len(cmd.Args) >= 2 {
		name := cmd.Args[0]
		val, ok := ParseAddress(cmd.Args[1])
		if !ok {
			m.appendOutput(fmt.Sprintf("Invalid value: %s", cmd.Args[1]), colorRed)
			return false
		}
		if entry.CPU.SetRegister(name, val) {
			m.appendOutput(fmt.Sprintf("%s = $%X", strings.ToUpper(name), val), colorGreen)
		} else {
			m.appendOutput(fmt.Sprintf("Unknown register: %s", name), colorRed)
		}
		return false
	}

	m.showRegisters()
	return false
}

// showRegisters prints the register file four to a line, highlighting
// registers that changed since the last snapshot.
func (m *MachineMonitor) showRegisters() {
	entry := m.cpus[m.focusedID]
	if entry == nil {
		return
	}

	regs := entry.CPU.GetRegisters()
	for i := 0; i < len(regs); i += 4 {
		var sb strings.Builder
		color := uint32(colorWhite)
		for _, r := range regs[i:min(i+4, len(regs))] {
			if prev, ok := m.prevRegs[r.Name]; ok && prev != r.Value {
				color = colorGreen
			}
			if r.BitWidth > 32 {
				fmt.Fprintf(&sb, "%-7s $%016X  ", r.Name, r.Value)
			} else {
				fmt.Fprintf(&sb, "%-7s $%08X  ", r.Name, r.Value)
			}
		}
		m.appendOutput(strings.TrimRight(sb.String(), " "), color)
	}
	if entry.Core != nil {
		m.appendOutput(fmt.Sprintf("flags   %s  bank %d", entry.Core.FlagsString(), entry.Core.ActiveBank()), colorCyan)
	}
}

func (m *MachineMonitor) cmdDisassemble(cmd MonitorCommand) bool {
	entry := m.focused()
	if entry == nil {
		return false
	}

	addr := entry.CPU.GetPC()
	count := 16
	if len(cmd.Args) >= 1 {
		if v, ok := EvalAddress(cmd.Args[0], entry.CPU); ok {
			addr = v
		}
	}
	if len(cmd.Args) >= 2 {
		if v, ok := ParseAddress(cmd.Args[1]); ok {
			count = int(v)
		}
	}

	m.showDisassemblyAt(addr, count)
	return false
}

func (m *MachineMonitor) showDisassembly(addr uint64, count int) {
	entry := m.cpus[m.focusedID]
	if entry == nil {
		return
	}
	if addr == 0 {
		addr = entry.CPU.GetPC()
	}
	m.showDisassemblyAt(addr, count)
}

func (m *MachineMonitor) showDisassemblyAt(addr uint64, count int) {
	entry := m.cpus[m.focusedID]
	if entry == nil {
		return
	}

	lines := entry.CPU.Disassemble(addr, count)

	// Mark lines targeted by a branch in the visible window
	addrSet := make(map[uint64]bool, len(lines))
	for _, line := range lines {
		addrSet[line.Address] = true
	}
	targetSet := make(map[uint64]bool)
	for _, line := range lines {
		if line.IsBranch && line.BranchTarget != 0 && addrSet[line.BranchTarget] {
			targetSet[line.BranchTarget] = true
		}
	}

	for _, line := range lines {
		color := uint32(colorWhite)
		prefix := "  "
		if line.IsPC {
			color = colorYellow
			prefix = "> "
		}
		if entry.CPU.HasBreakpoint(line.Address) {
			prefix = "* "
			if !line.IsPC {
				color = colorRed
			}
		}
		if targetSet[line.Address] {
			prefix = "T "
		}

		suffix := ""
		if line.IsBranch && line.BranchTarget != 0 && line.BranchTarget <= line.Address {
			suffix = " <- LOOP"
			if color == colorWhite {
				color = colorMagenta
			}
		}

		m.appendOutput(fmt.Sprintf("%s%06X: %-15s %s%s", prefix, line.Address, line.HexBytes, line.Mnemonic, suffix), color)
	}
}

func (m *MachineMonitor) cmdMemoryDump(cmd MonitorCommand) bool {
	entry := m.focused()
	if entry == nil {
		return false
	}

	addr := entry.CPU.GetPC()
	lines := 8
	if len(cmd.Args) >= 1 {
		if v, ok := EvalAddress(cmd.Args[0], entry.CPU); ok {
			addr = v
		}
	}
	if len(cmd.Args) >= 2 {
		if v, ok := ParseAddress(cmd.Args[1]); ok {
			lines = int(v)
		}
	}

	for range lines {
		data := entry.CPU.ReadMemory(addr, 16)
		if len(data) == 0 {
			break
		}

		hexParts := make([]string, 16)
		ascii := make([]byte, 16)
		for j := range 16 {
			hexParts[j], ascii[j] = "  ", ' '
			if j < len(data) {
				hexParts[j] = fmt.Sprintf("%02X", data[j])
				ascii[j] = '.'
				if data[j] >= 0x20 && data[j] < 0x7F {
					ascii[j] = data[j]
				}
			}
		}

		hexStr := strings.Join(hexParts[:8], " ") + "  " + strings.Join(hexParts[8:], " ")
		m.appendOutput(fmt.Sprintf("%06X: %s  %s", addr, hexStr, string(ascii)), colorWhite)
		addr += 16
	}
	return false
}

func (m *MachineMonitor) cmdStep(cmd MonitorCommand) bool {
	entry := m.focused()
	if entry == nil {
		return false
	}

	count := 1
	if len(cmd.Args) >= 1 {
		if v, ok := ParseAddress(cmd.Args[0]); ok {
			count = int(v)
		}
	}

	totalCycles := 0
	for range count {
		totalCycles += entry.CPU.Step()
	}

	m.appendOutput(fmt.Sprintf("Step: %d instruction(s), %d cycle(s)", count, totalCycles), colorCyan)

	for _, r := range entry.CPU.GetRegisters() {
		if prev, ok := m.prevRegs[r.Name]; ok && prev != r.Value {
			m.appendOutput(fmt.Sprintf("  %s: $%X -> $%X", r.Name, prev, r.Value), colorGreen)
		}
	}
	m.saveCurrentRegs()

	m.showDisassembly(0, 1)
	return false
}

// cmdGo optionally moves the PC, sets the focused core running and exits.
func (m *MachineMonitor) cmdGo(cmd MonitorCommand) bool {
	entry := m.cpus[m.focusedID]
	if entry != nil && len(cmd.Args) >= 1 {
		if v, ok := EvalAddress(cmd.Args[0], entry.CPU); ok {
			entry.CPU.SetPC(v)
		}
	}
	if entry != nil && entry.Core != nil && entry.Core.Halted() {
		entry.Core.CtrlWrite(JAG_CTRL, JAG_CTRL_GO, JAG_CTRL_GO)
	}
	m.resumeAll = true
	return true
}

func (m *MachineMonitor) cmdBreakpointSet(cmd MonitorCommand) bool {
	entry := m.focused()
	if entry == nil {
		return false
	}
	if len(cmd.Args) < 1 {
		m.appendOutput("Usage: b <addr>", colorRed)
		return false
	}

	addr, ok := EvalAddress(cmd.Args[0], entry.CPU)
	if !ok {
		m.appendOutput(fmt.Sprintf("Invalid address: %s", cmd.Args[0]), colorRed)
		return false
	}
	entry.CPU.SetBreakpoint(addr)
	m.appendOutput(fmt.Sprintf("Breakpoint set at $%06X", addr), colorCyan)
	return false
}

func (m *MachineMonitor) cmdBreakpointClear(cmd MonitorCommand) bool {
	entry := m.focused()
	if entry == nil {
		return false
	}
	if len(cmd.Args) < 1 {
		m.appendOutput("Usage: bc <addr> | bc *", colorRed)
		return false
	}

	if cmd.Args[0] == "*" {
		entry.CPU.ClearAllBreakpoints()
		m.appendOutput("All breakpoints cleared", colorCyan)
		return false
	}

	addr, ok := ParseAddress(cmd.Args[0])
	if !ok {
		m.appendOutput(fmt.Sprintf("Invalid address: %s", cmd.Args[0]), colorRed)
		return false
	}
	if entry.CPU.ClearBreakpoint(addr) {
		m.appendOutput(fmt.Sprintf("Breakpoint cleared at $%06X", addr), colorCyan)
	} else {
		m.appendOutput(fmt.Sprintf("No breakpoint at $%06X", addr), colorRed)
	}
	return false
}

func (m *MachineMonitor) cmdBreakpointList(_ MonitorCommand) bool {
	ids := make([]int, 0, len(m.cpus))
	for id := range m.cpus {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	found := false
	for _, id := range ids {
		entry := m.cpus[id]
		bps := entry.CPU.ListBreakpoints()
		slices.Sort(bps)
		for _, addr := range bps {
			m.appendOutput(fmt.Sprintf("$%06X (id:%d %s)", addr, entry.ID, entry.Label), colorCyan)
			found = true
		}
	}
	if !found {
		m.appendOutput("No breakpoints", colorDim)
	}
	return false
}

func (m *MachineMonitor) cmdWrite(cmd MonitorCommand) bool {
	entry := m.focused()
	if entry == nil {
		return false
	}
	if len(cmd.Args) < 2 {
		m.appendOutput("Usage: w <addr> <bytes..>", colorRed)
		return false
	}

	addr, ok := EvalAddress(cmd.Args[0], entry.CPU)
	if !ok {
		m.appendOutput(fmt.Sprintf("Invalid address: %s", cmd.Args[0]), colorRed)
		return false
	}

	var data []byte
	for _, arg := range cmd.Args[1:] {
		v, ok := ParseAddress(arg)
		if !ok {
			m.appendOutput(fmt.Sprintf("Invalid byte: %s", arg), colorRed)
			return false
		}
		data = append(data, byte(v))
	}

	entry.CPU.WriteMemory(addr, data)
	m.appendOutput(fmt.Sprintf("Wrote %d byte(s) at $%06X", len(data), addr), colorCyan)
	return false
}

func (m *MachineMonitor) cmdFill(cmd MonitorCommand) bool {
	entry := m.focused()
	if entry == nil {
		return false
	}
	if len(cmd.Args) < 3 {
		m.appendOutput("Usage: f <start> <end> <byte>", colorRed)
		return false
	}

	start, ok1 := EvalAddress(cmd.Args[0], entry.CPU)
	end, ok2 := EvalAddress(cmd.Args[1], entry.CPU)
	val, ok3 := ParseAddress(cmd.Args[2])
	if !ok1 || !ok2 || !ok3 || end < start || end-start >= JAG_MEM_SIZE {
		m.appendOutput("Invalid argument", colorRed)
		return false
	}

	data := make([]byte, end-start+1)
	for i := range data {
		data[i] = byte(val)
	}
	entry.CPU.WriteMemory(start, data)
	m.appendOutput(fmt.Sprintf("Filled $%06X-$%06X with $%02X", start, end, byte(val)), colorCyan)
	return false
}

func (m *MachineMonitor) cmdCPU(cmd MonitorCommand) bool {
	if len(cmd.Args) == 0 {
		ids := make([]int, 0, len(m.cpus))
		for id := range m.cpus {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			entry := m.cpus[id]
			status := "FROZEN"
			if entry.CPU.IsRunning() {
				status = "RUNNING"
			} else if entry.Core != nil && entry.Core.Halted() {
				status = "HALTED"
			}
			focus := " "
			if entry.ID == m.focusedID {
				focus = "*"
			}
			m.appendOutput(fmt.Sprintf("%sid:%-3d %-6s [%-7s]  PC=$%06X",
				focus, entry.ID, entry.Label, status, entry.CPU.GetPC()), colorWhite)
		}
		return false
	}

	entry := m.findCPUByArg(cmd.Args[0])
	if entry == nil {
		return false
	}
	m.focusedID = entry.ID
	m.saveCurrentRegs()
	m.appendOutput(fmt.Sprintf("Focused on id:%d %s", entry.ID, entry.Label), colorCyan)
	m.showRegisters()
	m.showDisassembly(0, 8)
	return false
}

// findCPUByArg resolves an ID or label argument to a CPUEntry.
func (m *MachineMonitor) findCPUByArg(arg string) *CPUEntry {
	if id, err := strconv.Atoi(arg); err == nil {
		if entry, ok := m.cpus[id]; ok {
			return entry
		}
		m.appendOutput(fmt.Sprintf("No CPU with id:%d", id), colorRed)
		return nil
	}
	for _, entry := range m.cpus {
		if strings.EqualFold(entry.Label, arg) {
			return entry
		}
	}
	m.appendOutput(fmt.Sprintf("No CPU matching '%s'", arg), colorRed)
	return nil
}

// cmdIRQ drives an interrupt line of the focused core: irq <line> [0|1].
func (m *MachineMonitor) cmdIRQ(cmd MonitorCommand) bool {
	entry := m.focused()
	if entry == nil || entry.Core == nil {
		return false
	}
	if len(cmd.Args) < 1 {
		m.appendOutput("Usage: irq <line> [0|1]", colorRed)
		return false
	}
	line, err := strconv.Atoi(cmd.Args[0])
	if err != nil || line < 0 || line >= entry.Core.info.irqLines {
		m.appendOutput(fmt.Sprintf("Invalid line: %s", cmd.Args[0]), colorRed)
		return false
	}
	asserted := len(cmd.Args) < 2 || cmd.Args[1] != "0"
	pc := entry.Core.PC()
	entry.Core.SetInputLine(line, asserted)

	state := "cleared"
	if asserted {
		state = "asserted"
	}
	m.appendOutput(fmt.Sprintf("%s line %d %s", entry.Label, line, state), colorCyan)
	if entry.Core.PC() != pc {
		m.appendOutput(fmt.Sprintf("Interrupt taken, PC $%06X -> $%06X", pc, entry.Core.PC()), colorGreen)
		m.showDisassembly(0, 1)
	}
	return false
}

// cmdCtrl reads or writes the control port: ctrl [idx [value]]. Writes have
// the same side effects as a program store to the port.
func (m *MachineMonitor) cmdCtrl(cmd MonitorCommand) bool {
	entry := m.focused()
	if entry == nil || entry.Core == nil {
		return false
	}
	core := entry.Core
	base := core.info.ctrlBase

	if len(cmd.Args) == 0 {
		for i := range uint32(10) {
			m.appendOutput(fmt.Sprintf("%2d $%06X  $%08X", i, base+i*4, core.CtrlRead(i)), colorWhite)
		}
		return false
	}

	idx, ok := ParseAddress(cmd.Args[0])
	if !ok || idx >= JAG_CTRL_REGS {
		m.appendOutput(fmt.Sprintf("Invalid index: %s", cmd.Args[0]), colorRed)
		return false
	}
	if len(cmd.Args) >= 2 {
		val, ok := ParseAddress(cmd.Args[1])
		if !ok {
			m.appendOutput(fmt.Sprintf("Invalid value: %s", cmd.Args[1]), colorRed)
			return false
		}
		core.CtrlWrite(uint32(idx), uint32(val), 0xFFFFFFFF)
	}
	m.appendOutput(fmt.Sprintf("%2d $%06X  $%08X", idx, base+uint32(idx)*4, core.CtrlRead(uint32(idx))), colorCyan)
	return false
}

func (m *MachineMonitor) cmdBank(_ MonitorCommand) bool {
	entry := m.focused()
	if entry == nil || entry.Core == nil {
		return false
	}
	core := entry.Core
	flags := core.Flags()
	m.appendOutput(fmt.Sprintf("active bank %d  RPAGE=%d  I=%d  %s",
		core.ActiveBank(), (flags>>14)&1, (flags>>3)&1, core.FlagsString()), colorCyan)
	return false
}

func (m *MachineMonitor) cmdSaveMemory(cmd MonitorCommand) bool {
	entry := m.focused()
	if entry == nil {
		return false
	}
	if len(cmd.Args) < 3 {
		m.appendOutput("Usage: save <start> <end> <filename>", colorRed)
		return false
	}

	start, ok1 := EvalAddress(cmd.Args[0], entry.CPU)
	end, ok2 := EvalAddress(cmd.Args[1], entry.CPU)
	if !ok1 || !ok2 || end < start {
		m.appendOutput("Invalid range", colorRed)
		return false
	}

	data := entry.CPU.ReadMemory(start, int(end-start+1))
	if err := os.WriteFile(cmd.Args[2], data, 0644); err != nil {
		m.appendOutput(fmt.Sprintf("Error: %s", err), colorRed)
		return false
	}
	m.appendOutput(fmt.Sprintf("Saved %d bytes ($%06X-$%06X) to %s", len(data), start, end, cmd.Args[2]), colorCyan)
	return false
}

func (m *MachineMonitor) cmdLoadMemory(cmd MonitorCommand) bool {
	entry := m.focused()
	if entry == nil {
		return false
	}
	if len(cmd.Args) < 2 {
		m.appendOutput("Usage: load <filename> <addr>", colorRed)
		return false
	}

	addr, ok := EvalAddress(cmd.Args[1], entry.CPU)
	if !ok {
		m.appendOutput(fmt.Sprintf("Invalid address: %s", cmd.Args[1]), colorRed)
		return false
	}
	n, err := m.sys.Bus().LoadImage(cmd.Args[0], uint32(addr))
	if err != nil {
		m.appendOutput(fmt.Sprintf("Error: %s", err), colorRed)
		return false
	}
	m.appendOutput(fmt.Sprintf("Loaded %d bytes from %s to $%06X", n, cmd.Args[0], addr), colorCyan)
	return false
}

func (m *MachineMonitor) cmdSaveState(cmd MonitorCommand) bool {
	entry := m.focused()
	if entry == nil {
		return false
	}

	filename := "snapshot.jrs"
	if len(cmd.Args) >= 1 {
		filename = cmd.Args[0]
	}

	snapper, ok := entry.CPU.(snapshotter)
	if !ok {
		m.appendOutput(fmt.Sprintf("%s does not support snapshots", entry.CPU.CPUName()), colorRed)
		return false
	}
	if err := SaveSnapshotToFile(snapper.Snapshot(), filename); err != nil {
		m.appendOutput(fmt.Sprintf("Error: %s", err), colorRed)
		return false
	}
	m.appendOutput(fmt.Sprintf("State saved to %s (CPU+memory)", filename), colorCyan)
	return false
}

func (m *MachineMonitor) cmdLoadState(cmd MonitorCommand) bool {
	entry := m.focused()
	if entry == nil {
		return false
	}

	filename := "snapshot.jrs"
	if len(cmd.Args) >= 1 {
		filename = cmd.Args[0]
	}

	snapper, ok := entry.CPU.(snapshotter)
	if !ok {
		m.appendOutput(fmt.Sprintf("%s does not support snapshots", entry.CPU.CPUName()), colorRed)
		return false
	}
	snap, err := LoadSnapshotFromFile(filename)
	if err == nil {
		err = snapper.Restore(snap)
	}
	if err != nil {
		m.appendOutput(fmt.Sprintf("Error: %s", err), colorRed)
		return false
	}

	m.saveCurrentRegs()
	m.appendOutput(fmt.Sprintf("State loaded from %s (CPU+memory)", filename), colorCyan)
	m.showRegisters()
	m.showDisassembly(0, 8)
	return false
}

func (m *MachineMonitor) cmdScript(cmd MonitorCommand) bool {
	if len(cmd.Args) < 1 {
		m.appendOutput("Usage: script <filename>", colorRed)
		return false
	}

	data, err := os.ReadFile(cmd.Args[0])
	if err != nil {
		m.appendOutput(fmt.Sprintf("Error: %s", err), colorRed)
		return false
	}

	m.scriptDepth++
	defer func() { m.scriptDepth-- }()
	if m.scriptDepth > 8 {
		m.appendOutput("Script recursion limit reached", colorRed)
		return false
	}

	for line := range strings.SplitSeq(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if m.ExecuteCommand(line) {
			return true
		}
	}
	return false
}

func (m *MachineMonitor) cmdMacro(cmd MonitorCommand) bool {
	if len(cmd.Args) < 2 {
		m.appendOutput("Usage: macro <name> <cmd1> ; <cmd2> ; ...", colorRed)
		return false
	}

	name := strings.ToLower(cmd.Args[0])
	var cleaned []string
	for c := range strings.SplitSeq(strings.Join(cmd.Args[1:], " "), ";") {
		if c = strings.TrimSpace(c); c != "" {
			cleaned = append(cleaned, c)
		}
	}

	m.macros[name] = cleaned
	m.appendOutput(fmt.Sprintf("Macro '%s' defined (%d commands)", name, len(cleaned)), colorCyan)
	return false
}

func (m *MachineMonitor) executeMacro(cmds []string) bool {
	m.scriptDepth++
	defer func() { m.scriptDepth-- }()
	if m.scriptDepth > 8 {
		m.appendOutput("Macro recursion limit reached", colorRed)
		return false
	}
	return slices.ContainsFunc(cmds, m.ExecuteCommand)
}

// cmdLua runs a Lua file, or the rest of the line as Lua source with -e.
func (m *MachineMonitor) cmdLua(cmd MonitorCommand) bool {
	if m.lua == nil {
		m.appendOutput("Lua scripting not available", colorRed)
		return false
	}
	if len(cmd.Args) < 1 {
		m.appendOutput("Usage: lua <file> | lua -e <code>", colorRed)
		return false
	}

	var err error
	if cmd.Args[0] == "-e" {
		err = m.lua.RunString(strings.Join(cmd.Args[1:], " "))
	} else {
		err = m.lua.RunFile(cmd.Args[0])
	}
	if err != nil {
		m.appendOutput(fmt.Sprintf("Lua error: %s", err), colorRed)
	}
	m.saveCurrentRegs()
	return false
}

func (m *MachineMonitor) cmdHelp(_ MonitorCommand) bool {
	helpLines := []string{
		"Machine Monitor Commands:",
		"  r                  Show registers",
		"  r <name> <value>   Set register",
		"  d [addr] [count]   Disassemble",
		"  m [addr] [count]   Memory dump (hex+ASCII)",
		"  s [count]          Single-step focused core",
		"  g [addr]           Go (start focused core, exit monitor)",
		"  x                  Exit monitor",
		"  b <addr>           Set breakpoint",
		"  bc <addr|*>        Clear breakpoint(s)",
		"  bl                 List breakpoints",
		"  w <addr> <bytes..>       Write bytes",
		"  f <start> <end> <byte>   Fill memory",
		"  save <s> <e> <file>  Save memory to file",
		"  load <file> <addr>   Load file into memory",
		"  ss [file]          Save machine state",
		"  sl [file]          Load machine state",
		"  irq <line> [0|1]   Assert or clear an interrupt line",
		"  ctrl [idx [value]] Read or write the control port",
		"  bank               Show register bank state",
		"  script <file>      Run command script",
		"  macro <name> <cmds..> Define macro (;-separated)",
		"  lua <file>         Run Lua script (lua -e <code> for inline)",
		"  cpu                List CPUs",
		"  cpu <id|label>     Switch focused CPU",
		"",
		"Addresses: $hex, 0xhex, bare hex, #decimal, expr+expr",
	}
	for _, line := range helpLines {
		m.appendOutput(line, colorCyan)
	}
	return false
}
