// debug_cpu_jaguar.go - debug adapter for the GPU and DSP

package main

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// DebugJaguar adapts one core of a JaguarSystem to the monitor. Both cores
// share one scheduler, so freezing or resuming either adapter freezes or
// resumes the whole system, and breakpoints are checked by a hook the
// scheduler calls before every instruction.
type DebugJaguar struct {
	sys  *JaguarSystem
	cpu  *JaguarCPU
	peer *DebugJaguar

	bpMu        sync.RWMutex
	breakpoints map[uint64]bool
	bpChan      chan<- BreakpointEvent
	cpuID       int

	// PC to step over once after Resume, so a core parked on a
	// breakpoint can leave it.
	resumePC   uint64
	resumeSkip bool
}

// NewDebugJaguarPair returns adapters for the GPU and the DSP of sys.
func NewDebugJaguarPair(sys *JaguarSystem) (gpu, dsp *DebugJaguar) {
	gpu = &DebugJaguar{sys: sys, cpu: sys.GPU, breakpoints: make(map[uint64]bool)}
	dsp = &DebugJaguar{sys: sys, cpu: sys.DSP, breakpoints: make(map[uint64]bool)}
	gpu.peer, dsp.peer = dsp, gpu
	return gpu, dsp
}

func (d *DebugJaguar) CPUName() string   { return d.cpu.Name() }
func (d *DebugJaguar) AddressWidth() int { return 24 }

// extraCtrlName is the name of control register 6, which differs per variant.
func (d *DebugJaguar) extraCtrlName() string {
	if d.cpu.Variant() == JaguarDSP {
		return "MOD"
	}
	return "HIDATA"
}

var jaguarCtrlRegNames = map[string]int{
	"FLAGS":   JAG_FLAGS,
	"MTXC":    JAG_MTXC,
	"MTXA":    JAG_MTXA,
	"END":     JAG_END,
	"CTRL":    JAG_CTRL,
	"HIDATA":  JAG_HIDATA,
	"MOD":     JAG_MOD,
	"DIVCTRL": JAG_DIVCTRL,
	"MACHI":   JAG_MACHI,
	"REMAIN":  JAG_REMAINDER,
}

func (d *DebugJaguar) GetRegisters() []RegisterInfo {
	regs := make([]RegisterInfo, 0, 76)
	for i, v := range d.cpu.R {
		regs = append(regs, RegisterInfo{Name: fmt.Sprintf("R%d", i), BitWidth: 32, Value: uint64(v), Group: "general"})
	}
	for i, v := range d.cpu.A {
		regs = append(regs, RegisterInfo{Name: fmt.Sprintf("A%d", i), BitWidth: 32, Value: uint64(v), Group: "alternate"})
	}
	regs = append(regs,
		RegisterInfo{Name: "PC", BitWidth: 32, Value: uint64(d.cpu.PC()), Group: "control"},
		RegisterInfo{Name: "PPC", BitWidth: 32, Value: uint64(d.cpu.PPC()), Group: "control"},
		RegisterInfo{Name: "FLAGS", BitWidth: 32, Value: uint64(d.cpu.Ctrl(JAG_FLAGS)), Group: "status"},
		RegisterInfo{Name: "CTRL", BitWidth: 32, Value: uint64(d.cpu.Ctrl(JAG_CTRL)), Group: "status"},
		RegisterInfo{Name: "MTXC", BitWidth: 32, Value: uint64(d.cpu.Ctrl(JAG_MTXC)), Group: "control"},
		RegisterInfo{Name: "MTXA", BitWidth: 32, Value: uint64(d.cpu.Ctrl(JAG_MTXA)), Group: "control"},
		RegisterInfo{Name: "END", BitWidth: 32, Value: uint64(d.cpu.Ctrl(JAG_END)), Group: "control"},
		RegisterInfo{Name: d.extraCtrlName(), BitWidth: 32, Value: uint64(d.cpu.Ctrl(JAG_HIDATA)), Group: "control"},
		RegisterInfo{Name: "DIVCTRL", BitWidth: 32, Value: uint64(d.cpu.Ctrl(JAG_DIVCTRL)), Group: "control"},
		RegisterInfo{Name: "REMAIN", BitWidth: 32, Value: uint64(d.cpu.Ctrl(JAG_REMAINDER)), Group: "control"},
	)
	if d.cpu.Variant() == JaguarDSP {
		regs = append(regs, RegisterInfo{Name: "MACHI", BitWidth: 32, Value: uint64(d.cpu.Ctrl(JAG_MACHI)), Group: "control"})
	}
	regs = append(regs, RegisterInfo{Name: "ACC", BitWidth: 64, Value: uint64(d.cpu.Accumulator()), Group: "status"})
	return regs
}

// parseBankReg matches R<n> or A<n> and returns the bank letter and index.
func parseBankReg(name string) (byte, int, bool) {
	if len(name) < 2 || (name[0] != 'R' && name[0] != 'A') {
		return 0, 0, false
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n < 0 || n > 31 {
		return 0, 0, false
	}
	return name[0], n, true
}

func (d *DebugJaguar) GetRegister(name string) (uint64, bool) {
	upper := strings.ToUpper(name)
	if bank, n, ok := parseBankReg(upper); ok {
		if bank == 'R' {
			return uint64(d.cpu.R[n]), true
		}
		return uint64(d.cpu.A[n]), true
	}
	switch upper {
	case "PC":
		return uint64(d.cpu.PC()), true
	case "PPC":
		return uint64(d.cpu.PPC()), true
	case "ACC":
		return uint64(d.cpu.Accumulator()), true
	}
	if idx, ok := jaguarCtrlRegNames[upper]; ok {
		return uint64(d.cpu.Ctrl(idx)), true
	}
	return 0, false
}

// SetRegister writes a register. FLAGS goes through the control port so
// the bank and interrupt side effects match a program write; the other
// control registers are stored raw.
func (d *DebugJaguar) SetRegister(name string, value uint64) bool {
	v := uint32(value)
	upper := strings.ToUpper(name)
	if bank, n, ok := parseBankReg(upper); ok {
		if bank == 'R' {
			d.cpu.R[n] = v
		} else {
			d.cpu.A[n] = v
		}
		return true
	}
	switch upper {
	case "PC":
		d.cpu.SetPC(v)
		return true
	case "PPC":
		d.cpu.ppc = v
		return true
	case "ACC":
		d.cpu.accum = int64(value)
		return true
	case "FLAGS":
		d.cpu.CtrlWrite(JAG_FLAGS, v, 0xFFFFFFFF)
		return true
	}
	if idx, ok := jaguarCtrlRegNames[upper]; ok {
		d.cpu.SetCtrl(idx, v)
		return true
	}
	return false
}

// Snapshot captures this core and the shared RAM.
func (d *DebugJaguar) Snapshot() *MachineSnapshot {
	return TakeSnapshot(d.cpu, d.sys.Bus())
}

// Restore loads snap into this core. The core re-derives its bank and
// re-checks pending interrupts.
func (d *DebugJaguar) Restore(snap *MachineSnapshot) error {
	return RestoreSnapshot(d.cpu, d.sys.Bus(), snap)
}

func (d *DebugJaguar) GetPC() uint64     { return uint64(d.cpu.PC()) }
func (d *DebugJaguar) SetPC(addr uint64) { d.cpu.SetPC(uint32(addr)) }

func (d *DebugJaguar) IsRunning() bool { return d.sys.IsRunning() }

func (d *DebugJaguar) Freeze() { d.sys.Stop() }

func (d *DebugJaguar) Resume() {
	if d.sys.IsRunning() {
		return
	}
	if d.hasBreakpoints() || d.peer.hasBreakpoints() {
		d.armResume()
		d.peer.armResume()
		d.sys.SetBreakHook(d.checkBreak)
	} else {
		d.sys.SetBreakHook(nil)
	}
	d.sys.Start()
}

func (d *DebugJaguar) armResume() {
	d.bpMu.Lock()
	d.resumePC, d.resumeSkip = uint64(d.cpu.PC()), true
	d.bpMu.Unlock()
}

func (d *DebugJaguar) hasBreakpoints() bool {
	d.bpMu.RLock()
	defer d.bpMu.RUnlock()
	return len(d.breakpoints) > 0
}

// checkBreak is the scheduler hook. It runs on the scheduler goroutine.
func (d *DebugJaguar) checkBreak(cpu *JaguarCPU) bool {
	a := d
	if cpu != d.cpu {
		a = d.peer
	}
	return a.hit()
}

func (d *DebugJaguar) hit() bool {
	pc := uint64(d.cpu.PC())
	d.bpMu.Lock()
	if d.resumeSkip {
		d.resumeSkip = false
		if pc == d.resumePC {
			d.bpMu.Unlock()
			return false
		}
	}
	hit := d.breakpoints[pc]
	d.bpMu.Unlock()
	if !hit {
		return false
	}
	if d.bpChan != nil {
		select {
		case d.bpChan <- BreakpointEvent{CPUID: d.cpuID, Address: pc}:
		default:
		}
	}
	return true
}

func (d *DebugJaguar) Step() int { return d.cpu.Step() }

func (d *DebugJaguar) Disassemble(addr uint64, count int) []DisassembledLine {
	pc := uint64(d.cpu.PC())
	lines := disassembleJaguar(d.ReadMemory, d.cpu.Variant(), addr, count)
	for i := range lines {
		if lines[i].Address == pc {
			lines[i].IsPC = true
		}
	}
	return lines
}

func (d *DebugJaguar) SetBreakpoint(addr uint64) bool {
	d.bpMu.Lock()
	defer d.bpMu.Unlock()
	d.breakpoints[addr&JAG_ADDR_MASK] = true
	return true
}

func (d *DebugJaguar) ClearBreakpoint(addr uint64) bool {
	d.bpMu.Lock()
	defer d.bpMu.Unlock()
	addr &= JAG_ADDR_MASK
	if _, ok := d.breakpoints[addr]; ok {
		delete(d.breakpoints, addr)
		return true
	}
	return false
}

func (d *DebugJaguar) ClearAllBreakpoints() {
	d.bpMu.Lock()
	defer d.bpMu.Unlock()
	d.breakpoints = make(map[uint64]bool)
}

func (d *DebugJaguar) ListBreakpoints() []uint64 {
	d.bpMu.RLock()
	defer d.bpMu.RUnlock()
	result := make([]uint64, 0, len(d.breakpoints))
	for addr := range d.breakpoints {
		result = append(result, addr)
	}
	return result
}

func (d *DebugJaguar) HasBreakpoint(addr uint64) bool {
	d.bpMu.RLock()
	defer d.bpMu.RUnlock()
	return d.breakpoints[addr]
}

// ReadMemory copies raw RAM. Device registers are not read.
func (d *DebugJaguar) ReadMemory(addr uint64, size int) []byte {
	mem := d.sys.Bus().GetMemory()
	start := addr & JAG_ADDR_MASK
	if start >= uint64(len(mem)) {
		return nil
	}
	end := min(start+uint64(size), uint64(len(mem)))
	return append([]byte{}, mem[start:end]...)
}

func (d *DebugJaguar) WriteMemory(addr uint64, data []byte) {
	mem := d.sys.Bus().GetMemory()
	start := addr & JAG_ADDR_MASK
	if start+uint64(len(data)) > uint64(len(mem)) {
		return
	}
	copy(mem[start:], data)
}

func (d *DebugJaguar) SetBreakpointChannel(ch chan<- BreakpointEvent, cpuID int) {
	d.bpChan = ch
	d.cpuID = cpuID
}
