// cpu_jaguar_runner.go - GPU/DSP scheduler and host glue

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
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// SystemStatus is a copy of both cores published by the scheduler for
// observers on other goroutines (register viewer, batch reports).
type SystemStatus struct {
	Cycles    uint64
	GPU       JaguarState
	DSP       JaguarState
	GPUHalted bool
	DSPHalted bool
	HostIRQs  uint64
}

// JaguarSystem wires a GPU and a DSP to one bus and time-slices them from
// a single goroutine. It is the JaguarHost of both cores.
type JaguarSystem struct {
	bus *JaguarBus
	GPU *JaguarCPU
	DSP *JaguarCPU
	dac *JaguarDAC

	slice   int
	current *JaguarCPU
	cycles  uint64

	hostIRQs        atomic.Uint64
	OnHostInterrupt func(cpu *JaguarCPU)
	OnHalt          func(cpu *JaguarCPU, halted bool)

	// breakAt, when set, is consulted before every instruction.
	breakAt func(cpu *JaguarCPU) bool

	status atomic.Pointer[SystemStatus]

	running  atomic.Bool
	execMu   sync.Mutex
	execDone chan struct{}
	stopCh   chan struct{}

	throttle bool
}

func NewJaguarSystem() *JaguarSystem {
	s := &JaguarSystem{
		bus:   NewJaguarBus(),
		slice: JAG_DEFAULT_SLICE,
	}
	s.GPU = NewJaguarCPU(JaguarGPU, s.bus, s)
	s.DSP = NewJaguarCPU(JaguarDSP, s.bus, s)
	s.dac = NewJaguarDAC(s.DSP)

	// The DAC sits inside the DSP control window and must be mapped first
	// so its registers win the lookup.
	s.bus.MapIO(DSP_LTXD, DSP_SMODE+3, s.dac.HandleRead, s.dac.HandleWrite)
	s.mapControlPort(s.GPU)
	s.mapControlPort(s.DSP)
	s.publishStatus()
	return s
}

func (s *JaguarSystem) mapControlPort(cpu *JaguarCPU) {
	base := cpu.info.ctrlBase
	s.bus.MapIO(base, base+JAG_CTRL_PORT_SIZE-1,
		func(addr uint32) uint32 {
			return cpu.CtrlRead((addr - base) / 4)
		},
		func(addr uint32, value uint32, mask uint32) {
			cpu.CtrlWrite((addr-base)/4, value, mask)
		})
}

func (s *JaguarSystem) Bus() *JaguarBus  { return s.bus }
func (s *JaguarSystem) DAC() *JaguarDAC  { return s.dac }
func (s *JaguarSystem) Cycles() uint64   { return s.cycles }
func (s *JaguarSystem) HostIRQs() uint64 { return s.hostIRQs.Load() }
func (s *JaguarSystem) IsRunning() bool  { return s.running.Load() }

// SetSlice sets the per-core time slice in cycles.
func (s *JaguarSystem) SetSlice(cycles int) {
	if cycles < 1 {
		cycles = 1
	}
	s.slice = cycles
}

// SetThrottle paces the scheduler against the DAC ring when audio is live.
func (s *JaguarSystem) SetThrottle(on bool) { s.throttle = on }

// CPU returns the core for a variant.
func (s *JaguarSystem) CPU(v JaguarVariant) *JaguarCPU {
	if v == JaguarDSP {
		return s.DSP
	}
	return s.GPU
}

// Reset clears RAM, both cores and the DAC.
func (s *JaguarSystem) Reset() {
	s.bus.Reset()
	s.GPU.Reset()
	s.DSP.Reset()
	s.dac.Reset()
	s.cycles = 0
	s.hostIRQs.Store(0)
	s.publishStatus()
}

// Boot loads an image, points the core at entry and sets its run bit
// through the control port so the usual notifications fire.
func (s *JaguarSystem) Boot(v JaguarVariant, image []byte, loadAddr, entry uint32) error {
	if err := s.bus.LoadBytes(loadAddr, image); err != nil {
		return fmt.Errorf("%s boot: %w", v, err)
	}
	cpu := s.CPU(v)
	cpu.CtrlWrite(JAG_PC, entry, 0xFFFFFFFF)
	cpu.CtrlWrite(JAG_CTRL, JAG_CTRL_GO, JAG_CTRL_GO)
	return nil
}

// ------------------------------------------------------------------------------
// JaguarHost
// ------------------------------------------------------------------------------

func (s *JaguarSystem) CPUHalted(cpu *JaguarCPU, halted bool) {
	if s.OnHalt != nil {
		s.OnHalt(cpu, halted)
	}
}

// Yield ends the slice of whichever core is executing, which may not be
// the one that raised it (GPU code starting the DSP, for instance).
func (s *JaguarSystem) Yield(cpu *JaguarCPU) {
	if s.current != nil {
		s.current.AbortTimeslice()
	}
}

func (s *JaguarSystem) HostInterrupt(cpu *JaguarCPU) {
	s.hostIRQs.Add(1)
	if s.OnHostInterrupt != nil {
		s.OnHostInterrupt(cpu)
	}
}

// ------------------------------------------------------------------------------
// Scheduling
// ------------------------------------------------------------------------------

// RunCycles advances the machine by at least total cycles, one slice per
// core at a time. It returns early when both cores are halted or a
// breakpoint is hit, reporting the cycles elapsed and whether it broke.
func (s *JaguarSystem) RunCycles(total int) (int, bool) {
	elapsed := 0
	for elapsed < total {
		if s.GPU.Halted() && s.DSP.Halted() {
			break
		}
		slice := min(s.slice, total-elapsed)
		if s.breakAt != nil {
			if s.runTraced(slice) {
				return elapsed, true
			}
		} else {
			s.runSlice(s.GPU, slice)
			s.runSlice(s.DSP, slice)
		}
		s.dac.Clock(slice)
		elapsed += slice
		s.cycles += uint64(slice)
	}
	return elapsed, false
}

func (s *JaguarSystem) runSlice(cpu *JaguarCPU, cycles int) int {
	s.current = cpu
	used := cpu.Execute(cycles)
	s.current = nil
	return used
}

// runTraced steps both cores one instruction at a time, checking the
// breakpoint hook before each one.
func (s *JaguarSystem) runTraced(slice int) bool {
	for range slice {
		for _, cpu := range [2]*JaguarCPU{s.GPU, s.DSP} {
			if cpu.Halted() {
				continue
			}
			if s.breakAt(cpu) {
				return true
			}
			s.runSlice(cpu, 1)
		}
	}
	return false
}

// SetBreakHook installs or clears the per-instruction breakpoint check.
func (s *JaguarSystem) SetBreakHook(fn func(cpu *JaguarCPU) bool) {
	s.breakAt = fn
}

// Start runs the scheduler on its own goroutine until Stop, both cores
// halt, or a breakpoint fires.
func (s *JaguarSystem) Start() {
	s.execMu.Lock()
	defer s.execMu.Unlock()
	if s.running.Load() {
		return
	}
	s.bus.Seal()
	s.running.Store(true)
	s.GPU.running.Store(true)
	s.DSP.running.Store(true)
	s.stopCh = make(chan struct{})
	s.execDone = make(chan struct{})
	go s.loop(s.stopCh, s.execDone)
}

func (s *JaguarSystem) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer func() {
		s.GPU.running.Store(false)
		s.DSP.running.Store(false)
		s.running.Store(false)
		s.publishStatus()
	}()

	const batch = 16384
	for {
		select {
		case <-stop:
			return
		default:
		}
		n, hit := s.RunCycles(batch)
		s.publishStatus()
		if hit || n == 0 {
			return
		}
		if s.throttle {
			for s.dac.Backlog() > dacRingSize*3/4 {
				select {
				case <-stop:
					return
				case <-time.After(time.Millisecond):
				}
			}
		}
	}
}

// Stop halts the scheduler goroutine and waits for it to exit.
func (s *JaguarSystem) Stop() {
	s.execMu.Lock()
	defer s.execMu.Unlock()
	if !s.running.Load() && s.execDone == nil {
		return
	}
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
	if s.execDone != nil {
		<-s.execDone
		s.execDone = nil
	}
}

// Wait blocks until the scheduler goroutine exits on its own.
func (s *JaguarSystem) Wait() {
	s.execMu.Lock()
	done := s.execDone
	s.execMu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *JaguarSystem) publishStatus() {
	s.status.Store(&SystemStatus{
		Cycles:    s.cycles,
		GPU:       s.GPU.SaveState(),
		DSP:       s.DSP.SaveState(),
		GPUHalted: s.GPU.Halted(),
		DSPHalted: s.DSP.Halted(),
		HostIRQs:  s.hostIRQs.Load(),
	})
}

// Status returns the most recently published copy of both cores.
func (s *JaguarSystem) Status() *SystemStatus { return s.status.Load() }

// FormatStatus renders both cores as text, one register row per line.
func FormatStatus(st *SystemStatus) []string {
	if st == nil {
		return nil
	}
	lines := []string{fmt.Sprintf("cycles %d  host irqs %d", st.Cycles, st.HostIRQs)}
	for _, core := range []struct {
		name   string
		s      JaguarState
		halted bool
	}{{"GPU", st.GPU, st.GPUHalted}, {"DSP", st.DSP, st.DSPHalted}} {
		state := "running"
		if core.halted {
			state = "halted"
		}
		lines = append(lines, fmt.Sprintf("%s %-7s PC $%06X  FLAGS $%05X  CTRL $%05X  ACC $%012X",
			core.name, state, core.s.Ctrl[JAG_PC], core.s.Ctrl[JAG_FLAGS], core.s.Ctrl[JAG_CTRL], uint64(core.s.Accum)&0xFFFFFFFFFFFF))
		for row := 0; row < 32; row += 8 {
			var sb strings.Builder
			fmt.Fprintf(&sb, "R%02d", row)
			for _, v := range core.s.R[row : row+8] {
				fmt.Fprintf(&sb, " %08X", v)
			}
			lines = append(lines, sb.String())
		}
	}
	return lines
}
