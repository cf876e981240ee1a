package main

import (
	"slices"
	"strings"
	"testing"
)

func TestJaguarSystem_BootRunsUntilHalt(t *testing.T) {
	sys := NewJaguarSystem()
	var halts []bool
	sys.OnHalt = func(cpu *JaguarCPU, halted bool) {
		if cpu == sys.GPU {
			halts = append(halts, halted)
		}
	}
	hostIRQs := 0
	sys.OnHostInterrupt = func(*JaguarCPU) { hostIRQs++ }

	prog := jagProgram(
		jagCtrlStore(GPU_CTRL_BASE, JAG_CTRL_GO|JAG_CTRL_CPUINT),
		jagCtrlStore(GPU_CTRL_BASE, 0),
		[]uint16{jagOp(57, 0, 0), jagOp(57, 0, 0)},
	)
	if err := sys.Boot(JaguarGPU, jagImage(prog), GPU_RAM_START, GPU_RAM_START); err != nil {
		t.Fatal(err)
	}
	if sys.GPU.Halted() {
		t.Fatal("Boot left the GPU halted")
	}

	elapsed, hit := sys.RunCycles(1000)
	if hit {
		t.Fatal("RunCycles reported a breakpoint")
	}
	if elapsed != JAG_DEFAULT_SLICE {
		t.Fatalf("elapsed = %d, want one slice", elapsed)
	}
	if !sys.GPU.Halted() {
		t.Fatal("GPU still running after storing 0 to CTRL")
	}
	if !slices.Equal(halts, []bool{false, true}) {
		t.Fatalf("halt notifications %v", halts)
	}
	if sys.HostIRQs() != 1 || hostIRQs != 1 {
		t.Fatalf("host interrupts = %d (callback %d)", sys.HostIRQs(), hostIRQs)
	}
	if sys.GPU.Ctrl(JAG_CTRL)&JAG_CTRL_CPUINT != 0 {
		t.Fatal("CPUINT stayed set in CTRL")
	}
	if sys.Cycles() != JAG_DEFAULT_SLICE {
		t.Fatalf("Cycles = %d", sys.Cycles())
	}
}

func TestJaguarSystem_BootRejectsOversizedImage(t *testing.T) {
	sys := NewJaguarSystem()
	image := make([]byte, 0x100)
	if err := sys.Boot(JaguarDSP, image, JAG_MEM_SIZE-0x10, DSP_RAM_START); err == nil {
		t.Fatal("Boot accepted an image past the end of memory")
	}
	if !sys.DSP.Halted() {
		t.Fatal("failed Boot started the DSP")
	}
}

// The GPU starts the DSP through its control port; the DSP halts itself.
func TestJaguarSystem_GPUStartsDSP(t *testing.T) {
	sys := NewJaguarSystem()
	dspProg := jagProgram(jagCtrlStore(DSP_CTRL_BASE, 0), []uint16{jagOp(57, 0, 0)})
	if err := sys.Bus().LoadBytes(DSP_RAM_START, jagImage(dspProg)); err != nil {
		t.Fatal(err)
	}
	sys.DSP.SetPC(DSP_RAM_START)

	gpuProg := jagProgram(
		jagCtrlStore(DSP_CTRL_BASE, JAG_CTRL_GO),
		jagCtrlStore(GPU_CTRL_BASE, 0),
		[]uint16{jagOp(57, 0, 0)},
	)
	if err := sys.Boot(JaguarGPU, jagImage(gpuProg), GPU_RAM_START, GPU_RAM_START); err != nil {
		t.Fatal(err)
	}

	elapsed, _ := sys.RunCycles(10 * JAG_DEFAULT_SLICE)
	if !sys.GPU.Halted() || !sys.DSP.Halted() {
		t.Fatalf("halted gpu=%v dsp=%v", sys.GPU.Halted(), sys.DSP.Halted())
	}
	if elapsed > 3*JAG_DEFAULT_SLICE {
		t.Fatalf("elapsed = %d, cores should halt within three slices", elapsed)
	}
	if sys.DSP.PC() <= DSP_RAM_START {
		t.Fatalf("DSP never ran, PC $%06X", sys.DSP.PC())
	}
}

func TestJaguarSystem_RunCyclesIdleWhenHalted(t *testing.T) {
	sys := NewJaguarSystem()
	if elapsed, hit := sys.RunCycles(1000); elapsed != 0 || hit {
		t.Fatalf("RunCycles on a halted machine = %d,%v", elapsed, hit)
	}
}

func TestJaguarSystem_SetSliceClamps(t *testing.T) {
	sys := NewJaguarSystem()
	sys.SetSlice(0)
	if err := sys.Boot(JaguarGPU, jagImage([]uint16{jagOp(53, 0x1F, 0)}), GPU_RAM_START, GPU_RAM_START); err != nil {
		t.Fatal(err)
	}
	if elapsed, _ := sys.RunCycles(5); elapsed != 5 {
		t.Fatalf("elapsed = %d with a one-cycle slice", elapsed)
	}
}

func TestJaguarSystem_StartStop(t *testing.T) {
	sys, _, _ := newNopSystem(t)
	sys.Start()
	if !sys.IsRunning() || !sys.GPU.IsRunning() {
		t.Fatal("scheduler not running after Start")
	}
	sys.Start() // second Start is a no-op
	sys.Stop()
	if sys.IsRunning() || sys.GPU.IsRunning() {
		t.Fatal("scheduler still running after Stop")
	}
	sys.Stop()

	st := sys.Status()
	if st == nil || st.GPUHalted {
		t.Fatalf("status after Stop %+v", st)
	}
}

func TestJaguarSystem_StartEndsWhenHalted(t *testing.T) {
	sys := NewJaguarSystem()
	prog := jagProgram(jagCtrlStore(GPU_CTRL_BASE, 0), []uint16{jagOp(57, 0, 0)})
	if err := sys.Boot(JaguarGPU, jagImage(prog), GPU_RAM_START, GPU_RAM_START); err != nil {
		t.Fatal(err)
	}
	sys.Start()
	waitStopped(t, sys)
	if sys.IsRunning() {
		t.Fatal("IsRunning after the scheduler exited")
	}
	if st := sys.Status(); !st.GPUHalted || !st.DSPHalted {
		t.Fatalf("published status %+v", st)
	}
}

func TestJaguarSystem_Reset(t *testing.T) {
	sys, _, _ := newNopSystem(t)
	sys.RunCycles(128)
	sys.Reset()
	if sys.Cycles() != 0 || !sys.GPU.Halted() || sys.GPU.PC() != 0 {
		t.Fatalf("after Reset cycles=%d halted=%v pc=$%X", sys.Cycles(), sys.GPU.Halted(), sys.GPU.PC())
	}
	if sys.Bus().Read16(GPU_RAM_START) != 0 {
		t.Fatal("Reset kept RAM contents")
	}
}

func TestFormatStatus(t *testing.T) {
	if FormatStatus(nil) != nil {
		t.Fatal("FormatStatus(nil) returned lines")
	}

	sys := NewJaguarSystem()
	sys.DSP.R[9] = 0xDEADBEEF
	sys.publishStatus()
	lines := FormatStatus(sys.Status())
	if len(lines) != 11 {
		t.Fatalf("got %d lines", len(lines))
	}
	if lines[0] != "cycles 0  host irqs 0" {
		t.Fatalf("header %q", lines[0])
	}
	want := "GPU halted  PC $000000  FLAGS $00000  CTRL $00000  ACC $000000000000"
	if lines[1] != want {
		t.Fatalf("GPU line\n got %q\nwant %q", lines[1], want)
	}
	if !strings.HasPrefix(lines[6], "DSP halted") {
		t.Fatalf("DSP line %q", lines[6])
	}
	if lines[8] != "R08 00000000 DEADBEEF 00000000 00000000 00000000 00000000 00000000 00000000" {
		t.Fatalf("DSP R08 row %q", lines[8])
	}
}
