package main

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestAddressParsing(t *testing.T) {
	tests := []struct {
		input    string
		expected uint64
		ok       bool
	}{
		{"$1000", 0x1000, true},
		{"0x1000", 0x1000, true},
		{"0X1000", 0x1000, true},
		{"1000", 0x1000, true},
		{"#4096", 4096, true},
		{"FF", 0xFF, true},
		{"$F03000", 0xF03000, true},
		{" $10 ", 0x10, true},
		{"", 0, false},
		{"$", 0, false},
		{"#12AB", 0, false},
		{"xyz", 0, false},
	}

	for _, tt := range tests {
		val, ok := ParseAddress(tt.input)
		if ok != tt.ok {
			t.Errorf("ParseAddress(%q): ok=%v, want %v", tt.input, ok, tt.ok)
			continue
		}
		if ok && val != tt.expected {
			t.Errorf("ParseAddress(%q) = 0x%X, want 0x%X", tt.input, val, tt.expected)
		}
	}
}

func TestCommandParsing(t *testing.T) {
	tests := []struct {
		input string
		name  string
		args  []string
	}{
		{"r", "r", nil},
		{"r pc 1000", "r", []string{"pc", "1000"}},
		{"D $F03000 10", "d", []string{"$F03000", "10"}},
		{"  bl  ", "bl", nil},
		{"w $100 41 42", "w", []string{"$100", "41", "42"}},
		{"", "", nil},
	}

	for _, tt := range tests {
		cmd := ParseCommand(tt.input)
		if cmd.Name != tt.name {
			t.Errorf("ParseCommand(%q).Name = %q, want %q", tt.input, cmd.Name, tt.name)
		}
		if len(cmd.Args) != len(tt.args) {
			t.Errorf("ParseCommand(%q).Args = %v, want %v", tt.input, cmd.Args, tt.args)
			continue
		}
		for i := range tt.args {
			if cmd.Args[i] != tt.args[i] {
				t.Errorf("ParseCommand(%q).Args[%d] = %q, want %q", tt.input, i, cmd.Args[i], tt.args[i])
			}
		}
	}
}

func TestEvalAddress(t *testing.T) {
	sys := NewJaguarSystem()
	gpu, _ := NewDebugJaguarPair(sys)
	sys.GPU.R[3] = 0x1000
	sys.GPU.A[0] = 0x55
	sys.GPU.SetPC(GPU_RAM_START + 0x20)

	tests := []struct {
		expr string
		want uint64
		ok   bool
	}{
		{"r3", 0x1000, true},
		{"r3+10", 0x1010, true},
		{"r3-#16", 0xFF0, true},
		{"pc+4", GPU_RAM_START + 0x24, true},
		{"a0", 0x55, true}, // registers shadow hex numbers
		{"$20+$20", 0x40, true},
		{"r3+zz", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := EvalAddress(tt.expr, gpu)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("EvalAddress(%q) = 0x%X,%v want 0x%X,%v", tt.expr, got, ok, tt.want, tt.ok)
		}
	}

	if v, ok := EvalAddress("a0", nil); !ok || v != 0xA0 {
		t.Fatalf("EvalAddress without a CPU = 0x%X,%v", v, ok)
	}
}

// newTestMonitor registers both cores of a fresh system, GPU focused.
func newTestMonitor(t *testing.T) (*MachineMonitor, *JaguarSystem) {
	t.Helper()
	sys := NewJaguarSystem()
	gpu, dsp := NewDebugJaguarPair(sys)
	mon := NewMachineMonitor(sys)
	mon.RegisterCPU("gpu", gpu, sys.GPU)
	mon.RegisterCPU("dsp", dsp, sys.DSP)
	return mon, sys
}

// execText runs one command and returns its output without the echo line.
func execText(t *testing.T, mon *MachineMonitor, input string) []string {
	t.Helper()
	mon.TakeOutput()
	if mon.Exec(input) {
		t.Fatalf("%q asked the monitor to exit", input)
	}
	var out []string
	for _, line := range mon.TakeOutput() {
		if line.Text != "> "+input {
			out = append(out, line.Text)
		}
	}
	return out
}

func requireLine(t *testing.T, out []string, want string) {
	t.Helper()
	if !slices.Contains(out, want) {
		t.Fatalf("missing %q in output:\n%s", want, strings.Join(out, "\n"))
	}
}

func TestMonitor_Registers(t *testing.T) {
	mon, sys := newTestMonitor(t)

	requireLine(t, execText(t, mon, "r r5 $42"), "R5 = $42")
	requireJaguarU32(t, "R5", sys.GPU.R[5], 0x42)

	requireLine(t, execText(t, mon, "r bogus 1"), "Unknown register: bogus")
	requireLine(t, execText(t, mon, "r r5 zz"), "Invalid value: zz")

	out := execText(t, mon, "r")
	if !strings.HasPrefix(out[0], "R0      $00000000") {
		t.Fatalf("first register line %q", out[0])
	}
	requireLine(t, out, "flags   ...........  bank 0")
}

func TestMonitor_MemoryWriteAndDump(t *testing.T) {
	mon, sys := newTestMonitor(t)

	requireLine(t, execText(t, mon, "w $F03000 41 42 43"), "Wrote 3 byte(s) at $F03000")
	if got := sys.Bus().Read32(GPU_RAM_START); got != 0x41424300 {
		t.Fatalf("RAM = 0x%08X", got)
	}

	out := execText(t, mon, "m $F03000 1")
	if len(out) != 1 {
		t.Fatalf("dump produced %d lines", len(out))
	}
	want := "F03000: 41 42 43 00 00 00 00 00  00 00 00 00 00 00 00 00  ABC............."
	if out[0] != want {
		t.Fatalf("dump line\n got %q\nwant %q", out[0], want)
	}

	requireLine(t, execText(t, mon, "f $F03010 $F0301F EE"), "Filled $F03010-$F0301F with $EE")
	if got := sys.Bus().Read32(GPU_RAM_START + 0x1C); got != 0xEEEEEEEE {
		t.Fatalf("filled RAM = 0x%08X", got)
	}
	requireLine(t, execText(t, mon, "f $F03010 $F03000 EE"), "Invalid argument")
}

func TestMonitor_Breakpoints(t *testing.T) {
	mon, sys := newTestMonitor(t)

	requireLine(t, execText(t, mon, "bl"), "No breakpoints")
	requireLine(t, execText(t, mon, "b $F03010"), "Breakpoint set at $F03010")

	requireLine(t, execText(t, mon, "cpu dsp"), "Focused on id:1 dsp")
	sys.DSP.R[1] = DSP_RAM_START
	requireLine(t, execText(t, mon, "b r1+4"), "Breakpoint set at $F1B004")

	out := execText(t, mon, "bl")
	requireLine(t, out, "$F03010 (id:0 gpu)")
	requireLine(t, out, "$F1B004 (id:1 dsp)")

	requireLine(t, execText(t, mon, "bc $F03010"), "No breakpoint at $F03010")
	requireLine(t, execText(t, mon, "bc $F1B004"), "Breakpoint cleared at $F1B004")
	requireLine(t, execText(t, mon, "bc"), "Usage: bc <addr> | bc *")

	execText(t, mon, "cpu 0")
	requireLine(t, execText(t, mon, "bc *"), "All breakpoints cleared")
	requireLine(t, execText(t, mon, "bl"), "No breakpoints")
}

func TestMonitor_CPUList(t *testing.T) {
	mon, _ := newTestMonitor(t)

	out := execText(t, mon, "cpu")
	if len(out) != 2 {
		t.Fatalf("cpu listed %d entries", len(out))
	}
	if !strings.HasPrefix(out[0], "*id:0") || !strings.Contains(out[0], "[HALTED ]") {
		t.Fatalf("gpu entry %q", out[0])
	}
	if !strings.HasPrefix(out[1], " id:1") || !strings.Contains(out[1], "dsp") {
		t.Fatalf("dsp entry %q", out[1])
	}

	requireLine(t, execText(t, mon, "cpu 7"), "No CPU with id:7")
	requireLine(t, execText(t, mon, "cpu z80"), "No CPU matching 'z80'")
}

func TestMonitor_IRQ(t *testing.T) {
	mon, sys := newTestMonitor(t)
	gpu := sys.GPU
	gpu.R[31] = GPU_RAM_START + 0x800
	gpu.SetPC(GPU_RAM_START + 0x100)
	gpu.CtrlWrite(JAG_FLAGS, JAG_EINT2FLAG, 0xFFFFFFFF)

	out := execText(t, mon, "irq 2")
	requireLine(t, out, "gpu line 2 asserted")
	requireLine(t, out, "Interrupt taken, PC $F03100 -> $F03020")
	requireJaguarU32(t, "return", sys.Bus().Read32(gpu.R[31]), GPU_RAM_START+0xFE)

	requireLine(t, execText(t, mon, "irq 5"), "Invalid line: 5")
	requireLine(t, execText(t, mon, "irq"), "Usage: irq <line> [0|1]")

	execText(t, mon, "cpu dsp")
	dsp := sys.DSP
	out = execText(t, mon, "irq 5 0")
	requireLine(t, out, "dsp line 5 cleared")
	if dsp.Ctrl(JAG_CTRL)&JAG_CTRL_LATCH5 != 0 {
		t.Fatal("line 5 latch set after clear")
	}
}

func TestMonitor_CtrlPort(t *testing.T) {
	mon, sys := newTestMonitor(t)

	if out := execText(t, mon, "ctrl"); len(out) != 10 {
		t.Fatalf("ctrl listed %d registers", len(out))
	}
	requireLine(t, execText(t, mon, "ctrl 5"), " 5 $F02114  $00002000")
	requireLine(t, execText(t, mon, "ctrl 20"), "Invalid index: 20")

	requireLine(t, execText(t, mon, "ctrl 4 $F03040"), " 4 $F02110  $00F03040")
	requireJaguarU32(t, "PC", sys.GPU.PC(), GPU_RAM_START+0x40)
}

func TestMonitor_Bank(t *testing.T) {
	mon, sys := newTestMonitor(t)

	requireLine(t, execText(t, mon, "bank"), "active bank 0  RPAGE=0  I=0  ...........")
	sys.GPU.CtrlWrite(JAG_FLAGS, JAG_RPAGEFLAG, 0xFFFFFFFF)
	requireLine(t, execText(t, mon, "bank"), "active bank 1  RPAGE=1  I=0  .A.........")
}

func TestMonitor_MacroAndHelp(t *testing.T) {
	mon, sys := newTestMonitor(t)

	requireLine(t, execText(t, mon, "macro setup r r1 5 ; r r2 6"), "Macro 'setup' defined (2 commands)")
	execText(t, mon, "setup")
	requireJaguarU32(t, "R1", sys.GPU.R[1], 5)
	requireJaguarU32(t, "R2", sys.GPU.R[2], 6)

	out := execText(t, mon, "help")
	if out[0] != "Machine Monitor Commands:" {
		t.Fatalf("help header %q", out[0])
	}
	requireLine(t, execText(t, mon, "zz"), "Unknown command: zz")
}

func TestMonitor_StateFiles(t *testing.T) {
	mon, sys := newTestMonitor(t)
	path := filepath.Join(t.TempDir(), "gpu.jrs")

	sys.GPU.R[9] = 0xCAFE
	requireLine(t, execText(t, mon, "ss "+path), "State saved to "+path+" (CPU+memory)")
	sys.GPU.R[9] = 0

	requireLine(t, execText(t, mon, "sl "+path), "State loaded from "+path+" (CPU+memory)")
	requireJaguarU32(t, "R9", sys.GPU.R[9], 0xCAFE)
}

func TestMonitor_Lua(t *testing.T) {
	mon, sys := newTestMonitor(t)
	requireLine(t, execText(t, mon, "lua -e print(1)"), "Lua scripting not available")

	gpu, dsp := NewDebugJaguarPair(sys)
	host := NewLuaHost(sys, gpu, dsp, mon)
	defer host.Close()
	mon.AttachLua(host)

	sys.GPU.R[4] = 0x42
	requireLine(t, execText(t, mon, `lua -e print(reg("gpu","r4"))`), "66")

	out := execText(t, mon, "lua -e error(\"boom\")")
	if len(out) != 1 || !strings.HasPrefix(out[0], "Lua error: lua: ") || !strings.Contains(out[0], "boom") {
		t.Fatalf("lua error output %q", out)
	}
}

func TestMonitor_ActivateAndGo(t *testing.T) {
	mon, sys := newTestMonitor(t)

	mon.Activate()
	if !mon.IsActive() {
		t.Fatal("monitor not active")
	}
	out := mon.TakeOutput()
	if len(out) == 0 || out[0].Text != "MACHINE MONITOR - Type ? for help" {
		t.Fatalf("activation output %v", out)
	}

	if !mon.Exec("g $F03000") {
		t.Fatal("g did not exit the monitor")
	}
	requireJaguarU32(t, "PC", sys.GPU.PC(), GPU_RAM_START)
	if sys.GPU.Halted() {
		t.Fatal("g left the core halted")
	}
	if !mon.Exec("x") {
		t.Fatal("x did not exit the monitor")
	}
}
