package main

import (
	"bytes"
	"testing"
)

type jaguarTestHost struct {
	halts   []bool
	yields  int
	hostIRQ int
}

func (h *jaguarTestHost) CPUHalted(_ *JaguarCPU, halted bool) { h.halts = append(h.halts, halted) }
func (h *jaguarTestHost) Yield(*JaguarCPU)                     { h.yields++ }
func (h *jaguarTestHost) HostInterrupt(*JaguarCPU)             { h.hostIRQ++ }

type jaguarTestRig struct {
	mem    flatMemory
	host   *jaguarTestHost
	cpu    *JaguarCPU
	origin uint32
}

func newJaguarTestRig(variant JaguarVariant) *jaguarTestRig {
	mem := newFlatMemory()
	host := &jaguarTestHost{}
	cpu := NewJaguarCPU(variant, mem, host)
	return &jaguarTestRig{
		mem:    mem,
		host:   host,
		cpu:    cpu,
		origin: cpu.info.ramStart,
	}
}

// load writes words at the origin, points PC at it and sets the run bit
// without notifying the host.
func (r *jaguarTestRig) load(words ...uint16) {
	for i, w := range words {
		r.mem.Write16(r.origin+uint32(i*2), w)
	}
	r.cpu.SetPC(r.origin)
	r.cpu.SetCtrl(JAG_CTRL, r.cpu.Ctrl(JAG_CTRL)|JAG_CTRL_GO)
}

// jagOp encodes one instruction word.
func jagOp(index, src, dst int) uint16 {
	return uint16(index<<10 | (src&31)<<5 | dst&31)
}

// jagMovei encodes MOVEI #value, rN as three words.
func jagMovei(dst int, value uint32) []uint16 {
	return []uint16{jagOp(38, 0, dst), uint16(value), uint16(value >> 16)}
}

func jagProgram(parts ...[]uint16) []uint16 {
	var out []uint16
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func captureJaguarLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	old := jaguarLog
	buf := &bytes.Buffer{}
	jaguarLog = buf
	t.Cleanup(func() { jaguarLog = old })
	return buf
}

func requireJaguarU32(t *testing.T, name string, got, want uint32) {
	t.Helper()
	if got != want {
		t.Fatalf("%s = 0x%08X, want 0x%08X", name, got, want)
	}
}

func requireJaguarFlags(t *testing.T, cpu *JaguarCPU, set, clear uint32) {
	t.Helper()
	flags := cpu.Flags()
	if flags&set != set {
		t.Fatalf("FLAGS = 0x%05X (%s), want bits 0x%05X set", flags, cpu.FlagsString(), set)
	}
	if flags&clear != 0 {
		t.Fatalf("FLAGS = 0x%05X (%s), want bits 0x%05X clear", flags, cpu.FlagsString(), clear)
	}
}

// jagImage flattens words into a big-endian image.
func jagImage(words []uint16) []byte {
	out := make([]byte, 0, len(words)*2)
	for _, w := range words {
		out = append(out, byte(w>>8), byte(w))
	}
	return out
}

// jagCtrlStore writes value to the CTRL register of the port at ctrlBase,
// using R1 and R2.
func jagCtrlStore(ctrlBase uint32, value int) []uint16 {
	return jagProgram(
		jagMovei(1, ctrlBase+JAG_CTRL*4),
		[]uint16{jagOp(35, value, 2), jagOp(47, 1, 2)},
	)
}
