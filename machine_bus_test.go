package main

import (
	"os"
	"path/filepath"
	"testing"
)

type recordedWrite struct {
	addr, value, mask uint32
}

func newRecordingBus(t *testing.T) (*JaguarBus, *[]recordedWrite, *uint32) {
	t.Helper()
	bus := NewJaguarBus()
	writes := &[]recordedWrite{}
	reg := new(uint32)
	*reg = 0x11223344
	bus.MapIO(0xF10000, 0xF1000F,
		func(addr uint32) uint32 { return *reg },
		func(addr, value, mask uint32) {
			*writes = append(*writes, recordedWrite{addr, value, mask})
			*reg = *reg&^mask | value&mask
		})
	return bus, writes, reg
}

func TestJaguarBus_BigEndianRAM(t *testing.T) {
	bus := NewJaguarBus()
	bus.Write32(0x1000, 0x12345678)
	mem := bus.GetMemory()
	if mem[0x1000] != 0x12 || mem[0x1003] != 0x78 {
		t.Fatalf("memory bytes % X, want 12 34 56 78", mem[0x1000:0x1004])
	}
	if got := bus.Read16(0x1002); got != 0x5678 {
		t.Fatalf("Read16 = 0x%04X", got)
	}
	if got := bus.Fetch16(0x1000); got != 0x1234 {
		t.Fatalf("Fetch16 = 0x%04X", got)
	}
	bus.Write8(0x1001, 0xAB)
	requireJaguarU32(t, "Read32", bus.Read32(0x1000), 0x12AB5678)
}

func TestJaguarBus_AddressMasking(t *testing.T) {
	bus := NewJaguarBus()
	bus.Write32(0xFF001000, 0xCAFEBABE)
	requireJaguarU32(t, "masked", bus.Read32(0x001000), 0xCAFEBABE)

	// A long at the top of memory wraps to address 0.
	bus.Write32(0xFFFFFE, 0xA1B2C3D4)
	requireJaguarU32(t, "wrap", bus.Read32(0xFFFFFE), 0xA1B2C3D4)
	if got := bus.Read16(0); got != 0xC3D4 {
		t.Fatalf("low word at 0 = 0x%04X", got)
	}
}

func TestJaguarBus_DeviceLanes(t *testing.T) {
	bus, writes, reg := newRecordingBus(t)

	if got := bus.Read8(0xF10001); got != 0x22 {
		t.Fatalf("Read8 lane 1 = 0x%02X", got)
	}
	if got := bus.Read16(0xF10002); got != 0x3344 {
		t.Fatalf("Read16 low = 0x%04X", got)
	}

	bus.Write8(0xF10003, 0xEE)
	bus.Write16(0xF10000, 0xBEEF)
	bus.Write32(0xF10004, 0x01020304)

	want := []recordedWrite{
		{0xF10000, 0x000000EE, 0x000000FF},
		{0xF10000, 0xBEEF0000, 0xFFFF0000},
		{0xF10004, 0x01020304, 0xFFFFFFFF},
	}
	if len(*writes) != len(want) {
		t.Fatalf("got %d writes, want %d", len(*writes), len(want))
	}
	for i, w := range want {
		if (*writes)[i] != w {
			t.Fatalf("write %d = %+v, want %+v", i, (*writes)[i], w)
		}
	}
	requireJaguarU32(t, "device register", *reg, 0x01020304)
	if bus.GetMemory()[0xF10003] != 0 {
		t.Fatal("device write reached RAM")
	}
}

func TestJaguarBus_SealedMapPanics(t *testing.T) {
	bus := NewJaguarBus()
	bus.Seal()
	defer func() {
		if recover() == nil {
			t.Fatal("MapIO after Seal did not panic")
		}
	}()
	bus.MapIO(0x1000, 0x10FF, nil, nil)
}

func TestJaguarBus_LoadImage(t *testing.T) {
	bus := NewJaguarBus()
	path := filepath.Join(t.TempDir(), "prog.bin")
	if err := os.WriteFile(path, []byte{0x98, 0x01, 0xE4, 0x00}, 0o644); err != nil {
		t.Fatal(err)
	}
	n, err := bus.LoadImage(path, GPU_RAM_START)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if n != 4 {
		t.Fatalf("loaded %d bytes", n)
	}
	requireJaguarU32(t, "image", bus.Read32(GPU_RAM_START), 0x9801E400)

	if err := bus.LoadBytes(JAG_MEM_SIZE-2, []byte{1, 2, 3}); err == nil {
		t.Fatal("LoadBytes past end of memory succeeded")
	}
	if _, err := bus.LoadImage(filepath.Join(t.TempDir(), "missing.bin"), 0); err == nil {
		t.Fatal("LoadImage of a missing file succeeded")
	}
}

func TestJaguarBus_ResetKeepsDevices(t *testing.T) {
	bus, writes, _ := newRecordingBus(t)
	bus.Write32(0x2000, 0xFFFFFFFF)
	bus.Reset()
	requireJaguarU32(t, "RAM after reset", bus.Read32(0x2000), 0)
	bus.Write32(0xF10008, 1)
	if len(*writes) != 1 {
		t.Fatal("device mapping lost on reset")
	}
}

func BenchmarkJaguarBus_Read32RAM(b *testing.B) {
	bus := NewJaguarBus()
	bus.Write32(0x1000, 0x12345678)
	b.ResetTimer()
	for b.Loop() {
		_ = bus.Read32(0x1000)
	}
}

func BenchmarkJaguarBus_Read32Device(b *testing.B) {
	sys := NewJaguarSystem()
	bus := sys.Bus()
	b.ResetTimer()
	for b.Loop() {
		_ = bus.Read32(GPU_CTRL_BASE + JAG_CTRL*4)
	}
}
