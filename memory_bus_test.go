package main

import "testing"

func TestFlatMemory_BigEndian(t *testing.T) {
	m := newFlatMemory()
	m.Write32(0x100, 0xDEADBEEF)
	if m.Read8(0x100) != 0xDE || m.Read8(0x103) != 0xEF {
		t.Fatalf("bytes % X", m[0x100:0x104])
	}
	if got := m.Read16(0x102); got != 0xBEEF {
		t.Fatalf("Read16 = 0x%04X", got)
	}
	m.Write16(0x200, 0x1234)
	if got := m.Fetch16(0x200); got != 0x1234 {
		t.Fatalf("Fetch16 = 0x%04X", got)
	}
	// Addresses above 24 bits alias.
	requireJaguarU32(t, "aliased", m.Read32(0x01000100), 0xDEADBEEF)
}

// JaguarBus and flatMemory must both satisfy the core's memory interface.
var (
	_ JaguarMemory = (*JaguarBus)(nil)
	_ JaguarMemory = flatMemory(nil)
)
