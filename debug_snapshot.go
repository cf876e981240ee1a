// debug_snapshot.go - GPU/DSP state snapshots for the monitor

package main

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

/*
File layout, little-endian:

	"JRSN"               magic
	uint32               version
	uint8                variant (0 GPU, 1 DSP)
	JaguarState          R, A, Ctrl, PPC, Accum as fixed-size fields
	uint32               RAM length
	gzip stream          RAM

R holds whichever bank was active when the snapshot was taken. CTRL
carries the run bit and the interrupt latches, so halted and pending
state travel with the control array.
*/

const (
	snapshotMagic   = "JRSN"
	snapshotVersion = 2
)

// MachineSnapshot is one core's state plus the shared RAM.
type MachineSnapshot struct {
	Variant JaguarVariant
	State   JaguarState
	Memory  []byte
}

// TakeSnapshot copies the core state and all of RAM. Device registers are
// not read, so taking a snapshot has no side effects.
func TakeSnapshot(cpu *JaguarCPU, bus *JaguarBus) *MachineSnapshot {
	return &MachineSnapshot{
		Variant: cpu.Variant(),
		State:   cpu.SaveState(),
		Memory:  bytes.Clone(bus.GetMemory()),
	}
}

// RestoreSnapshot restores RAM first and the core last, so an interrupt
// taken on restore pushes into the restored stack.
func RestoreSnapshot(cpu *JaguarCPU, bus *JaguarBus, snap *MachineSnapshot) error {
	if snap.Variant != cpu.Variant() {
		return fmt.Errorf("snapshot is for %s, not %s", snap.Variant, cpu.Variant())
	}
	if len(snap.Memory) > 0 {
		if err := bus.LoadBytes(0, snap.Memory); err != nil {
			return fmt.Errorf("restoring memory: %w", err)
		}
	}
	cpu.RestoreState(snap.State)
	return nil
}

// SaveSnapshotToFile writes a snapshot to disk with gzip-compressed RAM.
func SaveSnapshotToFile(snap *MachineSnapshot, path string) error {
	var buf bytes.Buffer
	buf.WriteString(snapshotMagic)
	binary.Write(&buf, binary.LittleEndian, uint32(snapshotVersion))
	buf.WriteByte(byte(snap.Variant))
	if err := binary.Write(&buf, binary.LittleEndian, &snap.State); err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	binary.Write(&buf, binary.LittleEndian, uint32(len(snap.Memory)))

	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(snap.Memory); err != nil {
		return fmt.Errorf("compressing memory: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("closing gzip: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// LoadSnapshotFromFile reads a snapshot written by SaveSnapshotToFile.
func LoadSnapshotFromFile(path string) (*MachineSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	r := bytes.NewReader(data)

	magic := make([]byte, len(snapshotMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	if string(magic) != snapshotMagic {
		return nil, fmt.Errorf("invalid snapshot magic: %q", string(magic))
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	if version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version: %d", version)
	}

	snap := &MachineSnapshot{}
	variant, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("reading variant: %w", err)
	}
	if variant > byte(JaguarDSP) {
		return nil, fmt.Errorf("unknown core variant %d", variant)
	}
	snap.Variant = JaguarVariant(variant)

	if err := binary.Read(r, binary.LittleEndian, &snap.State); err != nil {
		return nil, fmt.Errorf("reading core state: %w", err)
	}

	var memLen uint32
	if err := binary.Read(r, binary.LittleEndian, &memLen); err != nil {
		return nil, fmt.Errorf("reading memory length: %w", err)
	}
	if memLen > JAG_MEM_SIZE {
		return nil, fmt.Errorf("memory image too large: %d bytes", memLen)
	}

	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening gzip reader: %w", err)
	}
	defer gz.Close()

	snap.Memory = make([]byte, memLen)
	if _, err := io.ReadFull(gz, snap.Memory); err != nil {
		return nil, fmt.Errorf("decompressing memory: %w", err)
	}
	return snap, nil
}
