// machine_bus.go - System bus for the Jaguar RISC cores

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

/*
machine_bus.go - System bus shared by the GPU and DSP

JaguarBus provides the 24-bit big-endian address space both RISC cores run
against. Plain RAM covers the full 16MB; devices (the two control ports and
the DSP serial DAC) are overlaid with MapIO.

Technical Details:

    Devices are registered per 256-byte page. A page bitmap keeps the common
    case (no device on the page) to a single slice index.
    Device registers are 32 bits wide. Byte and word accesses to a device are
    widened to the containing long word, with a byte-lane mask describing the
    lanes actually written (big-endian: lane 0 is bits 31-24).
    Opcode fetches use the same storage as data reads.

Concurrency:

    The bus itself is not locked. The GPU and DSP are stepped from a single
    scheduler goroutine, and anything else touching memory (monitor, scripts)
    freezes the scheduler first.
*/

package main

import (
	"fmt"
	"os"
	"sync/atomic"
)

const (
	PAGE_SIZE = 0x100
	PAGE_MASK = 0xFFFF00
)

type IORegion struct {
	/*
		IORegion is one device overlaid on the bus. onRead receives the
		long-word aligned register address. onWrite also receives the lane
		mask so a partial write can be merged into the old value.
	*/
	start   uint32
	end     uint32
	onRead  func(addr uint32) uint32
	onWrite func(addr uint32, value uint32, mask uint32)
}

type JaguarBus struct {
	memory       []byte
	mapping      map[uint32][]IORegion
	ioPageBitmap []bool

	// Sealed once a scheduler starts; mapping changes after that are a wiring bug.
	sealed atomic.Bool
}

func NewJaguarBus() *JaguarBus {
	return &JaguarBus{
		memory:       make([]byte, JAG_MEM_SIZE),
		mapping:      make(map[uint32][]IORegion),
		ioPageBitmap: make([]bool, JAG_MEM_SIZE/PAGE_SIZE),
	}
}

// MapIO overlays a device on [start, end].
func (bus *JaguarBus) MapIO(start, end uint32, onRead func(addr uint32) uint32, onWrite func(addr uint32, value uint32, mask uint32)) {
	if bus.sealed.Load() {
		panic(fmt.Sprintf("MapIO called after execution started (mapping range $%06X-$%06X)", start, end))
	}
	region := IORegion{
		start:   start & JAG_ADDR_MASK,
		end:     end & JAG_ADDR_MASK,
		onRead:  onRead,
		onWrite: onWrite,
	}
	for page := region.start & PAGE_MASK; page <= region.end&PAGE_MASK; page += PAGE_SIZE {
		bus.mapping[page] = append(bus.mapping[page], region)
		bus.ioPageBitmap[page>>8] = true
	}
}

func (bus *JaguarBus) Seal() { bus.sealed.Store(true) }

func (bus *JaguarBus) findRegion(addr uint32) *IORegion {
	if !bus.ioPageBitmap[addr>>8] {
		return nil
	}
	regions := bus.mapping[addr&PAGE_MASK]
	for i := range regions {
		if addr >= regions[i].start && addr <= regions[i].end {
			return &regions[i]
		}
	}
	return nil
}

// laneShift returns the shift that places a value of the given width at addr
// inside its big-endian long word.
func laneShift(addr uint32, width uint32) uint32 {
	return (4 - width - (addr & 3 &^ (width - 1))) * 8
}

func (bus *JaguarBus) readDevice(region *IORegion, addr uint32) uint32 {
	if region.onRead == nil {
		return 0
	}
	return region.onRead(addr &^ 3)
}

func (bus *JaguarBus) writeDevice(region *IORegion, addr uint32, value uint32, width uint32) {
	if region.onWrite == nil {
		return
	}
	shift := laneShift(addr, width)
	laneMask := uint32(0xFFFFFFFF)
	if width < 4 {
		laneMask = (uint32(1)<<(width*8) - 1) << shift
	}
	region.onWrite(addr&^3, value<<shift, laneMask)
}

func (bus *JaguarBus) Read8(addr uint32) uint8 {
	addr &= JAG_ADDR_MASK
	if region := bus.findRegion(addr); region != nil {
		return uint8(bus.readDevice(region, addr) >> laneShift(addr, 1))
	}
	return bus.memory[addr]
}

func (bus *JaguarBus) Read16(addr uint32) uint16 {
	addr &= JAG_ADDR_MASK
	if region := bus.findRegion(addr); region != nil {
		return uint16(bus.readDevice(region, addr) >> laneShift(addr, 2))
	}
	if addr+1 >= JAG_MEM_SIZE {
		return uint16(bus.memory[addr])<<8 | uint16(bus.memory[(addr+1)&JAG_ADDR_MASK])
	}
	return uint16(bus.memory[addr])<<8 | uint16(bus.memory[addr+1])
}

func (bus *JaguarBus) Read32(addr uint32) uint32 {
	addr &= JAG_ADDR_MASK
	if region := bus.findRegion(addr); region != nil {
		return bus.readDevice(region, addr)
	}
	if addr+3 >= JAG_MEM_SIZE {
		return uint32(bus.Read16(addr))<<16 | uint32(bus.Read16(addr+2))
	}
	m := bus.memory[addr : addr+4]
	return uint32(m[0])<<24 | uint32(m[1])<<16 | uint32(m[2])<<8 | uint32(m[3])
}

func (bus *JaguarBus) Write8(addr uint32, value uint8) {
	addr &= JAG_ADDR_MASK
	if region := bus.findRegion(addr); region != nil {
		bus.writeDevice(region, addr, uint32(value), 1)
		return
	}
	bus.memory[addr] = value
}

func (bus *JaguarBus) Write16(addr uint32, value uint16) {
	addr &= JAG_ADDR_MASK
	if region := bus.findRegion(addr); region != nil {
		bus.writeDevice(region, addr, uint32(value), 2)
		return
	}
	bus.memory[addr] = uint8(value >> 8)
	bus.memory[(addr+1)&JAG_ADDR_MASK] = uint8(value)
}

func (bus *JaguarBus) Write32(addr uint32, value uint32) {
	addr &= JAG_ADDR_MASK
	if region := bus.findRegion(addr); region != nil {
		bus.writeDevice(region, addr, value, 4)
		return
	}
	if addr+3 >= JAG_MEM_SIZE {
		bus.Write16(addr, uint16(value>>16))
		bus.Write16(addr+2, uint16(value))
		return
	}
	m := bus.memory[addr : addr+4]
	m[0] = uint8(value >> 24)
	m[1] = uint8(value >> 16)
	m[2] = uint8(value >> 8)
	m[3] = uint8(value)
}

func (bus *JaguarBus) Fetch16(addr uint32) uint16 { return bus.Read16(addr) }

// Reset clears RAM. Device mappings are kept.
func (bus *JaguarBus) Reset() {
	clear(bus.memory)
}

func (bus *JaguarBus) GetMemory() []byte { return bus.memory }

// LoadBytes copies data into RAM starting at addr, bypassing devices.
func (bus *JaguarBus) LoadBytes(addr uint32, data []byte) error {
	addr &= JAG_ADDR_MASK
	if int(addr)+len(data) > len(bus.memory) {
		return fmt.Errorf("image of %d bytes does not fit at $%06X", len(data), addr)
	}
	copy(bus.memory[addr:], data)
	return nil
}

// LoadImage reads a raw big-endian image from disk into RAM at addr.
func (bus *JaguarBus) LoadImage(path string, addr uint32) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading image: %w", err)
	}
	if err := bus.LoadBytes(addr, data); err != nil {
		return 0, fmt.Errorf("loading %s: %w", path, err)
	}
	return len(data), nil
}
