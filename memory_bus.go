// memory_bus.go - JaguarMemory interface and flat RAM

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
memory_bus.go - Memory interface seen by the Jaguar RISC cores

The GPU and DSP cores never own memory. Every data access and every opcode
fetch goes through a JaguarMemory implementation supplied at construction.
The address space is 24 bits wide and big-endian; implementations mask
addresses themselves.

Fetch16 is kept separate from Read16 so that a host can serve opcode
fetches from a cache or a decrypted view without disturbing data reads.

Accesses are synchronous and may re-enter the caller: a store that lands on
another core's control port can assert that core's interrupt line before
the store returns.
*/

package main

type JaguarMemory interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Write8(addr uint32, value uint8)
	Write16(addr uint32, value uint16)
	Write32(addr uint32, value uint32)
	Fetch16(addr uint32) uint16
}

// flatMemory is a plain big-endian RAM with no I/O, used where a core runs
// on its own (tests, batch images without a system bus).
type flatMemory []byte

func newFlatMemory() flatMemory {
	return make(flatMemory, JAG_MEM_SIZE)
}

func (m flatMemory) Read8(addr uint32) uint8 { return m[addr&JAG_ADDR_MASK] }

func (m flatMemory) Read16(addr uint32) uint16 {
	return uint16(m.Read8(addr))<<8 | uint16(m.Read8(addr+1))
}

func (m flatMemory) Read32(addr uint32) uint32 {
	return uint32(m.Read16(addr))<<16 | uint32(m.Read16(addr+2))
}

func (m flatMemory) Write8(addr uint32, value uint8) { m[addr&JAG_ADDR_MASK] = value }

func (m flatMemory) Write16(addr uint32, value uint16) {
	m.Write8(addr, uint8(value>>8))
	m.Write8(addr+1, uint8(value))
}

func (m flatMemory) Write32(addr uint32, value uint32) {
	m.Write16(addr, uint16(value>>16))
	m.Write16(addr+2, uint16(value))
}

func (m flatMemory) Fetch16(addr uint32) uint16 { return m.Read16(addr) }
