// cpu_jaguar.go - Jaguar GPU/DSP RISC core

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
cpu_jaguar.go - Jaguar GPU ("Tom") and DSP ("Jerry") RISC cores

Both chips run the same 16-bit encoded, 32-bit RISC instruction set. The
variant only changes a handful of opcode slots, the internal RAM window,
the interrupt vector base and the number of interrupt lines, all of which
are carried in jaguarVariantInfo and selected once at construction.

Register banks:

    R always holds the active bank and A the alternate one. A page change
    physically exchanges the two arrays. bank records which logical bank
    (0 or 1) currently lives in R. The interrupt mask forces bank 0.

    A swap records icount-1 in bankSwitchCount. The run loop is allowed one
    extra iteration when the budget lands exactly on that value, and a jump
    executed in that same iteration reads its target from A. Both behaviours
    model pipeline latency on the real chips and are kept as-is.

Timing:

    Every instruction costs one cycle. A taken branch executes its delay
    slot inside the same dispatch and costs three more.
*/

package main

import (
	"fmt"
	"io"
	"math/bits"
	"os"
	"strings"
	"sync/atomic"
)

type JaguarVariant int

const (
	JaguarGPU JaguarVariant = iota
	JaguarDSP
)

func (v JaguarVariant) String() string {
	if v == JaguarDSP {
		return "DSP"
	}
	return "GPU"
}

// JaguarHost receives the notifications a core raises from its control port.
type JaguarHost interface {
	// CPUHalted reports a change of the CTRL run bit.
	CPUHalted(cpu *JaguarCPU, halted bool)
	// Yield asks the scheduler to end the current time slice now.
	Yield(cpu *JaguarCPU)
	// HostInterrupt is raised by CTRL bit 1.
	HostInterrupt(cpu *JaguarCPU)
}

type nullHost struct{}

func (nullHost) CPUHalted(*JaguarCPU, bool) {}
func (nullHost) Yield(*JaguarCPU)           {}
func (nullHost) HostInterrupt(*JaguarCPU)   {}

// jaguarLog receives diagnostics. They never change execution.
var jaguarLog io.Writer = os.Stderr

type jaguarVariantInfo struct {
	name       string
	ramStart   uint32
	ramEnd     uint32
	vectorBase uint32
	ctrlBase   uint32
	irqLines   int
	flagsMask  uint32
	ops        *[64]jaguarOp
	mnemonics  *[64]string
}

var jaguarVariants = [2]jaguarVariantInfo{
	JaguarGPU: {
		name:       "GPU",
		ramStart:   GPU_RAM_START,
		ramEnd:     GPU_RAM_END,
		vectorBase: GPU_VECTOR_BASE,
		ctrlBase:   GPU_CTRL_BASE,
		irqLines:   5,
		flagsMask:  JAG_ZFLAG | JAG_CFLAG | JAG_NFLAG | JAG_EINT04FLAGS | JAG_RPAGEFLAG,
		ops:        gpuOpTable,
		mnemonics:  &gpuMnemonics,
	},
	JaguarDSP: {
		name:       "DSP",
		ramStart:   DSP_RAM_START,
		ramEnd:     DSP_RAM_END,
		vectorBase: DSP_VECTOR_BASE,
		ctrlBase:   DSP_CTRL_BASE,
		irqLines:   6,
		flagsMask:  JAG_ZFLAG | JAG_CFLAG | JAG_NFLAG | JAG_EINT04FLAGS | JAG_EINT5FLAG | JAG_RPAGEFLAG,
		ops:        dspOpTable,
		mnemonics:  &dspMnemonics,
	},
}

type JaguarCPU struct {
	R [32]uint32 // active bank
	A [32]uint32 // alternate bank

	ctrl  [JAG_CTRL_REGS]uint32
	ppc   uint32
	accum int64 // 48-bit multiply/accumulate chain
	bank  uint32

	icount          int
	bankSwitchCount int
	abortedCycles   int

	variant JaguarVariant
	info    *jaguarVariantInfo
	tables  *jaguarTables
	mem     JaguarMemory
	host    JaguarHost
	version uint32

	macBuf []macTerm

	loneIMACNLogged bool // reported once until Reset

	running atomic.Bool // owned by the scheduler; read by the debugger
}

// NewJaguarCPU builds a core of the given variant. A nil host discards
// control-port notifications.
func NewJaguarCPU(variant JaguarVariant, mem JaguarMemory, host JaguarHost) *JaguarCPU {
	if host == nil {
		host = nullHost{}
	}
	c := &JaguarCPU{
		variant: variant,
		info:    &jaguarVariants[variant],
		tables:  jaguarSharedTables(),
		mem:     mem,
		host:    host,
		version: JAG_VERSION,
		macBuf:  make([]macTerm, 0, 16),
	}
	c.Reset()
	return c
}

// Reset zeroes both banks and the control registers and selects bank 0.
func (c *JaguarCPU) Reset() {
	c.R = [32]uint32{}
	c.A = [32]uint32{}
	c.ctrl = [JAG_CTRL_REGS]uint32{}
	c.ppc = 0
	c.accum = 0
	c.bank = 0
	c.icount = 0
	c.bankSwitchCount = 0
	c.abortedCycles = 0
	c.loneIMACNLogged = false
}

func (c *JaguarCPU) Variant() JaguarVariant { return c.variant }
func (c *JaguarCPU) Name() string           { return c.info.name }
func (c *JaguarCPU) PC() uint32             { return c.ctrl[JAG_PC] }
func (c *JaguarCPU) SetPC(pc uint32)        { c.ctrl[JAG_PC] = pc & JAG_ADDR_MASK }
func (c *JaguarCPU) PPC() uint32            { return c.ppc }
func (c *JaguarCPU) Flags() uint32          { return c.ctrl[JAG_FLAGS] }
func (c *JaguarCPU) Accumulator() int64     { return c.accum }
func (c *JaguarCPU) ActiveBank() uint32     { return c.bank }
func (c *JaguarCPU) Halted() bool           { return c.ctrl[JAG_CTRL]&JAG_CTRL_GO == 0 }
func (c *JaguarCPU) IsRunning() bool        { return c.running.Load() }

// Ctrl returns a raw control register without the version field.
func (c *JaguarCPU) Ctrl(index int) uint32 { return c.ctrl[index&(JAG_CTRL_REGS-1)] }

// SetCtrl stores a raw control register with no side effects.
func (c *JaguarCPU) SetCtrl(index int, value uint32) { c.ctrl[index&(JAG_CTRL_REGS-1)] = value }

// bank1 returns whichever physical array currently holds logical bank 1.
func (c *JaguarCPU) bank1() *[32]uint32 {
	if c.bank == 1 {
		return &c.R
	}
	return &c.A
}

// ------------------------------------------------------------------------------
// Register bank switcher
// ------------------------------------------------------------------------------

func (c *JaguarCPU) updateRegisterBanks() {
	var bank uint32
	if c.ctrl[JAG_FLAGS]&JAG_RPAGEFLAG != 0 {
		bank = 1
	}
	if c.ctrl[JAG_FLAGS]&JAG_IFLAG != 0 {
		bank = 0
	}
	if bank == c.bank {
		return
	}
	// icount of the instruction following the swap
	c.bankSwitchCount = c.icount - 1
	c.R, c.A = c.A, c.R
	c.bank = bank
}

// ------------------------------------------------------------------------------
// Execution
// ------------------------------------------------------------------------------

// Execute runs the core for a budget of cycles and returns the cycles
// actually consumed. A halted core consumes nothing.
func (c *JaguarCPU) Execute(cycles int) int {
	c.icount = cycles
	c.abortedCycles = 0
	if c.ctrl[JAG_CTRL]&JAG_CTRL_GO == 0 {
		c.icount = 0
		return 0
	}

	c.checkInterrupts()
	c.bankSwitchCount = JAG_NO_BANKSWITCH

	for {
		c.dispatch()
		c.icount--
		if c.icount <= 0 && c.icount != c.bankSwitchCount {
			break
		}
	}
	return cycles - c.icount - c.abortedCycles
}

// Step executes exactly one instruction regardless of the run bit and
// returns the cycles it cost. Used by the monitor.
func (c *JaguarCPU) Step() int {
	c.icount = 1
	c.abortedCycles = 0
	c.bankSwitchCount = JAG_NO_BANKSWITCH
	c.dispatch()
	c.icount--
	return 1 - c.icount - c.abortedCycles
}

func (c *JaguarCPU) dispatch() {
	c.ppc = c.ctrl[JAG_PC]
	op := c.mem.Fetch16(c.ctrl[JAG_PC])
	c.ctrl[JAG_PC] += 2
	c.info.ops[op>>10](c, op)
}

// AbortTimeslice ends the running Execute call after the current instruction.
func (c *JaguarCPU) AbortTimeslice() {
	if c.icount > 0 {
		c.abortedCycles += c.icount
		c.icount = 0
	}
}

// ------------------------------------------------------------------------------
// Interrupts
// ------------------------------------------------------------------------------

func (c *JaguarCPU) checkInterrupts() {
	flags := c.ctrl[JAG_FLAGS]
	if flags&JAG_IFLAG != 0 {
		return
	}

	// LATCH5 is CTRL bit 16; >>11 lands it on pending bit 5. >>10 would miss it.
	pending := (c.ctrl[JAG_CTRL]>>6)&0x1F | (c.ctrl[JAG_CTRL]>>11)&0x20
	enabled := (flags>>4)&0x1F | (flags>>11)&0x20
	pending &= enabled
	if pending == 0 {
		return
	}

	// Lines are scanned upward and the last match wins.
	which := uint32(bits.Len32(pending) - 1)

	c.ctrl[JAG_FLAGS] |= JAG_IFLAG
	c.updateRegisterBanks()

	ret := c.ctrl[JAG_PC] - 2
	c.R[31] -= 4
	c.ctrl[JAG_PC] = c.info.vectorBase + which*JAG_IRQ_VECTOR
	c.mem.Write32(c.R[31], ret)
}

// SetInputLine latches or clears an interrupt line. Lines 0-4 exist on both
// chips, line 5 only on the DSP.
func (c *JaguarCPU) SetInputLine(line int, asserted bool) {
	if line < 0 || line >= c.info.irqLines {
		fmt.Fprintf(jaguarLog, "%s: ignoring interrupt line %d\n", c.info.name, line)
		return
	}
	mask := uint32(JAG_CTRL_LATCH5)
	if line < 5 {
		mask = JAG_CTRL_LATCH0 << line
	}
	c.ctrl[JAG_CTRL] &^= mask
	if asserted {
		c.ctrl[JAG_CTRL] |= mask
		c.checkInterrupts()
	}
}

// ------------------------------------------------------------------------------
// Control register port
// ------------------------------------------------------------------------------

// CtrlRead reads control register offset (in long words).
func (c *JaguarCPU) CtrlRead(offset uint32) uint32 {
	offset &= JAG_CTRL_REGS - 1
	res := c.ctrl[offset]
	if offset == JAG_CTRL {
		res |= (c.version & 0xF) << 12
	}
	return res
}

// CtrlWrite writes control register offset. Only bits set in mask change.
func (c *JaguarCPU) CtrlWrite(offset uint32, data uint32, mask uint32) {
	offset &= JAG_CTRL_REGS - 1
	oldval := c.ctrl[offset]
	newval := oldval&^mask | data&mask

	switch offset {
	case JAG_FLAGS:
		c.ctrl[JAG_FLAGS] = newval & c.info.flagsMask
		// The mask bit can be cleared from outside but never set.
		if newval&JAG_IFLAG != 0 {
			c.ctrl[JAG_FLAGS] |= oldval & JAG_IFLAG
		}
		c.ctrl[JAG_CTRL] &^= (newval & JAG_CINT04FLAGS) >> 3
		if c.variant == JaguarDSP {
			c.ctrl[JAG_CTRL] &^= (newval & JAG_CINT5FLAG) >> 1
		}
		c.updateRegisterBanks()
		c.checkInterrupts()

	case JAG_MTXC, JAG_MTXA, JAG_HIDATA, JAG_DIVCTRL:
		c.ctrl[offset] = newval

	case JAG_END:
		c.ctrl[offset] = newval
		if newval&7 != 7 {
			fmt.Fprintf(jaguarLog, "%s: endian register set to little-endian ($%X)\n", c.info.name, newval)
		}

	case JAG_PC:
		c.ctrl[JAG_PC] = newval & JAG_ADDR_MASK

	case JAG_CTRL:
		c.ctrl[JAG_CTRL] = newval
		if newval&JAG_CTRL_CPUINT != 0 {
			c.ctrl[JAG_CTRL] &^= JAG_CTRL_CPUINT
		}
		if newval&JAG_CTRL_FORCEINT != 0 {
			c.ctrl[JAG_CTRL] |= JAG_CTRL_LATCH0
			c.ctrl[JAG_CTRL] &^= JAG_CTRL_FORCEINT
		}

		// State is committed; the host may now re-enter us.
		if (oldval^newval)&JAG_CTRL_GO != 0 {
			c.host.CPUHalted(c, newval&JAG_CTRL_GO == 0)
			c.host.Yield(c)
		}
		if newval&JAG_CTRL_CPUINT != 0 {
			c.host.HostInterrupt(c)
		}
		if newval&JAG_CTRL_FORCEINT != 0 {
			c.checkInterrupts()
		}
		if newval&JAG_CTRL_SINGLE != 0 {
			fmt.Fprintf(jaguarLog, "%s: single stepping was enabled\n", c.info.name)
		}

	case JAG_MACHI, JAG_REMAINDER:
		// read-only

	default:
		fmt.Fprintf(jaguarLog, "%s: write to unmapped control register %d = $%08X\n", c.info.name, offset, data)
	}
}

// ------------------------------------------------------------------------------
// State snapshot
// ------------------------------------------------------------------------------

// JaguarState is everything needed to resume a core exactly. Run state and
// latched interrupt lines live in Ctrl[JAG_CTRL].
type JaguarState struct {
	R     [32]uint32
	A     [32]uint32
	Ctrl  [JAG_CTRL_REGS]uint32
	PPC   uint32
	Accum int64
}

func (c *JaguarCPU) SaveState() JaguarState {
	return JaguarState{R: c.R, A: c.A, Ctrl: c.ctrl, PPC: c.ppc, Accum: c.accum}
}

// RestoreState loads a saved state. The active bank is re-derived from
// FLAGS, since R was saved holding the active bank. The host hears about
// a change of the run bit.
func (c *JaguarCPU) RestoreState(s JaguarState) {
	wasHalted := c.Halted()
	c.R = s.R
	c.A = s.A
	c.ctrl = s.Ctrl
	c.ppc = s.PPC
	c.accum = s.Accum
	c.bank = 0
	if c.ctrl[JAG_FLAGS]&JAG_RPAGEFLAG != 0 && c.ctrl[JAG_FLAGS]&JAG_IFLAG == 0 {
		c.bank = 1
	}
	if c.Halted() != wasHalted {
		c.host.CPUHalted(c, c.Halted())
	}
	c.checkInterrupts()
}

// FlagsString renders FLAGS as D A 4 3 2 1 0 I N C Z.
func (c *JaguarCPU) FlagsString() string {
	flags := c.ctrl[JAG_FLAGS]
	var sb strings.Builder
	for _, f := range []struct {
		bit uint32
		ch  byte
	}{
		{0x8000, 'D'}, {0x4000, 'A'}, {0x0100, '4'}, {0x0080, '3'}, {0x0040, '2'},
		{0x0020, '1'}, {0x0010, '0'}, {0x0008, 'I'}, {0x0004, 'N'}, {0x0002, 'C'}, {0x0001, 'Z'},
	} {
		if flags&f.bit != 0 {
			sb.WriteByte(f.ch)
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}
