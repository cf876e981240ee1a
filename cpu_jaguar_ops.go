// cpu_jaguar_ops.go - Jaguar RISC opcode handlers and dispatch tables

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

import "fmt"

type jaguarOp func(c *JaguarCPU, op uint16)

// jaguarBaseOps holds the 58 entries shared by both chips. The six variant
// slots (32, 33, 42, 48, 62, 63) are filled per chip below.
var jaguarBaseOps = [64]jaguarOp{
	0: (*JaguarCPU).opADD, 1: (*JaguarCPU).opADDC, 2: (*JaguarCPU).opADDQ, 3: (*JaguarCPU).opADDQT,
	4: (*JaguarCPU).opSUB, 5: (*JaguarCPU).opSUBC, 6: (*JaguarCPU).opSUBQ, 7: (*JaguarCPU).opSUBQT,
	8: (*JaguarCPU).opNEG, 9: (*JaguarCPU).opAND, 10: (*JaguarCPU).opOR, 11: (*JaguarCPU).opXOR,
	12: (*JaguarCPU).opNOT, 13: (*JaguarCPU).opBTST, 14: (*JaguarCPU).opBSET, 15: (*JaguarCPU).opBCLR,
	16: (*JaguarCPU).opMULT, 17: (*JaguarCPU).opIMULT, 18: (*JaguarCPU).opIMULTN, 19: (*JaguarCPU).opRESMAC,
	20: (*JaguarCPU).opIMACN, 21: (*JaguarCPU).opDIV, 22: (*JaguarCPU).opABS, 23: (*JaguarCPU).opSH,
	24: (*JaguarCPU).opSHLQ, 25: (*JaguarCPU).opSHRQ, 26: (*JaguarCPU).opSHA, 27: (*JaguarCPU).opSHARQ,
	28: (*JaguarCPU).opROR, 29: (*JaguarCPU).opRORQ, 30: (*JaguarCPU).opCMP, 31: (*JaguarCPU).opCMPQ,
	34: (*JaguarCPU).opMOVE, 35: (*JaguarCPU).opMOVEQ,
	36: (*JaguarCPU).opMOVETA, 37: (*JaguarCPU).opMOVEFA, 38: (*JaguarCPU).opMOVEI, 39: (*JaguarCPU).opLOADB,
	40: (*JaguarCPU).opLOADW, 41: (*JaguarCPU).opLOAD, 43: (*JaguarCPU).opLOAD_R14N,
	44: (*JaguarCPU).opLOAD_R15N, 45: (*JaguarCPU).opSTOREB, 46: (*JaguarCPU).opSTOREW, 47: (*JaguarCPU).opSTORE,
	49: (*JaguarCPU).opSTORE_R14N, 50: (*JaguarCPU).opSTORE_R15N, 51: (*JaguarCPU).opMOVE_PC,
	52: (*JaguarCPU).opJUMP, 53: (*JaguarCPU).opJR, 54: (*JaguarCPU).opMMULT, 55: (*JaguarCPU).opMTOI,
	56: (*JaguarCPU).opNORMI, 57: (*JaguarCPU).opNOP, 58: (*JaguarCPU).opLOAD_R14RN, 59: (*JaguarCPU).opLOAD_R15RN,
	60: (*JaguarCPU).opSTORE_R14RN, 61: (*JaguarCPU).opSTORE_R15RN,
}

var gpuOpTable = buildOpTable(map[int]jaguarOp{
	32: (*JaguarCPU).opSAT8,
	33: (*JaguarCPU).opSAT16,
	42: (*JaguarCPU).opLOADP,
	48: (*JaguarCPU).opSTOREP,
	62: (*JaguarCPU).opSAT24,
	63: (*JaguarCPU).opPACK,
})

var dspOpTable = buildOpTable(map[int]jaguarOp{
	32: (*JaguarCPU).opSUBQMOD,
	33: (*JaguarCPU).opSAT16S,
	42: (*JaguarCPU).opSAT32S,
	48: (*JaguarCPU).opMIRROR,
	62: (*JaguarCPU).opILLEGAL,
	63: (*JaguarCPU).opADDQMOD,
})

func buildOpTable(variant map[int]jaguarOp) *[64]jaguarOp {
	t := jaguarBaseOps
	for i, op := range variant {
		t[i] = op
	}
	return &t
}

var gpuMnemonics = [64]string{
	"add", "addc", "addq", "addqt", "sub", "subc", "subq", "subqt",
	"neg", "and", "or", "xor", "not", "btst", "bset", "bclr",
	"mult", "imult", "imultn", "resmac", "imacn", "div", "abs", "sh",
	"shlq", "shrq", "sha", "sharq", "ror", "rorq", "cmp", "cmpq",
	"sat8", "sat16", "move", "moveq", "moveta", "movefa", "movei", "loadb",
	"loadw", "load", "loadp", "load", "load", "storeb", "storew", "store",
	"storep", "store", "store", "move", "jump", "jr", "mmult", "mtoi",
	"normi", "nop", "load", "load", "store", "store", "sat24", "pack",
}

var dspMnemonics = func() [64]string {
	m := gpuMnemonics
	m[32], m[33], m[42], m[48], m[62], m[63] = "subqmod", "sat16s", "sat32s", "mirror", "illegal", "addqmod"
	return m
}()

// ------------------------------------------------------------------------------
// Flag helpers
// ------------------------------------------------------------------------------

func (c *JaguarCPU) clrZ()   { c.ctrl[JAG_FLAGS] &^= JAG_ZFLAG }
func (c *JaguarCPU) clrZN()  { c.ctrl[JAG_FLAGS] &^= JAG_ZFLAG | JAG_NFLAG }
func (c *JaguarCPU) clrZNC() { c.ctrl[JAG_FLAGS] &^= JAG_ZFLAG | JAG_NFLAG | JAG_CFLAG }

func (c *JaguarCPU) setZ(r uint32) {
	if r == 0 {
		c.ctrl[JAG_FLAGS] |= JAG_ZFLAG
	}
}

func (c *JaguarCPU) setZN(r uint32) {
	c.ctrl[JAG_FLAGS] |= (r >> 29) & JAG_NFLAG
	c.setZ(r)
}

// Carry on add: b overflows past a.
func (c *JaguarCPU) setZNCAdd(a, b, r uint32) {
	c.setZN(r)
	if b > ^a {
		c.ctrl[JAG_FLAGS] |= JAG_CFLAG
	}
}

// Carry on subtract: borrow.
func (c *JaguarCPU) setZNCSub(a, b, r uint32) {
	c.setZN(r)
	if b > a {
		c.ctrl[JAG_FLAGS] |= JAG_CFLAG
	}
}

func (c *JaguarCPU) carry() uint32 { return (c.ctrl[JAG_FLAGS] >> 1) & 1 }

func (c *JaguarCPU) condition(cc int) bool {
	return c.tables.condition[cc+int(c.ctrl[JAG_FLAGS]&7)<<5] != 0
}

func (c *JaguarCPU) inInternalRAM(addr uint32) bool {
	return addr >= c.info.ramStart && addr <= c.info.ramEnd
}

// ------------------------------------------------------------------------------
// Arithmetic
// ------------------------------------------------------------------------------

func (c *JaguarCPU) opADD(op uint16) {
	d := opDst(op)
	r1, r2 := c.R[opSrc(op)], c.R[d]
	res := r2 + r1
	c.R[d] = res
	c.clrZNC()
	c.setZNCAdd(r2, r1, res)
}

func (c *JaguarCPU) opADDC(op uint16) {
	d := opDst(op)
	r1, r2 := c.R[opSrc(op)], c.R[d]
	cy := c.carry()
	res := r2 + r1 + cy
	c.R[d] = res
	c.clrZNC()
	c.setZNCAdd(r2, r1+cy, res)
}

func (c *JaguarCPU) opADDQ(op uint16) {
	d := opDst(op)
	r1, r2 := jaguarQuick[opSrc(op)], c.R[d]
	res := r2 + r1
	c.R[d] = res
	c.clrZNC()
	c.setZNCAdd(r2, r1, res)
}

// opADDQT leaves the flags alone.
func (c *JaguarCPU) opADDQT(op uint16) {
	c.R[opDst(op)] += jaguarQuick[opSrc(op)]
}

// opADDQMOD keeps the bits selected by MOD from the original value, which
// wraps the low bits inside a circular buffer.
func (c *JaguarCPU) opADDQMOD(op uint16) {
	d := opDst(op)
	r1, r2 := jaguarQuick[opSrc(op)], c.R[d]
	mod := c.ctrl[JAG_MOD]
	res := (r2+r1)&^mod | r2&mod
	c.R[d] = res
	c.clrZNC()
	c.setZNCAdd(r2, r1, res)
}

func (c *JaguarCPU) opSUB(op uint16) {
	d := opDst(op)
	r1, r2 := c.R[opSrc(op)], c.R[d]
	res := r2 - r1
	c.R[d] = res
	c.clrZNC()
	c.setZNCSub(r2, r1, res)
}

func (c *JaguarCPU) opSUBC(op uint16) {
	d := opDst(op)
	r1, r2 := c.R[opSrc(op)], c.R[d]
	cy := c.carry()
	res := r2 - r1 - cy
	c.R[d] = res
	c.clrZNC()
	c.setZNCSub(r2, r1+cy, res)
}

func (c *JaguarCPU) opSUBQ(op uint16) {
	d := opDst(op)
	r1, r2 := jaguarQuick[opSrc(op)], c.R[d]
	res := r2 - r1
	c.R[d] = res
	c.clrZNC()
	c.setZNCSub(r2, r1, res)
}

func (c *JaguarCPU) opSUBQT(op uint16) {
	c.R[opDst(op)] -= jaguarQuick[opSrc(op)]
}

func (c *JaguarCPU) opSUBQMOD(op uint16) {
	d := opDst(op)
	r1, r2 := jaguarQuick[opSrc(op)], c.R[d]
	mod := c.ctrl[JAG_MOD]
	res := (r2-r1)&^mod | r2&mod
	c.R[d] = res
	c.clrZNC()
	c.setZNCSub(r2, r1, res)
}

func (c *JaguarCPU) opNEG(op uint16) {
	d := opDst(op)
	r2 := c.R[d]
	res := -r2
	c.R[d] = res
	c.clrZNC()
	c.setZNCSub(0, r2, res)
}

func (c *JaguarCPU) opABS(op uint16) {
	d := opDst(op)
	res := c.R[d]
	c.clrZNC()
	if res&0x80000000 != 0 {
		res = -res
		c.R[d] = res
		c.ctrl[JAG_FLAGS] |= JAG_CFLAG
	}
	c.setZ(res)
}

func (c *JaguarCPU) opCMP(op uint16) {
	r1, r2 := c.R[opSrc(op)], c.R[opDst(op)]
	c.clrZNC()
	c.setZNCSub(r2, r1, r2-r1)
}

func (c *JaguarCPU) opCMPQ(op uint16) {
	r1, r2 := quickSigned(op), c.R[opDst(op)]
	c.clrZNC()
	c.setZNCSub(r2, r1, r2-r1)
}

// ------------------------------------------------------------------------------
// Logic and bit operations
// ------------------------------------------------------------------------------

func (c *JaguarCPU) opAND(op uint16) {
	d := opDst(op)
	res := c.R[d] & c.R[opSrc(op)]
	c.R[d] = res
	c.clrZN()
	c.setZN(res)
}

func (c *JaguarCPU) opOR(op uint16) {
	d := opDst(op)
	res := c.R[d] | c.R[opSrc(op)]
	c.R[d] = res
	c.clrZN()
	c.setZN(res)
}

func (c *JaguarCPU) opXOR(op uint16) {
	d := opDst(op)
	res := c.R[d] ^ c.R[opSrc(op)]
	c.R[d] = res
	c.clrZN()
	c.setZN(res)
}

func (c *JaguarCPU) opNOT(op uint16) {
	d := opDst(op)
	res := ^c.R[d]
	c.R[d] = res
	c.clrZN()
	c.setZN(res)
}

// opBTST sets Z when the bit is clear. The register is untouched.
func (c *JaguarCPU) opBTST(op uint16) {
	c.clrZ()
	c.ctrl[JAG_FLAGS] |= (^c.R[opDst(op)] >> uint(opSrc(op))) & 1
}

func (c *JaguarCPU) opBSET(op uint16) {
	d := opDst(op)
	res := c.R[d] | 1<<uint(opSrc(op))
	c.R[d] = res
	c.clrZN()
	c.setZN(res)
}

func (c *JaguarCPU) opBCLR(op uint16) {
	d := opDst(op)
	res := c.R[d] &^ (1 << uint(opSrc(op)))
	c.R[d] = res
	c.clrZN()
	c.setZN(res)
}

// ------------------------------------------------------------------------------
// Multiply, accumulate and divide
// ------------------------------------------------------------------------------

func signedProduct(a, b uint32) int32 {
	return int32(int16(a)) * int32(int16(b))
}

func (c *JaguarCPU) opMULT(op uint16) {
	d := opDst(op)
	res := uint32(uint16(c.R[opSrc(op)])) * uint32(uint16(c.R[d]))
	c.R[d] = res
	c.clrZN()
	c.setZN(res)
}

func (c *JaguarCPU) opIMULT(op uint16) {
	d := opDst(op)
	res := uint32(signedProduct(c.R[opSrc(op)], c.R[d]))
	c.R[d] = res
	c.clrZN()
	c.setZN(res)
}

// opIMULTN seeds the accumulator and swallows the IMACN words that follow,
// plus a terminating RESMAC, within this one dispatch.
func (c *JaguarCPU) opIMULTN(op uint16) {
	res := uint32(signedProduct(c.R[opSrc(op)], c.R[opDst(op)]))
	c.accum = int64(int32(res))
	c.clrZN()
	c.setZN(res)

	chain := c.decodeMACChain(c.ctrl[JAG_PC])
	for _, t := range chain.terms {
		c.accum += int64(signedProduct(c.R[t.src], c.R[t.dst]))
	}
	c.ctrl[JAG_PC] += uint32(chain.words) * 2
	if chain.resmac {
		c.R[chain.resmacReg] = uint32(c.accum)
	}
}

// opIMACN only runs outside an imultn chain. It still accumulates.
func (c *JaguarCPU) opIMACN(op uint16) {
	c.accum += int64(signedProduct(c.R[opSrc(op)], c.R[opDst(op)]))
	if !c.loneIMACNLogged {
		c.loneIMACNLogged = true
		fmt.Fprintf(jaguarLog, "%s: unexpected IMACN at $%06X\n", c.info.name, c.ppc)
	}
}

func (c *JaguarCPU) opRESMAC(op uint16) {
	c.R[opDst(op)] = uint32(c.accum)
}

// opDIV divides unsigned, or as 16.16 fixed point when DIVCTRL bit 0 is set.
// A zero divisor yields $FFFFFFFF and leaves REMAINDER alone.
func (c *JaguarCPU) opDIV(op uint16) {
	d := opDst(op)
	r1, r2 := c.R[opSrc(op)], c.R[d]
	if r1 == 0 {
		c.R[d] = 0xFFFFFFFF
		return
	}
	if c.ctrl[JAG_DIVCTRL]&1 != 0 {
		n := uint64(r2) << 16
		c.R[d] = uint32(n / uint64(r1))
		c.ctrl[JAG_REMAINDER] = uint32(n % uint64(r1))
	} else {
		c.R[d] = r2 / r1
		c.ctrl[JAG_REMAINDER] = r2 % r1
	}
}

// opMMULT is a signed dot product of 16-bit halves of bank 1 (high half
// first) against a vector at MTXA. MTXC bit 4 selects column stride.
func (c *JaguarCPU) opMMULT(op uint16) {
	count := int(c.ctrl[JAG_MTXC] & 15)
	sreg, d := opSrc(op), opDst(op)
	addr := c.ctrl[JAG_MTXA]
	step := uint32(2)
	if c.ctrl[JAG_MTXC]&0x10 != 0 {
		step = 2 * uint32(count)
	}

	b1 := c.bank1()
	var accum int64
	for i := range count {
		half := b1[(sreg+i/2)&31] >> (16 * uint((i&1)^1))
		accum += int64(signedProduct(half, uint32(c.mem.Read16(addr))))
		addr += step
	}
	res := uint32(accum)
	c.R[d] = res
	c.clrZN()
	c.setZN(res)
}

// ------------------------------------------------------------------------------
// Shifts and rotates
// ------------------------------------------------------------------------------

func (c *JaguarCPU) opSH(op uint16) {
	d := opDst(op)
	r1, r2 := int32(c.R[opSrc(op)]), c.R[d]
	var res uint32
	c.clrZNC()
	if r1 < 0 {
		if r1 > -32 {
			res = r2 << uint(-r1)
		}
		c.ctrl[JAG_FLAGS] |= (r2 >> 30) & 2
	} else {
		if r1 < 32 {
			res = r2 >> uint(r1)
		}
		c.ctrl[JAG_FLAGS] |= (r2 << 1) & 2
	}
	c.R[d] = res
	c.setZN(res)
}

func (c *JaguarCPU) opSHA(op uint16) {
	d := opDst(op)
	r1, r2 := int32(c.R[opSrc(op)]), c.R[d]
	var res uint32
	c.clrZNC()
	if r1 < 0 {
		if r1 > -32 {
			res = r2 << uint(-r1)
		}
		c.ctrl[JAG_FLAGS] |= (r2 >> 30) & 2
	} else {
		if r1 >= 32 {
			res = uint32(int32(r2) >> 31)
		} else {
			res = uint32(int32(r2) >> uint(r1))
		}
		c.ctrl[JAG_FLAGS] |= (r2 << 1) & 2
	}
	c.R[d] = res
	c.setZN(res)
}

func (c *JaguarCPU) opSHLQ(op uint16) {
	d := opDst(op)
	r2 := c.R[d]
	res := r2 << (32 - jaguarQuick[opSrc(op)])
	c.R[d] = res
	c.clrZNC()
	c.setZN(res)
	c.ctrl[JAG_FLAGS] |= (r2 >> 30) & 2
}

func (c *JaguarCPU) opSHRQ(op uint16) {
	d := opDst(op)
	r2 := c.R[d]
	res := r2 >> jaguarQuick[opSrc(op)]
	c.R[d] = res
	c.clrZNC()
	c.setZN(res)
	c.ctrl[JAG_FLAGS] |= (r2 << 1) & 2
}

func (c *JaguarCPU) opSHARQ(op uint16) {
	d := opDst(op)
	r2 := c.R[d]
	res := uint32(int32(r2) >> jaguarQuick[opSrc(op)])
	c.R[d] = res
	c.clrZNC()
	c.setZN(res)
	c.ctrl[JAG_FLAGS] |= (r2 << 1) & 2
}

func rotateRight(v, n uint32) uint32 {
	return v>>n | v<<(32-n)
}

func (c *JaguarCPU) opROR(op uint16) {
	d := opDst(op)
	r2 := c.R[d]
	res := rotateRight(r2, c.R[opSrc(op)]&31)
	c.R[d] = res
	c.clrZNC()
	c.setZN(res)
	c.ctrl[JAG_FLAGS] |= (r2 >> 30) & 2
}

func (c *JaguarCPU) opRORQ(op uint16) {
	d := opDst(op)
	r2 := c.R[d]
	res := rotateRight(r2, jaguarQuick[opSrc(op)])
	c.R[d] = res
	c.clrZNC()
	c.setZN(res)
	c.ctrl[JAG_FLAGS] |= (r2 >> 30) & 2
}

// ------------------------------------------------------------------------------
// Saturate, pack, mirror, normalise
// ------------------------------------------------------------------------------

func (c *JaguarCPU) saturate(op uint16, lo, hi int32) {
	d := opDst(op)
	v := int32(c.R[d])
	v = max(lo, min(hi, v))
	res := uint32(v)
	c.R[d] = res
	c.clrZN()
	c.setZN(res)
}

func (c *JaguarCPU) opSAT8(op uint16)   { c.saturate(op, 0, 255) }
func (c *JaguarCPU) opSAT16(op uint16)  { c.saturate(op, 0, 65535) }
func (c *JaguarCPU) opSAT24(op uint16)  { c.saturate(op, 0, 16777215) }
func (c *JaguarCPU) opSAT16S(op uint16) { c.saturate(op, -32768, 32767) }

// opSAT32S clamps using the accumulator's upper word.
func (c *JaguarCPU) opSAT32S(op uint16) {
	d := opDst(op)
	res := c.R[d]
	switch temp := int32(c.accum >> 32); {
	case temp < -1:
		res = 0x80000000
	case temp > 0:
		res = 0x7FFFFFFF
	}
	c.R[d] = res
	c.clrZN()
	c.setZN(res)
}

// opPACK packs CRY 4:4:8 fields when the source field is 0 and unpacks
// them otherwise. Flags are untouched.
func (c *JaguarCPU) opPACK(op uint16) {
	d := opDst(op)
	r2 := c.R[d]
	if opSrc(op) == 0 {
		c.R[d] = (r2>>10)&0xF000 | (r2>>5)&0x0F00 | r2&0xFF
	} else {
		c.R[d] = (r2&0xF000)<<10 | (r2&0x0F00)<<5 | r2&0xFF
	}
}

func (c *JaguarCPU) opMIRROR(op uint16) {
	d := opDst(op)
	r := c.R[d]
	res := uint32(c.tables.mirror[r&0xFFFF])<<16 | uint32(c.tables.mirror[r>>16])
	c.R[d] = res
	c.clrZN()
	c.setZN(res)
}

// opNORMI yields the shift that brings the mantissa's top bit to bit 22.
func (c *JaguarCPU) opNORMI(op uint16) {
	r1 := c.R[opSrc(op)]
	var res uint32
	if r1 != 0 {
		for r1&0xFFC00000 == 0 {
			r1 <<= 1
			res--
		}
		for r1&0xFF800000 != 0 {
			r1 >>= 1
			res++
		}
	}
	c.R[opDst(op)] = res
	c.clrZN()
	c.setZN(res)
}

func (c *JaguarCPU) opMTOI(op uint16) {
	r1 := c.R[opSrc(op)]
	c.R[opDst(op)] = uint32(int32(r1)>>8)&0xFF800000 | r1&0x007FFFFF
}

// ------------------------------------------------------------------------------
// Moves
// ------------------------------------------------------------------------------

func (c *JaguarCPU) opMOVE(op uint16)   { c.R[opDst(op)] = c.R[opSrc(op)] }
func (c *JaguarCPU) opMOVEQ(op uint16)  { c.R[opDst(op)] = uint32(opSrc(op)) }
func (c *JaguarCPU) opMOVETA(op uint16) { c.A[opDst(op)] = c.R[opSrc(op)] }
func (c *JaguarCPU) opMOVEFA(op uint16) { c.R[opDst(op)] = c.A[opSrc(op)] }

func (c *JaguarCPU) opMOVEI(op uint16) {
	value, words := c.decodeImmediate32(c.ctrl[JAG_PC])
	c.ctrl[JAG_PC] += uint32(words) * 2
	c.R[opDst(op)] = value
}

// opMOVE_PC captures the address of this instruction.
func (c *JaguarCPU) opMOVE_PC(op uint16) { c.R[opDst(op)] = c.ppc }

// ------------------------------------------------------------------------------
// Loads and stores
//
// Internal RAM only decodes long words, so narrow and phrase accesses that
// land in it become an aligned long access.
// ------------------------------------------------------------------------------

func (c *JaguarCPU) opLOADB(op uint16) {
	addr := c.R[opSrc(op)]
	if c.inInternalRAM(addr) {
		c.R[opDst(op)] = c.mem.Read32(addr &^ 3)
		return
	}
	c.R[opDst(op)] = uint32(c.mem.Read8(addr))
}

func (c *JaguarCPU) opLOADW(op uint16) {
	addr := c.R[opSrc(op)]
	if c.inInternalRAM(addr) {
		c.R[opDst(op)] = c.mem.Read32(addr &^ 3)
		return
	}
	c.R[opDst(op)] = uint32(c.mem.Read16(addr))
}

func (c *JaguarCPU) opLOAD(op uint16) {
	c.R[opDst(op)] = c.mem.Read32(c.R[opSrc(op)])
}

// opLOADP loads a 64-bit phrase: the high long goes to HIDATA.
func (c *JaguarCPU) opLOADP(op uint16) {
	addr := c.R[opSrc(op)]
	if c.inInternalRAM(addr) {
		c.R[opDst(op)] = c.mem.Read32(addr &^ 3)
		return
	}
	c.ctrl[JAG_HIDATA] = c.mem.Read32(addr)
	c.R[opDst(op)] = c.mem.Read32(addr + 4)
}

func (c *JaguarCPU) opLOAD_R14N(op uint16) {
	c.R[opDst(op)] = c.mem.Read32(c.R[14] + jaguarQuick[opSrc(op)]*4)
}

func (c *JaguarCPU) opLOAD_R15N(op uint16) {
	c.R[opDst(op)] = c.mem.Read32(c.R[15] + jaguarQuick[opSrc(op)]*4)
}

func (c *JaguarCPU) opLOAD_R14RN(op uint16) {
	c.R[opDst(op)] = c.mem.Read32(c.R[14] + c.R[opSrc(op)])
}

func (c *JaguarCPU) opLOAD_R15RN(op uint16) {
	c.R[opDst(op)] = c.mem.Read32(c.R[15] + c.R[opSrc(op)])
}

func (c *JaguarCPU) opSTOREB(op uint16) {
	addr := c.R[opSrc(op)]
	if c.inInternalRAM(addr) {
		c.mem.Write32(addr&^3, c.R[opDst(op)])
		return
	}
	c.mem.Write8(addr, uint8(c.R[opDst(op)]))
}

func (c *JaguarCPU) opSTOREW(op uint16) {
	addr := c.R[opSrc(op)]
	if c.inInternalRAM(addr) {
		c.mem.Write32(addr&^3, c.R[opDst(op)])
		return
	}
	c.mem.Write16(addr, uint16(c.R[opDst(op)]))
}

func (c *JaguarCPU) opSTORE(op uint16) {
	c.mem.Write32(c.R[opSrc(op)], c.R[opDst(op)])
}

func (c *JaguarCPU) opSTOREP(op uint16) {
	addr := c.R[opSrc(op)]
	if c.inInternalRAM(addr) {
		c.mem.Write32(addr&^3, c.R[opDst(op)])
		return
	}
	c.mem.Write32(addr, c.ctrl[JAG_HIDATA])
	c.mem.Write32(addr+4, c.R[opDst(op)])
}

func (c *JaguarCPU) opSTORE_R14N(op uint16) {
	c.mem.Write32(c.R[14]+jaguarQuick[opSrc(op)]*4, c.R[opDst(op)])
}

func (c *JaguarCPU) opSTORE_R15N(op uint16) {
	c.mem.Write32(c.R[15]+jaguarQuick[opSrc(op)]*4, c.R[opDst(op)])
}

func (c *JaguarCPU) opSTORE_R14RN(op uint16) {
	c.mem.Write32(c.R[14]+c.R[opSrc(op)], c.R[opDst(op)])
}

func (c *JaguarCPU) opSTORE_R15RN(op uint16) {
	c.mem.Write32(c.R[15]+c.R[opSrc(op)], c.R[opDst(op)])
}

// ------------------------------------------------------------------------------
// Branches
// ------------------------------------------------------------------------------

// branchTo runs the delay slot at PC, then continues at target. The delay
// slot executes with PC already pointing at the target.
func (c *JaguarCPU) branchTo(target uint32) {
	delay := c.mem.Fetch16(c.ctrl[JAG_PC])
	c.ctrl[JAG_PC] = target
	c.info.ops[delay>>10](c, delay)
	c.icount -= JAG_BRANCH_WAIT
}

func (c *JaguarCPU) opJR(op uint16) {
	if !c.condition(opDst(op)) {
		return
	}
	c.branchTo(c.ctrl[JAG_PC] + uint32(jrOffset(op)))
}

// opJUMP reads its target from the alternate bank when it runs in the
// cycle right after a bank swap.
func (c *JaguarCPU) opJUMP(op uint16) {
	if !c.condition(opDst(op)) {
		return
	}
	reg := opSrc(op)
	target := c.R[reg]
	if c.icount == c.bankSwitchCount {
		target = c.A[reg]
	}
	c.branchTo(target)
}

// ------------------------------------------------------------------------------
// No-ops
// ------------------------------------------------------------------------------

func (c *JaguarCPU) opNOP(op uint16) {}

// opILLEGAL is silent.
func (c *JaguarCPU) opILLEGAL(op uint16) {}
