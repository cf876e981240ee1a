// debug_disasm_jaguar.go - Jaguar GPU/DSP disassembler

package main

import (
	"fmt"
)

// Condition prefixes for jr/jump, indexed by the 5-bit condition field.
var jaguarConditionNames = [32]string{
	"", "nz,", "z,", "???,", "nc,", "nc nz,", "nc z,", "???,",
	"c,", "c nz,", "c z,", "???,", "???,", "???,", "???,", "???,",
	"???,", "???,", "???,", "???,", "nn,", "nn nz,", "nn z,", "???,",
	"n,", "n nz,", "n z,", "???,", "???,", "???,", "???,", "never,",
}

// disassembleJaguar decodes count instructions starting at addr using the
// opcode layout of the given variant.
func disassembleJaguar(readMem func(addr uint64, size int) []byte, variant JaguarVariant, addr uint64, count int) []DisassembledLine {
	names := &gpuMnemonics
	if variant == JaguarDSP {
		names = &dspMnemonics
	}

	var lines []DisassembledLine
	for range count {
		data := readMem(addr, 6)
		if len(data) < 2 {
			break
		}
		op := uint16(data[0])<<8 | uint16(data[1])
		idx := op >> 10
		src, dst := uint8((op>>5)&31), uint8(op&31)
		name := names[idx]

		line := DisassembledLine{Address: addr, Size: 2}
		var operands string

		switch name {
		case "add", "addc", "sub", "subc", "and", "or", "xor", "mult", "imult", "imultn",
			"imacn", "div", "sh", "sha", "ror", "cmp", "move", "mmult", "mtoi", "normi":
			operands = fmt.Sprintf("r%d,r%d", src, dst)
		case "addq", "addqt", "subq", "subqt", "addqmod", "subqmod", "shrq", "sharq", "rorq":
			operands = fmt.Sprintf("#%d,r%d", jaguarQuick[src], dst)
		case "shlq":
			operands = fmt.Sprintf("#%d,r%d", 32-jaguarQuick[src], dst)
		case "cmpq":
			operands = fmt.Sprintf("#%d,r%d", int32(quickSigned(op)), dst)
		case "moveq", "btst", "bset", "bclr":
			operands = fmt.Sprintf("#%d,r%d", src, dst)
		case "neg", "not", "abs", "resmac", "sat8", "sat16", "sat16s", "sat24", "sat32s", "mirror":
			operands = fmt.Sprintf("r%d", dst)
		case "pack":
			if src != 0 {
				name = "unpack"
			}
			operands = fmt.Sprintf("r%d", dst)
		case "moveta":
			operands = fmt.Sprintf("r%d,a%d", src, dst)
		case "movefa":
			operands = fmt.Sprintf("a%d,r%d", src, dst)
		case "movei":
			if len(data) < 6 {
				operands = "???"
				break
			}
			imm := uint32(data[2])<<8 | uint32(data[3]) | uint32(data[4])<<24 | uint32(data[5])<<16
			operands = fmt.Sprintf("#$%X,r%d", imm, dst)
			line.Size = 6
		case "loadb", "loadw", "loadp":
			operands = fmt.Sprintf("(r%d),r%d", src, dst)
		case "storeb", "storew", "storep":
			operands = fmt.Sprintf("r%d,(r%d)", dst, src)
		case "load", "store":
			operands = jaguarIndexedOperands(idx, src, dst)
		case "jump":
			operands = fmt.Sprintf("%s(r%d)", jaguarConditionNames[dst], src)
			line.IsBranch = true
		case "jr":
			target := uint32(int32(addr) + 2 + jrOffset(op))
			operands = fmt.Sprintf("%s$%06X", jaguarConditionNames[dst], target&JAG_ADDR_MASK)
			line.IsBranch = true
			line.BranchTarget = uint64(target & JAG_ADDR_MASK)
		case "nop", "illegal":
		}

		if idx == 51 {
			operands = fmt.Sprintf("pc,r%d", dst)
		}

		line.Mnemonic = name
		if operands != "" {
			line.Mnemonic = fmt.Sprintf("%-8s%s", name, operands)
		}
		line.HexBytes = jaguarHexBytes(data[:line.Size])
		lines = append(lines, line)
		addr += uint64(line.Size)
	}
	return lines
}

// jaguarIndexedOperands formats the register-indirect load/store forms.
func jaguarIndexedOperands(idx uint16, src, dst uint8) string {
	switch idx {
	case 41:
		return fmt.Sprintf("(r%d),r%d", src, dst)
	case 43, 44:
		return fmt.Sprintf("(r%d+%d),r%d", 14+idx-43, jaguarQuick[src]*4, dst)
	case 58, 59:
		return fmt.Sprintf("(r%d+r%d),r%d", 14+idx-58, src, dst)
	case 47:
		return fmt.Sprintf("r%d,(r%d)", dst, src)
	case 49, 50:
		return fmt.Sprintf("r%d,(r%d+%d)", dst, 14+idx-49, jaguarQuick[src]*4)
	case 60, 61:
		return fmt.Sprintf("r%d,(r%d+r%d)", dst, 14+idx-60, src)
	}
	return "???"
}

func jaguarHexBytes(data []byte) string {
	s := ""
	for i := 0; i+1 < len(data); i += 2 {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%02X%02X", data[i], data[i+1])
	}
	return s
}
