// jagasm.go - Jaguar GPU/DSP RISC assembler

//go:build jagasm

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

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

/*
jagasm - two-pass assembler for the Jaguar GPU and DSP

Syntax follows the machine monitor's disassembly, so a listing can be fed
back in:

	loop:   movei   #$F02114,r1
	        moveq   #0,r2
	        store   r2,(r1)
	        jr      nz,loop
	        nop

Directives: org, NAME equ value, dc.w, dc.l, ds.b, align. Comments start
with ';'. Numbers are $hex, 0xhex, %binary or decimal; labels and equates
may be combined with + and -.
*/

const (
	GPU_ORIGIN = 0xF03000
	DSP_ORIGIN = 0xF1B000
	ADDR_MASK  = 0x00FFFFFF
)

var jagSharedOps = map[string]int{
	"add": 0, "addc": 1, "addq": 2, "addqt": 3, "sub": 4, "subc": 5, "subq": 6, "subqt": 7,
	"neg": 8, "and": 9, "or": 10, "xor": 11, "not": 12, "btst": 13, "bset": 14, "bclr": 15,
	"mult": 16, "imult": 17, "imultn": 18, "resmac": 19, "imacn": 20, "div": 21, "abs": 22, "sh": 23,
	"shlq": 24, "shrq": 25, "sha": 26, "sharq": 27, "ror": 28, "rorq": 29, "cmp": 30, "cmpq": 31,
	"moveq": 35, "moveta": 36, "movefa": 37, "movei": 38, "loadb": 39, "loadw": 40,
	"storeb": 45, "storew": 46, "jump": 52, "jr": 53, "mmult": 54, "mtoi": 55, "normi": 56, "nop": 57,
}

var jagGPUOps = map[string]int{
	"sat8": 32, "sat16": 33, "loadp": 42, "storep": 48, "sat24": 62, "pack": 63, "unpack": 63,
}

var jagDSPOps = map[string]int{
	"subqmod": 32, "sat16s": 33, "sat32s": 42, "mirror": 48, "addqmod": 63,
}

var jagConditions = map[string]int{
	"": 0, "t": 0, "nz": 1, "ne": 1, "z": 2, "eq": 2, "nc": 4, "cc": 4, "nc nz": 5, "nc z": 6,
	"c": 8, "cs": 8, "c nz": 9, "c z": 10, "nn": 20, "pl": 20, "nn nz": 21, "nn z": 22,
	"n": 24, "mi": 24, "n nz": 25, "n z": 26, "never": 31,
}

type JaguarAssembler struct {
	dsp     bool
	origin  uint32
	pc      uint32
	labels  map[string]uint32
	equates map[string]uint32
	pass    int
	image   []byte
}

func NewJaguarAssembler(dsp bool) *JaguarAssembler {
	origin := uint32(GPU_ORIGIN)
	if dsp {
		origin = DSP_ORIGIN
	}
	return &JaguarAssembler{
		dsp:     dsp,
		origin:  origin,
		labels:  make(map[string]uint32),
		equates: make(map[string]uint32),
	}
}

// Origin is the address the first byte of the image loads at.
func (a *JaguarAssembler) Origin() uint32 { return a.origin }

func stripComment(line string) string {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		return line[:i]
	}
	return line
}

// Assemble returns the image from the origin to the highest address written.
func (a *JaguarAssembler) Assemble(source string) ([]byte, error) {
	lines := strings.Split(source, "\n")
	first := true

	for a.pass = 1; a.pass <= 2; a.pass++ {
		a.pc = a.origin
		for n, raw := range lines {
			line := strings.TrimSpace(stripComment(raw))
			if line == "" {
				continue
			}
			if err := a.line(line, &first); err != nil {
				return nil, fmt.Errorf("line %d: %w", n+1, err)
			}
		}
	}
	return a.image, nil
}

func (a *JaguarAssembler) line(line string, first *bool) error {
	fields := strings.Fields(line)

	if strings.HasSuffix(fields[0], ":") {
		name := strings.TrimSuffix(fields[0], ":")
		if a.pass == 1 {
			if _, dup := a.labels[name]; dup {
				return fmt.Errorf("label '%s' defined twice", name)
			}
			a.labels[name] = a.pc
		}
		line = strings.TrimSpace(line[len(fields[0]):])
		if line == "" {
			return nil
		}
		fields = strings.Fields(line)
	}

	if len(fields) >= 3 && strings.ToLower(fields[1]) == "equ" {
		if a.pass == 2 {
			return nil
		}
		v, err := a.eval(strings.Join(fields[2:], ""))
		if err != nil {
			return fmt.Errorf("equ '%s': %w", fields[0], err)
		}
		a.equates[fields[0]] = v
		return nil
	}

	mnemonic := strings.ToLower(fields[0])
	rest := strings.TrimSpace(line[len(fields[0]):])

	switch mnemonic {
	case "org":
		addr, err := a.eval(rest)
		if err != nil {
			return fmt.Errorf("org: %w", err)
		}
		addr &= ADDR_MASK
		if *first && a.pass == 1 && len(a.labels) == 0 {
			a.origin = addr
		} else if addr < a.origin {
			return fmt.Errorf("org $%06X is below the origin $%06X", addr, a.origin)
		}
		*first = false
		a.pc = addr
		return nil
	case "dc.w", "dc.l":
		*first = false
		size := uint32(2)
		if mnemonic == "dc.l" {
			size = 4
		}
		for _, item := range strings.Split(rest, ",") {
			v, err := a.eval(item)
			if err != nil && a.pass == 2 {
				return fmt.Errorf("%s: %w", mnemonic, err)
			}
			if size == 2 {
				a.emit(uint16(v))
			} else {
				a.emit(uint16(v>>16), uint16(v))
			}
		}
		return nil
	case "ds.b":
		*first = false
		n, err := a.eval(rest)
		if err != nil {
			return fmt.Errorf("ds.b: %w", err)
		}
		a.pad(a.pc + n)
		return nil
	case "align":
		*first = false
		n, err := a.eval(rest)
		if err != nil || n == 0 {
			return fmt.Errorf("align needs a positive value")
		}
		a.pad((a.pc + n - 1) / n * n)
		return nil
	}

	*first = false
	words, err := a.encode(mnemonic, splitOperands(rest))
	if err != nil {
		return err
	}
	a.emit(words...)
	return nil
}

// emit writes big-endian words at pc. Pass 1 only advances pc.
func (a *JaguarAssembler) emit(words ...uint16) {
	for _, w := range words {
		if a.pass == 2 {
			off := int(a.pc - a.origin)
			a.grow(off + 2)
			a.image[off], a.image[off+1] = byte(w>>8), byte(w)
		}
		a.pc += 2
	}
}

func (a *JaguarAssembler) pad(to uint32) {
	if a.pass == 2 && to > a.pc {
		a.grow(int(to - a.origin))
	}
	a.pc = to
}

func (a *JaguarAssembler) grow(n int) {
	if n > len(a.image) {
		a.image = append(a.image, make([]byte, n-len(a.image))...)
	}
}

func splitOperands(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ------------------------------------------------------------------------------
// Expressions
// ------------------------------------------------------------------------------

// eval evaluates term [(+|-) term]*. Unknown symbols are an error in pass 2
// and read as 0 in pass 1.
func (a *JaguarAssembler) eval(expr string) (uint32, error) {
	expr = strings.ReplaceAll(expr, " ", "")
	if expr == "" {
		return 0, fmt.Errorf("missing value")
	}
	var result uint32
	sign := uint32(1)
	start := 0
	if expr[0] == '-' {
		sign = ^uint32(0)
		start = 1
	}
	for i := start; i <= len(expr); i++ {
		if i < len(expr) && (i == start || (expr[i] != '+' && expr[i] != '-')) {
			continue
		}
		v, err := a.term(expr[start:i])
		if err != nil {
			return 0, err
		}
		result += sign * v
		if i < len(expr) {
			sign = 1
			if expr[i] == '-' {
				sign = ^uint32(0)
			}
			start = i + 1
		}
	}
	return result, nil
}

func (a *JaguarAssembler) term(s string) (uint32, error) {
	var (
		v   uint64
		err error
	)
	switch {
	case strings.HasPrefix(s, "$"):
		v, err = strconv.ParseUint(s[1:], 16, 32)
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		v, err = strconv.ParseUint(s[2:], 16, 32)
	case strings.HasPrefix(s, "%"):
		v, err = strconv.ParseUint(s[1:], 2, 32)
	case s != "" && s[0] >= '0' && s[0] <= '9':
		v, err = strconv.ParseUint(s, 10, 32)
	default:
		if val, ok := a.equates[s]; ok {
			return val, nil
		}
		if val, ok := a.labels[s]; ok {
			return val, nil
		}
		if a.pass == 1 {
			return 0, nil
		}
		return 0, fmt.Errorf("undefined symbol '%s'", s)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid number '%s'", s)
	}
	return uint32(v), nil
}

// ------------------------------------------------------------------------------
// Encoding
// ------------------------------------------------------------------------------

func jagWord(index, src, dst int) uint16 {
	return uint16(index<<10 | (src&31)<<5 | dst&31)
}

func parseReg(s string, prefix byte) (int, error) {
	s = strings.ToLower(s)
	if len(s) < 2 || s[0] != prefix {
		return 0, fmt.Errorf("expected %c register, got '%s'", prefix, s)
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 0 || n > 31 {
		return 0, fmt.Errorf("bad register '%s'", s)
	}
	return n, nil
}

// parseIndirect splits "(rB)", "(rB+n)" or "(rB+rI)".
func parseIndirect(s string) (base int, offset string, err error) {
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return 0, "", fmt.Errorf("expected (register), got '%s'", s)
	}
	inner := s[1 : len(s)-1]
	reg, off, _ := strings.Cut(inner, "+")
	base, err = parseReg(strings.TrimSpace(reg), 'r')
	return base, strings.TrimSpace(off), err
}

func (a *JaguarAssembler) immediate(s string) (uint32, error) {
	if !strings.HasPrefix(s, "#") {
		return 0, fmt.Errorf("expected #immediate, got '%s'", s)
	}
	v, err := a.eval(s[1:])
	if a.pass == 1 {
		return v, nil
	}
	return v, err
}

func want(ops []string, n int, mnemonic string) error {
	if len(ops) != n {
		return fmt.Errorf("%s takes %d operand(s), got %d", mnemonic, n, len(ops))
	}
	return nil
}

func (a *JaguarAssembler) opIndex(mnemonic string) (int, bool) {
	if idx, ok := jagSharedOps[mnemonic]; ok {
		return idx, true
	}
	variant := jagGPUOps
	if a.dsp {
		variant = jagDSPOps
	}
	idx, ok := variant[mnemonic]
	return idx, ok
}

func (a *JaguarAssembler) encode(mnemonic string, ops []string) ([]uint16, error) {
	switch mnemonic {
	case "move":
		return a.encodeMove(ops)
	case "load":
		return a.encodeLoad(ops)
	case "store":
		return a.encodeStore(ops)
	}

	idx, ok := a.opIndex(mnemonic)
	if !ok {
		variant := "GPU"
		if a.dsp {
			variant = "DSP"
		}
		return nil, fmt.Errorf("unknown %s instruction '%s'", variant, mnemonic)
	}

	switch mnemonic {
	case "nop":
		if err := want(ops, 0, mnemonic); err != nil {
			return nil, err
		}
		return []uint16{jagWord(idx, 0, 0)}, nil

	case "neg", "not", "abs", "resmac", "sat8", "sat16", "sat16s", "sat24", "sat32s", "mirror", "pack", "unpack":
		if err := want(ops, 1, mnemonic); err != nil {
			return nil, err
		}
		dst, err := parseReg(ops[0], 'r')
		if err != nil {
			return nil, err
		}
		src := 0
		if mnemonic == "unpack" {
			src = 1
		}
		return []uint16{jagWord(idx, src, dst)}, nil

	case "addq", "addqt", "subq", "subqt", "addqmod", "subqmod", "shrq", "sharq", "rorq",
		"shlq", "cmpq", "moveq", "btst", "bset", "bclr":
		if err := want(ops, 2, mnemonic); err != nil {
			return nil, err
		}
		v, err := a.immediate(ops[0])
		if err != nil {
			return nil, err
		}
		dst, err := parseReg(ops[1], 'r')
		if err != nil {
			return nil, err
		}
		src, err := quickField(mnemonic, int32(v))
		if err != nil && a.pass == 2 {
			return nil, err
		}
		return []uint16{jagWord(idx, src, dst)}, nil

	case "movei":
		if err := want(ops, 2, mnemonic); err != nil {
			return nil, err
		}
		v, err := a.immediate(ops[0])
		if err != nil {
			return nil, err
		}
		dst, err := parseReg(ops[1], 'r')
		if err != nil {
			return nil, err
		}
		return []uint16{jagWord(idx, 0, dst), uint16(v), uint16(v >> 16)}, nil

	case "moveta", "movefa":
		if err := want(ops, 2, mnemonic); err != nil {
			return nil, err
		}
		srcBank, dstBank := byte('r'), byte('a')
		if mnemonic == "movefa" {
			srcBank, dstBank = 'a', 'r'
		}
		src, err := parseReg(ops[0], srcBank)
		if err != nil {
			return nil, err
		}
		dst, err := parseReg(ops[1], dstBank)
		if err != nil {
			return nil, err
		}
		return []uint16{jagWord(idx, src, dst)}, nil

	case "loadb", "loadw", "loadp":
		if err := want(ops, 2, mnemonic); err != nil {
			return nil, err
		}
		src, off, err := parseIndirect(ops[0])
		if err != nil || off != "" {
			return nil, fmt.Errorf("%s needs (rN),rD", mnemonic)
		}
		dst, err := parseReg(ops[1], 'r')
		if err != nil {
			return nil, err
		}
		return []uint16{jagWord(idx, src, dst)}, nil

	case "storeb", "storew", "storep":
		if err := want(ops, 2, mnemonic); err != nil {
			return nil, err
		}
		dst, err := parseReg(ops[0], 'r')
		if err != nil {
			return nil, err
		}
		src, off, err := parseIndirect(ops[1])
		if err != nil || off != "" {
			return nil, fmt.Errorf("%s needs rS,(rN)", mnemonic)
		}
		return []uint16{jagWord(idx, src, dst)}, nil

	case "jump":
		cc, target, err := splitCondition(ops)
		if err != nil {
			return nil, err
		}
		src, off, err := parseIndirect(target)
		if err != nil || off != "" {
			return nil, fmt.Errorf("jump needs (rN)")
		}
		return []uint16{jagWord(idx, src, cc)}, nil

	case "jr":
		cc, target, err := splitCondition(ops)
		if err != nil {
			return nil, err
		}
		addr, err := a.eval(target)
		if err != nil && a.pass == 2 {
			return nil, err
		}
		delta := int32(addr-(a.pc+2)) / 2
		if a.pass == 2 && (addr&1 != 0 || delta < -16 || delta > 15) {
			return nil, fmt.Errorf("jr target $%06X out of range", addr)
		}
		return []uint16{jagWord(idx, int(delta), cc)}, nil
	}

	// Everything left is register to register.
	if err := want(ops, 2, mnemonic); err != nil {
		return nil, err
	}
	src, err := parseReg(ops[0], 'r')
	if err != nil {
		return nil, err
	}
	dst, err := parseReg(ops[1], 'r')
	if err != nil {
		return nil, err
	}
	return []uint16{jagWord(idx, src, dst)}, nil
}

// quickField encodes the 5-bit immediate of the quick forms.
func quickField(mnemonic string, v int32) (int, error) {
	switch mnemonic {
	case "cmpq":
		if v < -16 || v > 15 {
			return 0, fmt.Errorf("cmpq value %d out of range -16..15", v)
		}
		return int(v) & 31, nil
	case "moveq", "btst", "bset", "bclr":
		if v < 0 || v > 31 {
			return 0, fmt.Errorf("%s value %d out of range 0..31", mnemonic, v)
		}
		return int(v), nil
	case "shlq":
		if v < 0 || v > 31 {
			return 0, fmt.Errorf("shlq count %d out of range 0..31", v)
		}
		return int(32-v) & 31, nil
	}
	if v < 1 || v > 32 {
		return 0, fmt.Errorf("%s value %d out of range 1..32", mnemonic, v)
	}
	return int(v) & 31, nil
}

func splitCondition(ops []string) (int, string, error) {
	switch len(ops) {
	case 1:
		return 0, ops[0], nil
	case 2:
		name := strings.Join(strings.Fields(strings.ToLower(ops[0])), " ")
		if cc, ok := jagConditions[name]; ok {
			return cc, ops[1], nil
		}
		if strings.HasPrefix(name, "$") {
			if cc, err := strconv.ParseUint(name[1:], 16, 8); err == nil && cc < 32 {
				return int(cc), ops[1], nil
			}
		}
		return 0, "", fmt.Errorf("unknown condition '%s'", ops[0])
	}
	return 0, "", fmt.Errorf("expected [condition,]target")
}

func (a *JaguarAssembler) encodeMove(ops []string) ([]uint16, error) {
	if err := want(ops, 2, "move"); err != nil {
		return nil, err
	}
	dst, err := parseReg(ops[1], 'r')
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(ops[0], "pc") {
		return []uint16{jagWord(51, 0, dst)}, nil
	}
	src, err := parseReg(ops[0], 'r')
	if err != nil {
		return nil, err
	}
	return []uint16{jagWord(34, src, dst)}, nil
}

// indexed resolves the addressing form of load/store. plain, quick and
// register are the opcode indexes for (rN), (r14+n) and (r14+rI); r15
// forms are one higher.
func (a *JaguarAssembler) indexed(operand string, plain, quick, register int) (idx, src int, err error) {
	base, off, err := parseIndirect(operand)
	if err != nil {
		return 0, 0, err
	}
	if off == "" {
		return plain, base, nil
	}
	if base != 14 && base != 15 {
		return 0, 0, fmt.Errorf("indexed addressing needs r14 or r15, got r%d", base)
	}
	step := base - 14
	if reg, err := parseReg(off, 'r'); err == nil {
		return register + step, reg, nil
	}
	n, err := a.eval(off)
	if err != nil && a.pass == 2 {
		return 0, 0, err
	}
	if a.pass == 2 && (n%4 != 0 || n < 4 || n > 128) {
		return 0, 0, fmt.Errorf("offset %d must be a multiple of 4 in 4..128", n)
	}
	return quick + step, int(n/4) & 31, nil
}

func (a *JaguarAssembler) encodeLoad(ops []string) ([]uint16, error) {
	if err := want(ops, 2, "load"); err != nil {
		return nil, err
	}
	idx, src, err := a.indexed(ops[0], 41, 43, 58)
	if err != nil {
		return nil, err
	}
	dst, err := parseReg(ops[1], 'r')
	if err != nil {
		return nil, err
	}
	return []uint16{jagWord(idx, src, dst)}, nil
}

func (a *JaguarAssembler) encodeStore(ops []string) ([]uint16, error) {
	if err := want(ops, 2, "store"); err != nil {
		return nil, err
	}
	dst, err := parseReg(ops[0], 'r')
	if err != nil {
		return nil, err
	}
	idx, src, err := a.indexed(ops[1], 47, 49, 60)
	if err != nil {
		return nil, err
	}
	return []uint16{jagWord(idx, src, dst)}, nil
}

func main() {
	dsp := false
	var inputFile, outFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "-dsp":
			dsp = true
		case arg == "-o" && i+1 < len(args):
			i++
			outFile = args[i]
		case strings.HasPrefix(arg, "-"):
			fmt.Fprintf(os.Stderr, "Unknown option: %s\n", arg)
			fmt.Fprintf(os.Stderr, "Usage: jagasm [-dsp] [-o out.bin] input.s\n")
			os.Exit(1)
		default:
			inputFile = arg
		}
	}
	if inputFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: jagasm [-dsp] [-o out.bin] input.s\n")
		os.Exit(1)
	}

	source, err := os.ReadFile(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
		os.Exit(1)
	}

	asm := NewJaguarAssembler(dsp)
	binary, err := asm.Assemble(string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Assembly error: %v\n", err)
		os.Exit(1)
	}

	if outFile == "" {
		outFile = strings.TrimSuffix(inputFile, filepath.Ext(inputFile)) + ".bin"
	}
	if err := os.WriteFile(outFile, binary, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully assembled to %s (%d bytes at $%06X)\n", outFile, len(binary), asm.Origin())
}
