// jagasm_test.go - Jaguar assembler tests

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
	"strings"
	"testing"
)

func assembleJaguar(t *testing.T, dsp bool, src string) []uint16 {
	t.Helper()
	asm := NewJaguarAssembler(dsp)
	out, err := asm.Assemble(src)
	if err != nil {
		t.Fatalf("assembly failed: %v", err)
	}
	if len(out)%2 != 0 {
		t.Fatalf("odd image length %d", len(out))
	}
	words := make([]uint16, len(out)/2)
	for i := range words {
		words[i] = uint16(out[2*i])<<8 | uint16(out[2*i+1])
	}
	return words
}

func assembleJaguarError(t *testing.T, dsp bool, src string) error {
	t.Helper()
	_, err := NewJaguarAssembler(dsp).Assemble(src)
	if err == nil {
		t.Fatal("expected assembly error, got nil")
	}
	return err
}

func requireWords(t *testing.T, got, want []uint16) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d words %04X, want %d words %04X", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("word %d = $%04X, want $%04X", i, got[i], want[i])
		}
	}
}

func TestJagasm_RegisterForms(t *testing.T) {
	got := assembleJaguar(t, false, `
		add     r1,r2
		sub     r31,r0
		neg     r5
		move    r3,r4
		move    pc,r9
		moveta  r1,a2
		movefa  a3,r4
		nop
	`)
	requireWords(t, got, []uint16{
		jagWord(0, 1, 2), jagWord(4, 31, 0), jagWord(8, 0, 5), jagWord(34, 3, 4),
		jagWord(51, 0, 9), jagWord(36, 1, 2), jagWord(37, 3, 4), 0xE400,
	})
}

func TestJagasm_QuickImmediates(t *testing.T) {
	got := assembleJaguar(t, false, `
		addq    #32,r1
		subq    #1,r2
		shlq    #8,r3
		shrq    #16,r4
		cmpq    #-3,r5
		moveq   #31,r6
		btst    #0,r7
	`)
	requireWords(t, got, []uint16{
		jagWord(2, 0, 1), jagWord(6, 1, 2), jagWord(24, 24, 3), jagWord(25, 16, 4),
		jagWord(31, 29, 5), jagWord(35, 31, 6), jagWord(13, 0, 7),
	})

	for _, src := range []string{"addq #0,r1", "addq #33,r1", "cmpq #16,r1", "moveq #32,r1", "shlq #32,r1"} {
		assembleJaguarError(t, false, src)
	}
}

func TestJagasm_MoveiAndData(t *testing.T) {
	got := assembleJaguar(t, false, `
CTRL    equ     $F02114
		movei   #CTRL,r1
		movei   #-1,r2
		dc.w    $1234,7
		dc.l    $DEADBEEF
	`)
	requireWords(t, got, []uint16{
		jagWord(38, 0, 1), 0x2114, 0x00F0,
		jagWord(38, 0, 2), 0xFFFF, 0xFFFF,
		0x1234, 0x0007, 0xDEAD, 0xBEEF,
	})
}

func TestJagasm_LoadStoreForms(t *testing.T) {
	got := assembleJaguar(t, false, `
		load    (r3),r4
		load    (r14+8),r1
		load    (r15+128),r2
		load    (r14+r5),r6
		store   r4,(r3)
		store   r1,(r15+4)
		store   r6,(r15+r7)
		loadb   (r1),r2
		storew  r2,(r1)
		loadp   (r8),r9
	`)
	requireWords(t, got, []uint16{
		jagWord(41, 3, 4), jagWord(43, 2, 1), jagWord(44, 0, 2), jagWord(58, 5, 6),
		jagWord(47, 3, 4), jagWord(50, 1, 1), jagWord(61, 7, 6),
		jagWord(39, 1, 2), jagWord(46, 1, 2), jagWord(42, 8, 9),
	})

	assembleJaguarError(t, false, "load (r3+4),r1")
	assembleJaguarError(t, false, "load (r14+6),r1")
}

func TestJagasm_Branches(t *testing.T) {
	got := assembleJaguar(t, false, `
		org     $F03100
top:    nop
		jr      nz,top
		jr      top
		jump    never,(r3)
		jump    (r4)
		jr      nc nz,done
		nop
done:   nop
	`)
	requireWords(t, got, []uint16{
		0xE400,
		jagWord(53, -2, 1),
		jagWord(53, -3, 0),
		jagWord(52, 3, 31),
		jagWord(52, 4, 0),
		jagWord(53, 1, 5),
		0xE400, 0xE400,
	})

	err := assembleJaguarError(t, false, "jr far\n ds.b 64\nfar: nop")
	if !strings.Contains(err.Error(), "out of range") {
		t.Fatalf("error %v", err)
	}
	assembleJaguarError(t, false, "jr maybe,here\nhere: nop")
}

func TestJagasm_VariantOpcodes(t *testing.T) {
	requireWords(t, assembleJaguar(t, false, "pack r1\nunpack r2\nsat8 r3\nstorep r4,(r5)"),
		[]uint16{jagWord(63, 0, 1), jagWord(63, 1, 2), jagWord(32, 0, 3), jagWord(48, 5, 4)})
	requireWords(t, assembleJaguar(t, true, "addqmod #1,r1\nsubqmod #4,r2\nmirror r3\nsat32s r6"),
		[]uint16{jagWord(63, 1, 1), jagWord(32, 4, 2), jagWord(48, 0, 3), jagWord(42, 0, 6)})

	err := assembleJaguarError(t, true, "pack r1")
	if !strings.Contains(err.Error(), "unknown DSP instruction") {
		t.Fatalf("error %v", err)
	}
	assembleJaguarError(t, false, "mirror r1")
}

func TestJagasm_OriginAndLayout(t *testing.T) {
	asm := NewJaguarAssembler(true)
	if asm.Origin() != DSP_ORIGIN {
		t.Fatalf("DSP origin $%06X", asm.Origin())
	}

	asm = NewJaguarAssembler(false)
	out, err := asm.Assemble(`
		org     $F03800
start:  nop
		align   8
		dc.w    start-$F03000
		ds.b    2
		org     $F03810
		nop
	`)
	if err != nil {
		t.Fatal(err)
	}
	if asm.Origin() != 0xF03800 {
		t.Fatalf("origin $%06X", asm.Origin())
	}
	want := []byte{0xE4, 0, 0, 0, 0, 0, 0, 0, 0x08, 0x00, 0, 0, 0, 0, 0, 0, 0xE4, 0}
	if string(out) != string(want) {
		t.Fatalf("image % X, want % X", out, want)
	}

	assembleJaguarError(t, false, "nop\norg $F00000")
	err = assembleJaguarError(t, false, "movei #missing,r1")
	if !strings.Contains(err.Error(), "line 1") || !strings.Contains(err.Error(), "undefined symbol 'missing'") {
		t.Fatalf("error %v", err)
	}
	assembleJaguarError(t, false, "dup: nop\ndup: nop")
}
