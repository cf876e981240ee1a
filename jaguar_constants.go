// jaguar_constants.go - Jaguar RISC constants

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

// ------------------------------------------------------------------------------
// FLAGS register bits
// ------------------------------------------------------------------------------
const (
	JAG_ZFLAG     = 0x00001
	JAG_CFLAG     = 0x00002
	JAG_NFLAG     = 0x00004
	JAG_IFLAG     = 0x00008 // interrupt mask
	JAG_EINT0FLAG = 0x00010
	JAG_EINT1FLAG = 0x00020
	JAG_EINT2FLAG = 0x00040
	JAG_EINT3FLAG = 0x00080
	JAG_EINT4FLAG = 0x00100
	JAG_CINT0FLAG = 0x00200
	JAG_CINT1FLAG = 0x00400
	JAG_CINT2FLAG = 0x00800
	JAG_CINT3FLAG = 0x01000
	JAG_CINT4FLAG = 0x02000
	JAG_RPAGEFLAG = 0x04000 // register page select
	JAG_DMAFLAG   = 0x08000
	JAG_EINT5FLAG = 0x10000 // DSP only
	JAG_CINT5FLAG = 0x20000 // DSP only

	JAG_EINT04FLAGS = JAG_EINT0FLAG | JAG_EINT1FLAG | JAG_EINT2FLAG | JAG_EINT3FLAG | JAG_EINT4FLAG
	JAG_CINT04FLAGS = JAG_CINT0FLAG | JAG_CINT1FLAG | JAG_CINT2FLAG | JAG_CINT3FLAG | JAG_CINT4FLAG
)

// ------------------------------------------------------------------------------
// Control register indexes (byte offset / 4)
// ------------------------------------------------------------------------------
const (
	JAG_FLAGS     = 0
	JAG_MTXC      = 1
	JAG_MTXA      = 2
	JAG_END       = 3
	JAG_PC        = 4
	JAG_CTRL      = 5
	JAG_HIDATA    = 6 // GPU
	JAG_MOD       = 6 // DSP
	JAG_DIVCTRL   = 7
	JAG_MACHI     = 8 // DSP
	JAG_REMAINDER = 9

	JAG_CTRL_REGS = 32
)

// CTRL register bits
const (
	JAG_CTRL_GO       = 0x01
	JAG_CTRL_CPUINT   = 0x02 // interrupt the host CPU
	JAG_CTRL_FORCEINT = 0x04 // software interrupt on line 0
	JAG_CTRL_SINGLE   = 0x18 // single step enable / go
	JAG_CTRL_LATCH0   = 0x40 // line 0 pending; lines 1-4 follow
	JAG_CTRL_LATCH5   = 0x10000
)

// ------------------------------------------------------------------------------
// Address map
// ------------------------------------------------------------------------------
const (
	JAG_ADDR_MASK = 0x00FFFFFF
	JAG_MEM_SIZE  = 0x01000000

	GPU_CTRL_BASE   = 0xF02100
	GPU_RAM_START   = 0xF03000
	GPU_RAM_END     = 0xF03FFF
	GPU_VECTOR_BASE = GPU_RAM_START

	DSP_CTRL_BASE   = 0xF1A100
	DSP_RAM_START   = 0xF1B000
	DSP_RAM_END     = 0xF1CFFF
	DSP_VECTOR_BASE = DSP_RAM_START

	JAG_CTRL_PORT_SIZE = JAG_CTRL_REGS * 4

	// DSP serial DAC
	DSP_LTXD  = 0xF1A148
	DSP_RTXD  = 0xF1A14C
	DSP_SCLK  = 0xF1A150
	DSP_SMODE = 0xF1A154
)

const (
	JAG_VERSION       = 2        // first production silicon
	JAG_CLOCK_HZ      = 26590906 // NTSC system clock
	JAG_DEFAULT_SLICE = 64
	JAG_BRANCH_WAIT   = 3 // wait states charged for a taken branch
	JAG_NO_BANKSWITCH = -1000
	JAG_IRQ_VECTOR    = 0x10
)
