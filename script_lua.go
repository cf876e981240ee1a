// script_lua.go - Lua scripting host

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
	"io"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

/*
script_lua.go - Lua scripting host

Scripts drive a frozen JaguarSystem: they can peek and poke the bus (device
registers included), read and write registers of either core, pulse
interrupt lines, poke the control port and run the scheduler for a number
of cycles.

	peek8/16/32(addr)        poke8/16/32(addr, value)
	reg(cpu, name)           setreg(cpu, name, value)
	run(cycles)              returns cycles elapsed
	irq(cpu, line[, state])  ctrl(cpu, idx[, value])
	halted(cpu)              cycles()
	print(...)

cpu is "gpu" or "dsp".
*/

type LuaHost struct {
	L    *lua.LState
	sys  *JaguarSystem
	cpus map[string]*DebugJaguar
	out  io.Writer
}

// NewLuaHost creates a Lua state bound to sys. print output goes to out.
func NewLuaHost(sys *JaguarSystem, gpu, dsp *DebugJaguar, out io.Writer) *LuaHost {
	h := &LuaHost{
		L:    lua.NewState(),
		sys:  sys,
		cpus: map[string]*DebugJaguar{"gpu": gpu, "dsp": dsp},
		out:  out,
	}
	h.register()
	return h
}

func (h *LuaHost) Close() { h.L.Close() }

// SetOutput redirects print.
func (h *LuaHost) SetOutput(out io.Writer) { h.out = out }

func (h *LuaHost) RunFile(path string) error {
	if err := h.L.DoFile(path); err != nil {
		return fmt.Errorf("lua %s: %w", path, err)
	}
	return nil
}

func (h *LuaHost) RunString(src string) error {
	if err := h.L.DoString(src); err != nil {
		return fmt.Errorf("lua: %w", err)
	}
	return nil
}

func (h *LuaHost) register() {
	bus := h.sys.Bus()
	fns := map[string]lua.LGFunction{
		"peek8": func(L *lua.LState) int {
			L.Push(lua.LNumber(bus.Read8(checkU32(L, 1))))
			return 1
		},
		"peek16": func(L *lua.LState) int {
			L.Push(lua.LNumber(bus.Read16(checkU32(L, 1))))
			return 1
		},
		"peek32": func(L *lua.LState) int {
			L.Push(lua.LNumber(bus.Read32(checkU32(L, 1))))
			return 1
		},
		"poke8": func(L *lua.LState) int {
			bus.Write8(checkU32(L, 1), uint8(checkU32(L, 2)))
			return 0
		},
		"poke16": func(L *lua.LState) int {
			bus.Write16(checkU32(L, 1), uint16(checkU32(L, 2)))
			return 0
		},
		"poke32": func(L *lua.LState) int {
			bus.Write32(checkU32(L, 1), checkU32(L, 2))
			return 0
		},
		"reg":    h.luaReg,
		"setreg": h.luaSetReg,
		"run": func(L *lua.LState) int {
			n := L.CheckInt(1)
			elapsed, _ := h.sys.RunCycles(n)
			h.sys.publishStatus()
			L.Push(lua.LNumber(elapsed))
			return 1
		},
		"irq": func(L *lua.LState) int {
			d := h.checkCPU(L, 1)
			line := L.CheckInt(2)
			if line < 0 || line >= d.cpu.info.irqLines {
				L.ArgError(2, "no such interrupt line")
				return 0
			}
			d.cpu.SetInputLine(line, L.OptBool(3, true))
			return 0
		},
		"ctrl": func(L *lua.LState) int {
			d := h.checkCPU(L, 1)
			idx := L.CheckInt(2)
			if idx < 0 || idx >= JAG_CTRL_REGS {
				L.ArgError(2, "control index out of range")
				return 0
			}
			if L.GetTop() >= 3 {
				d.cpu.CtrlWrite(uint32(idx), checkU32(L, 3), 0xFFFFFFFF)
			}
			L.Push(lua.LNumber(d.cpu.CtrlRead(uint32(idx))))
			return 1
		},
		"halted": func(L *lua.LState) int {
			L.Push(lua.LBool(h.checkCPU(L, 1).cpu.Halted()))
			return 1
		},
		"cycles": func(L *lua.LState) int {
			L.Push(lua.LNumber(h.sys.Cycles()))
			return 1
		},
		"print": h.luaPrint,
	}
	for name, fn := range fns {
		h.L.SetGlobal(name, h.L.NewFunction(fn))
	}
}

func (h *LuaHost) checkCPU(L *lua.LState, n int) *DebugJaguar {
	name := strings.ToLower(L.CheckString(n))
	d, ok := h.cpus[name]
	if !ok {
		L.ArgError(n, "cpu must be \"gpu\" or \"dsp\"")
	}
	return d
}

func (h *LuaHost) luaReg(L *lua.LState) int {
	d := h.checkCPU(L, 1)
	v, ok := d.GetRegister(L.CheckString(2))
	if !ok {
		L.ArgError(2, "unknown register")
		return 0
	}
	L.Push(lua.LNumber(v))
	return 1
}

func (h *LuaHost) luaSetReg(L *lua.LState) int {
	d := h.checkCPU(L, 1)
	if !d.SetRegister(L.CheckString(2), uint64(checkU32(L, 3))) {
		L.ArgError(2, "unknown register")
	}
	return 0
}

func (h *LuaHost) luaPrint(L *lua.LState) int {
	parts := make([]string, L.GetTop())
	for i := range parts {
		parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}
	if h.out != nil {
		fmt.Fprintln(h.out, strings.Join(parts, "\t"))
	}
	return 0
}

// checkU32 reads a numeric argument as a 32-bit pattern; negative values wrap.
func checkU32(L *lua.LState, n int) uint32 {
	return uint32(int64(L.CheckNumber(n)))
}
