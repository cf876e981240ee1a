// jaguar_dac.go - DSP serial DAC

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
	"sync/atomic"
)

/*
jaguar_dac.go - DSP serial (I2S) DAC

The DSP feeds the DAC through two 16-bit transmit registers. A write to
RTXD commits the current left/right pair as one frame. With the internal
serial clock enabled in SMODE the DAC raises DSP interrupt line 1 once per
frame period, 64*(SCLK+1) system clocks, and the handler refills LTXD and
RTXD.

Frames cross from the scheduler goroutine to the audio callback through a
single-producer single-consumer ring. The producer drops frames when the
ring is full; the consumer repeats the last frame when it is empty.
*/

const (
	dacRingSize = 4096
	dacRingMask = dacRingSize - 1

	DAC_SMODE_INTERNAL  = 0x01 // serial clock driven from SCLK divider
	DAC_SMODE_MODE      = 0x02
	DAC_SMODE_WSEN      = 0x04
	DAC_SMODE_RISING    = 0x08
	DAC_SMODE_FALLING   = 0x10
	DAC_SMODE_EVERYWORD = 0x20

	DAC_IRQ_LINE = 1
)

type JaguarDAC struct {
	dsp *JaguarCPU

	ltxd  uint32
	rtxd  uint32
	sclk  atomic.Uint32
	smode uint32

	counter int

	ring [dacRingSize]uint32
	head atomic.Uint32 // consumer
	tail atomic.Uint32 // producer

	dropped atomic.Uint64
	frames  atomic.Uint64

	// Consumer side
	outRate int
	phase   float64
	last    uint32
}

func NewJaguarDAC(dsp *JaguarCPU) *JaguarDAC {
	d := &JaguarDAC{dsp: dsp, outRate: 48000}
	d.Reset()
	return d
}

func (d *JaguarDAC) Reset() {
	d.ltxd, d.rtxd, d.smode = 0, 0, 0
	d.sclk.Store(0xFF)
	d.counter = 0
	d.head.Store(0)
	d.tail.Store(0)
	d.dropped.Store(0)
	d.frames.Store(0)
	d.phase, d.last = 0, 0
}

// HandleRead serves long-word reads of the DAC registers.
func (d *JaguarDAC) HandleRead(addr uint32) uint32 {
	switch addr {
	case DSP_LTXD:
		return d.ltxd
	case DSP_RTXD:
		return d.rtxd
	case DSP_SCLK:
		return d.sclk.Load()
	case DSP_SMODE:
		return d.smode
	}
	return 0
}

// HandleWrite merges the lanes selected by mask into the addressed register.
func (d *JaguarDAC) HandleWrite(addr uint32, value uint32, mask uint32) {
	merge := func(old uint32) uint32 { return (old &^ mask) | (value & mask) }
	switch addr {
	case DSP_LTXD:
		d.ltxd = merge(d.ltxd) & 0xFFFF
	case DSP_RTXD:
		d.rtxd = merge(d.rtxd) & 0xFFFF
		d.push(d.ltxd<<16 | d.rtxd)
	case DSP_SCLK:
		d.sclk.Store(merge(d.sclk.Load()) & 0xFF)
	case DSP_SMODE:
		d.smode = merge(d.smode) & 0x3F
		if d.smode&DAC_SMODE_INTERNAL == 0 {
			d.counter = 0
		}
	}
}

func (d *JaguarDAC) push(frame uint32) {
	tail := d.tail.Load()
	if tail-d.head.Load() >= dacRingSize {
		d.dropped.Add(1)
		return
	}
	d.ring[tail&dacRingMask] = frame
	d.tail.Store(tail + 1)
	d.frames.Add(1)
}

// Period returns the frame period in system clocks.
func (d *JaguarDAC) Period() int {
	return 64 * (int(d.sclk.Load()) + 1)
}

// SampleRate returns the frame rate implied by the current divider.
func (d *JaguarDAC) SampleRate() int {
	return JAG_CLOCK_HZ / d.Period()
}

// Clock advances the serial clock by cycles system clocks and raises the
// DSP transmit interrupt when a frame boundary is crossed.
func (d *JaguarDAC) Clock(cycles int) {
	if d.smode&DAC_SMODE_INTERNAL == 0 {
		return
	}
	d.counter += cycles
	period := d.Period()
	if d.counter < period {
		return
	}
	d.counter %= period
	d.dsp.SetInputLine(DAC_IRQ_LINE, true)
}

// Backlog is the number of frames waiting for the audio callback.
func (d *JaguarDAC) Backlog() int {
	return int(d.tail.Load() - d.head.Load())
}

func (d *JaguarDAC) Dropped() uint64 { return d.dropped.Load() }
func (d *JaguarDAC) Frames() uint64  { return d.frames.Load() }

// SetOutputRate sets the rate ReadFrame is called at. Consumer side only.
func (d *JaguarDAC) SetOutputRate(rate int) {
	if rate > 0 {
		d.outRate = rate
	}
}

// ReadFrame returns the next output frame, stepping through the ring at
// the DAC rate relative to the output rate. Consumer side only.
func (d *JaguarDAC) ReadFrame() (left, right float32) {
	d.phase += float64(d.SampleRate()) / float64(d.outRate)
	for d.phase >= 1 {
		d.phase--
		head := d.head.Load()
		if head == d.tail.Load() {
			d.phase = 0
			break
		}
		d.last = d.ring[head&dacRingMask]
		d.head.Store(head + 1)
	}
	return float32(int16(d.last>>16)) / 32768, float32(int16(d.last)) / 32768
}
