package main

import "testing"

func newTestDAC() (*JaguarDAC, *JaguarCPU) {
	dsp := NewJaguarCPU(JaguarDSP, newFlatMemory(), nil)
	return NewJaguarDAC(dsp), dsp
}

func TestJaguarDAC_ResetDefaults(t *testing.T) {
	dac, _ := newTestDAC()
	requireJaguarU32(t, "SCLK", dac.HandleRead(DSP_SCLK), 0xFF)
	if dac.Period() != 64*256 {
		t.Fatalf("Period = %d", dac.Period())
	}
	if dac.SampleRate() != JAG_CLOCK_HZ/(64*256) {
		t.Fatalf("SampleRate = %d", dac.SampleRate())
	}
}

func TestJaguarDAC_FramesAndResample(t *testing.T) {
	dac, _ := newTestDAC()
	dac.HandleWrite(DSP_SCLK, 19, 0xFFFFFFFF)
	dac.SetOutputRate(dac.SampleRate())

	dac.HandleWrite(DSP_LTXD, 0x4000, 0xFFFFFFFF)
	dac.HandleWrite(DSP_RTXD, 0xC000, 0xFFFFFFFF)
	if dac.Backlog() != 1 || dac.Frames() != 1 {
		t.Fatalf("backlog %d frames %d after one frame", dac.Backlog(), dac.Frames())
	}

	l, r := dac.ReadFrame()
	if l != 0.5 || r != -0.5 {
		t.Fatalf("ReadFrame = %v, %v; want 0.5, -0.5", l, r)
	}
	if dac.Backlog() != 0 {
		t.Fatalf("backlog %d after read", dac.Backlog())
	}

	// Underrun repeats the last frame.
	l, r = dac.ReadFrame()
	if l != 0.5 || r != -0.5 {
		t.Fatalf("underrun ReadFrame = %v, %v", l, r)
	}
}

func TestJaguarDAC_RingOverflowDrops(t *testing.T) {
	dac, _ := newTestDAC()
	for range dacRingSize + 3 {
		dac.HandleWrite(DSP_RTXD, 1, 0xFFFFFFFF)
	}
	if dac.Backlog() != dacRingSize {
		t.Fatalf("backlog = %d, want %d", dac.Backlog(), dacRingSize)
	}
	if dac.Dropped() != 3 {
		t.Fatalf("dropped = %d, want 3", dac.Dropped())
	}
}

func TestJaguarDAC_ClockRaisesLineOne(t *testing.T) {
	dac, dsp := newTestDAC()
	dac.HandleWrite(DSP_SCLK, 0, 0xFFFFFFFF)

	dac.Clock(1000)
	if dsp.Ctrl(JAG_CTRL) != 0 {
		t.Fatal("DAC clocked with the serial clock disabled")
	}

	dac.HandleWrite(DSP_SMODE, DAC_SMODE_INTERNAL, 0xFFFFFFFF)
	dac.Clock(dac.Period() - 1)
	if dsp.Ctrl(JAG_CTRL)&(JAG_CTRL_LATCH0<<DAC_IRQ_LINE) != 0 {
		t.Fatal("line 1 raised before the frame period elapsed")
	}
	dac.Clock(1)
	if dsp.Ctrl(JAG_CTRL)&(JAG_CTRL_LATCH0<<DAC_IRQ_LINE) == 0 {
		t.Fatal("line 1 not raised at the frame boundary")
	}
}

func TestJaguarDAC_MappedOnSystemBus(t *testing.T) {
	sys := NewJaguarSystem()
	bus := sys.Bus()

	bus.Write32(DSP_SCLK, 7)
	requireJaguarU32(t, "SCLK", bus.Read32(DSP_SCLK), 7)

	bus.Write16(DSP_LTXD+2, 0x1234)
	requireJaguarU32(t, "LTXD", sys.DAC().HandleRead(DSP_LTXD), 0x1234)

	// The rest of the DSP control window still reaches the core.
	bus.Write32(DSP_CTRL_BASE+JAG_MTXA*4, 0xF1B100)
	requireJaguarU32(t, "DSP MTXA", sys.DSP.Ctrl(JAG_MTXA), 0xF1B100)
}
