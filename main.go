// main.go - Main entry point for the Jaguar RISC interpreter

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
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
)

func boilerPlate() {
	fmt.Println("\n\033[38;2;255;20;147m ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████\033[0m\n\033[38;2;255;50;147m▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀\033[0m\n\033[38;2;255;80;147m▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███\033[0m\n\033[38;2;255;110;147m░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄\033[0m\n\033[38;2;255;140;147m░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒\033[0m\n\033[38;2;255;170;147m░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░\033[0m\n\033[38;2;255;200;147m ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░\033[0m\n\033[38;2;255;230;147m ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░\033[0m\n\033[38;2;255;255;147m ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░\033[0m")
	fmt.Println("\nJaguar GPU/DSP RISC interpreter and machine monitor.")
	fmt.Println("(c) 2024 - 2026 Zayn Otley")
	fmt.Println("https://github.com/IntuitionAmiga/JaguarRISC")
	fmt.Println("License: GPLv3 or later")
}

func parseAddrFlag(name, s string, def uint32) (uint32, error) {
	if s == "" {
		return def, nil
	}
	v, ok := ParseAddress(s)
	if !ok || v > JAG_ADDR_MASK {
		return 0, fmt.Errorf("invalid -%s value %q", name, s)
	}
	return uint32(v), nil
}

// parseBatchJobs turns "[gpu:|dsp:]path" arguments into jobs. Images load
// at the start of the selected core's local RAM unless -load-addr is set.
func parseBatchJobs(args []string, loadAddr, entry string, cycles int) ([]BatchJob, error) {
	jobs := make([]BatchJob, 0, len(args))
	for _, arg := range args {
		variant, path := JaguarGPU, arg
		if rest, ok := strings.CutPrefix(arg, "dsp:"); ok {
			variant, path = JaguarDSP, rest
		} else if rest, ok := strings.CutPrefix(arg, "gpu:"); ok {
			path = rest
		}
		base := uint32(GPU_RAM_START)
		if variant == JaguarDSP {
			base = DSP_RAM_START
		}
		la, err := parseAddrFlag("load-addr", loadAddr, base)
		if err != nil {
			return nil, err
		}
		ea, err := parseAddrFlag("entry", entry, la)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, BatchJob{Name: arg, Path: path, Variant: variant, LoadAddr: la, Entry: ea, Cycles: cycles})
	}
	return jobs, nil
}

func bootFile(sys *JaguarSystem, v JaguarVariant, path string, loadAddr, entry uint32) error {
	image, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("loading %s image: %w", v, err)
	}
	if err := sys.Boot(v, image, loadAddr, entry); err != nil {
		return err
	}
	fmt.Printf("%s: loaded %d bytes at $%06X, entry $%06X\n", v, len(image), loadAddr, entry)
	return nil
}

func main() {
	var (
		gpuFile, dspFile    string
		loadAddr, entryAddr string
		scriptFile          string
		snapshotFile        string
		cycles, slice       int
		batchLimit          int
		monitorMode         bool
		audioOn, guiOn      bool
		batchMode, dumpRegs bool
		quiet               bool
	)

	flagSet := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&gpuFile, "gpu", "", "GPU program image")
	flagSet.StringVar(&dspFile, "dsp", "", "DSP program image")
	flagSet.StringVar(&loadAddr, "load-addr", "", "load address of the first image (default: core local RAM)")
	flagSet.StringVar(&entryAddr, "entry", "", "entry address of the first image (default: load address)")
	flagSet.IntVar(&cycles, "cycles", 0, "cycle budget, 0 runs until both cores halt")
	flagSet.IntVar(&slice, "slice", JAG_DEFAULT_SLICE, "per-core time slice in cycles")
	flagSet.BoolVar(&monitorMode, "monitor", false, "start in the machine monitor")
	flagSet.StringVar(&scriptFile, "script", "", "Lua script to run before execution")
	flagSet.BoolVar(&audioOn, "audio", false, "play the DSP DAC output")
	flagSet.BoolVar(&guiOn, "gui", false, "open the register viewer window")
	flagSet.StringVar(&snapshotFile, "snapshot", "", "restore a monitor snapshot before running")
	flagSet.BoolVar(&batchMode, "batch", false, "run each argument ([gpu:|dsp:]image) on a fresh machine")
	flagSet.IntVar(&batchLimit, "jobs", runtime.NumCPU(), "concurrent batch jobs")
	flagSet.BoolVar(&dumpRegs, "dump", false, "print both register files on exit")
	flagSet.BoolVar(&quiet, "q", false, "suppress the banner")

	flagSet.Usage = func() {
		flagSet.SetOutput(os.Stdout)
		fmt.Println("Usage: ./jaguar_risc [-gpu file] [-dsp file] [--load-addr 0xF03000] [--entry 0xF03000] [-monitor] [-script file.lua]")
		fmt.Println("       ./jaguar_risc -batch [gpu:|dsp:]image ...")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if !quiet {
		boilerPlate()
	}

	if batchMode {
		if flagSet.NArg() == 0 {
			fmt.Println("Error: -batch needs at least one image")
			os.Exit(1)
		}
		budget := cycles
		if budget <= 0 {
			budget = JAG_CLOCK_HZ
		}
		jobs, err := parseBatchJobs(flagSet.Args(), loadAddr, entryAddr, budget)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		results, err := RunBatch(ctx, jobs, batchLimit)
		cancel()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if err := WriteBatchReport(os.Stdout, results); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if gpuFile == "" && dspFile == "" && snapshotFile == "" && !monitorMode {
		flagSet.Usage()
		os.Exit(1)
	}

	sys := NewJaguarSystem()
	sys.SetSlice(slice)
	sys.OnHostInterrupt = func(cpu *JaguarCPU) {
		if !monitorMode {
			fmt.Printf("%s: host interrupt at $%06X\n", cpu.Name(), cpu.PC())
		}
	}

	// The address flags apply to the first image given.
	first := true
	for _, img := range []struct {
		v    JaguarVariant
		path string
		base uint32
	}{{JaguarGPU, gpuFile, GPU_RAM_START}, {JaguarDSP, dspFile, DSP_RAM_START}} {
		if img.path == "" {
			continue
		}
		la, ea := img.base, img.base
		if first {
			var err error
			if la, err = parseAddrFlag("load-addr", loadAddr, img.base); err == nil {
				ea, err = parseAddrFlag("entry", entryAddr, la)
			}
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			first = false
		}
		if err := bootFile(sys, img.v, img.path, la, ea); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}

	gpuDbg, dspDbg := NewDebugJaguarPair(sys)

	if snapshotFile != "" {
		snap, err := LoadSnapshotFromFile(snapshotFile)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		target := gpuDbg
		if snap.Variant == JaguarDSP {
			target = dspDbg
		}
		if err := target.Restore(snap); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Restored %s snapshot from %s\n", snap.Variant, snapshotFile)
	}

	if audioOn {
		player, err := NewOtoPlayer(AUDIO_OUTPUT_RATE)
		if err != nil {
			fmt.Printf("Audio disabled: %v\n", err)
		} else {
			player.SetupPlayer(sys.DAC(), AUDIO_OUTPUT_RATE)
			player.Start()
			defer player.Close()
			sys.SetThrottle(AUDIO_BACKEND_LIVE)
		}
	}

	monitor := NewMachineMonitor(sys)
	monitor.RegisterCPU("GPU", gpuDbg, sys.GPU)
	monitor.RegisterCPU("DSP", dspDbg, sys.DSP)
	luaHost := NewLuaHost(sys, gpuDbg, dspDbg, os.Stdout)
	defer luaHost.Close()

	if scriptFile != "" {
		if err := luaHost.RunFile(scriptFile); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}
	luaHost.SetOutput(monitor)
	monitor.AttachLua(luaHost)

	var viewer *RegisterViewer
	if guiOn {
		viewer = NewRegisterViewer(sys)
		if err := viewer.Start(); err != nil {
			fmt.Printf("Viewer disabled: %v\n", err)
			viewer = nil
		}
	}

	switch {
	case monitorMode:
		if err := NewMonitorConsole(monitor, sys).Run(); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	case cycles > 0:
		n, _ := sys.RunCycles(cycles)
		sys.publishStatus()
		fmt.Printf("Ran %d cycles\n", n)
	default:
		sys.Start()
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt)
		finished := make(chan struct{})
		go func() {
			sys.Wait()
			close(finished)
		}()
		var closed <-chan struct{}
		if viewer != nil {
			closed = viewer.Done()
		}
		select {
		case <-finished:
		case <-sigCh:
		case <-closed:
		}
		signal.Stop(sigCh)
		sys.Stop()
		if viewer != nil {
			// Keep the window up until the user closes it.
			select {
			case <-viewer.Done():
			case <-sigCh:
			}
		}
	}

	if dumpRegs {
		for _, line := range FormatStatus(sys.Status()) {
			fmt.Println(line)
		}
	}
}
