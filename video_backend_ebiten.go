//go:build !headless

// video_backend_ebiten.go - Ebiten register viewer

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
	"image/color"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"
)

const (
	VIEWER_WIDTH  = 640
	VIEWER_HEIGHT = 200
	viewerLineH   = 14
)

// RegisterViewer is a live window onto both cores. P pauses and resumes
// the scheduler, C copies the register dump to the clipboard.
type RegisterViewer struct {
	sys  *JaguarSystem
	done chan struct{}
	once sync.Once

	clipboardOnce sync.Once
	clipboardOK   bool
	notice        string
	noticeFrames  int
}

func NewRegisterViewer(sys *JaguarSystem) *RegisterViewer {
	return &RegisterViewer{sys: sys, done: make(chan struct{})}
}

// Start opens the window on its own goroutine.
func (rv *RegisterViewer) Start() error {
	ebiten.SetWindowSize(VIEWER_WIDTH*2, VIEWER_HEIGHT*2)
	ebiten.SetWindowTitle("Jaguar RISC registers")
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)

	go func() {
		defer rv.once.Do(func() { close(rv.done) })
		if err := ebiten.RunGame(rv); err != nil {
			fmt.Printf("Ebiten error: %v\n", err)
		}
	}()
	return nil
}

// Done is closed when the window is gone.
func (rv *RegisterViewer) Done() <-chan struct{} { return rv.done }

func (rv *RegisterViewer) Update() error {
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		if rv.sys.IsRunning() {
			rv.sys.Stop()
			rv.setNotice("paused")
		} else {
			rv.sys.Start()
			rv.setNotice("running")
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		rv.copyDump()
	}
	if rv.noticeFrames > 0 {
		rv.noticeFrames--
	}
	return nil
}

func (rv *RegisterViewer) setNotice(s string) {
	rv.notice, rv.noticeFrames = s, 90
}

func (rv *RegisterViewer) copyDump() {
	rv.clipboardOnce.Do(func() {
		rv.clipboardOK = clipboard.Init() == nil
	})
	if !rv.clipboardOK {
		rv.setNotice("clipboard unavailable")
		return
	}
	dump := strings.Join(FormatStatus(rv.sys.Status()), "\n") + "\n"
	clipboard.Write(clipboard.FmtText, []byte(dump))
	rv.setNotice("copied")
}

func (rv *RegisterViewer) Draw(screen *ebiten.Image) {
	face := basicfont.Face7x13
	fg := color.RGBA{190, 190, 190, 255}
	head := color.RGBA{100, 200, 255, 255}

	screen.Fill(color.RGBA{16, 16, 24, 255})
	for i, line := range FormatStatus(rv.sys.Status()) {
		c := fg
		if i == 0 || strings.HasPrefix(line, "GPU") || strings.HasPrefix(line, "DSP") {
			c = head
		}
		text.Draw(screen, line, face, 4, viewerLineH*(i+1), c)
	}
	if rv.noticeFrames > 0 {
		text.Draw(screen, rv.notice, face, 4, VIEWER_HEIGHT-4, color.RGBA{0, 220, 90, 255})
	}
}

func (rv *RegisterViewer) Layout(_, _ int) (int, int) {
	return VIEWER_WIDTH, VIEWER_HEIGHT
}
