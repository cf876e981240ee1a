//go:build headless

// video_backend_headless.go - headless register viewer stub

package main

import "errors"

type RegisterViewer struct {
	done chan struct{}
}

func NewRegisterViewer(sys *JaguarSystem) *RegisterViewer {
	return &RegisterViewer{done: make(chan struct{})}
}

func (rv *RegisterViewer) Start() error {
	return errors.New("register viewer not available in headless builds")
}

func (rv *RegisterViewer) Done() <-chan struct{} { return rv.done }
