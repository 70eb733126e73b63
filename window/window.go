// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package window opens the single window grafica renders into and turns
// platform callbacks into a queue of [Event] values.
//
// Two implementations exist. [Open] creates a native window through GLFW
// with no client API, so the GPU layer owns the surface. It is excluded
// with the headless build tag. [NewHeadless] returns a scripted window
// with no platform dependency, used by tests and CI.
//
// Native windows must be used from the main goroutine; this package locks
// it to the main OS thread at init.
package window

import (
	"errors"

	"github.com/gogpu/gpucontext"
)

// ErrUnavailable is returned by Open when the binary was built without a
// native window system.
var ErrUnavailable = errors.New("window: native windows unavailable in this build")

// ErrInit is returned by Open when the window system fails to initialize or
// refuses to create the window.
var ErrInit = errors.New("window: initialization failed")

// Config describes the window to open.
type Config struct {
	Title  string
	Width  int
	Height int
}

// Window is an open window.
//
// Size and ScaleFactor follow [gpucontext.WindowProvider]: Size is in
// logical points, PhysicalSize in framebuffer pixels.
type Window interface {
	gpucontext.WindowProvider

	// PhysicalSize returns the framebuffer size in pixels.
	PhysicalSize() (width, height int)

	// NativeHandles returns the platform handles a GPU surface is created
	// from.
	NativeHandles() (display, window uintptr)

	// PollEvents processes pending platform events and returns them in
	// arrival order. It does not block.
	PollEvents() []Event

	// TakeRedraw reports whether a redraw was requested since the last call
	// and clears the request.
	TakeRedraw() bool

	// Close destroys the window. Further calls are no-ops.
	Close()
}
