// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build (linux || freebsd || netbsd || openbsd) && wayland && !headless

package window

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// nativeHandles returns the wl_display* and wl_surface*.
func nativeHandles(w *glfw.Window) (display, window uintptr) {
	return uintptr(unsafe.Pointer(glfw.GetWaylandDisplay())), uintptr(unsafe.Pointer(w.GetWaylandWindow()))
}
