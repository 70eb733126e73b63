// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows && !headless

package window

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// nativeHandles returns a zero HINSTANCE (the current module is used) and
// the HWND.
func nativeHandles(w *glfw.Window) (display, window uintptr) {
	return 0, uintptr(unsafe.Pointer(w.GetWin32Window()))
}
