// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build darwin && !headless

package window

import (
	"github.com/ebitengine/purego/objc"
	"github.com/go-gl/glfw/v3.3/glfw"
)

var (
	selContentView   = objc.RegisterName("contentView")
	selSetWantsLayer = objc.RegisterName("setWantsLayer:")
	selSetLayer      = objc.RegisterName("setLayer:")
	selLayer         = objc.RegisterName("layer")
)

// nativeHandles backs the window's content view with a CAMetalLayer and
// returns the layer. Both Metal and MoltenVK surfaces are created from it.
func nativeHandles(w *glfw.Window) (display, window uintptr) {
	nsWindow := objc.ID(uintptr(w.GetCocoaWindow()))
	view := nsWindow.Send(selContentView)
	layer := objc.ID(objc.GetClass("CAMetalLayer")).Send(selLayer)
	view.Send(selSetWantsLayer, true)
	view.Send(selSetLayer, layer)
	return 0, uintptr(layer)
}
