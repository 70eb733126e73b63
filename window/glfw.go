// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !headless

package window

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// GLFW must be driven from the main thread.
func init() {
	runtime.LockOSThread()
}

// glfwWindow is a native window without a client API. Callbacks append to
// events; PollEvents pumps GLFW and hands the queue over.
type glfwWindow struct {
	win    *glfw.Window
	events []Event
	redraw bool
	closed bool
}

// Open initializes GLFW and creates a resizable window with no client API.
func Open(cfg Config) (Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ScaleToMonitor, glfw.True)

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("%w: create window: %w", ErrInit, err)
	}

	w := &glfwWindow{win: win}
	w.installCallbacks()
	return w, nil
}

func (w *glfwWindow) push(ev Event) { w.events = append(w.events, ev) }

func (w *glfwWindow) installCallbacks() {
	w.win.SetCloseCallback(func(*glfw.Window) {
		// The driver decides whether to close; keep GLFW from doing it alone.
		w.win.SetShouldClose(false)
		w.push(CloseRequested{})
	})
	w.win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.push(Resized{Width: width, Height: height})
	})
	w.win.SetContentScaleCallback(func(_ *glfw.Window, x, _ float32) {
		width, height := w.win.GetFramebufferSize()
		w.push(ScaleFactorChanged{Scale: float64(x), Width: width, Height: height})
	})
	w.win.SetRefreshCallback(func(*glfw.Window) {
		w.redraw = true
	})
	w.win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		state := Released
		if action != glfw.Release {
			state = Pressed
		}
		w.push(KeyboardInput{
			Key:      mapKey(key),
			ScanCode: scancode,
			State:    state,
			Repeat:   action == glfw.Repeat,
			Mods:     mapMods(mods),
		})
	})
	w.win.SetCharCallback(func(_ *glfw.Window, char rune) {
		w.push(ReceivedCharacter{Char: char})
	})
	w.win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		w.push(CursorMoved{X: x, Y: y})
	})
	w.win.SetCursorEnterCallback(func(_ *glfw.Window, entered bool) {
		w.push(CursorEntered{Entered: entered})
	})
	w.win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		b, ok := mapMouseButton(button)
		if !ok {
			return
		}
		state := Released
		if action == glfw.Press {
			state = Pressed
		}
		w.push(MouseInput{Button: b, State: state, Mods: mapMods(mods)})
	})
	w.win.SetScrollCallback(func(_ *glfw.Window, dx, dy float64) {
		w.push(MouseWheel{DX: dx, DY: dy})
	})
	w.win.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		w.push(Focused{Focused: focused})
	})
}

func (w *glfwWindow) PollEvents() []Event {
	if w.closed {
		return nil
	}
	glfw.PollEvents()
	events := w.events
	w.events = nil
	return events
}

func (w *glfwWindow) Size() (width, height int) {
	return w.win.GetSize()
}

func (w *glfwWindow) PhysicalSize() (width, height int) {
	return w.win.GetFramebufferSize()
}

func (w *glfwWindow) ScaleFactor() float64 {
	x, _ := w.win.GetContentScale()
	if x <= 0 {
		return 1
	}
	return float64(x)
}

func (w *glfwWindow) RequestRedraw() { w.redraw = true }

func (w *glfwWindow) TakeRedraw() bool {
	r := w.redraw
	w.redraw = false
	return r
}

func (w *glfwWindow) NativeHandles() (display, window uintptr) {
	return nativeHandles(w.win)
}

func (w *glfwWindow) Close() {
	if w.closed {
		return
	}
	w.closed = true
	w.win.Destroy()
	glfw.Terminate()
}
