// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package window

import (
	"fmt"

	"github.com/gogpu/gpucontext"
)

// Event is a platform event delivered by [Window.PollEvents].
//
// The set of concrete types is closed:
//   - [CloseRequested]
//   - [Resized]
//   - [ScaleFactorChanged]
//   - [KeyboardInput]
//   - [ReceivedCharacter]
//   - [CursorMoved]
//   - [CursorEntered]
//   - [MouseInput]
//   - [MouseWheel]
//   - [Focused]
type Event interface {
	isEvent()
}

// ElementState is the state of a key or button.
type ElementState uint8

const (
	// Released means the key or button went up.
	Released ElementState = iota

	// Pressed means the key or button went down.
	Pressed
)

// String returns "Pressed" or "Released".
func (s ElementState) String() string {
	switch s {
	case Pressed:
		return "Pressed"
	case Released:
		return "Released"
	default:
		return fmt.Sprintf("ElementState(%d)", int(s))
	}
}

// CloseRequested is sent when the user asks to close the window.
type CloseRequested struct{}

// Resized is sent when the framebuffer changes size. Width and Height are
// physical pixels.
type Resized struct {
	Width, Height int
}

// ScaleFactorChanged is sent when the window moves to a display with a
// different content scale. Width and Height are the new physical size.
type ScaleFactorChanged struct {
	Scale         float64
	Width, Height int
}

// KeyboardInput is a key press, repeat or release.
type KeyboardInput struct {
	Key      gpucontext.Key
	ScanCode int
	State    ElementState
	Repeat   bool
	Mods     gpucontext.Modifiers
}

// ReceivedCharacter carries one Unicode code point of text input.
type ReceivedCharacter struct {
	Char rune
}

// CursorMoved reports the cursor position in logical points from the
// top-left of the content area.
type CursorMoved struct {
	X, Y float64
}

// CursorEntered reports the cursor entering or leaving the content area.
type CursorEntered struct {
	Entered bool
}

// MouseInput is a mouse button press or release.
type MouseInput struct {
	Button gpucontext.MouseButton
	State  ElementState
	Mods   gpucontext.Modifiers
}

// MouseWheel is a scroll. Positive DY scrolls up.
type MouseWheel struct {
	DX, DY float64
}

// Focused reports a change of keyboard focus.
type Focused struct {
	Focused bool
}

func (CloseRequested) isEvent()     {}
func (Resized) isEvent()            {}
func (ScaleFactorChanged) isEvent() {}
func (KeyboardInput) isEvent()      {}
func (ReceivedCharacter) isEvent()  {}
func (CursorMoved) isEvent()        {}
func (CursorEntered) isEvent()      {}
func (MouseInput) isEvent()         {}
func (MouseWheel) isEvent()         {}
func (Focused) isEvent()            {}

// IsKeyPress reports whether ev is a press (not a release) of key.
// Repeats count as presses.
func IsKeyPress(ev Event, key gpucontext.Key) bool {
	k, ok := ev.(KeyboardInput)
	return ok && k.Key == key && k.State == Pressed
}

// PhysicalSize returns the new physical size carried by a Resized or
// ScaleFactorChanged event.
func PhysicalSize(ev Event) (width, height int, ok bool) {
	switch e := ev.(type) {
	case Resized:
		return e.Width, e.Height, true
	case ScaleFactorChanged:
		return e.Width, e.Height, true
	}
	return 0, 0, false
}
