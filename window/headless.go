// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package window

// Headless is a window with no platform behind it. Events are scripted with
// Push; each Push is delivered by one PollEvents call.
//
// Resized and ScaleFactorChanged events update the reported size when they
// are delivered, the way a real window does.
type Headless struct {
	width, height int
	scale         float64

	batches  [][]Event
	redraw   bool
	requests int
	closed   bool
}

// NewHeadless returns a headless window with the given physical size and a
// scale factor of 1.
func NewHeadless(width, height int) *Headless {
	return &Headless{width: width, height: height, scale: 1}
}

// Push queues events to be returned together by a future PollEvents call.
func (h *Headless) Push(events ...Event) {
	h.batches = append(h.batches, events)
}

// Pending returns the number of batches not yet delivered.
func (h *Headless) Pending() int { return len(h.batches) }

// PollEvents delivers the oldest pushed batch.
func (h *Headless) PollEvents() []Event {
	if h.closed || len(h.batches) == 0 {
		return nil
	}
	batch := h.batches[0]
	h.batches = h.batches[1:]
	for _, ev := range batch {
		switch e := ev.(type) {
		case Resized:
			h.width, h.height = e.Width, e.Height
		case ScaleFactorChanged:
			if e.Scale > 0 {
				h.scale = e.Scale
			}
			h.width, h.height = e.Width, e.Height
		}
	}
	return batch
}

// Size returns the logical size.
func (h *Headless) Size() (width, height int) {
	return int(float64(h.width) / h.scale), int(float64(h.height) / h.scale)
}

// PhysicalSize returns the framebuffer size.
func (h *Headless) PhysicalSize() (width, height int) { return h.width, h.height }

// ScaleFactor returns the current content scale.
func (h *Headless) ScaleFactor() float64 { return h.scale }

// NativeHandles returns zero handles.
func (h *Headless) NativeHandles() (display, window uintptr) { return 0, 0 }

// RequestRedraw records a redraw request.
func (h *Headless) RequestRedraw() {
	h.redraw = true
	h.requests++
}

// RedrawRequests returns how many times RequestRedraw was called.
func (h *Headless) RedrawRequests() int { return h.requests }

// TakeRedraw reports and clears a pending redraw request.
func (h *Headless) TakeRedraw() bool {
	r := h.redraw
	h.redraw = false
	return r
}

// Close marks the window closed.
func (h *Headless) Close() { h.closed = true }

// Closed reports whether Close was called.
func (h *Headless) Closed() bool { return h.closed }

var _ Window = (*Headless)(nil)
