package gpu

import (
	"errors"
	"fmt"
)

// Render pass errors.
var (
	// ErrPassEnded is returned when operations are called on an ended pass.
	ErrPassEnded = errors.New("gpu: render pass has already ended")

	// ErrNilPipeline is returned when SetPipeline is called with nil.
	ErrNilPipeline = errors.New("gpu: pipeline is nil")

	// ErrNilBindGroup is returned when SetBindGroup is called with nil.
	ErrNilBindGroup = errors.New("gpu: bind group is nil")

	// ErrBindGroupIndexOutOfRange is returned when bind group index exceeds maximum.
	ErrBindGroupIndexOutOfRange = errors.New("gpu: bind group index exceeds maximum (3)")

	// ErrNilVertexBuffer is returned when SetVertexBuffer is called with nil.
	ErrNilVertexBuffer = errors.New("gpu: vertex buffer is nil")

	// ErrNilIndexBuffer is returned when SetIndexBuffer is called with nil.
	ErrNilIndexBuffer = errors.New("gpu: index buffer is nil")

	// ErrDrawMissingPipeline is returned when a draw is issued before SetPipeline.
	ErrDrawMissingPipeline = errors.New("gpu: draw called without SetPipeline")

	// ErrDrawMissingIndexBuffer is returned when DrawIndexed is issued before SetIndexBuffer.
	ErrDrawMissingIndexBuffer = errors.New("gpu: DrawIndexed called without SetIndexBuffer")
)

// maxBindGroups is the WebGPU default limit on bind group slots.
const maxBindGroups = 4

// RenderPassState represents the state of a render pass.
type RenderPassState int

const (
	// RenderPassStateRecording means the pass is actively recording commands.
	RenderPassStateRecording RenderPassState = iota

	// RenderPassStateEnded means the pass has been ended.
	RenderPassStateEnded
)

// String returns the string representation of RenderPassState.
func (s RenderPassState) String() string {
	switch s {
	case RenderPassStateRecording:
		return "Recording"
	case RenderPassStateEnded:
		return "Ended"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// passTracker validates command order for a render pass.
// Both backends embed it so misuse fails the same way everywhere.
//
// State Machine:
//
//	Recording -> end() -> Ended
type passTracker struct {
	state          RenderPassState
	hasPipeline    bool
	hasIndexBuffer bool
}

// State returns the current pass state.
func (p *passTracker) State() RenderPassState { return p.state }

func (p *passTracker) checkRecording() error {
	if p.state != RenderPassStateRecording {
		return ErrPassEnded
	}
	return nil
}

func (p *passTracker) setPipeline(pipeline RenderPipeline) error {
	if err := p.checkRecording(); err != nil {
		return err
	}
	if pipeline == nil {
		return ErrNilPipeline
	}
	p.hasPipeline = true
	return nil
}

func (p *passTracker) setBindGroup(index uint32, group BindGroup) error {
	if err := p.checkRecording(); err != nil {
		return err
	}
	if group == nil {
		return ErrNilBindGroup
	}
	if index >= maxBindGroups {
		return ErrBindGroupIndexOutOfRange
	}
	return nil
}

func (p *passTracker) setVertexBuffer(buf Buffer) error {
	if err := p.checkRecording(); err != nil {
		return err
	}
	if buf == nil {
		return ErrNilVertexBuffer
	}
	return nil
}

func (p *passTracker) setIndexBuffer(buf Buffer) error {
	if err := p.checkRecording(); err != nil {
		return err
	}
	if buf == nil {
		return ErrNilIndexBuffer
	}
	p.hasIndexBuffer = true
	return nil
}

func (p *passTracker) drawIndexed() error {
	if err := p.checkRecording(); err != nil {
		return err
	}
	if !p.hasPipeline {
		return ErrDrawMissingPipeline
	}
	if !p.hasIndexBuffer {
		return ErrDrawMissingIndexBuffer
	}
	return nil
}

func (p *passTracker) end() error {
	if err := p.checkRecording(); err != nil {
		return err
	}
	p.state = RenderPassStateEnded
	return nil
}
