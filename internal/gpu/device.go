package gpu

import (
	"errors"

	"github.com/gogpu/gputypes"
)

// Device errors.
var (
	// ErrSurface is returned when a drawable surface cannot be created for the window.
	ErrSurface = errors.New("gpu: surface creation failed")

	// ErrAdapter is returned when no adapter compatible with the surface is found.
	ErrAdapter = errors.New("gpu: adapter request failed")

	// ErrDevice is returned when the adapter refuses to open a logical device.
	ErrDevice = errors.New("gpu: device request failed")

	// ErrFrameTimeout is returned when the swapchain does not hand out an image in time.
	ErrFrameTimeout = errors.New("gpu: timed out acquiring swapchain frame")

	// ErrSurfaceOutdated is returned when the swapchain no longer matches its
	// surface and must be reconfigured before the next frame.
	ErrSurfaceOutdated = errors.New("gpu: surface outdated")

	// ErrNotConfigured is returned when a frame is requested before the surface is configured.
	ErrNotConfigured = errors.New("gpu: surface not configured")

	// ErrInvalidSize is returned when a surface is configured with a zero dimension.
	ErrInvalidSize = errors.New("gpu: surface size must be non-zero")

	// ErrReleased is returned when a released device is used.
	ErrReleased = errors.New("gpu: device released")

	// ErrBufferUsage is returned when a buffer write targets a buffer without CopyDst usage.
	ErrBufferUsage = errors.New("gpu: buffer lacks CopyDst usage")

	// ErrBufferRange is returned when a write is unaligned or runs past the end of the buffer.
	ErrBufferRange = errors.New("gpu: buffer write out of range or unaligned")

	// ErrForeignResource is returned when a resource created by one backend
	// is handed to another.
	ErrForeignResource = errors.New("gpu: resource belongs to a different backend")
)

// Target is anything that can host a drawable surface.
// window.Window implements it.
type Target interface {
	// NativeHandles returns the platform display and window handles
	// (X11 Display*/Window, Wayland wl_display*/wl_surface*, 0/HWND,
	// 0/CAMetalLayer*).
	NativeHandles() (display, window uintptr)
}

// OpenOptions controls adapter and device selection.
type OpenOptions struct {
	Label           string
	PowerPreference gputypes.PowerPreference
	Debug           bool
}

// Backend opens devices for a target.
type Backend interface {
	Name() string

	// Open creates the surface for target, selects an adapter compatible with
	// it and opens a logical device with its queue.
	Open(target Target, opts OpenOptions) (Device, error)
}

// SurfaceConfig describes the swapchain.
type SurfaceConfig struct {
	Width       uint32
	Height      uint32
	Format      gputypes.TextureFormat
	Usage       gputypes.TextureUsage
	PresentMode gputypes.PresentMode
	AlphaMode   gputypes.CompositeAlphaMode
}

// ShaderSource is one compiled shader stage.
// Backends pick whichever representation their API consumes natively.
type ShaderSource struct {
	Label string
	Stage gputypes.ShaderStage
	WGSL  string
	SPIRV []uint32
}

// RenderPipelineDescriptor describes the single render pipeline.
type RenderPipelineDescriptor struct {
	Label            string
	BindGroupLayouts []BindGroupLayout

	Vertex           ShaderModule
	VertexEntryPoint string
	VertexBuffers    []gputypes.VertexBufferLayout

	Fragment           ShaderModule
	FragmentEntryPoint string
	Targets            []gputypes.ColorTargetState

	Primitive   gputypes.PrimitiveState
	Multisample gputypes.MultisampleState
}

// RenderPassDescriptor describes a single-attachment render pass that clears
// the current swapchain image and stores the result.
type RenderPassDescriptor struct {
	Label      string
	ClearColor gputypes.Color
}

// Native exposes the backend's own objects for gpucontext.DeviceProvider.
type Native struct {
	Adapter any
	Device  any
	Queue   any
}

// Buffer is a GPU buffer.
type Buffer interface {
	Label() string
	Size() uint64
	Usage() gputypes.BufferUsage
	Release()
}

// BindGroupLayout describes the resources of a bind group.
type BindGroupLayout interface{ Release() }

// BindGroup binds resources to shader slots.
type BindGroup interface{ Release() }

// ShaderModule is a compiled shader stage.
type ShaderModule interface{ Release() }

// RenderPipeline is a compiled render pipeline.
type RenderPipeline interface{ Release() }

// Device is a logical GPU device bound to one surface.
//
// A Device is not safe for concurrent use.
type Device interface {
	Info() gputypes.AdapterInfo
	Native() Native

	// ConfigureSurface (re)creates the swapchain.
	ConfigureSurface(cfg SurfaceConfig) error

	// CreateBufferInit creates a buffer holding contents. The allocation is
	// padded to a multiple of four bytes.
	CreateBufferInit(label string, usage gputypes.BufferUsage, contents []byte) (Buffer, error)

	// WriteBuffer schedules a write of data into buf at offset.
	WriteBuffer(buf Buffer, offset uint64, data []byte) error

	// CreateUniformBinding creates a layout with one uniform buffer entry at
	// binding 0 and a bind group referencing buf.
	CreateUniformBinding(label string, visibility gputypes.ShaderStages, buf Buffer) (BindGroupLayout, BindGroup, error)

	CreateShaderModule(src ShaderSource) (ShaderModule, error)
	CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipeline, error)

	// AcquireFrame acquires the next swapchain image.
	AcquireFrame() (Frame, error)

	Release()
}

// Frame is one acquired swapchain image with its command encoder.
type Frame interface {
	BeginRenderPass(desc RenderPassDescriptor) (RenderPass, error)

	// Submit finishes the encoder, submits it to the queue and presents the image.
	Submit() error

	// Discard drops the frame without presenting.
	Discard()
}

// RenderPass records commands against the frame's color target.
type RenderPass interface {
	SetPipeline(p RenderPipeline) error
	SetBindGroup(index uint32, g BindGroup) error
	SetVertexBuffer(slot uint32, b Buffer) error
	SetIndexBuffer(b Buffer, format gputypes.IndexFormat) error
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) error
	End() error
}

// alignedSize rounds n up to the 4-byte copy alignment, with a 4-byte minimum.
func alignedSize(n int) uint64 {
	if n <= 0 {
		return 4
	}
	return uint64(n+3) &^ 3
}

// padded returns data extended with zeros to its aligned size.
func padded(data []byte) []byte {
	size := int(alignedSize(len(data)))
	if size == len(data) {
		return data
	}
	out := make([]byte, size)
	copy(out, data)
	return out
}
