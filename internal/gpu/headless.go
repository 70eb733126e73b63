package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

func init() {
	Register(BackendHeadless, func() Backend { return headlessBackend{} })
}

type headlessBackend struct{}

func (headlessBackend) Name() string { return BackendHeadless }

func (headlessBackend) Open(_ Target, opts OpenOptions) (Device, error) {
	slogger().Debug("gpu: headless device opened", "label", opts.Label)
	return NewHeadlessDevice(opts.Label), nil
}

// HeadlessDevice is a Device that records everything it is asked to do.
// Frames are always acquired successfully unless a failure was queued with
// FailAcquire.
type HeadlessDevice struct {
	label    string
	released bool

	surface    *SurfaceConfig
	configures []SurfaceConfig

	buffers    []*HeadlessBuffer
	writes     []BufferWrite
	bindGroups []*HeadlessBindGroup
	shaders    []*HeadlessShader
	pipelines  []*HeadlessPipeline
	frames     []*HeadlessFrame

	acquireErrs []error
}

// BufferWrite is one recorded WriteBuffer call.
type BufferWrite struct {
	Buffer *HeadlessBuffer
	Offset uint64
	Data   []byte
}

// NewHeadlessDevice returns an empty recording device.
func NewHeadlessDevice(label string) *HeadlessDevice {
	return &HeadlessDevice{label: label}
}

// Info reports a CPU adapter.
func (d *HeadlessDevice) Info() gputypes.AdapterInfo {
	return gputypes.AdapterInfo{
		Name:       "grafica headless",
		Vendor:     "grafica",
		DeviceType: gputypes.DeviceTypeCPU,
		Driver:     BackendHeadless,
		Backend:    gputypes.BackendEmpty,
	}
}

// Native returns the device itself in every slot.
func (d *HeadlessDevice) Native() Native {
	return Native{Adapter: d, Device: d, Queue: d}
}

// ConfigureSurface records cfg as the active swapchain configuration.
func (d *HeadlessDevice) ConfigureSurface(cfg SurfaceConfig) error {
	if d.released {
		return ErrReleased
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, cfg.Width, cfg.Height)
	}
	c := cfg
	d.surface = &c
	d.configures = append(d.configures, cfg)
	return nil
}

// Surface returns the active swapchain configuration, or false if none.
func (d *HeadlessDevice) Surface() (SurfaceConfig, bool) {
	if d.surface == nil {
		return SurfaceConfig{}, false
	}
	return *d.surface, true
}

// Configures returns every configuration applied so far.
func (d *HeadlessDevice) Configures() []SurfaceConfig { return d.configures }

// CreateBufferInit records a new buffer holding contents.
func (d *HeadlessDevice) CreateBufferInit(label string, usage gputypes.BufferUsage, contents []byte) (Buffer, error) {
	if d.released {
		return nil, ErrReleased
	}
	b := &HeadlessBuffer{
		label:    label,
		usage:    usage,
		size:     alignedSize(len(contents)),
		contents: append([]byte(nil), contents...),
	}
	d.buffers = append(d.buffers, b)
	return b, nil
}

// Buffers returns every buffer created so far, including released ones.
func (d *HeadlessDevice) Buffers() []*HeadlessBuffer { return d.buffers }

// WriteBuffer applies data to buf with the same rules as a real queue write.
func (d *HeadlessDevice) WriteBuffer(buf Buffer, offset uint64, data []byte) error {
	if d.released {
		return ErrReleased
	}
	b, ok := buf.(*HeadlessBuffer)
	if !ok {
		return ErrForeignResource
	}
	if b.usage&gputypes.BufferUsageCopyDst == 0 {
		return fmt.Errorf("%w: %q", ErrBufferUsage, b.label)
	}
	n := uint64(len(data))
	if offset%4 != 0 || n%4 != 0 || offset+n > b.size {
		return fmt.Errorf("%w: offset %d size %d buffer %d", ErrBufferRange, offset, n, b.size)
	}
	if end := int(offset + n); end > len(b.contents) {
		b.contents = append(b.contents, make([]byte, end-len(b.contents))...)
	}
	copy(b.contents[offset:], data)
	d.writes = append(d.writes, BufferWrite{Buffer: b, Offset: offset, Data: append([]byte(nil), data...)})
	return nil
}

// Writes returns every recorded buffer write.
func (d *HeadlessDevice) Writes() []BufferWrite { return d.writes }

// CreateUniformBinding records a binding of buf at slot 0.
func (d *HeadlessDevice) CreateUniformBinding(label string, visibility gputypes.ShaderStages, buf Buffer) (BindGroupLayout, BindGroup, error) {
	if d.released {
		return nil, nil, ErrReleased
	}
	b, ok := buf.(*HeadlessBuffer)
	if !ok {
		return nil, nil, ErrForeignResource
	}
	layout := &HeadlessBindGroupLayout{Entries: []gputypes.BindGroupLayoutEntry{uniformLayoutEntry(visibility)}}
	group := &HeadlessBindGroup{Label: label, Layout: layout, Binding: 0, Buffer: b}
	d.bindGroups = append(d.bindGroups, group)
	return layout, group, nil
}

// CreateShaderModule records src.
func (d *HeadlessDevice) CreateShaderModule(src ShaderSource) (ShaderModule, error) {
	if d.released {
		return nil, ErrReleased
	}
	if src.WGSL == "" && len(src.SPIRV) == 0 {
		return nil, fmt.Errorf("gpu: shader module %q has no source", src.Label)
	}
	s := &HeadlessShader{Source: src}
	d.shaders = append(d.shaders, s)
	return s, nil
}

// Shaders returns every shader module created so far.
func (d *HeadlessDevice) Shaders() []*HeadlessShader { return d.shaders }

// CreateRenderPipeline records desc.
func (d *HeadlessDevice) CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipeline, error) {
	if d.released {
		return nil, ErrReleased
	}
	if desc == nil || desc.Vertex == nil || desc.Fragment == nil {
		return nil, fmt.Errorf("gpu: render pipeline needs vertex and fragment modules")
	}
	p := &HeadlessPipeline{Desc: *desc}
	d.pipelines = append(d.pipelines, p)
	return p, nil
}

// Pipelines returns every pipeline created so far.
func (d *HeadlessDevice) Pipelines() []*HeadlessPipeline { return d.pipelines }

// FailAcquire queues err to be returned by the next AcquireFrame call.
func (d *HeadlessDevice) FailAcquire(err error) {
	d.acquireErrs = append(d.acquireErrs, err)
}

// AcquireFrame starts a new recorded frame.
func (d *HeadlessDevice) AcquireFrame() (Frame, error) {
	if d.released {
		return nil, ErrReleased
	}
	if len(d.acquireErrs) > 0 {
		err := d.acquireErrs[0]
		d.acquireErrs = d.acquireErrs[1:]
		return nil, err
	}
	if d.surface == nil {
		return nil, ErrNotConfigured
	}
	f := &HeadlessFrame{Width: d.surface.Width, Height: d.surface.Height}
	d.frames = append(d.frames, f)
	return f, nil
}

// Frames returns every frame acquired so far.
func (d *HeadlessDevice) Frames() []*HeadlessFrame { return d.frames }

// Release marks the device released. Idempotent.
func (d *HeadlessDevice) Release() {
	d.released = true
	d.surface = nil
}

// Released reports whether Release was called.
func (d *HeadlessDevice) Released() bool { return d.released }

// HeadlessBuffer is a recorded buffer.
type HeadlessBuffer struct {
	label    string
	usage    gputypes.BufferUsage
	size     uint64
	contents []byte
	released bool
}

func (b *HeadlessBuffer) Label() string               { return b.label }
func (b *HeadlessBuffer) Size() uint64                { return b.size }
func (b *HeadlessBuffer) Usage() gputypes.BufferUsage { return b.usage }
func (b *HeadlessBuffer) Release()                    { b.released = true }

// Contents returns the bytes written into the buffer, without alignment padding.
func (b *HeadlessBuffer) Contents() []byte { return b.contents }

// Released reports whether Release was called.
func (b *HeadlessBuffer) Released() bool { return b.released }

// HeadlessBindGroupLayout is a recorded bind group layout.
type HeadlessBindGroupLayout struct {
	Entries  []gputypes.BindGroupLayoutEntry
	released bool
}

func (l *HeadlessBindGroupLayout) Release() { l.released = true }

// HeadlessBindGroup is a recorded single-buffer bind group.
type HeadlessBindGroup struct {
	Label    string
	Layout   *HeadlessBindGroupLayout
	Binding  uint32
	Buffer   *HeadlessBuffer
	released bool
}

func (g *HeadlessBindGroup) Release() { g.released = true }

// HeadlessShader is a recorded shader module.
type HeadlessShader struct {
	Source   ShaderSource
	released bool
}

func (s *HeadlessShader) Release() { s.released = true }

// HeadlessPipeline is a recorded render pipeline.
type HeadlessPipeline struct {
	Desc     RenderPipelineDescriptor
	released bool
}

func (p *HeadlessPipeline) Release() { p.released = true }

// Released reports whether Release was called.
func (p *HeadlessPipeline) Released() bool { return p.released }

// HeadlessFrame is one recorded frame.
type HeadlessFrame struct {
	Width, Height uint32
	Passes        []*HeadlessPass
	Submitted     bool
	Discarded     bool
}

// BeginRenderPass starts recording a pass.
func (f *HeadlessFrame) BeginRenderPass(desc RenderPassDescriptor) (RenderPass, error) {
	if f.Submitted || f.Discarded {
		return nil, fmt.Errorf("gpu: frame already finished")
	}
	p := &HeadlessPass{Label: desc.Label, ClearColor: desc.ClearColor}
	f.Passes = append(f.Passes, p)
	return p, nil
}

// Submit marks the frame submitted and presented.
func (f *HeadlessFrame) Submit() error {
	if f.Submitted || f.Discarded {
		return fmt.Errorf("gpu: frame already finished")
	}
	for _, p := range f.Passes {
		if p.State() != RenderPassStateEnded {
			return fmt.Errorf("gpu: submit with open render pass %q", p.Label)
		}
	}
	f.Submitted = true
	return nil
}

// Discard marks the frame dropped.
func (f *HeadlessFrame) Discard() {
	if !f.Submitted {
		f.Discarded = true
	}
}

// Op identifies a recorded render pass command.
type Op int

const (
	OpSetPipeline Op = iota
	OpSetBindGroup
	OpSetVertexBuffer
	OpSetIndexBuffer
	OpDrawIndexed
)

func (o Op) String() string {
	switch o {
	case OpSetPipeline:
		return "SetPipeline"
	case OpSetBindGroup:
		return "SetBindGroup"
	case OpSetVertexBuffer:
		return "SetVertexBuffer"
	case OpSetIndexBuffer:
		return "SetIndexBuffer"
	case OpDrawIndexed:
		return "DrawIndexed"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// DrawIndexedArgs are the arguments of a DrawIndexed call.
type DrawIndexedArgs struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	BaseVertex    int32
	FirstInstance uint32
}

// Command is one recorded render pass command. Only the fields relevant to
// Op are set.
type Command struct {
	Op          Op
	Pipeline    RenderPipeline
	BindGroup   BindGroup
	Buffer      Buffer
	Index       uint32
	IndexFormat gputypes.IndexFormat
	Draw        DrawIndexedArgs
}

// HeadlessPass is a recorded render pass.
type HeadlessPass struct {
	passTracker
	Label      string
	ClearColor gputypes.Color
	Commands   []Command
}

func (p *HeadlessPass) SetPipeline(pipeline RenderPipeline) error {
	if err := p.setPipeline(pipeline); err != nil {
		return err
	}
	p.Commands = append(p.Commands, Command{Op: OpSetPipeline, Pipeline: pipeline})
	return nil
}

func (p *HeadlessPass) SetBindGroup(index uint32, group BindGroup) error {
	if err := p.setBindGroup(index, group); err != nil {
		return err
	}
	p.Commands = append(p.Commands, Command{Op: OpSetBindGroup, BindGroup: group, Index: index})
	return nil
}

func (p *HeadlessPass) SetVertexBuffer(slot uint32, buf Buffer) error {
	if err := p.setVertexBuffer(buf); err != nil {
		return err
	}
	p.Commands = append(p.Commands, Command{Op: OpSetVertexBuffer, Buffer: buf, Index: slot})
	return nil
}

func (p *HeadlessPass) SetIndexBuffer(buf Buffer, format gputypes.IndexFormat) error {
	if err := p.setIndexBuffer(buf); err != nil {
		return err
	}
	p.Commands = append(p.Commands, Command{Op: OpSetIndexBuffer, Buffer: buf, IndexFormat: format})
	return nil
}

func (p *HeadlessPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) error {
	if err := p.drawIndexed(); err != nil {
		return err
	}
	p.Commands = append(p.Commands, Command{Op: OpDrawIndexed, Draw: DrawIndexedArgs{
		IndexCount:    indexCount,
		InstanceCount: instanceCount,
		FirstIndex:    firstIndex,
		BaseVertex:    baseVertex,
		FirstInstance: firstInstance,
	}})
	return nil
}

func (p *HeadlessPass) End() error { return p.end() }

// Draws returns the DrawIndexed commands of the pass.
func (p *HeadlessPass) Draws() []DrawIndexedArgs {
	var out []DrawIndexedArgs
	for _, c := range p.Commands {
		if c.Op == OpDrawIndexed {
			out = append(out, c.Draw)
		}
	}
	return out
}

// uniformLayoutEntry is the layout entry of the uniform block at binding 0.
func uniformLayoutEntry(visibility gputypes.ShaderStages) gputypes.BindGroupLayoutEntry {
	return gputypes.BindGroupLayoutEntry{
		Binding:    0,
		Visibility: visibility,
		Buffer: &gputypes.BufferBindingLayout{
			Type:             gputypes.BufferBindingTypeUniform,
			HasDynamicOffset: false,
			MinBindingSize:   0,
		},
	}
}
