//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
	_ "github.com/gogpu/wgpu/hal/allbackends"
)

func init() {
	Register(BackendWGPU, func() Backend { return wgpuBackend{} })
	loggerHooks = append(loggerHooks, func(l *slog.Logger) { wgpu.SetLogger(l) })
}

type wgpuBackend struct{}

func (wgpuBackend) Name() string { return BackendWGPU }

// Open performs surface, adapter and device acquisition in that order.
// Partially created objects are released on failure.
func (wgpuBackend) Open(target Target, opts OpenOptions) (Device, error) {
	flags := gputypes.InstanceFlagsNone
	if opts.Debug {
		flags = gputypes.InstanceFlagsDebug | gputypes.InstanceFlagsValidation
	}
	instance, err := wgpu.CreateInstance(&wgpu.InstanceDescriptor{
		Backends: wgpu.BackendsPrimary,
		Flags:    flags,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: instance: %w", ErrAdapter, err)
	}

	display, window := target.NativeHandles()
	surface, err := instance.CreateSurface(display, window)
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("%w: %w", ErrSurface, err)
	}

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference:   opts.PowerPreference,
		CompatibleSurface: surface,
	})
	if err != nil {
		surface.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: %w", ErrAdapter, err)
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: opts.Label})
	if err != nil {
		adapter.Release()
		surface.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: %w", ErrDevice, err)
	}

	info := adapter.Info()
	slogger().Info("gpu: adapter selected",
		"name", info.Name,
		"vendor", info.Vendor,
		"type", info.DeviceType,
		"backend", info.Backend,
		"driver", info.Driver,
	)

	return &wgpuDevice{
		instance: instance,
		surface:  surface,
		adapter:  adapter,
		device:   device,
		queue:    device.Queue(),
		info:     info,
	}, nil
}

// wgpuDevice implements Device on gogpu/wgpu.
type wgpuDevice struct {
	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	info     gputypes.AdapterInfo

	configured bool
	released   bool
}

func (d *wgpuDevice) Info() gputypes.AdapterInfo { return d.info }

func (d *wgpuDevice) Native() Native {
	return Native{Adapter: d.adapter, Device: d.device, Queue: d.queue}
}

func (d *wgpuDevice) ConfigureSurface(cfg SurfaceConfig) error {
	if d.released {
		return ErrReleased
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, cfg.Width, cfg.Height)
	}
	err := d.surface.Configure(d.device, &wgpu.SurfaceConfiguration{
		Width:       cfg.Width,
		Height:      cfg.Height,
		Format:      cfg.Format,
		Usage:       cfg.Usage,
		PresentMode: cfg.PresentMode,
		AlphaMode:   cfg.AlphaMode,
	})
	if err != nil {
		return fmt.Errorf("gpu: configure surface: %w", err)
	}
	d.configured = true
	return nil
}

// CreateBufferInit allocates the buffer with CopyDst added and uploads the
// padded contents through the queue.
func (d *wgpuDevice) CreateBufferInit(label string, usage gputypes.BufferUsage, contents []byte) (Buffer, error) {
	if d.released {
		return nil, ErrReleased
	}
	data := padded(contents)
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create buffer %q: %w", label, err)
	}
	if err := d.queue.WriteBuffer(buf, 0, data); err != nil {
		buf.Release()
		return nil, fmt.Errorf("gpu: upload buffer %q: %w", label, err)
	}
	slogger().Debug("gpu: buffer created", "label", label, "size", len(data))
	return buf, nil
}

func (d *wgpuDevice) WriteBuffer(buf Buffer, offset uint64, data []byte) error {
	if d.released {
		return ErrReleased
	}
	b, ok := buf.(*wgpu.Buffer)
	if !ok {
		return ErrForeignResource
	}
	if b.Usage()&gputypes.BufferUsageCopyDst == 0 {
		return fmt.Errorf("%w: %q", ErrBufferUsage, b.Label())
	}
	if err := d.queue.WriteBuffer(b, offset, data); err != nil {
		return fmt.Errorf("%w: %w", ErrBufferRange, err)
	}
	return nil
}

func (d *wgpuDevice) CreateUniformBinding(label string, visibility gputypes.ShaderStages, buf Buffer) (BindGroupLayout, BindGroup, error) {
	if d.released {
		return nil, nil, ErrReleased
	}
	b, ok := buf.(*wgpu.Buffer)
	if !ok {
		return nil, nil, ErrForeignResource
	}
	layout, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   label + " layout",
		Entries: []gputypes.BindGroupLayoutEntry{uniformLayoutEntry(visibility)},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("gpu: create bind group layout: %w", err)
	}
	group, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label,
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b, Offset: 0, Size: b.Size()},
		},
	})
	if err != nil {
		layout.Release()
		return nil, nil, fmt.Errorf("gpu: create bind group: %w", err)
	}
	return layout, group, nil
}

// CreateShaderModule prefers SPIR-V on Vulkan and WGSL everywhere else.
func (d *wgpuDevice) CreateShaderModule(src ShaderSource) (ShaderModule, error) {
	if d.released {
		return nil, ErrReleased
	}
	desc := &wgpu.ShaderModuleDescriptor{Label: src.Label}
	if (d.info.Backend == gputypes.BackendVulkan && len(src.SPIRV) > 0) || src.WGSL == "" {
		desc.SPIRV = src.SPIRV
	} else {
		desc.WGSL = src.WGSL
	}
	m, err := d.device.CreateShaderModule(desc)
	if err != nil {
		return nil, fmt.Errorf("gpu: create shader module %q: %w", src.Label, err)
	}
	return m, nil
}

func (d *wgpuDevice) CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipeline, error) {
	if d.released {
		return nil, ErrReleased
	}
	vs, ok := desc.Vertex.(*wgpu.ShaderModule)
	if !ok {
		return nil, ErrForeignResource
	}
	fs, ok := desc.Fragment.(*wgpu.ShaderModule)
	if !ok {
		return nil, ErrForeignResource
	}
	layouts := make([]*wgpu.BindGroupLayout, 0, len(desc.BindGroupLayouts))
	for _, l := range desc.BindGroupLayouts {
		wl, ok := l.(*wgpu.BindGroupLayout)
		if !ok {
			return nil, ErrForeignResource
		}
		layouts = append(layouts, wl)
	}

	pipelineLayout, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label + " layout",
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create pipeline layout: %w", err)
	}

	pipeline, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: desc.VertexEntryPoint,
			Buffers:    desc.VertexBuffers,
		},
		Primitive:   desc.Primitive,
		Multisample: desc.Multisample,
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: desc.FragmentEntryPoint,
			Targets:    desc.Targets,
		},
	})
	if err != nil {
		pipelineLayout.Release()
		return nil, fmt.Errorf("gpu: create render pipeline: %w", err)
	}
	return &wgpuPipeline{pipeline: pipeline, layout: pipelineLayout}, nil
}

func (d *wgpuDevice) AcquireFrame() (Frame, error) {
	if d.released {
		return nil, ErrReleased
	}
	if !d.configured {
		return nil, ErrNotConfigured
	}
	st, suboptimal, err := d.surface.GetCurrentTexture()
	if err != nil {
		return nil, acquireError(err)
	}
	if suboptimal {
		slogger().Debug("gpu: suboptimal swapchain image")
	}
	view, err := st.CreateView(nil)
	if err != nil {
		d.surface.DiscardTexture()
		return nil, fmt.Errorf("gpu: create frame view: %w", err)
	}
	encoder, err := d.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "frame"})
	if err != nil {
		view.Release()
		d.surface.DiscardTexture()
		return nil, fmt.Errorf("gpu: create command encoder: %w", err)
	}
	return &wgpuFrame{device: d, texture: st, view: view, encoder: encoder}, nil
}

// acquireError maps a GetCurrentTexture failure to the device-layer
// sentinels: a timeout is fatal, an outdated or lost surface needs a
// reconfigure.
func acquireError(err error) error {
	switch {
	case errors.Is(err, wgpu.ErrTimeout):
		return fmt.Errorf("%w: %w", ErrFrameTimeout, err)
	case errors.Is(err, wgpu.ErrSurfaceOutdated), errors.Is(err, wgpu.ErrSurfaceLost):
		return fmt.Errorf("%w: %w", ErrSurfaceOutdated, err)
	}
	return fmt.Errorf("gpu: acquire frame: %w", err)
}

// Release destroys device objects in reverse creation order. Idempotent.
func (d *wgpuDevice) Release() {
	if d.released {
		return
	}
	d.released = true
	d.device.Release()
	d.surface.Release()
	d.adapter.Release()
	d.instance.Release()
}

// wgpuPipeline owns the pipeline and its layout.
type wgpuPipeline struct {
	pipeline *wgpu.RenderPipeline
	layout   *wgpu.PipelineLayout
}

func (p *wgpuPipeline) Release() {
	p.pipeline.Release()
	p.layout.Release()
}

type wgpuFrame struct {
	device  *wgpuDevice
	texture *wgpu.SurfaceTexture
	view    *wgpu.TextureView
	encoder *wgpu.CommandEncoder
	done    bool
}

func (f *wgpuFrame) BeginRenderPass(desc RenderPassDescriptor) (RenderPass, error) {
	if f.done {
		return nil, fmt.Errorf("gpu: frame already finished")
	}
	pass, err := f.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: desc.Label,
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       f.view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: desc.ClearColor,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: begin render pass: %w", err)
	}
	return &wgpuPass{pass: pass}, nil
}

func (f *wgpuFrame) Submit() error {
	if f.done {
		return fmt.Errorf("gpu: frame already finished")
	}
	f.done = true
	defer f.view.Release()

	commands, err := f.encoder.Finish()
	if err != nil {
		f.device.surface.DiscardTexture()
		return fmt.Errorf("gpu: finish encoder: %w", err)
	}
	if _, err := f.device.queue.Submit(commands); err != nil {
		f.device.surface.DiscardTexture()
		return fmt.Errorf("gpu: submit: %w", err)
	}
	if err := f.device.surface.Present(f.texture); err != nil {
		return fmt.Errorf("gpu: present: %w", err)
	}
	return nil
}

func (f *wgpuFrame) Discard() {
	if f.done {
		return
	}
	f.done = true
	f.encoder.DiscardEncoding()
	f.view.Release()
	f.device.surface.DiscardTexture()
}

// wgpuPass forwards to a wgpu render pass encoder after local validation.
type wgpuPass struct {
	passTracker
	pass *wgpu.RenderPassEncoder
}

func (p *wgpuPass) SetPipeline(pipeline RenderPipeline) error {
	if err := p.setPipeline(pipeline); err != nil {
		return err
	}
	wp, ok := pipeline.(*wgpuPipeline)
	if !ok {
		return ErrForeignResource
	}
	p.pass.SetPipeline(wp.pipeline)
	return nil
}

func (p *wgpuPass) SetBindGroup(index uint32, group BindGroup) error {
	if err := p.setBindGroup(index, group); err != nil {
		return err
	}
	bg, ok := group.(*wgpu.BindGroup)
	if !ok {
		return ErrForeignResource
	}
	p.pass.SetBindGroup(index, bg, nil)
	return nil
}

func (p *wgpuPass) SetVertexBuffer(slot uint32, buf Buffer) error {
	if err := p.setVertexBuffer(buf); err != nil {
		return err
	}
	b, ok := buf.(*wgpu.Buffer)
	if !ok {
		return ErrForeignResource
	}
	p.pass.SetVertexBuffer(slot, b, 0)
	return nil
}

func (p *wgpuPass) SetIndexBuffer(buf Buffer, format gputypes.IndexFormat) error {
	if err := p.setIndexBuffer(buf); err != nil {
		return err
	}
	b, ok := buf.(*wgpu.Buffer)
	if !ok {
		return ErrForeignResource
	}
	p.pass.SetIndexBuffer(b, format, 0)
	return nil
}

func (p *wgpuPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) error {
	if err := p.drawIndexed(); err != nil {
		return err
	}
	p.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
	return nil
}

func (p *wgpuPass) End() error {
	if err := p.end(); err != nil {
		return err
	}
	return p.pass.End()
}
