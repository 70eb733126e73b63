package grafica

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/grafica/internal/gpu"
	"github.com/gogpu/grafica/window"
)

// SurfaceFormat is the swapchain and color target format.
const SurfaceFormat = gputypes.TextureFormatBGRA8UnormSrgb

// SurfaceConfig describes the configured swapchain.
type SurfaceConfig = gpu.SurfaceConfig

// GraphicsState owns the device, the swapchain, the render pipeline and the
// uniform block. There is one per window.
//
// GraphicsState implements [gpucontext.DeviceProvider]. It is not safe for
// concurrent use and must stay on the window's thread.
type GraphicsState struct {
	cfg    Config
	device gpu.Device

	width, height int
	surface       SurfaceConfig
	configured    bool

	uniforms      Uniforms
	uploaded      []byte
	uniformBuffer gpu.Buffer
	uniformLayout gpu.BindGroupLayout
	uniformGroup  gpu.BindGroup

	vertexModule   gpu.ShaderModule
	fragmentModule gpu.ShaderModule
	pipeline       gpu.RenderPipeline

	released bool
}

var _ gpucontext.DeviceProvider = (*GraphicsState)(nil)

// NewGraphicsState opens a device on win, configures the swapchain at the
// window's physical size and builds the render pipeline from the shaders
// named in cfg.
func NewGraphicsState(win window.Window, cfg Config) (*GraphicsState, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	backend, err := gpu.Lookup(cfg.Backend)
	if err != nil {
		return nil, err
	}
	device, err := backend.Open(win, gpu.OpenOptions{
		Label:           cfg.Title,
		PowerPreference: cfg.PowerPreference,
		Debug:           cfg.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("grafica: open %s backend: %w", backend.Name(), err)
	}

	g := &GraphicsState{cfg: cfg, device: device}
	if err := g.init(win); err != nil {
		g.Release()
		return nil, err
	}

	info := device.Info()
	Logger().Info("grafica: graphics ready",
		"backend", backend.Name(),
		"adapter", info.Name,
		"width", g.width,
		"height", g.height)
	return g, nil
}

func (g *GraphicsState) init(win window.Window) error {
	w, h := win.PhysicalSize()
	if err := g.Resize(w, h); err != nil {
		return err
	}
	if err := g.createUniforms(); err != nil {
		return err
	}
	return g.createPipeline()
}

func (g *GraphicsState) createUniforms() error {
	data := g.uniforms.Bytes()
	buf, err := g.device.CreateBufferInit("grafica uniforms",
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst, data)
	if err != nil {
		return fmt.Errorf("grafica: uniform buffer: %w", err)
	}
	g.uniformBuffer = buf
	g.uploaded = data

	layout, group, err := g.device.CreateUniformBinding("grafica uniforms",
		gputypes.ShaderStageFragment, buf)
	if err != nil {
		return fmt.Errorf("grafica: uniform bind group: %w", err)
	}
	g.uniformLayout = layout
	g.uniformGroup = group
	return nil
}

func (g *GraphicsState) createPipeline() error {
	vs, err := LoadShader(g.cfg.VertexShader, gputypes.ShaderStageVertex, g.cfg.ShaderDebug)
	if err != nil {
		return err
	}
	fs, err := LoadShader(g.cfg.FragmentShader, gputypes.ShaderStageFragment, g.cfg.ShaderDebug)
	if err != nil {
		return err
	}

	if g.vertexModule, err = g.device.CreateShaderModule(shaderSource(vs)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrShaderCompile, vs.Label, err)
	}
	if g.fragmentModule, err = g.device.CreateShaderModule(shaderSource(fs)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrShaderCompile, fs.Label, err)
	}

	blend := gputypes.BlendStateReplace()
	g.pipeline, err = g.device.CreateRenderPipeline(&gpu.RenderPipelineDescriptor{
		Label:            "grafica pipeline",
		BindGroupLayouts: []gpu.BindGroupLayout{g.uniformLayout},

		Vertex:           g.vertexModule,
		VertexEntryPoint: EntryPoint,
		VertexBuffers:    []gputypes.VertexBufferLayout{VertexLayout()},

		Fragment:           g.fragmentModule,
		FragmentEntryPoint: EntryPoint,
		Targets: []gputypes.ColorTargetState{{
			Format:    SurfaceFormat,
			Blend:     &blend,
			WriteMask: gputypes.ColorWriteMaskAll,
		}},

		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeBack,
		},
		Multisample: gputypes.DefaultMultisampleState(),
	})
	if err != nil {
		return fmt.Errorf("grafica: render pipeline: %w", err)
	}
	return nil
}

func shaderSource(s *Shader) gpu.ShaderSource {
	return gpu.ShaderSource{Label: s.Label, Stage: s.Stage, WGSL: s.WGSL, SPIRV: s.SPIRV}
}

// Resize reconfigures the swapchain for a new physical size.
//
// A zero-area size, as reported for a minimized window, is recorded but
// leaves the swapchain alone; frames are skipped until a non-zero size
// arrives.
func (g *GraphicsState) Resize(width, height int) error {
	if g.released {
		return ErrReleased
	}
	g.width, g.height = width, height
	if width <= 0 || height <= 0 {
		g.configured = false
		Logger().Debug("grafica: zero-area resize, frames paused", "width", width, "height", height)
		return nil
	}

	sc := SurfaceConfig{
		Width:       uint32(width),
		Height:      uint32(height),
		Format:      SurfaceFormat,
		Usage:       gputypes.TextureUsageRenderAttachment,
		PresentMode: g.cfg.PresentMode,
		AlphaMode:   gputypes.CompositeAlphaModeOpaque,
	}
	if err := g.device.ConfigureSurface(sc); err != nil {
		g.configured = false
		return fmt.Errorf("grafica: configure surface %dx%d: %w", width, height, err)
	}
	g.surface = sc
	g.configured = true
	Logger().Debug("grafica: surface configured", "width", width, "height", height)
	return nil
}

// Size returns the size passed to the last Resize.
func (g *GraphicsState) Size() (width, height int) {
	return g.width, g.height
}

// SurfaceConfig returns the active swapchain configuration. The boolean is
// false while the window has zero area or after Release.
func (g *GraphicsState) SurfaceConfig() (SurfaceConfig, bool) {
	return g.surface, g.configured && !g.released
}

// Uniforms returns the uniform block. Changes are uploaded by FlushUniforms.
func (g *GraphicsState) Uniforms() *Uniforms {
	return &g.uniforms
}

// FlushUniforms uploads the uniform block if it changed since the last
// upload.
func (g *GraphicsState) FlushUniforms() error {
	if g.released {
		return ErrReleased
	}
	data := g.uniforms.Bytes()
	if bytes.Equal(data, g.uploaded) {
		return nil
	}
	if err := g.device.WriteBuffer(g.uniformBuffer, 0, data); err != nil {
		return fmt.Errorf("grafica: upload uniforms: %w", err)
	}
	g.uploaded = data
	Logger().Debug("grafica: uniforms uploaded", "color", g.uniforms.Color)
	return nil
}

// createBuffer creates a buffer initialized with contents on the device.
func (g *GraphicsState) createBuffer(label string, usage gputypes.BufferUsage, contents []byte) (gpu.Buffer, error) {
	if g.released {
		return nil, ErrReleased
	}
	buf, err := g.device.CreateBufferInit(label, usage, contents)
	if err != nil {
		return nil, fmt.Errorf("grafica: create %s: %w", label, err)
	}
	Logger().Debug("grafica: buffer created", "label", label, "size", buf.Size())
	return buf, nil
}

// acquireFrame returns the next swapchain frame. A nil frame with a nil
// error means this frame is skipped.
func (g *GraphicsState) acquireFrame() (gpu.Frame, error) {
	if g.released {
		return nil, ErrReleased
	}
	if !g.configured {
		return nil, nil
	}
	frame, err := g.device.AcquireFrame()
	switch {
	case err == nil:
		return frame, nil
	case errors.Is(err, gpu.ErrSurfaceOutdated):
		Logger().Warn("grafica: surface outdated, frame skipped", "error", err)
		if cerr := g.device.ConfigureSurface(g.surface); cerr != nil {
			return nil, fmt.Errorf("grafica: reconfigure surface: %w", cerr)
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("grafica: acquire frame: %w", err)
	}
}

// drawIndexed renders one frame: a cleared pass drawing count indices from
// ib over vb with the pipeline and uniforms bound.
func (g *GraphicsState) drawIndexed(vb, ib gpu.Buffer, count uint32) error {
	frame, err := g.acquireFrame()
	if err != nil || frame == nil {
		return err
	}
	if err := g.record(frame, vb, ib, count); err != nil {
		frame.Discard()
		return err
	}
	return frame.Submit()
}

func (g *GraphicsState) record(frame gpu.Frame, vb, ib gpu.Buffer, count uint32) error {
	pass, err := frame.BeginRenderPass(gpu.RenderPassDescriptor{
		Label:      "grafica pass",
		ClearColor: g.cfg.ClearColor,
	})
	if err != nil {
		return err
	}
	if err := pass.SetPipeline(g.pipeline); err != nil {
		return err
	}
	if err := pass.SetBindGroup(0, g.uniformGroup); err != nil {
		return err
	}
	if err := pass.SetVertexBuffer(0, vb); err != nil {
		return err
	}
	if err := pass.SetIndexBuffer(ib, gputypes.IndexFormatUint16); err != nil {
		return err
	}
	if err := pass.DrawIndexed(count, 1, 0, 0, 0); err != nil {
		return err
	}
	return pass.End()
}

// Device returns the backend device handle.
func (g *GraphicsState) Device() gpucontext.Device {
	if g.device == nil {
		return nil
	}
	return g.device.Native().Device
}

// Queue returns the backend queue handle.
func (g *GraphicsState) Queue() gpucontext.Queue {
	if g.device == nil {
		return nil
	}
	return g.device.Native().Queue
}

// Adapter returns the backend adapter handle.
func (g *GraphicsState) Adapter() gpucontext.Adapter {
	if g.device == nil {
		return nil
	}
	return g.device.Native().Adapter
}

// SurfaceFormat returns the swapchain format.
func (g *GraphicsState) SurfaceFormat() gputypes.TextureFormat {
	return SurfaceFormat
}

// AdapterInfo returns the adapter name and type.
func (g *GraphicsState) AdapterInfo() gpucontext.AdapterInfo {
	if g.device == nil {
		return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
	}
	info := g.device.Info()
	return gpucontext.AdapterInfo{Name: info.Name, Type: adapterType(info.DeviceType)}
}

func adapterType(t gputypes.DeviceType) gpucontext.AdapterType {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		return gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		return gpucontext.AdapterTypeSoftware
	default:
		return gpucontext.AdapterTypeUnknown
	}
}

// Release frees the pipeline, shaders, uniform binding and device in
// reverse creation order. It is safe to call more than once.
func (g *GraphicsState) Release() {
	if g.released {
		return
	}
	g.released = true

	if g.pipeline != nil {
		g.pipeline.Release()
	}
	if g.fragmentModule != nil {
		g.fragmentModule.Release()
	}
	if g.vertexModule != nil {
		g.vertexModule.Release()
	}
	if g.uniformGroup != nil {
		g.uniformGroup.Release()
	}
	if g.uniformLayout != nil {
		g.uniformLayout.Release()
	}
	if g.uniformBuffer != nil {
		g.uniformBuffer.Release()
	}
	if g.device != nil {
		g.device.Release()
	}
	Logger().Debug("grafica: graphics released")
}
