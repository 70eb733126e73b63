package grafica

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/grafica/internal/gpu"
	"github.com/gogpu/grafica/window"
)

// newTestGraphics creates a graphics state on the headless backend and a
// headless window of the given size.
func newTestGraphics(t *testing.T, width, height int) (*GraphicsState, *gpu.HeadlessDevice) {
	t.Helper()
	win := window.NewHeadless(width, height)
	g, err := NewGraphicsState(win, DefaultConfig().WithBackend(gpu.BackendHeadless))
	if err != nil {
		t.Fatalf("NewGraphicsState: %v", err)
	}
	t.Cleanup(g.Release)

	dev, ok := g.device.(*gpu.HeadlessDevice)
	if !ok {
		t.Fatalf("device is %T, want *gpu.HeadlessDevice", g.device)
	}
	return g, dev
}

func TestNewGraphicsStateSurface(t *testing.T) {
	g, dev := newTestGraphics(t, 800, 600)

	sc, ok := dev.Surface()
	if !ok {
		t.Fatal("surface not configured")
	}
	want := gpu.SurfaceConfig{
		Width:       800,
		Height:      600,
		Format:      gputypes.TextureFormatBGRA8UnormSrgb,
		Usage:       gputypes.TextureUsageRenderAttachment,
		PresentMode: gputypes.PresentModeFifo,
		AlphaMode:   gputypes.CompositeAlphaModeOpaque,
	}
	if sc != want {
		t.Errorf("surface = %+v, want %+v", sc, want)
	}
	if got, ok := g.SurfaceConfig(); !ok || got != want {
		t.Errorf("SurfaceConfig() = %+v, %v", got, ok)
	}
	if w, h := g.Size(); w != 800 || h != 600 {
		t.Errorf("Size() = %dx%d", w, h)
	}
}

func TestNewGraphicsStateUniforms(t *testing.T) {
	g, dev := newTestGraphics(t, 800, 600)

	bufs := dev.Buffers()
	if len(bufs) != 1 {
		t.Fatalf("got %d buffers after setup, want 1 (uniforms)", len(bufs))
	}
	ub := bufs[0]
	if ub != g.uniformBuffer {
		t.Error("uniform buffer is not the first buffer")
	}
	wantUsage := gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst
	if ub.Usage() != wantUsage {
		t.Errorf("uniform usage = %v, want %v", ub.Usage(), wantUsage)
	}
	if ub.Size() != UniformsSize {
		t.Errorf("uniform size = %d, want %d", ub.Size(), UniformsSize)
	}

	group, ok := g.uniformGroup.(*gpu.HeadlessBindGroup)
	if !ok {
		t.Fatalf("bind group is %T", g.uniformGroup)
	}
	if group.Buffer != ub || group.Binding != 0 {
		t.Errorf("bind group references %p at %d, want %p at 0", group.Buffer, group.Binding, ub)
	}
	entries := group.Layout.Entries
	if len(entries) != 1 {
		t.Fatalf("layout has %d entries, want 1", len(entries))
	}
	if entries[0].Visibility != gputypes.ShaderStageFragment {
		t.Errorf("visibility = %v, want fragment", entries[0].Visibility)
	}
	if entries[0].Buffer == nil || entries[0].Buffer.Type != gputypes.BufferBindingTypeUniform {
		t.Errorf("entry is not a uniform buffer: %+v", entries[0])
	}
}

func TestNewGraphicsStatePipeline(t *testing.T) {
	g, dev := newTestGraphics(t, 800, 600)

	shaders := dev.Shaders()
	if len(shaders) != 2 {
		t.Fatalf("got %d shader modules, want 2", len(shaders))
	}
	for i, stage := range []gputypes.ShaderStage{gputypes.ShaderStageVertex, gputypes.ShaderStageFragment} {
		src := shaders[i].Source
		if src.Stage != stage {
			t.Errorf("shader %d stage = %v, want %v", i, src.Stage, stage)
		}
		if len(src.SPIRV) == 0 || src.WGSL == "" {
			t.Errorf("shader %d missing SPIR-V or WGSL", i)
		}
	}

	pipes := dev.Pipelines()
	if len(pipes) != 1 {
		t.Fatalf("got %d pipelines, want 1", len(pipes))
	}
	if pipes[0] != g.pipeline {
		t.Error("pipeline not retained")
	}
	d := pipes[0].Desc

	if d.VertexEntryPoint != "main" || d.FragmentEntryPoint != "main" {
		t.Errorf("entry points = %q/%q", d.VertexEntryPoint, d.FragmentEntryPoint)
	}
	if d.Vertex != g.vertexModule || d.Fragment != g.fragmentModule {
		t.Error("pipeline does not use the compiled modules")
	}
	if len(d.BindGroupLayouts) != 1 || d.BindGroupLayouts[0] != g.uniformLayout {
		t.Error("pipeline layout is not the uniform layout")
	}
	if len(d.VertexBuffers) != 1 || d.VertexBuffers[0].ArrayStride != VertexSize {
		t.Errorf("vertex buffers = %+v", d.VertexBuffers)
	}

	wantPrim := gputypes.PrimitiveState{
		Topology:  gputypes.PrimitiveTopologyTriangleList,
		FrontFace: gputypes.FrontFaceCCW,
		CullMode:  gputypes.CullModeBack,
	}
	if d.Primitive != wantPrim {
		t.Errorf("primitive = %+v, want %+v", d.Primitive, wantPrim)
	}
	if d.Multisample != gputypes.DefaultMultisampleState() {
		t.Errorf("multisample = %+v", d.Multisample)
	}

	if len(d.Targets) != 1 {
		t.Fatalf("got %d color targets, want 1", len(d.Targets))
	}
	target := d.Targets[0]
	if target.Format != gputypes.TextureFormatBGRA8UnormSrgb {
		t.Errorf("target format = %v", target.Format)
	}
	if target.WriteMask != gputypes.ColorWriteMaskAll {
		t.Errorf("write mask = %v", target.WriteMask)
	}
	if target.Blend == nil || *target.Blend != gputypes.BlendStateReplace() {
		t.Errorf("blend = %+v, want replace", target.Blend)
	}
}

func TestNewGraphicsStateErrors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"unknown backend", DefaultConfig().WithBackend("vulkan-9000"), ErrUnknownBackend},
		{"missing vertex shader", DefaultConfig().WithBackend(gpu.BackendHeadless).WithShaders("shaders/nope.vert", DefaultFragmentShader), ErrShaderRead},
		{"missing fragment shader", DefaultConfig().WithBackend(gpu.BackendHeadless).WithShaders(DefaultVertexShader, "shaders/nope.frag"), ErrShaderRead},
		{"stages swapped", DefaultConfig().WithBackend(gpu.BackendHeadless).WithShaders(DefaultFragmentShader, DefaultVertexShader), ErrShaderCompile},
		{"invalid config", DefaultConfig().WithBackend(gpu.BackendHeadless).WithSize(0, 0), ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGraphicsState(window.NewHeadless(640, 480), tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if g != nil {
				t.Error("graphics state returned with an error")
			}
		})
	}
}

func TestResize(t *testing.T) {
	tests := []struct {
		name           string
		width, height  int
		wantConfigured bool
	}{
		{"grow", 1024, 768, true},
		{"shrink", 320, 200, true},
		{"same as initial", 800, 600, true},
		{"minimized", 0, 0, false},
		{"zero width", 0, 600, false},
		{"zero height", 800, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, dev := newTestGraphics(t, 800, 600)
			before := len(dev.Configures())

			if err := g.Resize(tt.width, tt.height); err != nil {
				t.Fatalf("Resize: %v", err)
			}
			if w, h := g.Size(); w != tt.width || h != tt.height {
				t.Errorf("Size() = %dx%d, want %dx%d", w, h, tt.width, tt.height)
			}

			sc, ok := g.SurfaceConfig()
			if ok != tt.wantConfigured {
				t.Fatalf("SurfaceConfig ok = %v, want %v", ok, tt.wantConfigured)
			}
			if !tt.wantConfigured {
				if n := len(dev.Configures()); n != before {
					t.Errorf("zero-area resize configured the surface (%d -> %d)", before, n)
				}
				return
			}
			if sc.Width != uint32(tt.width) || sc.Height != uint32(tt.height) {
				t.Errorf("swapchain = %dx%d, want %dx%d", sc.Width, sc.Height, tt.width, tt.height)
			}
			got, _ := dev.Surface()
			if got != sc {
				t.Errorf("device surface %+v differs from %+v", got, sc)
			}
		})
	}
}

func TestResizeAfterMinimize(t *testing.T) {
	g, dev := newTestGraphics(t, 800, 600)

	if err := g.Resize(0, 0); err != nil {
		t.Fatal(err)
	}
	if err := g.Resize(640, 480); err != nil {
		t.Fatal(err)
	}
	sc, ok := g.SurfaceConfig()
	if !ok || sc.Width != 640 || sc.Height != 480 {
		t.Errorf("SurfaceConfig() = %+v, %v; want 640x480", sc, ok)
	}
	if n := len(dev.Configures()); n != 2 {
		t.Errorf("configured %d times, want 2", n)
	}
}

func TestFlushUniforms(t *testing.T) {
	g, dev := newTestGraphics(t, 800, 600)

	if err := g.FlushUniforms(); err != nil {
		t.Fatal(err)
	}
	if n := len(dev.Writes()); n != 0 {
		t.Fatalf("unchanged uniforms produced %d writes", n)
	}

	g.Uniforms().SetColor(0.5, 0.25, 0)
	if err := g.FlushUniforms(); err != nil {
		t.Fatal(err)
	}
	writes := dev.Writes()
	if len(writes) != 1 {
		t.Fatalf("got %d writes, want 1", len(writes))
	}
	want := g.Uniforms().Bytes()
	if writes[0].Buffer != g.uniformBuffer || writes[0].Offset != 0 || !bytes.Equal(writes[0].Data, want) {
		t.Errorf("write = %+v, want %v at 0", writes[0], want)
	}
	if !bytes.Equal(dev.Buffers()[0].Contents(), want) {
		t.Errorf("buffer contents = %v, want %v", dev.Buffers()[0].Contents(), want)
	}

	if err := g.FlushUniforms(); err != nil {
		t.Fatal(err)
	}
	if n := len(dev.Writes()); n != 1 {
		t.Errorf("second flush without changes wrote again (%d writes)", n)
	}
}

func TestGraphicsDeviceProvider(t *testing.T) {
	g, dev := newTestGraphics(t, 800, 600)

	var provider gpucontext.DeviceProvider = g
	if provider.Device() != dev || provider.Queue() != dev || provider.Adapter() != dev {
		t.Error("native handles do not expose the headless device")
	}
	if provider.SurfaceFormat() != gputypes.TextureFormatBGRA8UnormSrgb {
		t.Errorf("SurfaceFormat() = %v", provider.SurfaceFormat())
	}
	info := provider.AdapterInfo()
	if info.Name != "grafica headless" || info.Type != gpucontext.AdapterTypeSoftware {
		t.Errorf("AdapterInfo() = %+v", info)
	}
}

func TestAdapterType(t *testing.T) {
	tests := []struct {
		in   gputypes.DeviceType
		want gpucontext.AdapterType
	}{
		{gputypes.DeviceTypeDiscreteGPU, gpucontext.AdapterTypeDiscrete},
		{gputypes.DeviceTypeIntegratedGPU, gpucontext.AdapterTypeIntegrated},
		{gputypes.DeviceTypeCPU, gpucontext.AdapterTypeSoftware},
		{gputypes.DeviceTypeVirtualGPU, gpucontext.AdapterTypeUnknown},
		{gputypes.DeviceTypeOther, gpucontext.AdapterTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			if got := adapterType(tt.in); got != tt.want {
				t.Errorf("adapterType(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestGraphicsRelease(t *testing.T) {
	g, dev := newTestGraphics(t, 800, 600)

	g.Release()
	g.Release()

	if !dev.Released() {
		t.Error("device not released")
	}
	if !dev.Pipelines()[0].Released() {
		t.Error("pipeline not released")
	}
	if !dev.Buffers()[0].Released() {
		t.Error("uniform buffer not released")
	}
	if _, ok := g.SurfaceConfig(); ok {
		t.Error("SurfaceConfig reports a surface after Release")
	}
	if err := g.Resize(10, 10); !errors.Is(err, ErrReleased) {
		t.Errorf("Resize after Release = %v, want ErrReleased", err)
	}
	if err := g.FlushUniforms(); !errors.Is(err, ErrReleased) {
		t.Errorf("FlushUniforms after Release = %v, want ErrReleased", err)
	}
}
