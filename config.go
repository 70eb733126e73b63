package grafica

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Default shader locations, relative to the working directory.
const (
	DefaultVertexShader   = "shaders/shader.vert"
	DefaultFragmentShader = "shaders/shader.frag"
)

// DefaultClearColor is the color each frame is cleared to.
var DefaultClearColor = gputypes.Color{R: 0.01, G: 0.01, B: 0.01, A: 1.0}

// Config configures Run and NewGraphicsState.
//
// Start from DefaultConfig and adjust with the With* methods:
//
//	cfg := grafica.DefaultConfig().
//	    WithTitle("Triangle").
//	    WithSize(1280, 720)
type Config struct {
	// Title is the window title.
	Title string

	// Width and Height are the initial window size in logical points.
	Width  int
	Height int

	// VertexShader and FragmentShader are WGSL source files.
	VertexShader   string
	FragmentShader string

	// ClearColor is the color of the render pass load operation.
	ClearColor gputypes.Color

	// Backend names the GPU backend. Empty selects the best registered one.
	Backend string

	// PowerPreference steers adapter selection.
	PowerPreference gputypes.PowerPreference

	// PresentMode is the swapchain present mode.
	PresentMode gputypes.PresentMode

	// Headless runs without a native window. Used for tests and CI.
	Headless bool

	// MaxFrames stops the loop after that many redraws. Zero runs until the
	// window is closed.
	MaxFrames int

	// ShaderDebug emits debug info into the compiled SPIR-V.
	ShaderDebug bool

	// Debug requests API validation from the GPU backend.
	Debug bool
}

// DefaultConfig returns an 800x600 window titled "grafica" with the default
// shaders, vsync and no adapter preference.
func DefaultConfig() Config {
	return Config{
		Title:           "grafica",
		Width:           800,
		Height:          600,
		VertexShader:    DefaultVertexShader,
		FragmentShader:  DefaultFragmentShader,
		ClearColor:      DefaultClearColor,
		PowerPreference: gputypes.PowerPreferenceNone,
		PresentMode:     gputypes.PresentModeFifo,
	}
}

// WithTitle returns a copy with the window title set.
func (c Config) WithTitle(title string) Config {
	c.Title = title
	return c
}

// WithSize returns a copy with the initial window size set.
func (c Config) WithSize(width, height int) Config {
	c.Width = width
	c.Height = height
	return c
}

// WithShaders returns a copy reading shaders from the given files.
func (c Config) WithShaders(vertex, fragment string) Config {
	c.VertexShader = vertex
	c.FragmentShader = fragment
	return c
}

// WithClearColor returns a copy with the clear color set.
func (c Config) WithClearColor(color gputypes.Color) Config {
	c.ClearColor = color
	return c
}

// WithBackend returns a copy selecting the named GPU backend.
func (c Config) WithBackend(name string) Config {
	c.Backend = name
	return c
}

// WithPowerPreference returns a copy with the adapter power preference set.
func (c Config) WithPowerPreference(p gputypes.PowerPreference) Config {
	c.PowerPreference = p
	return c
}

// WithPresentMode returns a copy with the present mode set.
func (c Config) WithPresentMode(m gputypes.PresentMode) Config {
	c.PresentMode = m
	return c
}

// WithHeadless returns a copy that runs without a native window.
func (c Config) WithHeadless(headless bool) Config {
	c.Headless = headless
	return c
}

// WithMaxFrames returns a copy that stops after n redraws.
func (c Config) WithMaxFrames(n int) Config {
	c.MaxFrames = n
	return c
}

// WithDebug returns a copy with backend validation and shader debug info
// enabled or disabled.
func (c Config) WithDebug(debug bool) Config {
	c.Debug = debug
	c.ShaderDebug = debug
	return c
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: size %dx%d must be positive", ErrInvalidConfig, c.Width, c.Height)
	case c.VertexShader == "":
		return fmt.Errorf("%w: vertex shader path is empty", ErrInvalidConfig)
	case c.FragmentShader == "":
		return fmt.Errorf("%w: fragment shader path is empty", ErrInvalidConfig)
	case c.MaxFrames < 0:
		return fmt.Errorf("%w: max frames %d is negative", ErrInvalidConfig, c.MaxFrames)
	}
	return nil
}
