package grafica

import (
	"errors"

	"github.com/gogpu/grafica/internal/gpu"
)

// Errors returned while creating the graphics state. All of them are fatal
// to Run.
var (
	// ErrSurface is returned when no drawable surface can be bound to the window.
	ErrSurface = gpu.ErrSurface

	// ErrAdapter is returned when no GPU adapter compatible with the surface exists.
	ErrAdapter = gpu.ErrAdapter

	// ErrDevice is returned when the adapter cannot open a logical device.
	ErrDevice = gpu.ErrDevice

	// ErrUnknownBackend is returned when Config.Backend names no registered backend.
	ErrUnknownBackend = gpu.ErrUnknownBackend

	// ErrShaderRead is returned when a shader file cannot be read or is not UTF-8.
	ErrShaderRead = errors.New("grafica: cannot read shader")

	// ErrShaderCompile is returned when a shader does not compile.
	ErrShaderCompile = errors.New("grafica: shader compilation failed")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("grafica: invalid config")
)

// Errors returned while rendering.
var (
	// ErrFrameTimeout is returned when the swapchain does not produce an image
	// in time. It is fatal.
	ErrFrameTimeout = gpu.ErrFrameTimeout

	// ErrReleased is returned when a released GraphicsState is used.
	ErrReleased = errors.New("grafica: graphics state released")
)
