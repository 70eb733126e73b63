package gpu

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/gpucontext"
)

// Backend names.
const (
	// BackendWGPU renders through gogpu/wgpu.
	BackendWGPU = "wgpu"

	// BackendHeadless records commands without touching hardware.
	BackendHeadless = "headless"
)

// ErrUnknownBackend is returned by Lookup for names that are not registered.
var ErrUnknownBackend = errors.New("gpu: backend not registered")

// backends holds registered backends.
// Priority order for selection: wgpu first, headless as the fallback.
var backends = gpucontext.NewRegistry[Backend](
	gpucontext.WithPriority(BackendWGPU, BackendHeadless),
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend files.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory func() Backend) {
	backends.Register(name, factory)
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	backends.Unregister(name)
}

// Available returns the sorted names of registered backends.
func Available() []string {
	names := backends.Available()
	slices.Sort(names)
	return names
}

// Lookup returns the backend registered under name.
// An empty name selects the highest-priority registered backend.
func Lookup(name string) (Backend, error) {
	if name == "" {
		name = backends.BestName()
		if name == "" {
			return nil, fmt.Errorf("%w: no backends available", ErrUnknownBackend)
		}
	}
	b := backends.Get(name)
	if b == nil {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownBackend, name, Available())
	}
	return b, nil
}
