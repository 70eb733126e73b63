// Package grafica is a minimal real-time render scaffold.
//
// # Overview
//
// grafica opens one window, brings up a GPU device and swapchain on it,
// compiles a vertex and a fragment shader, and redraws every frame while
// forwarding input to a user-supplied [Game]. There is one render pipeline,
// one uniform block and no depth buffer. Meshes upload their buffers on
// first use and draw themselves with a single indexed draw.
//
// # Quick Start
//
//	type triangle struct{ mesh *grafica.Mesh }
//
//	func (t *triangle) Update()                              {}
//	func (t *triangle) UpdateUniforms(*grafica.Uniforms)     {}
//	func (t *triangle) HandleEvent(window.Event) bool        { return false }
//	func (t *triangle) Render(g *grafica.GraphicsState) error { return t.mesh.Render(g) }
//
//	func main() {
//	    game := &triangle{mesh: grafica.NewMesh(vertices, []uint16{0, 1, 2})}
//	    if err := grafica.Run(grafica.DefaultConfig(), game); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Frame lifecycle
//
// The driver in [Run] polls window events, offers each to
// [Game.HandleEvent], closes on CloseRequested or Escape, and forwards
// size changes to [GraphicsState.Resize]. Once the queue drains it
// requests a redraw; a redraw calls Update, UpdateUniforms, uploads the
// uniform block if it changed, then Render.
//
// # Shaders
//
// Shaders are WGSL files, by default shaders/shader.vert and
// shaders/shader.frag, each with a `main` entry point. They are compiled
// to SPIR-V with gogpu/naga when the graphics state is created. The
// fragment stage sees the [Uniforms] block at @group(0) @binding(0).
//
// # Backends
//
// GPU access goes through gogpu/wgpu. Building with the nogpu tag leaves
// only the headless recording backend; building with the headless tag
// drops the GLFW window. Config.Backend selects a backend by name.
//
// # Logging
//
// grafica is silent by default. Call [SetLogger] to route diagnostics to a
// [log/slog] logger.
package grafica
