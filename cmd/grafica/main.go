// Command grafica opens a window and draws a colored triangle until the
// window is closed or Escape is pressed.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/grafica"
	"github.com/gogpu/grafica/window"
)

type triangle struct {
	mesh *grafica.Mesh
}

func newTriangle() *triangle {
	return &triangle{mesh: grafica.NewMesh([]grafica.Vertex{
		grafica.V(0.0, 0.05, 0.0, 1.0, 0.0, 0.0),
		grafica.V(-0.05, -0.05, 0.0, 0.0, 1.0, 0.0),
		grafica.V(0.05, -0.05, 0.0, 0.0, 0.0, 1.0),
	}, []uint16{0, 1, 2})}
}

func (t *triangle) Update()                               {}
func (t *triangle) UpdateUniforms(*grafica.Uniforms)      {}
func (t *triangle) HandleEvent(window.Event) bool         { return false }
func (t *triangle) Render(g *grafica.GraphicsState) error { return t.mesh.Render(g) }

func main() {
	def := grafica.DefaultConfig()
	var (
		width    = flag.Int("width", def.Width, "window width")
		height   = flag.Int("height", def.Height, "window height")
		title    = flag.String("title", def.Title, "window title")
		backend  = flag.String("backend", "", "GPU backend (empty selects the best available)")
		frames   = flag.Int("frames", 0, "stop after this many frames (0 runs until closed)")
		headless = flag.Bool("headless", false, "run without a window on the headless backend")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		grafica.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}
	if *headless && *frames == 0 {
		*frames = 1
	}

	cfg := def.
		WithTitle(*title).
		WithSize(*width, *height).
		WithBackend(*backend).
		WithHeadless(*headless).
		WithMaxFrames(*frames).
		WithDebug(*verbose)

	game := newTriangle()
	if err := grafica.Run(cfg, game); err != nil {
		log.Fatal(err)
	}
}
