package grafica

import (
	"time"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/grafica/internal/gpu"
	"github.com/gogpu/grafica/window"
)

// Renderer draws a frame.
type Renderer interface {
	Render(g *GraphicsState) error
}

// Game is driven by Run.
//
// On every redraw Run calls Update, then UpdateUniforms with the graphics
// state's uniform block, uploads the block if it changed, then Render.
type Game interface {
	Renderer

	// Update advances the game by one frame.
	Update()

	// UpdateUniforms writes this frame's uniform values.
	UpdateUniforms(u *Uniforms)

	// HandleEvent sees every window event first. Returning true consumes the
	// event, so Run skips its own handling of it (closing on Escape for
	// example).
	HandleEvent(ev window.Event) bool
}

// idleDelay throttles the loop while no frame can be drawn.
const idleDelay = 16 * time.Millisecond

// Run opens a window, creates the graphics state and drives game until the
// window is closed, Escape is pressed or cfg.MaxFrames redraws have run.
//
// Run returns nil on a clean exit. Any error from setup, Resize, the uniform
// upload or Render ends the loop and is returned.
func Run(cfg Config, game Game) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Headless && cfg.Backend == "" {
		cfg.Backend = gpu.BackendHeadless
	}

	win, err := openWindow(cfg)
	if err != nil {
		return err
	}
	defer win.Close()

	return run(win, cfg, game)
}

func openWindow(cfg Config) (window.Window, error) {
	if cfg.Headless {
		return window.NewHeadless(cfg.Width, cfg.Height), nil
	}
	return window.Open(window.Config{Title: cfg.Title, Width: cfg.Width, Height: cfg.Height})
}

// run drives game on an already open window.
func run(win window.Window, cfg Config, game Game) error {
	g, err := NewGraphicsState(win, cfg)
	if err != nil {
		return err
	}
	defer g.Release()

	l := &loop{win: win, g: g, game: game, maxFrames: cfg.MaxFrames}
	return l.run()
}

type loop struct {
	win       window.Window
	g         *GraphicsState
	game      Game
	maxFrames int
	frames    int
}

func (l *loop) run() error {
	for {
		exit, err := l.dispatch(l.win.PollEvents())
		if err != nil || exit {
			return err
		}

		l.win.RequestRedraw()
		if !l.win.TakeRedraw() {
			continue
		}
		if err := l.redraw(); err != nil {
			return err
		}
		l.frames++
		if l.maxFrames > 0 && l.frames >= l.maxFrames {
			Logger().Debug("grafica: frame limit reached", "frames", l.frames)
			return nil
		}
		if _, ok := l.g.SurfaceConfig(); !ok {
			time.Sleep(idleDelay)
		}
	}
}

// dispatch handles one batch of events and reports whether the loop should
// exit.
func (l *loop) dispatch(events []window.Event) (bool, error) {
	for _, ev := range events {
		if l.game.HandleEvent(ev) {
			continue
		}
		switch e := ev.(type) {
		case window.CloseRequested:
			Logger().Debug("grafica: close requested")
			return true, nil
		case window.KeyboardInput:
			if e.Key == gpucontext.KeyEscape && e.State == window.Pressed {
				Logger().Debug("grafica: escape pressed")
				return true, nil
			}
		case window.Resized, window.ScaleFactorChanged:
			w, h, _ := window.PhysicalSize(ev)
			if err := l.g.Resize(w, h); err != nil {
				return false, err
			}
		}
	}
	return false, nil
}

func (l *loop) redraw() error {
	l.game.Update()
	l.game.UpdateUniforms(l.g.Uniforms())
	if err := l.g.FlushUniforms(); err != nil {
		return err
	}
	return l.game.Render(l.g)
}
