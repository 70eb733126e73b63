package grafica

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/grafica/internal/gpu"
)

// nopHandler drops every record. Enabled reports false for all levels, so
// slog never builds the record.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// current is the logger shared by the render loop and GraphicsState.
var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(newNopLogger())
}

// SetLogger routes grafica's logs, and those of its device layer and wgpu,
// to l. grafica is silent until SetLogger is called; nil makes it silent
// again. It may be called while a Run loop is active.
//
// Levels:
//   - [slog.LevelDebug]: resource creation, resizes, uniform uploads
//   - [slog.LevelInfo]: adapter selection, surface configuration
//   - [slog.LevelWarn]: skipped frames
//
// Example:
//
//	grafica.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	current.Store(l)
	gpu.SetLogger(l)
}

// Logger returns the logger installed by SetLogger. It is never nil.
func Logger() *slog.Logger {
	return current.Load()
}
