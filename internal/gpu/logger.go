package gpu

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler drops every record.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var deviceLogger atomic.Pointer[slog.Logger]

func init() {
	deviceLogger.Store(slog.New(nopHandler{}))
}

// slogger is the logger for device and backend messages.
func slogger() *slog.Logger { return deviceLogger.Load() }

// SetLogger installs l for the device layer and hands it to every backend
// hook. nil restores the silent logger.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	deviceLogger.Store(l)

	for _, hook := range loggerHooks {
		hook(l)
	}
}

// loggerHooks are invoked by SetLogger. Backends append to it from init.
var loggerHooks []func(*slog.Logger)
