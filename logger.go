package gfx

import (
	"log/slog"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/internal/logging"
)

// SetLogger configures the logger for gfx, all its sub-packages and the
// wgpu HAL. By default nothing is logged. Pass nil to restore silence.
//
// SetLogger is safe for concurrent use.
//
// Log levels used by gfx:
//   - [slog.LevelDebug]: buffer sizes, shader and pipeline creation
//   - [slog.LevelInfo]: adapter selection, texture table reset
//   - [slog.LevelWarn]: surface reconfiguration, software adapter fallback
//
// Example:
//
//	gfx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
	hal.SetLogger(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return logging.Logger()
}
