package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog replaces the default slog logger with a text logger on stderr,
// debug logs are only emitted when `verbose` is set.
func InitSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
