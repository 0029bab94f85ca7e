package logging

import (
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the logger built by [New].
type Options struct {
	// Environment "production" switches to JSON output.
	Environment string
	// Level is one of debug, info, warn or error. Unknown values fall back to info.
	Level string
	// File is an optional path that receives a rotated copy of the log output.
	File string
}

// New constructs a context-aware logger writing to w and, if configured, to a rotating log file.
//
// The returned io.Closer closes the log file and must be called on shutdown.
func New(w io.Writer, opts Options) (*slog.Logger, io.Closer) {
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50, //nolint:mnd // megabytes
			MaxBackups: 5,  //nolint:mnd // files
			MaxAge:     28, //nolint:mnd // days
			Compress:   true,
		}
		w = io.MultiWriter(w, rotating)
		closer = rotating
	}

	handlerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     ParseLevel(opts.Level),
	}
	var handler slog.Handler
	if opts.Environment == "production" {
		handler = slog.NewJSONHandler(w, handlerOptions)
	} else {
		handler = slog.NewTextHandler(w, handlerOptions)
	}
	return slog.New(NewContextHandler(handler)), closer
}

// ParseLevel maps a level name to [slog.Level].
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
