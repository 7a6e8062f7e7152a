// Package logging builds the slog handlers used by the qualifier binary.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Options configures the terminal handler
type Options struct {
	// Level is the minimum level that is written
	Level slog.Leveler

	// Writer receives the log output, defaults to os.Stderr
	Writer io.Writer

	// NoColor forces plain output even when the writer is a terminal
	NoColor bool
}

// NewTerminalHandler returns a tint handler writing to stderr at level.
// Colour is enabled only when stderr is a terminal and NO_COLOR is unset.
func NewTerminalHandler(level slog.Leveler) slog.Handler {
	return NewHandler(Options{Level: level})
}

// NewHandler returns a tint handler for the given options
func NewHandler(opts Options) slog.Handler {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}

	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    opts.NoColor || !colorEnabled(w),
	})
}

// ParseLevel converts a textual level (debug, info, warn, error) into a slog.Level.
// An empty string yields info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func colorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
