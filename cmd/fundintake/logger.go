package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger builds the process logger. The text format uses a console
// handler; json emits one object per line.
func newLogger(w io.Writer, format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
	case "text", "":
		handler := log.NewWithOptions(w, log.Options{
			Level:           log.Level(lvl),
			ReportTimestamp: true,
			TimeFormat:      time.DateTime,
		})
		return slog.New(handler), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
