package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds the root logger. format "console" gives human-readable output
// for local runs; anything else writes JSON lines.
func New(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Setup installs logger as the global logger and as the fallback for
// zerolog.Ctx on contexts that carry none.
func Setup(level, format string) zerolog.Logger {
	logger := New(os.Stdout, level, format)
	log.Logger = logger
	zerolog.DefaultContextLogger = &log.Logger
	return logger
}
