// Package logger builds the process zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"taskhub-backend/pkg/config"

	"github.com/rs/zerolog"
)

// New returns a logger configured for cfg: human-readable console output in
// development, JSON lines otherwise.
func New(cfg *config.Config) zerolog.Logger {
	var w io.Writer = os.Stdout
	if !cfg.IsProduction() {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly}
	}
	return NewWithWriter(w, cfg)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.Debug {
		level = zerolog.DebugLevel
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("env", cfg.Environment).
		Logger()
}
