package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger provides leveled, printf-style logging on top of zerolog.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger creates a debug-level console Logger writing to stdout.
func NewLogger() *Logger {
	l, _ := NewLoggerFor("local", "debug")
	return l
}

// NewLoggerFor builds a Logger for the given environment and level name.
// The "local" environment gets human-readable console output, everything
// else emits JSON lines.
func NewLoggerFor(environment, level string) (*Logger, error) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, fmt.Errorf("parse LOG_LEVEL=%q: %w", level, err)
	}

	var w io.Writer = os.Stdout
	if strings.EqualFold(strings.TrimSpace(environment), "local") {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime}
	}

	zl := zerolog.New(w).
		Level(parsed).
		With().
		Timestamp().
		Str("service", "sales-dashboard").
		Logger()
	return &Logger{zl: zl}, nil
}

// NewNopLogger discards everything.
func NewNopLogger() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// Zerolog exposes the underlying logger for structured call sites.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}

func (l *Logger) Info(format string, args ...any) {
	l.zl.Info().Msgf(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.zl.Warn().Msgf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.zl.Error().Msgf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.zl.Debug().Msgf(format, args...)
}
