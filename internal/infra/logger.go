package infra

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the logging contract shared across packages.
type Logger = zerolog.Logger

// NewLogger builds the server logger. Development uses the console writer at
// debug level; other environments emit JSON at info. A non-empty level
// ("warn", "trace", ...) overrides the environment default.
func NewLogger(appEnv, level string) Logger {
	return newLogger(os.Stdout, appEnv, level)
}

// NewStderrLogger logs to stderr for command line tools whose stdout carries
// output.
func NewStderrLogger(appEnv, level string) Logger {
	return newLogger(os.Stderr, appEnv, level)
}

// NopLogger returns a logger that discards everything.
func NopLogger() *Logger {
	l := zerolog.Nop()
	return &l
}

func newLogger(out io.Writer, appEnv, level string) Logger {
	dev := appEnv == "development"
	lvl := zerolog.InfoLevel
	if dev {
		lvl = zerolog.DebugLevel
	}
	if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level))); err == nil && level != "" {
		lvl = parsed
	}

	if dev {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "graphgen").Logger()
}
