// Package logging builds the zerolog logger shared by the admin client packages.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing to stderr. DEV gets the human readable console writer,
// every other environment gets JSON lines.
func New(level, env string) zerolog.Logger {
	return NewWithWriter(os.Stderr, level, env)
}

func NewWithWriter(w io.Writer, level, env string) zerolog.Logger {
	if strings.EqualFold(env, "DEV") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// ParseLevel maps debug|info|warn|error onto zerolog levels, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
