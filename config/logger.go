package config

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a zerolog.Logger for the given environment and level.
// Production writes JSON lines; everything else gets the console writer.
// Level may be: debug, info, warn, error (default: info).
func NewLogger(env, level string) zerolog.Logger {
	lvl := zerolog.InfoLevel
	switch level {
	case "debug":
		lvl = zerolog.DebugLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	}

	if env == "production" {
		return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
	}

	out := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
