package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const serviceName = "gatherhub"

// NewLogger builds the process-wide base logger. Every line carries the
// service name; domain services hang their own component field off this
// logger. Unknown levels fall back to info, unknown formats to JSON.
func NewLogger(cfg LoggingConfig) zerolog.Logger {
	logger := newLoggerTo(os.Stdout, cfg)
	log.Logger = logger
	return logger
}

func newLoggerTo(w io.Writer, cfg LoggingConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if strings.EqualFold(cfg.Format, "console") {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}
