package config

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Log formats.
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// NewLogger builds the root logger described by c.
func NewLogger(c LogConfig, out io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log.level: %w", err)
	}

	switch c.Format {
	case LogFormatJSON, "":
	case LogFormatConsole:
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	default:
		return zerolog.Nop(), fmt.Errorf("log.format: unknown format %q", c.Format)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
