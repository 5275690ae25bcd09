// Package logger builds the zerolog logger shared by the server.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a timestamped logger at the given level. With pretty set,
// output goes through a ConsoleWriter for local development; otherwise
// it is plain JSON for log shippers.
func New(level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var out = zerolog.New(os.Stdout)
	if pretty {
		out = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	return out.Level(lvl).With().Timestamp().Logger()
}
