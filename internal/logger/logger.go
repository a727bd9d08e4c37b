package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/ldi/taskboard/internal/config"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	zerolog.TimestampFieldName = "timestamp"
}

// New builds the application logger for the given environment. local writes
// human-readable console output at trace level, dev and prod write JSON.
// verbose lowers the level to at least debug.
func New(env string, verbose bool, out io.Writer) (zerolog.Logger, error) {
	if out == nil {
		out = os.Stdout
	}

	var level zerolog.Level
	w := out
	switch env {
	case config.EnvDev:
		level = zerolog.DebugLevel
	case config.EnvProd:
		level = zerolog.InfoLevel
	case config.EnvLocal:
		level = zerolog.TraceLevel

		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = out
		w = consoleWriter
	default:
		return zerolog.Nop(), fmt.Errorf("unknown env: %s", env)
	}

	if verbose && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Logger(), nil
}
