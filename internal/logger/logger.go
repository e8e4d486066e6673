package logger

import (
	"os"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

// Init configures the process-wide logger. Records demoted by the
// interceptor (error-level config emits at info, warn at debug) must not
// be filtered away here, so the global level is widened accordingly.
func Init(level, format string) {
	logLevel, err := zerolog.ParseLevel(sinkLevel(level))
	if err != nil {
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)
	log = zerolog.New(os.Stdout).With().Timestamp().Logger()
	if format == "console" {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
}

func sinkLevel(level string) string {
	switch level {
	case "warn", "warning":
		return "debug"
	case "error":
		return "info"
	}
	return level
}

func GetLogger() *zerolog.Logger {
	return &log
}
