package util

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ConfigureLogger sets the global zerolog level and output.
func ConfigureLogger(level zerolog.Level, prettyPrintConsole bool) {
	ConfigureLoggerOutput(os.Stderr, level, prettyPrintConsole)
}

// ConfigureLoggerOutput is ConfigureLogger with an explicit writer.
func ConfigureLoggerOutput(out io.Writer, level zerolog.Level, prettyPrintConsole bool) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(level)

	if prettyPrintConsole {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
		})
		return
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}
