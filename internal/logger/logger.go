package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New はサービス名付きのzerologを返す。devはconsole出力
func New(service string, env string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if env == "dev" {
		out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
		return zerolog.New(out).With().Timestamp().Str("service", service).Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Str("service", service).Logger()
}
