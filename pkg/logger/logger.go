package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config задает уровень и формат логов
type Config struct {
	Level  string // debug, info, warn, error
	Pretty bool   // человекочитаемый вывод в консоль
}

// New создает структурированный логгер
func New(cfg Config) zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter создает логгер, пишущий в заданный writer
func NewWithWriter(cfg Config, w io.Writer) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	output := w
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(output).
		With().
		Timestamp().
		Logger()
}

// ParseLevel переводит строковый уровень в zerolog.Level (по умолчанию info)
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
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

// SetGlobalLogger заменяет глобальный логгер пакета zerolog/log
func SetGlobalLogger(l zerolog.Logger) {
	log.Logger = l
}
