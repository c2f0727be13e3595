package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where log output goes.
type Options struct {
	Environment string
	Level       string
	// File enables a rotating file sink in addition to stdout.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

func New(environment, level string) (zerolog.Logger, error) {
	return NewWithOptions(Options{Environment: environment, Level: level})
}

func NewWithOptions(opts Options) (zerolog.Logger, error) {
	parsedLevel, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse LOG_LEVEL=%q: %w", opts.Level, err)
	}

	var writer io.Writer = os.Stdout
	if strings.EqualFold(strings.TrimSpace(opts.Environment), "local") {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	if path := strings.TrimSpace(opts.File); path != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 50
		}
		writer = zerolog.MultiLevelWriter(writer, &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSize,
			MaxBackups: max(0, opts.MaxBackups),
			Compress:   true,
		})
	}

	logger := zerolog.New(writer).
		Level(parsedLevel).
		With().
		Timestamp().
		Str("service", "polyglot").
		Logger()

	return logger, nil
}
