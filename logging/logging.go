// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package logging builds the process wide [slog.Logger].
package logging

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// Supported values of [Config.Format].
const (
	FormatJSON = "json"
	FormatText = "text"
	FormatZap  = "zap"
)

// FileConfig configures writing logs to a rotated file instead of stderr.
type FileConfig struct {
	Path       string `config:"path"`
	MaxSizeMB  int    `config:"maxSizeMB"`
	MaxBackups int    `config:"maxBackups"`
	MaxAgeDays int    `config:"maxAgeDays"`
	Compress   bool   `config:"compress"`
}

// Config
type Config struct {
	Level     slog.Level `config:"level"`
	Format    string     `config:"format"`
	AccessLog string     `config:"accessLog"`
	Redact    []string   `config:"redact"`
	File      FileConfig `config:"file"`
}

// UnknownFormatError is returned by [New] for an unsupported format.
type UnknownFormatError struct {
	Format string
}

// Error implements the [error] interface.
func (e UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown log format: %q", e.Format)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds a logger from cfg which writes to w, unless cfg.File.Path
// is set. The returned closer must be closed once logging is done.
//
// Records logged with a context carrying a valid span are annotated with
// its trace and span ids. Attributes named in cfg.Redact are masked.
func New(cfg Config, w io.Writer) (*slog.Logger, io.Closer, error) {
	var closer io.Closer = nopCloser{}
	if cfg.File.Path != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		}
		w = lj
		closer = lj
	}

	opts := &slog.HandlerOptions{
		Level: cfg.Level,
	}

	var h slog.Handler
	switch cfg.Format {
	case FormatJSON, "":
		h = slog.NewJSONHandler(w, opts)
	case FormatText:
		h = slog.NewTextHandler(w, opts)
	case FormatZap:
		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(w),
			zapLevel(cfg.Level),
		)
		h = zapslog.NewHandler(core, nil)
	default:
		closer.Close()
		return nil, nil, UnknownFormatError{Format: cfg.Format}
	}

	if len(cfg.Redact) > 0 {
		h = NewRedactHandler(h, cfg.Redact...)
	}
	return slog.New(NewTraceHandler(h)), closer, nil
}

func zapLevel(l slog.Level) zapcore.Level {
	switch {
	case l >= slog.LevelError:
		return zapcore.ErrorLevel
	case l >= slog.LevelWarn:
		return zapcore.WarnLevel
	case l >= slog.LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
