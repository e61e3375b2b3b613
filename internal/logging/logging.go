// Package logging builds the zerolog logger shared by the commands.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Config controls where log lines go.
type Config struct {
	Level string
	// File, when set, receives JSON lines in addition to the console.
	File string
	// Console defaults to stderr.
	Console io.Writer
	// Quiet drops console output. Used while the TUI owns the terminal.
	Quiet bool
}

// Result is a configured logger plus the file it writes to, if any.
type Result struct {
	Logger    zerolog.Logger
	FilePath  string
	UsingFile bool

	file *os.File
}

// Close releases the log file.
func (r *Result) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// New builds a logger. An unknown level falls back to info.
func New(cfg Config) (*Result, error) {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	var writers []io.Writer
	if !cfg.Quiet {
		out := cfg.Console
		if out == nil {
			out = os.Stderr
		}
		writers = append(writers, zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}

	res := &Result{}
	if cfg.File != "" {
		if dir := filepath.Dir(cfg.File); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		res.file = f
		res.FilePath = cfg.File
		res.UsingFile = true
		writers = append(writers, f)
	}

	if len(writers) == 0 {
		res.Logger = zerolog.Nop()
		return res, nil
	}
	res.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lvl).
		With().
		Timestamp().
		Logger()
	return res, nil
}

// Component tags l with the subsystem emitting the lines.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// FromContext returns the logger stored with zerolog's WithContext, or a
// disabled logger.
func FromContext(ctx context.Context) zerolog.Logger {
	return *zerolog.Ctx(ctx)
}
