// ABOUTME: Structured logging setup
// ABOUTME: Builds slog loggers writing to stdout and an optional rotated file
package logging

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls logger construction
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // text or json
	WithSource bool

	// Writer receives log lines; nil means stdout
	Writer io.Writer

	// File enables a size-rotated log file in addition to stdout
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	global *slog.Logger
	closer io.Closer
	mu     sync.RWMutex
)

func levelFromString(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.New("invalid log level: " + level)
	}
}

// New builds a logger without touching the global instance. The returned
// closer releases the log file, if any.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	lvl, err := levelFromString(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = os.Stdout
	if cfg.Writer != nil {
		out = cfg.Writer
	}
	var c io.Closer = nopCloser{}
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		out = io.MultiWriter(out, file)
		c = file
	}

	return slog.New(newHandler(out, cfg.Format, lvl, cfg.WithSource)), c, nil
}

func newHandler(w io.Writer, format string, lvl slog.Level, withSource bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: lvl, AddSource: withSource}
	if strings.ToLower(format) == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Init replaces the global logger and makes it the slog default
func Init(cfg Config) (*slog.Logger, error) {
	logger, c, err := New(cfg)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	if closer != nil {
		closer.Close()
	}
	global, closer = logger, c
	slog.SetDefault(logger)
	return logger, nil
}

// L returns the global logger, or slog's default before Init
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if global == nil {
		return slog.Default()
	}
	return global
}

// Close releases the global log file
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}

// Discard returns a logger that drops everything; for tests
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
