package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"treasurepicker/internal/config"
)

// LogFileName is the JSON log written under the configured log directory.
const LogFileName = "treasurepicker.log"

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Console receives human-facing output. Defaults to stderr.
	Console io.Writer
	// FilePath, when set, receives a JSON copy of every record at debug level.
	FilePath string
}

// CloseFunc releases resources held by a logger. It is safe to call more than once.
type CloseFunc func() error

func noopClose() error { return nil }

// New constructs a slog logger using the provided options. The returned
// CloseFunc closes the log file when FilePath is set.
func New(opts Options) (*slog.Logger, CloseFunc, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	addSource := levelVar.Level() <= slog.LevelDebug

	var primary slog.Handler
	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "", "console":
		primary = newConsoleHandler(console, levelVar, addSource)
	case "json":
		primary = newJSONHandler(console, levelVar, addSource)
	default:
		return nil, nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	path := strings.TrimSpace(opts.FilePath)
	if path == "" {
		return slog.New(primary), noopClose, nil
	}

	file, err := openLogFile(path)
	if err != nil {
		return nil, nil, err
	}
	fileLevel := new(slog.LevelVar)
	fileLevel.Set(slog.LevelDebug)
	logger := slog.New(newFanoutHandler(primary, newJSONHandler(file, fileLevel, true)))

	var once sync.Once
	var closeErr error
	closeFn := func() error {
		once.Do(func() {
			if err := file.Close(); err != nil {
				closeErr = fmt.Errorf("close log file %s: %w", path, err)
			}
		})
		return closeErr
	}
	return logger, closeFn, nil
}

// NewFromConfig creates a logger using application config defaults.
// Console output goes to console, or stderr when nil.
func NewFromConfig(cfg *config.Config, console io.Writer) (*slog.Logger, CloseFunc, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", Console: console})
	}

	opts := Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Console: console,
	}
	if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
		opts.FilePath = filepath.Join(dir, LogFileName)
	}
	return New(opts)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}
