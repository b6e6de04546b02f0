// Package app wires keytrace together: logging, the recording loop and
// trace encoding.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// ParseLogLevel parses a level name. Unknown names yield slog.LevelInfo.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoggerConfig configures the logger.
type LoggerConfig struct {
	// Level is the minimum level name, such as "debug".
	Level string
	// File, when set, receives log output in append mode.
	File string
	// Output is used when File is empty. Nil discards logs.
	Output io.Writer
}

// Logger is a slog.Logger whose level can change at runtime.
type Logger struct {
	*slog.Logger

	level *slog.LevelVar

	mu   sync.Mutex
	file *os.File
}

// NewLogger creates a logger from cfg.
func NewLogger(cfg LoggerConfig) (*Logger, error) {
	l := &Logger{level: new(slog.LevelVar)}
	l.level.Set(ParseLogLevel(cfg.Level))

	out := cfg.Output
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file %s: %w", cfg.File, err)
		}
		l.file = f
		out = f
	}
	if out == nil {
		out = io.Discard
	}

	l.Logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: l.level}))
	return l, nil
}

// SetLevel changes the minimum level.
func (l *Logger) SetLevel(level string) {
	l.level.Set(ParseLogLevel(level))
}

// Level returns the current minimum level.
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// WithComponent returns a logger that tags records with component.
func (l *Logger) WithComponent(component string) *slog.Logger {
	return l.With("component", component)
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
