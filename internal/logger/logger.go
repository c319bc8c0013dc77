// Package logger provides structured logging for all Melodee modules.
// It wraps hashicorp/go-hclog behind a small package-level API so callers
// never need to thread a logger instance through every constructor.
package logger

import (
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"
)

var (
	mu  sync.RWMutex
	log = hclog.New(&hclog.LoggerOptions{
		Name:       "melodee",
		Level:      hclog.Info,
		Output:     os.Stderr,
		JSONFormat: os.Getenv("LOG_FORMAT") == "json",
	})
)

// Configure replaces the default logger with one using the given level
// ("debug", "info", "warn", "error") and format ("json" or "text").
func Configure(level, format string) {
	mu.Lock()
	defer mu.Unlock()
	log = hclog.New(&hclog.LoggerOptions{
		Name:       "melodee",
		Level:      hclog.LevelFromString(level),
		Output:     os.Stderr,
		JSONFormat: format == "json",
	})
}

// Info logs an informational message with optional key/value pairs.
func Info(msg string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	log.Info(msg, args...)
}

// Warn logs a warning message with optional key/value pairs.
func Warn(msg string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	log.Warn(msg, args...)
}

// Error logs an error message with optional key/value pairs.
func Error(msg string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	log.Error(msg, args...)
}

// Debug logs a debug message with optional key/value pairs.
func Debug(msg string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	log.Debug(msg, args...)
}
