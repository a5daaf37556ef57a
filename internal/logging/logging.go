// Package logging provides categorized file-based logging for the shield
// client. Logs are written to .shield/logs/ with one file per category.
// When debug mode is off the whole package is a silent no-op, so the TUI
// never has log writes competing with terminal output.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Category represents a log category.
type Category string

const (
	CategoryBoot    Category = "boot"    // startup, config load, health probe
	CategoryAPI     Category = "api"     // backend HTTP calls
	CategorySession Category = "session" // controller state transitions
	CategoryUI      Category = "ui"      // view mode changes, key handling
)

// Logger wraps a standard logger with category and file output.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	enabled   bool
)

// Initialize sets up the logging directory. Called once at startup; when
// debug is false, all loggers are no-ops and no directory is created.
func Initialize(workspace string, debug bool) error {
	if !debug {
		enabled = false
		return nil
	}
	if workspace == "" {
		return fmt.Errorf("workspace path required")
	}

	logsDir = filepath.Join(workspace, ".shield", "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}
	enabled = true

	boot := Get(CategoryBoot)
	boot.Info("logging initialized, dir=%s", logsDir)
	return nil
}

// Get returns the logger for a category, creating it on first use.
func Get(category Category) *Logger {
	loggersMu.RLock()
	l, ok := loggers[category]
	loggersMu.RUnlock()
	if ok {
		return l
	}

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	l = &Logger{category: category}
	if enabled {
		path := filepath.Join(logsDir, string(category)+".log")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			l.file = f
			l.logger = log.New(f, "", log.LstdFlags|log.Lmicroseconds)
		}
	}
	loggers[category] = l
	return l
}

func (l *Logger) write(level, format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Printf("["+level+"] "+format, args...)
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) { l.write("DEBUG", format, args...) }

// Info logs an info message.
func (l *Logger) Info(format string, args ...any) { l.write("INFO", format, args...) }

// Warn logs a warning.
func (l *Logger) Warn(format string, args ...any) { l.write("WARN", format, args...) }

// Error logs an error.
func (l *Logger) Error(format string, args ...any) { l.write("ERROR", format, args...) }

// Close flushes and closes all open log files.
func Close() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			_ = l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
	enabled = false
}
