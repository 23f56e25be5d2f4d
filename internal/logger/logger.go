// Package logger writes structured JSON log lines and tracks extraction metrics.
//
// Each line carries a UTC timestamp, a level, a message and optional fields:
//
//	logger.Warn("fetch failed", logger.Fields{"url": url}, err)
//	logger.IncrCounter("cache.hit")
//	logger.RecordTiming("fetch.duration", elapsed)
//
// Package-level functions use a default logger on stderr, so stdout stays free for
// command output.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var severity = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel parses a level name, case-insensitively
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := severity[l]; !ok {
		return "", fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// Fields holds structured log fields
type Fields map[string]any

// Entry is one JSON log line
type Entry struct {
	Timestamp string `json:"timestamp"`
	Level     Level  `json:"level"`
	Message   string `json:"message"`
	Fields    Fields `json:"fields,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Logger writes entries at or above its minimum level. Safe for concurrent use.
type Logger struct {
	mu       sync.Mutex
	minLevel Level
	out      io.Writer
}

var defaultLogger = New(LevelInfo, os.Stderr)

// New creates a logger writing to out
func New(level Level, out io.Writer) *Logger {
	return &Logger{minLevel: level, out: out}
}

// Default returns the package-level logger
func Default() *Logger {
	return defaultLogger
}

// SetDefault replaces the package-level logger
func SetDefault(l *Logger) {
	defaultLogger = l
}

// SetLevel changes the minimum level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
}

// Enabled reports whether level would be written
func (l *Logger) Enabled(level Level) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return severity[level] >= severity[l.minLevel]
}

func (l *Logger) log(level Level, message string, fields Fields, err error) {
	if !l.Enabled(level) {
		return
	}

	entry := Entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level,
		Message:   message,
		Fields:    fields,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	data, marshalErr := json.Marshal(entry)

	l.mu.Lock()
	defer l.mu.Unlock()
	if marshalErr != nil {
		fmt.Fprintf(l.out, "[%s] %s: %s (marshal error: %v)\n", entry.Timestamp, entry.Level, entry.Message, marshalErr)
		return
	}
	fmt.Fprintln(l.out, string(data))
}

// Debug logs diagnostic detail
func (l *Logger) Debug(message string, fields Fields) {
	l.log(LevelDebug, message, fields, nil)
}

// Info logs general operational information
func (l *Logger) Info(message string, fields Fields) {
	l.log(LevelInfo, message, fields, nil)
}

// Warn logs a recoverable problem. err may be nil.
func (l *Logger) Warn(message string, fields Fields, err error) {
	l.log(LevelWarn, message, fields, err)
}

// Error logs a failure
func (l *Logger) Error(message string, fields Fields, err error) {
	l.log(LevelError, message, fields, err)
}

func Debug(message string, fields Fields) {
	defaultLogger.Debug(message, fields)
}

func Info(message string, fields Fields) {
	defaultLogger.Info(message, fields)
}

func Warn(message string, fields Fields, err error) {
	defaultLogger.Warn(message, fields, err)
}

func Error(message string, fields Fields, err error) {
	defaultLogger.Error(message, fields, err)
}
