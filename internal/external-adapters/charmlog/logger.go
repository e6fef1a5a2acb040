// Package charmlog adapts charmbracelet/log to the domain Logger interface.
// This is in external-adapters to isolate the external dependency.
package charmlog

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/shipcask/shipcask/internal/domain/interfaces"
)

// Logger wraps a charmbracelet logger behind the domain logging contract.
type Logger struct {
	logger *log.Logger
}

// New creates a logger writing human-readable output to w. Debug enables
// debug-level messages.
func New(w io.Writer, debug bool) *Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}

	return &Logger{
		logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
			Level:           level,
		}),
	}
}

// Debug logs debug-level messages
func (l *Logger) Debug(msg string, fields ...interfaces.Field) {
	l.logger.Debug(msg, kv(fields)...)
}

// Info logs informational messages
func (l *Logger) Info(msg string, fields ...interfaces.Field) {
	l.logger.Info(msg, kv(fields)...)
}

// Warn logs warning messages
func (l *Logger) Warn(msg string, fields ...interfaces.Field) {
	l.logger.Warn(msg, kv(fields)...)
}

// Error logs error messages
func (l *Logger) Error(msg string, fields ...interfaces.Field) {
	l.logger.Error(msg, kv(fields)...)
}

// kv flattens structured fields into charm's alternating key-value form.
func kv(fields []interfaces.Field) []interface{} {
	pairs := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		pairs = append(pairs, f.Key, f.Value)
	}
	return pairs
}
