// Package logger provides leveled logging for the earnings RAG pipeline.
// Loggers are explicit instances injected into component constructors;
// there is no process-wide logger state.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Logger writes timestamped, levelled lines to a single writer.
// Debug lines are emitted only in verbose mode.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

// New creates a logger writing to out. A nil out defaults to stderr.
func New(out io.Writer, verbose bool) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{out: out, verbose: verbose}
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *Logger {
	return &Logger{out: io.Discard}
}

// Verbose reports whether debug output is enabled.
func (l *Logger) Verbose() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.verbose
}

func (l *Logger) log(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ts := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(l.out, "%s [%s] "+format+"\n", append([]any{ts, level}, args...)...)
}

// Debug prints a message when verbose mode is enabled.
func (l *Logger) Debug(format string, args ...any) {
	if !l.Verbose() {
		return
	}
	l.log("DEBUG", format, args...)
}

// Section prints a section header when verbose mode is enabled.
func (l *Logger) Section(name string) {
	if !l.Verbose() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "\n=== %s ===\n", name)
}

// Info prints an informational message.
func (l *Logger) Info(format string, args ...any) {
	l.log("INFO", format, args...)
}

// Warn prints a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.log("WARN", format, args...)
}

// Error prints an error message.
func (l *Logger) Error(format string, args ...any) {
	l.log("ERROR", format, args...)
}
