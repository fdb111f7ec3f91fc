// Package logger provides pipeline logging for the fixpath CLI.
// When verbose mode is enabled via the --verbose flag, debug, info and warn
// records are written to stderr so users can follow each pipeline stage.
// Errors are always written. Records are formatted by a log/slog text handler.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	base              = newSlog(os.Stderr)
)

func newSlog(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	base = newSlog(w)
}

// Fields carries structured attributes for a group of records.
type Fields struct {
	attrs []any
}

// With returns Fields holding key/value pairs, e.g. With("stage", "crawl", "url", u).
func With(kv ...any) Fields {
	return Fields{attrs: kv}
}

// With extends the fields with more key/value pairs.
func (f Fields) With(kv ...any) Fields {
	attrs := make([]any, 0, len(f.attrs)+len(kv))
	attrs = append(attrs, f.attrs...)
	return Fields{attrs: append(attrs, kv...)}
}

// Debug logs at debug level if verbose mode is enabled.
func (f Fields) Debug(format string, args ...any) { write(slog.LevelDebug, f.attrs, format, args) }

// Info logs at info level if verbose mode is enabled.
func (f Fields) Info(format string, args ...any) { write(slog.LevelInfo, f.attrs, format, args) }

// Warn logs at warn level if verbose mode is enabled.
func (f Fields) Warn(format string, args ...any) { write(slog.LevelWarn, f.attrs, format, args) }

// Error logs at error level regardless of verbose mode.
func (f Fields) Error(format string, args ...any) { write(slog.LevelError, f.attrs, format, args) }

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(slog.LevelDebug, nil, format, args)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write(slog.LevelInfo, nil, format, args)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	write(slog.LevelWarn, nil, format, args)
}

// Error prints an error message. Errors are printed even when not verbose.
func Error(format string, args ...any) {
	write(slog.LevelError, nil, format, args)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

func write(level slog.Level, attrs []any, format string, args []any) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose && level < slog.LevelError {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	base.Log(context.Background(), level, msg, attrs...)
}
