// package shared holds logging, configuration, and small helpers used
// across every grit package — the ambient stack the core engine and the
// CLI both depend on.
package shared

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// NewLogger creates a new [log.Logger] instance with the specified
// [io.Writer], with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr].
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true, TimeFormat: time.Kitchen}
	return log.NewWithOptions(w, opts)
}

// NewFileLogger creates a new [log.Logger] that writes to a file at the
// given path, creating parent directories as needed.
func NewFileLogger(path string) (*log.Logger, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	opts := log.Options{ReportTimestamp: true, ReportCaller: true, TimeFormat: time.Kitchen, Level: log.DebugLevel}
	return log.NewWithOptions(file, opts), nil
}

// WithLogger creates a child [log.Logger] with the given key-value pairs
// added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}
