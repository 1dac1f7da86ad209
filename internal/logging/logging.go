// Package logging configures the application logger: structured zerolog
// output into a size-rotated activity log file, with an optional tap feeding
// the in-app log view. The log is informational only, nothing consumes it.
package logging

import (
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileName = "shuffler.log"

	// Rotation policy: 5MB per file, keep the last 5 rotations.
	maxLogSizeMB  = 5
	maxLogBackups = 5

	fileTimeFormat = "2006-01-02 15:04:05"
	guiTimeFormat  = "15:04:05"
)

// Log is the global logger instance. It discards everything until Init runs.
var Log = zerolog.New(io.Discard)

// GUITap forwards formatted log lines to a callback registered by the UI.
// Safe to use before a callback is set, lines are dropped until then.
type GUITap struct {
	mu sync.Mutex
	fn func(line string)
}

// SetCallback registers a receiver for log lines. The callback runs on the
// logging goroutine, receivers must marshal onto the UI thread themselves.
func (t *GUITap) SetCallback(fn func(line string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fn = fn
}

// Write implements io.Writer for the console writer feeding the UI.
func (t *GUITap) Write(p []byte) (int, error) {
	t.mu.Lock()
	fn := t.fn
	t.mu.Unlock()

	if fn != nil {
		fn(string(p))
	}
	return len(p), nil
}

// Init initializes the global logger writing to logDir and returns the tap
// the UI can attach its log view to.
func Init(logDir string) *GUITap {
	zerolog.TimeFieldFormat = time.RFC3339

	fileWriter := zerolog.ConsoleWriter{
		Out: &lumberjack.Logger{
			Filename:   filepath.Join(logDir, logFileName),
			MaxSize:    maxLogSizeMB,
			MaxBackups: maxLogBackups,
		},
		TimeFormat: fileTimeFormat,
		NoColor:    true,
	}

	tap := &GUITap{}
	guiWriter := zerolog.ConsoleWriter{
		Out:          tap,
		TimeFormat:   guiTimeFormat,
		NoColor:      true,
		PartsExclude: []string{zerolog.CallerFieldName},
	}

	Log = zerolog.New(io.MultiWriter(fileWriter, guiWriter)).
		With().
		Timestamp().
		Logger()

	return tap
}
