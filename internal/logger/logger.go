package logger

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging
type Logger struct {
	*log.Logger
}

// New creates a logger writing to w at the given level
func New(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// ParseLevel converts a config string into a log level, defaulting to info.
func ParseLevel(s string) (log.Level, error) {
	if s == "" {
		return log.InfoLevel, nil
	}
	return log.ParseLevel(s)
}

// Discard returns a logger that discards all output
func Discard() *Logger {
	return New(io.Discard, log.FatalLevel)
}

// FileOpened logs a document being loaded into the viewer
func (l *Logger) FileOpened(path string, size int64) {
	l.Info("file opened",
		"path", path,
		"size", size)
}

// FileChanged logs a re-render triggered by the watcher
func (l *Logger) FileChanged(path string) {
	l.Info("file updated",
		"path", path)
}

// FileError logs an error for a specific file
func (l *Logger) FileError(path string, err error) {
	l.Error("file error",
		"path", path,
		"error", err)
}

// RenderFallback logs a code block that could not be highlighted
func (l *Logger) RenderFallback(lang string, err error) {
	l.Warn("highlight failed, rendering plain",
		"lang", lang,
		"error", err)
}

// ClientConnected logs a websocket client joining
func (l *Logger) ClientConnected(remote string, clients int) {
	l.Debug("client connected",
		"remote", remote,
		"clients", clients)
}

// ClientDisconnected logs a websocket client leaving
func (l *Logger) ClientDisconnected(clients int) {
	l.Debug("client disconnected",
		"clients", clients)
}

// WatcherError logs an fsnotify error
func (l *Logger) WatcherError(err error) {
	l.Warn("watcher error",
		"error", err)
}
