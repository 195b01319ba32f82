package testkit

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/milestonegate/internal/logging"
)

// LogEntry is one call captured by RecordingLogger.
type LogEntry struct {
	Level string
	Msg   string
	Args  []any
}

// RecordingLogger is a logging.Logger that keeps every entry in memory.
// Children created by With share the parent's entries.
type RecordingLogger struct {
	sink *logSink
	with []any
}

type logSink struct {
	mu      sync.Mutex
	entries []LogEntry
}

func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{sink: &logSink{}}
}

func (l *RecordingLogger) record(ctx context.Context, level, msg string, args []any) {
	all := append([]any{}, l.with...)
	if id := logging.RequestID(ctx); id != "" {
		all = append(all, "request_id", id)
	}
	all = append(all, args...)
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.entries = append(l.sink.entries, LogEntry{Level: level, Msg: msg, Args: all})
}

func (l *RecordingLogger) Debug(ctx context.Context, msg string, args ...any) { l.record(ctx, "debug", msg, args) }
func (l *RecordingLogger) Info(ctx context.Context, msg string, args ...any)  { l.record(ctx, "info", msg, args) }
func (l *RecordingLogger) Warn(ctx context.Context, msg string, args ...any)  { l.record(ctx, "warn", msg, args) }
func (l *RecordingLogger) Error(ctx context.Context, msg string, args ...any) { l.record(ctx, "error", msg, args) }

func (l *RecordingLogger) With(args ...any) logging.Logger {
	return &RecordingLogger{sink: l.sink, with: append(append([]any{}, l.with...), args...)}
}

// Entries returns a copy of everything logged so far.
func (l *RecordingLogger) Entries() []LogEntry {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return append([]LogEntry(nil), l.sink.entries...)
}

// Has reports whether an entry with level and msg was logged.
func (l *RecordingLogger) Has(level, msg string) bool {
	for _, e := range l.Entries() {
		if e.Level == level && e.Msg == msg {
			return true
		}
	}
	return false
}
