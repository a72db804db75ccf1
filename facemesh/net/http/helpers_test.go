//go:build unit

package http

import (
	"context"
	"strings"
	"sync"

	"github.com/LerianStudio/lib-facemesh/facemesh/log"
)

type logEntry struct {
	level  log.Level
	msg    string
	fields []log.Field
}

// recordingLogger keeps every entry; With shares the parent's storage.
type recordingLogger struct {
	mu      *sync.Mutex
	entries *[]logEntry
	fields  []log.Field
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{mu: &sync.Mutex{}, entries: &[]logEntry{}}
}

func (l *recordingLogger) Log(_ context.Context, level log.Level, msg string, fields ...log.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	all := append(append([]log.Field(nil), l.fields...), fields...)
	*l.entries = append(*l.entries, logEntry{level: level, msg: msg, fields: all})
}

func (l *recordingLogger) With(fields ...log.Field) log.Logger {

	return &recordingLogger{
		mu:      l.mu,
		entries: l.entries,
		fields:  append(append([]log.Field(nil), l.fields...), fields...),
	}
}

func (l *recordingLogger) WithGroup(string) log.Logger { return l.With() }

func (l *recordingLogger) Enabled(log.Level) bool { return true }

func (l *recordingLogger) Sync(context.Context) error { return nil }

func (l *recordingLogger) snapshot() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]logEntry(nil), *l.entries...)
}

func (l *recordingLogger) has(level log.Level, prefix string) bool {
	for _, e := range l.snapshot() {
		if e.level == level && strings.HasPrefix(e.msg, prefix) {
			return true
		}
	}

	return false
}

func (e logEntry) field(key string) (any, bool) {
	for _, f := range e.fields {
		if f.Key == key {
			return f.Value, true
		}
	}

	return nil, false
}
