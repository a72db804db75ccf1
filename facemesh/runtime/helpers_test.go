//go:build unit

package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/LerianStudio/lib-facemesh/facemesh/log"
)

// testLogger captures log calls and signals each one on logged.
type testLogger struct {
	mu       sync.Mutex
	messages []string
	fields   [][]log.Field
	logged   chan struct{}
}

func newTestLogger() *testLogger {
	return &testLogger{logged: make(chan struct{}, 1)}
}

func (l *testLogger) Log(_ context.Context, _ log.Level, msg string, fields ...log.Field) {
	l.mu.Lock()
	l.messages = append(l.messages, msg)
	l.fields = append(l.fields, fields)
	l.mu.Unlock()

	select {
	case l.logged <- struct{}{}:
	default:
	}
}

func (l *testLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.messages)
}

func (l *testLogger) lastFields() map[string]any {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := map[string]any{}
	if len(l.fields) == 0 {
		return out
	}

	for _, f := range l.fields[len(l.fields)-1] {
		out[f.Key] = f.Value
	}

	return out
}

func (l *testLogger) waitForLog(timeout time.Duration) bool {
	select {
	case <-l.logged:
		return true
	case <-time.After(timeout):
		return false
	}
}

type captureReporter struct {
	mu   sync.Mutex
	errs []error
	tags []map[string]string
}

func (r *captureReporter) CaptureException(_ context.Context, err error, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
}
