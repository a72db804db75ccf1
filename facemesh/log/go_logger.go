package log

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync"
)

// logControlCharReplacer escapes control characters that can be used for log injection (CWE-117).
// A user-supplied input_string ends up in access logs, so newlines must not forge entries.
var logControlCharReplacer = strings.NewReplacer(
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func sanitizeLogString(s string) string {
	return logControlCharReplacer.Replace(s)
}

// GoLogger is the Go built-in (log) implementation of Logger.
// It is the fallback used when no zap logger was wired in.
//
// All string values are sanitized to prevent log injection (CWE-117).
type GoLogger struct {
	Level  Level
	fields []Field
	group  string
	out    *stdlog.Logger
	mu     *sync.Mutex
}

// Compile-time assertion: *GoLogger implements Logger.
var _ Logger = (*GoLogger)(nil)

// NewGoLogger creates a GoLogger writing to w at the given level.
// A nil writer defaults to stderr.
func NewGoLogger(w io.Writer, level Level) *GoLogger {
	if w == nil {
		w = os.Stderr
	}

	return &GoLogger{
		Level: level,
		out:   stdlog.New(w, "", stdlog.LstdFlags),
		mu:    &sync.Mutex{},
	}
}

func (l *GoLogger) writer() *stdlog.Logger {
	if l.out == nil {
		return stdlog.Default()
	}

	return l.out
}

// Log implements Logger.
func (l *GoLogger) Log(_ context.Context, level Level, msg string, fields ...Field) {
	if !l.Enabled(level) {
		return
	}

	line := l.hydrate(level, msg, fields)

	if l.mu != nil {
		l.mu.Lock()
		defer l.mu.Unlock()
	}

	l.writer().Print(line)
}

// With returns a child logger carrying additional fields.
//
//nolint:ireturn
func (l *GoLogger) With(fields ...Field) Logger {
	if l == nil {
		return &GoLogger{}
	}

	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)

	return &GoLogger{Level: l.Level, fields: merged, group: l.group, out: l.out, mu: l.mu}
}

// WithGroup returns a child logger that prefixes subsequent field keys with name.
//
//nolint:ireturn
func (l *GoLogger) WithGroup(name string) Logger {
	if l == nil {
		return &GoLogger{}
	}

	group := name
	if l.group != "" {
		group = l.group + "." + name
	}

	return &GoLogger{Level: l.Level, fields: l.fields, group: group, out: l.out, mu: l.mu}
}

// Enabled reports whether level is within the configured verbosity.
func (l *GoLogger) Enabled(level Level) bool {
	if l == nil {
		return false
	}

	return l.Level >= level
}

// Sync is a no-op; the standard logger writes synchronously.
func (l *GoLogger) Sync(_ context.Context) error { return nil }

func (l *GoLogger) hydrate(level Level, msg string, fields []Field) string {
	var sb strings.Builder

	sb.WriteString("[")
	sb.WriteString(level.String())
	sb.WriteString("] ")
	sb.WriteString(sanitizeLogString(msg))

	all := make([]Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)

	if len(all) == 0 {
		return sb.String()
	}

	parts := make([]string, 0, len(all))

	for _, f := range all {
		key := f.Key
		if l.group != "" {
			key = l.group + "." + key
		}

		parts = append(parts, fmt.Sprintf("%s=%s", key, sanitizeLogString(fmt.Sprint(f.Value))))
	}

	sb.WriteString(" [")
	sb.WriteString(strings.Join(parts, ", "))
	sb.WriteString("]")

	return sb.String()
}
