package runtime

import (
	"context"
	"fmt"
	"sync"
)

// ErrorReporter forwards recovered panics to an external error tracking service.
// Implementations must be safe for concurrent use and must not panic.
type ErrorReporter interface {
	CaptureException(ctx context.Context, err error, tags map[string]string)
}

var (
	errorReporterInstance ErrorReporter
	errorReporterMu       sync.RWMutex
)

// SetErrorReporter configures the global error reporter. Pass nil to disable reporting.
func SetErrorReporter(reporter ErrorReporter) {
	errorReporterMu.Lock()
	defer errorReporterMu.Unlock()

	errorReporterInstance = reporter
}

// GetErrorReporter returns the configured error reporter, or nil.
func GetErrorReporter() ErrorReporter {
	errorReporterMu.RLock()
	defer errorReporterMu.RUnlock()

	return errorReporterInstance
}

var (
	productionMode   bool
	productionModeMu sync.RWMutex
)

const (
	redactedPanicMsg = "panic recovered (details redacted)"
	maxReportedStack = 4096
)

// SetProductionMode toggles redaction of panic values and stack traces in
// logs, spans and error reports. The face server enables it whenever DEBUG is off.
func SetProductionMode(enabled bool) {
	productionModeMu.Lock()
	defer productionModeMu.Unlock()

	productionMode = enabled
}

// IsProductionMode reports whether production mode is enabled.
func IsProductionMode() bool {
	productionModeMu.RLock()
	defer productionModeMu.RUnlock()

	return productionMode
}

func reportPanicToErrorService(ctx context.Context, panicValue any, stack []byte, component, goroutineName string) {
	reporter := GetErrorReporter()
	if reporter == nil {
		return
	}

	production := IsProductionMode()

	tags := map[string]string{
		"component":      component,
		"goroutine_name": goroutineName,
		"panic_type":     "recovered",
	}

	if len(stack) > 0 && !production {
		trace := string(stack)
		if len(trace) > maxReportedStack {
			trace = trace[:maxReportedStack] + "\n...[truncated]"
		}

		tags["stack_trace"] = trace
	}

	reporter.CaptureException(ctx, toPanicError(panicValue, production), tags)
}

type panicError struct {
	message string
}

func (e *panicError) Error() string {
	return e.message
}

func toPanicError(panicValue any, production bool) error {
	if production {
		return &panicError{message: redactedPanicMsg}
	}

	switch v := panicValue.(type) {
	case error:
		return v
	case string:
		return &panicError{message: v}
	default:
		return &panicError{message: "panic: " + formatPanicValue(panicValue)}
	}
}

func formatPanicValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "<nil>"
	case string:
		return v
	case error:
		return v.Error()
	default:
		return fmt.Sprintf("%v", value)
	}
}
