package assert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"runtime/debug"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/LerianStudio/lib-facemesh/facemesh/log"
	"github.com/LerianStudio/lib-facemesh/facemesh/runtime"
)

// Logger defines the minimal logging interface required by assertions.
// This interface is satisfied by facemesh/log.Logger.
type Logger interface {
	Log(ctx context.Context, level log.Level, msg string, fields ...log.Field)
}

// Asserter evaluates invariants for one component and operation.
type Asserter struct {
	ctx       context.Context
	logger    Logger
	component string
	operation string
}

// ErrAssertionFailed is the sentinel error for failed assertions.
var ErrAssertionFailed = errors.New("assertion failed")

// AssertionError describes a failed assertion.
type AssertionError struct {
	Assertion string
	Message   string
	Component string
	Operation string
	Details   string
}

// Error returns the formatted assertion failure message.
func (e *AssertionError) Error() string {
	if e == nil {
		return ErrAssertionFailed.Error()
	}

	if e.Details == "" {
		return "assertion failed: " + e.Message
	}

	return "assertion failed: " + e.Message + "\n" + e.Details
}

// Unwrap returns ErrAssertionFailed.
func (e *AssertionError) Unwrap() error {
	return ErrAssertionFailed
}

// New creates an Asserter. component and operation label telemetry.
//
//nolint:contextcheck // a nil ctx falls back to Background
func New(ctx context.Context, logger Logger, component, operation string) *Asserter {
	if ctx == nil {
		ctx = context.Background()
	}

	return &Asserter{
		ctx:       ctx,
		logger:    logger,
		component: component,
		operation: operation,
	}
}

// That returns an error if ok is false.
func (a *Asserter) That(ctx context.Context, ok bool, msg string, kv ...any) error {
	if ok {
		return nil
	}

	return a.fail(ctx, "That", msg, kv...)
}

// NotNil returns an error if v is nil, including typed nils held in an interface.
func (a *Asserter) NotNil(ctx context.Context, v any, msg string, kv ...any) error {
	if !isNil(v) {
		return nil
	}

	return a.fail(ctx, "NotNil", msg, kv...)
}

// NotEmpty returns an error if s is empty.
func (a *Asserter) NotEmpty(ctx context.Context, s, msg string, kv ...any) error {
	if s != "" {
		return nil
	}

	return a.fail(ctx, "NotEmpty", msg, kv...)
}

// NoError returns an error if err is not nil. The original error text and
// type are added to the assertion details.
func (a *Asserter) NoError(ctx context.Context, err error, msg string, kv ...any) error {
	if err == nil {
		return nil
	}

	pairs := make([]any, 0, len(kv)+4)
	pairs = append(pairs, "error", err.Error(), "error_type", fmt.Sprintf("%T", err))
	pairs = append(pairs, kv...)

	return a.fail(ctx, "NoError", msg, pairs...)
}

// Never always returns an error. Use it on unreachable branches.
func (a *Asserter) Never(ctx context.Context, msg string, kv ...any) error {
	return a.fail(ctx, "Never", msg, kv...)
}

const maxValueLength = 200

func truncateValue(v any) string {
	s := fmt.Sprintf("%v", v)
	if len(s) <= maxValueLength {
		return s
	}

	cut := maxValueLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}

	return s[:cut] + "... (truncated " + strconv.Itoa(len(s)-cut) + " bytes)"
}

func (a *Asserter) fail(ctx context.Context, assertion, msg string, kv ...any) error {
	ctx, logger, component, operation := a.values(ctx)
	details := formatKeyValueLines(withContextPairs(assertion, component, operation, kv))

	var stack []byte
	if shouldIncludeStack() {
		stack = debug.Stack()
	}

	logAssertion(ctx, logger, formatLogMessage(msg, details, stack))
	recordAssertionMetric(ctx, component, operation, assertion)
	recordAssertionToSpan(ctx, assertion, msg, stack, component, operation)

	return &AssertionError{
		Assertion: assertion,
		Message:   msg,
		Component: component,
		Operation: operation,
		Details:   details,
	}
}

func (a *Asserter) values(ctx context.Context) (context.Context, Logger, string, string) {
	if a == nil {
		if ctx == nil {
			ctx = context.Background()
		}

		return ctx, nil, "", ""
	}

	if ctx == nil {
		ctx = a.ctx
	}

	if ctx == nil {
		ctx = context.Background()
	}

	return ctx, a.logger, a.component, a.operation
}

// shouldIncludeStack honours runtime production mode first, then ENV_NAME.
func shouldIncludeStack() bool {
	if runtime.IsProductionMode() {
		return false
	}

	return !strings.EqualFold(strings.TrimSpace(os.Getenv("ENV_NAME")), "production")
}

func withContextPairs(assertion, component, operation string, kv []any) []any {
	pairs := make([]any, 0, len(kv)+6)
	pairs = append(pairs, "assertion", assertion)

	if component != "" {
		pairs = append(pairs, "component", component)
	}

	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}

	return append(pairs, kv...)
}

func formatKeyValueLines(kv []any) string {
	if len(kv) == 0 {
		return ""
	}

	var sb strings.Builder

	for i := 0; i < len(kv); i += 2 {
		if i > 0 {
			sb.WriteString("\n")
		}

		var value any = "MISSING_VALUE"
		if i+1 < len(kv) {
			value = kv[i+1]
		}

		fmt.Fprintf(&sb, "    %v=%v", kv[i], truncateValue(value))
	}

	return sb.String()
}

func formatLogMessage(msg, details string, stack []byte) string {
	var sb strings.Builder

	sb.WriteString("ASSERTION FAILED: ")
	sb.WriteString(msg)

	if details != "" {
		sb.WriteString("\n")
		sb.WriteString(details)
	}

	if len(stack) > 0 {
		sb.WriteString("\nstack trace:\n")
		sb.Write(stack)
	}

	return sb.String()
}

func logAssertion(ctx context.Context, logger Logger, message string) {
	if logger != nil {
		logger.Log(ctx, log.LevelError, message)
		return
	}

	fmt.Fprintln(os.Stderr, message)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
