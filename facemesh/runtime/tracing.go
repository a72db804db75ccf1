package runtime

import (
	"context"
	"errors"
	"fmt"

	constant "github.com/LerianStudio/lib-facemesh/facemesh/constants"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrPanic is the sentinel wrapped into span errors for recovered panics.
var ErrPanic = errors.New("panic")

// PanicSpanEventName is the span event name used for recovered panics.
const PanicSpanEventName = constant.EventPanicRecovered

// RecordPanicToSpan records a recovered panic on the span active in ctx.
func RecordPanicToSpan(ctx context.Context, panicValue any, stack []byte, goroutineName string) {
	RecordPanicToSpanWithComponent(ctx, panicValue, stack, "", goroutineName)
}

// RecordPanicToSpanWithComponent records a recovered panic, labelled with component,
// on the span active in ctx. Non-recording spans are ignored.
func RecordPanicToSpanWithComponent(ctx context.Context, panicValue any, stack []byte, component, goroutineName string) {
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	production := IsProductionMode()

	value := formatPanicValue(panicValue)
	if production {
		value = redactedPanicMsg
	}

	attrs := []attribute.KeyValue{
		attribute.String(constant.AttrPrefixPanic+"value", value),
		attribute.String(constant.AttrPrefixPanic+"goroutine_name", goroutineName),
	}

	if component != "" {
		attrs = append(attrs, attribute.String(constant.AttrPrefixPanic+"component", component))
	}

	if len(stack) > 0 && !production {
		attrs = append(attrs, attribute.String(constant.AttrPrefixPanic+"stack", string(stack)))
	}

	span.AddEvent(PanicSpanEventName, trace.WithAttributes(attrs...))
	span.RecordError(fmt.Errorf("%w: %s", ErrPanic, value))
	span.SetStatus(codes.Error, "panic recovered in "+goroutineName)
}
