package opentelemetry

import (
	"context"

	"github.com/LerianStudio/lib-facemesh/facemesh"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// AttrBagSpanProcessor copies request-scoped attributes from context into every span at start.
type AttrBagSpanProcessor struct{}

// OnStart applies the attribute bag stored in ctx to s.
func (AttrBagSpanProcessor) OnStart(ctx context.Context, s sdktrace.ReadWriteSpan) {
	if kv := facemesh.AttributesFromContext(ctx); len(kv) > 0 {
		s.SetAttributes(kv...)
	}
}

func (AttrBagSpanProcessor) OnEnd(sdktrace.ReadOnlySpan) {}

func (AttrBagSpanProcessor) Shutdown(context.Context) error { return nil }

func (AttrBagSpanProcessor) ForceFlush(context.Context) error { return nil }
