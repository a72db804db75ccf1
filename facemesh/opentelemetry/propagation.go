package opentelemetry

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// InjectHTTPContext writes the trace context of ctx into headers.
func InjectHTTPContext(ctx context.Context, headers http.Header) {
	if headers == nil {
		return
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(headers))
}

// ExtractHTTPContext returns c's user context enriched with any trace context
// carried by the request headers.
func ExtractHTTPContext(c *fiber.Ctx) context.Context {
	carrier := propagation.HeaderCarrier(c.GetReqHeaders())

	return otel.GetTextMapPropagator().Extract(c.UserContext(), carrier)
}

// GetTraceIDFromContext returns the active trace id, or "" when there is none.
func GetTraceIDFromContext(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}

	return sc.TraceID().String()
}

// GetTraceStateFromContext returns the active trace state, or "".
func GetTraceStateFromContext(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}

	return sc.TraceState().String()
}
