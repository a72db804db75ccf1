package http

import (
	"net/url"

	"github.com/LerianStudio/lib-facemesh/facemesh"
	constant "github.com/LerianStudio/lib-facemesh/facemesh/constants"
	"github.com/LerianStudio/lib-facemesh/facemesh/opentelemetry"
	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TelemetryMiddleware starts one server span per request.
type TelemetryMiddleware struct {
	Telemetry *opentelemetry.Telemetry
}

// NewTelemetryMiddleware creates a new instance of TelemetryMiddleware.
func NewTelemetryMiddleware(tl *opentelemetry.Telemetry) *TelemetryMiddleware {
	return &TelemetryMiddleware{Telemetry: tl}
}

// WithTelemetry continues any incoming W3C trace, starts a server span named
// "METHOD /route" and stores tracer, metrics factory and request attributes in
// the user context. Handler errors are rendered before the status is recorded.
// A nil telemetry or an excluded path passes straight through.
func (tm *TelemetryMiddleware) WithTelemetry(excludedRoutes ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tm == nil || tm.Telemetry == nil || isRouteExcluded(c.Path(), excludedRoutes) {
			return c.Next()
		}

		tracer, err := tm.Telemetry.Tracer(tm.Telemetry.LibraryName)
		if err != nil {
			return c.Next()
		}

		setRequestHeaderID(c)

		_, _, reqID, _ := facemesh.NewTrackingFromContext(c.UserContext())

		c.SetUserContext(facemesh.ContextWithSpanAttributes(c.UserContext(),
			attribute.String(constant.AttrPrefixAppRequest+"request_id", reqID),
		))

		ctx, span := tracer.Start(opentelemetry.ExtractHTTPContext(c), c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		span.SetAttributes(
			attribute.String("http.method", c.Method()),
			attribute.String("http.url", sanitizeURL(c.OriginalURL())),
			attribute.String("http.scheme", c.Protocol()),
			attribute.String("http.host", c.Hostname()),
			attribute.String("http.user_agent", c.Get(constant.HeaderUserAgent)),
		)

		ctx = facemesh.ContextWithTracer(ctx, tracer)
		if tm.Telemetry.MetricsFactory != nil {
			ctx = facemesh.ContextWithMetricFactory(ctx, tm.Telemetry.MetricsFactory)
		}

		c.SetUserContext(ctx)

		err = c.Next()
		renderHandlerError(c, err)

		status := c.Response().StatusCode()

		span.SetAttributes(
			attribute.String("http.route", c.Route().Path),
			attribute.Int("http.status_code", status),
		)

		if err != nil && status >= fiber.StatusInternalServerError {
			opentelemetry.HandleSpanError(span, "Request failed", err)
		}

		return nil
	}
}

func isRouteExcluded(path string, excluded []string) bool {
	for _, r := range excluded {
		if path == r {
			return true
		}
	}

	return false
}

// sanitizeURL drops userinfo and fragment; query strings are kept since
// input_string is the only parameter and carries no credentials.
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.User = nil
	u.Fragment = ""

	return u.String()
}
