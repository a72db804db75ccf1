package facemesh

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/LerianStudio/lib-facemesh/facemesh/assert"
	"github.com/LerianStudio/lib-facemesh/facemesh/log"
	"github.com/LerianStudio/lib-facemesh/facemesh/opentelemetry/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrNilParentContext indicates that a nil parent context was provided.
var ErrNilParentContext = errors.New("cannot create context from nil parent")

const defaultInstrumentationName = "facemesh.default"

type customContextKey string

// CustomContextKey is the context key used to store CustomContextKeyValue.
var CustomContextKey = customContextKey("custom_context")

// CustomContextKeyValue holds the request-scoped facilities attached to a context.
type CustomContextKeyValue struct {
	HeaderID      string
	Tracer        trace.Tracer
	Logger        log.Logger
	MetricFactory *metrics.MetricsFactory

	// AttrBag is applied to every span started under the context.
	// Keep it low cardinality: request id, route, digest algorithm.
	AttrBag []attribute.KeyValue
}

// values returns a copy of the container stored in ctx so that derived
// contexts never mutate their parent's values.
func values(ctx context.Context) *CustomContextKeyValue {
	if v, ok := ctx.Value(CustomContextKey).(*CustomContextKeyValue); ok && v != nil {
		clone := *v
		clone.AttrBag = append([]attribute.KeyValue(nil), v.AttrBag...)

		return &clone
	}

	return &CustomContextKeyValue{}
}

// NewLoggerFromContext returns the logger stored in ctx, or a NopLogger.
//
//nolint:ireturn
func NewLoggerFromContext(ctx context.Context) log.Logger {
	if v, ok := ctx.Value(CustomContextKey).(*CustomContextKeyValue); ok && v != nil && v.Logger != nil {
		return v.Logger
	}

	return log.NewNop()
}

// ContextWithLogger returns a context carrying logger.
func ContextWithLogger(ctx context.Context, logger log.Logger) context.Context {
	v := values(ctx)
	v.Logger = logger

	return context.WithValue(ctx, CustomContextKey, v)
}

// ContextWithTracer returns a context carrying tracer.
func ContextWithTracer(ctx context.Context, tracer trace.Tracer) context.Context {
	v := values(ctx)
	v.Tracer = tracer

	return context.WithValue(ctx, CustomContextKey, v)
}

// ContextWithMetricFactory returns a context carrying factory.
func ContextWithMetricFactory(ctx context.Context, factory *metrics.MetricsFactory) context.Context {
	v := values(ctx)
	v.MetricFactory = factory

	return context.WithValue(ctx, CustomContextKey, v)
}

// ContextWithHeaderID returns a context carrying the request id.
func ContextWithHeaderID(ctx context.Context, headerID string) context.Context {
	v := values(ctx)
	v.HeaderID = headerID

	return context.WithValue(ctx, CustomContextKey, v)
}

// TrackingComponents bundles the telemetry facilities extracted from a context.
type TrackingComponents struct {
	Logger        log.Logger
	Tracer        trace.Tracer
	HeaderID      string
	MetricFactory *metrics.MetricsFactory
}

// NewTrackingFromContext extracts logger, tracer, request id and metrics factory from ctx.
// Missing components are replaced by working defaults, never nil.
//
//nolint:ireturn
func NewTrackingFromContext(ctx context.Context) (log.Logger, trace.Tracer, string, *metrics.MetricsFactory) {
	c := extractTrackingComponents(ctx)

	return c.Logger, c.Tracer, c.HeaderID, c.MetricFactory
}

func extractTrackingComponents(ctx context.Context) TrackingComponents {
	v, ok := ctx.Value(CustomContextKey).(*CustomContextKeyValue)
	if !ok || v == nil {
		return TrackingComponents{
			Logger:        log.NewNop(),
			Tracer:        otel.Tracer(defaultInstrumentationName),
			HeaderID:      uuid.New().String(),
			MetricFactory: resolveMetricFactory(nil),
		}
	}

	c := TrackingComponents{
		Logger:        v.Logger,
		Tracer:        v.Tracer,
		HeaderID:      strings.TrimSpace(v.HeaderID),
		MetricFactory: resolveMetricFactory(v.MetricFactory),
	}

	if c.Logger == nil {
		c.Logger = log.NewNop()
	}

	if c.Tracer == nil {
		c.Tracer = otel.Tracer(defaultInstrumentationName)
	}

	if c.HeaderID == "" {
		c.HeaderID = uuid.New().String()
	}

	return c
}

func resolveMetricFactory(factory *metrics.MetricsFactory) *metrics.MetricsFactory {
	if factory != nil {
		return factory
	}

	f, err := metrics.NewMetricsFactory(otel.GetMeterProvider().Meter(defaultInstrumentationName), log.NewNop())
	if err != nil {
		a := assert.New(context.Background(), nil, "facemesh", "resolveMetricFactory")
		_ = a.NoError(context.Background(), err, "failed to create default MetricsFactory")

		return metrics.NewNopFactory()
	}

	return f
}

// ContextWithSpanAttributes appends kv to the request's attribute bag.
// Call it once at ingress; every span started afterwards receives the attributes.
func ContextWithSpanAttributes(ctx context.Context, kv ...attribute.KeyValue) context.Context {
	if len(kv) == 0 {
		return ctx
	}

	v := values(ctx)
	v.AttrBag = append(v.AttrBag, kv...)

	return context.WithValue(ctx, CustomContextKey, v)
}

// AttributesFromContext returns a copy of the attribute bag stored in ctx.
func AttributesFromContext(ctx context.Context) []attribute.KeyValue {
	v, ok := ctx.Value(CustomContextKey).(*CustomContextKeyValue)
	if !ok || v == nil || len(v.AttrBag) == 0 {
		return nil
	}

	out := make([]attribute.KeyValue, len(v.AttrBag))
	copy(out, v.AttrBag)

	return out
}

// WithTimeoutSafe is context.WithTimeout that keeps a shorter parent deadline.
func WithTimeoutSafe(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	if parent == nil {
		return nil, nil, ErrNilParentContext
	}

	if deadline, ok := parent.Deadline(); ok && time.Until(deadline) < timeout {
		ctx, cancel := context.WithCancel(parent)
		return ctx, cancel, nil
	}

	ctx, cancel := context.WithTimeout(parent, timeout)

	return ctx, cancel, nil
}
