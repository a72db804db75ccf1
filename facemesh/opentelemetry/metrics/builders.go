package metrics

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrNilCounter is returned when a counter builder has no instrument.
	ErrNilCounter = errors.New("counter instrument is nil")
	// ErrNilGauge is returned when a gauge builder has no instrument.
	ErrNilGauge = errors.New("gauge instrument is nil")
	// ErrNilHistogram is returned when a histogram builder has no instrument.
	ErrNilHistogram = errors.New("histogram instrument is nil")
)

func labelsToAttrs(base []attribute.KeyValue, labels map[string]string) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(base)+len(labels))
	out = append(out, base...)

	for k, v := range labels {
		out = append(out, attribute.String(k, v))
	}

	return out
}

func appendAttrs(base []attribute.KeyValue, attrs []attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(base)+len(attrs))
	out = append(out, base...)

	return append(out, attrs...)
}

// CounterBuilder records counter increments. Builders are immutable; each
// With* call returns a copy.
type CounterBuilder struct {
	counter metric.Int64Counter
	name    string
	attrs   []attribute.KeyValue
}

// WithLabels adds string labels to the counter.
func (c *CounterBuilder) WithLabels(labels map[string]string) *CounterBuilder {
	return &CounterBuilder{counter: c.counter, name: c.name, attrs: labelsToAttrs(c.attrs, labels)}
}

// WithAttributes adds OpenTelemetry attributes to the counter.
func (c *CounterBuilder) WithAttributes(attrs ...attribute.KeyValue) *CounterBuilder {
	return &CounterBuilder{counter: c.counter, name: c.name, attrs: appendAttrs(c.attrs, attrs)}
}

// Add records a counter increment.
func (c *CounterBuilder) Add(ctx context.Context, value int64) error {
	if c.counter == nil {
		return ErrNilCounter
	}

	c.counter.Add(ctx, value, metric.WithAttributes(c.attrs...))

	return nil
}

// AddOne increments the counter by one.
func (c *CounterBuilder) AddOne(ctx context.Context) error {
	return c.Add(ctx, 1)
}

// GaugeBuilder records instantaneous values.
type GaugeBuilder struct {
	gauge metric.Int64Gauge
	name  string
	attrs []attribute.KeyValue
}

// WithLabels adds string labels to the gauge.
func (g *GaugeBuilder) WithLabels(labels map[string]string) *GaugeBuilder {
	return &GaugeBuilder{gauge: g.gauge, name: g.name, attrs: labelsToAttrs(g.attrs, labels)}
}

// WithAttributes adds OpenTelemetry attributes to the gauge.
func (g *GaugeBuilder) WithAttributes(attrs ...attribute.KeyValue) *GaugeBuilder {
	return &GaugeBuilder{gauge: g.gauge, name: g.name, attrs: appendAttrs(g.attrs, attrs)}
}

// Set records the current value of the gauge.
func (g *GaugeBuilder) Set(ctx context.Context, value int64) error {
	if g.gauge == nil {
		return ErrNilGauge
	}

	g.gauge.Record(ctx, value, metric.WithAttributes(g.attrs...))

	return nil
}

// HistogramBuilder records distributions.
type HistogramBuilder struct {
	histogram metric.Int64Histogram
	name      string
	attrs     []attribute.KeyValue
}

// WithLabels adds string labels to the histogram.
func (h *HistogramBuilder) WithLabels(labels map[string]string) *HistogramBuilder {
	return &HistogramBuilder{histogram: h.histogram, name: h.name, attrs: labelsToAttrs(h.attrs, labels)}
}

// WithAttributes adds OpenTelemetry attributes to the histogram.
func (h *HistogramBuilder) WithAttributes(attrs ...attribute.KeyValue) *HistogramBuilder {
	return &HistogramBuilder{histogram: h.histogram, name: h.name, attrs: appendAttrs(h.attrs, attrs)}
}

// Record records a histogram value.
func (h *HistogramBuilder) Record(ctx context.Context, value int64) error {
	if h.histogram == nil {
		return ErrNilHistogram
	}

	h.histogram.Record(ctx, value, metric.WithAttributes(h.attrs...))

	return nil
}
