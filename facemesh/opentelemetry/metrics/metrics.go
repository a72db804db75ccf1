package metrics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/LerianStudio/lib-facemesh/facemesh/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MetricsFactory creates OpenTelemetry instruments lazily and caches them for concurrent reuse.
type MetricsFactory struct {
	meter      metric.Meter
	counters   sync.Map // string -> metric.Int64Counter
	gauges     sync.Map // string -> metric.Int64Gauge
	histograms sync.Map // string -> metric.Int64Histogram
	logger     log.Logger
}

// ErrNilMeter indicates that a nil OTEL meter was provided.
var ErrNilMeter = errors.New("metric meter cannot be nil")

// Metric describes an instrument. Buckets only apply to histograms.
type Metric struct {
	Name        string
	Description string
	Unit        string
	Buckets     []float64
}

// Default histogram bucket configurations.
var (
	// DefaultMillisecondBuckets for request and pipeline latencies measured in ms.
	DefaultMillisecondBuckets = []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500}

	// DefaultCountBuckets for small cardinalities such as vertices per mesh.
	DefaultCountBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000}
)

// NewMetricsFactory creates a new MetricsFactory instance.
func NewMetricsFactory(meter metric.Meter, logger log.Logger) (*MetricsFactory, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}

	if logger == nil {
		logger = log.NewNop()
	}

	return &MetricsFactory{
		meter:  meter,
		logger: logger,
	}, nil
}

// NewNopFactory returns a MetricsFactory backed by OpenTelemetry's no-op meter.
func NewNopFactory() *MetricsFactory {
	return &MetricsFactory{
		meter:  noop.NewMeterProvider().Meter("nop"),
		logger: log.NewNop(),
	}
}

// Counter creates or retrieves a counter and returns a builder for it.
func (f *MetricsFactory) Counter(m Metric) (*CounterBuilder, error) {
	counter, err := f.getOrCreateCounter(m)
	if err != nil {
		return nil, err
	}

	return &CounterBuilder{counter: counter, name: m.Name}, nil
}

// Gauge creates or retrieves a gauge and returns a builder for it.
func (f *MetricsFactory) Gauge(m Metric) (*GaugeBuilder, error) {
	gauge, err := f.getOrCreateGauge(m)
	if err != nil {
		return nil, err
	}

	return &GaugeBuilder{gauge: gauge, name: m.Name}, nil
}

// Histogram creates or retrieves a histogram and returns a builder for it.
// When m.Buckets is nil the buckets are chosen from the metric name.
func (f *MetricsFactory) Histogram(m Metric) (*HistogramBuilder, error) {
	if m.Buckets == nil {
		m.Buckets = selectDefaultBuckets(m.Name)
	}

	histogram, err := f.getOrCreateHistogram(m)
	if err != nil {
		return nil, err
	}

	return &HistogramBuilder{histogram: histogram, name: m.Name}, nil
}

func selectDefaultBuckets(name string) []float64 {
	nameL := strings.ToLower(name)

	switch {
	case strings.HasSuffix(nameL, "_ms"),
		strings.Contains(nameL, "latency"),
		strings.Contains(nameL, "duration"):
		return DefaultMillisecondBuckets
	case strings.Contains(nameL, "count"),
		strings.Contains(nameL, "vertices"),
		strings.Contains(nameL, "faces"):
		return DefaultCountBuckets
	default:
		return DefaultMillisecondBuckets
	}
}

func (f *MetricsFactory) getOrCreateCounter(m Metric) (metric.Int64Counter, error) {
	if cached, ok := f.counters.Load(m.Name); ok {
		if c, ok := cached.(metric.Int64Counter); ok {
			return c, nil
		}

		return nil, fmt.Errorf("counter cache contains invalid type for %q", m.Name)
	}

	var opts []metric.Int64CounterOption
	if m.Description != "" {
		opts = append(opts, metric.WithDescription(m.Description))
	}

	if m.Unit != "" {
		opts = append(opts, metric.WithUnit(m.Unit))
	}

	counter, err := f.meter.Int64Counter(m.Name, opts...)
	if err != nil {
		f.logCreateFailure("counter", m.Name, err)
		return nil, fmt.Errorf("create counter %q: %w", m.Name, err)
	}

	actual, _ := f.counters.LoadOrStore(m.Name, counter)
	if c, ok := actual.(metric.Int64Counter); ok {
		return c, nil
	}

	return nil, fmt.Errorf("counter cache contains invalid type for %q", m.Name)
}

func (f *MetricsFactory) getOrCreateGauge(m Metric) (metric.Int64Gauge, error) {
	if cached, ok := f.gauges.Load(m.Name); ok {
		if g, ok := cached.(metric.Int64Gauge); ok {
			return g, nil
		}

		return nil, fmt.Errorf("gauge cache contains invalid type for %q", m.Name)
	}

	var opts []metric.Int64GaugeOption
	if m.Description != "" {
		opts = append(opts, metric.WithDescription(m.Description))
	}

	if m.Unit != "" {
		opts = append(opts, metric.WithUnit(m.Unit))
	}

	gauge, err := f.meter.Int64Gauge(m.Name, opts...)
	if err != nil {
		f.logCreateFailure("gauge", m.Name, err)
		return nil, fmt.Errorf("create gauge %q: %w", m.Name, err)
	}

	actual, _ := f.gauges.LoadOrStore(m.Name, gauge)
	if g, ok := actual.(metric.Int64Gauge); ok {
		return g, nil
	}

	return nil, fmt.Errorf("gauge cache contains invalid type for %q", m.Name)
}

// getOrCreateHistogram keys the cache by name plus buckets so that distinct
// bucket layouts yield distinct instruments.
func (f *MetricsFactory) getOrCreateHistogram(m Metric) (metric.Int64Histogram, error) {
	key := histogramCacheKey(m.Name, m.Buckets)

	if cached, ok := f.histograms.Load(key); ok {
		if h, ok := cached.(metric.Int64Histogram); ok {
			return h, nil
		}

		return nil, fmt.Errorf("histogram cache contains invalid type for %q", key)
	}

	var opts []metric.Int64HistogramOption
	if m.Description != "" {
		opts = append(opts, metric.WithDescription(m.Description))
	}

	if m.Unit != "" {
		opts = append(opts, metric.WithUnit(m.Unit))
	}

	if m.Buckets != nil {
		opts = append(opts, metric.WithExplicitBucketBoundaries(m.Buckets...))
	}

	histogram, err := f.meter.Int64Histogram(m.Name, opts...)
	if err != nil {
		f.logCreateFailure("histogram", m.Name, err)
		return nil, fmt.Errorf("create histogram %q: %w", m.Name, err)
	}

	actual, _ := f.histograms.LoadOrStore(key, histogram)
	if h, ok := actual.(metric.Int64Histogram); ok {
		return h, nil
	}

	return nil, fmt.Errorf("histogram cache contains invalid type for %q", key)
}

func (f *MetricsFactory) logCreateFailure(kind, name string, err error) {
	if f.logger == nil {
		return
	}

	f.logger.Log(context.Background(), log.LevelError, "failed to create "+kind+" metric",
		log.String("metric_name", name), log.Err(err))
}

func histogramCacheKey(name string, buckets []float64) string {
	if len(buckets) == 0 {
		return name
	}

	sorted := make([]float64, len(buckets))
	copy(sorted, buckets)
	sort.Float64s(sorted)

	parts := make([]string, len(sorted))
	for i, b := range sorted {
		parts[i] = strconv.FormatFloat(b, 'g', -1, 64)
	}

	return name + ":" + strings.Join(parts, ",")
}
