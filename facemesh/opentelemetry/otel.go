package opentelemetry

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	constant "github.com/LerianStudio/lib-facemesh/facemesh/constants"
	"github.com/LerianStudio/lib-facemesh/facemesh/log"
	"github.com/LerianStudio/lib-facemesh/facemesh/opentelemetry/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrNilTelemetryLogger is returned when TelemetryConfig.Logger is nil.
	ErrNilTelemetryLogger = errors.New("telemetry config logger cannot be nil")
	// ErrEmptyEndpoint is returned when telemetry is enabled without a collector endpoint.
	ErrEmptyEndpoint = errors.New("collector exporter endpoint cannot be empty when telemetry is enabled")
	// ErrNilTelemetry is returned by methods called on a nil *Telemetry.
	ErrNilTelemetry = errors.New("telemetry is nil")
	// ErrNilShutdown is returned when a Telemetry has no shutdown function.
	ErrNilShutdown = errors.New("telemetry shutdown function is nil")
)

// TelemetryConfig configures NewTelemetry.
type TelemetryConfig struct {
	LibraryName               string
	ServiceName               string
	ServiceVersion            string
	DeploymentEnv             string
	CollectorExporterEndpoint string
	EnableTelemetry           bool
	Logger                    log.Logger
	// Propagator defaults to W3C TraceContext plus Baggage.
	Propagator propagation.TextMapPropagator
}

// Telemetry holds the providers built by NewTelemetry.
type Telemetry struct {
	TelemetryConfig
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	LoggerProvider *sdklog.LoggerProvider
	MetricsFactory *metrics.MetricsFactory

	shutdown    func()
	shutdownCtx func(context.Context) error
}

func (cfg TelemetryConfig) newResource() *sdkresource.Resource {
	return sdkresource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.DeploymentEnv),
		semconv.TelemetrySDKName(constant.TelemetrySDKName),
		semconv.TelemetrySDKLanguageGo,
	)
}

// NewTelemetry builds the providers. It does not install them globally; call ApplyGlobals for that.
func NewTelemetry(cfg TelemetryConfig) (*Telemetry, error) {
	if cfg.Logger == nil {
		return nil, ErrNilTelemetryLogger
	}

	if cfg.Propagator == nil {
		cfg.Propagator = propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
	}

	if !cfg.EnableTelemetry {
		return newDisabledTelemetry(cfg)
	}

	cfg.CollectorExporterEndpoint = strings.TrimSpace(cfg.CollectorExporterEndpoint)
	if cfg.CollectorExporterEndpoint == "" {
		return nil, ErrEmptyEndpoint
	}

	ctx := context.Background()
	l := cfg.Logger

	l.Log(ctx, log.LevelInfo, "initializing telemetry", log.String("endpoint", cfg.CollectorExporterEndpoint))

	tExp, err := otlptracegrpc.New(ctx, otlptracegrpc.WithEndpoint(cfg.CollectorExporterEndpoint), otlptracegrpc.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("can't initialize tracer exporter: %w", err)
	}

	mExp, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpoint(cfg.CollectorExporterEndpoint), otlpmetricgrpc.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("can't initialize metric exporter: %w", err)
	}

	lExp, err := otlploggrpc.New(ctx, otlploggrpc.WithEndpoint(cfg.CollectorExporterEndpoint), otlploggrpc.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("can't initialize logger exporter: %w", err)
	}

	res := cfg.newResource()

	tp := newTracerProvider(res, tExp)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(mExp)),
	)
	lp := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(lExp)),
	)

	factory, err := metrics.NewMetricsFactory(mp.Meter(cfg.LibraryName), l)
	if err != nil {
		return nil, err
	}

	tl := &Telemetry{
		TelemetryConfig: cfg,
		TracerProvider:  tp,
		MeterProvider:   mp,
		LoggerProvider:  lp,
		MetricsFactory:  factory,
	}

	tl.shutdownCtx = func(ctx context.Context) error {
		// Provider shutdown also stops the exporters behind it.
		return shutdownAll(ctx, l, tp, mp, lp)
	}
	tl.shutdown = func() { _ = tl.shutdownCtx(context.Background()) }

	l.Log(ctx, log.LevelInfo, "telemetry initialized")

	return tl, nil
}

func newDisabledTelemetry(cfg TelemetryConfig) (*Telemetry, error) {
	cfg.Logger.Log(context.Background(), log.LevelWarn, "telemetry turned off")

	res := cfg.newResource()
	tp := newTracerProvider(res, nil)
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithResource(res))
	lp := sdklog.NewLoggerProvider(sdklog.WithResource(res))

	factory, err := metrics.NewMetricsFactory(mp.Meter(cfg.LibraryName), cfg.Logger)
	if err != nil {
		return nil, err
	}

	tl := &Telemetry{
		TelemetryConfig: cfg,
		TracerProvider:  tp,
		MeterProvider:   mp,
		LoggerProvider:  lp,
		MetricsFactory:  factory,
	}

	tl.shutdownCtx = func(ctx context.Context) error {
		return shutdownAll(ctx, cfg.Logger, tp, mp, lp)
	}
	tl.shutdown = func() { _ = tl.shutdownCtx(context.Background()) }

	return tl, nil
}

func newTracerProvider(res *sdkresource.Resource, exp *otlptrace.Exporter) *sdktrace.TracerProvider {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(AttrBagSpanProcessor{}),
	}

	if exp != nil {
		opts = append(opts, sdktrace.WithBatcher(exp))
	}

	return sdktrace.NewTracerProvider(opts...)
}

type shutdownable interface {
	Shutdown(ctx context.Context) error
}

func shutdownAll(ctx context.Context, l log.Logger, components ...shutdownable) error {
	var errs []error

	for _, c := range components {
		if isNilShutdownable(c) {
			continue
		}

		if err := c.Shutdown(ctx); err != nil {
			l.Log(ctx, log.LevelError, "telemetry shutdown failed", log.String("component", fmt.Sprintf("%T", c)), log.Err(err))
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func isNilShutdownable(s shutdownable) bool {
	if s == nil {
		return true
	}

	v := reflect.ValueOf(s)

	return v.Kind() == reflect.Pointer && v.IsNil()
}

// ApplyGlobals installs the providers and propagator as OpenTelemetry globals.
func (tl *Telemetry) ApplyGlobals() {
	if tl == nil {
		return
	}

	if tl.TracerProvider != nil {
		otel.SetTracerProvider(tl.TracerProvider)
	}

	if tl.MeterProvider != nil {
		otel.SetMeterProvider(tl.MeterProvider)
	}

	if tl.LoggerProvider != nil {
		global.SetLoggerProvider(tl.LoggerProvider)
	}

	if tl.Propagator != nil {
		otel.SetTextMapPropagator(tl.Propagator)
	}
}

// Tracer returns a named tracer from the telemetry's provider.
//
//nolint:ireturn
func (tl *Telemetry) Tracer(name string) (trace.Tracer, error) {
	if tl == nil || tl.TracerProvider == nil {
		return nil, ErrNilTelemetry
	}

	return tl.TracerProvider.Tracer(name), nil
}

// Meter returns a named meter from the telemetry's provider.
//
//nolint:ireturn
func (tl *Telemetry) Meter(name string) (metric.Meter, error) {
	if tl == nil || tl.MeterProvider == nil {
		return nil, ErrNilTelemetry
	}

	return tl.MeterProvider.Meter(name), nil
}

// ShutdownTelemetry flushes and stops all providers using a background context.
func (tl *Telemetry) ShutdownTelemetry() {
	if tl == nil || tl.shutdown == nil {
		return
	}

	tl.shutdown()
}

// ShutdownTelemetryWithContext flushes and stops all providers, honouring ctx's deadline.
func (tl *Telemetry) ShutdownTelemetryWithContext(ctx context.Context) error {
	if tl == nil {
		return ErrNilTelemetry
	}

	if tl.shutdownCtx != nil {
		return tl.shutdownCtx(ctx)
	}

	if tl.shutdown != nil {
		tl.shutdown()
		return nil
	}

	return ErrNilShutdown
}
