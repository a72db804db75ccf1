package runtime

import (
	"context"
	"sync"

	constant "github.com/LerianStudio/lib-facemesh/facemesh/constants"
	"github.com/LerianStudio/lib-facemesh/facemesh/log"
	"github.com/LerianStudio/lib-facemesh/facemesh/opentelemetry/metrics"
)

// PanicMetrics counts recovered panics through a MetricsFactory.
type PanicMetrics struct {
	factory *metrics.MetricsFactory
	logger  Logger
}

var panicRecoveredMetric = metrics.Metric{
	Name:        constant.MetricPanicRecoveredTotal,
	Unit:        "1",
	Description: "Total number of recovered panics",
}

var (
	panicMetricsInstance *PanicMetrics
	panicMetricsMu       sync.RWMutex
)

// InitPanicMetrics installs the panic counter. The optional logger reports
// metric recording failures. Calls after the first successful one are no-ops.
func InitPanicMetrics(factory *metrics.MetricsFactory, logger ...Logger) {
	panicMetricsMu.Lock()
	defer panicMetricsMu.Unlock()

	if factory == nil || panicMetricsInstance != nil {
		return
	}

	var l Logger
	if len(logger) > 0 {
		l = logger[0]
	}

	panicMetricsInstance = &PanicMetrics{factory: factory, logger: l}
}

// GetPanicMetrics returns the installed PanicMetrics, or nil.
func GetPanicMetrics() *PanicMetrics {
	panicMetricsMu.RLock()
	defer panicMetricsMu.RUnlock()

	return panicMetricsInstance
}

// ResetPanicMetrics clears the installed PanicMetrics. Intended for tests.
func ResetPanicMetrics() {
	panicMetricsMu.Lock()
	defer panicMetricsMu.Unlock()

	panicMetricsInstance = nil
}

// RecordPanicRecovered increments panic_recovered_total for component and goroutineName.
func (pm *PanicMetrics) RecordPanicRecovered(ctx context.Context, component, goroutineName string) {
	if pm == nil || pm.factory == nil {
		return
	}

	counter, err := pm.factory.Counter(panicRecoveredMetric)
	if err != nil {
		pm.warn(ctx, "failed to create panic metric counter", err)
		return
	}

	err = counter.
		WithLabels(map[string]string{
			"component":      constant.SanitizeMetricLabel(component),
			"goroutine_name": constant.SanitizeMetricLabel(goroutineName),
		}).
		AddOne(ctx)
	if err != nil {
		pm.warn(ctx, "failed to record panic metric", err)
	}
}

func (pm *PanicMetrics) warn(ctx context.Context, msg string, err error) {
	if pm.logger != nil {
		pm.logger.Log(ctx, log.LevelWarn, msg, log.Err(err))
	}
}

func recordPanicMetric(ctx context.Context, component, goroutineName string) {
	if pm := GetPanicMetrics(); pm != nil {
		pm.RecordPanicRecovered(ctx, component, goroutineName)
	}
}
