package assert

import (
	"context"
	"fmt"
	"sync"

	constant "github.com/LerianStudio/lib-facemesh/facemesh/constants"
	"github.com/LerianStudio/lib-facemesh/facemesh/opentelemetry/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// AssertionSpanEventName is the span event name for assertion failures.
const AssertionSpanEventName = constant.EventAssertionFailed

// AssertionMetrics counts failed assertions through a MetricsFactory.
type AssertionMetrics struct {
	factory *metrics.MetricsFactory
}

var assertionFailedMetric = metrics.Metric{
	Name:        constant.MetricAssertionFailedTotal,
	Unit:        "1",
	Description: "Total number of failed assertions",
}

var (
	assertionMetricsInstance *AssertionMetrics
	assertionMetricsMu       sync.RWMutex
)

// InitAssertionMetrics installs the assertion counter. Later calls are no-ops.
func InitAssertionMetrics(factory *metrics.MetricsFactory) {
	assertionMetricsMu.Lock()
	defer assertionMetricsMu.Unlock()

	if factory == nil || assertionMetricsInstance != nil {
		return
	}

	assertionMetricsInstance = &AssertionMetrics{factory: factory}
}

// GetAssertionMetrics returns the installed AssertionMetrics, or nil.
func GetAssertionMetrics() *AssertionMetrics {
	assertionMetricsMu.RLock()
	defer assertionMetricsMu.RUnlock()

	return assertionMetricsInstance
}

// ResetAssertionMetrics clears the installed AssertionMetrics. Intended for tests.
func ResetAssertionMetrics() {
	assertionMetricsMu.Lock()
	defer assertionMetricsMu.Unlock()

	assertionMetricsInstance = nil
}

// RecordAssertionFailed increments assertion_failed_total.
func (am *AssertionMetrics) RecordAssertionFailed(ctx context.Context, component, operation, assertion string) {
	if am == nil || am.factory == nil {
		return
	}

	counter, err := am.factory.Counter(assertionFailedMetric)
	if err != nil {
		logAssertion(ctx, nil, fmt.Sprintf("failed to create assertion metric counter: %v", err))
		return
	}

	err = counter.
		WithLabels(map[string]string{
			"component": constant.SanitizeMetricLabel(component),
			"operation": constant.SanitizeMetricLabel(operation),
			"assertion": constant.SanitizeMetricLabel(assertion),
		}).
		AddOne(ctx)
	if err != nil {
		logAssertion(ctx, nil, fmt.Sprintf("failed to record assertion metric: %v", err))
	}
}

func recordAssertionMetric(ctx context.Context, component, operation, assertion string) {
	if am := GetAssertionMetrics(); am != nil {
		am.RecordAssertionFailed(ctx, component, operation, assertion)
	}
}

func recordAssertionToSpan(ctx context.Context, assertion, message string, stack []byte, component, operation string) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(constant.AttrPrefixAssertion+"name", assertion),
		attribute.String(constant.AttrPrefixAssertion+"message", message),
	}

	if component != "" {
		attrs = append(attrs, attribute.String(constant.AttrPrefixAssertion+"component", component))
	}

	if operation != "" {
		attrs = append(attrs, attribute.String(constant.AttrPrefixAssertion+"operation", operation))
	}

	if len(stack) > 0 {
		attrs = append(attrs, attribute.String(constant.AttrPrefixAssertion+"stack", string(stack)))
	}

	span.AddEvent(AssertionSpanEventName, trace.WithAttributes(attrs...))
	span.RecordError(fmt.Errorf("%w: %s", ErrAssertionFailed, message))
	span.SetStatus(codes.Error, assertionStatusMessage(component, operation))
}

func assertionStatusMessage(component, operation string) string {
	switch {
	case component != "" && operation != "":
		return fmt.Sprintf("assertion failed in %s/%s", component, operation)
	case component != "":
		return "assertion failed in " + component
	case operation != "":
		return "assertion failed in " + operation
	default:
		return "assertion failed"
	}
}
