package constant

// TelemetrySDKName identifies this library in OTEL telemetry resource attributes.
const TelemetrySDKName = "lib-facemesh/opentelemetry"

// MaxMetricLabelLength is the maximum length for metric labels to prevent cardinality explosion.
// Used by assert, runtime, and the face metrics for label sanitization.
const MaxMetricLabelLength = 64

// Telemetry attribute key prefixes.
const (
	// AttrPrefixAppRequest is the prefix for application request attributes.
	AttrPrefixAppRequest = "app.request."
	// AttrPrefixAssertion is the prefix for assertion event attributes.
	AttrPrefixAssertion = "assertion."
	// AttrPrefixPanic is the prefix for panic event attributes.
	AttrPrefixPanic = "panic."
	// AttrPrefixFace is the prefix for face generation attributes.
	AttrPrefixFace = "face."
)

// Telemetry metric names.
const (
	// MetricPanicRecoveredTotal is the counter metric for recovered panics.
	MetricPanicRecoveredTotal = "panic_recovered_total"
	// MetricAssertionFailedTotal is the counter metric for failed assertions.
	MetricAssertionFailedTotal = "assertion_failed_total"
	// MetricFacesGeneratedTotal is the counter metric for generated faces.
	MetricFacesGeneratedTotal = "faces_generated_total"
	// MetricFaceGenerationDuration is the histogram metric for face pipeline latency.
	MetricFaceGenerationDuration = "face_generation_duration_ms"
)

// Telemetry event names.
const (
	// EventAssertionFailed is the span event name for assertion failures.
	EventAssertionFailed = "assertion.failed"
	// EventPanicRecovered is the span event name for recovered panics.
	EventPanicRecovered = "panic.recovered"
)

// SanitizeMetricLabel truncates a label value to MaxMetricLabelLength
// to prevent metric cardinality explosion in OTEL backends.
func SanitizeMetricLabel(value string) string {
	if len(value) > MaxMetricLabelLength {
		return value[:MaxMetricLabelLength]
	}

	return value
}
