// Package metrics provides a fluent factory for OpenTelemetry metric instruments.
//
// MetricsFactory caches instruments by name and hands out builders for
// counters, gauges and histograms. RecordFaceGenerated and friends wrap the
// instruments used by the face generation endpoint.
package metrics
