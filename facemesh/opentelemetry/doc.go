// Package opentelemetry builds the trace, metric and log providers for the
// face service and offers small span and propagation helpers.
//
// NewTelemetry can run disabled, in which case the providers are real SDK
// providers without exporters. Nothing leaves the process, but spans and
// metrics still flow through the same code paths.
package opentelemetry
