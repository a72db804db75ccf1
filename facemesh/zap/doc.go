// Package zap bridges the facemesh/log abstraction to go.uber.org/zap.
//
// Loggers built here emit JSON, attach trace/span ids from the request
// context, and tee every entry into the OpenTelemetry log bridge.
package zap
