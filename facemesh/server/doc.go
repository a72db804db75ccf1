// Package server runs the Fiber application and coordinates graceful shutdown.
//
// Shutdown order is fixed: the HTTP listener drains first, then telemetry is
// flushed, then the logger is synced.
package server
