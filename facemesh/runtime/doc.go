// Package runtime provides panic recovery and safe goroutine helpers.
//
// Recovered panics are logged, recorded as span events, counted in the
// panic_recovered_total metric and, when configured, forwarded to an
// ErrorReporter. PanicPolicy decides whether the process keeps running.
package runtime
