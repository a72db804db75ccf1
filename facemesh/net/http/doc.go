// Package http exposes the face generation endpoint over Fiber together with
// the shared transport toolkit: response helpers (Respond, RespondError,
// RenderError), the canonical FiberErrorHandler, and the logging, telemetry
// and CORS middlewares.
//
// NewRouter wires everything into a ready *fiber.App:
//
//	app, err := http.NewRouter(http.RouterConfig{Logger: logger, Telemetry: tl})
package http
