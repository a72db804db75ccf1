package http

import (
	"context"
	"errors"
	"time"

	"github.com/LerianStudio/lib-facemesh/facemesh"
	"github.com/LerianStudio/lib-facemesh/facemesh/log"
	"github.com/LerianStudio/lib-facemesh/facemesh/opentelemetry"
	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/trace"
)

// Ping returns HTTP Status 200 with response "healthy".
func Ping(c *fiber.Ctx) error {
	return c.SendString("healthy")
}

// Version returns HTTP Status 200 with the VERSION environment variable.
func Version(c *fiber.Ctx) error {
	return Respond(c, fiber.StatusOK, fiber.Map{
		"version":     facemesh.GetenvOrDefault("VERSION", "0.0.0"),
		"requestDate": time.Now().UTC(),
	})
}

// FiberErrorHandler is the canonical Fiber error handler.
// Unclassified errors are logged with the request-scoped logger.
func FiberErrorHandler(c *fiber.Ctx, err error) error {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	span := trace.SpanFromContext(ctx)

	var fe *fiber.Error
	if errors.As(err, &fe) {
		opentelemetry.HandleSpanBusinessErrorEvent(span, "http.error", err)
		return RenderError(c, fe)
	}

	opentelemetry.HandleSpanError(span, "handler error", err)

	logger := facemesh.NewLoggerFromContext(ctx)
	logger.Log(ctx, log.LevelError,
		"handler error",
		log.String("method", c.Method()),
		log.String("path", c.Path()),
		log.Err(err),
	)

	return RenderError(c, err)
}
