package http

import (
	"errors"

	"github.com/LerianStudio/lib-facemesh/facemesh/digest"
	"github.com/LerianStudio/lib-facemesh/facemesh/log"
	"github.com/LerianStudio/lib-facemesh/facemesh/opentelemetry"
	"github.com/LerianStudio/lib-facemesh/facemesh/opentelemetry/metrics"
	"github.com/LerianStudio/lib-facemesh/facemesh/runtime"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// ErrNilRouterLogger is returned by NewRouter without a logger.
var ErrNilRouterLogger = errors.New("router logger cannot be nil")

// RouterConfig configures NewRouter.
type RouterConfig struct {
	Logger log.Logger
	// Telemetry is optional; nil disables request spans.
	Telemetry *opentelemetry.Telemetry
	// Algorithm defaults to digest.SHA256.
	Algorithm digest.Algorithm
	// DefaultInput defaults to DefaultInputString.
	DefaultInput string
	// Debug enables Fiber's startup banner.
	Debug bool
}

// NewRouter builds the Fiber application serving the face endpoint plus
// /health and /version.
func NewRouter(cfg RouterConfig) (*fiber.App, error) {
	if cfg.Logger == nil {
		return nil, ErrNilRouterLogger
	}

	var factory *metrics.MetricsFactory
	if cfg.Telemetry != nil {
		factory = cfg.Telemetry.MetricsFactory
	}

	face := NewFaceHandler(cfg.Algorithm, cfg.Logger, factory)
	if cfg.DefaultInput != "" {
		face.DefaultInput = cfg.DefaultInput
	}

	app := fiber.New(fiber.Config{
		AppName:               "facemesh",
		DisableStartupMessage: !cfg.Debug,
		ErrorHandler:          FiberErrorHandler,
	})

	tlMid := NewTelemetryMiddleware(cfg.Telemetry)

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e any) {
			runtime.HandlePanicValue(c.UserContext(), cfg.Logger, e, "http", c.Path())
		},
	}))
	app.Use(WithCORS())
	app.Use(WithHTTPLogging(WithCustomLogger(cfg.Logger)))
	app.Use(tlMid.WithTelemetry("/health", "/version"))

	app.Get("/health", Ping)
	app.Get("/version", Version)
	app.Get(FacePath, face.Generate)

	return app, nil
}
