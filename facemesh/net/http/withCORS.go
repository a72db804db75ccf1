package http

import (
	"github.com/LerianStudio/lib-facemesh/facemesh"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const (
	defaultAccessControlAllowOrigin   = "*"
	defaultAccessControlAllowMethods  = "GET, OPTIONS"
	defaultAccessControlAllowHeaders  = "Accept, Content-Type, Content-Length, Accept-Encoding, If-None-Match, X-Request-Id, Traceparent"
	defaultAccessControlExposeHeaders = "ETag, X-Request-Id, X-Face-Digest, X-Face-Digest-Algorithm"
)

// WithCORS enables CORS from the ACCESS_CONTROL_* environment variables.
// Credentials are only allowed for an explicit origin list.
func WithCORS() fiber.Handler {
	origins := facemesh.GetenvOrDefault("ACCESS_CONTROL_ALLOW_ORIGIN", defaultAccessControlAllowOrigin)

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     facemesh.GetenvOrDefault("ACCESS_CONTROL_ALLOW_METHODS", defaultAccessControlAllowMethods),
		AllowHeaders:     facemesh.GetenvOrDefault("ACCESS_CONTROL_ALLOW_HEADERS", defaultAccessControlAllowHeaders),
		ExposeHeaders:    facemesh.GetenvOrDefault("ACCESS_CONTROL_EXPOSE_HEADERS", defaultAccessControlExposeHeaders),
		AllowCredentials: origins != "*" && facemesh.GetenvBoolOrDefault("ACCESS_CONTROL_ALLOW_CREDENTIALS", false),
	})
}
