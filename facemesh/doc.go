// Package facemesh holds the cross-cutting pieces shared by the face service:
// request-scoped context values, environment configuration helpers, the
// business error type and the app launcher.
//
// Typical usage at request ingress:
//
//	ctx = facemesh.ContextWithLogger(ctx, logger)
//	ctx = facemesh.ContextWithTracer(ctx, tracer)
//	ctx = facemesh.ContextWithHeaderID(ctx, requestID)
//
// Domain logic lives in the digest and mesh subpackages; transport lives in net/http and server.
package facemesh
