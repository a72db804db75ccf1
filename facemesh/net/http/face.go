package http

import (
	"context"
	"strings"
	"time"

	"github.com/LerianStudio/lib-facemesh/facemesh"
	"github.com/LerianStudio/lib-facemesh/facemesh/assert"
	constant "github.com/LerianStudio/lib-facemesh/facemesh/constants"
	"github.com/LerianStudio/lib-facemesh/facemesh/digest"
	"github.com/LerianStudio/lib-facemesh/facemesh/log"
	"github.com/LerianStudio/lib-facemesh/facemesh/mesh"
	"github.com/LerianStudio/lib-facemesh/facemesh/opentelemetry"
	"github.com/LerianStudio/lib-facemesh/facemesh/opentelemetry/metrics"
	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// FacePath is the route of the face generation endpoint.
	FacePath = "/generate_3d_face"
	// QueryInputString is the query parameter holding the input string.
	QueryInputString = "input_string"
	// DefaultInputString is used when the query parameter is absent.
	DefaultInputString = "example_string"

	faceEntityType = "Face"
	faceComponent  = "net/http"
)

// FaceHandler serves GET /generate_3d_face.
type FaceHandler struct {
	// Algorithm hashes the input string.
	Algorithm digest.Algorithm
	// DefaultInput replaces a missing input_string query parameter.
	DefaultInput string

	logger  log.Logger
	metrics *metrics.MetricsFactory
}

// NewFaceHandler builds a FaceHandler. A nil logger becomes a NopLogger and a
// nil factory makes the handler use the one carried by the request context.
func NewFaceHandler(alg digest.Algorithm, logger log.Logger, factory *metrics.MetricsFactory) *FaceHandler {
	if alg == "" {
		alg = digest.SHA256
	}

	if logger == nil {
		logger = log.NewNop()
	}

	return &FaceHandler{
		Algorithm:    alg,
		DefaultInput: DefaultInputString,
		logger:       logger,
		metrics:      factory,
	}
}

// Generate derives a face mesh from the input_string query parameter.
//
// A present but empty parameter hashes the empty string; only an absent one
// falls back to DefaultInput.
func (h *FaceHandler) Generate(c *fiber.Ctx) error {
	start := time.Now()

	ctx, logger, factory := h.tracking(c.UserContext())

	_, tracer, _, _ := facemesh.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.generate_3d_face")
	defer span.End()

	input := h.DefaultInput
	if c.Context().QueryArgs().Has(QueryInputString) {
		input = c.Query(QueryInputString)
	}

	alg := h.Algorithm.String()

	m, hexDigest, err := mesh.Generate(input, h.Algorithm)
	if err != nil {
		businessErr := facemesh.ValidateBusinessError(err, faceEntityType)
		opentelemetry.HandleSpanError(span, "Failed to generate face", businessErr)
		h.record(ctx, factory, logger, alg, metrics.OutcomeFailed, start, 0)

		return businessErr
	}

	if err := h.checkInvariants(ctx, logger, m, hexDigest); err != nil {
		opentelemetry.HandleSpanError(span, "Generated face violates invariants", err)
		h.record(ctx, factory, logger, alg, metrics.OutcomeFailed, start, 0)

		return err
	}

	span.SetAttributes(
		attribute.String(constant.AttrPrefixFace+"digest_algorithm", alg),
		attribute.String(constant.AttrPrefixFace+"digest", hexDigest),
		attribute.Int(constant.AttrPrefixFace+"vertices", len(m.Vertices)),
		attribute.Int(constant.AttrPrefixFace+"faces", len(m.Faces)),
	)

	etag := `"` + digest.Fingerprint(alg, hexDigest) + `"`

	c.Set(fiber.HeaderETag, etag)
	c.Set(constant.HeaderFaceDigest, hexDigest)
	c.Set(constant.HeaderDigestAlgorithm, alg)

	if etagMatches(c.Get(fiber.HeaderIfNoneMatch), etag) {
		h.record(ctx, factory, logger, alg, metrics.OutcomeNotModified, start, len(m.Vertices))

		return c.SendStatus(fiber.StatusNotModified)
	}

	logger.Log(ctx, log.LevelDebug, "face generated",
		log.String("digest_algorithm", alg),
		log.String("digest", hexDigest),
		log.Int("vertices", len(m.Vertices)),
	)

	h.record(ctx, factory, logger, alg, metrics.OutcomeGenerated, start, len(m.Vertices))

	return Respond(c, fiber.StatusOK, m)
}

// tracking resolves the logger and metrics factory for one request,
// preferring the request-scoped ones set by the middlewares.
func (h *FaceHandler) tracking(ctx context.Context) (context.Context, log.Logger, *metrics.MetricsFactory) {
	if ctx == nil {
		ctx = context.Background()
	}

	logger := facemesh.NewLoggerFromContext(ctx)
	if _, nop := logger.(*log.NopLogger); nop {
		logger = h.logger
	}

	factory := h.metrics
	if factory == nil {
		_, _, _, factory = facemesh.NewTrackingFromContext(ctx)
	}

	return ctx, logger, factory
}

func (h *FaceHandler) checkInvariants(ctx context.Context, logger log.Logger, m mesh.Mesh, hexDigest string) error {
	a := assert.New(ctx, logger, faceComponent, "generate_3d_face")

	if err := a.That(ctx, assert.LengthIs(hexDigest, digest.Size) && digest.IsHex(hexDigest),
		"digest must be fixed-length hex", "digest", hexDigest); err != nil {
		return err
	}

	base := mesh.Base()

	if err := a.That(ctx, len(m.Vertices) == len(base.Vertices),
		"vertex count must match the base mesh", "vertices", len(m.Vertices)); err != nil {
		return err
	}

	for i, v := range m.Vertices {
		for axis, coord := range v {
			orig := base.Vertices[i][axis]

			ok := assert.Finite(coord)
			if ok && orig != 0 {
				ok = assert.InRange(coord/orig, 1, 2)
			} else if ok {
				ok = coord == 0
			}

			if err := a.That(ctx, ok, "scaled coordinate must stay within [1, 2] times the base coordinate",
				"vertex", i, "axis", axis, "base", orig, "scaled", coord); err != nil {
				return err
			}
		}
	}

	for i, f := range m.Faces {
		for _, idx := range f {
			if err := a.That(ctx, assert.ValidIndex(idx, len(m.Vertices)),
				"face indices must address existing vertices", "face", i, "index", idx); err != nil {
				return err
			}
		}
	}

	return nil
}

func (h *FaceHandler) record(ctx context.Context, factory *metrics.MetricsFactory, logger log.Logger, alg, outcome string, start time.Time, vertices int) {
	if factory == nil {
		return
	}

	if err := factory.RecordFaceGenerated(ctx, alg, outcome); err != nil {
		logger.Log(ctx, log.LevelWarn, "failed to record faces_generated_total", log.Err(err))
	}

	if err := factory.RecordFaceGenerationDuration(ctx, alg, time.Since(start)); err != nil {
		logger.Log(ctx, log.LevelWarn, "failed to record face_generation_duration_ms", log.Err(err))
	}

	if vertices > 0 {
		if err := factory.RecordFaceVertexCount(ctx, vertices); err != nil {
			logger.Log(ctx, log.LevelWarn, "failed to record face_vertex_count", log.Err(err))
		}
	}
}

// etagMatches implements the weak comparison of RFC 9110 If-None-Match.
func etagMatches(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}

	if header == "*" {
		return true
	}

	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag {
			return true
		}
	}

	return false
}
