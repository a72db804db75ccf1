//go:build unit

package http

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	fmassert "github.com/LerianStudio/lib-facemesh/facemesh/assert"
	constant "github.com/LerianStudio/lib-facemesh/facemesh/constants"
	"github.com/LerianStudio/lib-facemesh/facemesh/digest"
	"github.com/LerianStudio/lib-facemesh/facemesh/log"
	"github.com/LerianStudio/lib-facemesh/facemesh/mesh"
	"github.com/LerianStudio/lib-facemesh/facemesh/opentelemetry"
	"github.com/LerianStudio/lib-facemesh/facemesh/opentelemetry/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const exampleDigest = "9bfb55a8406617ff3e6767ec5d27fc6b5682c3a79c415ef6e084bf7d050273e6"

var exampleVertices = [][3]float64{
	{0, 0, 0},
	{1.7333333333333334, 1.7333333333333334, 1.7333333333333334},
	{-2, 2, 2},
	{-1.7333333333333334, -1.7333333333333334, 1.7333333333333334},
	{1.3333333333333333, -1.3333333333333333, 1.3333333333333333},
	{0, 0, 2.6666666666666665},
	{0.8333333333333333, 0.8333333333333333, 0.8333333333333333},
	{-0.7666666666666666, 0.7666666666666666, 0.7666666666666666},
	{-0.6333333333333333, -0.6333333333333333, 0.6333333333333333},
	{0.5, -0.5, 0.5},
}

type faceBody struct {
	Vertices [][3]float64 `json:"vertices"`
	Faces    [][3]int     `json:"faces"`
}

func newTestApp(t *testing.T, cfg RouterConfig) *fiber.App {
	t.Helper()

	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}

	app, err := NewRouter(cfg)
	require.NoError(t, err)

	return app
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, []byte) {
	t.Helper()

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	return resp, body
}

func decodeFace(t *testing.T, body []byte) faceBody {
	t.Helper()

	var fb faceBody
	require.NoError(t, json.Unmarshal(body, &fb))

	return fb
}

func baseFaces() [][3]int {
	out := make([][3]int, 0, 14)
	for _, f := range mesh.Base().Faces {
		out = append(out, [3]int(f))
	}

	return out
}

func TestFaceHandler_ExampleStringGolden(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, RouterConfig{})

	for _, target := range []string{FacePath, FacePath + "?input_string=example_string"} {
		resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, target, nil))

		require.Equal(t, fiber.StatusOK, resp.StatusCode, target)
		assert.Equal(t, fiber.MIMEApplicationJSON, resp.Header.Get(fiber.HeaderContentType))
		assert.Equal(t, exampleDigest, resp.Header.Get(constant.HeaderFaceDigest))
		assert.Equal(t, "sha256", resp.Header.Get(constant.HeaderDigestAlgorithm))
		assert.Equal(t, `"`+digest.Fingerprint("sha256", exampleDigest)+`"`, resp.Header.Get(fiber.HeaderETag))

		fb := decodeFace(t, body)
		assert.Equal(t, exampleVertices, fb.Vertices)
		assert.Equal(t, baseFaces(), fb.Faces)
	}
}

func TestFaceHandler_EmptyInputHashesEmptyString(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, RouterConfig{})

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, FacePath+"?input_string=", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, digest.Compute(""), resp.Header.Get(constant.HeaderFaceDigest))

	fb := decodeFace(t, body)
	assert.Len(t, fb.Vertices, 10)
	assert.Equal(t, baseFaces(), fb.Faces)
	assert.Equal(t, [3]float64{1.2, 1.2, 1.2}, fb.Vertices[1])
}

func TestFaceHandler_Invariants(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, RouterConfig{})

	for _, in := range []string{"a", "hello%20world", "%C3%A9t%C3%A9", "1234567890"} {
		resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, FacePath+"?input_string="+in, nil))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		hexDigest := resp.Header.Get(constant.HeaderFaceDigest)
		assert.Len(t, hexDigest, digest.Size)
		assert.True(t, digest.IsHex(hexDigest))

		fb := decodeFace(t, body)
		require.Len(t, fb.Vertices, 10)
		assert.Equal(t, baseFaces(), fb.Faces)

		for i, v := range fb.Vertices {
			orig := mesh.Base().Vertices[i]
			for k := range v {
				if orig[k] == 0 {
					assert.Zero(t, v[k])
					continue
				}

				ratio := v[k] / orig[k]
				assert.GreaterOrEqual(t, ratio, 1.0)
				assert.LessOrEqual(t, ratio, 2.0)
			}
		}
	}
}

func TestFaceHandler_CheckInvariants(t *testing.T) {
	t.Parallel()

	h := NewFaceHandler(digest.SHA256, nil, nil)
	ctx := context.Background()

	m, hexDigest, err := mesh.Generate("example_string", digest.SHA256)
	require.NoError(t, err)
	require.NoError(t, h.checkInvariants(ctx, log.NewNop(), m, hexDigest))

	tests := []struct {
		name   string
		mutate func(m *mesh.Mesh)
		digest string
	}{
		{"short digest", func(*mesh.Mesh) {}, hexDigest[:10]},
		{"missing vertex", func(m *mesh.Mesh) { m.Vertices = m.Vertices[:9] }, hexDigest},
		{"factor above two", func(m *mesh.Mesh) { m.Vertices[1][0] = 2.5 }, hexDigest},
		{"shrunk coordinate", func(m *mesh.Mesh) { m.Vertices[6][2] = 0.25 }, hexDigest},
		{"moved origin", func(m *mesh.Mesh) { m.Vertices[0][1] = 0.1 }, hexDigest},
		{"not finite", func(m *mesh.Mesh) { m.Vertices[2][1] = math.Inf(1) }, hexDigest},
		{"face index out of range", func(m *mesh.Mesh) { m.Faces[3][2] = 10 }, hexDigest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			broken := mesh.Base()
			tt.mutate(&broken)

			err := h.checkInvariants(ctx, log.NewNop(), broken, tt.digest)
			require.ErrorIs(t, err, fmassert.ErrAssertionFailed)
		})
	}
}

func TestFaceHandler_DefaultInputOverride(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, RouterConfig{DefaultInput: "custom"})

	resp, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, FacePath, nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, digest.Compute("custom"), resp.Header.Get(constant.HeaderFaceDigest))
}

func TestFaceHandler_Blake3(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, RouterConfig{Algorithm: digest.BLAKE3})

	resp, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, FacePath+"?input_string=", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262", resp.Header.Get(constant.HeaderFaceDigest))
	assert.Equal(t, "blake3", resp.Header.Get(constant.HeaderDigestAlgorithm))
}

func TestFaceHandler_ConditionalRequest(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, RouterConfig{})

	first, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, FacePath, nil))
	etag := first.Header.Get(fiber.HeaderETag)
	require.NotEmpty(t, etag)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"exact", etag, fiber.StatusNotModified},
		{"weak", "W/" + etag, fiber.StatusNotModified},
		{"list", `"other", ` + etag, fiber.StatusNotModified},
		{"wildcard", "*", fiber.StatusNotModified},
		{"stale", `"0000000000000000"`, fiber.StatusOK},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, FacePath, nil)
		req.Header.Set(fiber.HeaderIfNoneMatch, tt.header)

		resp, body := doRequest(t, app, req)
		assert.Equal(t, tt.want, resp.StatusCode, tt.name)

		if tt.want == fiber.StatusNotModified {
			assert.Empty(t, body, tt.name)
			assert.Equal(t, etag, resp.Header.Get(fiber.HeaderETag), tt.name)
		}
	}
}

func TestFaceHandler_MethodAndRouteErrors(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, RouterConfig{})

	resp, _ := doRequest(t, app, httptest.NewRequest(http.MethodPost, FacePath, nil))
	assert.Equal(t, fiber.StatusMethodNotAllowed, resp.StatusCode)

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var er ErrorResponse
	require.NoError(t, json.Unmarshal(body, &er))
	assert.Equal(t, fiber.StatusNotFound, er.Code)
	assert.Equal(t, constant.DefaultErrorTitle, er.Title)
}

func TestFaceHandler_RecordsSpanAndMetrics(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})

	factory, err := metrics.NewMetricsFactory(mp.Meter("face-test"), log.NewNop())
	require.NoError(t, err)

	tl := &opentelemetry.Telemetry{
		TelemetryConfig: opentelemetry.TelemetryConfig{LibraryName: "face-test"},
		TracerProvider:  tp,
		MetricsFactory:  factory,
	}

	app := newTestApp(t, RouterConfig{Telemetry: tl})

	req := httptest.NewRequest(http.MethodGet, FacePath+"?input_string=example_string", nil)
	req.Header.Set(constant.HeaderID, "req-123")

	resp, _ := doRequest(t, app, req)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-123", resp.Header.Get(constant.HeaderID))

	names := map[string]bool{}
	for _, s := range recorder.Ended() {
		names[s.Name()] = true
	}

	assert.True(t, names["GET "+FacePath], "server span missing: %v", names)
	assert.True(t, names["handler.generate_3d_face"], "handler span missing: %v", names)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	found := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			found[m.Name] = true

			if m.Name == constant.MetricFacesGeneratedTotal {
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				require.Len(t, sum.DataPoints, 1)
				assert.Equal(t, int64(1), sum.DataPoints[0].Value)

				outcome, _ := sum.DataPoints[0].Attributes.Value("outcome")
				assert.Equal(t, metrics.OutcomeGenerated, outcome.AsString())
			}
		}
	}

	assert.True(t, found[constant.MetricFacesGeneratedTotal])
	assert.True(t, found[constant.MetricFaceGenerationDuration])
	assert.True(t, found[metrics.MetricFaceVertexCount.Name])
}

func TestNewFaceHandler_Defaults(t *testing.T) {
	t.Parallel()

	h := NewFaceHandler("", nil, nil)
	assert.Equal(t, digest.SHA256, h.Algorithm)
	assert.Equal(t, DefaultInputString, h.DefaultInput)
	assert.NotNil(t, h.logger)
}

func TestEtagMatches(t *testing.T) {
	t.Parallel()

	assert.False(t, etagMatches("", `"a"`))
	assert.True(t, etagMatches(`"a"`, `"a"`))
	assert.True(t, etagMatches(` W/"a" `, `"a"`))
	assert.True(t, etagMatches(`"b","a"`, `"a"`))
	assert.False(t, etagMatches(`"b"`, `"a"`))
}
