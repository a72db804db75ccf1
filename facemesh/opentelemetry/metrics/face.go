package metrics

import (
	"context"
	"time"

	constant "github.com/LerianStudio/lib-facemesh/facemesh/constants"
)

// Face generation outcomes used as the "outcome" label.
const (
	OutcomeGenerated   = "generated"
	OutcomeNotModified = "not_modified"
	OutcomeFailed      = "failed"
)

var (
	// MetricFacesGenerated counts face generation requests by algorithm and outcome.
	MetricFacesGenerated = Metric{
		Name:        constant.MetricFacesGeneratedTotal,
		Unit:        "1",
		Description: "Number of face meshes generated from an input string.",
	}

	// MetricFaceGenerationDuration measures the hash, modify and serialize pipeline.
	MetricFaceGenerationDuration = Metric{
		Name:        constant.MetricFaceGenerationDuration,
		Unit:        "ms",
		Description: "Time spent generating a face mesh.",
	}

	// MetricFaceVertexCount records how many vertices the last served mesh carried.
	MetricFaceVertexCount = Metric{
		Name:        "face_vertex_count",
		Unit:        "1",
		Description: "Vertex count of the most recently generated face mesh.",
	}
)

// RecordFaceGenerated counts one face generation for algorithm with the given outcome.
func (f *MetricsFactory) RecordFaceGenerated(ctx context.Context, algorithm, outcome string) error {
	b, err := f.Counter(MetricFacesGenerated)
	if err != nil {
		return err
	}

	return b.WithLabels(map[string]string{
		"algorithm": constant.SanitizeMetricLabel(algorithm),
		"outcome":   constant.SanitizeMetricLabel(outcome),
	}).AddOne(ctx)
}

// RecordFaceGenerationDuration records elapsed pipeline time in milliseconds.
func (f *MetricsFactory) RecordFaceGenerationDuration(ctx context.Context, algorithm string, elapsed time.Duration) error {
	b, err := f.Histogram(MetricFaceGenerationDuration)
	if err != nil {
		return err
	}

	return b.WithLabels(map[string]string{
		"algorithm": constant.SanitizeMetricLabel(algorithm),
	}).Record(ctx, elapsed.Milliseconds())
}

// RecordFaceVertexCount sets the vertex count gauge.
func (f *MetricsFactory) RecordFaceVertexCount(ctx context.Context, vertices int) error {
	b, err := f.Gauge(MetricFaceVertexCount)
	if err != nil {
		return err
	}

	return b.Set(ctx, int64(vertices))
}
