package metrics

import (
	"context"
)

var (
	// MetricSystemCPUUsage records the host CPU usage percentage.
	MetricSystemCPUUsage = Metric{
		Name:        "system.cpu.usage",
		Unit:        "percentage",
		Description: "Current CPU usage percentage of the process host.",
	}

	// MetricSystemMemUsage records the host memory usage percentage.
	MetricSystemMemUsage = Metric{
		Name:        "system.mem.usage",
		Unit:        "percentage",
		Description: "Current memory usage percentage of the process host.",
	}
)

// RecordSystemCPUUsage sets the CPU usage gauge.
func (f *MetricsFactory) RecordSystemCPUUsage(ctx context.Context, percentage int64) error {
	b, err := f.Gauge(MetricSystemCPUUsage)
	if err != nil {
		return err
	}

	return b.Set(ctx, percentage)
}

// RecordSystemMemUsage sets the memory usage gauge.
func (f *MetricsFactory) RecordSystemMemUsage(ctx context.Context, percentage int64) error {
	b, err := f.Gauge(MetricSystemMemUsage)
	if err != nil {
		return err
	}

	return b.Set(ctx, percentage)
}
