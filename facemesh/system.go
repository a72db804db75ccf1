package facemesh

import (
	"context"
	"time"

	"github.com/LerianStudio/lib-facemesh/facemesh/log"
	"github.com/LerianStudio/lib-facemesh/facemesh/opentelemetry/metrics"
	"github.com/LerianStudio/lib-facemesh/facemesh/runtime"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

const cpuSampleWindow = 100 * time.Millisecond

// GetCPUUsage samples host CPU usage and records it on the factory's gauge.
func GetCPUUsage(ctx context.Context, factory *metrics.MetricsFactory) {
	logger := NewLoggerFromContext(ctx)

	var percentage int64

	out, err := cpu.Percent(cpuSampleWindow, false)
	if err != nil {
		logger.Log(ctx, log.LevelWarn, "error getting CPU usage", log.Err(err))
	} else if len(out) > 0 {
		percentage = int64(out[0])
	}

	if err := factory.RecordSystemCPUUsage(ctx, percentage); err != nil {
		logger.Log(ctx, log.LevelWarn, "error recording CPU gauge", log.Err(err))
	}
}

// GetMemUsage samples host memory usage and records it on the factory's gauge.
func GetMemUsage(ctx context.Context, factory *metrics.MetricsFactory) {
	logger := NewLoggerFromContext(ctx)

	var percentage int64

	out, err := mem.VirtualMemory()
	if err != nil {
		logger.Log(ctx, log.LevelWarn, "error getting memory info", log.Err(err))
	} else {
		percentage = int64(out.UsedPercent)
	}

	if err := factory.RecordSystemMemUsage(ctx, percentage); err != nil {
		logger.Log(ctx, log.LevelWarn, "error recording memory gauge", log.Err(err))
	}
}

// StartSystemMetrics samples CPU and memory every interval until ctx is done.
// It returns immediately; sampling runs in a recovered goroutine.
func StartSystemMetrics(ctx context.Context, factory *metrics.MetricsFactory, interval time.Duration) {
	if factory == nil || interval <= 0 {
		return
	}

	logger := NewLoggerFromContext(ctx)

	runtime.SafeGoWithContextAndComponent(ctx, logger, "facemesh", "system_metrics", runtime.KeepRunning,
		func(ctx context.Context) {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					GetCPUUsage(ctx, factory)
					GetMemUsage(ctx, factory)
				}
			}
		})
}
