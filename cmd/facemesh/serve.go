package main

import (
	"context"
	"fmt"

	"github.com/LerianStudio/lib-facemesh/facemesh"
	"github.com/LerianStudio/lib-facemesh/facemesh/assert"
	"github.com/LerianStudio/lib-facemesh/facemesh/log"
	nethttp "github.com/LerianStudio/lib-facemesh/facemesh/net/http"
	"github.com/LerianStudio/lib-facemesh/facemesh/opentelemetry"
	"github.com/LerianStudio/lib-facemesh/facemesh/runtime"
	"github.com/LerianStudio/lib-facemesh/facemesh/server"
	"github.com/LerianStudio/lib-facemesh/facemesh/zap"
	"github.com/spf13/cobra"
)

type serveFlags struct {
	host  string
	port  int
	debug bool
}

func newServeCmd() *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve GET /generate_3d_face over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			facemesh.InitLocalEnvConfig()

			cfg, err := LoadConfig()
			if err != nil {
				return err
			}

			applyServeFlags(cmd, flags, &cfg)

			return runServe(cmd.Context(), cfg, nil)
		},
	}

	cmd.Flags().StringVar(&flags.host, "host", "", "bind host (overrides SERVER_HOST)")
	cmd.Flags().IntVarP(&flags.port, "port", "p", 0, "bind port (overrides SERVER_PORT)")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "debug logging and startup banner (overrides DEBUG)")

	return cmd
}

// applyServeFlags copies explicitly set flags over the environment configuration.
func applyServeFlags(cmd *cobra.Command, flags *serveFlags, cfg *Config) {
	if cmd.Flags().Changed("host") {
		cfg.ServerHost = flags.host
	}

	if cmd.Flags().Changed("port") {
		cfg.ServerPort = flags.port
	}

	if cmd.Flags().Changed("debug") {
		cfg.Debug = flags.debug
	}
}

// runServe wires logger, telemetry, router and server manager, then blocks
// until shutdown. A nil shutdown channel means SIGINT/SIGTERM.
func runServe(ctx context.Context, cfg Config, shutdown <-chan struct{}) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := zap.New(cfg.loggerConfig())
	if err != nil {
		return err
	}

	runtime.SetProductionMode(cfg.EnvName == string(zap.EnvironmentProduction) && !cfg.Debug)

	tl, err := opentelemetry.NewTelemetry(opentelemetry.TelemetryConfig{
		LibraryName:               cfg.OtelLibraryName,
		ServiceName:               cfg.OtelServiceName,
		ServiceVersion:            cfg.OtelServiceVersion,
		DeploymentEnv:             cfg.EnvName,
		CollectorExporterEndpoint: cfg.OtelColExporterURL,
		EnableTelemetry:           cfg.EnableTelemetry,
		Logger:                    logger,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	tl.ApplyGlobals()
	runtime.InitPanicMetrics(tl.MetricsFactory, logger)
	assert.InitAssertionMetrics(tl.MetricsFactory)

	if cfg.EnableTelemetry {
		metricsCtx, cancel := context.WithCancel(facemesh.ContextWithLogger(ctx, logger))
		defer cancel()

		facemesh.StartSystemMetrics(metricsCtx, tl.MetricsFactory, cfg.SystemMetricsInterval)
	}

	app, err := nethttp.NewRouter(nethttp.RouterConfig{
		Logger:       logger,
		Telemetry:    tl,
		Algorithm:    cfg.Algorithm(),
		DefaultInput: cfg.DefaultInputString,
		Debug:        cfg.Debug,
	})
	if err != nil {
		return err
	}

	sm := server.NewServerManager(tl, logger).
		WithHTTPServer(app, cfg.Address()).
		WithShutdownTimeout(cfg.ShutdownTimeout)

	if shutdown != nil {
		sm.WithShutdownChannel(shutdown)
	}

	logger.Log(ctx, log.LevelInfo, "facemesh configured",
		log.String("address", cfg.Address()),
		log.String("digest_algorithm", cfg.Algorithm().String()),
		log.Bool("telemetry", cfg.EnableTelemetry),
	)

	return facemesh.NewLauncher(
		facemesh.WithLogger(logger),
		facemesh.RunApp("HTTP server", sm),
	).RunWithError()
}
