package main

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/LerianStudio/lib-facemesh/facemesh"
	"github.com/LerianStudio/lib-facemesh/facemesh/digest"
	nethttp "github.com/LerianStudio/lib-facemesh/facemesh/net/http"
	"github.com/LerianStudio/lib-facemesh/facemesh/server"
	"github.com/LerianStudio/lib-facemesh/facemesh/zap"
)

// ErrInvalidConfig wraps every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

const defaultLibraryName = "github.com/LerianStudio/lib-facemesh"

// Config is the process configuration, read from the environment.
type Config struct {
	EnvName               string        `env:"ENV_NAME" validate:"oneof=production staging uat development local"`
	LogLevel              string        `env:"LOG_LEVEL"`
	ServerHost            string        `env:"SERVER_HOST"`
	ServerPort            int           `env:"SERVER_PORT" validate:"min=1,max=65535"`
	Debug                 bool          `env:"DEBUG"`
	DigestAlgorithm       string        `env:"DIGEST_ALGORITHM" validate:"digest_algorithm"`
	DefaultInputString    string        `env:"DEFAULT_INPUT_STRING"`
	EnableTelemetry       bool          `env:"ENABLE_TELEMETRY"`
	OtelServiceName       string        `env:"OTEL_RESOURCE_SERVICE_NAME"`
	OtelLibraryName       string        `env:"OTEL_LIBRARY_NAME"`
	OtelServiceVersion    string        `env:"OTEL_RESOURCE_SERVICE_VERSION"`
	OtelColExporterURL    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ShutdownTimeout       time.Duration `env:"SHUTDOWN_TIMEOUT" validate:"min=0"`
	SystemMetricsInterval time.Duration `env:"SYSTEM_METRICS_INTERVAL" validate:"min=0"`
}

func defaultConfig() Config {
	return Config{
		EnvName:               string(zap.EnvironmentDevelopment),
		ServerHost:            "0.0.0.0",
		ServerPort:            5000,
		DigestAlgorithm:       string(digest.SHA256),
		DefaultInputString:    nethttp.DefaultInputString,
		OtelServiceName:       "facemesh",
		OtelLibraryName:       defaultLibraryName,
		OtelServiceVersion:    facemesh.GetenvOrDefault("VERSION", "0.0.0"),
		OtelColExporterURL:    "localhost:4317",
		ShutdownTimeout:       server.DefaultShutdownTimeout,
		SystemMetricsInterval: 15 * time.Second,
	}
}

// LoadConfig returns the defaults overridden by any environment variables set.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()

	if err := facemesh.SetConfigFromEnvVars(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

// Validate runs the `validate` tags of c through the shared validator.
func (c Config) Validate() error {
	if err := nethttp.ValidateStruct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// Address is the listen address host:port.
func (c Config) Address() string {
	return net.JoinHostPort(c.ServerHost, strconv.Itoa(c.ServerPort))
}

// Algorithm returns the parsed digest algorithm, SHA256 when invalid.
func (c Config) Algorithm() digest.Algorithm {
	alg, err := digest.ParseAlgorithm(c.DigestAlgorithm)
	if err != nil {
		return digest.SHA256
	}

	return alg
}

func (c Config) loggerConfig() zap.Config {
	return zap.Config{
		Environment:     zap.Environment(c.EnvName),
		Level:           c.LogLevel,
		OTelLibraryName: c.OtelLibraryName,
		Debug:           c.Debug,
	}
}
