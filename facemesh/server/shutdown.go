package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/LerianStudio/lib-facemesh/facemesh"
	"github.com/LerianStudio/lib-facemesh/facemesh/log"
	"github.com/LerianStudio/lib-facemesh/facemesh/opentelemetry"
	"github.com/LerianStudio/lib-facemesh/facemesh/runtime"
	"github.com/gofiber/fiber/v2"
)

// DefaultShutdownTimeout bounds each shutdown step unless WithShutdownTimeout overrides it.
const DefaultShutdownTimeout = 30 * time.Second

// ErrNoServersConfigured indicates no server was configured for the manager.
var ErrNoServersConfigured = errors.New("no servers configured: use WithHTTPServer()")

// ServerManager owns the HTTP server lifecycle.
type ServerManager struct {
	httpServer         *fiber.App
	telemetry          *opentelemetry.Telemetry
	logger             log.Logger
	httpAddress        string
	serversStarted     chan struct{}
	serversStartedOnce sync.Once
	shutdownChan       <-chan struct{}
	shutdownOnce       sync.Once
	shutdownTimeout    time.Duration
	startupErrors      chan error
}

var _ facemesh.App = (*ServerManager)(nil)

// NewServerManager creates a ServerManager. A nil logger becomes a NopLogger.
func NewServerManager(telemetry *opentelemetry.Telemetry, logger log.Logger) *ServerManager {
	if logger == nil {
		logger = log.NewNop()
	}

	return &ServerManager{
		telemetry:       telemetry,
		logger:          logger,
		serversStarted:  make(chan struct{}),
		shutdownTimeout: DefaultShutdownTimeout,
		startupErrors:   make(chan error, 1),
	}
}

// WithHTTPServer configures the HTTP server and its listen address.
func (sm *ServerManager) WithHTTPServer(app *fiber.App, address string) *ServerManager {
	sm.httpServer = app
	sm.httpAddress = address

	return sm
}

// WithShutdownChannel replaces OS signal handling with ch; closing ch starts shutdown.
func (sm *ServerManager) WithShutdownChannel(ch <-chan struct{}) *ServerManager {
	sm.shutdownChan = ch

	return sm
}

// WithShutdownTimeout bounds the HTTP drain and the telemetry flush. Non-positive values are ignored.
func (sm *ServerManager) WithShutdownTimeout(d time.Duration) *ServerManager {
	if d > 0 {
		sm.shutdownTimeout = d
	}

	return sm
}

// ServersStarted is closed once the server goroutine has been launched.
// It does not mean the socket is bound.
func (sm *ServerManager) ServersStarted() <-chan struct{} {
	return sm.serversStarted
}

// Run implements facemesh.App.
func (sm *ServerManager) Run(_ *facemesh.Launcher) error {
	return sm.StartWithGracefulShutdownWithError()
}

// StartWithGracefulShutdownWithError starts the server and blocks until a
// termination signal, a closed shutdown channel or a startup failure. The
// startup failure, if any, is returned after shutdown completes.
func (sm *ServerManager) StartWithGracefulShutdownWithError() error {
	if sm.httpServer == nil {
		return ErrNoServersConfigured
	}

	sm.startServers()

	err := sm.waitForShutdown()

	sm.executeShutdown()

	return err
}

func (sm *ServerManager) startServers() {
	runtime.SafeGoWithContextAndComponent(
		context.Background(),
		sm.logger,
		"server",
		"start_http_server",
		runtime.KeepRunning,
		func(_ context.Context) {
			sm.logInfof("Starting HTTP server on %s", sm.httpAddress)

			if err := sm.httpServer.Listen(sm.httpAddress); err != nil {
				sm.logErrorf("HTTP server error: %v", err)

				select {
				case sm.startupErrors <- fmt.Errorf("HTTP server: %w", err):
				default:
				}
			}
		},
	)

	sm.serversStartedOnce.Do(func() {
		close(sm.serversStarted)
	})
}

func (sm *ServerManager) waitForShutdown() error {
	var startupErr error

	if sm.shutdownChan != nil {
		select {
		case <-sm.shutdownChan:
		case startupErr = <-sm.startupErrors:
		}
	} else {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)

		select {
		case <-c:
		case startupErr = <-sm.startupErrors:
		}

		signal.Stop(c)
	}

	if startupErr != nil {
		sm.logErrorf("Server startup failed: %v", startupErr)
	}

	sm.logInfo("Gracefully shutting down all servers...")

	return startupErr
}

// executeShutdown runs the shutdown sequence once.
func (sm *ServerManager) executeShutdown() {
	sm.shutdownOnce.Do(func() {
		if sm.httpServer != nil {
			sm.logInfo("Shutting down HTTP server...")

			if err := sm.httpServer.ShutdownWithTimeout(sm.shutdownTimeout); err != nil {
				sm.logErrorf("Error during HTTP server shutdown: %v", err)
			}
		}

		if sm.telemetry != nil {
			sm.logInfo("Shutting down telemetry...")

			ctx, cancel := context.WithTimeout(context.Background(), sm.shutdownTimeout)
			if err := sm.telemetry.ShutdownTelemetryWithContext(ctx); err != nil {
				sm.logErrorf("Error during telemetry shutdown: %v", err)
			}

			cancel()
		}

		sm.logInfo("Syncing logger...")

		if err := sm.logger.Sync(context.Background()); err != nil {
			sm.logErrorf("Failed to sync logger: %v", err)
		}

		sm.logInfo("Graceful shutdown completed")
	})
}

func (sm *ServerManager) logInfo(msg string) {
	sm.logger.Log(context.Background(), log.LevelInfo, msg)
}

func (sm *ServerManager) logInfof(format string, args ...any) {
	sm.logger.Log(context.Background(), log.LevelInfo, fmt.Sprintf(format, args...))
}

func (sm *ServerManager) logErrorf(format string, args ...any) {
	sm.logger.Log(context.Background(), log.LevelError, fmt.Sprintf(format, args...))
}
