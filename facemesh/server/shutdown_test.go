//go:build unit

package server_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/LerianStudio/lib-facemesh/facemesh"
	"github.com/LerianStudio/lib-facemesh/facemesh/log"
	"github.com/LerianStudio/lib-facemesh/facemesh/opentelemetry"
	"github.com/LerianStudio/lib-facemesh/facemesh/server"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// fasthttp refreshes its cached Date header from a process-wide goroutine.
var leakOptions = []goleak.Option{
	goleak.IgnoreAnyFunction("github.com/valyala/fasthttp.updateServerDate.func1"),
}

type recordingLogger struct {
	mu       sync.Mutex
	messages []string
	syncErr  error
	synced   bool
}

func (l *recordingLogger) Log(_ context.Context, _ log.Level, msg string, _ ...log.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = append(l.messages, msg)
}

func (l *recordingLogger) With(_ ...log.Field) log.Logger { return l }
func (l *recordingLogger) WithGroup(_ string) log.Logger  { return l }
func (l *recordingLogger) Enabled(_ log.Level) bool       { return true }

func (l *recordingLogger) Sync(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.synced = true

	return l.syncErr
}

func (l *recordingLogger) getMessages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.messages...)
}

func freeAddress(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	return addr
}

// waitHealthy polls /health until the listener answers.
func waitHealthy(t *testing.T, addr string) {
	t.Helper()

	client := &http.Client{Timeout: time.Second}
	defer client.CloseIdleConnections()

	require.Eventually(t, func() bool {
		resp, err := client.Get(fmt.Sprintf("http://%s/health", addr))
		if err != nil {
			return false
		}

		_ = resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
}

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("healthy") })

	return app
}

func TestStartWithGracefulShutdownWithError_NoServers(t *testing.T) {
	sm := server.NewServerManager(nil, nil)
	assert.ErrorIs(t, sm.StartWithGracefulShutdownWithError(), server.ErrNoServersConfigured)
}

func TestServerManager_GracefulShutdownOrder(t *testing.T) {
	defer goleak.VerifyNone(t, leakOptions...)

	logger := &recordingLogger{}

	tl, err := opentelemetry.NewTelemetry(opentelemetry.TelemetryConfig{
		LibraryName: "server-test",
		ServiceName: "server-test",
		Logger:      log.NewNop(),
	})
	require.NoError(t, err)

	addr := freeAddress(t)
	shutdown := make(chan struct{})

	sm := server.NewServerManager(tl, logger).
		WithHTTPServer(newApp(), addr).
		WithShutdownChannel(shutdown).
		WithShutdownTimeout(5 * time.Second)

	done := make(chan error, 1)

	go func() { done <- sm.StartWithGracefulShutdownWithError() }()

	<-sm.ServersStarted()

	waitHealthy(t, addr)
	close(shutdown)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}

	msgs := logger.getMessages()
	idx := func(s string) int {
		for i, m := range msgs {
			if m == s {
				return i
			}
		}

		return -1
	}

	httpIdx := idx("Shutting down HTTP server...")
	tlIdx := idx("Shutting down telemetry...")
	syncIdx := idx("Syncing logger...")

	require.NotEqual(t, -1, httpIdx)
	assert.Less(t, httpIdx, tlIdx)
	assert.Less(t, tlIdx, syncIdx)
	assert.Equal(t, "Graceful shutdown completed", msgs[len(msgs)-1])
	assert.True(t, logger.synced)
}

func TestServerManager_StartupErrorIsReturned(t *testing.T) {
	defer goleak.VerifyNone(t, leakOptions...)

	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	logger := &recordingLogger{syncErr: errors.New("sync failed")}
	shutdown := make(chan struct{})
	defer close(shutdown)

	sm := server.NewServerManager(nil, logger).
		WithHTTPServer(newApp(), busy.Addr().String()).
		WithShutdownChannel(shutdown)

	err = sm.StartWithGracefulShutdownWithError()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP server")
	assert.Contains(t, logger.getMessages(), "Failed to sync logger: sync failed")
}

func TestServerManager_RunsUnderLauncher(t *testing.T) {
	defer goleak.VerifyNone(t, leakOptions...)

	shutdown := make(chan struct{})
	addr := freeAddress(t)

	sm := server.NewServerManager(nil, nil).
		WithHTTPServer(newApp(), addr).
		WithShutdownChannel(shutdown)

	launcher := facemesh.NewLauncher(
		facemesh.WithLogger(log.NewNop()),
		facemesh.RunApp("http", sm),
	)

	done := make(chan error, 1)

	go func() { done <- launcher.RunWithError() }()

	<-sm.ServersStarted()
	waitHealthy(t, addr)
	close(shutdown)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("launcher did not return")
	}
}

func TestWithShutdownTimeout_IgnoresNonPositive(t *testing.T) {
	sm := server.NewServerManager(nil, nil).WithShutdownTimeout(0)
	assert.NotNil(t, sm)
}
