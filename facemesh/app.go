package facemesh

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/LerianStudio/lib-facemesh/facemesh/assert"
	"github.com/LerianStudio/lib-facemesh/facemesh/log"
	"github.com/LerianStudio/lib-facemesh/facemesh/runtime"
)

var (
	// ErrLoggerNil is returned when the launcher has no logger.
	ErrLoggerNil = errors.New("logger is nil")
	// ErrNilLauncher is returned when a launcher method is called on a nil receiver.
	ErrNilLauncher = errors.New("launcher is nil")
	// ErrEmptyApp is returned when an app name is empty or whitespace.
	ErrEmptyApp = errors.New("app name is empty")
	// ErrNilApp is returned when a nil app instance is provided.
	ErrNilApp = errors.New("app is nil")
	// ErrConfigFailed is returned when launcher options collected errors.
	ErrConfigFailed = errors.New("launcher configuration failed")
)

// App is a deployable component started by a Launcher.
type App interface {
	Run(launcher *Launcher) error
}

// LauncherOption configures a Launcher.
type LauncherOption func(l *Launcher)

// WithLogger sets the launcher logger.
func WithLogger(logger log.Logger) LauncherOption {
	return func(l *Launcher) {
		l.Logger = logger
	}
}

// RunApp registers app under name. Registration errors surface from RunWithError.
func RunApp(name string, app App) LauncherOption {
	return func(l *Launcher) {
		if err := l.Add(name, app); err != nil {
			l.configErrors = append(l.configErrors, fmt.Errorf("add app %q: %w", name, err))
		}
	}
}

// Launcher runs registered apps concurrently and waits for all of them.
type Launcher struct {
	Logger       log.Logger
	apps         map[string]App
	wg           *sync.WaitGroup
	configErrors []error
}

// NewLauncher creates a Launcher and applies opts in order.
func NewLauncher(opts ...LauncherOption) *Launcher {
	l := &Launcher{
		apps: make(map[string]App),
		wg:   new(sync.WaitGroup),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Add registers an app.
func (l *Launcher) Add(appName string, a App) error {
	if l == nil {
		_ = assert.New(context.Background(), nil, "launcher", "Add").Never(context.Background(), "launcher receiver is nil")
		return ErrNilLauncher
	}

	if l.apps == nil {
		l.apps = make(map[string]App)
	}

	asserter := assert.New(context.Background(), l.Logger, "launcher", "Add")

	if strings.TrimSpace(appName) == "" {
		_ = asserter.Never(context.Background(), "app name must not be empty")
		return ErrEmptyApp
	}

	if a == nil {
		_ = asserter.Never(context.Background(), "app must not be nil", "app_name", appName)
		return ErrNilApp
	}

	l.apps[appName] = a

	return nil
}

// RunWithError starts every registered app in its own recovered goroutine and
// blocks until all have returned. The first app error is returned.
func (l *Launcher) RunWithError() error {
	if l == nil {
		return ErrNilLauncher
	}

	if l.Logger == nil {
		return ErrLoggerNil
	}

	if len(l.configErrors) > 0 {
		return errors.Join(append([]error{ErrConfigFailed}, l.configErrors...)...)
	}

	if l.wg == nil {
		l.wg = new(sync.WaitGroup)
	}

	ctx := context.Background()

	var (
		mu       sync.Mutex
		firstErr error
	)

	l.Logger.Log(ctx, log.LevelInfo, "starting apps", log.Int("count", len(l.apps)))
	l.wg.Add(len(l.apps))

	for name, app := range l.apps {
		runtime.SafeGoWithContextAndComponent(ctx, l.Logger, "launcher", "run_app_"+name, runtime.KeepRunning,
			func(ctx context.Context) {
				defer l.wg.Done()

				l.Logger.Log(ctx, log.LevelInfo, "app starting", log.String("app", name))

				if err := app.Run(l); err != nil {
					l.Logger.Log(ctx, log.LevelError, "app error", log.String("app", name), log.Err(err))

					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("app %q: %w", name, err)
					}
					mu.Unlock()
				}

				l.Logger.Log(ctx, log.LevelInfo, "app finished", log.String("app", name))
			})
	}

	l.wg.Wait()
	l.Logger.Log(ctx, log.LevelInfo, "launcher terminated")

	return firstErr
}

// Run is RunWithError with the error logged instead of returned.
func (l *Launcher) Run() {
	if err := l.RunWithError(); err != nil && l != nil && l.Logger != nil {
		l.Logger.Log(context.Background(), log.LevelError, "launcher error", log.Err(err))
	}
}
