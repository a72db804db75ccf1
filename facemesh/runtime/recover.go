package runtime

import (
	"context"
	"runtime/debug"

	"github.com/LerianStudio/lib-facemesh/facemesh/log"
)

// Logger defines the minimal logging interface required by runtime.
// This interface is satisfied by facemesh/log.Logger.
type Logger interface {
	Log(ctx context.Context, level log.Level, msg string, fields ...log.Field)
}

// RecoverAndLogWithContext recovers from a panic, logs it and records it to
// metrics, the active span and the error reporter. Execution continues.
//
//	defer runtime.RecoverAndLogWithContext(ctx, logger, "http", "generate_3d_face")
func RecoverAndLogWithContext(ctx context.Context, logger Logger, component, name string) {
	if r := recover(); r != nil {
		handlePanic(ctx, logger, r, debug.Stack(), component, name)
	}
}

// RecoverAndCrashWithContext is like RecoverAndLogWithContext but re-panics
// after recording, for operations where continuing would be unsafe.
func RecoverAndCrashWithContext(ctx context.Context, logger Logger, component, name string) {
	if r := recover(); r != nil {
		handlePanic(ctx, logger, r, debug.Stack(), component, name)
		panic(r)
	}
}

// RecoverWithPolicyAndContext recovers from a panic and applies policy.
func RecoverWithPolicyAndContext(ctx context.Context, logger Logger, component, name string, policy PanicPolicy) {
	if r := recover(); r != nil {
		handlePanic(ctx, logger, r, debug.Stack(), component, name)

		if policy == CrashProcess {
			panic(r)
		}
	}
}

// HandlePanicValue processes a panic value that was already recovered by an
// external mechanism (e.g. Fiber's recover middleware). It does not call recover itself.
//
//	recover.New(recover.Config{
//	    EnableStackTrace: true,
//	    StackTraceHandler: func(c *fiber.Ctx, e any) {
//	        runtime.HandlePanicValue(c.UserContext(), logger, e, "http", c.Path())
//	    },
//	})
func HandlePanicValue(ctx context.Context, logger Logger, panicValue any, component, name string) {
	handlePanic(ctx, logger, panicValue, debug.Stack(), component, name)
}

func handlePanic(ctx context.Context, logger Logger, panicValue any, stack []byte, component, name string) {
	if ctx == nil {
		ctx = context.Background()
	}

	logPanicWithStack(ctx, logger, component, name, panicValue, stack)
	recordPanicMetric(ctx, component, name)
	RecordPanicToSpanWithComponent(ctx, panicValue, stack, component, name)
	reportPanicToErrorService(ctx, panicValue, stack, component, name)
}

func logPanicWithStack(ctx context.Context, logger Logger, component, name string, panicValue any, stack []byte) {
	if logger == nil {
		return
	}

	fields := []log.Field{
		log.String("component", component),
		log.String("goroutine_name", name),
		log.String("panic_value", formatPanicValue(panicValue)),
	}

	if !IsProductionMode() {
		fields = append(fields, log.String("stack_trace", string(stack)))
	}

	logger.Log(ctx, log.LevelError, "panic recovered", fields...)
}
