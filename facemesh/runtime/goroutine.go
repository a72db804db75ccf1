package runtime

import "context"

// SafeGo launches fn in a goroutine with panic recovery under policy.
func SafeGo(logger Logger, name string, policy PanicPolicy, fn func()) {
	SafeGoWithContextAndComponent(context.Background(), logger, "", name, policy, func(context.Context) {
		fn()
	})
}

// SafeGoWithContext launches fn in a goroutine, passing ctx and recovering panics.
func SafeGoWithContext(ctx context.Context, logger Logger, name string, policy PanicPolicy, fn func(context.Context)) {
	SafeGoWithContextAndComponent(ctx, logger, "", name, policy, fn)
}

// SafeGoWithContextAndComponent launches fn in a goroutine with panic recovery.
// component and name label the recorded panic metric and span event.
func SafeGoWithContextAndComponent(
	ctx context.Context,
	logger Logger,
	component, name string,
	policy PanicPolicy,
	fn func(context.Context),
) {
	if ctx == nil {
		ctx = context.Background()
	}

	go func() {
		defer RecoverWithPolicyAndContext(ctx, logger, component, name, policy)

		fn(ctx)
	}()
}
