package command

import (
	"context"
	"time"

	"github.com/goliatone/go-identity/pkg/types"
)

func safeClock(clock types.Clock) types.Clock {
	if clock != nil {
		return clock
	}
	return types.SystemClock{}
}

func safeLogger(logger types.Logger) types.Logger {
	if logger != nil {
		return logger
	}
	return types.NopLogger{}
}

func safeHooks(hooks types.Hooks) types.Hooks {
	return hooks
}

func safeActivitySink(sink types.ActivitySink) types.ActivitySink {
	return sink
}

func now(clock types.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now()
}

func logActivity(ctx context.Context, sink types.ActivitySink, record types.ActivityRecord) {
	if sink == nil {
		return
	}
	_ = sink.Log(ctx, record)
}

func emitActivityHook(ctx context.Context, hooks types.Hooks, record types.ActivityRecord) {
	if hooks.AfterActivity == nil {
		return
	}
	hooks.AfterActivity(ctx, record)
}

func emitConfirmationHook(ctx context.Context, hooks types.Hooks, event types.ConfirmationEvent) {
	if hooks.AfterConfirmation == nil {
		return
	}
	hooks.AfterConfirmation(ctx, event)
}

func emitResetHook(ctx context.Context, hooks types.Hooks, event types.ResetEvent) {
	if hooks.AfterReset == nil {
		return
	}
	hooks.AfterReset(ctx, event)
}

func resolveSettings(resolver types.SettingsResolver, fallback types.Settings, scope types.ScopeFilter) types.Settings {
	if resolver != nil {
		return resolver.Resolve(scope)
	}
	return fallback.Normalize()
}

func cloneMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
