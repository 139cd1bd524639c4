package ioc

import (
	"context"
	"log/slog"

	"github.com/centraunit/ioc/internal/ctxlog"
)

type executionIDKey struct{}

// WithExecutionID returns a context carrying an explicit execution identity.
// ResolveContext uses it instead of the registry's IdentityFunc, which lets
// task or worker based code share per-thread instances across goroutines.
// The id must be comparable.
func WithExecutionID(parent context.Context, id any) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithValue(parent, executionIDKey{}, id)
}

// ExecutionID returns the identity stored by WithExecutionID, if any.
func ExecutionID(ctx context.Context) (any, bool) {
	if ctx == nil {
		return nil, false
	}
	id := ctx.Value(executionIDKey{})
	return id, id != nil
}

// ContextWithLogger returns a context whose logger takes precedence over the
// registry logger for resolutions started through ResolveContext.
func ContextWithLogger(parent context.Context, logger *slog.Logger) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	return ctxlog.WithLogger(parent, logger)
}
