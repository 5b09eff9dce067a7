package guard

import (
	"context"
	"fmt"

	"github.com/on-the-ground/scopeguard/shared/helper"
	"go.uber.org/zap"
)

type contextKey string

// ContextKey is the context key under which WithGuard registers a guard.
// A nested WithGuard shadows the outer registration for its own scope.
const ContextKey contextKey = "scopeguard_guard_context_key"

// WithGuard constructs a guard around inner, registers it in the context,
// and returns the teardown function. The teardown releases the guard and
// hands back the parent context, which should be used for further
// operations once the scope ends. Calling teardown more than once is safe.
//
// Panics if inner is nil; use New directly when the caller wants the error.
func WithGuard[T Cleanuper](ctx context.Context, inner T) (context.Context, func() context.Context) {
	g := MustNew(inner)
	ctxWith := context.WithValue(ctx, ContextKey, g)
	logger, _ := zap.NewProduction()
	logger.Sugar().Debugf("registered guard in context: guardId: %v", g.GuardId)

	return ctxWith, func() context.Context {
		g.Release()
		logger.Sugar().Debugf("released guard from context teardown: guardId: %v", g.GuardId)
		return ctx
	}
}

// FromContext retrieves the guard registered by WithGuard.
// Returns ErrNoGuardInContext if none is registered, or a type error if the
// registered guard does not wrap a T.
func FromContext[T Cleanuper](ctx context.Context) (*Guard[T], error) {
	return helper.GetTypedValueOf[*Guard[T]](func() (any, error) {
		raw := ctx.Value(ContextKey)
		if raw == nil {
			return nil, fmt.Errorf("%w", ErrNoGuardInContext)
		}
		return raw, nil
	})
}

// MustFromContext is the panic-on-failure variant of FromContext.
// Use when the guard is guaranteed to be registered.
func MustFromContext[T Cleanuper](ctx context.Context) *Guard[T] {
	return helper.MustGetTypedValue[*Guard[T]](func() (any, error) {
		raw := ctx.Value(ContextKey)
		if raw == nil {
			return nil, fmt.Errorf("%w", ErrNoGuardInContext)
		}
		return raw, nil
	})
}
