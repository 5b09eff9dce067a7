package guard_test

import (
	"context"
	"testing"

	"github.com/on-the-ground/scopeguard/guard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithGuard_RegisterAndRetrieve(t *testing.T) {
	ctx := context.Background()
	res := &resource{name: "a"}

	ctxWith, teardown := guard.WithGuard(ctx, res)

	g, err := guard.FromContext[*resource](ctxWith)
	require.NoError(t, err)
	assert.Same(t, res, g.MustInner())

	restored := teardown()
	assert.Equal(t, 1, res.cleanups)
	assert.True(t, g.Released())

	_, err = guard.FromContext[*resource](restored)
	assert.ErrorIs(t, err, guard.ErrNoGuardInContext)
}

func TestWithGuard_TeardownIdempotent(t *testing.T) {
	res := &resource{name: "a"}
	_, teardown := guard.WithGuard(context.Background(), res)

	teardown()
	teardown()
	teardown()

	assert.Equal(t, 1, res.cleanups)
}

func TestWithGuard_NilInnerPanics(t *testing.T) {
	var res *resource
	assert.Panics(t, func() {
		guard.WithGuard(context.Background(), res)
	})
}

func TestFromContext_NoGuard(t *testing.T) {
	_, err := guard.FromContext[*resource](context.Background())
	assert.ErrorIs(t, err, guard.ErrNoGuardInContext)

	assert.Panics(t, func() {
		guard.MustFromContext[*resource](context.Background())
	})
}

type other struct{}

func (o *other) Cleanup() {}

func TestFromContext_TypeMismatch(t *testing.T) {
	ctxWith, teardown := guard.WithGuard(context.Background(), &resource{name: "a"})
	defer teardown()

	_, err := guard.FromContext[*other](ctxWith)
	assert.Error(t, err)
}

func TestWithGuard_NestedShadowing(t *testing.T) {
	outer := &resource{name: "outer"}
	inner := &resource{name: "inner"}

	ctxOuter, teardownOuter := guard.WithGuard(context.Background(), outer)
	ctxInner, teardownInner := guard.WithGuard(ctxOuter, inner)

	g, err := guard.FromContext[*resource](ctxInner)
	require.NoError(t, err)
	assert.Same(t, inner, g.MustInner())

	_ = teardownInner()
	assert.Equal(t, 1, inner.cleanups)
	assert.Equal(t, 0, outer.cleanups)

	g, err = guard.FromContext[*resource](ctxOuter)
	require.NoError(t, err)
	assert.Same(t, outer, g.MustInner())

	_ = teardownOuter()
	assert.Equal(t, 1, outer.cleanups)
}
