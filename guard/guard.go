package guard

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/rickb777/date/v2/timespan"
	"go.uber.org/zap"
)

// IMPORTANT:
// This guard is **intentionally NOT thread-safe**.
//
// It is designed with the assumption that each guard instance will be used
// only within a **single goroutine** and **single execution scope**.
//
// ➤ We deliberately avoided synchronization (mutexes, atomic ops, etc.)
//
//	to keep the guard lightweight and avoid accidental cross-goroutine sharing.
//
// ➤ Sharing a guard across multiple goroutines without external
//
//	synchronization will lead to **undefined behavior**, including double
//	cleanup invocations or dereferences of a cleared value.
//
// This is a **conscious design choice** to reinforce proper scoping and ownership.
// If you require shared access, explicitly manage synchronization outside this scope.
type Guard[T Cleanuper] struct {
	GuardId   string
	inner     T
	released  bool
	armed     bool
	wrappedAt time.Time
	lifetime  timespan.TimeSpan
}

// New returns a guard holding the sole cleanup authority over inner.
//
// The guard does not copy inner and does not claim exclusive access to it:
// other holders (including inner's own cycle partners) may keep referencing
// and mutating it for the guard's whole lifetime. The guard owns only the
// decision to invoke Cleanup, and invokes it at most once.
//
// Usage constraint: nothing reachable from inner may hold a reference back
// to the guard itself. A guard stored inside the graph it is supposed to
// tear down is undefined behavior.
func New[T Cleanuper](inner T) (*Guard[T], error) {
	if isNil(inner) {
		return nil, fmt.Errorf("%w: %T", ErrNilInner, inner)
	}
	g := &Guard[T]{
		GuardId:   uuid.New().String(),
		inner:     inner,
		wrappedAt: time.Now(),
	}
	logger, _ := zap.NewProduction()
	logger.Sugar().Debugf("created guard: guardId: %v, inner: %T", g.GuardId, inner)
	return g, nil
}

// MustNew is the panic-on-failure variant of New.
func MustNew[T Cleanuper](inner T) *Guard[T] {
	g, err := New(inner)
	if err != nil {
		panic(err)
	}
	return g
}

// Release invokes the guarded value's Cleanup exactly once, clears the held
// reference, and marks the guard inert. Every further call is a no-op, no
// matter how many arrive or through which path (explicit call, Do, context
// teardown, finalizer backstop).
//
// The inert flag is set before Cleanup runs, so a Cleanup that reaches the
// guard again (e.g. through the object graph it is dismantling) cannot
// recurse into a second invocation.
func (g *Guard[T]) Release() {
	if g.released {
		return
	}
	g.released = true
	g.lifetime = timespan.BetweenTimes(g.wrappedAt, time.Now())
	g.disarmBackstop()
	inner := g.inner
	var zero T
	g.inner = zero
	inner.Cleanup()
	logger, _ := zap.NewProduction()
	logger.Sugar().Debugf("released guard: guardId: %v", g.GuardId)
}

// Inner returns the guarded value, or ErrUseAfterRelease once the guard is
// inert. The reference is cleared on release; it is never handed out stale.
func (g *Guard[T]) Inner() (T, error) {
	if g.released {
		var zero T
		return zero, fmt.Errorf("%w: guardId: %s", ErrUseAfterRelease, g.GuardId)
	}
	return g.inner, nil
}

// MustInner is the panic-on-failure variant of Inner.
func (g *Guard[T]) MustInner() T {
	inner, err := g.Inner()
	if err != nil {
		panic(err)
	}
	return inner
}

// Released reports whether the guard has gone inert.
func (g *Guard[T]) Released() bool {
	return g.released
}

// Lifetime returns the span between construction and release.
// ok is false until the guard has been released.
func (g *Guard[T]) Lifetime() (ts timespan.TimeSpan, ok bool) {
	if !g.released {
		return
	}
	return g.lifetime, true
}

// isNil catches both untyped nils and typed nil pointers hiding behind the
// Cleanuper constraint.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
