package guard

import "github.com/hatchify/errors"

const (
	// ErrNilInner is returned when a guard is constructed around a nil value
	ErrNilInner = errors.Error("cannot guard a nil value")
	// ErrUseAfterRelease is returned when a released guard is dereferenced
	ErrUseAfterRelease = errors.Error("guard has already been released")
	// ErrNoGuardInContext is returned when no guard is registered in the context
	ErrNoGuardInContext = errors.Error("no guard registered in context")
)

// Cleanuper is the capability a guarded value must expose.
//
// The guard guarantees Cleanup is invoked at most once per guard instance.
// It does NOT assume the value itself tolerates repeated invocations;
// that is exactly what the guard exists to prevent.
type Cleanuper interface {
	Cleanup()
}
