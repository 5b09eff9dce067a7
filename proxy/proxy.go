package proxy

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/hatchify/errors"
	"github.com/rickb777/date/v2/timespan"
	"go.uber.org/zap"
)

const (
	// ErrConstruction is returned when a proxy cannot be constructed around the candidate value
	ErrConstruction = errors.Error("proxy construction failed")
	// ErrMissingCleanup is returned when the candidate value does not expose a zero-argument Cleanup operation
	ErrMissingCleanup = errors.Error("value does not expose a Cleanup operation")
	// ErrUseAfterRelease is returned when an operation is forwarded through an already-released proxy
	ErrUseAfterRelease = errors.Error("proxy has already been released")
)

// cleanupOp is the capability every wrapped value must expose: a method
// taking no arguments. A trailing error result is allowed and surfaced
// from Release.
const cleanupOp = "Cleanup"

// IMPORTANT:
// This proxy is **intentionally NOT thread-safe**.
//
// It is designed with the assumption that each proxy instance will be used
// only within a **single goroutine** and **single execution scope**.
//
// ➤ We deliberately avoided synchronization (mutexes, atomic ops, etc.)
//
//	to keep the proxy lightweight and avoid accidental cross-goroutine sharing.
//
// ➤ Sharing a proxy across multiple goroutines without external
//
//	synchronization will lead to **undefined behavior**, including double
//	cleanup invocations or forwarding against a cleared reference.
//
// This is a **conscious design choice** to reinforce proper scoping and ownership.
// If you require shared access, explicitly manage synchronization outside this scope.
type Proxy struct {
	ProxyId   string
	caps      *CapabilitySet
	released  bool
	wrappedAt time.Time
	lifetime  timespan.TimeSpan
}

// Wrap constructs a proxy around inner and takes over the decision to run
// its Cleanup. It takes exactly one argument: the value to wrap.
//
// inner must be a structured object (a struct or pointer to one, never nil
// or a primitive) exposing a zero-argument Cleanup operation; anything else
// fails with an error unwrapping to ErrConstruction and naming the
// offending condition. On success the proxy forwards any operation of
// inner's capability set (see Invoke) while its own runtime type stays its
// own: reflect.TypeOf(proxy) never reports inner's type.
//
// Usage constraint: nothing reachable from inner may hold a reference back
// to the proxy itself. A proxy stored inside the graph it is supposed to
// tear down is undefined behavior.
func Wrap(inner any) (*Proxy, error) {
	caps, err := CapabilitiesOf(inner)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConstruction, err)
	}
	if !caps.CanDo(cleanupOp) {
		return nil, fmt.Errorf("%w: %w: %s", ErrConstruction, ErrMissingCleanup, caps.TypeName())
	}
	if numIn := caps.arity(cleanupOp); numIn != 0 {
		return nil, fmt.Errorf("%w: %w: %s.%s takes %d arguments, want 0",
			ErrConstruction, ErrMissingCleanup, caps.TypeName(), cleanupOp, numIn)
	}

	p := &Proxy{
		ProxyId:   uuid.New().String(),
		caps:      caps,
		wrappedAt: time.Now(),
	}
	logger, _ := zap.NewProduction()
	logger.Sugar().Debugf("wrapped %v: proxyId: %v, fingerprint: %x",
		caps.TypeName(), p.ProxyId, caps.Fingerprint())
	return p, nil
}

// Invoke forwards the named operation to the wrapped value as if it had
// been called on the value directly: same arguments, same results, and a
// missing operation fails with the very diagnostic the direct call path
// produces (see CapabilitySet.Invoke).
//
// There is no carve-out for constructor-style names: an operation called
// "NewX" resolves on the wrapped value like any other and returns whatever
// the value's method returns: a plain value, never a new proxy.
//
// Once the proxy is released the reference is gone; forwarding then fails
// with ErrUseAfterRelease rather than silently resolving against nothing.
func (p *Proxy) Invoke(op string, args ...any) ([]any, error) {
	if p.released {
		return nil, fmt.Errorf("%w: proxyId: %s", ErrUseAfterRelease, p.ProxyId)
	}
	return p.caps.Invoke(op, args...)
}

// CanDo answers the operation-support query for the WRAPPED value, not the
// proxy: capability queries made through the proxy observe the inner
// object. An inert proxy answers false; the capability set is cleared
// with the reference.
func (p *Proxy) CanDo(op string) bool {
	return !p.released && p.caps.CanDo(op)
}

// IsA answers the type/capability query for the WRAPPED value, not the
// proxy. Identity inspection taken against the proxy itself
// (reflect.TypeOf, %T) still reports the proxy's own type; that asymmetry
// is a documented limitation, not a bug.
func (p *Proxy) IsA(target reflect.Type) bool {
	return !p.released && p.caps.IsA(target)
}

// Release invokes the wrapped value's Cleanup exactly once, clears the held
// reference, and marks the proxy inert. Every further call is a no-op
// returning nil, no matter how many arrive or through which path.
//
// If Cleanup returns an error it is surfaced here, but the proxy still goes
// inert: cleanup ran, and it will not run again.
func (p *Proxy) Release() error {
	if p.released {
		return nil
	}
	p.released = true
	p.lifetime = timespan.BetweenTimes(p.wrappedAt, time.Now())
	caps := p.caps
	p.caps = nil

	out, err := caps.Invoke(cleanupOp)
	if err != nil {
		// Unreachable: the capability was validated at Wrap.
		return err
	}
	logger, _ := zap.NewProduction()
	logger.Sugar().Debugf("released proxy: proxyId: %v", p.ProxyId)

	if len(out) == 1 {
		if cerr, ok := out[0].(error); ok && cerr != nil {
			return cerr
		}
	}
	return nil
}

// Released reports whether the proxy has gone inert.
func (p *Proxy) Released() bool {
	return p.released
}

// Lifetime returns the span between construction and release.
// ok is false until the proxy has been released.
func (p *Proxy) Lifetime() (ts timespan.TimeSpan, ok bool) {
	if !p.released {
		return
	}
	return p.lifetime, true
}
