// Package proxy provides a name-based forwarding wrapper with the same
// exactly-once cleanup contract as package guard, for call sites that
// resolve operations dynamically rather than through a static interface.
//
// # Forwarding
//
// A Proxy holds the reflected capability set of its wrapped value. Invoke
// resolves an operation name against that set and calls it directly on the
// wrapped value, so results, panics, and diagnostics all come from the
// value's own method; the proxy adds no observable frame of its own. An
// unresolvable name fails with the identical diagnostic the direct call
// path produces: both paths share one formatting site.
//
// Capability queries follow the same rule: CanDo and IsA answer for the
// wrapped value. Only free-standing identity inspection (reflect.TypeOf,
// %T applied to the proxy itself) observes the proxy's own type; that is
// the documented limit of transparency.
//
// # Cleanup
//
// Wrap validates at construction that the value exposes a zero-argument
// Cleanup operation and refuses nils and primitives outright. Release
// invokes Cleanup exactly once, clears the reference, and leaves the proxy
// inert: further releases are no-ops, further forwarding fails with
// ErrUseAfterRelease.
package proxy
