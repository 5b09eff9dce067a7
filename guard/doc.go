// Package guard provides deterministic, exactly-once cleanup of values
// whose own reachability cannot be trusted to trigger teardown.
//
// # Why a guard?
//
// A value that participates in a reference cycle (A holds B, B holds A)
// may stay reachable from its cycle partners long after its owning scope
// has ended. Anything keyed off the value's reachability, finalizers in
// particular, then runs late or not at all. A Guard decouples the two:
// the guard's own lifetime, not the value's, decides when Cleanup runs.
//
// # Lifecycle
//
// A guard is constructed around a live value, used for zero or more
// dereferences, and then released: explicitly, through a Do block, or
// through a context teardown.
//
//	g, err := guard.New(conn)
//	if err != nil { ... }
//	defer g.Release()
//
// Release invokes the value's Cleanup exactly once and clears the held
// reference; every later Release is a no-op, and every later dereference
// fails with ErrUseAfterRelease. The guard never guesses: a value without
// a Cleanup capability is rejected at construction by the type system.
//
// # What the guard does NOT do
//
// It does not detect cycles, traverse graphs, or dismantle anything
// itself; the value's own Cleanup must know how to clear its fields.
// And it does not claim exclusive access: other holders may keep using
// the value while the guard is live. The guard owns one thing only, the
// at-most-once invocation of Cleanup.
package guard
