package guard

// Do runs fn with the guarded value and releases the guard on every exit
// path, including panic. This is the scoped acquire/release form: callers
// that never need to hold the guard beyond one block should prefer it over
// New + Release.
func Do[T Cleanuper](inner T, fn func(T) error) error {
	g, err := New(inner)
	if err != nil {
		return err
	}
	defer g.Release()
	return fn(g.MustInner())
}
