package guard

import "runtime"

// Backstop arms a runtime finalizer that releases the guard if the guard
// itself becomes unreachable without an explicit Release.
//
// Finalizer timing is not guaranteed, so the backstop is a safety net for
// forgotten releases, never a substitute for one: deterministic teardown
// still requires an explicit Release, Do, or context teardown. Release
// disarms the backstop.
func (g *Guard[T]) Backstop() *Guard[T] {
	if g.released || g.armed {
		return g
	}
	g.armed = true
	runtime.SetFinalizer(g, func(fg *Guard[T]) {
		fg.Release()
	})
	return g
}

func (g *Guard[T]) disarmBackstop() {
	if g.armed {
		runtime.SetFinalizer(g, nil)
		g.armed = false
	}
}
