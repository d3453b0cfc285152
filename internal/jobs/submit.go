package jobs

// RunErr submits fn at priority p. The returned handle carries fn's result
// and error, a *PanicError if fn panicked, or ErrManagerClosed.
func RunErr[R any](m *Manager, p Priority, fn func() (R, error)) *Handle[R] {
	h := newHandle[R](m.help)
	if !m.submit(p, newFuncTask(h, fn)) {
		var zero R
		h.set(zero, ErrManagerClosed)
	}
	return h
}

// Run submits fn at priority p. Arguments are bound by closure capture.
func Run[R any](m *Manager, p Priority, fn func() R) *Handle[R] {
	return RunErr(m, p, func() (R, error) {
		return fn(), nil
	})
}

// Go submits fn at priority p. The handle only signals completion.
func Go(m *Manager, p Priority, fn func()) *Handle[struct{}] {
	return RunErr(m, p, func() (struct{}, error) {
		fn()
		return struct{}{}, nil
	})
}

// RunAndWait submits fn and waits for it, running queued work meanwhile.
func RunAndWait[R any](m *Manager, p Priority, fn func() R) (R, error) {
	return Run(m, p, fn).Wait()
}
