package reactive

// Effect is a function whose reads establish dependencies and whose body
// produces a side effect. It re-runs whenever a key it read is written.
type Effect struct {
	id  uint64
	fn  func()
	reg *Registry

	// deps are the slots this effect is subscribed under.
	deps []depKey

	// parent owns this effect; children are disposed before parent re-runs.
	parent   *Effect
	children []*Effect

	runs     int
	disposed bool
}

// ID returns the unique identifier for this effect.
func (e *Effect) ID() uint64 {
	return e.id
}

// Runs returns how many times the effect body has executed.
func (e *Effect) Runs() int {
	return e.runs
}

// Disposed reports whether the effect has been disposed.
func (e *Effect) Disposed() bool {
	return e.disposed
}

// run executes the effect body with e on top of the active stack.
func (e *Effect) run() {
	if e.disposed {
		return
	}
	e.disposeChildren()

	r := e.reg
	if r.onRun != nil {
		r.onRun(e)
	}
	r.stack = append(r.stack, e)
	defer func() { r.stack = r.stack[:len(r.stack)-1] }()

	e.runs++
	e.fn()
}

func (e *Effect) disposeChildren() {
	children := e.children
	e.children = nil
	for _, c := range children {
		c.parent = nil
		c.Dispose()
	}
}

// Dispose unsubscribes the effect from every key and disposes its children.
// A disposed effect never runs again. Dispose on a nil effect is a no-op.
func (e *Effect) Dispose() {
	if e == nil || e.disposed {
		return
	}
	e.disposed = true
	e.disposeChildren()

	for _, k := range e.deps {
		e.reg.unsubscribe(e, k)
	}
	e.deps = nil

	if p := e.parent; p != nil {
		for i, c := range p.children {
			if c == e {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
		e.parent = nil
	}
}
