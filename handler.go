package dispatch

// EntityID is an opaque handle into the host application's entity system.
// The tree carries these through handler invocations without interpreting
// them.
type EntityID uint64

// EntityResolver looks up host state for an entity id. Attached to Env by
// the application; never called by the tree itself.
type EntityResolver func(EntityID) (any, bool)

// Env is the application environment handle passed to every listener.
// Listeners use it to request a future re-render or to reach host state.
// The tree never inspects its contents.
type Env struct {
	// Resolve, when set, lets handlers look up entities by id.
	Resolve EntityResolver

	// Data is an optional application-owned value for handlers to share.
	Data any

	renderRequested bool
}

// RequestRender marks that a render is needed. The flag is a deferred
// signal: no render happens until the host consumes it, so handlers may
// call this freely mid-dispatch.
func (e *Env) RequestRender() {
	e.renderRequested = true
}

// TakeRenderRequest consumes the pending render request, reporting whether
// one was set since the last take.
func (e *Env) TakeRenderRequest() bool {
	r := e.renderRequested
	e.renderRequested = false
	return r
}

// Entity resolves an entity through the attached resolver, if any.
func (e *Env) Entity(id EntityID) (any, bool) {
	if e.Resolve == nil {
		return nil, false
	}
	return e.Resolve(id)
}

// ClickFunc is a simple click listener.
type ClickFunc func(*Env)

// Handler pairs a callback with an opaque 64-bit argument, typically an
// EntityID. The dispatcher invokes Fn with Arg verbatim; closures cover
// most cases, but the explicit pair keeps entity plumbing allocation-free.
type Handler struct {
	Fn  func(*Env, uint64)
	Arg uint64
}

// MouseFunc is a phase-aware mouse-down listener.
type MouseFunc func(*Env, MouseEvent, Phase) Result

// KeyFunc is a phase-aware key listener. It sees capture, target and
// bubble phases along the focus path.
type KeyFunc func(*Env, KeyEvent, Phase) Result

// KeyPressFunc is a simple key listener, invoked only during the target
// and bubble phases.
type KeyPressFunc func(*Env, KeyEvent) Result

// ActionFunc receives a dispatched action whose type matched the
// registration.
type ActionFunc func(*Env, Action)

// ClickOutsideFunc fires when a click lands outside the node it was
// registered on.
type ClickOutsideFunc func(*Env)

// HoverFunc fires when the pointer enters or leaves a node.
type HoverFunc func(*Env)
