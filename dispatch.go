// Package dispatch routes input events through a per-frame UI element tree.
package dispatch

// Phase identifies where in the propagation walk a listener is being invoked.
type Phase uint8

const (
	// PhaseCapture walks root to target, excluding the target itself.
	PhaseCapture Phase = iota
	// PhaseTarget is the single call at the deepest node on the path.
	PhaseTarget
	// PhaseBubble walks from the target's parent back to the root.
	PhaseBubble
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseCapture:
		return "capture"
	case PhaseTarget:
		return "target"
	case PhaseBubble:
		return "bubble"
	default:
		return "unknown"
	}
}

// Result is what a phase-aware listener reports back to the dispatcher.
type Result uint8

const (
	// ResultIgnored means the listener did nothing with the event.
	ResultIgnored Result = iota
	// ResultHandled means the event was consumed but propagation continues.
	ResultHandled
	// ResultStop halts propagation immediately.
	ResultStop
)

// String returns a human-readable result name.
func (r Result) String() string {
	switch r {
	case ResultIgnored:
		return "ignored"
	case ResultHandled:
		return "handled"
	case ResultStop:
		return "stop"
	default:
		return "unknown"
	}
}

// DispatchClick hit-tests the point and bubbles a click from the target
// toward the root. Reports whether any listener consumed the click.
func (t *Tree) DispatchClick(env *Env, x, y int) bool {
	target, ok := t.HitTest(x, y)
	if !ok {
		return false
	}
	return t.DispatchClickTo(env, target)
}

// DispatchClickTo bubbles a click from target toward the root. Clicks fire
// once: at the nearest node carrying any click listener, the first simple
// listener (or, failing that, the first bound handler) is invoked and the
// walk halts. Remaining listeners on the same node never fire.
func (t *Tree) DispatchClickTo(env *Env, target NodeID) bool {
	if !t.valid(target) {
		return false
	}
	for id := target; id != InvalidNode; id = t.nodes[id].parent {
		n := &t.nodes[id]
		if len(n.clicks) > 0 {
			n.clicks[0](env)
			return true
		}
		if len(n.clickHandlers) > 0 {
			h := n.clickHandlers[0]
			h.Fn(env, h.Arg)
			return true
		}
	}
	return false
}

// DispatchMouseDown runs the two-phase walk over a root-to-target path:
// capture from the root down to (but not including) the target, then target
// and bubble back up. A ResultStop short-circuits whichever phase it occurs
// in. Reports whether any listener did something with the event.
func (t *Tree) DispatchMouseDown(env *Env, path []NodeID, ev MouseEvent) bool {
	if !t.validPath(path) {
		return false
	}
	handled := false
	for i := 0; i < len(path)-1; i++ {
		for _, fn := range t.nodes[path[i]].mouseDowns {
			switch fn(env, ev, PhaseCapture) {
			case ResultHandled:
				handled = true
			case ResultStop:
				return true
			}
		}
	}
	for i := len(path) - 1; i >= 0; i-- {
		phase := PhaseBubble
		if i == len(path)-1 {
			phase = PhaseTarget
		}
		for _, fn := range t.nodes[path[i]].mouseDowns {
			switch fn(env, ev, phase) {
			case ResultHandled:
				handled = true
			case ResultStop:
				return true
			}
		}
	}
	return handled
}

// DispatchMouseDownAt hit-tests the event position and runs DispatchMouseDown
// over the resulting path.
func (t *Tree) DispatchMouseDownAt(env *Env, ev MouseEvent) bool {
	target, ok := t.HitTest(ev.X, ev.Y)
	if !ok {
		return false
	}
	return t.DispatchMouseDown(env, t.DispatchPath(target), ev)
}

// DispatchKeyDown runs the two-phase walk over a path, normally the focus
// path. Full key listeners see every phase; simple key listeners are only
// invoked during the target and bubble phases.
func (t *Tree) DispatchKeyDown(env *Env, path []NodeID, ev KeyEvent) bool {
	if !t.validPath(path) {
		return false
	}
	handled := false
	for i := 0; i < len(path)-1; i++ {
		for _, fn := range t.nodes[path[i]].keyDowns {
			switch fn(env, ev, PhaseCapture) {
			case ResultHandled:
				handled = true
			case ResultStop:
				return true
			}
		}
	}
	for i := len(path) - 1; i >= 0; i-- {
		phase := PhaseBubble
		if i == len(path)-1 {
			phase = PhaseTarget
		}
		n := &t.nodes[path[i]]
		for _, fn := range n.keyDowns {
			switch fn(env, ev, phase) {
			case ResultHandled:
				handled = true
			case ResultStop:
				return true
			}
		}
		for _, fn := range n.keyPresses {
			switch fn(env, ev) {
			case ResultHandled:
				handled = true
			case ResultStop:
				return true
			}
		}
	}
	return handled
}

// DispatchAction walks a path from its deepest node toward the root. The
// first listener whose registered type matches the action consumes it and
// the walk halts. There is no capture phase for actions.
func (t *Tree) DispatchAction(env *Env, path []NodeID, act Action) bool {
	if !t.validPath(path) {
		return false
	}
	for i := len(path) - 1; i >= 0; i-- {
		for _, al := range t.nodes[path[i]].actions {
			if al.typ == act.Type {
				al.fn(env, act)
				return true
			}
		}
	}
	return false
}

// DispatchClickOutside hit-tests the point and fires click-outside listeners
// for every interested node the point misses. Returns the number of nodes
// whose listeners fired.
func (t *Tree) DispatchClickOutside(env *Env, x, y int) int {
	target, _ := t.HitTest(x, y)
	return t.DispatchClickOutsideWithTarget(env, x, y, target)
}

// DispatchClickOutsideWithTarget is DispatchClickOutside with a precomputed
// hit-test target. A node's listeners fire iff the point lies outside the
// node's bounds and the target is neither the node nor one of its
// descendants; the second condition keeps a node's floating children from
// triggering its own click-outside. Nodes without synced bounds never fire.
func (t *Tree) DispatchClickOutsideWithTarget(env *Env, x, y int, target NodeID) int {
	fired := 0
	for _, id := range t.clickOutsideNodes {
		n := &t.nodes[id]
		if !n.hasBounds || n.bounds.Contains(x, y) {
			continue
		}
		if target != InvalidNode && t.isSelfOrDescendant(target, id) {
			continue
		}
		for _, fn := range n.clickOutside {
			fn(env)
		}
		fired++
	}
	return fired
}

// DispatchMouseEnter fires the node's enter listeners. Hover events do not
// propagate; only the node itself is notified. Returns the listener count.
func (t *Tree) DispatchMouseEnter(env *Env, id NodeID) int {
	if !t.valid(id) {
		return 0
	}
	for _, fn := range t.nodes[id].mouseEnters {
		fn(env)
	}
	return len(t.nodes[id].mouseEnters)
}

// DispatchMouseLeave fires the node's leave listeners. Returns the listener
// count.
func (t *Tree) DispatchMouseLeave(env *Env, id NodeID) int {
	if !t.valid(id) {
		return 0
	}
	for _, fn := range t.nodes[id].mouseLeaves {
		fn(env)
	}
	return len(t.nodes[id].mouseLeaves)
}

// isSelfOrDescendant reports whether id is ancestor itself or lies in
// ancestor's subtree.
func (t *Tree) isSelfOrDescendant(id, ancestor NodeID) bool {
	for cur := id; cur != InvalidNode; cur = t.nodes[cur].parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// validPath reports whether every id on the path belongs to the current
// frame. Paths built by DispatchPath always pass; stale or hand-rolled
// paths fail closed.
func (t *Tree) validPath(path []NodeID) bool {
	if len(path) == 0 {
		return false
	}
	for _, id := range path {
		if !t.valid(id) {
			return false
		}
	}
	return true
}
