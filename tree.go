package dispatch

import (
	"iter"

	"github.com/rs/zerolog"
)

// NodeID is an index into the tree's flat node array. Ids are only
// meaningful within the frame that produced them; Reset invalidates all of
// them wholesale.
type NodeID uint32

// InvalidNode is the sentinel id. Lookups that miss and construction calls
// with nothing to target resolve to it.
const InvalidNode = ^NodeID(0)

// LayoutID keys a node to the external layout engine's bounding boxes.
type LayoutID uint32

// Tree owns all dispatch nodes for the current frame. It is rebuilt every
// frame: the render walk pushes and pops nodes mirroring element open and
// close, layout results are synced in afterwards, and input queries run
// against the finished snapshot. All storage is retained across frames, so
// steady-state rebuilds allocate nothing once sizes stabilize.
//
// A Tree is exclusively owned by one render/dispatch loop. Listeners must
// not mutate the tree mid-dispatch.
type Tree struct {
	nodes []node
	count int // live nodes this frame; len(nodes) is the high-water mark

	stack []NodeID // open-element stack during construction

	byLayout map[LayoutID]NodeID
	byFocus  map[FocusID]NodeID

	// clickOutsideNodes lists nodes with click-outside listeners so the
	// dispatcher iterates k interested nodes instead of the whole tree.
	clickOutsideNodes []NodeID

	root NodeID

	path []NodeID // reusable dispatch-path buffer

	log zerolog.Logger
}

// TreeOption configures a Tree at construction.
type TreeOption func(*Tree)

// WithCapacity pre-allocates node storage for trees of a known size.
func WithCapacity(nodes int) TreeOption {
	return func(t *Tree) {
		if nodes > 0 {
			t.nodes = make([]node, 0, nodes)
		}
	}
}

// WithLogger attaches a logger for construction diagnostics. The default
// discards everything.
func WithLogger(log zerolog.Logger) TreeOption {
	return func(t *Tree) {
		t.log = log
	}
}

// NewTree creates an empty dispatch tree.
func NewTree(opts ...TreeOption) *Tree {
	t := &Tree{
		byLayout: make(map[LayoutID]NodeID),
		byFocus:  make(map[FocusID]NodeID),
		root:     InvalidNode,
		path:     make([]NodeID, 0, MaxPathDepth),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Reset clears the frame's contents while retaining backing storage:
// node and listener capacity, map buckets and the interest list all
// survive for the next frame.
func (t *Tree) Reset() {
	t.count = 0
	t.stack = t.stack[:0]
	clear(t.byLayout)
	clear(t.byFocus)
	t.clickOutsideNodes = t.clickOutsideNodes[:0]
	t.root = InvalidNode
}

// Build resets the tree and runs one frame's construction. Pushes left
// open at the end indicate a build defect in the caller; the stack is
// drained so the next frame starts clean.
func (t *Tree) Build(fn func(*Tree)) {
	t.Reset()
	fn(t)
	if len(t.stack) > 0 {
		t.log.Debug().Int("open", len(t.stack)).Msg("construction stack not empty at frame end")
		t.stack = t.stack[:0]
	}
}

// PushNode opens a new element: the node is allocated at the tail of the
// flat array, linked as the last child of the node atop the construction
// stack (or made the root when the stack is empty), and pushed so that
// configuration calls target it until the matching PopNode.
func (t *Tree) PushNode() NodeID {
	id := t.alloc()
	if len(t.stack) == 0 {
		t.root = id
	} else {
		parent := t.stack[len(t.stack)-1]
		t.nodes[id].parent = parent
		t.linkChild(parent, id)
	}
	t.stack = append(t.stack, id)
	return id
}

// PopNode closes the current element. The node stays in the tree; only
// the stack shrinks. Popping with nothing open is a no-op.
func (t *Tree) PopNode() {
	if len(t.stack) == 0 {
		return
	}
	t.stack = t.stack[:len(t.stack)-1]
}

// Current returns the node configuration calls target: the most recently
// opened, not yet closed node. InvalidNode when nothing is open.
func (t *Tree) Current() NodeID {
	if len(t.stack) == 0 {
		return InvalidNode
	}
	return t.stack[len(t.stack)-1]
}

// Root returns the frame's root node, or InvalidNode before the first
// push.
func (t *Tree) Root() NodeID {
	return t.root
}

// alloc returns the next node id, reusing storage below the high-water
// mark before growing the array.
func (t *Tree) alloc() NodeID {
	if t.count == len(t.nodes) {
		t.nodes = append(t.nodes, node{})
	}
	id := NodeID(t.count)
	t.count++
	t.nodes[id].reset()
	return id
}

// linkChild appends child to parent's sibling chain. Nodes store no
// last-child link, so the append walks the existing children; containers
// hold few children, keeping the walk short.
func (t *Tree) linkChild(parent, child NodeID) {
	p := &t.nodes[parent]
	if p.firstChild == InvalidNode {
		p.firstChild = child
		return
	}
	last := p.firstChild
	for t.nodes[last].nextSibling != InvalidNode {
		last = t.nodes[last].nextSibling
	}
	t.nodes[last].nextSibling = child
}

// valid reports whether id names a node in the current frame.
func (t *Tree) valid(id NodeID) bool {
	return id != InvalidNode && int(id) < t.count
}

// --- Configuration, targeting the current node ---

// SetBounds assigns explicit bounds to the current node. Most nodes get
// bounds from SyncBounds instead; explicit bounds suit fixed overlays and
// tests.
func (t *Tree) SetBounds(r Rect) *Tree {
	if id := t.Current(); id != InvalidNode {
		t.nodes[id].bounds = r
		t.nodes[id].hasBounds = true
	}
	return t
}

// SetZIndex assigns the current node's stacking order. Higher values paint
// and hit-test on top; the default is 0.
func (t *Tree) SetZIndex(z int) *Tree {
	if id := t.Current(); id != InvalidNode {
		t.nodes[id].zIndex = z
	}
	return t
}

// SetLayoutID links the current node to the layout engine so SyncBounds
// can find its rectangle. The last registration for a given id wins.
func (t *Tree) SetLayoutID(lid LayoutID) *Tree {
	if id := t.Current(); id != InvalidNode {
		t.nodes[id].layoutID = lid
		t.nodes[id].hasLayoutID = true
		t.byLayout[lid] = id
	}
	return t
}

// SetFocusID links the current node to a focus registry entry, making it
// reachable through FocusPath. The last registration for a given id wins.
func (t *Tree) SetFocusID(fid FocusID) *Tree {
	if id := t.Current(); id != InvalidNode {
		t.nodes[id].focusID = fid
		t.nodes[id].hasFocusID = true
		t.byFocus[fid] = id
	}
	return t
}

// SetKeyContext tags the current node with a keybinding scope. Keymap
// resolution prefers bindings from the innermost context on the focus
// path.
func (t *Tree) SetKeyContext(name string) *Tree {
	if id := t.Current(); id != InvalidNode {
		t.nodes[id].keyContext = name
	}
	return t
}

// MarkFloating flags the current node as able to render outside its
// ancestors' boxes (dropdowns, tooltips) and propagates the flag up the
// parent chain. The walk stops at the first already-flagged ancestor,
// since everything above it is flagged from an earlier call.
func (t *Tree) MarkFloating() *Tree {
	id := t.Current()
	for id != InvalidNode && !t.nodes[id].floating {
		t.nodes[id].floating = true
		id = t.nodes[id].parent
	}
	return t
}

// --- Listener registration, targeting the current node ---

// OnClick registers a simple click listener on the current node.
func (t *Tree) OnClick(fn ClickFunc) *Tree {
	if id := t.Current(); id != InvalidNode && fn != nil {
		t.nodes[id].clicks = append(t.nodes[id].clicks, fn)
	}
	return t
}

// OnClickHandler registers a click handler carrying an opaque argument.
func (t *Tree) OnClickHandler(h Handler) *Tree {
	if id := t.Current(); id != InvalidNode && h.Fn != nil {
		t.nodes[id].clickHandlers = append(t.nodes[id].clickHandlers, h)
	}
	return t
}

// OnMouseDown registers a phase-aware mouse-down listener.
func (t *Tree) OnMouseDown(fn MouseFunc) *Tree {
	if id := t.Current(); id != InvalidNode && fn != nil {
		t.nodes[id].mouseDowns = append(t.nodes[id].mouseDowns, fn)
	}
	return t
}

// OnKeyDown registers a phase-aware key listener.
func (t *Tree) OnKeyDown(fn KeyFunc) *Tree {
	if id := t.Current(); id != InvalidNode && fn != nil {
		t.nodes[id].keyDowns = append(t.nodes[id].keyDowns, fn)
	}
	return t
}

// OnKey registers a simple key listener, invoked during target and bubble
// phases only.
func (t *Tree) OnKey(fn KeyPressFunc) *Tree {
	if id := t.Current(); id != InvalidNode && fn != nil {
		t.nodes[id].keyPresses = append(t.nodes[id].keyPresses, fn)
	}
	return t
}

// OnAction registers a listener for one action type. Registering
// ActionNone is a no-op.
func (t *Tree) OnAction(typ ActionType, fn ActionFunc) *Tree {
	if id := t.Current(); id != InvalidNode && fn != nil && typ != ActionNone {
		t.nodes[id].actions = append(t.nodes[id].actions, actionListener{typ: typ, fn: fn})
	}
	return t
}

// OnClickOutside registers a listener that fires when a click lands
// outside the current node's bounds and not on one of its descendants.
func (t *Tree) OnClickOutside(fn ClickOutsideFunc) *Tree {
	if id := t.Current(); id != InvalidNode && fn != nil {
		n := &t.nodes[id]
		if len(n.clickOutside) == 0 {
			t.clickOutsideNodes = append(t.clickOutsideNodes, id)
		}
		n.clickOutside = append(n.clickOutside, fn)
	}
	return t
}

// OnMouseEnter registers a hover-enter listener.
func (t *Tree) OnMouseEnter(fn HoverFunc) *Tree {
	if id := t.Current(); id != InvalidNode && fn != nil {
		t.nodes[id].mouseEnters = append(t.nodes[id].mouseEnters, fn)
	}
	return t
}

// OnMouseLeave registers a hover-leave listener.
func (t *Tree) OnMouseLeave(fn HoverFunc) *Tree {
	if id := t.Current(); id != InvalidNode && fn != nil {
		t.nodes[id].mouseLeaves = append(t.nodes[id].mouseLeaves, fn)
	}
	return t
}

// --- Post-layout sync ---

// SyncBounds pulls rectangles from the layout engine into every node with
// a layout id. Misses clear the node's bounds, so culled elements stop
// hit-testing. This is the only point where spatial truth enters the
// tree; without a sync, bounds are whatever the frame set explicitly.
func (t *Tree) SyncBounds(p BoundsProvider) {
	if p == nil {
		return
	}
	for i := 0; i < t.count; i++ {
		n := &t.nodes[i]
		if !n.hasLayoutID {
			continue
		}
		if r, ok := p.BoundingBox(n.layoutID); ok {
			n.bounds = r
			n.hasBounds = true
		} else {
			n.bounds = Rect{}
			n.hasBounds = false
		}
	}
}

// --- Lookups and inspection ---

// NodeByLayout resolves a layout id to its node for the current frame.
func (t *Tree) NodeByLayout(lid LayoutID) (NodeID, bool) {
	id, ok := t.byLayout[lid]
	return id, ok
}

// NodeByFocus resolves a focus id to its node for the current frame.
func (t *Tree) NodeByFocus(fid FocusID) (NodeID, bool) {
	id, ok := t.byFocus[fid]
	return id, ok
}

// Bounds returns the node's synced bounds, if it has any.
func (t *Tree) Bounds(id NodeID) (Rect, bool) {
	if !t.valid(id) {
		return Rect{}, false
	}
	return t.nodes[id].bounds, t.nodes[id].hasBounds
}

// Parent returns the node's parent, or InvalidNode for the root and for
// ids outside the current frame.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.valid(id) {
		return InvalidNode
	}
	return t.nodes[id].parent
}

// LayoutOf returns the node's layout id, if one was set.
func (t *Tree) LayoutOf(id NodeID) (LayoutID, bool) {
	if !t.valid(id) || !t.nodes[id].hasLayoutID {
		return 0, false
	}
	return t.nodes[id].layoutID, true
}

// FocusOf returns the node's focus id, if one was set.
func (t *Tree) FocusOf(id NodeID) (FocusID, bool) {
	if !t.valid(id) || !t.nodes[id].hasFocusID {
		return 0, false
	}
	return t.nodes[id].focusID, true
}

// Children iterates a node's children in construction order.
func (t *Tree) Children(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		if !t.valid(id) {
			return
		}
		for c := t.nodes[id].firstChild; c != InvalidNode; c = t.nodes[c].nextSibling {
			if !yield(c) {
				return
			}
		}
	}
}

// NodeCount returns the number of nodes in the current frame.
func (t *Tree) NodeCount() int {
	return t.count
}

// MaxDepth returns the deepest nesting level in the tree; a lone root is
// depth 1, an empty tree 0.
func (t *Tree) MaxDepth() int {
	if t.root == InvalidNode {
		return 0
	}
	return t.depthOf(t.root)
}

func (t *Tree) depthOf(id NodeID) int {
	deepest := 0
	for c := t.nodes[id].firstChild; c != InvalidNode; c = t.nodes[c].nextSibling {
		if d := t.depthOf(c); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}
