package dispatch

// actionListener tags an action callback with the type it responds to.
type actionListener struct {
	typ ActionType
	fn  ActionFunc
}

// node is one element's routing state for the current frame: tree links,
// synced bounds, z-order metadata and listener registries. Nodes live in
// the tree's flat array and are addressed by NodeID only.
type node struct {
	// Tree links. Siblings form an intrusive singly-linked list; there is
	// no last-child link, so appending walks the chain.
	parent      NodeID
	firstChild  NodeID
	nextSibling NodeID

	// Spatial state. Bounds are absent until synced from layout; an
	// absent rect contains every point for hit-testing purposes.
	bounds    Rect
	hasBounds bool
	zIndex    int

	// floating is set on a node that may render outside its ancestors'
	// boxes, and on every ancestor up to the root. A subtree with the
	// flag is never pruned during hit testing.
	floating bool

	// Identity links into the external layout and focus systems.
	layoutID    LayoutID
	hasLayoutID bool
	focusID     FocusID
	hasFocusID  bool

	// keyContext scopes keymap bindings while this node is on the focus
	// path. Empty means no scope.
	keyContext string

	// Listener registries, one per event taxonomy. Cleared to zero
	// length every frame; backing capacity is retained.
	clicks        []ClickFunc
	clickHandlers []Handler
	mouseDowns    []MouseFunc
	keyDowns      []KeyFunc
	keyPresses    []KeyPressFunc
	actions       []actionListener
	clickOutside  []ClickOutsideFunc
	mouseEnters   []HoverFunc
	mouseLeaves   []HoverFunc
}

// reset returns the node to its birth state while keeping every listener
// slice's capacity, so steady-state frames re-register without allocating.
func (n *node) reset() {
	n.parent = InvalidNode
	n.firstChild = InvalidNode
	n.nextSibling = InvalidNode
	n.bounds = Rect{}
	n.hasBounds = false
	n.zIndex = 0
	n.floating = false
	n.layoutID = 0
	n.hasLayoutID = false
	n.focusID = 0
	n.hasFocusID = false
	n.keyContext = ""
	n.clicks = n.clicks[:0]
	n.clickHandlers = n.clickHandlers[:0]
	n.mouseDowns = n.mouseDowns[:0]
	n.keyDowns = n.keyDowns[:0]
	n.keyPresses = n.keyPresses[:0]
	n.actions = n.actions[:0]
	n.clickOutside = n.clickOutside[:0]
	n.mouseEnters = n.mouseEnters[:0]
	n.mouseLeaves = n.mouseLeaves[:0]
}
