package dispatch

// MaxPathDepth bounds the supported tree depth for dispatch paths. Chains
// deeper than this lose their rootmost ancestors from the path.
const MaxPathDepth = 128

// DispatchPath returns the root-to-target path: parent links are walked
// upward into a fixed-capacity buffer and reversed. The returned slice
// aliases the tree's internal buffer and is valid until the next path
// call. Nil for ids outside the current frame.
func (t *Tree) DispatchPath(target NodeID) []NodeID {
	if !t.valid(target) {
		return nil
	}
	t.path = t.path[:0]
	for id := target; id != InvalidNode; id = t.nodes[id].parent {
		if len(t.path) == MaxPathDepth {
			t.log.Debug().Uint32("target", uint32(target)).Msg("dispatch path truncated at max depth")
			break
		}
		t.path = append(t.path, id)
	}
	for i, j := 0, len(t.path)-1; i < j; i, j = i+1, j-1 {
		t.path[i], t.path[j] = t.path[j], t.path[i]
	}
	return t.path
}

// FocusPath resolves a focus id to its node and returns the root-to-node
// path for keyboard dispatch. Nil when the id has no node this frame.
func (t *Tree) FocusPath(fid FocusID) []NodeID {
	id, ok := t.byFocus[fid]
	if !ok {
		return nil
	}
	return t.DispatchPath(id)
}

// RootPath returns a path holding only the root, used for global dispatch
// when nothing is focused. Nil before the first push.
func (t *Tree) RootPath() []NodeID {
	if t.root == InvalidNode {
		return nil
	}
	t.path = append(t.path[:0], t.root)
	return t.path
}

// KeyContexts appends the key-context tags found along the path to dst,
// deepest node first, so keymap resolution can prefer the innermost
// scope. Nodes without a context are skipped.
func (t *Tree) KeyContexts(path []NodeID, dst []string) []string {
	for i := len(path) - 1; i >= 0; i-- {
		if !t.valid(path[i]) {
			continue
		}
		if ctx := t.nodes[path[i]].keyContext; ctx != "" {
			dst = append(dst, ctx)
		}
	}
	return dst
}
