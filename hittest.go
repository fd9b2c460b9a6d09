package dispatch

import "math"

// HitTest returns the topmost node containing the point, resolving overlap
// by z-index and, at equal z, by construction order: the later-built node
// wins, matching paint order. Nodes without bounds contain every point and
// defer to their children. A subtree whose root misses the point is
// skipped entirely unless it carries the floating flag, since non-floating
// descendants lie within their parent's box.
func (t *Tree) HitTest(x, y int) (NodeID, bool) {
	if t.root == InvalidNode {
		return InvalidNode, false
	}
	best := InvalidNode
	bestZ := math.MinInt
	t.hit(t.root, x, y, &best, &bestZ)
	return best, best != InvalidNode
}

func (t *Tree) hit(id NodeID, x, y int, best *NodeID, bestZ *int) {
	n := &t.nodes[id]
	contains := !n.hasBounds || n.bounds.Contains(x, y)
	if !contains && !n.floating {
		return
	}
	if contains && n.zIndex >= *bestZ {
		*best = id
		*bestZ = n.zIndex
	}
	for c := n.firstChild; c != InvalidNode; c = t.nodes[c].nextSibling {
		t.hit(c, x, y, best, bestZ)
	}
}
