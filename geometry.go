package dispatch

import "fmt"

// Rect is a rectangular area in screen cells.
type Rect struct {
	X, Y, Width, Height int
}

// Empty returns true if this rectangle has zero area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Right returns the X coordinate of the right edge (exclusive).
func (r Rect) Right() int {
	return r.X + r.Width
}

// Bottom returns the Y coordinate of the bottom edge (exclusive).
func (r Rect) Bottom() int {
	return r.Y + r.Height
}

// Contains returns true if the point (px, py) lies within this rectangle.
// Edges are half-open: the left and top edges are inside, the right and
// bottom edges are not.
func (r Rect) Contains(px, py int) bool {
	return px >= r.X && px < r.Right() && py >= r.Y && py < r.Bottom()
}

// Inner returns the rectangle shrunk by margin cells on every side.
// Collapses to zero size rather than inverting.
func (r Rect) Inner(margin int) Rect {
	w := r.Width - 2*margin
	h := r.Height - 2*margin
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return Rect{X: r.X + margin, Y: r.Y + margin, Width: w, Height: h}
}

// Intersect returns the overlapping region of two rectangles.
// If there is no overlap, returns a zero-size Rect.
func (r Rect) Intersect(other Rect) Rect {
	x1 := max(r.X, other.X)
	y1 := max(r.Y, other.Y)
	x2 := min(r.Right(), other.Right())
	y2 := min(r.Bottom(), other.Bottom())
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d@%d,%d", r.Width, r.Height, r.X, r.Y)
}
