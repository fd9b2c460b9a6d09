package dispatch

// BoundsProvider hands the dispatch tree its spatial truth: after a layout
// pass, SyncBounds asks it once per layout id for that element's
// rectangle. A miss means the element was culled this frame.
type BoundsProvider interface {
	BoundingBox(id LayoutID) (Rect, bool)
}

// BoundsProviderFunc adapts a plain function to BoundsProvider.
type BoundsProviderFunc func(id LayoutID) (Rect, bool)

// BoundingBox calls the function.
func (f BoundsProviderFunc) BoundingBox(id LayoutID) (Rect, bool) {
	return f(id)
}

// StaticBounds is a map-backed BoundsProvider. It suits applications that
// compute their own rectangles (and tests), standing in for a full layout
// engine.
type StaticBounds map[LayoutID]Rect

// BoundingBox looks the id up in the map.
func (s StaticBounds) BoundingBox(id LayoutID) (Rect, bool) {
	r, ok := s[id]
	return r, ok
}

// Set assigns the rectangle for a layout id.
func (s StaticBounds) Set(id LayoutID, r Rect) {
	s[id] = r
}
