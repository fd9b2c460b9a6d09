package dispatch

import "testing"

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 5, Width: 4, Height: 3}

	tests := []struct {
		name string
		x, y int
		want bool
	}{
		{"top-left corner inside", 10, 5, true},
		{"interior point", 12, 6, true},
		{"last contained cell", 13, 7, true},
		{"right edge excluded", 14, 6, false},
		{"bottom edge excluded", 12, 8, false},
		{"left of rect", 9, 6, false},
		{"above rect", 12, 4, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Contains(tc.x, tc.y); got != tc.want {
				t.Errorf("Contains(%d,%d): got %v, want %v", tc.x, tc.y, got, tc.want)
			}
		})
	}
}

func TestRectEmpty(t *testing.T) {
	if !(Rect{}).Empty() {
		t.Error("zero rect: got not empty, want empty")
	}
	if !(Rect{X: 3, Y: 3, Width: 0, Height: 5}).Empty() {
		t.Error("zero width: got not empty, want empty")
	}
	if (Rect{Width: 1, Height: 1}).Empty() {
		t.Error("1x1 rect: got empty, want not empty")
	}
}

func TestRectEmptyContainsNothing(t *testing.T) {
	r := Rect{X: 3, Y: 3}
	if r.Contains(3, 3) {
		t.Error("empty rect contains its own origin")
	}
}

func TestRectIntersect(t *testing.T) {
	t.Run("overlapping", func(t *testing.T) {
		a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
		b := Rect{X: 5, Y: 5, Width: 10, Height: 10}
		want := Rect{X: 5, Y: 5, Width: 5, Height: 5}
		if got := a.Intersect(b); got != want {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("disjoint", func(t *testing.T) {
		a := Rect{X: 0, Y: 0, Width: 5, Height: 5}
		b := Rect{X: 10, Y: 10, Width: 5, Height: 5}
		if got := a.Intersect(b); !got.Empty() {
			t.Errorf("got %v, want empty", got)
		}
	})

	t.Run("edge-adjacent rects do not overlap", func(t *testing.T) {
		a := Rect{X: 0, Y: 0, Width: 5, Height: 5}
		b := Rect{X: 5, Y: 0, Width: 5, Height: 5}
		if got := a.Intersect(b); !got.Empty() {
			t.Errorf("got %v, want empty", got)
		}
	})
}

func TestRectInner(t *testing.T) {
	t.Run("shrinks every side", func(t *testing.T) {
		r := Rect{X: 2, Y: 3, Width: 10, Height: 8}
		want := Rect{X: 3, Y: 4, Width: 8, Height: 6}
		if got := r.Inner(1); got != want {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("oversized margin collapses to zero size", func(t *testing.T) {
		r := Rect{X: 0, Y: 0, Width: 4, Height: 4}
		if got := r.Inner(3); !got.Empty() {
			t.Errorf("got %v, want empty", got)
		}
	})
}

func TestRectString(t *testing.T) {
	r := Rect{X: 2, Y: 3, Width: 40, Height: 10}
	if got, want := r.String(), "40x10@2,3"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
