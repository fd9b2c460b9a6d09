package dispatch

import (
	"slices"
	"testing"
)

func TestDispatchClick(t *testing.T) {
	t.Run("first simple listener consumes, later ones never fire", func(t *testing.T) {
		tree := NewTree()
		var fired []string
		tree.Build(func(tr *Tree) {
			tr.PushNode()
			tr.SetBounds(Rect{Width: 10, Height: 10})
			tr.OnClick(func(*Env) { fired = append(fired, "first") })
			tr.OnClick(func(*Env) { fired = append(fired, "second") })
			tr.OnClickHandler(Handler{Fn: func(*Env, uint64) { fired = append(fired, "handler") }})
			tr.PopNode()
		})
		if !tree.DispatchClick(&Env{}, 5, 5) {
			t.Fatal("click not consumed")
		}
		if want := []string{"first"}; !slices.Equal(fired, want) {
			t.Errorf("fired %v, want %v", fired, want)
		}
	})

	t.Run("bound handler fires when no simple listener exists", func(t *testing.T) {
		tree := NewTree()
		var gotArg uint64
		tree.Build(func(tr *Tree) {
			tr.PushNode()
			tr.SetBounds(Rect{Width: 10, Height: 10})
			tr.OnClickHandler(Handler{Fn: func(_ *Env, arg uint64) { gotArg = arg }, Arg: 77})
			tr.PopNode()
		})
		if !tree.DispatchClick(&Env{}, 5, 5) {
			t.Fatal("click not consumed")
		}
		if gotArg != 77 {
			t.Errorf("handler arg: got %d, want 77", gotArg)
		}
	})

	t.Run("click bubbles to the nearest listening ancestor", func(t *testing.T) {
		tree := NewTree()
		var fired string
		tree.Build(func(tr *Tree) {
			tr.PushNode()
			tr.SetBounds(Rect{Width: 20, Height: 20})
			tr.OnClick(func(*Env) { fired = "root" })
			tr.PushNode()
			tr.SetBounds(Rect{X: 5, Y: 5, Width: 5, Height: 5})
			tr.PopNode()
			tr.PopNode()
		})
		// The child is the hit target but has no listener.
		if !tree.DispatchClick(&Env{}, 6, 6) {
			t.Fatal("click not consumed")
		}
		if fired != "root" {
			t.Errorf("fired %q, want %q", fired, "root")
		}
	})

	t.Run("listening target halts the upward walk", func(t *testing.T) {
		tree := NewTree()
		var fired []string
		tree.Build(func(tr *Tree) {
			tr.PushNode()
			tr.SetBounds(Rect{Width: 20, Height: 20})
			tr.OnClick(func(*Env) { fired = append(fired, "root") })
			tr.PushNode()
			tr.SetBounds(Rect{X: 5, Y: 5, Width: 5, Height: 5})
			tr.OnClick(func(*Env) { fired = append(fired, "child") })
			tr.PopNode()
			tr.PopNode()
		})
		tree.DispatchClick(&Env{}, 6, 6)
		if want := []string{"child"}; !slices.Equal(fired, want) {
			t.Errorf("fired %v, want %v", fired, want)
		}
	})

	t.Run("miss consumes nothing", func(t *testing.T) {
		tree := NewTree()
		tree.Build(func(tr *Tree) {
			tr.PushNode()
			tr.SetBounds(Rect{Width: 10, Height: 10})
			tr.OnClick(func(*Env) { t.Error("listener fired on a miss") })
			tr.PopNode()
		})
		if tree.DispatchClick(&Env{}, 50, 50) {
			t.Error("miss reported as consumed")
		}
	})
}

// phaseCall records one listener invocation during a two-phase walk.
type phaseCall struct {
	node  string
	phase Phase
}

// chainTree builds root > mid > leaf with a recording mouse-down listener
// on each, returning the recorder and the leaf's dispatch path.
func chainTree(t *testing.T, results map[string]Result) (*Tree, *[]phaseCall, []NodeID) {
	t.Helper()
	tree := NewTree()
	calls := &[]phaseCall{}
	listen := func(name string) MouseFunc {
		return func(_ *Env, _ MouseEvent, phase Phase) Result {
			*calls = append(*calls, phaseCall{node: name, phase: phase})
			return results[name]
		}
	}
	var leaf NodeID
	tree.Build(func(tr *Tree) {
		tr.PushNode()
		tr.OnMouseDown(listen("root"))
		tr.PushNode()
		tr.OnMouseDown(listen("mid"))
		leaf = tr.PushNode()
		tr.OnMouseDown(listen("leaf"))
		tr.PopNode()
		tr.PopNode()
		tr.PopNode()
	})
	return tree, calls, tree.DispatchPath(leaf)
}

func TestDispatchMouseDown(t *testing.T) {
	t.Run("capture runs root to target, bubble back up", func(t *testing.T) {
		tree, calls, path := chainTree(t, nil)
		tree.DispatchMouseDown(&Env{}, path, MouseEvent{Button: MouseLeft})
		want := []phaseCall{
			{"root", PhaseCapture},
			{"mid", PhaseCapture},
			{"leaf", PhaseTarget},
			{"mid", PhaseBubble},
			{"root", PhaseBubble},
		}
		if !slices.Equal(*calls, want) {
			t.Errorf("calls:\n got %v\nwant %v", *calls, want)
		}
	})

	t.Run("all listeners ignoring reports unconsumed", func(t *testing.T) {
		tree, _, path := chainTree(t, nil)
		if tree.DispatchMouseDown(&Env{}, path, MouseEvent{}) {
			t.Error("got consumed, want unconsumed")
		}
	})

	t.Run("handled consumes but propagation continues", func(t *testing.T) {
		tree, calls, path := chainTree(t, map[string]Result{"mid": ResultHandled})
		if !tree.DispatchMouseDown(&Env{}, path, MouseEvent{}) {
			t.Error("got unconsumed, want consumed")
		}
		if got := len(*calls); got != 5 {
			t.Errorf("calls: got %d, want all 5", got)
		}
	})

	t.Run("stop during capture keeps the event from the target", func(t *testing.T) {
		tree, calls, path := chainTree(t, map[string]Result{"mid": ResultStop})
		if !tree.DispatchMouseDown(&Env{}, path, MouseEvent{}) {
			t.Error("stop not reported as consumed")
		}
		want := []phaseCall{
			{"root", PhaseCapture},
			{"mid", PhaseCapture},
		}
		if !slices.Equal(*calls, want) {
			t.Errorf("calls:\n got %v\nwant %v", *calls, want)
		}
	})

	t.Run("stop at the target skips the bubble walk", func(t *testing.T) {
		tree, calls, path := chainTree(t, map[string]Result{"leaf": ResultStop})
		tree.DispatchMouseDown(&Env{}, path, MouseEvent{})
		want := []phaseCall{
			{"root", PhaseCapture},
			{"mid", PhaseCapture},
			{"leaf", PhaseTarget},
		}
		if !slices.Equal(*calls, want) {
			t.Errorf("calls:\n got %v\nwant %v", *calls, want)
		}
	})

	t.Run("single-node path sees only the target phase", func(t *testing.T) {
		tree := NewTree()
		var phases []Phase
		var root NodeID
		tree.Build(func(tr *Tree) {
			root = tr.PushNode()
			tr.OnMouseDown(func(_ *Env, _ MouseEvent, p Phase) Result {
				phases = append(phases, p)
				return ResultIgnored
			})
			tr.PopNode()
		})
		tree.DispatchMouseDown(&Env{}, tree.DispatchPath(root), MouseEvent{})
		if want := []Phase{PhaseTarget}; !slices.Equal(phases, want) {
			t.Errorf("phases: got %v, want %v", phases, want)
		}
	})

	t.Run("empty and stale paths fail closed", func(t *testing.T) {
		tree, _, path := chainTree(t, nil)
		if tree.DispatchMouseDown(&Env{}, nil, MouseEvent{}) {
			t.Error("nil path dispatched")
		}
		stale := slices.Clone(path)
		tree.Build(func(tr *Tree) {
			tr.PushNode()
			tr.PopNode()
		})
		if tree.DispatchMouseDown(&Env{}, stale, MouseEvent{}) {
			t.Error("stale path from a previous frame dispatched")
		}
	})

	t.Run("hit-testing variant dispatches to the containing node", func(t *testing.T) {
		tree := NewTree()
		consumed := false
		tree.Build(func(tr *Tree) {
			tr.PushNode()
			tr.SetBounds(Rect{Width: 10, Height: 10})
			tr.OnMouseDown(func(_ *Env, ev MouseEvent, p Phase) Result {
				if p == PhaseTarget && ev.Button == MouseRight {
					consumed = true
					return ResultHandled
				}
				return ResultIgnored
			})
			tr.PopNode()
		})
		if !tree.DispatchMouseDownAt(&Env{}, MouseEvent{X: 5, Y: 5, Button: MouseRight}) {
			t.Error("got unconsumed, want consumed")
		}
		if !consumed {
			t.Error("target-phase listener never saw the event")
		}
	})
}

func TestDispatchKeyDown(t *testing.T) {
	t.Run("simple key listeners skip the capture phase", func(t *testing.T) {
		tree := NewTree()
		var calls []phaseCall
		var leaf NodeID
		tree.Build(func(tr *Tree) {
			tr.PushNode()
			tr.OnKey(func(*Env, KeyEvent) Result {
				calls = append(calls, phaseCall{node: "root-press", phase: PhaseBubble})
				return ResultIgnored
			})
			tr.OnKeyDown(func(_ *Env, _ KeyEvent, p Phase) Result {
				calls = append(calls, phaseCall{node: "root-full", phase: p})
				return ResultIgnored
			})
			leaf = tr.PushNode()
			tr.PopNode()
			tr.PopNode()
		})
		tree.DispatchKeyDown(&Env{}, tree.DispatchPath(leaf), KeyEvent{Key: KeyEnter})
		want := []phaseCall{
			{"root-full", PhaseCapture},
			{"root-full", PhaseBubble},
			{"root-press", PhaseBubble},
		}
		if !slices.Equal(calls, want) {
			t.Errorf("calls:\n got %v\nwant %v", calls, want)
		}
	})

	t.Run("stop from a simple listener halts the walk", func(t *testing.T) {
		tree := NewTree()
		var rootSaw bool
		var leaf NodeID
		tree.Build(func(tr *Tree) {
			tr.PushNode()
			tr.OnKey(func(*Env, KeyEvent) Result {
				rootSaw = true
				return ResultIgnored
			})
			leaf = tr.PushNode()
			tr.OnKey(func(*Env, KeyEvent) Result { return ResultStop })
			tr.PopNode()
			tr.PopNode()
		})
		if !tree.DispatchKeyDown(&Env{}, tree.DispatchPath(leaf), KeyEvent{Key: KeyRune, Rune: 'q'}) {
			t.Error("stop not reported as consumed")
		}
		if rootSaw {
			t.Error("walk continued past a stop")
		}
	})

	t.Run("full listeners run before simple ones on the same node", func(t *testing.T) {
		tree := NewTree()
		var order []string
		var root NodeID
		tree.Build(func(tr *Tree) {
			root = tr.PushNode()
			tr.OnKey(func(*Env, KeyEvent) Result {
				order = append(order, "press")
				return ResultIgnored
			})
			tr.OnKeyDown(func(*Env, KeyEvent, Phase) Result {
				order = append(order, "full")
				return ResultIgnored
			})
			tr.PopNode()
		})
		tree.DispatchKeyDown(&Env{}, tree.DispatchPath(root), KeyEvent{Key: KeyEscape})
		if want := []string{"full", "press"}; !slices.Equal(order, want) {
			t.Errorf("order: got %v, want %v", order, want)
		}
	})
}

func TestDispatchAction(t *testing.T) {
	set := NewActionSet()
	save := set.Intern("save")
	quit := set.Intern("quit")

	t.Run("deepest matching listener consumes", func(t *testing.T) {
		tree := NewTree()
		var fired []string
		var leaf NodeID
		tree.Build(func(tr *Tree) {
			tr.PushNode()
			tr.OnAction(save, func(*Env, Action) { fired = append(fired, "root") })
			leaf = tr.PushNode()
			tr.OnAction(save, func(*Env, Action) { fired = append(fired, "leaf") })
			tr.PopNode()
			tr.PopNode()
		})
		if !tree.DispatchAction(&Env{}, tree.DispatchPath(leaf), Action{Type: save}) {
			t.Fatal("action not consumed")
		}
		if want := []string{"leaf"}; !slices.Equal(fired, want) {
			t.Errorf("fired %v, want %v", fired, want)
		}
	})

	t.Run("type mismatch walks past the node", func(t *testing.T) {
		tree := NewTree()
		var fired string
		var gotArg uint64
		var leaf NodeID
		tree.Build(func(tr *Tree) {
			tr.PushNode()
			tr.OnAction(quit, func(_ *Env, a Action) {
				fired = "root"
				gotArg = a.Arg
			})
			leaf = tr.PushNode()
			tr.OnAction(save, func(*Env, Action) { fired = "leaf" })
			tr.PopNode()
			tr.PopNode()
		})
		if !tree.DispatchAction(&Env{}, tree.DispatchPath(leaf), Action{Type: quit, Arg: 3}) {
			t.Fatal("action not consumed")
		}
		if fired != "root" {
			t.Errorf("fired %q, want %q", fired, "root")
		}
		if gotArg != 3 {
			t.Errorf("action arg: got %d, want 3", gotArg)
		}
	})

	t.Run("no listener of the type reports unconsumed", func(t *testing.T) {
		tree := NewTree()
		var root NodeID
		tree.Build(func(tr *Tree) {
			root = tr.PushNode()
			tr.OnAction(save, func(*Env, Action) {})
			tr.PopNode()
		})
		if tree.DispatchAction(&Env{}, tree.DispatchPath(root), Action{Type: quit}) {
			t.Error("got consumed, want unconsumed")
		}
	})
}

func TestDispatchClickOutside(t *testing.T) {
	// An open dropdown that closes when the user clicks anywhere else.
	build := func(onOutside func(*Env)) (*Tree, NodeID, NodeID) {
		tree := NewTree()
		var dropdown, item NodeID
		tree.Build(func(tr *Tree) {
			tr.PushNode()
			tr.SetBounds(Rect{Width: 80, Height: 24})
			dropdown = tr.PushNode()
			tr.SetBounds(Rect{X: 10, Y: 2, Width: 20, Height: 6}).MarkFloating()
			tr.OnClickOutside(onOutside)
			item = tr.PushNode()
			tr.SetBounds(Rect{X: 10, Y: 3, Width: 20, Height: 1})
			tr.PopNode()
			tr.PopNode()
			tr.PopNode()
		})
		return tree, dropdown, item
	}

	t.Run("click elsewhere fires the listener", func(t *testing.T) {
		fired := 0
		tree, _, _ := build(func(*Env) { fired++ })
		if got := tree.DispatchClickOutside(&Env{}, 50, 20); got != 1 {
			t.Errorf("nodes fired: got %d, want 1", got)
		}
		if fired != 1 {
			t.Errorf("listener calls: got %d, want 1", fired)
		}
	})

	t.Run("click inside does not fire", func(t *testing.T) {
		tree, _, _ := build(func(*Env) { t.Error("click-outside fired for an inside click") })
		if got := tree.DispatchClickOutside(&Env{}, 15, 4); got != 0 {
			t.Errorf("nodes fired: got %d, want 0", got)
		}
	})

	t.Run("click on a floating descendant does not fire", func(t *testing.T) {
		// The interested node is the trigger button; its menu floats
		// below, outside the button's box. Clicking the menu misses the
		// button's bounds but must not count as clicking outside.
		tree := NewTree()
		tree.Build(func(tr *Tree) {
			tr.PushNode()
			tr.SetBounds(Rect{Width: 80, Height: 24})
			tr.PushNode()
			tr.SetBounds(Rect{X: 2, Y: 1, Width: 10, Height: 1})
			tr.OnClickOutside(func(*Env) { t.Error("click-outside fired for a descendant click") })
			tr.PushNode()
			tr.SetBounds(Rect{X: 2, Y: 2, Width: 14, Height: 5}).MarkFloating()
			tr.PopNode()
			tr.PopNode()
			tr.PopNode()
		})
		if got := tree.DispatchClickOutside(&Env{}, 4, 4); got != 0 {
			t.Errorf("nodes fired: got %d, want 0", got)
		}
	})

	t.Run("nodes without bounds never fire", func(t *testing.T) {
		tree := NewTree()
		tree.Build(func(tr *Tree) {
			tr.PushNode()
			tr.OnClickOutside(func(*Env) { t.Error("boundless node fired") })
			tr.PopNode()
		})
		if got := tree.DispatchClickOutside(&Env{}, 5, 5); got != 0 {
			t.Errorf("nodes fired: got %d, want 0", got)
		}
	})

	t.Run("every interested node is swept", func(t *testing.T) {
		tree := NewTree()
		fired := map[string]int{}
		tree.Build(func(tr *Tree) {
			tr.PushNode()
			tr.SetBounds(Rect{Width: 80, Height: 24})
			tr.PushNode()
			tr.SetBounds(Rect{Width: 10, Height: 3})
			tr.OnClickOutside(func(*Env) { fired["menu"]++ })
			tr.PopNode()
			tr.PushNode()
			tr.SetBounds(Rect{X: 60, Width: 10, Height: 3})
			tr.OnClickOutside(func(*Env) { fired["palette"]++ })
			tr.PopNode()
			tr.PopNode()
		})
		if got := tree.DispatchClickOutside(&Env{}, 30, 20); got != 2 {
			t.Errorf("nodes fired: got %d, want 2", got)
		}
		if fired["menu"] != 1 || fired["palette"] != 1 {
			t.Errorf("fired %v, want both once", fired)
		}
	})
}

func TestDispatchHover(t *testing.T) {
	tree := NewTree()
	var events []string
	var id NodeID
	tree.Build(func(tr *Tree) {
		id = tr.PushNode()
		tr.SetBounds(Rect{Width: 10, Height: 10})
		tr.OnMouseEnter(func(*Env) { events = append(events, "enter") })
		tr.OnMouseLeave(func(*Env) { events = append(events, "leave") })
		tr.PopNode()
	})

	if got := tree.DispatchMouseEnter(&Env{}, id); got != 1 {
		t.Errorf("enter listeners: got %d, want 1", got)
	}
	if got := tree.DispatchMouseLeave(&Env{}, id); got != 1 {
		t.Errorf("leave listeners: got %d, want 1", got)
	}
	if want := []string{"enter", "leave"}; !slices.Equal(events, want) {
		t.Errorf("events: got %v, want %v", events, want)
	}
	if got := tree.DispatchMouseEnter(&Env{}, InvalidNode); got != 0 {
		t.Errorf("enter on invalid id: got %d, want 0", got)
	}
}

func TestEnvRenderRequest(t *testing.T) {
	env := &Env{}
	if env.TakeRenderRequest() {
		t.Error("fresh env reports a pending render")
	}
	env.RequestRender()
	if !env.TakeRenderRequest() {
		t.Error("request not reported")
	}
	if env.TakeRenderRequest() {
		t.Error("request reported twice")
	}
}

func TestEnvEntity(t *testing.T) {
	items := map[EntityID]string{1: "row-one"}
	env := &Env{Resolve: func(id EntityID) (any, bool) {
		v, ok := items[id]
		return v, ok
	}}
	if v, ok := env.Entity(1); !ok || v != "row-one" {
		t.Errorf("Entity(1): got %v/%v, want row-one/true", v, ok)
	}
	if _, ok := env.Entity(2); ok {
		t.Error("Entity(2): got ok, want miss")
	}
	var bare Env
	if _, ok := bare.Entity(1); ok {
		t.Error("resolver-less env resolved an entity")
	}
}
