package dispatch

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// Driver feeds bubbletea input into a dispatch tree. It owns the
// cross-frame input state the per-frame tree cannot hold: which element
// the pointer is hovering (tracked by layout id, since node ids die with
// the frame) and, through the attached registry and keymap, where
// keyboard events should go.
//
// The host rebuilds the tree each frame and calls HandleMsg from its
// update loop; Env.TakeRenderRequest then says whether listeners asked
// for a redraw.
type Driver struct {
	env    *Env
	tree   *Tree
	focus  *FocusRegistry
	keymap *Keymap

	hoverLayout LayoutID
	hovering    bool

	contexts []string // reusable key-context buffer

	log zerolog.Logger
}

// DriverOption configures a Driver at construction.
type DriverOption func(*Driver)

// WithFocus attaches a focus registry. Keyboard events then follow the
// focus path, clicking focuses the nearest focusable ancestor, and Tab
// and Shift+Tab cycle focus when nothing else consumed them.
func WithFocus(reg *FocusRegistry) DriverOption {
	return func(d *Driver) {
		d.focus = reg
	}
}

// WithKeymap attaches a keymap. Key events no listener consumed are
// resolved against the focus path's key contexts and dispatched as
// actions.
func WithKeymap(km *Keymap) DriverOption {
	return func(d *Driver) {
		d.keymap = km
	}
}

// NewDriver binds an environment and a dispatch tree to bubbletea input.
func NewDriver(env *Env, tree *Tree, opts ...DriverOption) *Driver {
	if env == nil {
		env = &Env{}
	}
	d := &Driver{
		env:  env,
		tree: tree,
		log:  tree.log,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// HandleMsg routes a bubbletea message to the matching handler. Messages
// other than key and mouse input are ignored.
func (d *Driver) HandleMsg(msg tea.Msg) bool {
	switch m := msg.(type) {
	case tea.KeyMsg:
		return d.HandleKey(m)
	case tea.MouseMsg:
		return d.HandleMouse(m)
	default:
		return false
	}
}

// HandleMouse dispatches a mouse message: presses run the click-outside
// sweep, focus-follows-click and the two-phase mouse-down walk; left
// releases dispatch a click; motion updates hover. Wheel turns arrive as
// presses and are routed as phase-aware mouse-downs with wheel buttons.
func (d *Driver) HandleMouse(m tea.MouseMsg) bool {
	switch m.Action {
	case tea.MouseActionPress:
		return d.press(m)
	case tea.MouseActionRelease:
		if m.Button == tea.MouseButtonLeft {
			return d.tree.DispatchClick(d.env, m.X, m.Y)
		}
		return false
	case tea.MouseActionMotion:
		return d.motion(m)
	}
	return false
}

func (d *Driver) press(m tea.MouseMsg) bool {
	ev := translateMouse(m)
	target, ok := d.tree.HitTest(m.X, m.Y)

	if ev.Button == MouseWheelUp || ev.Button == MouseWheelDown {
		if !ok {
			return false
		}
		return d.tree.DispatchMouseDown(d.env, d.tree.DispatchPath(target), ev)
	}

	hit := InvalidNode
	if ok {
		hit = target
	}
	outside := d.tree.DispatchClickOutsideWithTarget(d.env, m.X, m.Y, hit)

	if ok && d.focus != nil {
		d.focusClicked(target)
	}

	handled := false
	if ok {
		handled = d.tree.DispatchMouseDown(d.env, d.tree.DispatchPath(target), ev)
	}
	d.log.Trace().
		Int("x", m.X).Int("y", m.Y).
		Bool("handled", handled).Int("outside", outside).
		Msg("mouse press dispatched")
	return handled || outside > 0
}

// focusClicked moves focus to the nearest focusable at or above the hit
// target.
func (d *Driver) focusClicked(target NodeID) {
	for id := target; id != InvalidNode; id = d.tree.Parent(id) {
		if fid, ok := d.tree.FocusOf(id); ok {
			d.focus.Focus(fid)
			return
		}
	}
}

func (d *Driver) motion(m tea.MouseMsg) bool {
	target, ok := d.tree.HitTest(m.X, m.Y)
	var lid LayoutID
	has := false
	if ok {
		lid, has = d.tree.LayoutOf(target)
	}
	if has && d.hovering && lid == d.hoverLayout {
		return false
	}
	changed := false
	if d.hovering {
		if old, found := d.tree.NodeByLayout(d.hoverLayout); found {
			changed = d.tree.DispatchMouseLeave(d.env, old) > 0
		}
		d.hovering = false
	}
	if has {
		if d.tree.DispatchMouseEnter(d.env, target) > 0 {
			changed = true
		}
		d.hoverLayout = lid
		d.hovering = true
	}
	return changed
}

// HandleKey dispatches a key message along the focus path (the root path
// when nothing is focused). Listeners get the event first; if none
// consumed it, the keymap resolves it to an action; finally Tab and
// Shift+Tab cycle focus.
func (d *Driver) HandleKey(m tea.KeyMsg) bool {
	ev := translateKey(m)
	path := d.keyPath()
	if len(path) == 0 {
		return false
	}

	handled := d.tree.DispatchKeyDown(d.env, path, ev)

	if !handled && d.keymap != nil {
		d.contexts = d.tree.KeyContexts(path, d.contexts[:0])
		if act, ok := d.keymap.Resolve(ev, d.contexts); ok {
			handled = d.tree.DispatchAction(d.env, path, act)
		}
	}

	if !handled && d.focus != nil && ev.Key == KeyTab {
		if ev.Mods.Has(ModShift) {
			d.focus.Prev()
		} else {
			d.focus.Next()
		}
		handled = true
	}

	d.log.Trace().Stringer("key", ev.Key).Bool("handled", handled).Msg("key dispatched")
	return handled
}

// keyPath picks where keyboard events go: the focused element's path, or
// just the root when nothing holds focus.
func (d *Driver) keyPath() []NodeID {
	if d.focus != nil {
		if fid, ok := d.focus.Current(); ok {
			if path := d.tree.FocusPath(fid); len(path) > 0 {
				return path
			}
		}
	}
	return d.tree.RootPath()
}

// translateMouse converts a bubbletea mouse message to a MouseEvent.
func translateMouse(m tea.MouseMsg) MouseEvent {
	ev := MouseEvent{X: m.X, Y: m.Y}
	switch m.Button {
	case tea.MouseButtonLeft:
		ev.Button = MouseLeft
	case tea.MouseButtonMiddle:
		ev.Button = MouseMiddle
	case tea.MouseButtonRight:
		ev.Button = MouseRight
	case tea.MouseButtonWheelUp:
		ev.Button = MouseWheelUp
	case tea.MouseButtonWheelDown:
		ev.Button = MouseWheelDown
	}
	if m.Ctrl {
		ev.Mods |= ModCtrl
	}
	if m.Alt {
		ev.Mods |= ModAlt
	}
	if m.Shift {
		ev.Mods |= ModShift
	}
	return ev
}

// translateKey converts a bubbletea key message to a KeyEvent. Terminals
// deliver Ctrl+letter as dedicated control codes, covered by the range
// check at the bottom; Tab, Enter and Escape shadow Ctrl+I, Ctrl+M and
// Ctrl+[ by sharing their codes.
func translateKey(m tea.KeyMsg) KeyEvent {
	var ev KeyEvent
	switch m.Type {
	case tea.KeyRunes:
		if len(m.Runes) > 0 {
			ev = KeyEvent{Key: KeyRune, Rune: m.Runes[0]}
		}
	case tea.KeySpace:
		ev = KeyEvent{Key: KeyRune, Rune: ' '}
	case tea.KeyEnter:
		ev = KeyEvent{Key: KeyEnter}
	case tea.KeyTab:
		ev = KeyEvent{Key: KeyTab}
	case tea.KeyShiftTab:
		ev = KeyEvent{Key: KeyTab, Mods: ModShift}
	case tea.KeyEsc:
		ev = KeyEvent{Key: KeyEscape}
	case tea.KeyBackspace:
		ev = KeyEvent{Key: KeyBackspace}
	case tea.KeyDelete:
		ev = KeyEvent{Key: KeyDelete}
	case tea.KeyInsert:
		ev = KeyEvent{Key: KeyInsert}
	case tea.KeyUp:
		ev = KeyEvent{Key: KeyUp}
	case tea.KeyDown:
		ev = KeyEvent{Key: KeyDown}
	case tea.KeyLeft:
		ev = KeyEvent{Key: KeyLeft}
	case tea.KeyRight:
		ev = KeyEvent{Key: KeyRight}
	case tea.KeyShiftUp:
		ev = KeyEvent{Key: KeyUp, Mods: ModShift}
	case tea.KeyShiftDown:
		ev = KeyEvent{Key: KeyDown, Mods: ModShift}
	case tea.KeyShiftLeft:
		ev = KeyEvent{Key: KeyLeft, Mods: ModShift}
	case tea.KeyShiftRight:
		ev = KeyEvent{Key: KeyRight, Mods: ModShift}
	case tea.KeyCtrlUp:
		ev = KeyEvent{Key: KeyUp, Mods: ModCtrl}
	case tea.KeyCtrlDown:
		ev = KeyEvent{Key: KeyDown, Mods: ModCtrl}
	case tea.KeyCtrlLeft:
		ev = KeyEvent{Key: KeyLeft, Mods: ModCtrl}
	case tea.KeyCtrlRight:
		ev = KeyEvent{Key: KeyRight, Mods: ModCtrl}
	case tea.KeyHome:
		ev = KeyEvent{Key: KeyHome}
	case tea.KeyEnd:
		ev = KeyEvent{Key: KeyEnd}
	case tea.KeyPgUp:
		ev = KeyEvent{Key: KeyPageUp}
	case tea.KeyPgDown:
		ev = KeyEvent{Key: KeyPageDown}
	case tea.KeyF1:
		ev = KeyEvent{Key: KeyF1}
	case tea.KeyF2:
		ev = KeyEvent{Key: KeyF2}
	case tea.KeyF3:
		ev = KeyEvent{Key: KeyF3}
	case tea.KeyF4:
		ev = KeyEvent{Key: KeyF4}
	case tea.KeyF5:
		ev = KeyEvent{Key: KeyF5}
	case tea.KeyF6:
		ev = KeyEvent{Key: KeyF6}
	case tea.KeyF7:
		ev = KeyEvent{Key: KeyF7}
	case tea.KeyF8:
		ev = KeyEvent{Key: KeyF8}
	case tea.KeyF9:
		ev = KeyEvent{Key: KeyF9}
	case tea.KeyF10:
		ev = KeyEvent{Key: KeyF10}
	case tea.KeyF11:
		ev = KeyEvent{Key: KeyF11}
	case tea.KeyF12:
		ev = KeyEvent{Key: KeyF12}
	case tea.KeyCtrlAt:
		ev = KeyEvent{Key: KeyCtrlSpace}
	default:
		if m.Type >= tea.KeyCtrlA && m.Type <= tea.KeyCtrlZ {
			ev = KeyEvent{Key: KeyCtrlA + Key(m.Type-tea.KeyCtrlA)}
		}
	}
	if m.Alt {
		ev.Mods |= ModAlt
	}
	return ev
}
