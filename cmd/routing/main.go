// Interactive tour of the dispatch tree: a menu bar with a floating
// dropdown, two focusable panes, hover highlighting, a TOML keymap and
// click-outside dismissal, all driven through bubbletea.
//
// Keys: Tab cycles focus, ctrl+n/ctrl+p move the inbox selection, j/k
// scroll the preview, q quits. The File menu opens on click and closes
// when you click anywhere else.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"dispatch"
)

var (
	keymapPath = flag.String("keymap", "", "path to a TOML keymap overriding the built-in bindings")
	logPath    = flag.String("log", "", "path to a debug log file")
)

const defaultKeymap = `
[[binding]]
keys   = "q"
action = "quit"

[[binding]]
context = "inbox"
keys    = "ctrl+n"
action  = "next"

[[binding]]
context = "inbox"
keys    = "ctrl+p"
action  = "prev"
`

// Layout ids, stable across frames.
const (
	lidMenuBar dispatch.LayoutID = iota + 1
	lidFileButton
	lidDropdown
	lidInbox
	lidPreview
	lidStatus
	lidMenuItem0 // menu items and inbox rows extend from these
	lidInboxRow0 = lidMenuItem0 + 16
)

var menuItems = []string{"New message", "Mark all read", "Quit"}

type model struct {
	tree   *dispatch.Tree
	driver *dispatch.Driver
	env    *dispatch.Env
	focus  *dispatch.FocusRegistry
	bounds dispatch.StaticBounds

	inboxFocus   dispatch.FocusID
	previewFocus dispatch.FocusID
	actQuit      dispatch.ActionType
	actNext      dispatch.ActionType
	actPrev      dispatch.ActionType

	width, height int
	messages      []string
	selected      int
	hovered       int
	menuOpen      bool
	previewLine   int
	status        string
	quitting      bool
}

func newModel() (*model, error) {
	m := &model{
		hovered: -1,
		status:  "click around, or hit Tab",
		messages: []string{
			"deploy finished on staging",
			"nightly build failed: linker",
			"lunch thread (12 replies)",
			"PTO calendar updated",
			"retro notes from tuesday",
		},
		bounds: dispatch.StaticBounds{},
		env:    &dispatch.Env{},
	}

	logger := dispatch.NewLogger(dispatch.LogConfig{Level: zerolog.DebugLevel, Path: *logPath})
	m.tree = dispatch.NewTree(dispatch.WithCapacity(64), dispatch.WithLogger(logger))

	m.focus = dispatch.NewFocusRegistry()
	m.inboxFocus = m.focus.Register("pane.inbox")
	m.previewFocus = m.focus.Register("pane.preview")

	actions := dispatch.NewActionSet()
	var km *dispatch.Keymap
	var err error
	if *keymapPath != "" {
		km, err = dispatch.LoadKeymapFile(*keymapPath, actions)
	} else {
		km, err = dispatch.LoadKeymap([]byte(defaultKeymap), actions)
	}
	if err != nil {
		return nil, err
	}
	m.actQuit, _ = actions.Lookup("quit")
	m.actNext, _ = actions.Lookup("next")
	m.actPrev, _ = actions.Lookup("prev")

	m.driver = dispatch.NewDriver(m.env, m.tree,
		dispatch.WithFocus(m.focus),
		dispatch.WithKeymap(km),
	)
	return m, nil
}

// layout recomputes every element's rectangle for the current terminal
// size. The open dropdown pushes the panes down so drawing and hit
// testing agree about where everything is.
func (m *model) layout() {
	w, h := m.width, m.height
	top := 1
	if m.menuOpen {
		top = 2 + len(menuItems)
		m.bounds.Set(lidDropdown, dispatch.Rect{X: 0, Y: 1, Width: 20, Height: len(menuItems) + 1})
		for i := range menuItems {
			m.bounds.Set(lidMenuItem0+dispatch.LayoutID(i), dispatch.Rect{X: 0, Y: 1 + i, Width: 20, Height: 1})
		}
	}

	m.bounds.Set(lidMenuBar, dispatch.Rect{X: 0, Y: 0, Width: w, Height: 1})
	m.bounds.Set(lidFileButton, dispatch.Rect{X: 0, Y: 0, Width: 8, Height: 1})

	paneH := h - top - 1
	leftW := w / 2
	inbox := dispatch.Rect{X: 0, Y: top, Width: leftW, Height: paneH}
	m.bounds.Set(lidInbox, inbox)
	rows := inbox.Inner(1)
	for i := range m.messages {
		m.bounds.Set(lidInboxRow0+dispatch.LayoutID(i), dispatch.Rect{X: rows.X, Y: rows.Y + i, Width: rows.Width, Height: 1})
	}
	m.bounds.Set(lidPreview, dispatch.Rect{X: leftW, Y: top, Width: w - leftW, Height: paneH})
	m.bounds.Set(lidStatus, dispatch.Rect{X: 0, Y: h - 1, Width: w, Height: 1})
}

// rebuild constructs the frame's dispatch tree and syncs bounds in.
func (m *model) rebuild() {
	m.tree.Build(func(t *dispatch.Tree) {
		t.PushNode() // screen root
		t.SetBounds(dispatch.Rect{Width: m.width, Height: m.height})
		t.OnAction(m.actQuit, func(*dispatch.Env, dispatch.Action) {
			m.quitting = true
		})

		t.PushNode()
		t.SetLayoutID(lidMenuBar)
		t.PushNode()
		t.SetLayoutID(lidFileButton)
		t.OnClick(func(env *dispatch.Env) {
			m.menuOpen = !m.menuOpen
			m.status = "menu toggled"
			env.RequestRender()
		})
		if m.menuOpen {
			t.PushNode()
			t.SetLayoutID(lidDropdown).SetZIndex(10).MarkFloating()
			t.OnClickOutside(func(env *dispatch.Env) {
				m.menuOpen = false
				m.status = "menu dismissed"
				env.RequestRender()
			})
			for i, item := range menuItems {
				i, item := i, item
				t.PushNode()
				t.SetLayoutID(lidMenuItem0 + dispatch.LayoutID(i))
				t.OnClick(func(env *dispatch.Env) {
					m.menuAction(i, item)
					env.RequestRender()
				})
				t.PopNode()
			}
			t.PopNode()
		}
		t.PopNode() // file button
		t.PopNode() // menu bar

		t.PushNode() // inbox pane
		t.SetLayoutID(lidInbox).SetFocusID(m.inboxFocus).SetKeyContext("inbox")
		t.OnAction(m.actNext, func(env *dispatch.Env, _ dispatch.Action) {
			m.moveSelection(1, env)
		})
		t.OnAction(m.actPrev, func(env *dispatch.Env, _ dispatch.Action) {
			m.moveSelection(-1, env)
		})
		t.OnMouseDown(func(env *dispatch.Env, ev dispatch.MouseEvent, phase dispatch.Phase) dispatch.Result {
			if phase == dispatch.PhaseCapture {
				return dispatch.ResultIgnored
			}
			switch ev.Button {
			case dispatch.MouseWheelDown:
				m.moveSelection(1, env)
				return dispatch.ResultHandled
			case dispatch.MouseWheelUp:
				m.moveSelection(-1, env)
				return dispatch.ResultHandled
			}
			return dispatch.ResultIgnored
		})
		for i := range m.messages {
			i := i
			t.PushNode()
			t.SetLayoutID(lidInboxRow0 + dispatch.LayoutID(i))
			t.OnClick(func(env *dispatch.Env) {
				m.selected = i
				m.status = "selected: " + m.messages[i]
				env.RequestRender()
			})
			t.OnMouseEnter(func(env *dispatch.Env) {
				m.hovered = i
				env.RequestRender()
			})
			t.OnMouseLeave(func(env *dispatch.Env) {
				if m.hovered == i {
					m.hovered = -1
				}
				env.RequestRender()
			})
			t.PopNode()
		}
		t.PopNode() // inbox

		t.PushNode() // preview pane
		t.SetLayoutID(lidPreview).SetFocusID(m.previewFocus)
		t.OnKey(func(env *dispatch.Env, ev dispatch.KeyEvent) dispatch.Result {
			if ev.Key != dispatch.KeyRune {
				return dispatch.ResultIgnored
			}
			switch ev.Rune {
			case 'j':
				m.previewLine++
			case 'k':
				if m.previewLine > 0 {
					m.previewLine--
				}
			default:
				return dispatch.ResultIgnored
			}
			env.RequestRender()
			return dispatch.ResultStop
		})
		t.PopNode() // preview

		t.PushNode()
		t.SetLayoutID(lidStatus)
		t.PopNode()

		t.PopNode() // root
	})

	m.layout()
	m.tree.SyncBounds(m.bounds)
}

func (m *model) menuAction(i int, item string) {
	m.menuOpen = false
	switch i {
	case 0:
		m.messages = append(m.messages, fmt.Sprintf("draft %d", len(m.messages)+1))
		m.status = "new message drafted"
	case 1:
		m.status = "all read"
	case 2:
		m.quitting = true
	default:
		m.status = item
	}
}

func (m *model) moveSelection(delta int, env *dispatch.Env) {
	next := m.selected + delta
	if next < 0 || next >= len(m.messages) {
		return
	}
	m.selected = next
	m.status = "selected: " + m.messages[next]
	env.RequestRender()
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.rebuild()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	}

	m.driver.HandleMsg(msg)
	m.env.TakeRenderRequest()
	if m.quitting {
		return m, tea.Quit
	}
	m.rebuild()
	return m, nil
}

var (
	barStyle      = lipgloss.NewStyle().Reverse(true)
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#6B7280"))
	focusedStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#7C3AED"))
	menuStyle     = lipgloss.NewStyle().Background(lipgloss.Color("#1F2937")).Width(20)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	hoverStyle    = lipgloss.NewStyle().Underline(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

func (m *model) View() string {
	if m.width == 0 {
		return ""
	}
	var b strings.Builder

	b.WriteString(barStyle.Render(padTo(" File   Help", m.width)))
	b.WriteString("\n")

	if m.menuOpen {
		for _, item := range menuItems {
			b.WriteString(menuStyle.Render(" " + item))
			b.WriteString("\n")
		}
		b.WriteString(dimStyle.Render(strings.Repeat("-", 20)))
		b.WriteString("\n")
	}

	focused, _ := m.focus.Current()
	top := 1
	if m.menuOpen {
		top = 2 + len(menuItems)
	}
	paneH := m.height - top - 1
	leftW := m.width / 2

	inbox := m.renderInbox(leftW-2, paneH-2, focused == m.inboxFocus)
	preview := m.renderPreview(m.width-leftW-2, paneH-2, focused == m.previewFocus)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, inbox, preview))
	b.WriteString("\n")

	b.WriteString(dimStyle.Render(padTo(" "+m.status, m.width)))
	return b.String()
}

func (m *model) renderInbox(w, h int, focused bool) string {
	var lines []string
	for i, msg := range m.messages {
		if i >= h {
			break
		}
		line := padTo(" "+msg, w)
		switch {
		case i == m.selected:
			line = selectedStyle.Render(">" + line[1:])
		case i == m.hovered:
			line = hoverStyle.Render(line)
		}
		lines = append(lines, line)
	}
	for len(lines) < h {
		lines = append(lines, strings.Repeat(" ", w))
	}
	style := paneStyle
	if focused {
		style = focusedStyle
	}
	return style.Width(w).Height(h).Render(strings.Join(lines, "\n"))
}

func (m *model) renderPreview(w, h int, focused bool) string {
	body := []string{
		"from: buildbot",
		"",
		m.messages[m.selected],
		"",
		"j/k scroll this pane when focused;",
		"ctrl+n / ctrl+p walk the inbox;",
		"the wheel works over the list too.",
	}
	start := m.previewLine
	if start >= len(body) {
		start = len(body) - 1
	}
	var lines []string
	for _, l := range body[start:] {
		if len(lines) >= h {
			break
		}
		lines = append(lines, padTo(" "+l, w))
	}
	style := paneStyle
	if focused {
		style = focusedStyle
	}
	return style.Width(w).Height(h).Render(strings.Join(lines, "\n"))
}

func padTo(s string, w int) string {
	if len(s) >= w {
		return s[:w]
	}
	return s + strings.Repeat(" ", w-len(s))
}

func main() {
	flag.Parse()

	m, err := newModel()
	if err != nil {
		log.Fatal(err)
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}
