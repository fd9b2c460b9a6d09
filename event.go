package dispatch

import "strings"

// Key identifies a keyboard key. Printable characters arrive as KeyRune with
// the character in KeyEvent.Rune.
type Key uint16

const (
	KeyNone Key = iota
	KeyRune

	// Special keys
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyInsert

	// Arrow keys
	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	// Navigation keys
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	// Function keys
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	// Control keys. Ctrl+letter arrives as a distinct key, not as a
	// modifier on the letter, matching how terminals report them.
	KeyCtrlA
	KeyCtrlB
	KeyCtrlC
	KeyCtrlD
	KeyCtrlE
	KeyCtrlF
	KeyCtrlG
	KeyCtrlH
	KeyCtrlI
	KeyCtrlJ
	KeyCtrlK
	KeyCtrlL
	KeyCtrlM
	KeyCtrlN
	KeyCtrlO
	KeyCtrlP
	KeyCtrlQ
	KeyCtrlR
	KeyCtrlS
	KeyCtrlT
	KeyCtrlU
	KeyCtrlV
	KeyCtrlW
	KeyCtrlX
	KeyCtrlY
	KeyCtrlZ

	// KeyCtrlSpace is Ctrl+Space (the NUL character).
	KeyCtrlSpace
)

// keyNames maps keys to their canonical names. Shared with the keymap
// parser, which accepts the same names case-insensitively.
var keyNames = map[Key]string{
	KeyNone:      "none",
	KeyRune:      "rune",
	KeyEscape:    "escape",
	KeyEnter:     "enter",
	KeyTab:       "tab",
	KeyBackspace: "backspace",
	KeyDelete:    "delete",
	KeyInsert:    "insert",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyHome:      "home",
	KeyEnd:       "end",
	KeyPageUp:    "pgup",
	KeyPageDown:  "pgdown",
	KeyF1:        "f1",
	KeyF2:        "f2",
	KeyF3:        "f3",
	KeyF4:        "f4",
	KeyF5:        "f5",
	KeyF6:        "f6",
	KeyF7:        "f7",
	KeyF8:        "f8",
	KeyF9:        "f9",
	KeyF10:       "f10",
	KeyF11:       "f11",
	KeyF12:       "f12",
	KeyCtrlA:     "ctrl+a",
	KeyCtrlB:     "ctrl+b",
	KeyCtrlC:     "ctrl+c",
	KeyCtrlD:     "ctrl+d",
	KeyCtrlE:     "ctrl+e",
	KeyCtrlF:     "ctrl+f",
	KeyCtrlG:     "ctrl+g",
	KeyCtrlH:     "ctrl+h",
	KeyCtrlI:     "ctrl+i",
	KeyCtrlJ:     "ctrl+j",
	KeyCtrlK:     "ctrl+k",
	KeyCtrlL:     "ctrl+l",
	KeyCtrlM:     "ctrl+m",
	KeyCtrlN:     "ctrl+n",
	KeyCtrlO:     "ctrl+o",
	KeyCtrlP:     "ctrl+p",
	KeyCtrlQ:     "ctrl+q",
	KeyCtrlR:     "ctrl+r",
	KeyCtrlS:     "ctrl+s",
	KeyCtrlT:     "ctrl+t",
	KeyCtrlU:     "ctrl+u",
	KeyCtrlV:     "ctrl+v",
	KeyCtrlW:     "ctrl+w",
	KeyCtrlX:     "ctrl+x",
	KeyCtrlY:     "ctrl+y",
	KeyCtrlZ:     "ctrl+z",
	KeyCtrlSpace: "ctrl+space",
}

// String returns the canonical name of the key.
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "unknown"
}

// Modifier is a bitmask of keyboard modifier flags.
type Modifier uint8

const (
	ModNone Modifier = 0
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
)

// Has checks if the modifier set includes the given modifier.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// String returns a human-readable representation of the modifiers.
func (m Modifier) String() string {
	if m == ModNone {
		return "none"
	}
	var parts []string
	if m.Has(ModCtrl) {
		parts = append(parts, "ctrl")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "alt")
	}
	if m.Has(ModShift) {
		parts = append(parts, "shift")
	}
	return strings.Join(parts, "+")
}

// MouseButton identifies which button a mouse event refers to.
type MouseButton uint8

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
)

// String returns a human-readable button name.
func (b MouseButton) String() string {
	switch b {
	case MouseNone:
		return "none"
	case MouseLeft:
		return "left"
	case MouseMiddle:
		return "middle"
	case MouseRight:
		return "right"
	case MouseWheelUp:
		return "wheel-up"
	case MouseWheelDown:
		return "wheel-down"
	default:
		return "unknown"
	}
}

// MouseEvent is an already-decoded pointer event in screen coordinates.
type MouseEvent struct {
	X, Y   int
	Button MouseButton
	Mods   Modifier
}

// KeyEvent is an already-decoded keyboard event. Rune is only meaningful
// when Key is KeyRune.
type KeyEvent struct {
	Key  Key
	Rune rune
	Mods Modifier
}
