package dispatch

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Keystroke is a parsed key chord a binding matches against.
type Keystroke struct {
	Key  Key
	Rune rune
	Mods Modifier
}

// Matches reports whether an incoming key event is this keystroke.
// Modifiers must match exactly.
func (s Keystroke) Matches(ev KeyEvent) bool {
	if s.Key != ev.Key || s.Mods != ev.Mods {
		return false
	}
	return s.Key != KeyRune || s.Rune == ev.Rune
}

// String formats the keystroke the way ParseKeystroke reads it.
func (s Keystroke) String() string {
	var b strings.Builder
	if s.Mods.Has(ModCtrl) {
		b.WriteString("ctrl+")
	}
	if s.Mods.Has(ModAlt) {
		b.WriteString("alt+")
	}
	if s.Mods.Has(ModShift) {
		b.WriteString("shift+")
	}
	if s.Key == KeyRune {
		if s.Rune == ' ' {
			b.WriteString("space")
		} else {
			b.WriteRune(s.Rune)
		}
	} else {
		b.WriteString(s.Key.String())
	}
	return b.String()
}

// keysByName resolves the names ParseKeystroke accepts, derived from the
// canonical key names plus a few common aliases.
var keysByName = make(map[string]Key)

func init() {
	for k, name := range keyNames {
		if k == KeyNone || k == KeyRune {
			continue
		}
		keysByName[name] = k
	}
	keysByName["esc"] = KeyEscape
	keysByName["return"] = KeyEnter
	keysByName["del"] = KeyDelete
	keysByName["pageup"] = KeyPageUp
	keysByName["pagedown"] = KeyPageDown
	keysByName["pgdn"] = KeyPageDown
}

// ParseKeystroke reads a keystroke description like "ctrl+s", "shift+tab",
// "alt+x", "f5" or "q". Names are case-insensitive. Ctrl+letter maps to
// the dedicated control keys, matching how terminals deliver them.
func ParseKeystroke(s string) (Keystroke, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Keystroke{}, fmt.Errorf("empty keystroke")
	}
	if k, ok := keysByName[s]; ok {
		return Keystroke{Key: k}, nil
	}
	if s == "space" {
		return Keystroke{Key: KeyRune, Rune: ' '}, nil
	}

	parts := strings.Split(s, "+")
	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		switch p {
		case "ctrl":
			mods |= ModCtrl
		case "alt":
			mods |= ModAlt
		case "shift":
			mods |= ModShift
		default:
			return Keystroke{}, fmt.Errorf("unknown modifier %q in %q", p, s)
		}
	}
	last := parts[len(parts)-1]
	if last == "space" {
		last = " "
	}

	if k, ok := keysByName[last]; ok {
		if mods.Has(ModCtrl) {
			return Keystroke{}, fmt.Errorf("unsupported combination %q", s)
		}
		return Keystroke{Key: k, Mods: mods}, nil
	}
	r := []rune(last)
	if len(r) != 1 {
		return Keystroke{}, fmt.Errorf("unknown key %q in %q", last, s)
	}
	if mods.Has(ModCtrl) {
		if r[0] >= 'a' && r[0] <= 'z' {
			return Keystroke{Key: KeyCtrlA + Key(r[0]-'a'), Mods: mods &^ ModCtrl}, nil
		}
		return Keystroke{}, fmt.Errorf("unsupported combination %q", s)
	}
	return Keystroke{Key: KeyRune, Rune: r[0], Mods: mods}, nil
}

// keyBinding associates a keystroke with an action inside one context.
type keyBinding struct {
	context string
	stroke  Keystroke
	action  ActionType
}

// Keymap maps keystrokes to actions, scoped by key contexts. Bindings
// with an empty context are global; Resolve prefers the innermost context
// on the focus path and falls back to global last.
type Keymap struct {
	bindings []keyBinding
	set      *ActionSet
}

// NewKeymap creates an empty keymap interning action names into set.
func NewKeymap(set *ActionSet) *Keymap {
	if set == nil {
		set = NewActionSet()
	}
	return &Keymap{set: set}
}

// Actions returns the action set this keymap interns into.
func (k *Keymap) Actions() *ActionSet {
	return k.set
}

// Bind adds a binding. An empty context makes it global.
func (k *Keymap) Bind(context string, stroke Keystroke, action ActionType) *Keymap {
	if action == ActionNone {
		return k
	}
	k.bindings = append(k.bindings, keyBinding{context: context, stroke: stroke, action: action})
	return k
}

// BindName parses the keystroke, interns the action name and binds them.
func (k *Keymap) BindName(context, keys, action string) error {
	stroke, err := ParseKeystroke(keys)
	if err != nil {
		return fmt.Errorf("keymap: bind %q: %w", keys, err)
	}
	if action == "" {
		return fmt.Errorf("keymap: bind %q: empty action", keys)
	}
	k.Bind(context, stroke, k.set.Intern(action))
	return nil
}

// Resolve finds the action bound to a key event. Contexts are tried in
// the order given (innermost first, as produced by Tree.KeyContexts),
// then the global bindings.
func (k *Keymap) Resolve(ev KeyEvent, contexts []string) (Action, bool) {
	for _, ctx := range contexts {
		if ctx == "" {
			continue
		}
		if act, ok := k.resolveIn(ctx, ev); ok {
			return act, true
		}
	}
	return k.resolveIn("", ev)
}

func (k *Keymap) resolveIn(context string, ev KeyEvent) (Action, bool) {
	for _, b := range k.bindings {
		if b.context == context && b.stroke.Matches(ev) {
			return Action{Type: b.action}, true
		}
	}
	return Action{}, false
}

// Len returns the number of bindings.
func (k *Keymap) Len() int {
	return len(k.bindings)
}

// kmTomlBinding is the TOML-friendly representation of one binding.
type kmTomlBinding struct {
	Context string `toml:"context,omitempty"`
	Keys    string `toml:"keys"`
	Action  string `toml:"action"`
}

// kmTomlFile is the TOML-friendly representation of a keymap file.
type kmTomlFile struct {
	Binding []kmTomlBinding `toml:"binding"`
}

// LoadKeymap parses a keymap from TOML data:
//
//	[[binding]]
//	context = "editor"   # optional; omitted means global
//	keys    = "ctrl+s"
//	action  = "save"
func LoadKeymap(data []byte, set *ActionSet) (*Keymap, error) {
	var raw kmTomlFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("keymap: parse TOML: %w", err)
	}

	km := NewKeymap(set)
	for i, b := range raw.Binding {
		if b.Keys == "" {
			return nil, fmt.Errorf("keymap: binding %d: missing required field 'keys'", i)
		}
		if b.Action == "" {
			return nil, fmt.Errorf("keymap: binding %d: missing required field 'action'", i)
		}
		stroke, err := ParseKeystroke(b.Keys)
		if err != nil {
			return nil, fmt.Errorf("keymap: binding %d: %w", i, err)
		}
		km.Bind(b.Context, stroke, km.set.Intern(b.Action))
	}
	return km, nil
}

// LoadKeymapFile reads and parses a TOML keymap file.
func LoadKeymapFile(path string, set *ActionSet) (*Keymap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keymap: %w", err)
	}
	return LoadKeymap(data, set)
}

// SaveTOML serializes the keymap to TOML format.
func (k *Keymap) SaveTOML() ([]byte, error) {
	raw := kmTomlFile{Binding: make([]kmTomlBinding, len(k.bindings))}
	for i, b := range k.bindings {
		raw.Binding[i] = kmTomlBinding{
			Context: b.context,
			Keys:    b.stroke.String(),
			Action:  k.set.Name(b.action),
		}
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(raw); err != nil {
		return nil, fmt.Errorf("keymap: encode TOML: %w", err)
	}
	return buf.Bytes(), nil
}
