package dispatch

// ActionType is a stable numeric id for a registered action name. Ids are
// assigned sequentially from 1; the zero value means no action, so an
// unset field can never match a registration.
type ActionType uint32

// ActionNone is the zero ActionType.
const ActionNone ActionType = 0

// Action is a tagged command dispatched along a path, decoupled from raw
// click and key semantics. Arg carries an optional payload the dispatcher
// never interprets.
type Action struct {
	Type ActionType
	Arg  uint64
}

// ActionSet interns action names to ActionTypes. Ids are per-set, not
// process-wide: each application owns its set, typically shared between
// the keymap and the frames that register action listeners. Like the rest
// of the dispatch state it is single-loop owned, so there is no locking.
type ActionSet struct {
	ids map[string]ActionType
	rev []string
}

// NewActionSet creates an empty ActionSet.
func NewActionSet() *ActionSet {
	return &ActionSet{
		ids: make(map[string]ActionType),
		rev: []string{""}, // index 0 reserved for ActionNone
	}
}

// Intern returns the ActionType for name, assigning the next id if the
// name has not been seen. Empty names intern to ActionNone.
func (s *ActionSet) Intern(name string) ActionType {
	if name == "" {
		return ActionNone
	}
	if id, ok := s.ids[name]; ok {
		return id
	}
	id := ActionType(len(s.rev))
	s.rev = append(s.rev, name)
	s.ids[name] = id
	return id
}

// Lookup returns the id for a name without interning it.
func (s *ActionSet) Lookup(name string) (ActionType, bool) {
	id, ok := s.ids[name]
	return id, ok
}

// Name returns the name behind an id, or the empty string for ActionNone
// and unknown ids.
func (s *ActionSet) Name(id ActionType) string {
	if int(id) >= len(s.rev) {
		return ""
	}
	return s.rev[id]
}

// Len returns the number of interned names.
func (s *ActionSet) Len() int {
	return len(s.rev) - 1
}
