package dispatch

// FocusID is the stable identity of a focusable element: a hash of the
// string name the element registered under. Frames come and go but the id
// survives, which is what lets focus outlive the per-frame node ids.
type FocusID uint64

// fnv-1a constants
const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

// FocusIDOf hashes a focusable's name into its id. The hash is FNV-1a,
// inlined so hot callers pay no conversion allocation.
func FocusIDOf(name string) FocusID {
	h := uint64(fnvOffset64)
	for i := 0; i < len(name); i++ {
		h ^= uint64(name[i])
		h *= fnvPrime64
	}
	return FocusID(h)
}

// FocusRegistry maintains the tab-ordered set of focusable elements and
// which one currently holds keyboard focus. It lives outside the per-frame
// tree: elements register once (registration is idempotent) and the
// registry persists across frames. The dispatch tree never touches it;
// the input layer reads Current and asks the tree for the focus path.
//
// usage:
//
//	reg := NewFocusRegistry()
//	nameField := reg.Register("login.name")
//	mailField := reg.Register("login.mail")
type FocusRegistry struct {
	order    []FocusID
	names    map[FocusID]string
	current  int // index into order, -1 when empty
	onChange func(FocusID)
}

// NewFocusRegistry creates an empty registry.
func NewFocusRegistry() *FocusRegistry {
	return &FocusRegistry{
		names:   make(map[FocusID]string),
		current: -1,
	}
}

// Register adds a focusable under the given name and returns its id.
// Registering the same name again just returns the existing id. The first
// registered focusable receives initial focus.
func (r *FocusRegistry) Register(name string) FocusID {
	id := FocusIDOf(name)
	if _, ok := r.names[id]; ok {
		return id
	}
	r.names[id] = name
	r.order = append(r.order, id)
	if r.current < 0 {
		r.current = 0
		r.notify()
	}
	return id
}

// Remove drops a focusable from the tab order. If it held focus, focus
// moves to the next entry in order.
func (r *FocusRegistry) Remove(id FocusID) {
	if _, ok := r.names[id]; !ok {
		return
	}
	delete(r.names, id)
	idx := r.indexOf(id)
	r.order = append(r.order[:idx], r.order[idx+1:]...)
	switch {
	case len(r.order) == 0:
		r.current = -1
	case r.current > idx:
		r.current--
	case r.current == idx:
		if r.current == len(r.order) {
			r.current = 0
		}
		r.notify()
	}
}

// Next moves focus to the next focusable, wrapping at the end.
func (r *FocusRegistry) Next() {
	r.move(1)
}

// Prev moves focus to the previous focusable, wrapping at the start.
func (r *FocusRegistry) Prev() {
	r.move(-1)
}

func (r *FocusRegistry) move(delta int) {
	if len(r.order) <= 1 {
		return
	}
	r.current = (r.current + len(r.order) + delta) % len(r.order)
	r.notify()
}

// Focus moves focus to a specific id, reporting whether it is registered.
func (r *FocusRegistry) Focus(id FocusID) bool {
	idx := r.indexOf(id)
	if idx < 0 {
		return false
	}
	if idx != r.current {
		r.current = idx
		r.notify()
	}
	return true
}

// Current returns the focused id, if anything is registered.
func (r *FocusRegistry) Current() (FocusID, bool) {
	if r.current < 0 {
		return 0, false
	}
	return r.order[r.current], true
}

// Name returns the name a focus id was registered under.
func (r *FocusRegistry) Name(id FocusID) (string, bool) {
	name, ok := r.names[id]
	return name, ok
}

// Len returns the number of registered focusables.
func (r *FocusRegistry) Len() int {
	return len(r.order)
}

// OnChange sets a callback that fires whenever focus moves.
func (r *FocusRegistry) OnChange(fn func(FocusID)) {
	r.onChange = fn
}

func (r *FocusRegistry) notify() {
	if r.onChange != nil && r.current >= 0 {
		r.onChange(r.order[r.current])
	}
}

func (r *FocusRegistry) indexOf(id FocusID) int {
	for i, got := range r.order {
		if got == id {
			return i
		}
	}
	return -1
}
