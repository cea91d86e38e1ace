// Package keys implements a page-wide keyboard listener registry and chord
// bindings on top of it.
package keys

import (
	"strings"
	"sync"
)

// Key names shared by the view layers
const (
	Enter = "Enter"
	Tab   = "Tab"
)

// Event is a single keydown
type Event struct {
	Key   string
	Ctrl  bool
	Alt   bool
	Shift bool
	Meta  bool
}

// Listener receives every dispatched event and reports whether it consumed it
type Listener func(Event) bool

// Dispatcher fans key events out to all subscribed listeners
type Dispatcher struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[uint64]Listener
	order     []uint64
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		listeners: make(map[uint64]Listener),
	}
}

// Subscribe registers l and returns the function that removes it again.
// Calling the returned function more than once is a no-op.
func (d *Dispatcher) Subscribe(l Listener) func() {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.listeners[id] = l
	d.order = append(d.order, id)
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { d.remove(id) })
	}
}

func (d *Dispatcher) remove(id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.listeners, id)
	for i, v := range d.order {
		if v == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// Dispatch delivers e to every listener in subscription order. It reports
// whether any listener consumed the event; unconsumed events keep their
// default behaviour in the view.
func (d *Dispatcher) Dispatch(e Event) bool {
	d.mu.Lock()
	ls := make([]Listener, 0, len(d.order))
	for _, id := range d.order {
		ls = append(ls, d.listeners[id])
	}
	d.mu.Unlock()

	handled := false
	for _, l := range ls {
		if l(e) {
			handled = true
		}
	}
	return handled
}

// Len returns the number of registered listeners
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}

// Chord is a key plus an exact set of modifiers
type Chord struct {
	Key   string
	Ctrl  bool
	Alt   bool
	Shift bool
	Meta  bool
}

// CtrlEnter is the run shortcut
var CtrlEnter = Chord{Key: Enter, Ctrl: true}

// Matches reports whether e is exactly this chord. Key names compare case
// insensitively; every modifier has to match.
func (c Chord) Matches(e Event) bool {
	return strings.EqualFold(c.Key, e.Key) &&
		c.Ctrl == e.Ctrl &&
		c.Alt == e.Alt &&
		c.Shift == e.Shift &&
		c.Meta == e.Meta
}

func (c Chord) String() string {
	var parts []string
	if c.Ctrl {
		parts = append(parts, "ctrl")
	}
	if c.Alt {
		parts = append(parts, "alt")
	}
	if c.Shift {
		parts = append(parts, "shift")
	}
	if c.Meta {
		parts = append(parts, "meta")
	}
	parts = append(parts, strings.ToLower(c.Key))
	return strings.Join(parts, "+")
}

// Binding keeps at most one listener for a chord registered on a dispatcher.
type Binding struct {
	mu     sync.Mutex
	d      *Dispatcher
	chord  Chord
	unbind func()
	closed bool
}

// Bind creates a binding without an action
func Bind(d *Dispatcher, chord Chord) *Binding {
	return &Binding{d: d, chord: chord}
}

// Rebind replaces the bound action. The previous listener is removed before
// the new one is registered.
func (b *Binding) Rebind(action func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	if b.unbind != nil {
		b.unbind()
		b.unbind = nil
	}

	chord := b.chord
	b.unbind = b.d.Subscribe(func(e Event) bool {
		if !chord.Matches(e) {
			return false
		}
		action()
		return true
	})
}

// Close removes the listener. The binding cannot be reused afterwards.
func (b *Binding) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.unbind != nil {
		b.unbind()
		b.unbind = nil
	}
	b.closed = true
}

// Chord returns the bound chord
func (b *Binding) Chord() Chord {
	return b.chord
}
