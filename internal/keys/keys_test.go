package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChordMatchesExactly(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  bool
	}{
		{"ctrl+enter", Event{Key: "Enter", Ctrl: true}, true},
		{"lowercase key", Event{Key: "enter", Ctrl: true}, true},
		{"plain enter", Event{Key: "Enter"}, false},
		{"ctrl+shift+enter", Event{Key: "Enter", Ctrl: true, Shift: true}, false},
		{"meta+enter", Event{Key: "Enter", Meta: true}, false},
		{"ctrl+a", Event{Key: "a", Ctrl: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CtrlEnter.Matches(tt.event))
		})
	}
}

func TestChordString(t *testing.T) {
	assert.Equal(t, "ctrl+enter", CtrlEnter.String())
	assert.Equal(t, "ctrl+alt+shift+meta+x", Chord{Key: "X", Ctrl: true, Alt: true, Shift: true, Meta: true}.String())
}

func TestDispatcherUnsubscribeIsIdempotent(t *testing.T) {
	d := NewDispatcher()
	calls := 0
	unsubscribe := d.Subscribe(func(Event) bool {
		calls++
		return false
	})
	other := d.Subscribe(func(Event) bool { return true })
	assert.Equal(t, 2, d.Len())

	assert.True(t, d.Dispatch(Event{Key: "a"}))
	assert.Equal(t, 1, calls)

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 1, d.Len())

	d.Dispatch(Event{Key: "a"})
	assert.Equal(t, 1, calls)

	other()
	assert.Equal(t, 0, d.Len())
	assert.False(t, d.Dispatch(Event{Key: "a"}))
}

func TestBindingRebindKeepsSingleListener(t *testing.T) {
	d := NewDispatcher()
	b := Bind(d, CtrlEnter)

	var fired []int
	for i := 0; i < 5; i++ {
		n := i
		b.Rebind(func() { fired = append(fired, n) })
		assert.Equal(t, 1, d.Len())
	}

	assert.False(t, d.Dispatch(Event{Key: Enter}))
	assert.True(t, d.Dispatch(Event{Key: Enter, Ctrl: true}))
	assert.Equal(t, []int{4}, fired)

	b.Close()
	assert.Equal(t, 0, d.Len())

	b.Rebind(func() { fired = append(fired, 99) })
	assert.Equal(t, 0, d.Len())
	assert.False(t, d.Dispatch(Event{Key: Enter, Ctrl: true}))
	assert.Equal(t, []int{4}, fired)
}
