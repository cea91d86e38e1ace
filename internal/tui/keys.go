package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coderunr/editor/internal/keys"
)

// KeyEvent translates a terminal key press into a dispatcher event.
// Terminals deliver ctrl+enter as a line feed, which bubbletea reports as
// ctrl+j; plain enter arrives as a carriage return.
func KeyEvent(msg tea.KeyMsg) keys.Event {
	switch msg.Type {
	case tea.KeyCtrlJ:
		return keys.Event{Key: keys.Enter, Ctrl: true, Alt: msg.Alt}
	case tea.KeyEnter:
		return keys.Event{Key: keys.Enter, Alt: msg.Alt}
	case tea.KeyTab:
		return keys.Event{Key: keys.Tab, Alt: msg.Alt}
	case tea.KeyShiftTab:
		return keys.Event{Key: keys.Tab, Shift: true, Alt: msg.Alt}
	case tea.KeyRunes:
		return keys.Event{Key: string(msg.Runes), Alt: msg.Alt}
	}

	var e keys.Event
	parts := strings.Split(msg.String(), "+")
	for _, p := range parts[:len(parts)-1] {
		switch p {
		case "ctrl":
			e.Ctrl = true
		case "alt":
			e.Alt = true
		case "shift":
			e.Shift = true
		}
	}
	e.Key = parts[len(parts)-1]
	return e
}
