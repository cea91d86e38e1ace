package tui

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coderunr/editor/internal/catalogue"
	"github.com/coderunr/editor/internal/editor"
	"github.com/coderunr/editor/internal/keys"
	"github.com/coderunr/editor/internal/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecutor struct {
	mu       sync.Mutex
	requests []types.ExecutionRequest
}

func (e *recordingExecutor) Execute(_ context.Context, request types.ExecutionRequest) (*types.ExecutionResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requests = append(e.requests, request)
	return &types.ExecutionResult{Output: "done\n"}, nil
}

func (e *recordingExecutor) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.requests)
}

func (e *recordingExecutor) last() types.ExecutionRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.requests[len(e.requests)-1]
}

func newModel(t *testing.T) (Model, *editor.Surface, *recordingExecutor) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	exec := &recordingExecutor{}
	s := editor.Mount(editor.Options{
		Executor: exec,
		Language: catalogue.Python,
		Logger:   logrus.NewEntry(logger),
	})
	t.Cleanup(s.Unmount)

	m := New(s)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model), s, exec
}

func update(m Model, msg tea.Msg) Model {
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func TestKeyEvent(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want keys.Event
	}{
		{"ctrl+j is ctrl+enter", tea.KeyMsg{Type: tea.KeyCtrlJ}, keys.Event{Key: keys.Enter, Ctrl: true}},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, keys.Event{Key: keys.Enter}},
		{"alt+enter", tea.KeyMsg{Type: tea.KeyEnter, Alt: true}, keys.Event{Key: keys.Enter, Alt: true}},
		{"runes", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, keys.Event{Key: "x"}},
		{"ctrl+a", tea.KeyMsg{Type: tea.KeyCtrlA}, keys.Event{Key: "a", Ctrl: true}},
		{"shift+tab", tea.KeyMsg{Type: tea.KeyShiftTab}, keys.Event{Key: keys.Tab, Shift: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KeyEvent(tt.msg))
		})
	}
}

func TestTypingMirrorsIntoSurface(t *testing.T) {
	m, s, exec := newModel(t)

	m.source.SetValue("")
	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("print(1)")})
	assert.Equal(t, "print(1)", s.State().Source)

	m = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "print(1)\n", s.State().Source)
	assert.Equal(t, 0, exec.count())

	m = update(m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("7")})
	assert.Equal(t, "7", s.State().Stdin)
	assert.Equal(t, "print(1)\n", s.State().Source)
}

func TestCtrlEnterRunsCurrentState(t *testing.T) {
	m, s, exec := newModel(t)

	m.source.SetValue("")
	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("print(2)")})
	m = update(m, tea.KeyMsg{Type: tea.KeyCtrlJ})

	require.Eventually(t, func() bool {
		return s.View().Phase == editor.PhaseSucceeded
	}, 2*time.Second, 10*time.Millisecond)

	require.Equal(t, 1, exec.count())
	assert.Equal(t, "print(2)", exec.last().Script)
	assert.Nil(t, exec.last().Stdin)
	assert.Equal(t, "print(2)", m.source.Value())
}

func TestLanguageSwitchReplacesSource(t *testing.T) {
	m, s, _ := newModel(t)

	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("junk")})
	m = update(m, tea.KeyMsg{Type: tea.KeyCtrlN})

	assert.Equal(t, catalogue.Ruby, s.State().Language)
	assert.Equal(t, catalogue.Builtin().Snippet(catalogue.Ruby), s.State().Source)
	assert.Equal(t, s.State().Source, m.source.Value())

	m = update(m, tea.KeyMsg{Type: tea.KeyCtrlP})
	m = update(m, tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.Equal(t, catalogue.Java, s.State().Language)
}

func TestViewRendersOutcome(t *testing.T) {
	m, _, _ := newModel(t)

	m = update(m, ViewMsg(editor.View{Phase: editor.PhaseSubmitting, Seq: 1}))
	assert.Contains(t, m.View(), "Loading...")

	m = update(m, ViewMsg(editor.View{Phase: editor.PhaseSucceeded, Seq: 1, Output: "hello there"}))
	out := m.View()
	assert.Contains(t, out, "hello there")
	assert.Contains(t, out, "Run Code")
	assert.Contains(t, out, "Online PYTHON Compiler")

	m = update(m, ViewMsg(editor.View{Phase: editor.PhaseFailed, Seq: 2, Reason: "connection refused"}))
	assert.Contains(t, m.View(), "Request failed")
}

func TestViewIgnoresOutOfOrderTransitions(t *testing.T) {
	m, _, _ := newModel(t)

	m = update(m, ViewMsg(editor.View{Phase: editor.PhaseSucceeded, Seq: 3, Output: "latest"}))
	m = update(m, ViewMsg(editor.View{Phase: editor.PhaseSubmitting, Seq: 3, Output: "older"}))
	m = update(m, ViewMsg(editor.View{Phase: editor.PhaseSucceeded, Seq: 2, Output: "stale"}))

	assert.Equal(t, "latest", m.view.Output)
	assert.False(t, m.view.Loading())
}

func TestTail(t *testing.T) {
	assert.Equal(t, "c\nd", tail("a\nb\nc\nd\n", 2))
	assert.Equal(t, "a", tail("a", 3))
}
