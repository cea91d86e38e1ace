// Package tui renders an editor surface in the terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/coderunr/editor/internal/catalogue"
	"github.com/coderunr/editor/internal/editor"
)

const (
	sidebarWidth = 18
	panelHeight  = 6
)

var (
	teal   = lipgloss.Color("#0d9488")
	slate  = lipgloss.Color("#1e293b")
	red    = lipgloss.Color("#ef4444")
	yellow = lipgloss.Color("#eab308")
	white  = lipgloss.Color("#ffffff")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(teal)
	itemStyle   = lipgloss.NewStyle().Padding(0, 1)
	activeItem  = itemStyle.Background(teal).Foreground(white)
	buttonStyle = lipgloss.NewStyle().Padding(0, 2).Background(teal).Foreground(white)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(slate).Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(red)
	failedStyle = lipgloss.NewStyle().Foreground(yellow).Bold(true)
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

type focus int

const (
	focusSource focus = iota
	focusStdin
)

// ViewMsg carries a view transition from the controller into the program.
// Send it from a goroutine: the controller notifies synchronously while
// Update is running, so messages may arrive out of order.
type ViewMsg editor.View

// Model is the bubbletea model for one mounted surface
type Model struct {
	surface *editor.Surface
	cat     *catalogue.Catalogue

	source textarea.Model
	stdin  textarea.Model
	focus  focus

	view   editor.View
	width  int
	height int
}

// New creates a model for s. The caller forwards view transitions as ViewMsg.
func New(s *editor.Surface) Model {
	source := textarea.New()
	source.ShowLineNumbers = true
	source.CharLimit = 0
	source.MaxHeight = 0
	source.SetValue(s.State().Source)
	source.Focus()

	stdin := textarea.New()
	stdin.ShowLineNumbers = false
	stdin.CharLimit = 0
	stdin.MaxHeight = 0
	stdin.Placeholder = "stdin"
	stdin.SetHeight(panelHeight - 2)
	stdin.SetValue(s.State().Stdin)

	return Model{
		surface: s,
		cat:     s.Catalogue(),
		source:  source,
		stdin:   stdin,
		view:    s.View(),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ViewMsg:
		if v := editor.View(msg); !v.Precedes(m.view) {
			m.view = v
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			return m, m.toggleFocus()
		case "ctrl+n":
			m.selectLanguage(1)
			return m, nil
		case "ctrl+p":
			m.selectLanguage(-1)
			return m, nil
		case "ctrl+r":
			m.surface.Run()
			m.view = m.surface.View()
			return m, nil
		}

		if m.surface.HandleKey(KeyEvent(msg)) {
			m.view = m.surface.View()
			return m, nil
		}
		return m.updateFocused(msg)
	}

	return m.updateFocused(msg)
}

// updateFocused lets the focused text area handle msg and mirrors the change
// into the surface
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusSource:
		before := m.source.Value()
		m.source, cmd = m.source.Update(msg)
		if after := m.source.Value(); after != before {
			m.surface.SetSource(after)
		}
	case focusStdin:
		before := m.stdin.Value()
		m.stdin, cmd = m.stdin.Update(msg)
		if after := m.stdin.Value(); after != before {
			m.surface.SetStdin(after)
		}
	}
	return m, cmd
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == focusSource {
		m.focus = focusStdin
		m.source.Blur()
		return m.stdin.Focus()
	}
	m.focus = focusSource
	m.stdin.Blur()
	return m.source.Focus()
}

func (m *Model) selectLanguage(step int) {
	next := m.cat.Next(m.surface.State().Language, step)
	m.surface.SelectLanguage(next)
	m.source.SetValue(m.surface.State().Source)
}

func (m *Model) resize() {
	mainWidth := m.width - sidebarWidth - 4
	if mainWidth < 20 {
		mainWidth = 20
	}
	sourceHeight := m.height - panelHeight - 8
	if sourceHeight < 3 {
		sourceHeight = 3
	}
	m.source.SetWidth(mainWidth)
	m.source.SetHeight(sourceHeight)
	m.stdin.SetWidth(mainWidth/2 - 4)
}

// View implements tea.Model
func (m Model) View() string {
	state := m.surface.State()

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.header(state),
		m.source.View(),
		lipgloss.JoinHorizontal(lipgloss.Top, m.inputPanel(), m.outputPanel()),
		helpStyle.Render("ctrl+enter/ctrl+j or ctrl+r run • tab switch field • ctrl+n/ctrl+p language • esc quit"),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar(state.Language), main)
}

func (m Model) sidebar(selected catalogue.LanguageID) string {
	lines := []string{titleStyle.Render("Languages"), ""}
	for _, e := range m.cat.Entries() {
		label := fmt.Sprintf("%-3s %s", e.Icon, catalogue.Title(e.ID))
		style := itemStyle
		if e.ID == selected {
			style = activeItem
		}
		lines = append(lines, style.Width(sidebarWidth-2).Render(label))
	}
	return lipgloss.NewStyle().Width(sidebarWidth).Render(strings.Join(lines, "\n"))
}

func (m Model) header(state editor.State) string {
	title := titleStyle.Render(fmt.Sprintf("Online %s Compiler", strings.ToUpper(string(state.Language))))
	label := "Run Code"
	if m.view.Loading() {
		label = "Loading..."
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", buttonStyle.Render(label))
}

func (m Model) inputPanel() string {
	return panelStyle.Render(titleStyle.Render("Input:") + "\n" + m.stdin.View())
}

func (m Model) outputPanel() string {
	width := m.stdin.Width()
	if m.width > 0 {
		width = m.width - sidebarWidth - m.stdin.Width() - 12
	}
	if width < 10 {
		width = 10
	}

	var body string
	switch {
	case m.view.Failed():
		body = failedStyle.Render("Request failed: " + m.view.Reason)
	case m.view.IsError():
		body = errorStyle.Render(tail(m.view.Output, panelHeight-2))
	default:
		body = tail(m.view.Output, panelHeight-2)
	}

	return panelStyle.Width(width).Render(titleStyle.Render("Output:") + "\n" + body)
}

// tail keeps the last n lines of s
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
