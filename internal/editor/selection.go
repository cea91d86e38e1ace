package editor

import (
	"sync"

	"github.com/coderunr/editor/internal/catalogue"
)

// State is what the user is editing
type State struct {
	Language catalogue.LanguageID
	Source   string
	Stdin    string
}

// Selection holds the active language and the text buffers
type Selection struct {
	mu    sync.RWMutex
	cat   *catalogue.Catalogue
	state State
}

// NewSelection starts with lang selected and its starter snippet loaded
func NewSelection(cat *catalogue.Catalogue, lang catalogue.LanguageID) *Selection {
	return &Selection{
		cat: cat,
		state: State{
			Language: lang,
			Source:   cat.Snippet(lang),
		},
	}
}

// SelectLanguage switches language and replaces the source with the language's
// snippet. Edits to the previous source are discarded.
func (s *Selection) SelectLanguage(id catalogue.LanguageID) {
	snippet := s.cat.Snippet(id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Language = id
	s.state.Source = snippet
}

// SetSource replaces the source buffer
func (s *Selection) SetSource(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Source = text
}

// SetStdin replaces the stdin buffer
func (s *Selection) SetStdin(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Stdin = text
}

// Snapshot returns a copy of the current state
func (s *Selection) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
