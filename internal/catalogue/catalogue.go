package catalogue

import (
	"errors"
	"fmt"
	"strings"
)

// LanguageID identifies a language supported by the editor
type LanguageID string

const (
	CPP    LanguageID = "cpp"
	C      LanguageID = "c"
	Java   LanguageID = "java"
	Python LanguageID = "python"
	Ruby   LanguageID = "ruby"
	NodeJS LanguageID = "nodejs"
	Go     LanguageID = "go"
	CSharp LanguageID = "c#"
	Kotlin LanguageID = "kotlin"
)

// Default is the language selected when an editor is mounted
const Default = CPP

// ErrUnknownLanguage is returned when parsing an id that is not in the catalogue
var ErrUnknownLanguage = errors.New("unknown language")

// Entry describes one language of the catalogue
type Entry struct {
	ID      LanguageID
	Icon    string
	Snippet string
}

// Catalogue is the read-only mapping from language id to starter snippet and glyph
type Catalogue struct {
	order   []LanguageID
	entries map[LanguageID]Entry
}

// New builds a catalogue from entries, keeping their order for display
func New(entries ...Entry) *Catalogue {
	c := &Catalogue{
		order:   make([]LanguageID, 0, len(entries)),
		entries: make(map[LanguageID]Entry, len(entries)),
	}
	for _, e := range entries {
		if _, exists := c.entries[e.ID]; !exists {
			c.order = append(c.order, e.ID)
		}
		c.entries[e.ID] = e
	}
	return c
}

// Builtin returns the catalogue shipped with the editor
func Builtin() *Catalogue {
	return builtin
}

// Languages returns the catalogue keys in display order
func (c *Catalogue) Languages() []LanguageID {
	out := make([]LanguageID, len(c.order))
	copy(out, c.order)
	return out
}

// Entries returns the catalogue entries in display order
func (c *Catalogue) Entries() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.entries[id])
	}
	return out
}

// Has reports whether id is a catalogue key
func (c *Catalogue) Has(id LanguageID) bool {
	_, ok := c.entries[id]
	return ok
}

// Lookup returns the entry for id
func (c *Catalogue) Lookup(id LanguageID) (Entry, bool) {
	e, ok := c.entries[id]
	return e, ok
}

// Snippet returns the starter source for id. Asking for a language that is not
// in the catalogue is a programming error and panics.
func (c *Catalogue) Snippet(id LanguageID) string {
	e, ok := c.entries[id]
	if !ok {
		panic(fmt.Sprintf("catalogue: no snippet for language %q", id))
	}
	return e.Snippet
}

// Icon returns the display glyph for id, or an empty string
func (c *Catalogue) Icon(id LanguageID) string {
	return c.entries[id].Icon
}

// Parse validates user supplied text against the catalogue keys
func (c *Catalogue) Parse(s string) (LanguageID, error) {
	id := LanguageID(strings.ToLower(strings.TrimSpace(s)))
	if !c.Has(id) {
		return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
	}
	return id, nil
}

// Next returns the language after id in display order, wrapping around
func (c *Catalogue) Next(id LanguageID, step int) LanguageID {
	n := len(c.order)
	if n == 0 {
		return id
	}
	for i, lang := range c.order {
		if lang == id {
			return c.order[((i+step)%n+n)%n]
		}
	}
	return c.order[0]
}

// Title returns the display name of a language, capitalised
func Title(id LanguageID) string {
	s := string(id)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
