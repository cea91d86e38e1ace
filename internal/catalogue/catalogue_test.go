package catalogue

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinOrder(t *testing.T) {
	want := []LanguageID{CPP, C, Java, Python, Ruby, NodeJS, Go, CSharp, Kotlin}
	assert.Equal(t, want, Builtin().Languages())

	for _, e := range Builtin().Entries() {
		assert.NotEmpty(t, e.Snippet, "snippet for %s", e.ID)
		assert.NotEmpty(t, e.Icon, "icon for %s", e.ID)
	}
}

func TestParse(t *testing.T) {
	cat := Builtin()

	id, err := cat.Parse(" Python ")
	require.NoError(t, err)
	assert.Equal(t, Python, id)

	id, err = cat.Parse("c#")
	require.NoError(t, err)
	assert.Equal(t, CSharp, id)

	_, err = cat.Parse("brainfuck")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownLanguage))
}

func TestSnippetPanicsForUnknownLanguage(t *testing.T) {
	assert.Panics(t, func() {
		Builtin().Snippet("cobol")
	})
}

func TestNextWraps(t *testing.T) {
	cat := New(
		Entry{ID: "a", Snippet: "1"},
		Entry{ID: "b", Snippet: "2"},
		Entry{ID: "c", Snippet: "3"},
	)

	assert.Equal(t, LanguageID("b"), cat.Next("a", 1))
	assert.Equal(t, LanguageID("a"), cat.Next("c", 1))
	assert.Equal(t, LanguageID("c"), cat.Next("a", -1))
	assert.Equal(t, LanguageID("a"), cat.Next("zzz", 1))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Python", Title(Python))
	assert.Equal(t, "C#", Title(CSharp))
	assert.Equal(t, "", Title(""))
}
