package list

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

func sampleEntries() []domain.CorpusEntry {
	added := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	return []domain.CorpusEntry{
		{ID: "1", Name: "tax-guide.pdf", Format: "pdf", Category: "稅務", Tags: []string{"2024"}, AddedAt: added},
		{ID: "2", Name: "notes.md", Format: "md", AddedAt: added},
		{ID: "3", Name: "Insurance explained", Format: "youtube", Author: "Channel", AddedAt: added},
	}
}

func TestNewEntryList(t *testing.T) {
	list := NewEntryList(styles.DefaultStyles())

	require.NotNil(t, list)
	assert.Equal(t, 0, list.Selected())
	assert.True(t, list.IsEmpty())
	assert.Nil(t, list.SelectedEntry())
	assert.Nil(t, list.Init())
}

func TestNewEntryList_NilStyles(t *testing.T) {
	list := NewEntryList(nil)

	require.NotNil(t, list)
	assert.NotNil(t, list.styles)
}

func TestEntryList_SetEntries(t *testing.T) {
	list := NewEntryList(nil)
	list.SetEntries(sampleEntries())
	list.SetSelected(2)

	list.SetEntries(sampleEntries())

	assert.Equal(t, 3, list.Count())
	assert.False(t, list.IsEmpty())
	assert.Equal(t, 0, list.Selected())
	assert.Equal(t, sampleEntries(), list.Entries())
}

func TestEntryList_Navigation(t *testing.T) {
	list := NewEntryList(nil)
	list.SetEntries(sampleEntries())

	list.MoveUp()
	assert.Equal(t, 0, list.Selected())

	list.Update(tea.KeyMsg{Type: tea.KeyDown})
	list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 2, list.Selected())

	list.MoveDown()
	assert.Equal(t, 2, list.Selected())
	assert.Equal(t, "3", list.SelectedEntry().ID)

	list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, list.Selected())
}

func TestEntryList_SetSelected_OutOfRange(t *testing.T) {
	list := NewEntryList(nil)
	list.SetEntries(sampleEntries())

	list.SetSelected(10)
	assert.Equal(t, 0, list.Selected())

	list.SetSelected(-1)
	assert.Equal(t, 0, list.Selected())
}

func TestEntryList_View(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		list := NewEntryList(nil)

		assert.Contains(t, list.View(), "No documents yet")
	})

	t.Run("with entries", func(t *testing.T) {
		list := NewEntryList(nil)
		list.SetDimensions(100, 20)
		list.SetEntries(sampleEntries())

		view := list.View()

		assert.Contains(t, view, "Corpus (3)")
		assert.Contains(t, view, "tax-guide.pdf")
		assert.Contains(t, view, "[pdf]")
		assert.Contains(t, view, "稅務")
		assert.Contains(t, view, "#2024")
		assert.Contains(t, view, "2024-03-15 10:30:00")
		assert.Contains(t, view, "Channel")
	})

	t.Run("scrolls to keep selection visible", func(t *testing.T) {
		list := NewEntryList(nil)
		list.SetDimensions(100, 4)
		list.SetEntries(sampleEntries())
		list.SetSelected(2)

		view := list.View()

		assert.Contains(t, view, "Insurance explained")
		assert.NotContains(t, view, "tax-guide.pdf")
	})
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		n        int
		expected string
	}{
		{"short", "abc", 10, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"long", "abcdefghij", 8, "abcde..."},
		{"multibyte", "稅務規劃指南全集", 5, "稅務..."},
		{"tiny limit", "abcdef", 2, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truncate(tt.input, tt.n))
		})
	}
}
