// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// linesPerEntry is the rendered height of one entry.
const linesPerEntry = 2

// EntryList displays corpus entries in a navigable list.
type EntryList struct {
	entries  []domain.CorpusEntry
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewEntryList creates a new entry list component.
func NewEntryList(s *styles.Styles) *EntryList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &EntryList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the entry list.
func (r *EntryList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *EntryList) Update(msg tea.Msg) (*EntryList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the entry list.
func (r *EntryList) View() string {
	if len(r.entries) == 0 {
		return r.styles.Muted.Render("No documents yet. Add some with 'docqa ingest'.")
	}

	header := r.styles.Subtitle.Render(fmt.Sprintf("Corpus (%d)", len(r.entries)))
	lines := []string{header, ""}

	visibleCount := (r.height - 2) / linesPerEntry
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := min(start+visibleCount, len(r.entries))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderEntry(i, &r.entries[i]))
	}

	return strings.Join(lines, "\n")
}

// renderEntry formats a single entry: name and type, then classification.
func (r *EntryList) renderEntry(index int, entry *domain.CorpusEntry) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	name := Truncate(entry.Name, max(r.width-20, 10))
	kind := "[" + entry.Format + "]"

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(indicator+name) + " " + r.styles.Muted.Render(kind)
	} else {
		titleLine = r.styles.Normal.Render(indicator+name) + " " + r.styles.Muted.Render(kind)
	}

	details := []string{entry.AddedAt.Format(domain.MetaDateLayout)}
	if entry.Category != "" {
		details = append(details, entry.Category)
	}
	if len(entry.Tags) > 0 {
		details = append(details, "#"+strings.Join(entry.Tags, " #"))
	}
	if entry.Author != "" {
		details = append(details, entry.Author)
	}
	detailLine := r.styles.Muted.Render("    " + Truncate(strings.Join(details, "  "), max(r.width-6, 20)))

	return titleLine + "\n" + detailLine
}

// SetEntries replaces the listed entries and resets the selection.
func (r *EntryList) SetEntries(entries []domain.CorpusEntry) {
	r.entries = entries
	r.selected = 0
}

// Entries returns the listed entries.
func (r *EntryList) Entries() []domain.CorpusEntry {
	return r.entries
}

// Selected returns the index of the selected entry.
func (r *EntryList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *EntryList) SetSelected(index int) {
	if index >= 0 && index < len(r.entries) {
		r.selected = index
	}
}

// SelectedEntry returns the currently selected entry, or nil if none.
func (r *EntryList) SelectedEntry() *domain.CorpusEntry {
	if r.selected < 0 || r.selected >= len(r.entries) {
		return nil
	}
	return &r.entries[r.selected]
}

// MoveUp moves selection up.
func (r *EntryList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *EntryList) MoveDown() {
	if r.selected < len(r.entries)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *EntryList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of entries.
func (r *EntryList) Count() int {
	return len(r.entries)
}

// IsEmpty returns whether the list is empty.
func (r *EntryList) IsEmpty() bool {
	return len(r.entries) == 0
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
