// Package menu provides the start menu of the TUI.
package menu

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
)

// Item is one menu entry. Selecting it either switches view or quits.
type Item struct {
	Label       string
	Description string
	View        messages.ViewType
	Quit        bool
}

// View is the start menu.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	items    []Item
	selected int
	width    int
	height   int
	ready    bool
}

// NewView creates the menu. Nil styles or keymap fall back to defaults.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles: s,
		keymap: km,
		items: []Item{
			{Label: "Chat", Description: "Ask questions with follow-ups", View: messages.ViewChat},
			{Label: "Corpus", Description: "Browse ingested documents and videos", View: messages.ViewCorpus},
			{Label: "Help", Description: "Keyboard shortcuts", View: messages.ViewHelp},
			{Label: "Quit", Description: "Leave docqa", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

// Init implements tea.Model.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update moves the cursor and emits ViewChanged on selection.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keymap.Up):
			v.selected = max(v.selected-1, 0)
		case key.Matches(msg, v.keymap.Down):
			v.selected = min(v.selected+1, len(v.items)-1)
		case key.Matches(msg, v.keymap.Select):
			return v, v.choose(v.items[v.selected])
		case key.Matches(msg, v.keymap.Quit):
			return v, tea.Quit
		}
	}
	return v, nil
}

func (v *View) choose(item Item) tea.Cmd {
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return messages.ViewChanged{View: item.View}
	}
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("docqa"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("Ask questions about your documents and videos"))
	b.WriteString("\n\n")

	for i, item := range v.items {
		cursor, label := "  ", v.styles.Normal.Render(item.Label)
		if i == v.selected {
			cursor, label = "> ", v.styles.Selected.Render(item.Label)
		}
		fmt.Fprintf(&b, "%s%-8s %s\n", cursor, label, v.styles.Muted.Render(item.Description))
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render(v.footer()))
	return b.String()
}

func (v *View) footer() string {
	bindings := []key.Binding{v.keymap.Up, v.keymap.Down, v.keymap.Select, v.keymap.Quit}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, fmt.Sprintf("[%s] %s", h.Key, h.Desc))
	}
	return strings.Join(parts, "  ")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Items returns the menu entries.
func (v *View) Items() []Item {
	return v.items
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}
