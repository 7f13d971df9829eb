// Package corpus provides the corpus listing view for the TUI.
package corpus

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// View lists the registered entries together with the index status.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	list      *list.EntryList
	statusbar *status.Bar

	corpus driving.CorpusService
	index  driving.IndexService
	ctx    context.Context

	info     *domain.IndexInfo
	indexErr error
	err      error
	loading  bool

	width  int
	height int
	ready  bool
}

// NewView creates a new corpus view. index may be nil.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	corpus driving.CorpusService,
	index driving.IndexService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetState(status.StateCorpus)

	return &View{
		styles:    s,
		keymap:    km,
		list:      list.NewEntryList(s),
		statusbar: bar,
		corpus:    corpus,
		index:     index,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context used for loading.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the corpus and the index status.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return tea.Batch(v.loadCorpus(), v.loadIndexStatus())
}

func (v *View) loadCorpus() tea.Cmd {
	corpus := v.corpus
	ctx := v.ctx
	return func() tea.Msg {
		if corpus == nil {
			return messages.CorpusLoaded{Err: domain.ErrNotImplemented}
		}
		entries, err := corpus.List(ctx)
		return messages.CorpusLoaded{Entries: entries, Err: err}
	}
}

func (v *View) loadIndexStatus() tea.Cmd {
	index := v.index
	ctx := v.ctx
	return func() tea.Msg {
		if index == nil {
			return messages.IndexStatusLoaded{Err: domain.ErrIndexNotReady}
		}
		info, err := index.Status(ctx)
		return messages.IndexStatusLoaded{Info: info, Err: err}
	}
}

// Update handles messages for the corpus view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.CorpusLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			v.statusbar.SetState(status.StateError)
			v.statusbar.SetMessage(msg.Err.Error())
			return v, nil
		}
		v.err = nil
		v.list.SetEntries(msg.Entries)
		v.statusbar.SetState(status.StateCorpus)
		v.statusbar.SetMessage(fmt.Sprintf("%d entries", len(msg.Entries)))
		return v, nil

	case messages.IndexStatusLoaded:
		v.info = msg.Info
		v.indexErr = msg.Err
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case keymap.Matches(key, v.keymap.Refresh):
		return v, v.Init()
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

// indexLine describes the active index.
func (v *View) indexLine() string {
	switch {
	case v.indexErr != nil && errors.Is(v.indexErr, domain.ErrIndexNotReady):
		return v.styles.Warning.Render("Index not built yet. Run 'docqa index rebuild'.")
	case v.indexErr != nil:
		return v.styles.Error.Render("Index: " + v.indexErr.Error())
	case v.info != nil:
		return v.styles.Muted.Render(fmt.Sprintf("Index: %d chunks, %s on %s, built %s",
			v.info.Records, v.info.Model, v.info.Backend, v.info.BuiltAt.Format(domain.MetaDateLayout)))
	default:
		return v.styles.Muted.Render("Index: loading...")
	}
}

// View renders the corpus view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("docqa") + v.styles.Muted.Render("  corpus"),
		v.indexLine(),
		"",
	}
	switch {
	case v.loading:
		sections = append(sections, v.styles.Muted.Render("Loading..."))
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	default:
		sections = append(sections, v.list.View())
	}
	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.list.SetDimensions(width, height-6)
	v.statusbar.SetWidth(width)
}

// Entries returns the listed entries.
func (v *View) Entries() []domain.CorpusEntry {
	return v.list.Entries()
}

// Selected returns the highlighted entry, or nil.
func (v *View) Selected() *domain.CorpusEntry {
	return v.list.SelectedEntry()
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
