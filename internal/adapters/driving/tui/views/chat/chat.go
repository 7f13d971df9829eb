// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// ClearCommand typed into the input starts a new conversation.
const ClearCommand = "/clear"

// reservedLines is the height taken by the header, input and status bar.
const reservedLines = 8

// exchange is one question and its outcome as shown in the transcript.
type exchange struct {
	question string
	answer   *domain.Answer
	err      error
}

// View is the chat view: a scrollable transcript above a question input.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.ChatInput
	transcript viewport.Model
	spinner    spinner.Model
	statusbar  *status.Bar

	conversation driving.ConversationService
	ctx          context.Context

	exchanges []exchange
	pending   string
	waiting   bool

	width  int
	height int
	ready  bool
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, conversation driving.ConversationService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetState(status.StateChat)

	return &View{
		styles:       s,
		keymap:       km,
		input:        input.NewChatInput(s),
		transcript:   viewport.New(80, 24-reservedLines),
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Spinner)),
		statusbar:    bar,
		conversation: conversation,
		ctx:          context.Background(),
		width:        80,
		height:       24,
	}
}

// WithContext sets the context questions are asked under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.input.Focus())
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case spinner.TickMsg:
		if !v.waiting {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.refresh()
		return v, cmd

	case messages.ErrorOccurred:
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case keymap.Matches(key, v.keymap.Clear):
		v.Clear()
		return v, nil

	case keymap.Matches(key, v.keymap.ScrollUp), keymap.Matches(key, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd

	case keymap.Matches(key, v.keymap.Send):
		return v.submit()
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit sends the current input as a question.
func (v *View) submit() (*View, tea.Cmd) {
	question := strings.TrimSpace(v.input.Value())
	if question == "" || v.waiting {
		return v, nil
	}
	v.input.Reset()

	if question == ClearCommand {
		v.Clear()
		return v, nil
	}
	if v.conversation == nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(ErrNoConversation.Error())
		return v, nil
	}

	v.pending = question
	v.waiting = true
	v.statusbar.SetState(status.StateThinking)
	v.statusbar.SetMessage("")
	v.refresh()

	return v, tea.Batch(v.ask(question), v.spinner.Tick)
}

// ask runs one question against the conversation.
func (v *View) ask(question string) tea.Cmd {
	conversation := v.conversation
	ctx := v.ctx
	return func() tea.Msg {
		answer, err := conversation.Ask(ctx, question)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

// handleAnswer records the outcome of the pending question.
func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.waiting = false
	v.pending = ""
	v.exchanges = append(v.exchanges, exchange{
		question: msg.Question,
		answer:   msg.Answer,
		err:      msg.Err,
	})

	if msg.Err != nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(domain.Kind(msg.Err))
	} else {
		v.statusbar.SetState(status.StateChat)
		v.statusbar.SetMessage("")
	}
	if v.conversation != nil {
		v.statusbar.SetTurns(len(v.conversation.History()) / 2)
	}
	v.refresh()
}

// Clear resets the conversation and the transcript.
func (v *View) Clear() {
	if v.waiting {
		v.statusbar.SetMessage("Wait for the answer before starting over")
		return
	}
	if v.conversation != nil {
		v.conversation.Reset()
	}
	v.exchanges = nil
	v.statusbar.Clear()
	v.statusbar.SetState(status.StateChat)
	v.statusbar.SetMessage("New conversation")
	v.refresh()
}

// refresh re-renders the transcript and scrolls to the latest turn.
func (v *View) refresh() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

// renderTranscript renders every exchange plus the pending question.
func (v *View) renderTranscript() string {
	wrap := lipgloss.NewStyle().Width(max(v.width-2, 20))

	var b strings.Builder
	for _, ex := range v.exchanges {
		b.WriteString(v.renderQuestion(wrap, ex.question))
		switch {
		case ex.err != nil:
			b.WriteString(wrap.Render(v.styles.Error.Render("Error: " + ex.err.Error())))
		case ex.answer != nil:
			b.WriteString(v.renderAnswer(wrap, ex.answer))
		}
		b.WriteString("\n\n")
	}

	if v.waiting {
		b.WriteString(v.renderQuestion(wrap, v.pending))
		b.WriteString(v.spinner.View() + " " + v.styles.Muted.Render("Thinking..."))
	}

	return b.String()
}

func (v *View) renderQuestion(wrap lipgloss.Style, question string) string {
	return wrap.Render(v.styles.UserLabel.Render("You: ")+v.styles.Normal.Render(question)) + "\n"
}

// renderAnswer shows the answer text with its sources block dimmed.
func (v *View) renderAnswer(wrap lipgloss.Style, answer *domain.Answer) string {
	body := answer.Raw
	if body == "" {
		body = answer.Text
	}
	out := wrap.Render(v.styles.AssistantLabel.Render("Assistant: ") + v.styles.Normal.Render(body))

	if sources := strings.TrimSpace(strings.TrimPrefix(answer.Text, answer.Raw)); answer.Raw != "" && sources != "" {
		out += "\n" + v.styles.Sources.Render(sources)
	}
	return out
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("docqa") + v.styles.Muted.Render("  chat"),
		"",
		v.transcript.View(),
		"",
		v.input.View(),
		v.statusbar.View(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.transcript.Width = width
	v.transcript.Height = max(height-reservedLines, 3)
	v.statusbar.SetWidth(width)
	v.refresh()
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Waiting reports whether a question is in flight.
func (v *View) Waiting() bool {
	return v.waiting
}

// Exchanges returns the number of questions shown in the transcript.
func (v *View) Exchanges() int {
	return len(v.exchanges)
}

// Transcript returns the rendered transcript.
func (v *View) Transcript() string {
	return v.renderTranscript()
}

// Input returns the current input value.
func (v *View) Input() string {
	return v.input.Value()
}

// SetInput sets the current input value.
func (v *View) SetInput(value string) {
	v.input.SetValue(value)
}

// Status returns the status bar state.
func (v *View) Status() status.State {
	return v.statusbar.State()
}
