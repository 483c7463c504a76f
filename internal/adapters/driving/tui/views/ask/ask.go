// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragdesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driving"
)

// mode is the interaction state of the view.
type mode int

const (
	modeInput mode = iota
	modeThinking
	modeAnswered
)

// View represents the ask view with question input, answer pane,
// sources list and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.TextInput
	spinner   spinner.Model
	answer    viewport.Model
	sources   *list.HitList
	statusbar *status.Bar

	answerService driving.AnswerService
	ctx           context.Context

	width       int
	height      int
	ready       bool
	err         error
	mode        mode
	question    string
	last        *domain.Answer
	showSources bool
}

// NewView creates a new ask view.
func NewView(s *styles.Styles, km *keymap.KeyMap, answerService driving.AnswerService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = s.Spinner

	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewQuestionInput(s),
		spinner:       sp,
		answer:        viewport.New(80, 10),
		sources:       list.NewHitList(s),
		statusbar:     status.NewBar(s, km),
		answerService: answerService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
		mode:          modeInput,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case spinner.TickMsg:
		if v.mode != modeThinking {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.AnswerReady:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.mode = modeInput
		v.input.Focus()
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	if v.mode == modeInput {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	switch v.mode {
	case modeThinking:
		// The completion is in flight; only esc is honoured.
		return v, nil

	case modeInput:
		if msg.Type == tea.KeyEnter {
			return v.submit()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd

	case modeAnswered:
		return v.handleAnsweredKey(msg)
	}
	return v, nil
}

// handleAnsweredKey handles keys while an answer is on screen.
func (v *View) handleAnsweredKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "n":
		v.Reset()
		return v, v.input.Focus()
	case "s":
		v.showSources = !v.showSources
		v.layout()
		return v, nil
	}

	if v.showSources {
		v.sources, _ = v.sources.Update(msg)
		return v, nil
	}

	var cmd tea.Cmd
	v.answer, cmd = v.answer.Update(msg)
	return v, cmd
}

// submit starts answering the current question.
func (v *View) submit() (*View, tea.Cmd) {
	question := strings.TrimSpace(v.input.Value())
	if question == "" {
		return v, nil
	}

	v.question = question
	v.err = nil
	v.mode = modeThinking
	v.input.Blur()
	v.statusbar.SetMessage("")
	v.statusbar.SetState(status.StateThinking)

	return v, tea.Batch(v.spinner.Tick, v.ask(question))
}

// ask runs the question through the answer service off the UI goroutine.
func (v *View) ask(question string) tea.Cmd {
	svc := v.answerService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoAnswerService}
		}
		return messages.AnswerReady{Question: question, Answer: svc.Ask(ctx, question)}
	}
}

// handleAnswer displays a completed answer.
func (v *View) handleAnswer(msg messages.AnswerReady) {
	answer := msg.Answer
	v.last = &answer
	v.question = msg.Question
	v.err = nil
	v.mode = modeAnswered
	v.showSources = false

	v.sources.SetHits(answer.Hits)
	v.statusbar.SetMessage("")
	v.statusbar.SetAnswer(len(answer.Hits), answer.Fallback)

	v.answer.SetContent(v.renderAnswer())
	v.answer.GotoTop()
	v.layout()
}

// renderAnswer wraps the answer text to the view width.
func (v *View) renderAnswer() string {
	if v.last == nil {
		return ""
	}
	style := v.styles.Answer
	if v.last.Fallback {
		style = v.styles.Fallback
	}
	return style.Width(max(v.width-4, 20)).Render(v.last.Text)
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("ragdesk"), "")

	switch v.mode {
	case modeInput:
		sections = append(sections, v.input.View())
	case modeThinking:
		sections = append(sections,
			v.styles.Subtitle.Render(v.question),
			"",
			v.spinner.View()+" "+v.styles.Muted.Render("Thinking..."),
		)
	case modeAnswered:
		sections = append(sections, v.styles.Subtitle.Render(v.question), "", v.answer.View())
		if v.showSources {
			sections = append(sections, "", v.sources.View())
		}
	}

	if v.err != nil {
		sections = append(sections, "", v.styles.Error.Render("Error: "+v.err.Error()))
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.layout()
}

// layout splits the body between the answer pane and the sources list.
func (v *View) layout() {
	// Title, question and status bar with their spacing
	body := max(v.height-8, 3)

	answerHeight := body
	if v.showSources {
		answerHeight = max(body/2, 3)
		v.sources.SetDimensions(v.width, body-answerHeight)
	}

	v.answer.Width = v.width
	v.answer.Height = answerHeight
	if v.last != nil {
		v.answer.SetContent(v.renderAnswer())
	}
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Question returns the question being answered, or the current input.
func (v *View) Question() string {
	if v.mode == modeInput {
		return v.input.Value()
	}
	return v.question
}

// SetQuestion sets the question input.
func (v *View) SetQuestion(question string) {
	v.input.SetValue(question)
}

// Answer returns the last answer, or nil before the first one.
func (v *View) Answer() *domain.Answer {
	return v.last
}

// Thinking reports whether a question is being answered.
func (v *View) Thinking() bool {
	return v.mode == modeThinking
}

// InputFocused returns whether the question input has focus.
func (v *View) InputFocused() bool {
	return v.mode == modeInput
}

// SourcesVisible reports whether the sources list is shown.
func (v *View) SourcesVisible() bool {
	return v.showSources
}

// Sources returns the hits behind the last answer.
func (v *View) Sources() []domain.RetrievalHit {
	return v.sources.Hits()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// ClearError clears the current error.
func (v *View) ClearError() {
	v.err = nil
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
}

// Reset returns the view to an empty question input.
func (v *View) Reset() {
	v.mode = modeInput
	v.question = ""
	v.last = nil
	v.showSources = false
	v.err = nil
	v.input.Reset()
	v.input.Focus()
	v.sources.SetHits(nil)
	v.answer.SetContent("")
	v.statusbar.Clear()
	v.layout()
}
