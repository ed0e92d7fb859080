package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quillon/docuchat/internal/core/domain"
	"github.com/quillon/docuchat/internal/core/ports/driven"
)

// answerMsg carries a completed chat turn back into the update loop.
type answerMsg struct {
	result driven.ChatResult
}

// chatErrMsg carries a failed or cancelled chat turn.
type chatErrMsg struct {
	err error
}

// docCountMsg carries the indexed document count for the header.
type docCountMsg struct {
	count int
}

// App is the chat TUI following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the parent context for chat requests.
	ctx context.Context

	// cancelTurn aborts the in-flight generation, if any.
	cancelTurn context.CancelFunc

	// conversation holds the session history rendered in the transcript.
	conversation *domain.ConversationContext

	// chatOpts is passed through to every chat turn.
	chatOpts driven.ChatOptions

	// styles holds the TUI styles.
	styles *Styles

	input    textinput.Model
	viewport viewport.Model

	// thinking is true while a generation is in flight.
	thinking bool

	// status is the one-line footer text.
	status string

	// docCount is the number of ingested documents, -1 until loaded.
	docCount int

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new chat application with the given ports.
func NewApp(ports *Ports, opts driven.ChatOptions) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your documents"
	ti.Focus()
	ti.CharLimit = 0

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		conversation: domain.NewConversationContext("local"),
		chatOpts:     opts,
		styles:       DefaultStyles(),
		input:        ti,
		viewport:     viewport.New(0, 0),
		status:       "Ready. Type a question and press Enter.",
		docCount:     -1,
	}, nil
}

// WithContext sets the parent context for chat requests.
func (a *App) WithContext(ctx context.Context) {
	if ctx != nil {
		a.ctx = ctx
	}
}

// Conversation exposes the session history, mainly for tests.
func (a *App) Conversation() *domain.ConversationContext {
	return a.conversation
}

// Init initialises the model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if a.ports.Ingest != nil {
		cmds = append(cmds, a.docCountCmd())
	}
	return tea.Batch(cmds...)
}

// docCountCmd fetches the ingested document count off the update loop.
func (a *App) docCountCmd() tea.Cmd {
	ctx := a.ctx
	ingest := a.ports.Ingest

	return func() tea.Msg {
		docs, err := ingest.List(ctx)
		if err != nil {
			return docCountMsg{count: -1}
		}
		return docCountMsg{count: len(docs)}
	}
}

// Update handles key, window and chat events.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.ready = true
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		a.viewport.SetContent(a.renderTranscript())
		a.viewport.GotoBottom()
		return a, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			if a.cancelTurn != nil {
				a.cancelTurn()
			}
			return a, tea.Quit

		case tea.KeyEsc:
			if a.thinking && a.cancelTurn != nil {
				a.cancelTurn()
				return a, nil
			}

		case tea.KeyEnter:
			question := strings.TrimSpace(a.input.Value())
			if question == "" || a.thinking {
				return a, nil
			}
			a.input.Reset()
			a.thinking = true
			a.status = "Thinking... (Esc to cancel)"
			return a, a.askCmd(question)
		}

	case answerMsg:
		a.finishTurn()
		a.status = fmt.Sprintf("Answered by %s. Ask a follow-up.", msg.result.Model)
		a.viewport.SetContent(a.renderTranscript())
		a.viewport.GotoBottom()
		return a, nil

	case docCountMsg:
		if msg.count >= 0 {
			a.docCount = msg.count
		}
		return a, nil

	case chatErrMsg:
		a.finishTurn()
		if errors.Is(msg.err, context.Canceled) {
			a.status = "Cancelled."
		} else {
			a.status = a.styles.Error.Render("Error: " + msg.err.Error())
		}
		a.viewport.SetContent(a.renderTranscript())
		a.viewport.GotoBottom()
		return a, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	cmds = append(cmds, cmd)
	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

// askCmd runs one chat turn off the update loop.
func (a *App) askCmd(question string) tea.Cmd {
	ctx, cancel := context.WithCancel(a.ctx)
	a.cancelTurn = cancel

	conv := a.conversation
	opts := a.chatOpts
	chat := a.ports.Chat

	return func() tea.Msg {
		result, err := chat.Query(ctx, conv, question, opts)
		if err != nil {
			return chatErrMsg{err: err}
		}
		return answerMsg{result: result}
	}
}

// finishTurn clears the in-flight state.
func (a *App) finishTurn() {
	if a.cancelTurn != nil {
		a.cancelTurn()
		a.cancelTurn = nil
	}
	a.thinking = false
}

// View renders the chat layout.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	header := a.styles.Title.Render("DocuChat")
	session := a.styles.Muted.Render("session " + a.conversation.SessionID)
	if a.docCount >= 0 {
		session += a.styles.Muted.Render(fmt.Sprintf("  %d documents", a.docCount))
	}
	transcript := a.styles.ChatBox.Render(a.viewport.View())
	input := a.styles.InputBox.Render(a.input.View())
	status := a.styles.Muted.Render(a.status)

	return header + "  " + session + "\n" + transcript + "\n" + input + "\n" + status
}

// resize recomputes the viewport dimensions from the terminal size.
func (a *App) resize() {
	_, chatFrame := a.styles.ChatBox.GetFrameSize()
	_, inputFrame := a.styles.InputBox.GetFrameSize()

	reserved := 2 + inputFrame + 1 + chatFrame // header, input, status
	height := a.height - reserved
	if height < 3 {
		height = 3
	}

	width := a.width - 4
	if width < 20 {
		width = 20
	}

	a.viewport.Width = width
	a.viewport.Height = height
	a.input.Width = width
}

// renderTranscript formats the conversation history for the viewport.
func (a *App) renderTranscript() string {
	if len(a.conversation.Messages) == 0 {
		return a.styles.Muted.Render("No messages yet.")
	}

	var b strings.Builder
	for i, msg := range a.conversation.Messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch msg.Role {
		case domain.RoleAssistant:
			b.WriteString(a.styles.AssistantLabel.Render("assistant"))
		default:
			b.WriteString(a.styles.UserLabel.Render(string(msg.Role)))
		}
		b.WriteString("\n")
		b.WriteString(msg.Content)
	}
	return b.String()
}
