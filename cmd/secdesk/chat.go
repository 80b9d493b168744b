package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/secdesk/secdesk/adapter"
	"github.com/secdesk/secdesk/client"
	"github.com/secdesk/secdesk/models"
	"github.com/secdesk/secdesk/transcript"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

var defaultSystemPrompt = `You are a security operations assistant. You answer questions about
security events and logs using the search tools available to you.

Be concise. If the logs don't support an answer, say so.
`

type ChatCommand struct {
	Config           string `help:"Path to the config file." env:"SECDESK_CONFIG" default:""`
	AgentURL         string `help:"The URL of the agent API." env:"AGENT_URL" default:""`
	AgentAPIKey      string `help:"The API key for the agent API." env:"AGENT_API_KEY" default:""`
	SystemPromptFile string `help:"The system prompt to use." env:"SYSTEM_PROMPT" default:""`
	SessionsDir      string `help:"The directory to save chat transcripts to." env:"SESSIONS_DIR" default:""`
	NoSave           bool   `help:"Do not save the chat transcript on exit." env:"NO_SAVE" default:"false"`
	LogLevel         string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c ChatCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)
	cfg, err := loadConfig(c.Config)
	if err != nil {
		return err
	}

	systemPrompt, err := readFileOrDefault(firstNonEmpty(c.SystemPromptFile, cfg.SystemPromptFile), defaultSystemPrompt)
	if err != nil {
		return fmt.Errorf("failed to read system prompt: %w", err)
	}

	agentURL := firstNonEmpty(c.AgentURL, cfg.AgentURL, defaultAgentURL)
	ac := client.New(agentURL, firstNonEmpty(c.AgentAPIKey, cfg.AgentAPIKey))
	a := adapter.New(log, ac)

	history := []models.Message{
		models.NewTextMessage(models.RoleSystem, systemPrompt),
	}
	startedAt := time.Now()

	p := tea.NewProgram(newModel(ctx, a, history))
	tm, err := p.Run()
	if err != nil {
		return err
	}

	final, ok := tm.(model)
	if !ok || c.NoSave || len(final.history) <= 1 {
		return nil
	}
	sessionsDir := firstNonEmpty(c.SessionsDir, cfg.SessionsDir)
	if sessionsDir == "" {
		if sessionsDir, err = transcript.DefaultDir(); err != nil {
			return err
		}
	}
	session, err := transcript.NewStore(sessionsDir).Save(startedAt, final.history)
	if err != nil {
		return fmt.Errorf("failed to save transcript: %w", err)
	}
	fmt.Printf("Saved transcript to %s\n", session.Path)
	return nil
}

// Dracula color scheme.
var (
	Background  = lipgloss.Color("#282a36")
	CurrentLine = lipgloss.Color("#44475a")
	Comment     = lipgloss.Color("#6272a4")
	Cyan        = lipgloss.Color("#8be9fd")
	Green       = lipgloss.Color("#50fa7b")
	Pink        = lipgloss.Color("#ff79c6")
	Purple      = lipgloss.Color("#bd93f9")
)

var headerStyle = lipgloss.NewStyle().Background(CurrentLine).Foreground(Purple).Bold(true).Margin(10).Padding(1).PaddingTop(0)

var header = `
 _______  _______  _______  ______   _______  _______  ___   _
|       ||       ||       ||      | |       ||       ||   | | |
|  _____||    ___||       ||  _    ||    ___||  _____||   |_| |
| |_____ |   |___ |       || | |   ||   |___ | |_____ |      _|
|_____  ||    ___||      _|| |_|   ||    ___||_____  ||     |_
 _____| ||   |___ |     |_ |       ||   |___  _____| ||    _  |
|_______||_______||_______||______| |_______||_______||___| |_|
`

var waitingStyle = lipgloss.NewStyle().Foreground(Comment).Italic(true).Margin(1)

// replyMsg carries the agent's answer (or its error rendered as a message)
// back into the bubbletea loop.
type replyMsg struct {
	message models.Message
}

type model struct {
	viewport viewport.Model
	textarea textarea.Model
	ctx      context.Context
	adapter  adapter.Adapter

	history []models.Message
	md      *glamour.TermRenderer
	width   int

	// In-flight request state. cancelSend aborts the outstanding call; the
	// aborted turn still comes back as a replyMsg with an error text part.
	waiting    bool
	cancelSend context.CancelFunc
}

func newModel(ctx context.Context, a adapter.Adapter, history []models.Message) model {
	ta := textarea.New()
	ta.Placeholder = "Ask about your security events..."
	ta.Focus()

	ta.Prompt = "┃ "
	ta.CharLimit = 280

	ta.SetHeight(3)

	// Remove cursor line styling
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()

	ta.ShowLineNumbers = false

	vp := viewport.New(80, 20)
	vp.SetContent(headerStyle.Render(header))

	ta.KeyMap.InsertNewline.SetEnabled(false)

	return model{
		ctx:      ctx,
		textarea: ta,
		viewport: vp,
		adapter:  a,
		history:  history,
		md:       newMarkdownRenderer(80),
		width:    80,
	}
}

func newMarkdownRenderer(width int) *glamour.TermRenderer {
	// Explicit style rather than WithAutoStyle, which queries the terminal
	// and races with bubbletea for stdin.
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

func (m model) Init() tea.Cmd {
	return textarea.Blink
}

func (m model) send(ctx context.Context, history []models.Message) tea.Cmd {
	return func() tea.Msg {
		return replyMsg{message: m.adapter.Send(ctx, history)}
	}
}

var roleToStyle = map[models.Role]lipgloss.Style{
	models.RoleSystem:    lipgloss.NewStyle().Padding(1).Margin(1).MarginBottom(0).MaxWidth(90).Background(Background).Foreground(Green),
	models.RoleUser:      lipgloss.NewStyle().Padding(1).Margin(1).MarginBottom(0).Background(Background).Foreground(Pink),
	models.RoleAssistant: lipgloss.NewStyle().Padding(1).Margin(1).MarginBottom(0).Background(Background).Foreground(Cyan),
}

var roleToIcon = map[models.Role]string{
	models.RoleSystem:    "🛡️",
	models.RoleUser:      "🥷",
	models.RoleAssistant: "✨",
}

func (m model) formatMessage(msg models.Message) string {
	text := msg.FlattenText()
	if msg.Role == models.RoleAssistant && m.md != nil {
		if rendered, err := m.md.Render(text); err == nil {
			return strings.TrimRight(rendered, "\n")
		}
	}
	style, ok := roleToStyle[msg.Role]
	if !ok {
		return text
	}
	icon, ok := roleToIcon[msg.Role]
	if !ok {
		icon = "🤷"
	}
	wrapped := wordwrap.String(strings.TrimSpace(icon+" "+text), m.width)
	return style.Render(wrapped)
}

func (m model) renderHistory() string {
	var sb strings.Builder
	for _, msg := range m.history {
		sb.WriteString(m.formatMessage(msg))
		sb.WriteString("\n")
	}
	if m.waiting {
		sb.WriteString(waitingStyle.Render("waiting for the agent, esc cancels..."))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case replyMsg:
		if m.cancelSend != nil {
			m.cancelSend()
			m.cancelSend = nil
		}
		m.waiting = false
		m.history = append(m.history, msg.message)
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.md = newMarkdownRenderer(msg.Width)
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - m.textarea.Height() - 3
		m.textarea.SetWidth(msg.Width)
		if len(m.history) > 1 {
			m.viewport.SetContent(m.renderHistory())
			m.viewport.GotoBottom()
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.cancelSend != nil {
				m.cancelSend()
			}
			return m, tea.Quit
		case "esc":
			if m.waiting && m.cancelSend != nil {
				// Abort the in-flight request. The adapter converts the
				// cancellation into an error message turn.
				m.cancelSend()
				return m, nil
			}
			return m, tea.Quit
		case "enter":
			if m.waiting {
				// One request at a time.
				return m, nil
			}
			v := m.textarea.Value()
			if v == "" {
				// Don't send empty messages.
				return m, nil
			}
			m.textarea.Reset()
			m.history = append(m.history, models.NewTextMessage(models.RoleUser, v))
			m.waiting = true
			ctx, cancel := context.WithCancel(m.ctx)
			m.cancelSend = cancel
			m.viewport.SetContent(m.renderHistory())
			m.viewport.GotoBottom()
			return m, m.send(ctx, m.history)
		default:
			// Send all other keypresses to the textarea.
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(msg)
			return m, cmd
		}

	case cursor.BlinkMsg:
		// Textarea should also process cursor blinks.
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd

	default:
		return m, nil
	}
}

func (m model) View() string {
	return fmt.Sprintf("%s\n\n%s",
		m.viewport.View(),
		m.textarea.View(),
	) + "\n\n"
}
