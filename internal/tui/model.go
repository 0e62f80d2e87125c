package tui

import (
	"context"
	"strings"
	"time"

	"desk-cli/internal/chat"
	"desk-cli/internal/history"
	"desk-cli/internal/logger"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Gateway is the submit side of the sync coordinator.
type Gateway interface {
	Submit(ctx context.Context, text string) error
}

type Options struct {
	Gateway      Gateway
	Renderer     *Renderer
	ServerURL    string
	SessionID    string
	History      *history.Store
	QuickReplies []string
}

type noteExpiredMsg struct{}

type Model struct {
	input     textarea.Model
	viewport  viewport.Model
	spin      spinner.Model
	bubbles   []bubble
	hist      inputHistory
	palette   quickReplyPalette
	gateway   Gateway
	renderer  *Renderer
	histStore *history.Store
	serverURL string
	sessionID string
	composing bool
	note      string
	width     int
	height    int
	log       *logger.LogEntry
}

func New(opts Options) *Model {
	ti := textarea.New()
	ti.Placeholder = "Ask the student desk anything…"
	ti.Prompt = "› "
	ti.CharLimit = 0
	ti.SetWidth(90)
	ti.SetHeight(1)
	ti.ShowLineNumbers = false
	ti.Focus()

	vp := viewport.New(90, 16)
	vp.SetContent("Connecting to the student desk…\n")

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	m := &Model{
		input:     ti,
		viewport:  vp,
		spin:      spin,
		palette:   newQuickReplyPalette(opts.QuickReplies),
		gateway:   opts.Gateway,
		renderer:  opts.Renderer,
		histStore: opts.History,
		serverURL: opts.ServerURL,
		sessionID: opts.SessionID,
		width:     90,
		height:    24,
		log:       logger.Named("tui"),
	}
	if opts.History != nil {
		if texts, err := opts.History.Texts(); err == nil {
			m.hist.Seed(texts)
		}
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick, textarea.Blink}
	if m.renderer != nil {
		cmds = append(cmds, m.renderer.Wait())
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m.finish(cmds...)
	case serverBubbleMsg:
		m.bubbles = append(m.bubbles, bubbleFromMessage(msg.Message))
		m.refreshTranscript()
		cmds = append(cmds, m.renderer.Wait())
		return m.finish(cmds...)
	case localBubbleMsg:
		m.bubbles = append(m.bubbles, bubble{role: msg.Role, text: msg.Text, ts: msg.TS})
		m.refreshTranscript()
		cmds = append(cmds, m.renderer.Wait())
		return m.finish(cmds...)
	case composingMsg:
		m.composing = msg.Visible
		cmds = append(cmds, m.renderer.Wait())
		if m.composing {
			cmds = append(cmds, m.spin.Tick)
		}
		return m.finish(cmds...)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		if m.composing {
			cmds = append(cmds, cmd)
		}
		return m.finish(cmds...)
	case noteExpiredMsg:
		m.note = ""
		return m.finish(cmds...)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m.finish(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.palette.open {
		switch msg.String() {
		case "esc", "ctrl+r":
			m.palette.Close()
		case "enter":
			if text, ok := m.palette.Selected(); ok {
				m.input.SetValue(text)
				m.input.CursorEnd()
			}
			m.palette.Close()
		case "up":
			m.palette.MoveUp()
		case "down":
			m.palette.MoveDown()
		case "backspace":
			if q := m.palette.query; q != "" {
				m.palette.SetQuery(q[:len(q)-1])
			}
		default:
			switch msg.Type {
			case tea.KeyRunes:
				m.palette.SetQuery(m.palette.query + string(msg.Runes))
			case tea.KeySpace:
				m.palette.SetQuery(m.palette.query + " ")
			}
		}
		return m.finish(cmds...)
	}

	switch msg.String() {
	case "ctrl+c", "esc":
		return m.finish(tea.Quit)
	case "enter":
		cmds = append(cmds, m.submit())
		return m.finish(cmds...)
	case "up":
		if text, ok := m.hist.Prev(m.input.Value()); ok {
			m.input.SetValue(text)
			m.input.CursorEnd()
		}
		return m.finish(cmds...)
	case "down":
		if text, ok := m.hist.Next(); ok {
			m.input.SetValue(text)
			m.input.CursorEnd()
		}
		return m.finish(cmds...)
	case "ctrl+r":
		m.palette.Open()
		return m.finish(cmds...)
	case "ctrl+y":
		cmds = append(cmds, m.copyLastReply())
		return m.finish(cmds...)
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
		return m.finish(cmds...)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m.finish(cmds...)
}

func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}
	if err := m.gateway.Submit(context.Background(), text); err != nil {
		m.log.Warnf("submit failed: %v", err)
		return m.showNote("Could not queue the message. Try again.")
	}
	m.hist.Push(text)
	if m.histStore != nil {
		if err := m.histStore.Append(m.sessionID, text); err != nil {
			m.log.Warnf("history append failed: %v", err)
		}
	}
	m.input.Reset()
	return nil
}

func (m *Model) copyLastReply() tea.Cmd {
	for i := len(m.bubbles) - 1; i >= 0; i-- {
		if m.bubbles[i].role != chat.RoleBot {
			continue
		}
		if err := clipboard.WriteAll(m.bubbles[i].text); err != nil {
			m.log.Warnf("clipboard write failed: %v", err)
			return m.showNote("Clipboard unavailable.")
		}
		return m.showNote("Last reply copied.")
	}
	return m.showNote("Nothing to copy yet.")
}

func (m *Model) showNote(text string) tea.Cmd {
	m.note = text
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return noteExpiredMsg{}
	})
}

func (m *Model) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width = width
	m.height = height
	m.input.SetWidth(width - 2)
	// header, composing line, input, help line
	vpHeight := height - 4
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight
	m.refreshTranscript()
}

func (m *Model) refreshTranscript() {
	if len(m.bubbles) == 0 {
		return
	}
	atBottom := m.viewport.AtBottom()
	parts := make([]string, 0, len(m.bubbles))
	for _, b := range m.bubbles {
		parts = append(parts, b.render(m.viewport.Width-2))
	}
	m.viewport.SetContent(strings.Join(parts, "\n\n"))
	if atBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) composingLine() string {
	if !m.composing {
		return ""
	}
	return m.spin.View() + composingStyle.Render("Desk is typing…")
}

func (m *Model) statusLine() string {
	if m.note != "" {
		return noteStyle.Render(m.note)
	}
	return helpStyle.Render("enter send · ↑↓ history · ctrl+r quick replies · ctrl+y copy reply · esc quit")
}

func (m *Model) View() string {
	if m.palette.open {
		return lipgloss.JoinVertical(lipgloss.Left,
			headerLine(m.serverURL, m.sessionID, m.width),
			m.palette.View(m.width),
			m.input.View(),
			m.statusLine(),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		headerLine(m.serverURL, m.sessionID, m.width),
		m.viewport.View(),
		m.composingLine(),
		m.input.View(),
		m.statusLine(),
	)
}

func (m *Model) finish(cmds ...tea.Cmd) (tea.Model, tea.Cmd) {
	filtered := cmds[:0]
	for _, cmd := range cmds {
		if cmd != nil {
			filtered = append(filtered, cmd)
		}
	}
	if len(filtered) == 0 {
		return m, nil
	}
	return m, tea.Batch(filtered...)
}
