package tui

import (
	"time"

	"desk-cli/internal/chat"

	tea "github.com/charmbracelet/bubbletea"
)

type serverBubbleMsg struct {
	Message chat.Message
}

type localBubbleMsg struct {
	Role chat.Role
	Text string
	TS   time.Time
}

type composingMsg struct {
	Visible bool
}

// Renderer bridges the sync coordinator's render calls into Bubble Tea
// messages. The coordinator runs on its own goroutine; the model re-arms
// Wait after consuming each message.
type Renderer struct {
	ch chan tea.Msg
}

func NewRenderer(buffer int) *Renderer {
	if buffer <= 0 {
		buffer = 256
	}
	return &Renderer{ch: make(chan tea.Msg, buffer)}
}

func (r *Renderer) Render(msg chat.Message) {
	r.ch <- serverBubbleMsg{Message: msg}
}

func (r *Renderer) RenderLocal(role chat.Role, text string) {
	r.ch <- localBubbleMsg{Role: role, Text: text, TS: time.Now()}
}

func (r *Renderer) ShowComposing() {
	r.ch <- composingMsg{Visible: true}
}

func (r *Renderer) HideComposing() {
	r.ch <- composingMsg{Visible: false}
}

// Wait blocks until the coordinator produces the next render event.
func (r *Renderer) Wait() tea.Cmd {
	return func() tea.Msg {
		return <-r.ch
	}
}
