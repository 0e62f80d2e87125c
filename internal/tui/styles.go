package tui

import (
	"fmt"
	"strings"
	"time"

	"desk-cli/internal/chat"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	userLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#04B575"))

	botLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	composingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB454"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	paletteTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#7D56F4"))

	paletteSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#7D56F4"))

	paletteMatchStyle = lipgloss.NewStyle().
				Bold(true).
				Underline(true)
)

// bubble is one rendered transcript line. Locally echoed bubbles have no
// server id and no metadata.
type bubble struct {
	role       chat.Role
	text       string
	ts         time.Time
	category   string
	ticketID   string
	confidence *float64
}

func bubbleFromMessage(msg chat.Message) bubble {
	b := bubble{
		role:       msg.Role,
		text:       msg.Text,
		category:   msg.Category,
		ticketID:   msg.TicketID,
		confidence: msg.Confidence,
		ts:         time.Now(),
	}
	if msg.CreatedAt != nil {
		b.ts = msg.CreatedAt.Local()
	}
	return b
}

func (b bubble) label() string {
	if b.role == chat.RoleUser {
		return userLabelStyle.Render("You")
	}
	return botLabelStyle.Render("Desk")
}

// meta renders the category/confidence/ticket line, empty when the bubble
// carries none of them.
func (b bubble) meta() string {
	parts := make([]string, 0, 3)
	if b.category != "" {
		parts = append(parts, b.category)
	}
	if b.confidence != nil {
		parts = append(parts, fmt.Sprintf("confidence %d%%", int(*b.confidence*100)))
	}
	if b.ticketID != "" {
		parts = append(parts, b.ticketID)
	}
	if len(parts) == 0 {
		return ""
	}
	return metaStyle.Render(strings.Join(parts, " · "))
}

func (b bubble) render(width int) string {
	if width < 20 {
		width = 20
	}
	var sb strings.Builder
	sb.WriteString(b.label())
	sb.WriteString(" ")
	sb.WriteString(timestampStyle.Render(b.ts.Format("15:04")))
	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().Width(width).Render(strings.TrimRight(b.text, "\n")))
	if meta := b.meta(); meta != "" {
		sb.WriteString("\n")
		sb.WriteString(meta)
	}
	return sb.String()
}

// headerLine renders the top bar, truncating the URL when the terminal is
// narrow.
func headerLine(serverURL, sessionID string, width int) string {
	short := sessionID
	if len(short) > 8 {
		short = short[:8]
	}
	title := fmt.Sprintf("Student Desk · %s · session %s", serverURL, short)
	if width > 4 {
		title = runewidth.Truncate(title, width-4, "…")
	}
	return headerStyle.Render(title)
}
