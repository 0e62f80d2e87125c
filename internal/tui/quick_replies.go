package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// defaultQuickReplies seeds the ctrl+r palette with common helpdesk
// questions.
var defaultQuickReplies = []string{
	"How do I reset my password?",
	"I cannot log in to the student portal.",
	"When are tuition payments due?",
	"How can I get an enrollment certificate?",
	"How do I apply for a scholarship?",
	"The campus wifi is not working.",
	"How do I register for courses?",
	"Where can I see my exam results?",
}

// quickReplyPalette is the fuzzy-filtered overlay opened with ctrl+r.
type quickReplyPalette struct {
	choices []string
	query   string
	matches fuzzy.Matches
	cursor  int
	open    bool
}

func newQuickReplyPalette(choices []string) quickReplyPalette {
	if len(choices) == 0 {
		choices = defaultQuickReplies
	}
	return quickReplyPalette{choices: choices}
}

func (p *quickReplyPalette) Open() {
	p.open = true
	p.query = ""
	p.cursor = 0
	p.refilter()
}

func (p *quickReplyPalette) Close() {
	p.open = false
}

func (p *quickReplyPalette) SetQuery(query string) {
	p.query = query
	p.cursor = 0
	p.refilter()
}

func (p *quickReplyPalette) refilter() {
	if strings.TrimSpace(p.query) == "" {
		p.matches = p.matches[:0]
		for i, choice := range p.choices {
			p.matches = append(p.matches, fuzzy.Match{Str: choice, Index: i})
		}
		return
	}
	p.matches = fuzzy.Find(p.query, p.choices)
}

func (p *quickReplyPalette) MoveUp() {
	if p.cursor > 0 {
		p.cursor--
	}
}

func (p *quickReplyPalette) MoveDown() {
	if p.cursor < len(p.matches)-1 {
		p.cursor++
	}
}

// Selected returns the highlighted reply, or false when nothing matches.
func (p *quickReplyPalette) Selected() (string, bool) {
	if len(p.matches) == 0 || p.cursor >= len(p.matches) {
		return "", false
	}
	return p.matches[p.cursor].Str, true
}

func (p *quickReplyPalette) View(width int) string {
	var sb strings.Builder
	sb.WriteString(paletteTitleStyle.Render("Quick replies"))
	sb.WriteString("  ")
	sb.WriteString(helpStyle.Render("type to filter · enter insert · esc close"))
	sb.WriteString("\n")
	if p.query != "" {
		sb.WriteString("› " + p.query + "\n")
	}
	if len(p.matches) == 0 {
		sb.WriteString(helpStyle.Render("(no matches)"))
		return sb.String()
	}
	for i, match := range p.matches {
		line := highlightMatch(match)
		if i == p.cursor {
			line = paletteSelectedStyle.Render(" " + match.Str + " ")
		}
		sb.WriteString(line)
		if i < len(p.matches)-1 {
			sb.WriteString("\n")
		}
	}
	return lipgloss.NewStyle().Width(width).Render(sb.String())
}

// highlightMatch bolds the characters the fuzzy query hit.
func highlightMatch(match fuzzy.Match) string {
	if len(match.MatchedIndexes) == 0 {
		return " " + match.Str
	}
	matched := make(map[int]struct{}, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = struct{}{}
	}
	var sb strings.Builder
	sb.WriteString(" ")
	for i, r := range match.Str {
		if _, ok := matched[i]; ok {
			sb.WriteString(paletteMatchStyle.Render(string(r)))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
