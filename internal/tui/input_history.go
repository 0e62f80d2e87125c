package tui

import "strings"

// inputHistory tracks up/down recall in the input box. A cursor equal to
// len(entries) means the user is on the live draft, not browsing.
type inputHistory struct {
	entries []string
	cursor  int
	draft   string
}

// Seed replaces the entries with previously persisted prompts, oldest first.
func (h *inputHistory) Seed(entries []string) {
	h.entries = append([]string(nil), entries...)
	h.cursor = len(h.entries)
	h.draft = ""
}

// Push records a submitted prompt and leaves browsing mode.
func (h *inputHistory) Push(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == text {
		h.cursor = n
		h.draft = ""
		return
	}
	h.entries = append(h.entries, text)
	h.cursor = len(h.entries)
	h.draft = ""
}

func (h *inputHistory) Browsing() bool {
	return h.cursor < len(h.entries)
}

// Prev steps one entry back, stashing the live draft on first use.
func (h *inputHistory) Prev(current string) (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.cursor == len(h.entries) {
		h.draft = current
	}
	if h.cursor > 0 {
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next steps forward, restoring the stashed draft past the newest entry.
func (h *inputHistory) Next() (string, bool) {
	if h.cursor >= len(h.entries) {
		return "", false
	}
	h.cursor++
	if h.cursor == len(h.entries) {
		return h.draft, true
	}
	return h.entries[h.cursor], true
}
