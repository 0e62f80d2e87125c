package server

import (
	"fmt"
	"sync"
	"time"

	"desk-cli/internal/chat"
)

// Ticket is a support request opened when the classifier cannot answer with
// enough confidence.
type Ticket struct {
	ID                int64     `json:"id"`
	SessionID         string    `json:"session_id"`
	OriginalText      string    `json:"original_text"`
	PredictedCategory string    `json:"predicted_category,omitempty"`
	Confidence        *float64  `json:"confidence,omitempty"`
	Status            string    `json:"status"`
	AdminNote         string    `json:"admin_note,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Ticket statuses.
const (
	TicketOpen       = "open"
	TicketInProgress = "in_progress"
	TicketResolved   = "resolved"
)

// ValidTicketStatus reports whether s is one of the known statuses.
func ValidTicketStatus(s string) bool {
	switch s {
	case TicketOpen, TicketInProgress, TicketResolved:
		return true
	}
	return false
}

// Stats summarizes store contents for the admin panel.
type Stats struct {
	Sessions    int `json:"sessions"`
	Messages    int `json:"messages"`
	Tickets     int `json:"tickets"`
	OpenTickets int `json:"open_tickets"`
}

// Store keeps all conversation state in memory. Message ids come from a
// single global counter so they are unique and monotonically increasing
// across sessions.
type Store struct {
	mu            sync.Mutex
	nextMessageID int64
	nextTicketID  int64
	sessions      map[string]time.Time
	messages      map[string][]chat.Message
	tickets       map[int64]*Ticket
	ticketOrder   []int64
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]time.Time),
		messages: make(map[string][]chat.Message),
		tickets:  make(map[int64]*Ticket),
	}
}

// EnsureSession registers the session when it is not known yet.
func (s *Store) EnsureSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		s.sessions[sessionID] = time.Now().UTC()
	}
}

// AppendMessage assigns the next id and timestamp and stores the message.
func (s *Store) AppendMessage(sessionID string, m chat.Message) chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		s.sessions[sessionID] = time.Now().UTC()
	}
	s.nextMessageID++
	m.ID = s.nextMessageID
	now := time.Now().UTC()
	m.CreatedAt = &now
	s.messages[sessionID] = append(s.messages[sessionID], m)
	return m
}

// History returns the session's messages with id > afterID, ascending.
// Messages are appended in id order, so the slice is already sorted.
func (s *Store) History(sessionID string, afterID int64) []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.messages[sessionID]
	out := make([]chat.Message, 0, len(all))
	for _, m := range all {
		if m.ID > afterID {
			out = append(out, m)
		}
	}
	return out
}

// CreateTicket opens a ticket and returns it together with its public
// tracking id (TCK-<n>).
func (s *Store) CreateTicket(sessionID, text, category string, confidence float64) (Ticket, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTicketID++
	now := time.Now().UTC()
	conf := confidence
	t := &Ticket{
		ID:                s.nextTicketID,
		SessionID:         sessionID,
		OriginalText:      text,
		PredictedCategory: category,
		Confidence:        &conf,
		Status:            TicketOpen,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	s.tickets[t.ID] = t
	s.ticketOrder = append(s.ticketOrder, t.ID)
	return *t, TrackingID(t.ID)
}

// TrackingID formats a ticket's public tracking number.
func TrackingID(id int64) string {
	return fmt.Sprintf("TCK-%d", id)
}

// Tickets lists tickets newest first, optionally filtered by status.
func (s *Store) Tickets(statusFilter string) []Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Ticket, 0, len(s.ticketOrder))
	for i := len(s.ticketOrder) - 1; i >= 0; i-- {
		t := s.tickets[s.ticketOrder[i]]
		if statusFilter != "" && t.Status != statusFilter {
			continue
		}
		out = append(out, *t)
	}
	return out
}

// UpdateTicket applies a partial update. It returns the updated ticket and
// whether anything actually changed; ok is false when the id is unknown.
func (s *Store) UpdateTicket(id int64, status *string, note *string) (ticket Ticket, changed bool, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, found := s.tickets[id]
	if !found {
		return Ticket{}, false, false
	}
	if status != nil && *status != t.Status {
		t.Status = *status
		changed = true
	}
	if note != nil && *note != t.AdminNote {
		t.AdminNote = *note
		changed = true
	}
	if changed {
		t.UpdatedAt = time.Now().UTC()
	}
	return *t, changed, true
}

// Stats returns store totals.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	var messages int
	for _, msgs := range s.messages {
		messages += len(msgs)
	}
	var open int
	for _, t := range s.tickets {
		if t.Status == TicketOpen {
			open++
		}
	}
	return Stats{
		Sessions:    len(s.sessions),
		Messages:    messages,
		Tickets:     len(s.tickets),
		OpenTickets: open,
	}
}
