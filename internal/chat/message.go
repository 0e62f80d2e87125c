package chat

import "time"

// Role identifies who authored a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is the server-authoritative unit of conversation. IDs are assigned
// by the server only and increase monotonically; a zero ID means the message
// is a local echo that has not been confirmed yet.
type Message struct {
	ID         int64      `json:"id"`
	Role       Role       `json:"role"`
	Text       string     `json:"text"`
	Category   string     `json:"category,omitempty"`
	TicketID   string     `json:"ticket_id,omitempty"`
	Confidence *float64   `json:"confidence,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}
