package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Ticket mirrors the admin API's ticket representation.
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

// Stats summarizes server-side totals.
type Stats struct {
	Sessions    int `json:"sessions"`
	Messages    int `json:"messages"`
	Tickets     int `json:"tickets"`
	OpenTickets int `json:"open_tickets"`
}

// TicketUpdate is a partial update; nil fields are left untouched.
type TicketUpdate struct {
	Status    *string `json:"status,omitempty"`
	AdminNote *string `json:"admin_note,omitempty"`
}

// TrackingID formats the user-facing ticket number.
func TrackingID(id int64) string {
	return fmt.Sprintf("TCK-%d", id)
}

// Client talks to the Basic-Auth admin API.
type Client struct {
	baseURL  string
	user     string
	password string
	http     *http.Client
}

type Options struct {
	BaseURL  string
	User     string
	Password string
	Timeout  time.Duration
}

func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("missing server url")
	}
	if strings.TrimSpace(opts.Password) == "" {
		return nil, errors.New("missing admin password")
	}
	user := strings.TrimSpace(opts.User)
	if user == "" {
		user = "admin"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:  base,
		user:     user,
		password: opts.Password,
		http:     &http.Client{Timeout: timeout},
	}, nil
}

// ListTickets returns tickets newest first, optionally filtered by status.
func (c *Client) ListTickets(ctx context.Context, statusFilter string) ([]Ticket, error) {
	endpoint := c.baseURL + "/api/admin/tickets"
	if statusFilter != "" {
		endpoint += "?status=" + url.QueryEscape(statusFilter)
	}
	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var tickets []Ticket
	if err := json.Unmarshal(body, &tickets); err != nil {
		return nil, fmt.Errorf("decode tickets: %w", err)
	}
	return tickets, nil
}

// UpdateTicket applies a partial update and returns the resulting ticket.
func (c *Client) UpdateTicket(ctx context.Context, id int64, update TicketUpdate) (Ticket, error) {
	payload, err := json.Marshal(update)
	if err != nil {
		return Ticket{}, err
	}
	endpoint := fmt.Sprintf("%s/api/admin/tickets/%d", c.baseURL, id)
	body, err := c.do(ctx, http.MethodPatch, endpoint, payload)
	if err != nil {
		return Ticket{}, err
	}
	var ticket Ticket
	if err := json.Unmarshal(body, &ticket); err != nil {
		return Ticket{}, fmt.Errorf("decode ticket: %w", err)
	}
	return ticket, nil
}

// Stats fetches server totals.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	body, err := c.do(ctx, http.MethodGet, c.baseURL+"/api/admin/stats", nil)
	if err != nil {
		return Stats{}, err
	}
	var stats Stats
	if err := json.Unmarshal(body, &stats); err != nil {
		return Stats{}, fmt.Errorf("decode stats: %w", err)
	}
	return stats, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.user, c.password)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, errors.New("invalid admin credentials")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http_%d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
