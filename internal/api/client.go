package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"desk-cli/internal/chat"
	"desk-cli/internal/logger"
)

// Client talks to the helpdesk chat API.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.LogEntry
}

type Options struct {
	BaseURL string
	Timeout time.Duration
}

func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("missing server url")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		log:     logger.Named("api"),
	}, nil
}

// StatusError reports a non-success HTTP response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http_%d: %s", e.Code, strings.TrimSpace(e.Body))
}

// Detail extracts the server's human-readable error message, falling back to
// the HTTP status text.
func (e *StatusError) Detail() string {
	var decoded struct {
		Detail string `json:"detail"`
		Err    string `json:"error"`
	}
	if err := json.Unmarshal([]byte(e.Body), &decoded); err == nil {
		if strings.TrimSpace(decoded.Detail) != "" {
			return decoded.Detail
		}
		if strings.TrimSpace(decoded.Err) != "" {
			return decoded.Err
		}
	}
	return http.StatusText(e.Code)
}

// Reply is the server's synchronous answer to a posted message. The ids for
// the stored exchange are retrievable only via a subsequent History call.
type Reply struct {
	ReplyText  string  `json:"reply_text"`
	Category   string  `json:"category,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	TicketID   string  `json:"ticket_id,omitempty"`
}

// History fetches messages for the session in ascending id order. afterID is
// an exclusive lower bound; zero fetches the full history.
func (c *Client) History(ctx context.Context, sessionID string, afterID int64) ([]chat.Message, error) {
	q := url.Values{}
	q.Set("session_id", sessionID)
	if afterID > 0 {
		q.Set("after_id", strconv.FormatInt(afterID, 10))
	}
	endpoint := c.baseURL + "/api/chat/history?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var msgs []chat.Message
	if err := json.Unmarshal(body, &msgs); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return msgs, nil
}

// Send posts the user's text and returns the synchronous bot reply.
func (c *Client) Send(ctx context.Context, sessionID, text string) (Reply, error) {
	payload, err := json.Marshal(map[string]string{
		"session_id": sessionID,
		"text":       text,
	})
	if err != nil {
		return Reply{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat/message", bytes.NewReader(payload))
	if err != nil {
		return Reply{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return Reply{}, err
	}
	var reply Reply
	if err := json.Unmarshal(body, &reply); err != nil {
		return Reply{}, fmt.Errorf("decode reply: %w", err)
	}
	return reply, nil
}

// Categories lists the classifier categories the server knows about.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/chat/categories", nil)
	if err != nil {
		return nil, err
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var out []string
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return out, nil
}

// Health probes the server's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return err
	}
	_, err = c.do(req)
	return err
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.WithFields(logger.Fields{"status": resp.StatusCode, "url": req.URL.Path}).Warn("request failed")
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
