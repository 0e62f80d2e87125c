package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"desk-cli/internal/logger"
)

func silenceRootLogger(t *testing.T) {
	t.Helper()
	root := logger.Root()
	prev := root.Out
	root.SetOutput(io.Discard)
	t.Cleanup(func() {
		root.SetOutput(prev)
	})
}

func TestHistory_QueryParams(t *testing.T) {
	silenceRootLogger(t)

	cases := []struct {
		name      string
		afterID   int64
		wantAfter string
		hasAfter  bool
	}{
		{name: "full history omits after_id", afterID: 0, hasAfter: false},
		{name: "incremental sets after_id", afterID: 42, wantAfter: "42", hasAfter: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotPath string
			var gotQuery map[string][]string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotQuery = r.URL.Query()
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[{"id":1,"role":"user","text":"hi"},{"id":2,"role":"bot","text":"hello"}]`))
			}))
			defer srv.Close()

			c, err := New(Options{BaseURL: srv.URL})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			msgs, err := c.History(context.Background(), "sess-1", tc.afterID)
			if err != nil {
				t.Fatalf("History: %v", err)
			}

			if gotPath != "/api/chat/history" {
				t.Fatalf("path = %q", gotPath)
			}
			if got := gotQuery["session_id"]; len(got) != 1 || got[0] != "sess-1" {
				t.Fatalf("session_id = %v", got)
			}
			after, ok := gotQuery["after_id"]
			if ok != tc.hasAfter {
				t.Fatalf("after_id present = %v, want %v", ok, tc.hasAfter)
			}
			if tc.hasAfter && after[0] != tc.wantAfter {
				t.Fatalf("after_id = %q, want %q", after[0], tc.wantAfter)
			}
			if len(msgs) != 2 || msgs[0].ID != 1 || msgs[1].ID != 2 {
				t.Fatalf("unexpected batch: %+v", msgs)
			}
		})
	}
}

func TestSend_Success(t *testing.T) {
	silenceRootLogger(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat/message" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body["session_id"] != "sess-1" || body["text"] != "help" {
			t.Errorf("unexpected payload: %v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"reply_text":"ok","category":"Technical","confidence":0.91}`))
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	reply, err := c.Send(context.Background(), "sess-1", "help")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply.ReplyText != "ok" || reply.Category != "Technical" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestSend_StatusErrorCarriesDetail(t *testing.T) {
	silenceRootLogger(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"Message must not be empty."}`))
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.Send(context.Background(), "sess-1", "")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Code = %d", se.Code)
	}
	if se.Detail() != "Message must not be empty." {
		t.Fatalf("Detail() = %q", se.Detail())
	}
}

func TestStatusError_DetailFallsBackToStatusText(t *testing.T) {
	se := &StatusError{Code: http.StatusBadGateway, Body: "<html>oops</html>"}
	if se.Detail() != http.StatusText(http.StatusBadGateway) {
		t.Fatalf("Detail() = %q", se.Detail())
	}
}

func TestHistory_TransportFailure(t *testing.T) {
	silenceRootLogger(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c, err := New(Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.History(context.Background(), "sess-1", 0); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestNew_RequiresURL(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("expected error for missing url")
	}
}
