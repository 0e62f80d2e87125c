package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListTickets_SendsBasicAuthAndStatusFilter(t *testing.T) {
	var gotUser, gotPass string
	var gotStatus string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		gotStatus = r.URL.Query().Get("status")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":2,"session_id":"s1","status":"open"},{"id":1,"session_id":"s1","status":"resolved"}]`))
	}))
	defer server.Close()

	client, err := New(Options{BaseURL: server.URL, User: "admin", Password: "secret"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tickets, err := client.ListTickets(context.Background(), "open")
	if err != nil {
		t.Fatalf("ListTickets: %v", err)
	}
	if gotUser != "admin" || gotPass != "secret" {
		t.Fatalf("basic auth = %q/%q", gotUser, gotPass)
	}
	if gotStatus != "open" {
		t.Fatalf("status filter = %q, want open", gotStatus)
	}
	if len(tickets) != 2 || tickets[0].ID != 2 {
		t.Fatalf("unexpected tickets: %+v", tickets)
	}
}

func TestUpdateTicket_SendsOnlyProvidedFields(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":4,"session_id":"s1","status":"resolved"}`))
	}))
	defer server.Close()

	client, err := New(Options{BaseURL: server.URL, Password: "secret"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	status := "resolved"
	ticket, err := client.UpdateTicket(context.Background(), 4, TicketUpdate{Status: &status})
	if err != nil {
		t.Fatalf("UpdateTicket: %v", err)
	}
	if ticket.ID != 4 || ticket.Status != "resolved" {
		t.Fatalf("unexpected ticket: %+v", ticket)
	}
	if _, ok := body["admin_note"]; ok {
		t.Fatalf("admin_note should be omitted, body = %v", body)
	}
	if body["status"] != "resolved" {
		t.Fatalf("status in body = %v", body["status"])
	}
}

func TestUnauthorizedMapsToFriendlyError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := New(Options{BaseURL: server.URL, Password: "wrong"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Stats(context.Background()); err == nil || err.Error() != "invalid admin credentials" {
		t.Fatalf("err = %v, want invalid admin credentials", err)
	}
}

func TestStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sessions":3,"messages":12,"tickets":2,"open_tickets":1}`))
	}))
	defer server.Close()

	client, err := New(Options{BaseURL: server.URL, Password: "secret"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	stats, err := client.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Messages != 12 || stats.OpenTickets != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestNewValidatesInputs(t *testing.T) {
	if _, err := New(Options{Password: "x"}); err == nil {
		t.Fatal("expected error for missing url")
	}
	if _, err := New(Options{BaseURL: "http://localhost"}); err == nil {
		t.Fatal("expected error for missing password")
	}
	client, err := New(Options{BaseURL: "http://localhost/", Password: "x"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client.user != "admin" {
		t.Fatalf("default user = %q, want admin", client.user)
	}
	if client.baseURL != "http://localhost" {
		t.Fatalf("baseURL = %q, trailing slash should be trimmed", client.baseURL)
	}
}
