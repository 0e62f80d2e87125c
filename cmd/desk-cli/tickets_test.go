package main

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"desk-cli/internal/admin"
)

func ticketRoot(t *testing.T) rootArgs {
	t.Helper()
	root, _ := newTestEnv(t)
	root.overrides = append(root.overrides, "admin_password=secret")
	return root
}

func TestRunTickets_ListAfterEscalation(t *testing.T) {
	root := ticketRoot(t)

	// Open a ticket first via the chat flow.
	if err := runExec(root, []string{"-session", "sess-t", "xyzzy gibberish"}, io.Discard); err != nil {
		t.Fatalf("runExec: %v", err)
	}

	var out bytes.Buffer
	if err := runTickets(root, []string{"list"}, &out); err != nil {
		t.Fatalf("runTickets list: %v", err)
	}
	if !strings.Contains(out.String(), "TCK-1") || !strings.Contains(out.String(), "open") {
		t.Fatalf("list output = %q", out.String())
	}

	out.Reset()
	if err := runTickets(root, []string{"update", "-status", "resolved", "1"}, &out); err != nil {
		t.Fatalf("runTickets update: %v", err)
	}
	if !strings.Contains(out.String(), "status=resolved") {
		t.Fatalf("update output = %q", out.String())
	}

	out.Reset()
	if err := runTickets(root, []string{"stats"}, &out); err != nil {
		t.Fatalf("runTickets stats: %v", err)
	}
	if !strings.Contains(out.String(), "tickets=1 open=0") {
		t.Fatalf("stats output = %q", out.String())
	}
}

func TestPrintTickets_TruncatesLongTextOnRuneBoundaries(t *testing.T) {
	long := strings.Repeat("öğrenci staj ", 10)
	tickets := []admin.Ticket{{
		ID:                7,
		OriginalText:      long,
		PredictedCategory: "Academic",
		Status:            "open",
		CreatedAt:         time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}}

	var out bytes.Buffer
	if err := printTickets(&out, tickets); err != nil {
		t.Fatalf("printTickets: %v", err)
	}
	got := out.String()
	if !utf8.ValidString(got) {
		t.Fatalf("output is not valid UTF-8: %q", got)
	}
	if !strings.Contains(got, "…") {
		t.Fatalf("long text not truncated: %q", got)
	}
	if strings.Contains(got, long) {
		t.Fatalf("expected truncated text, got full text: %q", got)
	}
}

func TestRunTickets_NoCredentials(t *testing.T) {
	root, _ := newTestEnv(t)

	err := runTickets(root, []string{"list"}, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "no admin credentials") {
		t.Fatalf("err = %v, want missing credentials", err)
	}
}

func TestRunTickets_UpdateValidation(t *testing.T) {
	root := ticketRoot(t)

	if err := runTickets(root, []string{"update", "1"}, io.Discard); err == nil {
		t.Fatal("expected error when neither -status nor -note is given")
	}
	if err := runTickets(root, []string{"update", "-status", "resolved", "abc"}, io.Discard); err == nil {
		t.Fatal("expected error for a non-numeric ticket id")
	}
}
