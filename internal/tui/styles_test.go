package tui

import (
	"strings"
	"testing"
	"time"

	"desk-cli/internal/chat"
)

func TestBubbleMetaJoinsPresentFields(t *testing.T) {
	t.Parallel()

	conf := 0.72
	b := bubble{category: "Technical", confidence: &conf, ticketID: "TCK-3"}
	meta := b.meta()
	for _, want := range []string{"Technical", "confidence 72%", "TCK-3"} {
		if !strings.Contains(meta, want) {
			t.Fatalf("meta %q missing %q", meta, want)
		}
	}

	if (bubble{}).meta() != "" {
		t.Fatal("bubble without metadata should render no meta line")
	}
}

func TestBubbleFromMessagePrefersServerTimestamp(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	b := bubbleFromMessage(chat.Message{ID: 4, Role: chat.RoleBot, Text: "hi", CreatedAt: &at})
	if !b.ts.Equal(at) {
		t.Fatalf("ts = %v, want server-provided %v", b.ts, at)
	}

	before := time.Now()
	b = bubbleFromMessage(chat.Message{ID: 5, Role: chat.RoleUser, Text: "hi"})
	if b.ts.Before(before) {
		t.Fatalf("ts = %v, want local now when server omits created_at", b.ts)
	}
}

func TestBubbleRenderIncludesTimestampAndText(t *testing.T) {
	t.Parallel()

	b := bubble{
		role: chat.RoleUser,
		text: "hello desk",
		ts:   time.Date(2026, 3, 1, 14, 5, 0, 0, time.Local),
	}
	out := b.render(60)
	if !strings.Contains(out, "14:05") {
		t.Fatalf("render missing HH:MM timestamp: %q", out)
	}
	if !strings.Contains(out, "hello desk") {
		t.Fatalf("render missing text: %q", out)
	}
}

func TestHeaderLineTruncatesOnNarrowTerminals(t *testing.T) {
	t.Parallel()

	line := headerLine("http://127.0.0.1:8080", "0f8fad5b-d9cb-469f-a165-70867728950e", 30)
	if !strings.Contains(line, "…") {
		t.Fatalf("narrow header should be truncated: %q", line)
	}
}
