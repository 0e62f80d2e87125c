package history

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStoreAppendAndTexts(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	path := filepath.Join(tmp, "history.jsonl")
	s := &Store{Path: path}

	if got, err := s.Texts(); err != nil || len(got) != 0 {
		t.Fatalf("Texts on missing file: got=%v err=%v", got, err)
	}

	if err := s.Append("sess-1", "   "); err != nil {
		t.Fatalf("Append whitespace: %v", err)
	}
	if _, err := os.Stat(path); err == nil {
		t.Fatal("whitespace append should not create a file")
	}

	if err := s.Append("sess-1", "one"); err != nil {
		t.Fatalf("Append one: %v", err)
	}
	if err := s.Append("sess-1", "one"); err != nil {
		t.Fatalf("Append one again: %v", err)
	}
	if err := s.Append("sess-1", "two"); err != nil {
		t.Fatalf("Append two: %v", err)
	}

	got, err := s.Texts()
	if err != nil {
		t.Fatalf("Texts: %v", err)
	}
	if want := []string{"one", "two"}; strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("Texts = %v, want %v (consecutive duplicates collapsed)", got, want)
	}
}

func TestTextsSkipsCorruptLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join([]string{
		`{"text":"one","ts":"2026-01-01T00:00:00Z"}`,
		`{not json}`,
		`{"text":"  ","ts":"2026-01-01T00:00:00Z"}`,
		`{"text":"two","session":"sess-2","ts":"2026-01-01T00:00:00Z"}`,
		"",
	}, "\n")), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s := &Store{Path: path}
	got, err := s.Texts()
	if err != nil {
		t.Fatalf("Texts: %v", err)
	}
	if want := "one,two"; strings.Join(got, ",") != want {
		t.Fatalf("Texts = %v, want [one two]", got)
	}
}

func TestRecentNewestFirst(t *testing.T) {
	t.Parallel()

	s := &Store{Path: filepath.Join(t.TempDir(), "history.jsonl")}
	for _, text := range []string{"a", "b", "c"} {
		if err := s.Append("sess-1", text); err != nil {
			t.Fatalf("Append %q: %v", text, err)
		}
	}

	got, err := s.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if want := "c,b"; strings.Join(got, ",") != want {
		t.Fatalf("Recent(2) = %v, want [c b]", got)
	}

	all, err := s.Recent(0)
	if err != nil {
		t.Fatalf("Recent(0): %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Recent(0) = %v, want all three", all)
	}
}

func TestNilStoreErrors(t *testing.T) {
	t.Parallel()

	var s *Store
	if err := s.Append("sess-1", "x"); err == nil {
		t.Fatal("Append on nil store should error")
	}
	if _, err := s.Texts(); err == nil {
		t.Fatal("Texts on nil store should error")
	}
}
