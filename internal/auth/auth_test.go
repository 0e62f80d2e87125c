package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoadClear(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	creds, err := Load()
	if err != nil {
		t.Fatalf("Load before save: %v", err)
	}
	if creds.User != "" || creds.Password != "" {
		t.Fatalf("expected empty credentials, got %+v", creds)
	}

	if err := Save("", "secret"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	creds, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if creds.User != "admin" {
		t.Fatalf("blank user should default to admin, got %q", creds.User)
	}
	if creds.Password != "secret" {
		t.Fatalf("password = %q", creds.Password)
	}

	home, _ := os.UserHomeDir()
	info, err := os.Stat(filepath.Join(home, ".desk", "auth.json"))
	if err != nil {
		t.Fatalf("stat auth file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("auth file perm = %o, want 600", perm)
	}

	if err := Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := Clear(); err != nil {
		t.Fatalf("Clear on missing file: %v", err)
	}
	creds, err = Load()
	if err != nil || creds.Password != "" {
		t.Fatalf("after clear: creds=%+v err=%v", creds, err)
	}
}

func TestSaveRejectsEmptyPassword(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := Save("admin", "   "); err == nil {
		t.Fatal("expected error for blank password")
	}
}
