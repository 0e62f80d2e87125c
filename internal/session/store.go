package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Record is the persisted session identity. The id is opaque to the client
// and scopes every server query to one conversation.
type Record struct {
	ID      string    `json:"id"`
	Created time.Time `json:"created"`
}

// Store persists the session id across runs. A session is created once, at
// first use, and lives as long as the file does.
type Store struct {
	Path string
}

func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".desk", "session.json"), nil
}

func NewDefault() (*Store, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return &Store{Path: path}, nil
}

// Current returns the stored session id, or empty when none exists yet.
func (s *Store) Current() (string, error) {
	if s == nil || s.Path == "" {
		return "", errors.New("session store path is empty")
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// LoadOrCreate returns the stored session id, minting and persisting a fresh
// UUID when none exists.
func (s *Store) LoadOrCreate() (string, error) {
	id, err := s.Current()
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	return s.Reset()
}

// Reset discards any stored id and mints a new one.
func (s *Store) Reset() (string, error) {
	if s == nil || s.Path == "" {
		return "", errors.New("session store path is empty")
	}
	rec := Record{ID: uuid.NewString(), Created: time.Now()}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return "", err
	}
	return rec.ID, nil
}
