package auth

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Credentials holds the stored admin login.
type Credentials struct {
	User     string    `json:"user"`
	Password string    `json:"password"`
	Updated  time.Time `json:"updated"`
}

func authPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".desk", "auth.json"), nil
}

// Save persists admin credentials for later ticket commands.
func Save(user, password string) error {
	user = strings.TrimSpace(user)
	if user == "" {
		user = "admin"
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("empty admin password")
	}
	path, err := authPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(Credentials{User: user, Password: password, Updated: time.Now()}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Load returns the stored credentials; both fields are empty when none exist.
func Load() (Credentials, error) {
	path, err := authPath()
	if err != nil {
		return Credentials{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, nil
		}
		return Credentials{}, err
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

// Clear removes any stored credentials.
func Clear() error {
	path, err := authPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
