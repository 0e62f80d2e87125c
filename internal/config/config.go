package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config is the only persisted config file schema.
type Config struct {
	URL                string `toml:"url"`
	AdminUser          string `toml:"admin_user"`
	AdminPassword      string `toml:"admin_password"`
	PollIntervalMS     int    `toml:"poll_interval_ms"`
	RequestTimeoutSecs int    `toml:"request_timeout_secs"`
	Source             string `toml:"-"`
}

func Default() Config {
	return Config{
		URL:                "http://127.0.0.1:8080",
		AdminUser:          "admin",
		PollIntervalMS:     2500,
		RequestTimeoutSecs: 30,
	}
}

// PollInterval returns the polling period, falling back to the default when
// the configured value is not positive.
func (c Config) PollInterval() time.Duration {
	if c.PollIntervalMS <= 0 {
		return 2500 * time.Millisecond
	}
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// RequestTimeout returns the per-request HTTP timeout.
func (c Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".desk", "config.toml")
}

func Load(path string) (Config, error) {
	// A .env next to the binary mirrors the server's dotenv setup; missing
	// files are fine.
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errors.New("config path is empty and $HOME is not set")
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg), nil
		}
		return cfg, err
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, err
	}
	return applyEnv(cfg), nil
}

// Save writes the config back to disk; it holds admin credentials, so it is
// created user-readable only.
func Save(path string, cfg Config) error {
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return errors.New("config path is empty and $HOME is not set")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func applyEnv(cfg Config) Config {
	if env := strings.TrimSpace(os.Getenv("DESK_URL")); env != "" {
		cfg.URL = env
	}
	if env := strings.TrimSpace(os.Getenv("DESK_ADMIN_USER")); env != "" {
		cfg.AdminUser = env
	}
	if env := strings.TrimSpace(os.Getenv("DESK_ADMIN_PASSWORD")); env != "" {
		cfg.AdminPassword = env
	}
	if env := strings.TrimSpace(os.Getenv("DESK_POLL_INTERVAL_MS")); env != "" {
		if v, err := strconv.Atoi(env); err == nil && v > 0 {
			cfg.PollIntervalMS = v
		}
	}
	return cfg
}
