package config

import (
	"strconv"
	"strings"
)

// ApplyKVOverrides applies free-form -o key=value overrides.
func ApplyKVOverrides(cfg Config, overrides []string) Config {
	if len(overrides) == 0 {
		return cfg
	}
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "url":
			cfg.URL = val
		case "admin_user":
			cfg.AdminUser = val
		case "admin_password":
			cfg.AdminPassword = val
		case "poll_interval_ms":
			if v, err := strconv.Atoi(val); err == nil && v > 0 {
				cfg.PollIntervalMS = v
			}
		case "request_timeout_secs":
			if v, err := strconv.Atoi(val); err == nil && v > 0 {
				cfg.RequestTimeoutSecs = v
			}
		}
	}
	return cfg
}
