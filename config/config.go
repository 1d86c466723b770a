// Package config loads user configuration and caregiver-call credentials.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/rafeeqops/rafeeq/notify"
)

// Config holds user-configurable defaults. Credentials are deliberately not
// part of the JSON file; they come from the environment.
type Config struct {
	IntervalSec int    `json:"interval_sec"`
	HistorySize int    `json:"history_size"`
	DataDir     string `json:"data_dir"`
	LedgerPath  string `json:"ledger_path"`
	LogFormat   string `json:"log_format"` // "json" or "console"
}

// Default returns a config with sensible defaults.
func Default() Config {
	return Config{
		IntervalSec: 3,
		HistorySize: 120, // ~6 min of readings at 3s
		LogFormat:   "console",
	}
}

// Path returns ~/.config/rafeeq/config.json (or XDG_CONFIG_HOME).
// Returns empty string if the home directory cannot be determined.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "rafeeq", "config.json")
}

// Load loads config from disk; returns defaults when absent or unreadable.
func Load() Config {
	cfg := Default()
	p := Path()
	if p == "" {
		return cfg
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return cfg
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default()
	}
	if cfg.IntervalSec <= 0 {
		cfg.IntervalSec = Default().IntervalSec
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = Default().HistorySize
	}
	return cfg
}

// Save writes the config to disk.
func Save(cfg Config) error {
	path := Path()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Environment keys for the notification identity.
const (
	EnvAccountSID = "TWILIO_ACCOUNT_SID"
	EnvAuthToken  = "TWILIO_AUTH_TOKEN"
	EnvFromNumber = "TWILIO_PHONE_NUMBER"
	EnvCaregiver  = "CAREGIVER_PHONE"
)

// LoadCredentials reads the caller identity from a .env file (if present)
// and the environment. Missing values are reported by Validate, not here.
func LoadCredentials() notify.Credentials {
	_ = godotenv.Load()
	return notify.Credentials{
		AccountSID: os.Getenv(EnvAccountSID),
		AuthToken:  os.Getenv(EnvAuthToken),
		FromNumber: os.Getenv(EnvFromNumber),
		ToNumber:   os.Getenv(EnvCaregiver),
	}
}

// ValidateCredentials rejects a partial or empty caller identity. Startup
// fails fast on this rather than discovering it on the first alert.
func ValidateCredentials(c notify.Credentials) error {
	missing := []string{}
	if c.AccountSID == "" {
		missing = append(missing, EnvAccountSID)
	}
	if c.AuthToken == "" {
		missing = append(missing, EnvAuthToken)
	}
	if c.FromNumber == "" {
		missing = append(missing, EnvFromNumber)
	}
	if c.ToNumber == "" {
		missing = append(missing, EnvCaregiver)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing notification credentials: %v (set them or run with -no-call)", missing)
	}
	return nil
}
