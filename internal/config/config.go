// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/kindred-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete kindred configuration.
type Config struct {
	// Version of the config schema.
	Version string `toml:"version" json:"version"`

	// API configuration (REST boundary).
	API APIConfig `toml:"api" json:"api"`

	// Realtime configuration (chat channel).
	Realtime RealtimeConfig `toml:"realtime" json:"realtime"`

	// Chat behavior configuration.
	Chat ChatConfig `toml:"chat" json:"chat"`

	// Archive configuration (local transcript archive).
	Archive ArchiveConfig `toml:"archive" json:"archive"`

	// UI configuration.
	UI UIConfig `toml:"ui" json:"ui"`
}

// APIConfig contains REST API settings.
type APIConfig struct {
	// BaseURL is the base URL of the kindred backend.
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs is the per-request timeout in seconds.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// RealtimeConfig contains realtime channel settings.
type RealtimeConfig struct {
	// URL overrides the realtime endpoint. When empty, it is derived
	// from the API base URL by swapping the scheme to ws/wss.
	URL string `toml:"url" json:"url"`
	// HandshakeTimeoutSecs bounds the websocket dial.
	HandshakeTimeoutSecs int `toml:"handshake_timeout_secs" json:"handshake_timeout_secs"`
}

// ChatConfig contains chat behavior settings.
type ChatConfig struct {
	// SendRatePerSec limits outbound message sends per second.
	SendRatePerSec float64 `toml:"send_rate_per_sec" json:"send_rate_per_sec"`
	// SendBurst is the burst allowance for the send limiter.
	SendBurst int `toml:"send_burst" json:"send_burst"`
	// MaxMessageLen caps the draft input length.
	MaxMessageLen int `toml:"max_message_len" json:"max_message_len"`
}

// ArchiveConfig contains local transcript archive settings.
type ArchiveConfig struct {
	// Enabled toggles transcript archiving on teardown.
	Enabled bool `toml:"enabled" json:"enabled"`
	// Path is the SQLite database path (empty = ~/.kindred/archive.db).
	Path string `toml:"path" json:"path"`
}

// UIConfig contains UI settings.
type UIConfig struct {
	// Theme is "auto", "dark", or "light".
	Theme string `toml:"theme" json:"theme"`
	// SidebarWidth is the room sidebar width in columns.
	SidebarWidth int `toml:"sidebar_width" json:"sidebar_width"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		API: APIConfig{
			BaseURL:     "http://localhost:3001",
			TimeoutSecs: 10,
		},
		Realtime: RealtimeConfig{
			HandshakeTimeoutSecs: 10,
		},
		Chat: ChatConfig{
			SendRatePerSec: 2,
			SendBurst:      5,
			MaxMessageLen:  1000,
		},
		Archive: ArchiveConfig{
			Enabled: true,
		},
		UI: UIConfig{
			Theme:        "auto",
			SidebarWidth: 28,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the kindred configuration directory (~/.kindred).
func ConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".kindred"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// CookiePath returns the path where the session cookie jar is persisted.
func CookiePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cookies.json"), nil
}

// LogPath returns the path of the client log file.
func LogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "kindred.log"), nil
}

// ArchivePath resolves the transcript archive database path.
func (c *Config) ArchivePath() (string, error) {
	if c.Archive.Path != "" {
		return c.Archive.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "archive.db"), nil
}

// EnsureConfigDir creates the configuration directory if missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration from disk.
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()

	// Try TOML first
	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if _, err := toml.DecodeFile(tomlPath, cfg); err != nil {
				return nil, fmt.Errorf("failed to decode TOML config: %w", err)
			}
			return finishLoad(cfg)
		}
	}

	// Try JSON as fallback
	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			data, err := os.ReadFile(jsonPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read JSON config: %w", err)
			}
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to decode JSON config: %w", err)
			}
			return finishLoad(cfg)
		}
	}

	// No config file - defaults plus environment
	return finishLoad(cfg)
}

// finishLoad applies env overrides, fills defaults, and validates.
func finishLoad(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the TOML config file atomically.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}

	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, []byte(sb.String()), 0600)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies KINDRED_* environment variables on top of the
// loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if base := os.Getenv("KINDRED_API_URL"); base != "" {
		c.API.BaseURL = base
	}
	if rt := os.Getenv("KINDRED_REALTIME_URL"); rt != "" {
		c.Realtime.URL = rt
	}
	if theme := os.Getenv("KINDRED_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if archive := os.Getenv("KINDRED_ARCHIVE"); archive != "" {
		c.Archive.Enabled = archive == "1" || strings.EqualFold(archive, "true")
	}
}

// SetDefaults fills zero values with their defaults.
func (c *Config) SetDefaults() {
	def := Default()
	if c.Version == "" {
		c.Version = def.Version
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = def.API.BaseURL
	}
	if c.API.TimeoutSecs <= 0 {
		c.API.TimeoutSecs = def.API.TimeoutSecs
	}
	if c.Realtime.HandshakeTimeoutSecs <= 0 {
		c.Realtime.HandshakeTimeoutSecs = def.Realtime.HandshakeTimeoutSecs
	}
	if c.Chat.SendRatePerSec <= 0 {
		c.Chat.SendRatePerSec = def.Chat.SendRatePerSec
	}
	if c.Chat.SendBurst <= 0 {
		c.Chat.SendBurst = def.Chat.SendBurst
	}
	if c.Chat.MaxMessageLen <= 0 {
		c.Chat.MaxMessageLen = def.Chat.MaxMessageLen
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
	if c.UI.SidebarWidth <= 0 {
		c.UI.SidebarWidth = def.UI.SidebarWidth
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("config field %s: %s", e.Field, e.Message)
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if _, err := url.Parse(c.API.BaseURL); err != nil {
		return ValidationError{Field: "api.base_url", Message: "not a valid URL"}
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return ValidationError{Field: "api.base_url", Message: "must be http or https"}
	}
	if c.Realtime.URL != "" &&
		!strings.HasPrefix(c.Realtime.URL, "ws://") && !strings.HasPrefix(c.Realtime.URL, "wss://") {
		return ValidationError{Field: "realtime.url", Message: "must be ws or wss"}
	}
	switch c.UI.Theme {
	case "auto", "dark", "light":
	default:
		return ValidationError{Field: "ui.theme", Message: "must be auto, dark, or light"}
	}
	return nil
}

// RealtimeEndpoint returns the realtime URL, deriving it from the API base
// URL when no explicit override is configured.
func (c *Config) RealtimeEndpoint() string {
	if c.Realtime.URL != "" {
		return c.Realtime.URL
	}
	endpoint := c.API.BaseURL
	endpoint = strings.Replace(endpoint, "https://", "wss://", 1)
	endpoint = strings.Replace(endpoint, "http://", "ws://", 1)
	return endpoint
}

// =============================================================================
// GLOBAL ACCESS
// =============================================================================

var (
	globalConfig     *Config
	globalConfigMu   sync.RWMutex
	globalConfigOnce sync.Once
)

// Global returns the process-wide configuration, loading it on first use.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// ResetGlobalForTesting resets the global config state for testing.
// This should only be used in tests to reset state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
