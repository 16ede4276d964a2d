// Copyright (c) 2024-2025 Fernando Libedinsky
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete iachat configuration.
type Config struct {
	// Server connection settings
	Server ServerConfig `toml:"server"`

	// User identity settings
	User UserConfig `toml:"user"`

	// Structured extra field sent inside client_data
	Field FieldConfig `toml:"field"`

	// Selectable prompts (name + human description)
	Prompts []PromptConfig `toml:"prompts"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// ServerConfig contains the backend connection configuration.
type ServerConfig struct {
	// BaseURL is the IAToolkit backend base URL (no trailing slash).
	BaseURL string `toml:"base_url"`
	// Company is the tenant short name used in the query path.
	Company string `toml:"company"`
	// TokenHeader is the header carrying the session token.
	TokenHeader string `toml:"token_header"`
	// QueryTimeoutSecs is the deadline for a single llm_query call.
	QueryTimeoutSecs int `toml:"query_timeout_secs"`
	// MaxAttachmentBytes caps the raw size of a single attachment.
	MaxAttachmentBytes int64 `toml:"max_attachment_bytes"`
}

// UserConfig identifies the local user towards the backend.
type UserConfig struct {
	// ExternalID is sent as external_user_id. Defaults to the OS username.
	ExternalID string `toml:"external_id"`
	// SessionToken authenticates the session, when present.
	// Prefer the IACHAT_SESSION_TOKEN environment variable.
	SessionToken string `toml:"session_token"`
}

// FieldConfig describes the optional structured field included in
// client_data under DataKey. The field is resolved and validated once at
// startup; when disabled, or when its trimmed value is empty, the key is
// omitted from the payload entirely.
type FieldConfig struct {
	Enabled bool   `toml:"enabled"`
	Label   string `toml:"label"`
	DataKey string `toml:"data_key"`
}

// PromptConfig is one selectable prompt.
type PromptConfig struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

// UIConfig contains presentation options.
type UIConfig struct {
	// ShowTimestamps prefixes transcript entries with wall-clock times.
	ShowTimestamps bool `toml:"show_timestamps"`
	// Markdown renders bot answers through glamour.
	Markdown bool `toml:"markdown"`
}

// =============================================================================
// DEFAULTS AND PATHS
// =============================================================================

const (
	// DefaultQueryTimeoutSecs is the default llm_query deadline.
	DefaultQueryTimeoutSecs = 120

	// DefaultMaxAttachmentBytes is the default per-attachment size cap.
	DefaultMaxAttachmentBytes = 10 * 1024 * 1024

	configDirName  = ".iachat"
	configFileName = "config.toml"
)

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:            "http://localhost:5000",
			Company:            "sample_company",
			TokenHeader:        "Authorization",
			QueryTimeoutSecs:   DefaultQueryTimeoutSecs,
			MaxAttachmentBytes: DefaultMaxAttachmentBytes,
		},
		User: UserConfig{
			ExternalID: localUsername(),
		},
		Field: FieldConfig{
			Enabled: false,
		},
		UI: UIConfig{
			ShowTimestamps: false,
			Markdown:       true,
		},
	}
}

// Dir returns the iachat configuration directory (~/.iachat),
// creating it if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot resolve home directory: %w", err)
	}
	dir := filepath.Join(home, configDirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("cannot create config directory: %w", err)
	}
	return dir, nil
}

// Path returns the full path of the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

func localUsername() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "local-user"
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration: defaults, then the config file (if any),
// then environment overrides, then validation.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration from an explicit file path.
// A missing file is not an error; defaults and env apply.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies IACHAT_* environment variable overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv("IACHAT_BASE_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("IACHAT_COMPANY"); v != "" {
		c.Server.Company = v
	}
	if v := os.Getenv("IACHAT_SESSION_TOKEN"); v != "" {
		c.User.SessionToken = v
	}
	if v := os.Getenv("IACHAT_EXTERNAL_ID"); v != "" {
		c.User.ExternalID = v
	}
	if v := os.Getenv("IACHAT_QUERY_TIMEOUT_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.Server.QueryTimeoutSecs = secs
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validation errors.
var (
	ErrNoBaseURL     = errors.New("server.base_url is required")
	ErrBadBaseURL    = errors.New("server.base_url is not a valid http(s) URL")
	ErrNoCompany     = errors.New("server.company is required")
	ErrFieldNoKey    = errors.New("field.data_key is required when the field is enabled")
	ErrPromptNoName  = errors.New("prompt entries require a name")
	ErrBadTimeout    = errors.New("server.query_timeout_secs must be positive")
	ErrBadAttachment = errors.New("server.max_attachment_bytes must be positive")
)

// Validate checks the configuration once, at startup. Later code can rely
// on every invariant checked here.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.BaseURL) == "" {
		return ErrNoBaseURL
	}
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrBadBaseURL
	}
	if strings.TrimSpace(c.Server.Company) == "" {
		return ErrNoCompany
	}
	if c.Server.QueryTimeoutSecs <= 0 {
		return ErrBadTimeout
	}
	if c.Server.MaxAttachmentBytes <= 0 {
		return ErrBadAttachment
	}
	if c.Field.Enabled && strings.TrimSpace(c.Field.DataKey) == "" {
		return ErrFieldNoKey
	}
	for _, p := range c.Prompts {
		if strings.TrimSpace(p.Name) == "" {
			return ErrPromptNoName
		}
	}
	if c.Server.TokenHeader == "" {
		c.Server.TokenHeader = "Authorization"
	}
	c.Server.BaseURL = strings.TrimSuffix(c.Server.BaseURL, "/")
	return nil
}

// PromptByName returns the prompt with the given name, if configured.
func (c *Config) PromptByName(name string) (PromptConfig, bool) {
	for _, p := range c.Prompts {
		if p.Name == name {
			return p, true
		}
	}
	return PromptConfig{}, false
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("cannot write config: %w", err)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}
