// Package config loads rbxforge settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultConfigPath      = "~/.config/rbxforge/config.toml"
	defaultLibraryPath     = "~/.local/share/rbxforge/library.db"
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"
	defaultAssistantURL    = "https://openrouter.ai/api/v1/chat/completions"
	defaultAssistantModel  = "google/gemini-3-flash-preview"
	defaultAssistantTimeout = 60
	defaultSelector        = "$"
	defaultIndent          = "\t"

	// APIKeyEnv overrides assistant.api_key when set.
	APIKeyEnv = "RBXFORGE_API_KEY"
)

// Assistant configures the chat completion endpoint.
type Assistant struct {
	APIKey          string `toml:"api_key"`
	BaseURL         string `toml:"base_url"`
	Model           string `toml:"model"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	PayloadSelector string `toml:"payload_selector"`
}

// Export controls how trees are written as XML.
type Export struct {
	Indent          string `toml:"indent"`
	ValidateScripts bool   `toml:"validate_scripts"`
	LintScripts     bool   `toml:"lint_scripts"`
}

// Config is the full application configuration.
type Config struct {
	LogLevel    string    `toml:"log_level"`
	LogFormat   string    `toml:"log_format"`
	LibraryPath string    `toml:"library_path"`
	Assistant   Assistant `toml:"assistant"`
	Export      Export    `toml:"export"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:    defaultLogLevel,
		LogFormat:   defaultLogFormat,
		LibraryPath: defaultLibraryPath,
		Assistant: Assistant{
			BaseURL:         defaultAssistantURL,
			Model:           defaultAssistantModel,
			TimeoutSeconds:  defaultAssistantTimeout,
			PayloadSelector: defaultSelector,
		},
		Export: Export{
			Indent:          defaultIndent,
			ValidateScripts: true,
			LintScripts:     true,
		},
	}
}

// DefaultConfigPath returns the absolute path of the default config file.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load reads the config at path (the default location when empty). A missing
// file yields the defaults. It returns the resolved path and whether the file
// existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	if exists {
		data, err := os.ReadFile(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}
	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		cfg.Assistant.APIKey = key
	}
	if err := cfg.Normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = defaultConfigPath
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

// Normalize trims values, fills blanks with defaults and expands paths.
func (c *Config) Normalize() error {
	def := Default()
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat == "" {
		c.LogFormat = def.LogFormat
	}
	if strings.TrimSpace(c.LibraryPath) == "" {
		c.LibraryPath = def.LibraryPath
	}
	var err error
	if c.LibraryPath, err = expandPath(strings.TrimSpace(c.LibraryPath)); err != nil {
		return fmt.Errorf("library_path: %w", err)
	}

	a := &c.Assistant
	a.APIKey = strings.TrimSpace(a.APIKey)
	a.BaseURL = strings.TrimSpace(a.BaseURL)
	if a.BaseURL == "" {
		a.BaseURL = def.Assistant.BaseURL
	}
	a.Model = strings.TrimSpace(a.Model)
	if a.Model == "" {
		a.Model = def.Assistant.Model
	}
	if a.TimeoutSeconds == 0 {
		a.TimeoutSeconds = def.Assistant.TimeoutSeconds
	}
	a.PayloadSelector = strings.TrimSpace(a.PayloadSelector)
	if a.PayloadSelector == "" {
		a.PayloadSelector = def.Assistant.PayloadSelector
	}
	return nil
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level: unsupported value %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format: unsupported value %q", c.LogFormat)
	}
	if c.Assistant.TimeoutSeconds < 0 {
		return fmt.Errorf("assistant.timeout_seconds must be positive, got %d", c.Assistant.TimeoutSeconds)
	}
	if !strings.HasPrefix(c.Assistant.BaseURL, "http://") && !strings.HasPrefix(c.Assistant.BaseURL, "https://") {
		return fmt.Errorf("assistant.base_url must be an http(s) URL, got %q", c.Assistant.BaseURL)
	}
	if strings.Trim(c.Export.Indent, " \t") != "" {
		return fmt.Errorf("export.indent may only contain spaces and tabs, got %q", c.Export.Indent)
	}
	return nil
}

// RequireAPIKey reports an error naming where to set the key when it is unset.
func (c *Config) RequireAPIKey() error {
	if c.Assistant.APIKey != "" {
		return nil
	}
	path, err := DefaultConfigPath()
	if err != nil {
		path = defaultConfigPath
	}
	return fmt.Errorf("assistant.api_key is required. Set %s or edit %s", APIKeyEnv, path)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
