// Package config provides configuration loading for the server, along
// with JWT and password-hashing settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the server configuration. It can be loaded from a JSON
// file; missing values fall back to environment variables or defaults.
type Config struct {
	// Server
	Addr string `json:"addr,omitempty"` // listen address, e.g. ":8080"

	// Backends
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	BlobDir     string `json:"blob_dir,omitempty"`     // directory for uploaded documents

	// Model overrides
	Model string `json:"model,omitempty"` // overrides the standard-tier model

	// Upload limits
	MaxUploadBytes int64 `json:"max_upload_bytes,omitempty"` // per-file size cap
	MaxUploadFiles int   `json:"max_upload_files,omitempty"` // per-request file cap
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv returns a Config populated from environment variables.
func FromEnv() Config {
	return Config{
		Addr:        os.Getenv("ADDR"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		BlobDir:     os.Getenv("BLOB_DIR"),
		Model:       os.Getenv("GEMINI_MODEL"),
	}
}

// Validate checks that the configuration has valid values. Required
// fields are checked after merging, not here.
func (c *Config) Validate() error {
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("config error: 'max_upload_bytes' must be non-negative")
	}
	if c.MaxUploadFiles < 0 {
		return fmt.Errorf("config error: 'max_upload_files' must be non-negative")
	}
	if c.BlobDir != "" {
		if info, err := os.Stat(c.BlobDir); err == nil && !info.IsDir() {
			return fmt.Errorf("config error: blob_dir is not a directory: %s", c.BlobDir)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. CLI flags and config-file values win over defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Addr == "" {
		result.Addr = defaults.Addr
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.BlobDir == "" {
		result.BlobDir = defaults.BlobDir
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.MaxUploadBytes == 0 {
		result.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if result.MaxUploadFiles == 0 {
		result.MaxUploadFiles = defaults.MaxUploadFiles
	}

	if result.Addr == "" {
		result.Addr = ":8080"
	}
	if result.BlobDir == "" {
		result.BlobDir = "uploads"
	}
	if result.MaxUploadBytes == 0 {
		result.MaxUploadBytes = 1 << 20 // 1MB, matching the upload form
	}
	if result.MaxUploadFiles == 0 {
		result.MaxUploadFiles = 5
	}

	return result
}
