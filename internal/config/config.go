package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config holds application configuration.
type Config struct {
	// SnippetMaxChars caps the code body of a snippet (runes, not bytes).
	// 0 disables the cap.
	SnippetMaxChars int `json:"snippet_max_chars"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is
	// locked" errors). 0 means use sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are ignored.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SnippetMaxChars: 200000,
	}
}

// Load loads configuration from baseDir/config.json. Returns default config
// if the file doesn't exist. The baseDir parameter allows tests to use
// t.TempDir() instead of ~/.offstack.
func Load(baseDir string) (*Config, error) {
	overlay, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), overlay), nil
}

// loadFile loads configuration from a specific file path. Returns a
// zero-valued config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge combines base and overlay configs. Overlay values take precedence
// for scalars; the tool list is concatenated and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.SnippetMaxChars = overlay.SnippetMaxChars
	if result.SnippetMaxChars == 0 {
		result.SnippetMaxChars = base.SnippetMaxChars
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	seen := make(map[string]bool)
	for _, name := range append(append([]string{}, base.DisabledTools...), overlay.DisabledTools...) {
		if name != "" && !seen[name] {
			seen[name] = true
			result.DisabledTools = append(result.DisabledTools, name)
		}
	}

	return result
}
