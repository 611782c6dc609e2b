// Package config loads reviewkit settings. Values come from three layers,
// later ones winning: built-in defaults, a JSON or TOML file, and the
// environment (after loading a .env file if one exists).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/tailored-agentic-units/reviewkit/platform/github"
	"github.com/tailored-agentic-units/reviewkit/platform/local"
	"github.com/tailored-agentic-units/reviewkit/server"
)

// Config holds the settings for every reviewkit subsystem. Observer is a
// comma-separated list of observer names; LogFormat is "text" or "json".
type Config struct {
	Platform  string        `json:"platform,omitempty" toml:"platform"`
	Observer  string        `json:"observer,omitempty" toml:"observer"`
	LogLevel  string        `json:"log_level,omitempty" toml:"log_level"`
	LogFormat string        `json:"log_format,omitempty" toml:"log_format"`
	Server    server.Config `json:"server" toml:"server"`
	GitHub    github.Config `json:"github" toml:"github"`
}

// DefaultConfig posts to the local platform and logs through slog at info.
func DefaultConfig() Config {
	return Config{
		Platform:  local.Name,
		Observer:  "slog",
		LogLevel:  "info",
		LogFormat: "text",
		Server:    server.DefaultConfig(),
		GitHub:    github.DefaultConfig(),
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Platform != "" {
		c.Platform = source.Platform
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
	if source.LogLevel != "" {
		c.LogLevel = source.LogLevel
	}
	if source.LogFormat != "" {
		c.LogFormat = source.LogFormat
	}
	c.Server.Merge(&source.Server)
	c.GitHub.Merge(&source.GitHub)
}

// LoadConfig reads a config file, merges it with defaults, and returns the
// result. Files ending in .toml are parsed as TOML, anything else as JSON.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if strings.EqualFold(filepath.Ext(filename), ".toml") {
		err = toml.Unmarshal(data, &loaded)
	} else {
		err = json.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}

// Load builds the effective configuration. filename may be empty. envFile is
// loaded into the process environment when it exists; variables already set
// are not overwritten.
func Load(filename, envFile string) (*Config, error) {
	cfg := DefaultConfig()
	if filename != "" {
		loaded, err := LoadConfig(filename)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overlays environment variables read through lookup.
// In GitHub Actions the platform defaults to github unless
// REVIEWKIT_PLATFORM says otherwise.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("GITHUB_ACTIONS"); ok && v == "true" {
		c.Platform = github.Name
	}
	str("REVIEWKIT_PLATFORM", &c.Platform)
	str("REVIEWKIT_OBSERVER", &c.Observer)
	str("REVIEWKIT_LOG_LEVEL", &c.LogLevel)
	str("REVIEWKIT_LOG_FORMAT", &c.LogFormat)
	str("REVIEWKIT_ADDR", &c.Server.Addr)

	str("GITHUB_API_URL", &c.GitHub.APIURL)
	str("GITHUB_REPOSITORY", &c.GitHub.Repository)
	str("GITHUB_SHA", &c.GitHub.CommitSHA)
	str("GITHUB_TOKEN", &c.GitHub.Token)
	str("GITHUB_APP_PRIVATE_KEY_PATH", &c.GitHub.PrivateKeyPath)

	ints := []struct {
		key string
		set func(int64)
	}{
		{"GITHUB_PR_NUMBER", func(n int64) { c.GitHub.PullNumber = int(n) }},
		{"GITHUB_APP_ID", func(n int64) { c.GitHub.AppID = n }},
		{"GITHUB_INSTALLATION_ID", func(n int64) { c.GitHub.InstallationID = n }},
	}
	for _, e := range ints {
		v, ok := lookup(e.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", e.key, v)
		}
		e.set(n)
	}
	return nil
}

// SlogLevel parses LogLevel. Unknown values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// ObserverNames splits Observer into its trimmed, non-empty names.
func (c *Config) ObserverNames() []string {
	var names []string
	for _, n := range strings.Split(c.Observer, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// PlatformConfig returns the value handed to the platform factory.
func (c *Config) PlatformConfig() any {
	switch c.Platform {
	case github.Name:
		return c.GitHub
	default:
		return nil
	}
}
