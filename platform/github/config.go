package github

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultAPIURL         = "https://api.github.com"
	defaultTimeoutSeconds = 60
)

// Config identifies the pull request to comment on and how to authenticate.
// Either Token or the GitHub App triple (AppID, PrivateKeyPath, and
// optionally InstallationID) must be set.
type Config struct {
	APIURL         string `json:"api_url,omitempty" toml:"api_url"`
	Repository     string `json:"repository,omitempty" toml:"repository"`
	PullNumber     int    `json:"pull_number,omitempty" toml:"pull_number"`
	CommitSHA      string `json:"commit_sha,omitempty" toml:"commit_sha"`
	Token          string `json:"-" toml:"-"`
	AppID          int64  `json:"app_id,omitempty" toml:"app_id"`
	InstallationID int64  `json:"installation_id,omitempty" toml:"installation_id"`
	PrivateKeyPath string `json:"private_key_path,omitempty" toml:"private_key_path"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" toml:"timeout_seconds"`
}

// DefaultConfig returns a Config pointing at the public GitHub API.
func DefaultConfig() Config {
	return Config{
		APIURL:         defaultAPIURL,
		TimeoutSeconds: defaultTimeoutSeconds,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.APIURL != "" {
		c.APIURL = source.APIURL
	}
	if source.Repository != "" {
		c.Repository = source.Repository
	}
	if source.PullNumber > 0 {
		c.PullNumber = source.PullNumber
	}
	if source.CommitSHA != "" {
		c.CommitSHA = source.CommitSHA
	}
	if source.Token != "" {
		c.Token = source.Token
	}
	if source.AppID > 0 {
		c.AppID = source.AppID
	}
	if source.InstallationID > 0 {
		c.InstallationID = source.InstallationID
	}
	if source.PrivateKeyPath != "" {
		c.PrivateKeyPath = source.PrivateKeyPath
	}
	if source.TimeoutSeconds > 0 {
		c.TimeoutSeconds = source.TimeoutSeconds
	}
}

// Validate reports the first missing or malformed field.
func (c *Config) Validate() error {
	if _, _, err := SplitRepository(c.Repository); err != nil {
		return err
	}
	if c.PullNumber <= 0 {
		return fmt.Errorf("pull request number must be positive, got %d", c.PullNumber)
	}
	if c.Token == "" && (c.AppID == 0 || c.PrivateKeyPath == "") {
		return fmt.Errorf("GITHUB_TOKEN or GitHub App credentials (app id and private key path) are required")
	}
	return nil
}

// Timeout returns the HTTP client timeout.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SplitRepository parses "owner/repo".
func SplitRepository(full string) (owner, repo string, err error) {
	parts := strings.SplitN(strings.TrimSpace(full), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" || strings.Contains(parts[1], "/") {
		return "", "", fmt.Errorf("repository must be in owner/repo form, got %q", full)
	}
	return parts[0], parts[1], nil
}
