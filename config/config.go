// Package config loads the pipeline configuration from YAML with
// sensible defaults. Secrets are never stored in the file; following
// 12-factor practice they are read from the environment only.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nathannewyen/contribfeed/internal/cache"
	"github.com/nathannewyen/contribfeed/internal/constants"
	"github.com/nathannewyen/contribfeed/internal/duration"
)

// DefaultConfigPath is the config file looked up in the working
// directory when no explicit path is given.
const DefaultConfigPath = "contribfeed.yaml"

// Config represents the application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server,omitempty"`
	GitHub        GitHubConfig        `yaml:"github,omitempty"`
	Gerrit        GerritConfig        `yaml:"gerrit,omitempty"`
	StackExchange StackExchangeConfig `yaml:"stackexchange,omitempty"`
	Grouping      GroupingConfig      `yaml:"grouping,omitempty"`
	Cache         CacheConfig         `yaml:"cache,omitempty"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// GitHubConfig identifies the GitHub account being aggregated.
type GitHubConfig struct {
	Username string `yaml:"username,omitempty"`
	// OwnRepos are repos whose direct commits are included alongside
	// pull requests. PRs against these repos are filtered out of the
	// search results instead.
	OwnRepos []string `yaml:"own_repos,omitempty"`
	// Projects are repos whose star counts appear on the profile.
	Projects []string `yaml:"projects,omitempty"`
}

// GerritConfig identifies the Gerrit account being aggregated. An empty
// BaseURL disables the Gerrit source.
type GerritConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
	Email   string `yaml:"email,omitempty"`
	Project string `yaml:"project,omitempty"`
}

// StackExchangeConfig identifies the Stack Exchange profile. A zero
// UserID disables the answers feed.
type StackExchangeConfig struct {
	UserID int    `yaml:"user_id,omitempty"`
	Site   string `yaml:"site,omitempty"`
}

// GroupingConfig maps raw repo identifiers onto display groups so
// related repos collapse into one project in the UI.
type GroupingConfig struct {
	// Repos maps exact repo names ("owner/repo" or a Gerrit project)
	// to a display group.
	Repos map[string]string `yaml:"repos,omitempty"`
	// Orgs maps a GitHub org prefix to a display group.
	Orgs map[string]string `yaml:"orgs,omitempty"`
}

// CacheConfig overrides the refresh cadence of the two cache profiles.
// Intervals use short duration strings ("5m", "90s", "1h").
type CacheConfig struct {
	StandardTTL   string `yaml:"standard_ttl,omitempty"`
	AggregatedTTL string `yaml:"aggregated_ttl,omitempty"`
}

// Default returns a config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		StackExchange: StackExchangeConfig{
			Site: "stackoverflow",
		},
		Cache: CacheConfig{
			StandardTTL:   constants.StandardCacheTTL.String(),
			AggregatedTTL: constants.AggregatedCacheTTL.String(),
		},
	}
}

// Load reads the config file at path, or the defaults when the file
// does not exist. An empty path means DefaultConfigPath.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.StackExchange.Site == "" {
		cfg.StackExchange.Site = "stackoverflow"
	}

	return cfg, nil
}

// Validate reports configuration mistakes that would make the pipeline
// useless rather than degraded.
func (c *Config) Validate() error {
	if c.GitHub.Username == "" {
		return fmt.Errorf("github.username is required")
	}
	if c.Gerrit.BaseURL != "" && c.Gerrit.Email == "" {
		return fmt.Errorf("gerrit.email is required when gerrit.base_url is set")
	}
	if _, err := c.standardTTL(); err != nil {
		return fmt.Errorf("cache.standard_ttl: %w", err)
	}
	if _, err := c.aggregatedTTL(); err != nil {
		return fmt.Errorf("cache.aggregated_ttl: %w", err)
	}
	return nil
}

// GitHubToken returns the GitHub token from the GITHUB_TOKEN
// environment variable. Unauthenticated access still works, at a much
// lower rate limit.
func (c *Config) GitHubToken() string {
	return os.Getenv("GITHUB_TOKEN")
}

// StackExchangeKey returns the optional API key from the
// STACKEXCHANGE_KEY environment variable.
func (c *Config) StackExchangeKey() string {
	return os.Getenv("STACKEXCHANGE_KEY")
}

// GerritEnabled reports whether a Gerrit source is configured.
func (c *Config) GerritEnabled() bool {
	return c.Gerrit.BaseURL != ""
}

// StackExchangeEnabled reports whether an answers feed is configured.
func (c *Config) StackExchangeEnabled() bool {
	return c.StackExchange.UserID != 0
}

// StandardProfile returns the cache profile for single-source feeds,
// with the configured TTL applied.
func (c *Config) StandardProfile() cache.Profile {
	p := cache.StandardProfile()
	if ttl, err := c.standardTTL(); err == nil && ttl > 0 {
		p.TTL = ttl
	}
	return p
}

// AggregatedProfile returns the cache profile for the merged timeline,
// with the configured TTL applied.
func (c *Config) AggregatedProfile() cache.Profile {
	p := cache.AggregatedProfile()
	if ttl, err := c.aggregatedTTL(); err == nil && ttl > 0 {
		p.TTL = ttl
	}
	return p
}

func (c *Config) standardTTL() (time.Duration, error) {
	if c.Cache.StandardTTL == "" {
		return constants.StandardCacheTTL, nil
	}
	return duration.Parse(c.Cache.StandardTTL)
}

func (c *Config) aggregatedTTL() (time.Duration, error) {
	if c.Cache.AggregatedTTL == "" {
		return constants.AggregatedCacheTTL, nil
	}
	return duration.Parse(c.Cache.AggregatedTTL)
}
