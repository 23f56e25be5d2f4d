// Package config loads scraping configuration from a YAML file and EVENTSPAN_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultUserAgent identifies the scraper to event sites
const DefaultUserAgent = "eventspan/1.0 (+github.com/pfrederiksen/eventspan)"

// Scraping controls the page-fetch fallback used when text alone yields nothing.
type Scraping struct {
	Enabled               bool   `yaml:"enabled" json:"enabled"`
	CacheEnabled          bool   `yaml:"cache_enabled" json:"cache_enabled"`
	TimeoutMs             int    `yaml:"timeout_ms" json:"timeout_ms"`
	UserAgent             string `yaml:"user_agent" json:"user_agent"`
	MaxConcurrentRequests int    `yaml:"max_concurrent_requests" json:"max_concurrent_requests"`
	RetryAttempts         int    `yaml:"retry_attempts" json:"retry_attempts"`

	// Timezone is the IANA zone used for dates without an explicit offset.
	// Empty means the local zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// SiteSelectors adds CSS selectors for specific hosts, keyed by hostname suffix.
	SiteSelectors map[string][]string `yaml:"site_selectors,omitempty" json:"site_selectors,omitempty"`
}

// Default returns scraping enabled with a short timeout.
func Default() Scraping {
	return Scraping{
		Enabled:               true,
		CacheEnabled:          true,
		TimeoutMs:             10000,
		UserAgent:             DefaultUserAgent,
		MaxConcurrentRequests: 4,
		RetryAttempts:         2,
	}
}

// Load reads path over the defaults, applies environment overrides and validates the
// result. An empty path or a missing file yields the defaults.
func Load(path string) (Scraping, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// applyEnv overrides fields from EVENTSPAN_* variables
func (c *Scraping) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("EVENTSPAN_SCRAPING_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("EVENTSPAN_SCRAPING_ENABLED: %w", err)
		}
		c.Enabled = b
	}
	if v, ok := lookup("EVENTSPAN_CACHE_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("EVENTSPAN_CACHE_ENABLED: %w", err)
		}
		c.CacheEnabled = b
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"EVENTSPAN_TIMEOUT_MS", &c.TimeoutMs},
		{"EVENTSPAN_MAX_CONCURRENT", &c.MaxConcurrentRequests},
		{"EVENTSPAN_RETRY_ATTEMPTS", &c.RetryAttempts},
	}
	for _, e := range ints {
		v, ok := lookup(e.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", e.key, err)
		}
		*e.dst = n
	}

	if v, ok := lookup("EVENTSPAN_USER_AGENT"); ok && v != "" {
		c.UserAgent = v
	}
	if v, ok := lookup("EVENTSPAN_TIMEZONE"); ok {
		c.Timezone = v
	}
	return nil
}

// Validate checks the configuration for values the service cannot run with.
func (c Scraping) Validate() error {
	if c.TimeoutMs <= 0 {
		return fmt.Errorf("timeout_ms must be positive, got %d", c.TimeoutMs)
	}
	if c.MaxConcurrentRequests <= 0 {
		return fmt.Errorf("max_concurrent_requests must be positive, got %d", c.MaxConcurrentRequests)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry_attempts must not be negative, got %d", c.RetryAttempts)
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		return fmt.Errorf("user_agent is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Timeout returns TimeoutMs as a duration
func (c Scraping) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// Location resolves Timezone; empty means time.Local.
func (c Scraping) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
