package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if !cfg.Enabled || !cfg.CacheEnabled {
		t.Error("scraping and cache should be enabled by default")
	}
	if cfg.Timeout() != 10*time.Second {
		t.Errorf("Timeout() = %v, want 10s", cfg.Timeout())
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "eventspan.yaml")
	content := `enabled: false
timeout_ms: 2500
user_agent: test-agent
site_selectors:
  example.org:
    - .listing-when
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Enabled {
		t.Error("Enabled should be false from file")
	}
	if !cfg.CacheEnabled {
		t.Error("CacheEnabled should keep its default")
	}
	if cfg.TimeoutMs != 2500 {
		t.Errorf("TimeoutMs = %d, want 2500", cfg.TimeoutMs)
	}
	if cfg.UserAgent != "test-agent" {
		t.Errorf("UserAgent = %q, want test-agent", cfg.UserAgent)
	}
	if got := cfg.SiteSelectors["example.org"]; len(got) != 1 || got[0] != ".listing-when" {
		t.Errorf("SiteSelectors = %v", cfg.SiteSelectors)
	}
	if cfg.MaxConcurrentRequests != 4 {
		t.Errorf("MaxConcurrentRequests = %d, want default 4", cfg.MaxConcurrentRequests)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TimeoutMs != Default().TimeoutMs {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("timeout_ms: [not an int"), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("EVENTSPAN_SCRAPING_ENABLED", "false")
	t.Setenv("EVENTSPAN_RETRY_ATTEMPTS", "0")
	t.Setenv("EVENTSPAN_TIMEZONE", "UTC")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Enabled {
		t.Error("Enabled should be overridden to false")
	}
	if cfg.RetryAttempts != 0 {
		t.Errorf("RetryAttempts = %d, want 0", cfg.RetryAttempts)
	}
	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("Location() = %v, %v; want UTC", loc, err)
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		check   func(Scraping) bool
		wantErr string
	}{
		{
			name:  "timeout",
			env:   map[string]string{"EVENTSPAN_TIMEOUT_MS": " 500 "},
			check: func(c Scraping) bool { return c.TimeoutMs == 500 },
		},
		{
			name:  "concurrency",
			env:   map[string]string{"EVENTSPAN_MAX_CONCURRENT": "16"},
			check: func(c Scraping) bool { return c.MaxConcurrentRequests == 16 },
		},
		{
			name:  "cache",
			env:   map[string]string{"EVENTSPAN_CACHE_ENABLED": "0"},
			check: func(c Scraping) bool { return !c.CacheEnabled },
		},
		{
			name:  "empty user agent keeps default",
			env:   map[string]string{"EVENTSPAN_USER_AGENT": ""},
			check: func(c Scraping) bool { return c.UserAgent == DefaultUserAgent },
		},
		{
			name:    "bad bool",
			env:     map[string]string{"EVENTSPAN_SCRAPING_ENABLED": "maybe"},
			wantErr: "EVENTSPAN_SCRAPING_ENABLED",
		},
		{
			name:    "bad int",
			env:     map[string]string{"EVENTSPAN_TIMEOUT_MS": "soon"},
			wantErr: "EVENTSPAN_TIMEOUT_MS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := cfg.applyEnv(func(key string) (string, bool) {
				v, ok := tt.env[key]
				return v, ok
			})

			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("applyEnv() error = %v, want mention of %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("applyEnv() error = %v", err)
			}
			if !tt.check(cfg) {
				t.Errorf("unexpected config %+v", cfg)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Scraping)
	}{
		{"zero timeout", func(c *Scraping) { c.TimeoutMs = 0 }},
		{"zero concurrency", func(c *Scraping) { c.MaxConcurrentRequests = 0 }},
		{"negative retries", func(c *Scraping) { c.RetryAttempts = -1 }},
		{"blank user agent", func(c *Scraping) { c.UserAgent = "  " }},
		{"unknown timezone", func(c *Scraping) { c.Timezone = "Mars/Olympus_Mons" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
