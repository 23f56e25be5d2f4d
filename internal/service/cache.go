package service

import (
	"maps"
	"net/url"
	"strings"
	"sync"

	"github.com/pfrederiksen/eventspan/internal/event"
)

// Cache maps normalized page URLs to extracted events. Entries never expire; they
// are removed only by Clear. Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]event.Parsed
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{entries: make(map[string]event.Parsed)}
}

// Get returns the cached result for rawURL
func (c *Cache) Get(rawURL string) (event.Parsed, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.entries[NormalizeURL(rawURL)]
	return p, ok
}

// Set stores a result. Empty results are not cached.
func (c *Cache) Set(rawURL string, p event.Parsed) {
	if p.IsEmpty() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[NormalizeURL(rawURL)] = p
}

// Clear removes every entry
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Len returns the number of cached URLs
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Entries returns a copy of the cache contents
func (c *Cache) Entries() map[string]event.Parsed {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.entries)
}

// Load adds previously persisted entries, skipping empty ones
func (c *Cache) Load(entries map[string]event.Parsed) {
	for u, p := range entries {
		c.Set(u, p)
	}
}

// NormalizeURL canonicalizes a URL for use as a cache key: lower-case scheme and
// host, no default port, no fragment, no trailing slash on the path.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		port = ""
	}
	u.Host = host
	if port != "" {
		u.Host = host + ":" + port
	}

	u.Fragment = ""
	u.RawFragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""

	return u.String()
}
