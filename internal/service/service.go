// Package service runs text extraction with a cached page-scrape fallback.
//
// A Service owns its configuration, fetcher and cache, so callers and tests can run
// isolated instances. ExtractWithFallback only touches the network when the text
// alone yields nothing. Concurrent requests for the same uncached URL share one
// fetch, and the number of fetches in flight is bounded by MaxConcurrentRequests.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/pfrederiksen/eventspan/internal/config"
	"github.com/pfrederiksen/eventspan/internal/datetime"
	"github.com/pfrederiksen/eventspan/internal/event"
	"github.com/pfrederiksen/eventspan/internal/extract"
	"github.com/pfrederiksen/eventspan/internal/logger"
	"github.com/pfrederiksen/eventspan/internal/scraper"
)

// Service is the extraction entry point. Safe for concurrent use.
type Service struct {
	engine  *extract.Engine
	cache   *Cache
	log     *logger.Logger
	metrics *logger.Metrics
	group   singleflight.Group

	mu          sync.RWMutex
	cfg         config.Scraping
	fetcher     scraper.Fetcher
	ownFetcher  bool
	collector   *scraper.Collector
	sem         *semaphore.Weighted
	fixedEngine bool
}

// Option customizes a Service
type Option func(*Service)

// WithFetcher replaces the HTTP fetcher. Configure keeps it.
func WithFetcher(f scraper.Fetcher) Option {
	return func(s *Service) {
		s.fetcher = f
		s.ownFetcher = false
	}
}

// WithEngine sets the extraction engine, overriding the configured timezone.
func WithEngine(e *extract.Engine) Option {
	return func(s *Service) {
		s.engine = e
		s.fixedEngine = true
	}
}

// WithCache shares an existing cache
func WithCache(c *Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithMetrics sets the metrics tracker
func WithMetrics(m *logger.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates a Service from cfg
func New(cfg config.Scraping, opts ...Option) (*Service, error) {
	s := &Service{
		cache:      NewCache(),
		log:        logger.Default(),
		metrics:    logger.DefaultMetrics(),
		ownFetcher: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Configure(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// Configure replaces the scraping configuration. The cache is kept.
func (s *Service) Configure(cfg config.Scraping) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid scraping config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = cfg
	s.sem = semaphore.NewWeighted(int64(cfg.MaxConcurrentRequests))
	s.collector = scraper.NewCollector(cfg.SiteSelectors)
	if s.ownFetcher || s.fetcher == nil {
		s.fetcher = scraper.NewHTTPFetcher(scraper.Options{
			UserAgent:     cfg.UserAgent,
			Timeout:       cfg.Timeout(),
			RetryAttempts: cfg.RetryAttempts,
		})
		s.ownFetcher = true
	}
	if !s.fixedEngine {
		s.engine = extract.New(datetime.New(loc))
	}
	return nil
}

// Config returns the current configuration
func (s *Service) Config() config.Scraping {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Cache returns the service's URL cache
func (s *Service) Cache() *Cache {
	return s.cache
}

// ClearCache drops every cached page result
func (s *Service) ClearCache() {
	s.cache.Clear()
	s.log.Info("cache cleared", nil)
}

// Extract runs the text pipeline only.
func (s *Service) Extract(text string) event.Parsed {
	s.mu.RLock()
	engine := s.engine
	s.mu.RUnlock()
	return engine.Extract(text)
}

// ExtractWithFallback extracts from text and, when that finds nothing, scrapes pageURL.
// Scraping happens only if scrapingEnabled and the configuration both allow it.
// Fetch and parse failures produce an empty result, never an error.
func (s *Service) ExtractWithFallback(ctx context.Context, text, pageURL string, scrapingEnabled bool) event.Parsed {
	if parsed := s.Extract(text); !parsed.IsEmpty() || pageURL == "" || !scrapingEnabled {
		return parsed
	}

	s.mu.RLock()
	cfg := s.cfg
	s.mu.RUnlock()

	if !cfg.Enabled {
		return event.Parsed{}
	}

	key := NormalizeURL(pageURL)
	if cfg.CacheEnabled {
		if cached, ok := s.cache.Get(key); ok {
			s.metrics.IncrCounter("cache.hit")
			s.log.Debug("cache hit", logger.Fields{"url": key})
			return cached
		}
		s.metrics.IncrCounter("cache.miss")
		s.log.Debug("cache miss", logger.Fields{"url": key})
	}

	v, _, _ := s.group.Do(key, func() (any, error) {
		if cfg.CacheEnabled {
			if cached, ok := s.cache.Get(key); ok {
				return cached, nil
			}
		}
		return s.scrape(ctx, pageURL, cfg.CacheEnabled), nil
	})
	return v.(event.Parsed)
}

// scrape fetches, collects and parses one page, caching non-empty results.
func (s *Service) scrape(ctx context.Context, pageURL string, cacheEnabled bool) event.Parsed {
	s.mu.RLock()
	fetcher, collector, engine, sem := s.fetcher, s.collector, s.engine, s.sem
	s.mu.RUnlock()

	if err := sem.Acquire(ctx, 1); err != nil {
		s.log.Warn("fetch abandoned", logger.Fields{"url": pageURL}, err)
		return event.Parsed{}
	}
	defer sem.Release(1)

	start := time.Now()
	doc, err := fetcher.Fetch(ctx, pageURL)
	s.metrics.RecordTiming("fetch.duration", time.Since(start))
	if err != nil {
		s.metrics.IncrCounter("fetch.error")
		s.log.Warn("fetch failed", logger.Fields{"url": pageURL}, err)
		return event.Parsed{}
	}
	s.metrics.IncrCounter("fetch.success")

	text := collector.Collect(doc, pageURL)
	parsed := engine.Extract(text)

	s.log.Debug("page scraped", logger.Fields{
		"url":        pageURL,
		"text_bytes": len(text),
		"receptions": len(parsed.Receptions),
		"exhibition": parsed.Exhibition != nil,
	})

	if cacheEnabled && !parsed.IsEmpty() {
		s.cache.Set(pageURL, parsed)
		s.metrics.SetGauge("cache.size", float64(s.cache.Len()))
	}
	return parsed
}
