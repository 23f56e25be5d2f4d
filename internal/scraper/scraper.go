package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/eventspan/internal/retry"
)

const (
	UserAgent = "eventspan/1.0 (+github.com/pfrederiksen/eventspan)"
	Timeout   = 10 * time.Second

	// maxBodyBytes caps how much of a page is read
	maxBodyBytes = 5 << 20
)

// Fetcher retrieves and parses a web page
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// Options configure an HTTPFetcher
type Options struct {
	UserAgent     string
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	Client        *http.Client
}

// HTTPFetcher fetches pages over HTTP
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	retry     retry.Config
}

// StatusError reports a non-200 response
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d for %s", e.Code, e.URL)
}

// NewHTTPFetcher creates a fetcher. Zero options fall back to package defaults.
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	f := &HTTPFetcher{
		client:    opts.Client,
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
		retry: retry.Config{
			MaxAttempts: opts.RetryAttempts + 1,
			Delay:       opts.RetryDelay,
			Backoff:     true,
		},
	}
	if f.userAgent == "" {
		f.userAgent = UserAgent
	}
	if f.timeout <= 0 {
		f.timeout = Timeout
	}
	if f.retry.Delay <= 0 {
		f.retry.Delay = 500 * time.Millisecond
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: f.timeout}
	}
	return f
}

// Fetch downloads url and parses it as HTML. Client errors (4xx) are not retried.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	var doc *goquery.Document

	err := retry.Do(ctx, f.retry, func() error {
		d, err := f.fetchOnce(ctx, url)
		if err != nil {
			return err
		}
		doc = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{URL: url, Code: resp.StatusCode}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, retry.Permanent(statusErr)
		}
		return nil, statusErr
	}

	return parse(io.LimitReader(resp.Body, maxBodyBytes))
}

// parse builds a document from HTML
func parse(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}
