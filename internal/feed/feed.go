// Package feed reads RSS and Atom feeds into plain-text items for extraction.
package feed

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// Item is one feed entry reduced to the text that may describe event dates.
type Item struct {
	Title     string     `json:"title"`
	Link      string     `json:"link"`
	Text      string     `json:"text"`
	Published *time.Time `json:"published,omitempty"`
}

// Reader parses feeds from URLs, files or streams
type Reader struct {
	parser *gofeed.Parser
}

// NewReader creates a Reader that identifies itself with userAgent
func NewReader(userAgent string) *Reader {
	p := gofeed.NewParser()
	if userAgent != "" {
		p.UserAgent = userAgent
	}
	return &Reader{parser: p}
}

// Open reads source: "-" for stdin, an http(s) URL, or a file path.
func (r *Reader) Open(ctx context.Context, source string, stdin io.Reader) ([]Item, error) {
	switch {
	case source == "-":
		return r.Parse(stdin)
	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		return r.ReadURL(ctx, source)
	default:
		return r.ReadFile(source)
	}
}

// ReadURL fetches and parses a remote feed
func (r *Reader) ReadURL(ctx context.Context, url string) ([]Item, error) {
	f, err := r.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching feed %s: %w", url, err)
	}
	return items(f), nil
}

// ReadFile parses a feed stored on disk
func (r *Reader) ReadFile(path string) ([]Item, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening feed: %w", err)
	}
	defer file.Close()
	return r.Parse(file)
}

// Parse reads a feed document from in
func (r *Reader) Parse(in io.Reader) ([]Item, error) {
	f, err := r.parser.Parse(in)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}
	return items(f), nil
}

func items(f *gofeed.Feed) []Item {
	out := make([]Item, 0, len(f.Items))
	for _, it := range f.Items {
		link := it.Link
		if link == "" {
			link = it.GUID
		}

		body := it.Content
		if body == "" {
			body = it.Description
		}

		var parts []string
		if title := strings.TrimSpace(it.Title); title != "" {
			parts = append(parts, title)
		}
		if text := plainText(body); text != "" {
			parts = append(parts, text)
		}

		item := Item{
			Title: strings.TrimSpace(it.Title),
			Link:  strings.TrimSpace(link),
			Text:  strings.Join(parts, "\n"),
		}
		if it.PublishedParsed != nil {
			item.Published = it.PublishedParsed
		} else if it.UpdatedParsed != nil {
			item.Published = it.UpdatedParsed
		}
		out = append(out, item)
	}
	return out
}

// plainText strips markup, keeping block elements on separate lines so the line
// scanner still sees "doors: 7pm" style listings.
func plainText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, h1, h2, h3, h4, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
