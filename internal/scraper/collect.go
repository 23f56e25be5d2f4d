package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxSnippetLen drops leaf text that is too long to be a date line
const maxSnippetLen = 400

var (
	dateOrTime = regexp.MustCompile(`(?i)\b(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+\d{1,2}\b|\b\d{1,2}(?::\d{2})?\s*[ap]\.?m\b\.?|\b\d{4}-\d{2}-\d{2}\b|\b\d{1,2}/\d{1,2}/\d{2,4}\b`)
	spaceRun   = regexp.MustCompile(`\s+`)
)

// dateSelectors are generic class/attribute hooks used by event listings
var dateSelectors = []string{
	".date",
	".dates",
	".event-date",
	".event-dates",
	".event-time",
	".exhibition-dates",
	".when",
	".time",
	".schedule",
	"[class*='date']",
	"[class*='time']",
}

// contextKeywords mark leaf elements likely to describe an event time
var contextKeywords = []string{
	"screening",
	"opening",
	"exhibition",
	"reception",
	"on view",
	"through",
	"closing",
	"doors",
	"program",
	"performance",
	"talk",
	"workshop",
	"deadline",
}

// DefaultSites holds selector overrides keyed by hostname suffix
var DefaultSites = map[string][]string{
	"eventbrite.com": {"[data-testid='display-date']", ".date-info", ".event-details__data"},
	"meetup.com":     {"[data-testid='event-when-display']", "time"},
}

// Collector gathers date-bearing text snippets out of a parsed page
type Collector struct {
	sites map[string][]string
}

// NewCollector creates a Collector using DefaultSites extended (or overridden) by extra
func NewCollector(extra map[string][]string) *Collector {
	sites := make(map[string][]string, len(DefaultSites)+len(extra))
	for host, sels := range DefaultSites {
		sites[host] = sels
	}
	for host, sels := range extra {
		sites[strings.ToLower(strings.TrimPrefix(host, "www."))] = sels
	}
	return &Collector{sites: sites}
}

// Collect returns the page's date-bearing snippets joined by newlines, or "".
func (c *Collector) Collect(doc *goquery.Document, pageURL string) string {
	var s snippets

	s.add(jsonLD(doc)...)
	s.add(microdata(doc)...)

	for _, sel := range dateSelectors {
		doc.Find(sel).Each(func(_ int, el *goquery.Selection) {
			if text := textOf(el); dateOrTime.MatchString(text) {
				s.add(text)
			}
		})
	}

	doc.Find("time").Each(func(_ int, el *goquery.Selection) {
		if dt, ok := el.Attr("datetime"); ok {
			s.add(dt)
		}
		s.add(textOf(el))
	})

	leaves := leafTexts(doc)
	for _, text := range leaves {
		if hasContextKeyword(text) && dateOrTime.MatchString(text) {
			s.add(text)
		}
	}
	for _, text := range leaves {
		if dateOrTime.MatchString(text) {
			s.add(text)
		}
	}

	for _, sel := range c.siteSelectors(pageURL) {
		doc.Find(sel).Each(func(_ int, el *goquery.Selection) {
			s.add(textOf(el))
		})
	}

	return strings.Join(s.list, "\n")
}

// siteSelectors returns the overrides for the page's host, matching on suffix
func (c *Collector) siteSelectors(pageURL string) []string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil
	}

	var out []string
	for suffix, sels := range c.sites {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			out = append(out, sels...)
		}
	}
	return out
}

// microdata reads schema.org itemprop dates, pairing start and end within one itemscope
func microdata(doc *goquery.Document) []string {
	var out []string

	doc.Find("[itemprop='startDate']").Each(func(_ int, el *goquery.Selection) {
		start := itemValue(el)
		if start == "" {
			return
		}
		scope := el.Closest("[itemscope]")
		if scope.Length() == 0 {
			scope = doc.Selection
		}
		if end := itemValue(scope.Find("[itemprop='endDate']").First()); end != "" {
			out = append(out, start+" / "+end)
			return
		}
		out = append(out, start)
	})

	doc.Find("[itemprop='doorTime']").Each(func(_ int, el *goquery.Selection) {
		if v := itemValue(el); v != "" {
			out = append(out, v)
		}
	})

	return out
}

// itemValue prefers the machine-readable content/datetime attribute
func itemValue(el *goquery.Selection) string {
	if el.Length() == 0 {
		return ""
	}
	for _, attr := range []string{"content", "datetime"} {
		if v, ok := el.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return textOf(el)
}

// leafTexts returns the text of every element without element children
func leafTexts(doc *goquery.Document) []string {
	var out []string
	doc.Find("body *").Each(func(_ int, el *goquery.Selection) {
		if el.Children().Length() > 0 || el.Is("script, style, noscript, template") {
			return
		}
		if text := textOf(el); text != "" && len(text) <= maxSnippetLen {
			out = append(out, text)
		}
	})
	return out
}

func hasContextKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range contextKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func textOf(el *goquery.Selection) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(el.Text(), " "))
}

// snippets is an insertion-ordered set of non-empty strings
type snippets struct {
	list []string
	seen map[string]bool
}

func (s *snippets) add(texts ...string) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" || s.seen[t] {
			continue
		}
		s.seen[t] = true
		s.list = append(s.list, t)
	}
}
