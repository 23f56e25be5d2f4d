package scraper

import (
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

var eventKeys = regexp.MustCompile(`(?i)"?(?:startDate|endDate|doorTime)"?\s*:`)

// jsonLD returns "start / end" snippets from embedded JSON-LD event objects. Blocks
// that do not decode are skipped. json5 tolerates the trailing commas and comments
// that hand-edited CMS templates tend to leave behind.
func jsonLD(doc *goquery.Document) []string {
	var out []string

	doc.Find("script[type='application/ld+json']").Each(func(_ int, el *goquery.Selection) {
		raw := strings.TrimSpace(el.Text())
		if raw == "" || !eventKeys.MatchString(raw) {
			return
		}

		var data any
		if err := json5.Unmarshal([]byte(raw), &data); err != nil {
			return
		}
		out = append(out, eventDates(data)...)
	})

	return out
}

// eventDates walks decoded JSON looking for objects carrying startDate
func eventDates(v any) []string {
	var out []string

	switch node := v.(type) {
	case map[string]any:
		start := stringField(node, "startDate")
		end := stringField(node, "endDate")
		switch {
		case start != "" && end != "":
			out = append(out, start+" / "+end)
		case start != "":
			out = append(out, start)
		}
		if doors := stringField(node, "doorTime"); doors != "" {
			out = append(out, doors)
		}

		for _, key := range slices.Sorted(maps.Keys(node)) {
			if key == "startDate" || key == "endDate" || key == "doorTime" {
				continue
			}
			out = append(out, eventDates(node[key])...)
		}
	case []any:
		for _, child := range node {
			out = append(out, eventDates(child)...)
		}
	}

	return out
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}
