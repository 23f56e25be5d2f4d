package extract

import (
	"regexp"
	"sort"
	"strings"
)

const (
	monthNames = `january|february|march|april|may|june|july|august|september|october|november|december`
	dayNames   = `monday|tuesday|wednesday|thursday|friday|saturday|sunday`
	clock      = `\d{1,2}(?::\d{2})?(?:am|pm|a|p)\b`
	isoStamp   = `\d{4}-\d{2}-\d{2}(?:[t ]\d{2}:\d{2}(?::\d{2}(?:\.\d+)?)?(?:z|[+-]\d{2}:?\d{2})?)?`
)

// tokens expands the placeholders used in rule templates
var tokens = strings.NewReplacer(
	"<weekday>", `(?:`+dayNames+`|mon|tues|tue|wed|thurs|thur|thu|fri|sat|sun)\.?`,
	"<date1>", `\b(?P<month1>`+monthNames+`)\s+(?P<day1>\d{1,2})\b`,
	"<date2>", `\b(?P<month2>`+monthNames+`)\s+(?P<day2>\d{1,2})\b`,
	"<day2>", `(?P<day2>\d{1,2})\b`,
	"<year1>", `(?P<year1>\d{4})\b`,
	"<year2>", `(?P<year2>\d{4})\b`,
	"<start>", `(?P<start>`+clock+`)`,
	"<end>", `(?P<end>`+clock+`)`,
	"<doors>", `(?P<doors>`+clock+`)`,
	"<program>", `(?P<program>`+clock+`)`,
	"<iso1>", `\b(?P<iso1>`+isoStamp+`)`,
	"<iso2>", `(?P<iso2>`+isoStamp+`)`,
)

// pattern compiles a rule template
func pattern(template string) *regexp.Regexp {
	return regexp.MustCompile(tokens.Replace(template))
}

// hit is one regex match of a rule against the cleaned text
type hit struct {
	text       string
	start, end int
	groups     map[string]string
	scan       *scan
}

func (h hit) get(name string) string {
	return h.groups[name]
}

// hits returns every non-overlapping match of re in text
func hits(re *regexp.Regexp, text string) []hit {
	names := re.SubexpNames()
	locs := re.FindAllStringSubmatchIndex(text, -1)

	out := make([]hit, 0, len(locs))
	for _, loc := range locs {
		h := hit{text: text, start: loc[0], end: loc[1], groups: make(map[string]string)}
		for i, name := range names {
			if name == "" || loc[2*i] < 0 {
				continue
			}
			h.groups[name] = text[loc[2*i]:loc[2*i+1]]
		}
		out = append(out, h)
	}
	return out
}

// span is a claimed byte range of the cleaned text
type span struct {
	start, end int
}

type spans []span

func (s spans) overlaps(start, end int) bool {
	for _, c := range s {
		if start < c.end && c.start < end {
			return true
		}
	}
	return false
}

// scan is the state of one generic pass over a text
type scan struct {
	text    string
	claimed spans

	dates   []hit
	indexed bool
}

// lastDateBefore returns the last month-day mention ending at or before pos. The
// mentions are found once per text.
func (s *scan) lastDateBefore(pos int) (hit, bool) {
	if !s.indexed {
		s.dates = hits(anyDate, s.text)
		s.indexed = true
	}
	i := sort.Search(len(s.dates), func(i int) bool { return s.dates[i].end > pos })
	if i == 0 {
		return hit{}, false
	}
	return s.dates[i-1], true
}
