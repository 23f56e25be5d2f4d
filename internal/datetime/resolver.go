// Package datetime turns date/time substrings into absolute timestamps.
//
// The Resolver tries a fixed, ordered list of layouts. Layouts that carry an explicit
// zone (Z, numeric offset, abbreviation) are parsed as such and returned in UTC; all
// other layouts are interpreted in the resolver's location. When no full date layout
// matches, month/day layouts are tried and the year is filled in from the caller's
// fallback year or the current year.
package datetime

import (
	"regexp"
	"strings"
	"time"
)

// layout is one entry of the resolver template table
type layout struct {
	format string
	zoned  bool // explicit zone in the input, parse as UTC
}

// Absolute layouts in priority order
var absoluteLayouts = []layout{
	{format: time.RFC3339Nano, zoned: true},
	{format: "2006-01-02T15:04Z07:00", zoned: true},
	{format: "2006-01-02T15:04:05-0700", zoned: true},
	{format: "2006-01-02T15:04:05.000-0700", zoned: true},
	{format: time.RFC1123Z, zoned: true},
	{format: time.RFC1123, zoned: true},
	{format: "Mon, 2 Jan 2006 15:04:05 -0700", zoned: true},
	{format: "Mon, 2 Jan 2006 15:04:05 MST", zoned: true},
	{format: "2006-01-02T15:04:05"},
	{format: "2006-01-02T15:04"},
	{format: "2006-01-02 15:04:05"},
	{format: "2006-01-02 15:04"},
	{format: "2006-01-02"},
	{format: "2006/01/02"},
	{format: "2006/1/2"},
	{format: "January 2, 2006 3:04PM"},
	{format: "January 2, 2006 3PM"},
	{format: "January 2 2006 3:04PM"},
	{format: "January 2 2006 3PM"},
	{format: "January 2, 2006 at 3:04PM"},
	{format: "January 2, 2006 at 3PM"},
	{format: "January 2 2006 at 3:04PM"},
	{format: "January 2 2006 at 3PM"},
	{format: "January 2, 2006"},
	{format: "January 2 2006"},
	{format: "Jan 2, 2006 3:04PM"},
	{format: "Jan 2, 2006 3PM"},
	{format: "Jan 2, 2006 at 3:04PM"},
	{format: "Jan 2, 2006 at 3PM"},
	{format: "Jan 2, 2006"},
	{format: "Jan 2 2006"},
	{format: "Monday, January 2, 2006 3:04PM"},
	{format: "Monday, January 2, 2006 at 3:04PM"},
	{format: "Monday, January 2, 2006"},
	{format: "1/2/2006 3:04PM"},
	{format: "1/2/2006"},
}

// Month/day layouts with time, year substituted afterwards
var monthDayTimeLayouts = []string{
	"January 2 3:04PM",
	"January 2 3PM",
	"January 2, 3:04PM",
	"January 2, 3PM",
	"January 2 at 3:04PM",
	"January 2 at 3PM",
	"Jan 2 3:04PM",
	"Jan 2 3PM",
	"Jan 2 at 3:04PM",
	"Jan 2 at 3PM",
}

// Month/day layouts pinned to midnight
var monthDayLayouts = []string{
	"January 2",
	"Jan 2",
}

var (
	spaces       = regexp.MustCompile(`\s{2,}`)
	ordinal      = regexp.MustCompile(`(\d)(?:st|nd|rd|th)\b`)
	meridiem     = regexp.MustCompile(`(?i)(\d)\s*([ap])\.?m?\.?\b`)
	isoSeparator = regexp.MustCompile(`(\d)t(\d)`)
	isoUTC       = regexp.MustCompile(`(\d)z$`)
)

// Resolver resolves date/time text to timestamps.
type Resolver struct {
	// Location used for layouts without an explicit zone. Nil means time.Local.
	Location *time.Location
	// Now supplies the current time for the current-year fallback. Nil means time.Now.
	Now func() time.Time
}

// New creates a Resolver interpreting unzoned text in loc
func New(loc *time.Location) *Resolver {
	return &Resolver{Location: loc}
}

func (r *Resolver) loc() *time.Location {
	if r == nil || r.Location == nil {
		return time.Local
	}
	return r.Location
}

// Today returns the current time in the resolver's location.
func (r *Resolver) Today() time.Time {
	if r != nil && r.Now != nil {
		return r.Now().In(r.loc())
	}
	return time.Now().In(r.loc())
}

// CurrentYear returns the year used when text omits one and no fallback is given.
func (r *Resolver) CurrentYear() int {
	return r.Today().Year()
}

// Resolve parses text into a timestamp. fallbackYear (0 for none) replaces a missing
// year; without it the current year is used. ok is false when nothing matched.
func (r *Resolver) Resolve(text string, fallbackYear int) (time.Time, bool) {
	s := clean(text)
	if s == "" {
		return time.Time{}, false
	}

	for _, l := range absoluteLayouts {
		if l.zoned {
			if t, err := time.Parse(l.format, s); err == nil {
				return t.UTC(), true
			}
			continue
		}
		if t, err := time.ParseInLocation(l.format, s, r.loc()); err == nil {
			return t, true
		}
	}

	year := fallbackYear
	if year <= 0 {
		year = r.CurrentYear()
	}

	for _, format := range monthDayTimeLayouts {
		if t, err := time.ParseInLocation(format, s, r.loc()); err == nil {
			return inYear(t, year, t.Hour(), t.Minute(), r.loc())
		}
	}
	for _, format := range monthDayLayouts {
		if t, err := time.ParseInLocation(format, s, r.loc()); err == nil {
			return inYear(t, year, 0, 0, r.loc())
		}
	}

	return time.Time{}, false
}

// inYear moves a month-day parse (year 0, a leap year) into year. A day that does
// not exist there, such as February 29 in a common year, is rejected.
func inYear(t time.Time, year, hour, minute int, loc *time.Location) (time.Time, bool) {
	out := time.Date(year, t.Month(), t.Day(), hour, minute, 0, 0, loc)
	if out.Month() != t.Month() || out.Day() != t.Day() {
		return time.Time{}, false
	}
	return out, true
}

// At resolves a clock time ("6pm", "7:30p") on the calendar day of date.
func (r *Resolver) At(date time.Time, clock string) (time.Time, bool) {
	date = date.In(r.loc())
	return r.Resolve(date.Format("January 2, 2006")+" "+clock, 0)
}

// clean lightly canonicalizes text before layout matching: collapse spaces, drop
// ordinal suffixes, upper-case meridiems ("7:30p" -> "7:30PM") and ISO markers.
func clean(s string) string {
	s = strings.TrimSpace(s)
	s = spaces.ReplaceAllString(s, " ")
	s = ordinal.ReplaceAllString(s, "$1")
	s = meridiem.ReplaceAllStringFunc(s, func(m string) string {
		g := meridiem.FindStringSubmatch(m)
		return g[1] + strings.ToUpper(g[2]) + "M"
	})
	s = isoSeparator.ReplaceAllString(s, "${1}T${2}")
	s = isoUTC.ReplaceAllString(s, "${1}Z")
	return s
}
