// Package extract finds event time ranges in free-form text.
//
// Text is normalized, optionally split into keyword-anchored blocks, and run through
// a two-tier rule cascade. The labeled tier ("opening reception:", "opens on",
// "on view through", "dates:") short-circuits when it finds anything. Otherwise every
// generic rule contributes candidates, and a line scanner attaches "doors:" and
// "program:" lines to the most recent date it saw. Candidates are merged into one
// event.Parsed. Nothing in this package returns an error: a miss is an empty result.
package extract

import (
	"strconv"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pfrederiksen/eventspan/internal/datetime"
	"github.com/pfrederiksen/eventspan/internal/event"
	"github.com/pfrederiksen/eventspan/internal/normalize"
)

// Default durations for segments without an explicit end
const (
	DefaultDuration = 2 * time.Hour
	DoorsDuration   = 30 * time.Minute
)

// Engine runs the extraction pipeline. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	res *datetime.Resolver
}

// New creates an Engine resolving dates with res. A nil resolver uses the local zone.
func New(res *datetime.Resolver) *Engine {
	if res == nil {
		res = datetime.New(time.Local)
	}
	return &Engine{res: res}
}

// Resolver returns the engine's date resolver
func (e *Engine) Resolver() *datetime.Resolver {
	return e.res
}

// Extract returns the events found in text, or an empty result.
func (e *Engine) Extract(text string) event.Parsed {
	return e.extract(text, 0)
}

func (e *Engine) extract(text string, depth int) event.Parsed {
	cleaned := normalize.Clean(normalize.Text(text))
	if cleaned == "" {
		return event.Parsed{}
	}

	if depth == 0 {
		if blocks := splitBlocks(cleaned); blocks != nil {
			results := make([]event.Parsed, 0, len(blocks))
			for _, block := range blocks {
				results = append(results, e.extract(block, depth+1))
			}
			return event.Union(results...)
		}
	}

	if labeled := e.labeled(cleaned); !labeled.IsEmpty() {
		return labeled
	}

	f := e.generic(cleaned)
	f.receptions = append(f.receptions, e.scanLines(normalize.Lines(text))...)
	return event.FromCandidates(f.exhibitions, f.receptions)
}

// found collects candidate segments produced by rules
type found struct {
	exhibitions []event.Segment
	receptions  []event.Segment
}

func (f *found) add(o found) {
	f.exhibitions = append(f.exhibitions, o.exhibitions...)
	f.receptions = append(f.receptions, o.receptions...)
}

func (f found) empty() bool {
	return len(f.exhibitions) == 0 && len(f.receptions) == 0
}

func exhibition(seg event.Segment) found {
	return found{exhibitions: []event.Segment{seg}}
}

func receptions(segs ...event.Segment) found {
	return found{receptions: segs}
}

// date resolves "<month> <day>[, <year>]" to midnight. A missing year falls back to
// fallbackYear, then the current year.
func (e *Engine) date(month, day, year string, fallbackYear int) (time.Time, bool) {
	if month == "" || day == "" {
		return time.Time{}, false
	}
	if year != "" {
		return e.res.Resolve(month+" "+day+", "+year, 0)
	}
	return e.res.Resolve(month+" "+day, fallbackYear)
}

// dateTime resolves a date plus a clock time such as "6:30pm".
func (e *Engine) dateTime(month, day, year, clock string, fallbackYear int) (time.Time, bool) {
	d, ok := e.date(month, day, year, fallbackYear)
	if !ok {
		return time.Time{}, false
	}
	return e.res.At(d, clock)
}

// span resolves start and optional end clocks on one date. Without an end the
// segment lasts dflt.
func (e *Engine) span(name string, d time.Time, startClock, endClock string, dflt time.Duration) (event.Segment, bool) {
	start, ok := e.res.At(d, startClock)
	if !ok {
		return event.Segment{}, false
	}

	end := start.Add(dflt)
	if endClock != "" {
		if t, ok := e.res.At(d, endClock); ok {
			end = t
		}
	}
	if end.Before(start) {
		// ranges like "10pm-1am" end on the next day
		end = end.AddDate(0, 0, 1)
	}
	return event.NewSegment(name, start, end), true
}

func yearOf(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// title formats a matched keyword as a segment name. Casers are stateful, so one
// is created per call.
func title(s string) string {
	return cases.Title(language.English).String(s)
}
