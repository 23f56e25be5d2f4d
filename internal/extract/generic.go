package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/pfrederiksen/eventspan/internal/event"
)

// rule is one entry of the generic tier. Fallback rules only fire on text that no
// earlier rule has claimed, so a bare "<date> at <time>" does not duplicate a range,
// deadline or separator match covering the same words.
type rule struct {
	name     string
	re       *regexp.Regexp
	fallback bool
	build    func(e *Engine, h hit) found
}

// genericRules is the accumulative tier, in evaluation order
var genericRules = []rule{
	{
		name:  "separator",
		re:    pattern(`(?:<weekday>,?\s*)?<date1>(?:,?\s*<year1>)?\s*[|;•:]\s*(?:from\s+)?<start>(?:\s*-\s*<end>)?`),
		build: buildTimedEvent,
	},
	{
		name:  "separator with label",
		re:    pattern(`(?:<weekday>,?\s*)?<date1>(?:,?\s*<year1>)?[,\s]+[a-z][a-z'&\s]{1,40}?\s*[|;•]\s*(?:from\s+)?<start>(?:\s*-\s*<end>)?`),
		build: buildTimedEvent,
	},
	{
		name:  "time range",
		re:    pattern(`(?:<weekday>,?\s*)?<date1>(?:,?\s*<year1>)?,?\s*(?:at\s+|from\s+)?<start>\s*(?:-|to|until)\s*<end>`),
		build: buildTimedEvent,
	},
	{
		name:  "from date to date",
		re:    pattern(`\bfrom\s+(?:<weekday>,?\s*)?<date1>(?:,?\s*<year1>)?\s+(?:to|until|through)\s+(?:<weekday>,?\s*)?<date2>(?:,?\s*<year2>)?`),
		build: buildDateRange,
	},
	{
		name:  "dated range",
		re:    pattern(`<date1>,?\s*<year1>\s*-\s*<date2>,?\s*<year2>`),
		build: buildDateRange,
	},
	{
		name:  "day range",
		re:    pattern(`<date1>\s*-\s*<day2>,?\s*<year1>`),
		build: buildDayRange,
	},
	{
		name:  "month range",
		re:    pattern(`<date1>\s*-\s*<date2>,?\s*<year2>`),
		build: buildDateRange,
	},
	{
		name:  "deadline",
		re:    pattern(`\b(?:deadline|due)(?:\s+date)?:?\s*(?:<weekday>,?\s*)?<date1>(?:,?\s*<year1>)?,?\s*(?:at\s+|by\s+)?<start>`),
		build: buildDeadline,
	},
	{
		// only where the timed form above did not match
		name:     "deadline date",
		re:       pattern(`\b(?:deadline|due)(?:\s+date)?:?\s*(?:<weekday>,?\s*)?<date1>(?:,?\s*<year1>)?`),
		fallback: true,
		build:    buildDeadline,
	},
	{
		name:  "doors and program",
		re:    pattern(`(?:<weekday>,?\s*)?<date1>(?:,?\s*<year1>)?[,.;|\s-]*doors(?:\s+open)?:?\s*(?:at\s+)?<doors>[,.;|/\s-]*(?:program|show|screening|film|performance)(?:\s+(?:starts|begins))?:?\s*(?:at\s+)?<program>`),
		build: buildDoorsProgram,
	},
	{
		name:  "every weekday",
		re:    pattern(`\bevery\s+(?P<dow>` + dayNames + `)s?,?\s*(?:from\s+)?<start>\s*-\s*<end>`),
		build: buildRecurring,
	},
	{
		name:  "weekends",
		re:    pattern(`\b(?P<label>weekends)(?:\s+only)?:?\s*(?:from\s+)?<start>\s*-\s*<end>`),
		build: buildRecurring,
	},
	{
		name:  "daily",
		re:    pattern(`\b(?P<label>daily):?\s*(?:from\s+)?<start>\s*-\s*<end>`),
		build: buildRecurring,
	},
	{
		name:  "iso span",
		re:    pattern(`<iso1>(?:\s*(?:/|to|-)\s*<iso2>)?`),
		build: buildISOSpan,
	},
	{
		name:     "keyword proximity",
		re:       pattern(`\b<start>(?:\s*-\s*<end>)?`),
		fallback: true,
		build:    buildProximity,
	},
	{
		name:     "single timestamp",
		re:       pattern(`(?:<weekday>,?\s*)?<date1>(?:,?\s*<year1>)?,?\s*(?:at\s+|@\s*|from\s+)?<start>`),
		fallback: true,
		build:    buildTimedEvent,
	},
}

// generic runs every generic rule against the cleaned text and keeps every match.
func (e *Engine) generic(text string) found {
	var out found
	sc := &scan{text: text}

	for _, r := range genericRules {
		for _, h := range hits(r.re, text) {
			if r.fallback && sc.claimed.overlaps(h.start, h.end) {
				continue
			}
			h.scan = sc
			f := r.build(e, h)
			if f.empty() {
				continue
			}
			sc.claimed = append(sc.claimed, span{h.start, h.end})
			out.add(f)
		}
	}

	return out
}

// buildTimedEvent handles "<date> <start>[-<end>]" shapes; 2h when no end is given.
func buildTimedEvent(e *Engine, h hit) found {
	d, ok := e.date(h.get("month1"), h.get("day1"), h.get("year1"), 0)
	if !ok {
		return found{}
	}
	seg, ok := e.span(event.NameEvent, d, h.get("start"), h.get("end"), DefaultDuration)
	if !ok {
		return found{}
	}
	return receptions(seg)
}

// buildDateRange handles two full dates; a missing first year borrows the second.
func buildDateRange(e *Engine, h hit) found {
	year1, year2 := h.get("year1"), h.get("year2")
	if year1 == "" {
		year1 = year2
	}

	end, ok := e.date(h.get("month2"), h.get("day2"), year2, yearOf(year1))
	if !ok {
		return found{}
	}
	start, ok := e.date(h.get("month1"), h.get("day1"), year1, end.Year())
	if !ok {
		return found{}
	}
	if start.After(end) && h.get("year1") == "" {
		// "december 1 - january 5, 2025" starts the year before
		start = start.AddDate(-1, 0, 0)
	}
	return exhibition(event.NewSegment(event.NameExhibition, start, end))
}

// buildDayRange handles "<month> <d1>-<d2>, <year>".
func buildDayRange(e *Engine, h hit) found {
	start, ok := e.date(h.get("month1"), h.get("day1"), h.get("year1"), 0)
	if !ok {
		return found{}
	}
	end, ok := e.date(h.get("month1"), h.get("day2"), h.get("year1"), 0)
	if !ok || end.Before(start) {
		return found{}
	}
	return exhibition(event.NewSegment(event.NameExhibition, start, end))
}

// buildDeadline produces a zero-duration segment.
func buildDeadline(e *Engine, h hit) found {
	d, ok := e.date(h.get("month1"), h.get("day1"), h.get("year1"), 0)
	if !ok {
		return found{}
	}
	if clock := h.get("start"); clock != "" {
		if d, ok = e.res.At(d, clock); !ok {
			return found{}
		}
	}
	return receptions(event.NewSegment(event.NameDeadline, d, d))
}

// buildDoorsProgram produces a 30 minute doors segment and a 2h program segment.
func buildDoorsProgram(e *Engine, h hit) found {
	d, ok := e.date(h.get("month1"), h.get("day1"), h.get("year1"), 0)
	if !ok {
		return found{}
	}

	var f found
	if seg, ok := e.span(event.NameDoors, d, h.get("doors"), "", DoorsDuration); ok {
		f.receptions = append(f.receptions, seg)
	}
	if seg, ok := e.span(event.NameProgram, d, h.get("program"), "", DefaultDuration); ok {
		f.receptions = append(f.receptions, seg)
	}
	return f
}

// buildRecurring anchors a recurring pattern to today as one representative occurrence.
func buildRecurring(e *Engine, h hit) found {
	name := "Every " + title(h.get("dow"))
	if label := h.get("label"); label != "" {
		name = title(label)
	}

	today := e.res.Today()
	seg, ok := e.span(name, today, h.get("start"), h.get("end"), DefaultDuration)
	if !ok {
		return found{}
	}
	return receptions(seg)
}

// buildISOSpan handles machine-readable timestamps, typically from <time datetime>
// attributes or JSON-LD. Two plain dates form an exhibition; anything with a clock
// is an event. A single plain date is too weak to report.
func buildISOSpan(e *Engine, h hit) found {
	first, second := h.get("iso1"), h.get("iso2")

	start, ok := e.res.Resolve(first, 0)
	if !ok {
		return found{}
	}
	var end time.Time
	if second != "" {
		if end, ok = e.res.Resolve(second, 0); !ok {
			end = time.Time{}
		}
	}

	if isDateOnly(first) && (second == "" || isDateOnly(second)) {
		if end.IsZero() {
			return found{}
		}
		return exhibition(event.NewSegment(event.NameExhibition, start, end))
	}

	if end.IsZero() {
		end = start.Add(DefaultDuration)
	}
	return receptions(event.NewSegment(event.NameEvent, start, end))
}

func isDateOnly(iso string) bool {
	return !strings.ContainsAny(iso, "t :")
}
