package extract

import (
	"time"

	"github.com/pfrederiksen/eventspan/internal/event"
)

var (
	openingReceptionFull   = pattern(`opening reception:\s*<weekday>,?\s*<date1>,?\s*<year1>,?\s*(?:from\s+)?<start>\s*-\s*<end>`)
	openingReceptionSimple = pattern(`opening reception:\s*<date1>(?:,?\s*<year1>)?,?\s*(?:from\s+)?<start>\s*-\s*<end>`)
	visitDates             = pattern(`\b(?:visit|dates):\s*<date1>\s*-\s*<day2>,?\s*<year1>`)
	opensOn                = pattern(`\bopens on\s+(?:<weekday>,?\s*)?<date1>(?:,?\s*<year1>)?`)
	onViewThrough          = pattern(`\b(?:on view )?through\s+(?:<weekday>,?\s*)?<date1>(?:,?\s*<year1>)?`)
	dateBeforeThrough      = pattern(`<date1>(?:,?\s*<year1>)?,?\s*$`)
)

// labeled runs the short-circuit tier over cleaned text. Any result it returns is
// final; the generic tier is skipped.
func (e *Engine) labeled(text string) event.Parsed {
	var f found

	for _, h := range hits(openingReceptionFull, text) {
		d, ok := e.date(h.get("month1"), h.get("day1"), h.get("year1"), 0)
		if !ok {
			continue
		}
		if seg, ok := e.span(event.NameOpeningReception, d, h.get("start"), h.get("end"), DefaultDuration); ok {
			f.receptions = append(f.receptions, seg)
		}
	}

	for _, h := range hits(visitDates, text) {
		start, ok := e.date(h.get("month1"), h.get("day1"), h.get("year1"), 0)
		if !ok {
			continue
		}
		end, ok := e.date(h.get("month1"), h.get("day2"), h.get("year1"), 0)
		if !ok {
			continue
		}
		f.exhibitions = append(f.exhibitions, event.NewSegment(event.NameExhibition, start, end))
	}

	opens, through := e.opensThrough(text)
	if !opens.IsZero() || !through.IsZero() {
		f.exhibitions = append(f.exhibitions, event.NewSegment(event.NameExhibition, opens, through))
	}

	inferredYear := 0
	if !opens.IsZero() {
		inferredYear = opens.Year()
	}
	for _, h := range hits(openingReceptionSimple, text) {
		d, ok := e.date(h.get("month1"), h.get("day1"), h.get("year1"), inferredYear)
		if !ok {
			continue
		}
		if seg, ok := e.span(event.NameOpeningReception, d, h.get("start"), h.get("end"), DefaultDuration); ok {
			f.receptions = append(f.receptions, seg)
		}
	}

	if f.empty() {
		return event.Parsed{}
	}
	return event.FromCandidates(f.exhibitions, f.receptions)
}

// opensThrough resolves the first "opens on" and "on view through" dates. Either
// may be missing; a date without a year borrows the other's year. A date directly
// in front of "through" counts as the opening date.
func (e *Engine) opensThrough(text string) (opens, through time.Time) {
	var o, t hit
	if found := hits(opensOn, text); len(found) > 0 {
		o = found[0]
	}
	if found := hits(onViewThrough, text); len(found) > 0 {
		t = found[0]
		// "july 1 through july 28" carries its own opening date
		if o.groups == nil {
			if before := hits(dateBeforeThrough, text[:t.start]); len(before) > 0 {
				o = before[0]
			}
		}
	}

	openYear, throughYear := o.get("year1"), t.get("year1")
	if openYear == "" {
		openYear = throughYear
	}
	if throughYear == "" {
		throughYear = openYear
	}

	opens, _ = e.date(o.get("month1"), o.get("day1"), openYear, 0)
	through, _ = e.date(t.get("month1"), t.get("day1"), throughYear, 0)

	if !opens.IsZero() && !through.IsZero() && through.Before(opens) && t.get("year1") == "" {
		through = through.AddDate(1, 0, 0)
	}
	return opens, through
}
