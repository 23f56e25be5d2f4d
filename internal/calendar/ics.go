// Package calendar exports extracted events as iCalendar data.
package calendar

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/pfrederiksen/eventspan/internal/event"
)

const productID = "-//eventspan//eventspan//EN"

// Source is one page or text whose events are exported together
type Source struct {
	Title  string
	URL    string
	Parsed event.Parsed
}

// Options controls calendar generation
type Options struct {
	Name string
	// Now stamps DTSTAMP; nil means time.Now.
	Now func() time.Time
}

// Generate renders all sources as one VCALENDAR. Exhibitions become all-day events
// spanning their run; receptions become timed events.
func Generate(sources []Source, opts Options) string {
	return Build(sources, opts).Serialize()
}

// Build creates the calendar without serializing it
func Build(sources []Source, opts Options) *ical.Calendar {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	stamp := now().UTC()

	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ical.MethodPublish)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}

	for _, src := range sources {
		if ex := src.Parsed.Exhibition; ex != nil && !ex.IsZero() {
			addExhibition(cal, src, *ex, stamp)
		}
		for _, r := range src.Parsed.Receptions {
			if r.Start.IsZero() {
				continue
			}
			addReception(cal, src, r, stamp)
		}
	}

	return cal
}

// addExhibition writes an all-day event. DTEND is exclusive, so the last day is
// pushed one day forward.
func addExhibition(cal *ical.Calendar, src Source, seg event.Segment, stamp time.Time) {
	start, end := seg.Start, seg.End
	if start.IsZero() {
		start = end
	}
	if end.IsZero() || end.Before(start) {
		end = start
	}

	ve := newEvent(cal, src, seg, stamp)
	ve.SetAllDayStartAt(start)
	ve.SetAllDayEndAt(end.AddDate(0, 0, 1))
}

func addReception(cal *ical.Calendar, src Source, seg event.Segment, stamp time.Time) {
	end := seg.End
	if end.IsZero() {
		end = seg.Start
	}

	ve := newEvent(cal, src, seg, stamp)
	ve.SetStartAt(seg.Start)
	ve.SetEndAt(end)
}

func newEvent(cal *ical.Calendar, src Source, seg event.Segment, stamp time.Time) *ical.VEvent {
	ve := cal.AddEvent(seg.ID() + "@eventspan")
	ve.SetDtStampTime(stamp)
	ve.SetSummary(summary(src.Title, seg.Name))
	if src.URL != "" {
		ve.SetURL(src.URL)
	}
	return ve
}

func summary(title, name string) string {
	if title == "" {
		return name
	}
	return title + " - " + name
}
