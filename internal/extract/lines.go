package extract

import (
	"regexp"

	"github.com/pfrederiksen/eventspan/internal/event"
)

var (
	lineYear = regexp.MustCompile(`^(?:19|20)\d{2}$`)
	lineSlot = regexp.MustCompile(`\b(doors|program|starts)(?:\s+(?:open|at))?:?\s*(?:at\s+)?(\d{1,2}(?::\d{2})?)(am|pm|a|p)?\b`)
)

// scanLines walks bullet or multi-line listings, carrying the most recent date and
// year forward, and attaches "doors:", "program:" and "starts:" lines to that date.
// A slot without a meridiem is read as pm.
func (e *Engine) scanLines(lines []string) []event.Segment {
	var out []event.Segment
	var month, day, year string

	for _, line := range lines {
		if lineYear.MatchString(line) {
			year = line
			continue
		}
		if dates := hits(anyDate, line); len(dates) > 0 {
			last := dates[len(dates)-1]
			month, day = last.get("month1"), last.get("day1")
			if y := last.get("year1"); y != "" {
				year = y
			}
		}
		if month == "" {
			continue
		}

		for _, m := range lineSlot.FindAllStringSubmatch(line, -1) {
			meridiem := m[3]
			if meridiem == "" {
				meridiem = "pm"
			}
			d, ok := e.date(month, day, year, 0)
			if !ok {
				continue
			}

			name, dur := event.NameEvent, DefaultDuration
			switch m[1] {
			case "doors":
				name, dur = event.NameDoors, DoorsDuration
			case "program":
				name = event.NameProgram
			}

			if seg, ok := e.span(name, d, m[2]+meridiem, "", dur); ok {
				out = append(out, seg)
			}
		}
	}

	return out
}
