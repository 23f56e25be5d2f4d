package extract

import (
	"strings"
	"unicode"

	"github.com/pfrederiksen/eventspan/internal/event"
)

// proximityWindow is how many bytes before a time token are searched for an
// activity keyword.
const proximityWindow = 50

// activityKeywords name the segment synthesized around a nearby time token
var activityKeywords = []string{
	"screening",
	"book launch",
	"book signing",
	"artist talk",
	"panel discussion",
	"performance",
	"workshop",
	"concert",
	"lecture",
	"reading",
	"reception",
	"opening",
	"closing",
	"party",
	"talk",
	"panel",
	"tour",
	"doors",
	"program",
	"film",
	"show",
}

var anyDate = pattern(`<date1>(?:,?\s*<year1>)?`)

// buildProximity recovers events from glued or loosely formatted text: a time token
// preceded by an activity keyword, dated by the closest date mentioned before it.
func buildProximity(e *Engine, h hit) found {
	window := h.text[max(0, h.start-proximityWindow):h.start]
	keyword, ok := nearestKeyword(window)
	if !ok {
		return found{}
	}

	sc := h.scan
	if sc == nil {
		sc = &scan{text: h.text}
	}
	last, ok := sc.lastDateBefore(h.start)
	if !ok {
		return found{}
	}

	d, ok := e.date(last.get("month1"), last.get("day1"), last.get("year1"), 0)
	if !ok {
		return found{}
	}

	dur := DefaultDuration
	if keyword == "doors" {
		dur = DoorsDuration
	}
	seg, ok := e.span(keywordSegmentName(keyword), d, h.get("start"), h.get("end"), dur)
	if !ok {
		return found{}
	}
	return receptions(seg)
}

// nearestKeyword returns the activity keyword closest to the end of window. Ties go
// to the longer keyword.
func nearestKeyword(window string) (string, bool) {
	best, bestScore := "", -1
	for _, kw := range activityKeywords {
		score := proximityScore(window, kw)
		if score < 0 {
			continue
		}
		if bestScore < 0 || score < bestScore || (score == bestScore && len(kw) > len(best)) {
			best, bestScore = kw, score
		}
	}
	return best, bestScore >= 0
}

// proximityScore is the distance in bytes between the last whole-word occurrence of
// keyword in window and the end of window, or -1 when it does not occur.
func proximityScore(window, keyword string) int {
	for end := len(window); end > 0; {
		idx := strings.LastIndex(window[:end], keyword)
		if idx < 0 {
			return -1
		}
		after := idx + len(keyword)
		if isBoundary(window, idx-1) && isBoundary(window, after) {
			return len(window) - after
		}
		end = idx
	}
	return -1
}

func isBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	r := rune(s[i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// keywordSegmentName maps a keyword to the name used for its segment
func keywordSegmentName(keyword string) string {
	switch keyword {
	case "doors":
		return event.NameDoors
	case "program":
		return event.NameProgram
	}
	return title(keyword)
}
