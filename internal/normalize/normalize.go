// Package normalize canonicalizes free-form event text before pattern matching.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	gluedMeridiem = regexp.MustCompile(`(am|pm)([A-Z])`)
	gluedYear     = regexp.MustCompile(`(\d{4})([A-Z])`)

	monthAbbrev = regexp.MustCompile(`\b(jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec)\b\.?`)
	ordinal     = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)\b`)
	bullet      = regexp.MustCompile(`^\s*[•·▪►‣◦*\-–—|]`)
	whitespace  = regexp.MustCompile(`\s+`)

	dashes       = strings.NewReplacer("–", "-", "—", "-", "‒", "-", "―", "-")
	dottedAMPM   = regexp.MustCompile(`([\d\s])([ap])\.m\.?`)
	sharedAMPM   = regexp.MustCompile(`\b(\d{1,2}(?::\d{2})?)\s*-\s*(\d{1,2}(?::\d{2})?)\s*(am|pm)\b`)
	meridiemDash = regexp.MustCompile(`(\d)\s*(am|pm)\s*-\s*(\d)`)
	spacedAMPM   = regexp.MustCompile(`(\d)\s+(am|pm)\b`)
)

var months = map[string]string{
	"jan":  "january",
	"feb":  "february",
	"mar":  "march",
	"apr":  "april",
	"jun":  "june",
	"jul":  "july",
	"aug":  "august",
	"sep":  "september",
	"sept": "september",
	"oct":  "october",
	"nov":  "november",
	"dec":  "december",
}

// Text normalizes raw text for matching. The case-sensitive un-gluing step runs
// before lowercasing because it depends on capital letters.
func Text(s string) string {
	s = gluedMeridiem.ReplaceAllString(s, "$1 $2")
	s = gluedYear.ReplaceAllString(s, "$1 $2")

	s = strings.ToLower(s)

	s = monthAbbrev.ReplaceAllStringFunc(s, func(m string) string {
		return months[strings.TrimSuffix(m, ".")]
	})
	s = ordinal.ReplaceAllString(s, "$1")
	s = bullet.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// Clean is the second stage applied to normalized text: dashes become "-" and
// hour ranges sharing one meridiem get it on both sides ("6 - 8 pm" -> "6pm-8pm").
func Clean(s string) string {
	s = dashes.Replace(s)
	s = dottedAMPM.ReplaceAllString(s, "${1}${2}m")
	s = spacedAMPM.ReplaceAllString(s, "$1$2")
	s = sharedAMPM.ReplaceAllStringFunc(s, splitMeridiem)
	s = meridiemDash.ReplaceAllString(s, "$1$2-$3")
	return s
}

// Lines splits raw text into normalized, cleaned, non-empty lines.
func Lines(s string) []string {
	raw := strings.Split(s, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = Clean(Text(line))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// splitMeridiem rewrites "H-Hpm" as "Hpm-Hpm". When the first hour is later on the
// clock than the second ("10-2pm") the first side is taken to be morning.
func splitMeridiem(m string) string {
	g := sharedAMPM.FindStringSubmatch(m)
	first, second, meridiem := g[1], g[2], g[3]

	firstMeridiem := meridiem
	if meridiem == "pm" && clockHour(first) > clockHour(second) {
		firstMeridiem = "am"
	}
	return first + firstMeridiem + "-" + second + meridiem
}

// clockHour returns the hour of an "H" or "H:MM" string on a 0-11 clock.
func clockHour(s string) int {
	h, _, _ := strings.Cut(s, ":")
	n, err := strconv.Atoi(h)
	if err != nil {
		return 0
	}
	return n % 12
}
