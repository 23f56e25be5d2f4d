package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/pfrederiksen/eventspan/internal/event"
)

// SortOrder represents the available sorting options for receptions
type SortOrder string

const (
	SortByAppearance SortOrder = "appearance"
	SortByStart      SortOrder = "start"
	SortByName       SortOrder = "name"
)

// ParseSortOrder validates a --sort value
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case SortByAppearance, SortByStart, SortByName:
		return o, nil
	case "":
		return SortByAppearance, nil
	default:
		return "", fmt.Errorf("unknown sort order: %s", s)
	}
}

// sortSegments sorts segments in place. Appearance order leaves them untouched.
func sortSegments(segs []event.Segment, order SortOrder) {
	switch order {
	case SortByStart:
		slices.SortStableFunc(segs, compareByStart)
	case SortByName:
		slices.SortStableFunc(segs, func(a, b event.Segment) int {
			if c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
				return c
			}
			// If names are equal, sort by start
			return compareByStart(a, b)
		})
	}
}

// compareByStart orders known starts first, earliest first
func compareByStart(a, b event.Segment) int {
	switch {
	case a.Start.IsZero() && b.Start.IsZero():
		return 0
	case a.Start.IsZero():
		return 1
	case b.Start.IsZero():
		return -1
	default:
		return a.Start.Compare(b.Start)
	}
}
