package event

import (
	"crypto/sha1"
	"fmt"
	"time"
)

// Common segment names
const (
	NameEvent            = "Event"
	NameExhibition       = "Exhibition"
	NameOpeningReception = "Opening Reception"
	NameDeadline         = "Deadline"
	NameDoors            = "Doors"
	NameProgram          = "Program"
)

// Segment is one named time span. A zero Start or End means the bound is unknown.
// Deadlines are modeled as Start == End.
type Segment struct {
	Name  string    `json:"name"`
	Start time.Time `json:"start,omitzero"`
	End   time.Time `json:"end,omitzero"`
}

// NewSegment creates a Segment
func NewSegment(name string, start, end time.Time) Segment {
	return Segment{Name: name, Start: start, End: end}
}

// Key returns the deduplication identity of a segment: (name, start, end).
func (s Segment) Key() string {
	return fmt.Sprintf("%s|%d|%d", s.Name, unixMilli(s.Start), unixMilli(s.End))
}

// ID creates a deterministic identifier for the segment based on its identity key
func (s Segment) ID() string {
	h := sha1.New()
	h.Write([]byte(s.Key()))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// IsZero reports whether the segment carries no time information at all.
func (s Segment) IsZero() bool {
	return s.Start.IsZero() && s.End.IsZero()
}

// Duration returns End-Start, or 0 when either bound is unknown.
func (s Segment) Duration() time.Duration {
	if s.Start.IsZero() || s.End.IsZero() {
		return 0
	}
	return s.End.Sub(s.Start)
}

// Parsed is the result of an extraction call.
type Parsed struct {
	Exhibition *Segment  `json:"exhibition,omitempty"`
	Receptions []Segment `json:"receptions,omitempty"`
}

// IsEmpty reports whether nothing was found.
func (p Parsed) IsEmpty() bool {
	return p.Exhibition == nil && len(p.Receptions) == 0
}

// Segments returns the exhibition (if any) followed by the receptions.
func (p Parsed) Segments() []Segment {
	out := make([]Segment, 0, len(p.Receptions)+1)
	if p.Exhibition != nil {
		out = append(out, *p.Exhibition)
	}
	return append(out, p.Receptions...)
}

func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
