package event

import (
	"testing"
	"time"
)

func TestSegmentKey(t *testing.T) {
	start := time.Date(2024, 7, 12, 18, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	tests := []struct {
		name        string
		a, b        Segment
		shouldMatch bool
	}{
		{
			name:        "identical segments",
			a:           NewSegment("Opening Reception", start, end),
			b:           NewSegment("Opening Reception", start, end),
			shouldMatch: true,
		},
		{
			name:        "name case is significant",
			a:           NewSegment("Opening Reception", start, end),
			b:           NewSegment("opening reception", start, end),
			shouldMatch: false,
		},
		{
			name:        "same instant in another zone",
			a:           NewSegment("Event", start, end),
			b:           NewSegment("Event", start.In(time.FixedZone("EDT", -4*3600)), end),
			shouldMatch: true,
		},
		{
			name:        "different end",
			a:           NewSegment("Event", start, end),
			b:           NewSegment("Event", start, end.Add(time.Hour)),
			shouldMatch: false,
		},
		{
			name:        "missing start",
			a:           NewSegment("Exhibition", time.Time{}, end),
			b:           NewSegment("Exhibition", start, end),
			shouldMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := tt.a.Key() == tt.b.Key()
			if match != tt.shouldMatch {
				t.Errorf("Key(%+v) vs Key(%+v): match=%v, want %v", tt.a, tt.b, match, tt.shouldMatch)
			}
			if match && tt.a.ID() != tt.b.ID() {
				t.Errorf("ID should follow Key, got %s vs %s", tt.a.ID(), tt.b.ID())
			}
		})
	}
}

func TestSegmentID(t *testing.T) {
	seg := NewSegment("Deadline", time.Date(2025, 4, 5, 18, 30, 0, 0, time.UTC), time.Date(2025, 4, 5, 18, 30, 0, 0, time.UTC))

	id := seg.ID()
	if id != seg.ID() {
		t.Error("ID should be deterministic")
	}
	if len(id) != 40 { // SHA1 produces 40 hex characters
		t.Errorf("expected ID length of 40, got %d", len(id))
	}
	if seg.Duration() != 0 {
		t.Errorf("deadline duration = %v, want 0", seg.Duration())
	}
}

func TestParsed_IsEmpty(t *testing.T) {
	var empty Parsed
	if !empty.IsEmpty() {
		t.Error("zero Parsed should be empty")
	}

	exh := NewSegment(NameExhibition, time.Now(), time.Time{})
	if (Parsed{Exhibition: &exh}).IsEmpty() {
		t.Error("Parsed with exhibition should not be empty")
	}

	withReception := Parsed{Receptions: []Segment{NewSegment(NameEvent, time.Now(), time.Now())}}
	if withReception.IsEmpty() {
		t.Error("Parsed with reception should not be empty")
	}
	if got := len(withReception.Segments()); got != 1 {
		t.Errorf("Segments() returned %d, want 1", got)
	}
}
