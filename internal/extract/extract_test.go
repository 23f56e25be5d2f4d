package extract

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/eventspan/internal/datetime"
	"github.com/pfrederiksen/eventspan/internal/event"
)

var (
	local    = time.FixedZone("EDT", -4*3600)
	fixedNow = time.Date(2026, time.March, 3, 15, 45, 0, 0, time.UTC)
)

func testEngine() *Engine {
	return New(&datetime.Resolver{
		Location: local,
		Now:      func() time.Time { return fixedNow },
	})
}

func at(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, local)
}

// wantSegment checks a segment's name and bounds
func wantSegment(t *testing.T, got event.Segment, name string, start, end time.Time) {
	t.Helper()
	if got.Name != name {
		t.Errorf("name = %q, want %q", got.Name, name)
	}
	if !got.Start.Equal(start) {
		t.Errorf("%s start = %v, want %v", name, got.Start, start)
	}
	if !got.End.Equal(end) {
		t.Errorf("%s end = %v, want %v", name, got.End, end)
	}
}

func findReception(p event.Parsed, name string) (event.Segment, bool) {
	for _, r := range p.Receptions {
		if r.Name == name {
			return r, true
		}
	}
	return event.Segment{}, false
}

func TestExtract_Scenarios(t *testing.T) {
	e := testEngine()

	t.Run("separator with hour range", func(t *testing.T) {
		got := e.Extract("June 24 | 5-9pm")
		if got.Exhibition != nil {
			t.Errorf("unexpected exhibition %+v", got.Exhibition)
		}
		if len(got.Receptions) != 1 {
			t.Fatalf("got %d receptions, want 1: %+v", len(got.Receptions), got.Receptions)
		}
		wantSegment(t, got.Receptions[0], event.NameEvent, at(2026, 6, 24, 17, 0), at(2026, 6, 24, 21, 0))
	})

	t.Run("separator with single time", func(t *testing.T) {
		got := e.Extract("February 15 | 3pm")
		if len(got.Receptions) != 1 {
			t.Fatalf("got %d receptions, want 1: %+v", len(got.Receptions), got.Receptions)
		}
		wantSegment(t, got.Receptions[0], event.NameEvent, at(2026, 2, 15, 15, 0), at(2026, 2, 15, 17, 0))
	})

	t.Run("opens on, on view through and opening reception", func(t *testing.T) {
		got := e.Extract("Opens on July 12, 2024 at the PS 122 Gallery, On view through July 28, 2024. Opening reception: July 12, 6:00-8:00pm")
		if got.Exhibition == nil {
			t.Fatal("expected exhibition")
		}
		wantSegment(t, *got.Exhibition, event.NameExhibition, at(2024, 7, 12, 0, 0), at(2024, 7, 28, 0, 0))
		if len(got.Receptions) != 1 {
			t.Fatalf("got %d receptions, want 1: %+v", len(got.Receptions), got.Receptions)
		}
		wantSegment(t, got.Receptions[0], event.NameOpeningReception, at(2024, 7, 12, 18, 0), at(2024, 7, 12, 20, 0))
	})

	t.Run("deadline", func(t *testing.T) {
		got := e.Extract("deadline: saturday, april 5, 2025 at 6:30pm")
		if len(got.Receptions) != 1 {
			t.Fatalf("got %d receptions, want 1: %+v", len(got.Receptions), got.Receptions)
		}
		deadline := at(2025, 4, 5, 18, 30)
		wantSegment(t, got.Receptions[0], event.NameDeadline, deadline, deadline)
	})

	t.Run("unparseable text", func(t *testing.T) {
		if got := e.Extract("Come see the show!"); !got.IsEmpty() {
			t.Errorf("expected empty result, got %+v", got)
		}
	})
}

func TestExtract_NoDatesIsEmpty(t *testing.T) {
	e := testEngine()

	inputs := []string{
		"",
		"   \n\t ",
		"Come see the show!",
		"New paintings by local artists. Free admission, all welcome.",
		"Call 555-1234 for details",
		"Room 12 - 14 on the second floor",
		"Opening reception: to be announced",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			if got := e.Extract(in); !got.IsEmpty() {
				t.Errorf("Extract(%q) = %+v, want empty", in, got)
			}
		})
	}
}

func TestExtract_ShortCircuit(t *testing.T) {
	e := testEngine()

	got := e.Extract("Artist talk February 15 | 3pm. Opening reception: July 12, 2024, 6-8pm")
	if len(got.Receptions) != 1 {
		t.Fatalf("got %d receptions, want only the labeled one: %+v", len(got.Receptions), got.Receptions)
	}
	wantSegment(t, got.Receptions[0], event.NameOpeningReception, at(2024, 7, 12, 18, 0), at(2024, 7, 12, 20, 0))
}

func TestExtract_OpeningReceptionWithWeekday(t *testing.T) {
	e := testEngine()

	got := e.Extract("Opening Reception: Friday, September 6th, 2024, 6:00 – 8:00 PM")
	if len(got.Receptions) != 1 {
		t.Fatalf("got %d receptions, want 1: %+v", len(got.Receptions), got.Receptions)
	}
	wantSegment(t, got.Receptions[0], event.NameOpeningReception, at(2024, 9, 6, 18, 0), at(2024, 9, 6, 20, 0))
}

func TestExtract_OpeningReceptionYearInference(t *testing.T) {
	e := testEngine()

	got := e.Extract("Opening reception: May 2, 6-9pm")
	if len(got.Receptions) != 1 {
		t.Fatalf("got %d receptions, want 1: %+v", len(got.Receptions), got.Receptions)
	}
	wantSegment(t, got.Receptions[0], event.NameOpeningReception, at(2026, 5, 2, 18, 0), at(2026, 5, 2, 21, 0))
}

func TestExtract_DefaultDurations(t *testing.T) {
	e := testEngine()

	t.Run("single timestamp lasts two hours", func(t *testing.T) {
		got := e.Extract("Join us on Thursday, March 12, 2026 at 7pm")
		if len(got.Receptions) != 1 {
			t.Fatalf("got %d receptions, want 1: %+v", len(got.Receptions), got.Receptions)
		}
		r := got.Receptions[0]
		if r.Duration() != 2*time.Hour {
			t.Errorf("duration = %v, want 2h", r.Duration())
		}
		wantSegment(t, r, event.NameEvent, at(2026, 3, 12, 19, 0), at(2026, 3, 12, 21, 0))
	})

	t.Run("doors last thirty minutes", func(t *testing.T) {
		got := e.Extract("July 12, 2024 doors 7:30p, program 8pm")
		doors, ok := findReception(got, event.NameDoors)
		if !ok {
			t.Fatalf("no doors segment in %+v", got.Receptions)
		}
		if doors.Duration() != 30*time.Minute {
			t.Errorf("doors duration = %v, want 30m", doors.Duration())
		}
		wantSegment(t, doors, event.NameDoors, at(2024, 7, 12, 19, 30), at(2024, 7, 12, 20, 0))

		program, ok := findReception(got, event.NameProgram)
		if !ok {
			t.Fatalf("no program segment in %+v", got.Receptions)
		}
		wantSegment(t, program, event.NameProgram, at(2024, 7, 12, 20, 0), at(2024, 7, 12, 22, 0))

		if len(got.Receptions) != 2 {
			t.Errorf("got %d receptions, want 2: %+v", len(got.Receptions), got.Receptions)
		}
	})
}

func TestExtract_Deduplicates(t *testing.T) {
	e := testEngine()

	got := e.Extract("June 24 | 5-9pm\nJune 24 | 5-9pm")
	if len(got.Receptions) != 1 {
		t.Errorf("got %d receptions, want 1: %+v", len(got.Receptions), got.Receptions)
	}
}

func TestExtract_ExhibitionRanges(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name  string
		text  string
		start time.Time
		end   time.Time
	}{
		{"from to", "On view from July 12 to August 3, 2024", at(2024, 7, 12, 0, 0), at(2024, 8, 3, 0, 0)},
		{"two full dates", "July 12, 2024 - August 3, 2024", at(2024, 7, 12, 0, 0), at(2024, 8, 3, 0, 0)},
		{"day range", "Jul 12-28, 2024", at(2024, 7, 12, 0, 0), at(2024, 7, 28, 0, 0)},
		{"month range", "July 12 - August 3, 2024", at(2024, 7, 12, 0, 0), at(2024, 8, 3, 0, 0)},
		{"across new year", "December 1 - January 5, 2025", at(2024, 12, 1, 0, 0), at(2025, 1, 5, 0, 0)},
		{"visit label", "Visit: March 3-29, 2025", at(2025, 3, 3, 0, 0), at(2025, 3, 29, 0, 0)},
		{"date through date", "July 1 through July 28, 2024", at(2024, 7, 1, 0, 0), at(2024, 7, 28, 0, 0)},
		{"iso dates", "2024-07-12 / 2024-07-28", at(2024, 7, 12, 0, 0), at(2024, 7, 28, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.text)
			if got.Exhibition == nil {
				t.Fatalf("Extract(%q) found no exhibition: %+v", tt.text, got)
			}
			wantSegment(t, *got.Exhibition, event.NameExhibition, tt.start, tt.end)
		})
	}
}

func TestExtract_OpensOnly(t *testing.T) {
	e := testEngine()

	got := e.Extract("The exhibition opens on September 5, 2024.")
	if got.Exhibition == nil {
		t.Fatal("expected exhibition")
	}
	if !got.Exhibition.Start.Equal(at(2024, 9, 5, 0, 0)) {
		t.Errorf("start = %v, want 2024-09-05", got.Exhibition.Start)
	}
	if !got.Exhibition.End.IsZero() {
		t.Errorf("end = %v, want absent", got.Exhibition.End)
	}
}

func TestExtract_Deadlines(t *testing.T) {
	e := testEngine()

	got := e.Extract("Applications due: March 1, 2026")
	if len(got.Receptions) != 1 {
		t.Fatalf("got %d receptions, want 1: %+v", len(got.Receptions), got.Receptions)
	}
	wantSegment(t, got.Receptions[0], event.NameDeadline, at(2026, 3, 1, 0, 0), at(2026, 3, 1, 0, 0))
}

func TestExtract_Recurring(t *testing.T) {
	e := testEngine()

	tests := []struct {
		text  string
		name  string
		start time.Time
		end   time.Time
	}{
		{"Open every Wednesday from 6-8pm", "Every Wednesday", at(2026, 3, 3, 18, 0), at(2026, 3, 3, 20, 0)},
		{"Weekends only: 12-5pm", "Weekends", at(2026, 3, 3, 12, 0), at(2026, 3, 3, 17, 0)},
		{"Gallery open daily 10am-6pm", "Daily", at(2026, 3, 3, 10, 0), at(2026, 3, 3, 18, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := e.Extract(tt.text)
			if len(got.Receptions) != 1 {
				t.Fatalf("got %d receptions, want 1: %+v", len(got.Receptions), got.Receptions)
			}
			wantSegment(t, got.Receptions[0], tt.name, tt.start, tt.end)
		})
	}
}

func TestExtract_KeywordProximity(t *testing.T) {
	e := testEngine()

	got := e.Extract("July 12, 2024 - Screening 7pm at Anthology Film Archives")
	r, ok := findReception(got, "Screening")
	if !ok {
		t.Fatalf("no screening segment in %+v", got.Receptions)
	}
	wantSegment(t, r, "Screening", at(2024, 7, 12, 19, 0), at(2024, 7, 12, 21, 0))
}

func TestExtract_KeywordProximityLongListing(t *testing.T) {
	e := testEngine()

	var b strings.Builder
	for i := range 2000 {
		fmt.Fprintf(&b, "March %d gallery news and notes\nscreening 7pm\n", i%28+1)
	}

	began := time.Now()
	got := e.Extract(b.String())
	if elapsed := time.Since(began); elapsed > 2*time.Second {
		t.Errorf("Extract took %v on a %d byte listing", elapsed, b.Len())
	}

	if len(got.Receptions) != 28 {
		t.Fatalf("got %d receptions, want 28", len(got.Receptions))
	}
	wantSegment(t, got.Receptions[0], "Screening", at(2026, 3, 1, 19, 0), at(2026, 3, 1, 21, 0))
	wantSegment(t, got.Receptions[27], "Screening", at(2026, 3, 28, 19, 0), at(2026, 3, 28, 21, 0))
}

func TestExtract_LeapDay(t *testing.T) {
	e := testEngine()

	if got := e.Extract("Feb 29 at 7pm"); !got.IsEmpty() {
		t.Errorf("February 29 without a year in 2026 should not resolve, got %+v", got)
	}

	got := e.Extract("Feb 29, 2028 at 7pm")
	if len(got.Receptions) != 1 {
		t.Fatalf("got %d receptions, want 1: %+v", len(got.Receptions), got.Receptions)
	}
	wantSegment(t, got.Receptions[0], event.NameEvent, at(2028, 2, 29, 19, 0), at(2028, 2, 29, 21, 0))
}

func TestExtract_ShortMeridiem(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name       string
		text       string
		start, end time.Time
	}{
		{"single time", "Saturday, March 7, 2026, 7:30p", at(2026, 3, 7, 19, 30), at(2026, 3, 7, 21, 30)},
		{"time range", "June 24, 2026, 7p-9p", at(2026, 6, 24, 19, 0), at(2026, 6, 24, 21, 0)},
		{"morning range", "June 24, 2026 10a-12p", at(2026, 6, 24, 10, 0), at(2026, 6, 24, 12, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.text)
			if len(got.Receptions) != 1 {
				t.Fatalf("Extract(%q) gave %d receptions, want 1: %+v", tt.text, len(got.Receptions), got.Receptions)
			}
			wantSegment(t, got.Receptions[0], event.NameEvent, tt.start, tt.end)
		})
	}
}

func TestExtract_BulletLines(t *testing.T) {
	e := testEngine()

	text := "Saturday, July 12, 2024\n• Doors: 7\n• Program: 8pm"
	got := e.Extract(text)

	doors, ok := findReception(got, event.NameDoors)
	if !ok {
		t.Fatalf("no doors segment in %+v", got.Receptions)
	}
	wantSegment(t, doors, event.NameDoors, at(2024, 7, 12, 19, 0), at(2024, 7, 12, 19, 30))

	program, ok := findReception(got, event.NameProgram)
	if !ok {
		t.Fatalf("no program segment in %+v", got.Receptions)
	}
	wantSegment(t, program, event.NameProgram, at(2024, 7, 12, 20, 0), at(2024, 7, 12, 22, 0))

	if len(got.Receptions) != 2 {
		t.Errorf("got %d receptions, want 2: %+v", len(got.Receptions), got.Receptions)
	}
}

func TestExtract_ISOTimestamps(t *testing.T) {
	e := testEngine()

	got := e.Extract("2024-07-12T18:00:00Z - 2024-07-12T20:00:00Z")
	if len(got.Receptions) != 1 {
		t.Fatalf("got %d receptions, want 1: %+v", len(got.Receptions), got.Receptions)
	}
	wantSegment(t, got.Receptions[0], event.NameEvent,
		time.Date(2024, 7, 12, 18, 0, 0, 0, time.UTC),
		time.Date(2024, 7, 12, 20, 0, 0, 0, time.UTC))

	if got := e.Extract("Published 2024-07-12"); !got.IsEmpty() {
		t.Errorf("a lone ISO date should not produce events, got %+v", got)
	}
}

func TestExtract_Blocks(t *testing.T) {
	e := testEngine()

	text := "Exhibition dates: July 1-28, 2024. Opening reception: Saturday, July 6, 2024, 6-8pm. Viewing hours: Wed-Sun 11am-6pm"
	got := e.Extract(text)

	if got.Exhibition == nil {
		t.Fatal("expected exhibition")
	}
	wantSegment(t, *got.Exhibition, event.NameExhibition, at(2024, 7, 1, 0, 0), at(2024, 7, 28, 0, 0))

	if len(got.Receptions) != 1 {
		t.Fatalf("got %d receptions, want 1: %+v", len(got.Receptions), got.Receptions)
	}
	wantSegment(t, got.Receptions[0], event.NameOpeningReception, at(2024, 7, 6, 18, 0), at(2024, 7, 6, 20, 0))
}
