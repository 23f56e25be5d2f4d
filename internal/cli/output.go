package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pfrederiksen/eventspan/internal/calendar"
	"github.com/pfrederiksen/eventspan/internal/event"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatICS  OutputFormat = "ics"
)

// ParseFormat validates a --format value
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatICS:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format: %s (want text, json or ics)", s)
	}
}

const (
	dateLayout     = "Mon Jan 2, 2006"
	dateTimeLayout = "Mon Jan 2, 2006 3:04 PM"
	timeLayout     = "3:04 PM"
)

// Result is the extraction outcome for one input
type Result struct {
	Title  string       `json:"title,omitempty"`
	Source string       `json:"source,omitempty"`
	Events event.Parsed `json:"events"`
}

// Output contains data to be output
type Output struct {
	ExtractedAt time.Time `json:"extracted_at"`
	Results     []Result  `json:"results"`
	EventCount  int       `json:"event_count"`
}

// NewOutput wraps results and counts their segments
func NewOutput(results []Result) *Output {
	out := &Output{ExtractedAt: time.Now().UTC(), Results: results}
	for _, r := range results {
		out.EventCount += len(r.Events.Segments())
	}
	return out
}

// WriteOutput writes the output in the specified format
func WriteOutput(w io.Writer, out *Output, format OutputFormat, order SortOrder, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, out)
	case FormatText:
		return writeText(w, out, order, verbose)
	case FormatICS:
		return writeICS(w, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, out *Output) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func writeICS(w io.Writer, out *Output) error {
	sources := make([]calendar.Source, 0, len(out.Results))
	for _, r := range out.Results {
		sources = append(sources, calendar.Source{Title: r.Title, URL: r.Source, Parsed: r.Events})
	}
	now := func() time.Time { return out.ExtractedAt }
	_, err := io.WriteString(w, calendar.Generate(sources, calendar.Options{Name: "eventspan", Now: now}))
	return err
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, out *Output, order SortOrder, verbose bool) error {
	if out.EventCount == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}

	labeled := len(out.Results) > 1
	for _, r := range out.Results {
		if r.Events.IsEmpty() && labeled {
			continue
		}
		indent := ""
		if heading := resultHeading(r); heading != "" && (labeled || r.Source != "") {
			fmt.Fprintf(w, "\n%s\n", heading)
			indent = "  "
		}

		if ex := r.Events.Exhibition; ex != nil {
			writeSegment(w, indent, *ex, true, verbose)
		}
		receptions := append([]event.Segment(nil), r.Events.Receptions...)
		sortSegments(receptions, order)
		for _, seg := range receptions {
			writeSegment(w, indent, seg, false, verbose)
		}
	}

	fmt.Fprintf(w, "\nTotal: %d events\n", out.EventCount)
	return nil
}

func resultHeading(r Result) string {
	switch {
	case r.Title != "" && r.Source != "":
		return fmt.Sprintf("%s (%s)", r.Title, r.Source)
	case r.Title != "":
		return r.Title
	default:
		return r.Source
	}
}

func writeSegment(w io.Writer, indent string, seg event.Segment, allDay, verbose bool) {
	fmt.Fprintf(w, "%s%s: %s\n", indent, seg.Name, formatSpan(seg, allDay))
	if verbose {
		fmt.Fprintf(w, "%s     ID: %s\n", indent, seg.ID())
	}
}

// formatSpan renders a segment's bounds. Unknown bounds are shown as "?".
func formatSpan(seg event.Segment, allDay bool) string {
	layout := dateTimeLayout
	if allDay {
		layout = dateLayout
	}
	start, end := "?", "?"
	if !seg.Start.IsZero() {
		start = seg.Start.Format(layout)
	}
	if !seg.End.IsZero() {
		end = seg.End.Format(layout)
		if !allDay && !seg.Start.IsZero() && sameDay(seg.Start, seg.End) {
			end = seg.End.Format(timeLayout)
		}
	}

	switch {
	case !seg.Start.IsZero() && seg.Start.Equal(seg.End):
		return start
	case seg.End.IsZero():
		return start + " onward"
	default:
		return start + " - " + end
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
