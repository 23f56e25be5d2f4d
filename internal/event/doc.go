// Package event provides the value types produced by time-range extraction.
//
// A Segment is one named span of time (an exhibition run, a reception, a deadline).
// Parsed groups the single best exhibition span with any number of secondary
// reception spans. An empty Parsed is the "nothing found" result; extraction never
// reports errors through these types. The merge helpers combine candidate results
// gathered from different rules, text blocks or web snippets into one Parsed.
package event
