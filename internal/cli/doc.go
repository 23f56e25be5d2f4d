// Package cli implements the eventspan command-line interface.
//
// Commands extract event dates from text (extract), from a web page (scrape) and from
// every item of an RSS/Atom feed (feed), and manage the persisted page cache (cache).
// Results are printed as text, JSON or iCalendar.
package cli
