// Package storage persists the scrape cache as JSON between runs.
//
// The cache lives in cache.json under the data directory, which defaults to
// ~/.local/share/eventspan/. Entries map a normalized page URL to the events that
// were extracted from it.
package storage
