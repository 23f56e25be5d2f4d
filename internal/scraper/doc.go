// Package scraper fetches event pages and collects the text that carries their dates.
//
// An HTTPFetcher downloads and parses a page with goquery, retrying transient failures.
// A Collector then pulls date-bearing snippets out of the document: JSON-LD event data,
// microdata attributes, <time> elements, date-flavored CSS selectors, keyword-bearing
// leaf elements and per-site selector overrides. The snippets are joined into one text
// for the extraction engine.
package scraper
