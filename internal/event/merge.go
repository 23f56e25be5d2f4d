package event

// Completeness scores how fully specified a segment is: (start or 0) + (end or 0)
// in unix milliseconds. Segments with both bounds outrank those with one.
func Completeness(s Segment) int64 {
	return unixMilli(s.Start) + unixMilli(s.End)
}

// Merge combines candidate results. The exhibition with the highest Completeness
// wins (first seen on ties). Receptions are unioned and deduplicated by Key,
// keeping the order of first appearance.
func Merge(results ...Parsed) Parsed {
	var merged Parsed
	var best int64

	for _, r := range results {
		if r.Exhibition == nil {
			continue
		}
		if score := Completeness(*r.Exhibition); merged.Exhibition == nil || score > best {
			exh := *r.Exhibition
			merged.Exhibition = &exh
			best = score
		}
	}

	merged.Receptions = dedupe(results)
	return merged
}

// Union combines per-block results: the first present exhibition wins and
// receptions are concatenated in block order, without duplicates.
func Union(results ...Parsed) Parsed {
	var merged Parsed

	for _, r := range results {
		if merged.Exhibition == nil && r.Exhibition != nil {
			exh := *r.Exhibition
			merged.Exhibition = &exh
		}
	}

	merged.Receptions = dedupe(results)
	return merged
}

// FromCandidates builds a Parsed out of raw exhibition and reception candidates.
func FromCandidates(exhibitions, receptions []Segment) Parsed {
	results := make([]Parsed, 0, len(exhibitions)+1)
	for i := range exhibitions {
		results = append(results, Parsed{Exhibition: &exhibitions[i]})
	}
	results = append(results, Parsed{Receptions: receptions})
	return Merge(results...)
}

func dedupe(results []Parsed) []Segment {
	var out []Segment
	seen := make(map[string]bool)

	for _, r := range results {
		for _, seg := range r.Receptions {
			key := seg.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, seg)
		}
	}

	return out
}
