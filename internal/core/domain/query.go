package domain

import "time"

// QueryFilters restricts retrieval to chunks whose metadata matches exactly.
// A zero value or the MatchAll sentinel on any field disables that filter.
type QueryFilters struct {
	// Entity filters by reporting entity ticker.
	Entity string

	// Year filters by reporting year.
	Year string

	// Quarter filters by reporting quarter.
	Quarter string

	// Source filters by content provenance.
	Source string
}

// Active reports whether any filter field would actually be applied.
func (f QueryFilters) Active() bool {
	for _, v := range []string{f.Entity, f.Year, f.Quarter, f.Source} {
		if v != "" && v != MatchAll {
			return true
		}
	}
	return false
}

// Fields returns the applied filter fields as column/value pairs.
// Fields that are empty or set to MatchAll are skipped.
func (f QueryFilters) Fields() map[string]string {
	out := make(map[string]string, 4)
	put := func(key, val string) {
		if val != "" && val != MatchAll {
			out[key] = val
		}
	}
	put("entity", f.Entity)
	put("year", f.Year)
	put("quarter", f.Quarter)
	put("source", f.Source)
	return out
}

// QueryResult is one retrieved chunk with its similarity score.
type QueryResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the similarity in [0,1], derived as 1 - distance.
	Score float64
}

// Answer is the synthesised response to a natural-language query.
// It is created per query and never persisted.
type Answer struct {
	// Text is the generated answer, or an in-band explanatory message
	// when generation was impossible.
	Text string

	// Sources are the retrieved chunks the answer is grounded on, capped.
	Sources []QueryResult

	// Confidence is a bounded [0,1] reliability estimate derived from
	// retrieval similarity, not from the generation backend.
	Confidence float64

	// Query echoes the question that produced this answer.
	Query string

	// Timestamp is when the answer was produced.
	Timestamp time.Time
}
