package domain

// CollectionStats aggregates corpus-wide metadata into summary counters.
// An empty index yields the zero value with LatestPeriod set to "N/A".
type CollectionStats struct {
	// TotalChunks is the number of indexed chunks.
	TotalChunks int

	// UniqueEntities is the number of distinct reporting entities.
	UniqueEntities int

	// LatestPeriod is the lexicographic maximum "YEAR QUARTER" string,
	// or "N/A" when the index is empty.
	LatestPeriod string

	// DaysSinceUpdate counts days since the most recent ingestion.
	DaysSinceUpdate int

	// EntityDistribution maps each entity to its chunk count.
	EntityDistribution map[string]int

	// IngestedToday is the number of chunks ingested on the current
	// calendar day.
	IngestedToday int
}

// EmptyStats returns the summary reported for an empty index.
func EmptyStats() CollectionStats {
	return CollectionStats{
		LatestPeriod:       "N/A",
		EntityDistribution: map[string]int{},
	}
}
