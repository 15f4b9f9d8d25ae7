package domain

import (
	"fmt"
	"strings"
	"time"
)

// MatchAll is the sentinel filter value meaning "do not filter on this field".
const MatchAll = "All"

// Document represents a raw earnings disclosure before chunking.
// It is produced by an acquisition collaborator, consumed exactly once
// by the indexing pipeline, and not retained afterwards.
type Document struct {
	// Content is the full disclosure text.
	Content string

	// Entity is the reporting entity's ticker symbol (e.g., "NVDA").
	Entity string

	// Year is the reporting year (e.g., "2025").
	Year string

	// Quarter is the reporting quarter ("Q1".."Q4").
	Quarter string

	// Date is the disclosure date in ISO format.
	Date string

	// Source names the provenance of the content (e.g., "sec_filing").
	Source string

	// Extra contains caller-supplied metadata carried onto every chunk.
	Extra map[string]string
}

// Validate checks the fields required at the ingestion boundary.
func (d *Document) Validate() error {
	if strings.TrimSpace(d.Content) == "" {
		return fmt.Errorf("%w: document content is empty", ErrInvalidInput)
	}
	if d.Entity == "" {
		return fmt.Errorf("%w: document entity is required", ErrInvalidInput)
	}
	return nil
}

// ChunkMetadata carries the document metadata copied onto each chunk,
// plus the chunk's position within its parent document.
type ChunkMetadata struct {
	// Entity is the reporting entity's ticker symbol.
	Entity string

	// Year is the reporting year.
	Year string

	// Quarter is the reporting quarter.
	Quarter string

	// Date is the disclosure date.
	Date string

	// Source names the provenance of the content.
	Source string

	// ChunkIndex is the ordinal position within the parent document.
	ChunkIndex int

	// TotalChunks is the number of chunks the parent document produced.
	TotalChunks int

	// IngestedAt is the batch wall-clock time the chunk was written.
	// All chunks of one document share the same value.
	IngestedAt time.Time

	// ContentLength is the chunk text length in bytes.
	ContentLength int

	// Extra contains caller-supplied key-value pairs.
	Extra map[string]string
}

// Period returns the "YEAR QUARTER" string used for period comparisons.
// Zero-padded years and Q-prefixed quarters sort correctly as plain strings.
func (m *ChunkMetadata) Period() string {
	p := strings.TrimSpace(m.Year + " " + m.Quarter)
	return p
}

// Chunk is the atomic unit of indexing and retrieval: a bounded,
// overlapping word-level slice of a document's text. Chunks are
// immutable once written; updates happen via delete and reinsert.
type Chunk struct {
	// ID is the unique identifier, combining entity, period, index
	// and a random suffix so re-ingestion never collides.
	ID string

	// Text is the chunk content.
	Text string

	// Embedding is the vector representation, dimension fixed per deployment.
	Embedding []float32

	// Metadata is the per-chunk metadata record.
	Metadata ChunkMetadata
}
