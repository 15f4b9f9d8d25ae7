package driving

import (
	"context"

	"github.com/rootiq-ai/earnings-rag-app/internal/core/domain"
)

// Pipeline is the retrieval-augmented query pipeline: chunking and
// indexing on the write path, similarity search and grounded answer
// synthesis on the read path.
type Pipeline interface {
	// Index chunks the document, embeds each chunk and writes the batch
	// to the chunk index. Embedding failures degrade individual chunks
	// to zero vectors; the batch is never partially dropped.
	Index(ctx context.Context, doc domain.Document) error

	// Search embeds the query and returns the chunks that pass the
	// similarity threshold, at most k, best first. An empty slice is a
	// valid, non-error outcome.
	Search(ctx context.Context, query string, k int, filters domain.QueryFilters) ([]domain.QueryResult, error)

	// Query runs Search then answer synthesis. It always returns a
	// well-formed Answer: failures surface as explanatory answer text
	// with zero confidence, never as an error.
	Query(ctx context.Context, query string, filters domain.QueryFilters) domain.Answer

	// Stats aggregates corpus-wide metadata. An unavailable index is
	// logged and reported as empty stats.
	Stats(ctx context.Context, filters domain.QueryFilters) domain.CollectionStats

	// Delete removes all chunks matching the filters and reports the count.
	Delete(ctx context.Context, filters domain.QueryFilters) (int, error)

	// Reset clears the entire index.
	Reset(ctx context.Context) error
}
