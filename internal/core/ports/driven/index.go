package driven

import (
	"context"

	"github.com/rootiq-ai/earnings-rag-app/internal/core/domain"
)

// ChunkIndex stores chunks with their embeddings and answers similarity
// queries with index-level metadata filtering.
//
// Implementations must support concurrent AddBatch and Search calls; the
// services layer adds no locking of its own around the index.
type ChunkIndex interface {
	// AddBatch writes a document's chunks as a single atomic batch.
	// The batch is never partially applied.
	AddBatch(ctx context.Context, chunks []domain.Chunk) error

	// Search returns up to k nearest chunks to the query embedding,
	// scored by similarity in [0,1], descending. Metadata filters are
	// applied before the top-k cut. Ties keep insertion order.
	Search(ctx context.Context, embedding []float32, k int, filters domain.QueryFilters) ([]domain.QueryResult, error)

	// ListMetadata returns the metadata of every chunk matching the
	// filters. Used for corpus statistics.
	ListMetadata(ctx context.Context, filters domain.QueryFilters) ([]domain.ChunkMetadata, error)

	// DeleteWhere removes all chunks matching the filters and reports
	// how many were removed.
	DeleteWhere(ctx context.Context, filters domain.QueryFilters) (int, error)

	// Reset removes every chunk from the index.
	Reset(ctx context.Context) error

	// Close releases resources.
	Close() error
}
