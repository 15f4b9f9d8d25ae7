// Package memory provides an in-memory chunk index, useful for tests
// and for running the pipeline without a data directory.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/rootiq-ai/earnings-rag-app/internal/core/domain"
	"github.com/rootiq-ai/earnings-rag-app/internal/core/ports/driven"
)

// ChunkIndex is a thread-safe in-memory implementation of driven.ChunkIndex.
type ChunkIndex struct {
	mu     sync.RWMutex
	chunks []domain.Chunk
}

var _ driven.ChunkIndex = (*ChunkIndex)(nil)

// NewChunkIndex creates an empty in-memory chunk index.
func NewChunkIndex() *ChunkIndex {
	return &ChunkIndex{}
}

// AddBatch appends all chunks in one critical section.
func (c *ChunkIndex) AddBatch(_ context.Context, chunks []domain.Chunk) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunks = append(c.chunks, chunks...)
	return nil
}

// Search scores all matching chunks and returns the top k by similarity.
func (c *ChunkIndex) Search(_ context.Context, embedding []float32, k int, filters domain.QueryFilters) ([]domain.QueryResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: result count must be positive", domain.ErrInvalidInput)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var results []domain.QueryResult
	for _, chunk := range c.chunks {
		if !matches(chunk.Metadata, filters) {
			continue
		}
		results = append(results, domain.QueryResult{
			Chunk: chunk,
			Score: cosineSimilarity(embedding, chunk.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// ListMetadata returns metadata for all chunks matching the filters.
func (c *ChunkIndex) ListMetadata(_ context.Context, filters domain.QueryFilters) ([]domain.ChunkMetadata, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var metas []domain.ChunkMetadata
	for _, chunk := range c.chunks {
		if matches(chunk.Metadata, filters) {
			metas = append(metas, chunk.Metadata)
		}
	}
	return metas, nil
}

// DeleteWhere removes all chunks matching the filters.
func (c *ChunkIndex) DeleteWhere(_ context.Context, filters domain.QueryFilters) (int, error) {
	if !filters.Active() {
		return 0, fmt.Errorf("%w: delete requires at least one filter", domain.ErrInvalidInput)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.chunks[:0]
	removed := 0
	for _, chunk := range c.chunks {
		if matches(chunk.Metadata, filters) {
			removed++
			continue
		}
		kept = append(kept, chunk)
	}
	c.chunks = kept
	return removed, nil
}

// Reset drops every chunk.
func (c *ChunkIndex) Reset(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunks = nil
	return nil
}

// Close is a no-op.
func (c *ChunkIndex) Close() error {
	return nil
}

func matches(m domain.ChunkMetadata, filters domain.QueryFilters) bool {
	for col, want := range filters.Fields() {
		var have string
		switch col {
		case "entity":
			have = m.Entity
		case "year":
			have = m.Year
		case "quarter":
			have = m.Quarter
		case "source":
			have = m.Source
		}
		if have != want {
			return false
		}
	}
	return true
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
