package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rootiq-ai/earnings-rag-app/internal/core/domain"
	"github.com/rootiq-ai/earnings-rag-app/internal/core/ports/driven"
)

// chunkIndex implements driven.ChunkIndex backed by the shared store.
// Metadata filters are applied in SQL; similarity is scored in process
// over the candidate embeddings.
type chunkIndex struct {
	store *Store
}

var _ driven.ChunkIndex = (*chunkIndex)(nil)

// AddBatch writes all chunks in a single transaction. Either every chunk
// is persisted or none is.
func (c *chunkIndex) AddBatch(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, text, embedding, entity, year, quarter, date, source,
			chunk_index, total_chunks, ingested_at, content_length, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		extra, err := encodeExtra(chunk.Metadata.Extra)
		if err != nil {
			return fmt.Errorf("encoding extra metadata for %s: %w", chunk.ID, err)
		}
		_, err = stmt.ExecContext(ctx,
			chunk.ID,
			chunk.Text,
			float32SliceToBytes(chunk.Embedding),
			chunk.Metadata.Entity,
			chunk.Metadata.Year,
			chunk.Metadata.Quarter,
			chunk.Metadata.Date,
			chunk.Metadata.Source,
			chunk.Metadata.ChunkIndex,
			chunk.Metadata.TotalChunks,
			chunk.Metadata.IngestedAt.UTC().Format(time.RFC3339Nano),
			chunk.Metadata.ContentLength,
			extra,
		)
		if err != nil {
			return fmt.Errorf("inserting chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

// Search scores all chunks matching the filters against the query
// embedding and returns the top k by descending similarity. Filters
// narrow the candidate set before scoring, so top-k is computed within
// the filtered population.
func (c *chunkIndex) Search(ctx context.Context, embedding []float32, k int, filters domain.QueryFilters) ([]domain.QueryResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: result count must be positive", domain.ErrInvalidInput)
	}

	where, args := buildFilterClause(filters)
	query := `
		SELECT id, text, embedding, entity, year, quarter, date, source,
			chunk_index, total_chunks, ingested_at, content_length, extra
		FROM chunks` + where

	rows, err := c.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var results []domain.QueryResult
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, domain.QueryResult{
			Chunk: chunk,
			Score: cosineSimilarity(embedding, chunk.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// ListMetadata returns the metadata of all chunks matching the filters,
// without loading embeddings.
func (c *chunkIndex) ListMetadata(ctx context.Context, filters domain.QueryFilters) ([]domain.ChunkMetadata, error) {
	where, args := buildFilterClause(filters)
	query := `
		SELECT entity, year, quarter, date, source,
			chunk_index, total_chunks, ingested_at, content_length, extra
		FROM chunks` + where

	rows, err := c.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunk metadata: %w", err)
	}
	defer rows.Close()

	var metas []domain.ChunkMetadata
	for rows.Next() {
		var (
			m          domain.ChunkMetadata
			ingestedAt string
			extra      string
		)
		err := rows.Scan(&m.Entity, &m.Year, &m.Quarter, &m.Date, &m.Source,
			&m.ChunkIndex, &m.TotalChunks, &ingestedAt, &m.ContentLength, &extra)
		if err != nil {
			return nil, fmt.Errorf("scanning chunk metadata: %w", err)
		}
		m.IngestedAt = parseStoredTime(ingestedAt)
		m.Extra, err = decodeExtra(extra)
		if err != nil {
			return nil, fmt.Errorf("decoding extra metadata: %w", err)
		}
		metas = append(metas, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunk metadata: %w", err)
	}
	return metas, nil
}

// DeleteWhere removes all chunks matching the filters and returns the
// number removed. Empty filters delete nothing; use Reset to clear.
func (c *chunkIndex) DeleteWhere(ctx context.Context, filters domain.QueryFilters) (int, error) {
	if !filters.Active() {
		return 0, fmt.Errorf("%w: delete requires at least one filter", domain.ErrInvalidInput)
	}

	where, args := buildFilterClause(filters)
	res, err := c.store.db.ExecContext(ctx, "DELETE FROM chunks"+where, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting chunks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted chunks: %w", err)
	}
	return int(n), nil
}

// Reset drops every chunk from the index.
func (c *chunkIndex) Reset(ctx context.Context) error {
	if _, err := c.store.db.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("resetting chunk index: %w", err)
	}
	return nil
}

// Close is a no-op; the lifetime of the connection belongs to the Store.
func (c *chunkIndex) Close() error {
	return nil
}

// buildFilterClause renders the active filter fields as a WHERE clause.
// Column names come from a fixed set, so they are safe to interpolate.
func buildFilterClause(filters domain.QueryFilters) (string, []any) {
	fields := filters.Fields()
	if len(fields) == 0 {
		return "", nil
	}

	// Deterministic clause order for stable queries.
	cols := make([]string, 0, len(fields))
	for col := range fields {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	var (
		conds []string
		args  []any
	)
	for _, col := range cols {
		conds = append(conds, col+" = ?")
		args = append(args, fields[col])
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanChunk(rows *sql.Rows) (domain.Chunk, error) {
	var (
		chunk      domain.Chunk
		blob       []byte
		ingestedAt string
		extra      string
	)
	err := rows.Scan(&chunk.ID, &chunk.Text, &blob,
		&chunk.Metadata.Entity, &chunk.Metadata.Year, &chunk.Metadata.Quarter,
		&chunk.Metadata.Date, &chunk.Metadata.Source,
		&chunk.Metadata.ChunkIndex, &chunk.Metadata.TotalChunks,
		&ingestedAt, &chunk.Metadata.ContentLength, &extra)
	if err != nil {
		return domain.Chunk{}, fmt.Errorf("scanning chunk: %w", err)
	}
	chunk.Embedding = bytesToFloat32Slice(blob)
	chunk.Metadata.IngestedAt = parseStoredTime(ingestedAt)
	chunk.Metadata.Extra, err = decodeExtra(extra)
	if err != nil {
		return domain.Chunk{}, fmt.Errorf("decoding extra metadata: %w", err)
	}
	return chunk, nil
}

func encodeExtra(extra map[string]string) (string, error) {
	if len(extra) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(extra)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeExtra(raw string) (map[string]string, error) {
	if raw == "" || raw == "{}" {
		return nil, nil
	}
	var extra map[string]string
	if err := json.Unmarshal([]byte(raw), &extra); err != nil {
		return nil, err
	}
	return extra, nil
}

func parseStoredTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t.Local()
}

// cosineSimilarity returns the cosine of the angle between a and b,
// clamped to [0,1]. A zero vector on either side scores 0.
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
