// Package chunker provides word-level text chunking with overlap.
package chunker

import (
	"fmt"
	"strings"

	"github.com/rootiq-ai/earnings-rag-app/internal/core/domain"
)

// DefaultChunkSize is the default number of words per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping words.
const DefaultChunkOverlap = 200

// WordChunker splits text into overlapping word windows. The window start
// advances by chunkSize-overlap words per step, so consecutive chunks share
// overlap words of context and every word is covered at least once.
type WordChunker struct {
	chunkSize int
	overlap   int
}

// New creates a word chunker. Overlap must be strictly smaller than the
// chunk size; anything else would produce a non-advancing stride.
func New(chunkSize, overlap int) (*WordChunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidInput, chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: chunk overlap must be non-negative, got %d", domain.ErrInvalidInput, overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d", domain.ErrInvalidInput, overlap, chunkSize)
	}
	return &WordChunker{chunkSize: chunkSize, overlap: overlap}, nil
}

// ChunkSize returns the configured window size in words.
func (c *WordChunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured overlap in words.
func (c *WordChunker) Overlap() int { return c.overlap }

// Split produces the ordered word windows for the given text.
// The final window may be shorter than the chunk size; empty or
// whitespace-only text produces no windows.
func (c *WordChunker) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	stride := c.chunkSize - c.overlap
	chunks := make([]string, 0, (len(words)+stride-1)/stride)

	for start := 0; start < len(words); start += stride {
		end := start + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))

		// Once a window's end reaches the word count, coverage is complete.
		if end == len(words) {
			break
		}
	}

	return chunks
}
