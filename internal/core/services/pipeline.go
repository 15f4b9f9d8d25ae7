// Package services contains the core business logic: the query pipeline,
// the job scheduler, health checks and backups. Services depend on ports,
// never on concrete adapters.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rootiq-ai/earnings-rag-app/internal/chunker"
	"github.com/rootiq-ai/earnings-rag-app/internal/core/domain"
	"github.com/rootiq-ai/earnings-rag-app/internal/core/ports/driven"
	"github.com/rootiq-ai/earnings-rag-app/internal/core/ports/driving"
	"github.com/rootiq-ai/earnings-rag-app/internal/logger"
)

// Answer text used when retrieval finds nothing above the threshold.
const noInformationMessage = "I don't have enough information in the indexed earnings calls to answer this question. Try ingesting the relevant company and period first."

// confidenceBoost scales mean retrieval similarity into the reported
// confidence. The product is clamped to 1.0.
const confidenceBoost = 1.2

// PipelineConfig carries the retrieval and synthesis tunables.
type PipelineConfig struct {
	// SimilarityThreshold drops results scoring below it, in [0,1].
	SimilarityThreshold float64

	// MaxResults is the default top-k for queries.
	MaxResults int

	// ContextDocs is how many results feed the generation context.
	ContextDocs int

	// MaxAnswerTokens bounds the generated answer length.
	MaxAnswerTokens int

	// Temperature is the generation sampling temperature.
	Temperature float64
}

// DefaultPipelineConfig returns the standard tunables.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		SimilarityThreshold: 0.7,
		MaxResults:          5,
		ContextDocs:         3,
		MaxAnswerTokens:     512,
		Temperature:         0.3,
	}
}

// PipelineService implements the retrieval-augmented query pipeline.
type PipelineService struct {
	chunker  *chunker.WordChunker
	embedder driven.EmbeddingService
	llm      driven.LLMService
	index    driven.ChunkIndex
	config   PipelineConfig
	log      *logger.Logger
}

var _ driving.Pipeline = (*PipelineService)(nil)

// NewPipelineService wires the pipeline from its collaborators.
// A nil logger discards output.
func NewPipelineService(
	ch *chunker.WordChunker,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	index driven.ChunkIndex,
	config PipelineConfig,
	log *logger.Logger,
) *PipelineService {
	if log == nil {
		log = logger.Discard()
	}
	if config.MaxResults <= 0 {
		config.MaxResults = 5
	}
	if config.ContextDocs <= 0 {
		config.ContextDocs = 3
	}
	if config.MaxAnswerTokens <= 0 {
		config.MaxAnswerTokens = 512
	}
	return &PipelineService{
		chunker:  ch,
		embedder: embedder,
		llm:      llm,
		index:    index,
		config:   config,
		log:      log,
	}
}

// Index chunks the document, embeds each chunk and writes the whole batch
// in one transaction. Embedding failures degrade individual chunks to zero
// vectors rather than dropping the batch.
func (p *PipelineService) Index(ctx context.Context, doc domain.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	content := cleanText(doc.Content)
	pieces := p.chunker.Split(content)
	if len(pieces) == 0 {
		return fmt.Errorf("%w: document produced no chunks", domain.ErrInvalidInput)
	}

	ingestedAt := time.Now()
	chunks := make([]domain.Chunk, 0, len(pieces))
	for i, text := range pieces {
		embedding := p.embedOrZero(ctx, text)
		chunks = append(chunks, domain.Chunk{
			ID:        chunkID(doc.Entity, doc.Year, doc.Quarter, i),
			Text:      text,
			Embedding: embedding,
			Metadata: domain.ChunkMetadata{
				Entity:        doc.Entity,
				Year:          doc.Year,
				Quarter:       doc.Quarter,
				Date:          doc.Date,
				Source:        doc.Source,
				ChunkIndex:    i,
				TotalChunks:   len(pieces),
				IngestedAt:    ingestedAt,
				ContentLength: len(text),
				Extra:         doc.Extra,
			},
		})
	}

	if err := p.index.AddBatch(ctx, chunks); err != nil {
		return fmt.Errorf("indexing %s %s %s: %w", doc.Entity, doc.Year, doc.Quarter, err)
	}

	p.log.Info("Indexed %d chunks for %s %s %s", len(chunks), doc.Entity, doc.Year, doc.Quarter)
	return nil
}

// Search embeds the query and returns results above the similarity
// threshold, at most k, best first. An empty slice is a normal outcome.
func (p *PipelineService) Search(ctx context.Context, query string, k int, filters domain.QueryFilters) ([]domain.QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}
	if k <= 0 {
		k = p.config.MaxResults
	}

	embedding := p.embedOrZero(ctx, query)
	results, err := p.index.Search(ctx, embedding, k, filters)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	filtered := results[:0]
	for _, r := range results {
		if r.Score >= p.config.SimilarityThreshold {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// Query runs retrieval then answer synthesis. It always returns a
// well-formed Answer; retrieval and generation failures surface as
// explanatory answer text, never as errors.
func (p *PipelineService) Query(ctx context.Context, query string, filters domain.QueryFilters) domain.Answer {
	answer := domain.Answer{
		Query:     query,
		Timestamp: time.Now(),
	}

	results, err := p.Search(ctx, query, p.config.MaxResults, filters)
	if err != nil {
		p.log.Error("Retrieval failed for query %q: %v", query, err)
		answer.Text = "Retrieval is currently unavailable; the question could not be answered."
		return answer
	}
	if len(results) == 0 {
		answer.Text = noInformationMessage
		return answer
	}
	answer.Sources = results

	text, err := p.generateAnswer(ctx, query, results)
	if err != nil {
		p.log.Error("Answer generation failed for query %q: %v", query, err)
		answer.Text = "I found relevant earnings-call excerpts, but the generation backend is unavailable to synthesise an answer from them."
		return answer
	}

	answer.Text = text
	answer.Confidence = confidence(results)
	return answer
}

// Stats aggregates corpus metadata. An unavailable index is logged and
// reported as empty stats.
func (p *PipelineService) Stats(ctx context.Context, filters domain.QueryFilters) domain.CollectionStats {
	metas, err := p.index.ListMetadata(ctx, filters)
	if err != nil {
		p.log.Error("Collecting stats: %v", err)
		return domain.EmptyStats()
	}
	if len(metas) == 0 {
		return domain.EmptyStats()
	}

	stats := domain.CollectionStats{
		TotalChunks:        len(metas),
		EntityDistribution: make(map[string]int),
	}

	now := time.Now()
	var newest time.Time
	for i := range metas {
		m := &metas[i]
		stats.EntityDistribution[m.Entity]++
		if period := m.Period(); period > stats.LatestPeriod || stats.LatestPeriod == "" {
			stats.LatestPeriod = period
		}
		if m.IngestedAt.After(newest) {
			newest = m.IngestedAt
		}
		if sameDay(m.IngestedAt, now) {
			stats.IngestedToday++
		}
	}
	stats.UniqueEntities = len(stats.EntityDistribution)
	if stats.LatestPeriod == "" {
		stats.LatestPeriod = "N/A"
	}
	if !newest.IsZero() {
		stats.DaysSinceUpdate = int(now.Sub(newest).Hours() / 24)
	}
	return stats
}

// Delete removes all chunks matching the filters and reports the count.
func (p *PipelineService) Delete(ctx context.Context, filters domain.QueryFilters) (int, error) {
	n, err := p.index.DeleteWhere(ctx, filters)
	if err != nil {
		return 0, err
	}
	p.log.Info("Deleted %d chunks (%v)", n, filters.Fields())
	return n, nil
}

// Reset clears the entire index.
func (p *PipelineService) Reset(ctx context.Context) error {
	if err := p.index.Reset(ctx); err != nil {
		return err
	}
	p.log.Warn("Chunk index reset")
	return nil
}

// embedOrZero embeds text, degrading to a zero vector of the deployed
// dimension when the backend fails. Fail-closed decisions live here at
// the pipeline boundary, not in the adapter.
func (p *PipelineService) embedOrZero(ctx context.Context, text string) []float32 {
	embedding, err := p.embedder.Embed(ctx, text)
	if err != nil {
		p.log.Warn("Embedding failed, using zero vector: %v", err)
		return make([]float32, p.embedder.Dimensions())
	}
	return embedding
}

// generateAnswer builds the grounded prompt from the top results and
// invokes the generation backend.
func (p *PipelineService) generateAnswer(ctx context.Context, query string, results []domain.QueryResult) (string, error) {
	top := results
	if len(top) > p.config.ContextDocs {
		top = top[:p.config.ContextDocs]
	}

	var b strings.Builder
	for i, r := range top {
		if i > 0 {
			b.WriteString("\n\n")
		}
		m := r.Chunk.Metadata
		fmt.Fprintf(&b, "[%s %s %s]\n%s", m.Entity, m.Year, m.Quarter, r.Chunk.Text)
	}

	prompt := fmt.Sprintf(`You are a financial analyst assistant. Answer the question using only the earnings call excerpts below.

Excerpts:
%s

Question: %s

Answer concisely. If the excerpts do not contain the information needed, say so.`, b.String(), query)

	return p.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   p.config.MaxAnswerTokens,
		Temperature: p.config.Temperature,
	})
}

// confidence maps mean retrieval similarity to [0,1].
func confidence(results []domain.QueryResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.Score
	}
	c := sum / float64(len(results)) * confidenceBoost
	if c > 1 {
		c = 1
	}
	return c
}

// chunkID builds the unique chunk identifier. The random suffix keeps
// re-ingestions of the same period from colliding.
func chunkID(entity, year, quarter string, index int) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%s_%s_%d_%s", entity, year, quarter, index, suffix)
}

// cleanText normalises whitespace and strips control characters at the
// ingestion boundary.
func cleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' {
			b.WriteRune(' ')
			continue
		}
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// sameDay reports whether two instants fall on the same calendar day.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
