package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/rootiq-ai/earnings-rag-app/internal/core/domain"
	"github.com/rootiq-ai/earnings-rag-app/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedding []float32
	embedErr  error
	pingErr   error
	dims      int
	calls     int
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return 384
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return m.pingErr
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	response    string
	generateErr error
	pingErr     error
	lastPrompt  string
	lastOpts    driven.GenerateOptions
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.lastPrompt = prompt
	m.lastOpts = opts
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return m.pingErr
}

func (m *mockLLMService) Close() error {
	return nil
}

// mockChunkIndex implements driven.ChunkIndex with injectable failures.
type mockChunkIndex struct {
	results []domain.QueryResult
	metas   []domain.ChunkMetadata
	added   [][]domain.Chunk

	addErr    error
	searchErr error
	listErr   error
}

func (m *mockChunkIndex) AddBatch(_ context.Context, chunks []domain.Chunk) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.added = append(m.added, chunks)
	return nil
}

func (m *mockChunkIndex) Search(_ context.Context, _ []float32, k int, _ domain.QueryFilters) ([]domain.QueryResult, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.results) {
		return m.results, nil
	}
	return m.results[:k], nil
}

func (m *mockChunkIndex) ListMetadata(_ context.Context, _ domain.QueryFilters) ([]domain.ChunkMetadata, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.metas, nil
}

func (m *mockChunkIndex) DeleteWhere(_ context.Context, filters domain.QueryFilters) (int, error) {
	if !filters.Active() {
		return 0, domain.ErrInvalidInput
	}
	return 2, nil
}

func (m *mockChunkIndex) Reset(_ context.Context) error {
	return nil
}

func (m *mockChunkIndex) Close() error {
	return nil
}

// mockSchedulerStore implements driven.SchedulerStore in memory.
type mockSchedulerStore struct {
	mu   sync.Mutex
	jobs map[string]domain.Job
	runs []domain.JobRun

	saveErr error
}

func newMockSchedulerStore() *mockSchedulerStore {
	return &mockSchedulerStore{jobs: make(map[string]domain.Job)}
}

func (m *mockSchedulerStore) GetJob(_ context.Context, id string) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, nil
	}
	return &job, nil
}

func (m *mockSchedulerStore) ListJobs(_ context.Context) ([]domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var jobs []domain.Job
	for _, job := range m.jobs {
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (m *mockSchedulerStore) SaveJob(_ context.Context, job *domain.Job) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = *job
	return nil
}

func (m *mockSchedulerStore) DeleteJob(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, id)
	return nil
}

func (m *mockSchedulerStore) RecordRun(_ context.Context, run *domain.JobRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *run)
	return nil
}

func (m *mockSchedulerStore) RunHistory(_ context.Context, id string, limit int) ([]domain.JobRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var runs []domain.JobRun
	for i := len(m.runs) - 1; i >= 0 && len(runs) < limit; i-- {
		if m.runs[i].JobID == id {
			runs = append(runs, m.runs[i])
		}
	}
	return runs, nil
}

func (m *mockSchedulerStore) PruneHistory(_ context.Context, _ int) error {
	return nil
}

func (m *mockSchedulerStore) recordedRuns(id string) []domain.JobRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	var runs []domain.JobRun
	for _, run := range m.runs {
		if run.JobID == id {
			runs = append(runs, run)
		}
	}
	return runs
}

// mockDocumentSource implements driven.DocumentSource over a fixed map.
type mockDocumentSource struct {
	docs     map[string]*domain.Document
	fetchErr error
}

func sourceKey(entity string, period domain.Period) string {
	return fmt.Sprintf("%s/%s/%s", entity, period.Year, period.Quarter)
}

func (m *mockDocumentSource) Fetch(_ context.Context, entity string, period domain.Period) (*domain.Document, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	doc, ok := m.docs[sourceKey(entity, period)]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, entity, period)
	}
	return doc, nil
}
