package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rootiq-ai/earnings-rag-app/internal/chunker"
	"github.com/rootiq-ai/earnings-rag-app/internal/core/domain"
	"github.com/rootiq-ai/earnings-rag-app/internal/logger"
)

func defaultTestSchedule() JobSchedule {
	return JobSchedule{
		DailyHour:   9,
		WeeklyDay:   time.Sunday,
		BackupHour:  2,
		HealthEvery: 6 * time.Hour,
	}
}

func artifactFor(entity string, period domain.Period) *domain.Document {
	return &domain.Document{
		Content: "earnings call transcript for " + entity + " " + period.String(),
		Entity:  entity,
		Year:    period.Year,
		Quarter: period.Quarter,
		Source:  "sec_filing",
	}
}

func TestRegisterDefaultJobs(t *testing.T) {
	s := newTestScheduler(newMockSchedulerStore(), time.Second)

	deps := JobDeps{
		Pipeline: newTestPipeline(t, &mockEmbeddingService{embedding: []float32{1}}, &mockLLMService{}, &mockChunkIndex{}),
		Source:   &mockDocumentSource{},
		Health:   &staticHealthChecker{},
		Backup:   func(_ context.Context) error { return nil },
	}
	require.NoError(t, RegisterDefaultJobs(s, defaultTestSchedule(), deps))

	status := s.Status()
	require.Len(t, status.Jobs, 4)

	byID := make(map[string]domain.Job)
	for _, job := range status.Jobs {
		byID[job.ID] = job
	}
	assert.Equal(t, domain.FixedDaily{Hour: 9}, byID[domain.JobIDDailyExtraction].Trigger)
	assert.Equal(t, domain.WeeklyAt{Weekday: time.Sunday, Hour: 1}, byID[domain.JobIDWeeklyFullSync].Trigger)
	assert.Equal(t, domain.FixedDaily{Hour: 2}, byID[domain.JobIDDailyBackup].Trigger)
	assert.Equal(t, domain.Interval{Every: 6 * time.Hour}, byID[domain.JobIDHealthCheck].Trigger)
}

func TestDailyExtraction_IndexesCurrentPeriod(t *testing.T) {
	s := newTestScheduler(newMockSchedulerStore(), time.Second)

	current := domain.CurrentPeriod(time.Now())
	source := &mockDocumentSource{docs: map[string]*domain.Document{
		sourceKey("NVDA", current): artifactFor("NVDA", current),
		// AMD has no artifact yet and must be skipped without failing
	}}
	index := &mockChunkIndex{}

	deps := JobDeps{
		Pipeline:      newTestPipeline(t, &mockEmbeddingService{embedding: []float32{1}}, &mockLLMService{}, index),
		Source:        source,
		Health:        &staticHealthChecker{},
		Backup:        func(_ context.Context) error { return nil },
		DailyEntities: []string{"NVDA", "AMD"},
	}
	require.NoError(t, RegisterDefaultJobs(s, defaultTestSchedule(), deps))

	require.NoError(t, s.RunNow(context.Background(), domain.JobIDDailyExtraction))
	assert.Len(t, index.added, 1)
}

func TestWeeklyFullSync_CoversCurrentAndPreviousPeriod(t *testing.T) {
	s := newTestScheduler(newMockSchedulerStore(), time.Second)

	current := domain.CurrentPeriod(time.Now())
	previous := current.Previous()
	source := &mockDocumentSource{docs: map[string]*domain.Document{
		sourceKey("NVDA", current):  artifactFor("NVDA", current),
		sourceKey("NVDA", previous): artifactFor("NVDA", previous),
	}}
	index := &mockChunkIndex{}

	deps := JobDeps{
		Pipeline:    newTestPipeline(t, &mockEmbeddingService{embedding: []float32{1}}, &mockLLMService{}, index),
		Source:      source,
		Health:      &staticHealthChecker{},
		Backup:      func(_ context.Context) error { return nil },
		AllEntities: []string{"NVDA"},
	}
	require.NoError(t, RegisterDefaultJobs(s, defaultTestSchedule(), deps))

	require.NoError(t, s.RunNow(context.Background(), domain.JobIDWeeklyFullSync))
	assert.Len(t, index.added, 2)
}

func TestIngestEntities_CollectsFailures(t *testing.T) {
	current := domain.CurrentPeriod(time.Now())
	source := &mockDocumentSource{docs: map[string]*domain.Document{
		sourceKey("NVDA", current): artifactFor("NVDA", current),
	}}
	// Index that rejects every batch
	index := &mockChunkIndex{addErr: domain.ErrIndexUnavailable}

	deps := JobDeps{
		Pipeline: NewPipelineService(mustChunker(t), &mockEmbeddingService{embedding: []float32{1}},
			&mockLLMService{}, index, DefaultPipelineConfig(), nil),
		Source: source,
	}

	err := ingestEntities(context.Background(), deps, logger.Discard(), []string{"NVDA"}, []domain.Period{current})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1")
}

func mustChunker(t *testing.T) *chunker.WordChunker {
	t.Helper()
	ch, err := chunker.New(100, 20)
	require.NoError(t, err)
	return ch
}

// staticHealthChecker returns a fixed healthy report.
type staticHealthChecker struct{}

func (staticHealthChecker) Check(_ context.Context) domain.HealthReport {
	return domain.HealthReport{CheckedAt: time.Now(), EmbeddingOK: true, GenerationOK: true}
}
