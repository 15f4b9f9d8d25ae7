package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rootiq-ai/earnings-rag-app/internal/core/domain"
)

func makeTestJob(id string, trigger domain.Trigger) *domain.Job {
	now := time.Now().Truncate(time.Second)
	return &domain.Job{
		ID:        id,
		Type:      domain.JobTypeCustom,
		Trigger:   trigger,
		CreatedAt: now,
		NextRun:   trigger.NextFire(now),
	}
}

func TestSchedulerStore_SaveAndGetJob(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	ss := store.SchedulerStore()

	job := makeTestJob("daily_extraction", domain.FixedDaily{Hour: 9, Minute: 0})
	job.Type = domain.JobTypeDailyExtraction
	require.NoError(t, ss.SaveJob(ctx, job))

	got, err := ss.GetJob(ctx, "daily_extraction")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, domain.JobTypeDailyExtraction, got.Type)
	assert.Equal(t, domain.FixedDaily{Hour: 9, Minute: 0}, got.Trigger)
	assert.True(t, job.NextRun.Equal(got.NextRun))
	assert.True(t, got.LastRun.IsZero())
	assert.Empty(t, got.LastError)
}

func TestSchedulerStore_GetJobNotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	got, err := store.SchedulerStore().GetJob(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSchedulerStore_SaveJobReplaces(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	ss := store.SchedulerStore()

	job := makeTestJob("weekly_full_sync", domain.WeeklyAt{Weekday: time.Sunday, Hour: 1, Minute: 0})
	require.NoError(t, ss.SaveJob(ctx, job))

	// Re-register under the same ID with a different trigger
	job.Trigger = domain.Interval{Every: 6 * time.Hour}
	job.LastError = "connection refused"
	require.NoError(t, ss.SaveJob(ctx, job))

	got, err := ss.GetJob(ctx, "weekly_full_sync")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.Interval{Every: 6 * time.Hour}, got.Trigger)
	assert.Equal(t, "connection refused", got.LastError)

	jobs, err := ss.ListJobs(ctx)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestSchedulerStore_TriggerRoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	ss := store.SchedulerStore()

	triggers := []domain.Trigger{
		domain.FixedDaily{Hour: 2, Minute: 30},
		domain.WeeklyAt{Weekday: time.Sunday, Hour: 1, Minute: 0},
		domain.Interval{Every: 6 * time.Hour},
	}
	for i, trigger := range triggers {
		job := makeTestJob(fmt.Sprintf("job-%d", i), trigger)
		require.NoError(t, ss.SaveJob(ctx, job))

		got, err := ss.GetJob(ctx, job.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, trigger, got.Trigger)
	}
}

func TestSchedulerStore_ListJobs(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	ss := store.SchedulerStore()

	require.NoError(t, ss.SaveJob(ctx, makeTestJob("b-job", domain.FixedDaily{Hour: 9})))
	require.NoError(t, ss.SaveJob(ctx, makeTestJob("a-job", domain.FixedDaily{Hour: 2})))

	jobs, err := ss.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "a-job", jobs[0].ID)
	assert.Equal(t, "b-job", jobs[1].ID)
}

func TestSchedulerStore_DeleteJob(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	ss := store.SchedulerStore()

	job := makeTestJob("doomed", domain.FixedDaily{Hour: 9})
	require.NoError(t, ss.SaveJob(ctx, job))
	require.NoError(t, ss.RecordRun(ctx, &domain.JobRun{
		JobID:     "doomed",
		StartedAt: time.Now(),
		EndedAt:   time.Now(),
		Success:   true,
	}))

	require.NoError(t, ss.DeleteJob(ctx, "doomed"))

	got, err := ss.GetJob(ctx, "doomed")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Run history goes with the job
	runs, err := ss.RunHistory(ctx, "doomed", 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestSchedulerStore_RunHistory(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	ss := store.SchedulerStore()

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	for i := 0; i < 3; i++ {
		run := &domain.JobRun{
			JobID:     "daily_extraction",
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			EndedAt:   base.Add(time.Duration(i)*time.Minute + 10*time.Second),
			Success:   i != 1,
		}
		if i == 1 {
			run.Error = "embedding backend unreachable"
		}
		require.NoError(t, ss.RecordRun(ctx, run))
	}
	require.NoError(t, ss.RecordRun(ctx, &domain.JobRun{
		JobID:     "daily_extraction",
		StartedAt: base.Add(5 * time.Minute),
		EndedAt:   base.Add(5 * time.Minute),
		Success:   false,
		Misfire:   true,
	}))

	runs, err := ss.RunHistory(ctx, "daily_extraction", 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Most recent first; misfire flag survives the round trip
	assert.True(t, runs[0].Misfire)
	assert.False(t, runs[1].Misfire)
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt))

	all, err := ss.RunHistory(ctx, "daily_extraction", 10)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "embedding backend unreachable", all[2].Error)
}

func TestSchedulerStore_PruneHistory(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	ss := store.SchedulerStore()

	base := time.Now().Add(-time.Hour)
	for _, jobID := range []string{"daily_extraction", "health_check"} {
		for i := 0; i < 5; i++ {
			require.NoError(t, ss.RecordRun(ctx, &domain.JobRun{
				JobID:     jobID,
				StartedAt: base.Add(time.Duration(i) * time.Minute),
				EndedAt:   base.Add(time.Duration(i) * time.Minute),
				Success:   true,
			}))
		}
	}

	require.NoError(t, ss.PruneHistory(ctx, 2))

	// Each job keeps its own most recent runs
	for _, jobID := range []string{"daily_extraction", "health_check"} {
		runs, err := ss.RunHistory(ctx, jobID, 10)
		require.NoError(t, err)
		assert.Len(t, runs, 2, "job %s", jobID)
	}

	err := ss.PruneHistory(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
