package driven

import (
	"context"

	"github.com/rootiq-ai/earnings-rag-app/internal/core/domain"
)

// SchedulerStore persists scheduler state and execution history so job
// timing survives restarts.
type SchedulerStore interface {
	// GetJob retrieves a job by ID.
	// Returns nil and no error if the job does not exist.
	GetJob(ctx context.Context, id string) (*domain.Job, error)

	// ListJobs returns all persisted jobs.
	ListJobs(ctx context.Context) ([]domain.Job, error)

	// SaveJob creates or updates a job by ID.
	SaveJob(ctx context.Context, job *domain.Job) error

	// DeleteJob removes a job from storage.
	DeleteJob(ctx context.Context, id string) error

	// RecordRun logs a job execution outcome.
	RecordRun(ctx context.Context, run *domain.JobRun) error

	// RunHistory returns recent runs for a job, most recent first.
	RunHistory(ctx context.Context, id string, limit int) ([]domain.JobRun, error)

	// PruneHistory keeps the most recent 'keep' runs per job.
	PruneHistory(ctx context.Context, keep int) error
}
