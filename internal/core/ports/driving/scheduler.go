package driving

import (
	"context"

	"github.com/rootiq-ai/earnings-rag-app/internal/core/domain"
)

// JobFunc is a job's bound body. Errors and panics are caught per run,
// logged, and never unregister the job.
type JobFunc func(ctx context.Context) error

// Registration binds a job ID and trigger to an executable body.
type Registration struct {
	// ID is the unique registration key. Registering an existing ID
	// replaces the previous registration.
	ID string

	// Type classifies the job.
	Type domain.JobType

	// Trigger determines when the job fires.
	Trigger domain.Trigger

	// Run is the job body with its arguments already bound.
	Run JobFunc
}

// Scheduler registers and runs recurring tasks with at-most-one
// concurrent instance per job ID.
type Scheduler interface {
	// Start launches the trigger loop on a background goroutine.
	// Starting a running scheduler is a warning-level no-op.
	Start(ctx context.Context) error

	// Stop prevents new firings immediately, waits for in-flight runs
	// to drain, then returns. Stopping a stopped scheduler is a
	// warning-level no-op.
	Stop() error

	// Register adds or replaces a job. An in-flight execution of a
	// replaced registration is not interrupted.
	Register(reg Registration) error

	// Remove cancels future firings. Returns false for an absent ID.
	Remove(id string) bool

	// RunNow executes the job body synchronously, outside its trigger
	// schedule, without shifting the job's normal timing.
	RunNow(ctx context.Context, id string) error

	// Status returns a snapshot of the scheduler and its registrations.
	Status() domain.SchedulerStatus
}

// HealthChecker performs the periodic self-check of backend
// connectivity, disk space and log growth.
type HealthChecker interface {
	// Check runs one health pass. Findings are warnings in the report;
	// the check itself never fails.
	Check(ctx context.Context) domain.HealthReport
}
