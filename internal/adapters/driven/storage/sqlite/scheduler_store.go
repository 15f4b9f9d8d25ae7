package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rootiq-ai/earnings-rag-app/internal/core/domain"
	"github.com/rootiq-ai/earnings-rag-app/internal/core/ports/driven"
)

// schedulerStore implements driven.SchedulerStore backed by the shared store.
type schedulerStore struct {
	store *Store
}

var _ driven.SchedulerStore = (*schedulerStore)(nil)

// Trigger serialisation kinds.
const (
	triggerKindDaily    = "daily"
	triggerKindWeekly   = "weekly"
	triggerKindInterval = "interval"
)

type triggerSpec struct {
	Hour    int   `json:"hour,omitempty"`
	Minute  int   `json:"minute,omitempty"`
	Weekday int   `json:"weekday,omitempty"`
	EveryNS int64 `json:"every_ns,omitempty"`
}

func encodeTrigger(t domain.Trigger) (kind string, spec string, err error) {
	var (
		k string
		s triggerSpec
	)
	switch trig := t.(type) {
	case domain.FixedDaily:
		k = triggerKindDaily
		s = triggerSpec{Hour: trig.Hour, Minute: trig.Minute}
	case domain.WeeklyAt:
		k = triggerKindWeekly
		s = triggerSpec{Hour: trig.Hour, Minute: trig.Minute, Weekday: int(trig.Weekday)}
	case domain.Interval:
		k = triggerKindInterval
		s = triggerSpec{EveryNS: int64(trig.Every)}
	default:
		return "", "", fmt.Errorf("%w: %T", domain.ErrUnknownTrigger, t)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", "", fmt.Errorf("encoding trigger: %w", err)
	}
	return k, string(data), nil
}

func decodeTrigger(kind, raw string) (domain.Trigger, error) {
	var s triggerSpec
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decoding trigger spec: %w", err)
	}
	switch kind {
	case triggerKindDaily:
		return domain.FixedDaily{Hour: s.Hour, Minute: s.Minute}, nil
	case triggerKindWeekly:
		return domain.WeeklyAt{Weekday: time.Weekday(s.Weekday), Hour: s.Hour, Minute: s.Minute}, nil
	case triggerKindInterval:
		return domain.Interval{Every: time.Duration(s.EveryNS)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTrigger, kind)
	}
}

// GetJob retrieves a job by ID, or nil if absent.
func (s *schedulerStore) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, type, trigger_kind, trigger_spec, created_at, next_run, last_run, last_error
		FROM jobs WHERE id = ?
	`, id)

	job, err := scanJob(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting job %s: %w", id, err)
	}
	return job, nil
}

// ListJobs returns all persisted jobs ordered by ID.
func (s *schedulerStore) ListJobs(ctx context.Context) ([]domain.Job, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, type, trigger_kind, trigger_spec, created_at, next_run, last_run, last_error
		FROM jobs ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJob(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating jobs: %w", err)
	}
	return jobs, nil
}

// SaveJob creates or replaces the job under its ID.
func (s *schedulerStore) SaveJob(ctx context.Context, job *domain.Job) error {
	kind, spec, err := encodeTrigger(job.Trigger)
	if err != nil {
		return err
	}
	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO jobs (id, type, trigger_kind, trigger_spec, created_at, next_run, last_run, last_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			trigger_kind = excluded.trigger_kind,
			trigger_spec = excluded.trigger_spec,
			created_at = excluded.created_at,
			next_run = excluded.next_run,
			last_run = excluded.last_run,
			last_error = excluded.last_error
	`,
		job.ID,
		string(job.Type),
		kind,
		spec,
		job.CreatedAt.UTC().Format(time.RFC3339Nano),
		formatNullableTime(job.NextRun),
		formatNullableTime(job.LastRun),
		nullString(job.LastError),
	)
	if err != nil {
		return fmt.Errorf("saving job %s: %w", job.ID, err)
	}
	return nil
}

// DeleteJob removes a job and its run history.
func (s *schedulerStore) DeleteJob(ctx context.Context, id string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM job_runs WHERE job_id = ?", id); err != nil {
		return fmt.Errorf("deleting run history for %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM jobs WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting job %s: %w", id, err)
	}
	return tx.Commit()
}

// RecordRun appends one execution outcome to the history.
func (s *schedulerStore) RecordRun(ctx context.Context, run *domain.JobRun) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO job_runs (job_id, started_at, ended_at, success, error, misfire)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		run.JobID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.EndedAt.UTC().Format(time.RFC3339Nano),
		boolToInt(run.Success),
		nullString(run.Error),
		boolToInt(run.Misfire),
	)
	if err != nil {
		return fmt.Errorf("recording run for %s: %w", run.JobID, err)
	}
	return nil
}

// RunHistory returns up to limit recent runs, most recent first.
func (s *schedulerStore) RunHistory(ctx context.Context, id string, limit int) ([]domain.JobRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT job_id, started_at, ended_at, success, error, misfire
		FROM job_runs
		WHERE job_id = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, id, limit)
	if err != nil {
		return nil, fmt.Errorf("querying run history for %s: %w", id, err)
	}
	defer rows.Close()

	var runs []domain.JobRun
	for rows.Next() {
		var (
			run              domain.JobRun
			started, ended   string
			success, misfire int
			errMsg           sql.NullString
		)
		if err := rows.Scan(&run.JobID, &started, &ended, &success, &errMsg, &misfire); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.StartedAt = parseStoredTime(started)
		run.EndedAt = parseStoredTime(ended)
		run.Success = success != 0
		run.Misfire = misfire != 0
		run.Error = errMsg.String
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// PruneHistory keeps only the most recent 'keep' runs per job.
func (s *schedulerStore) PruneHistory(ctx context.Context, keep int) error {
	if keep <= 0 {
		return fmt.Errorf("%w: history size must be positive", domain.ErrInvalidInput)
	}
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM job_runs
		WHERE id NOT IN (
			SELECT id FROM job_runs AS jr
			WHERE jr.job_id = job_runs.job_id
			ORDER BY jr.started_at DESC, jr.id DESC
			LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning run history: %w", err)
	}
	return nil
}

func scanJob(scan func(dest ...any) error) (*domain.Job, error) {
	var (
		job                 domain.Job
		jobType             string
		kind, spec, created string
		nextRun, lastRun    sql.NullString
		lastError           sql.NullString
	)
	err := scan(&job.ID, &jobType, &kind, &spec, &created, &nextRun, &lastRun, &lastError)
	if err != nil {
		return nil, err
	}
	trigger, err := decodeTrigger(kind, spec)
	if err != nil {
		return nil, err
	}
	job.Type = domain.JobType(jobType)
	job.Trigger = trigger
	job.CreatedAt = parseStoredTime(created)
	job.NextRun = parseNullableTime(nextRun)
	job.LastRun = parseNullableTime(lastRun)
	job.LastError = lastError.String
	return &job, nil
}
