package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rootiq-ai/earnings-rag-app/internal/core/domain"
	"github.com/rootiq-ai/earnings-rag-app/internal/core/ports/driven"
	"github.com/rootiq-ai/earnings-rag-app/internal/core/ports/driving"
	"github.com/rootiq-ai/earnings-rag-app/internal/logger"
)

// JobSchedule carries the trigger settings for the default jobs.
type JobSchedule struct {
	// DailyHour/DailyMinute set the daily extraction time.
	DailyHour   int
	DailyMinute int

	// WeeklyDay is the weekday of the full sync, fired at 01:00.
	WeeklyDay time.Weekday

	// BackupHour/BackupMinute set the daily backup time.
	BackupHour   int
	BackupMinute int

	// HealthEvery is the health-check interval.
	HealthEvery time.Duration
}

// JobDeps are the collaborators the default job bodies are bound to.
type JobDeps struct {
	Pipeline driving.Pipeline
	Source   driven.DocumentSource
	Health   driving.HealthChecker

	// Backup runs one backup pass.
	Backup func(ctx context.Context) error

	// DailyEntities are the entities the daily extraction covers.
	DailyEntities []string

	// AllEntities are the entities the weekly full sync covers.
	AllEntities []string

	Log *logger.Logger
}

// RegisterDefaultJobs registers the four built-in jobs: daily extraction
// over the lead entities, weekly full sync over all entities covering
// the current and previous period, a daily backup and a recurring
// health check.
func RegisterDefaultJobs(sched driving.Scheduler, schedule JobSchedule, deps JobDeps) error {
	log := deps.Log
	if log == nil {
		log = logger.Discard()
	}

	regs := []driving.Registration{
		{
			ID:      domain.JobIDDailyExtraction,
			Type:    domain.JobTypeDailyExtraction,
			Trigger: domain.FixedDaily{Hour: schedule.DailyHour, Minute: schedule.DailyMinute},
			Run: func(ctx context.Context) error {
				period := domain.CurrentPeriod(time.Now())
				return ingestEntities(ctx, deps, log, deps.DailyEntities, []domain.Period{period})
			},
		},
		{
			ID:      domain.JobIDWeeklyFullSync,
			Type:    domain.JobTypeWeeklyFullSync,
			Trigger: domain.WeeklyAt{Weekday: schedule.WeeklyDay, Hour: 1, Minute: 0},
			Run: func(ctx context.Context) error {
				current := domain.CurrentPeriod(time.Now())
				return ingestEntities(ctx, deps, log, deps.AllEntities,
					[]domain.Period{current, current.Previous()})
			},
		},
		{
			ID:      domain.JobIDDailyBackup,
			Type:    domain.JobTypeBackup,
			Trigger: domain.FixedDaily{Hour: schedule.BackupHour, Minute: schedule.BackupMinute},
			Run:     deps.Backup,
		},
		{
			ID:      domain.JobIDHealthCheck,
			Type:    domain.JobTypeHealthCheck,
			Trigger: domain.Interval{Every: schedule.HealthEvery},
			Run: func(ctx context.Context) error {
				report := deps.Health.Check(ctx)
				for _, w := range report.Warnings {
					log.Warn("Health: %s", w)
				}
				if report.Healthy() {
					log.Info("Health check passed")
				}
				return nil
			},
		},
	}

	for _, reg := range regs {
		if err := sched.Register(reg); err != nil {
			return fmt.Errorf("registering %s: %w", reg.ID, err)
		}
	}
	return nil
}

// ingestEntities fetches and indexes each entity/period combination.
// Missing artifacts are skipped; other failures are collected so the
// run is recorded as failed without aborting the sweep.
func ingestEntities(ctx context.Context, deps JobDeps, log *logger.Logger, entities []string, periods []domain.Period) error {
	var failed int
	for _, entity := range entities {
		for _, period := range periods {
			doc, err := deps.Source.Fetch(ctx, entity, period)
			if errors.Is(err, domain.ErrNotFound) {
				log.Debug("No artifact for %s %s, skipping", entity, period)
				continue
			}
			if err != nil {
				log.Error("Fetching %s %s: %v", entity, period, err)
				failed++
				continue
			}
			if err := deps.Pipeline.Index(ctx, *doc); err != nil {
				log.Error("Indexing %s %s: %v", entity, period, err)
				failed++
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d entity/period ingestions failed", failed, len(entities)*len(periods))
	}
	return nil
}
