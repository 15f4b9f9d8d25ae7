package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rootiq-ai/earnings-rag-app/internal/config"
	"github.com/rootiq-ai/earnings-rag-app/internal/core/services"
)

var historyLimit int

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run and inspect the job scheduler",
}

var scheduleRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the scheduler and block until interrupted",
	RunE:  runScheduleRun,
}

var scheduleStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show registered jobs and their next run times",
	RunE:  runScheduleStatus,
}

var scheduleTriggerCmd = &cobra.Command{
	Use:   "trigger [job-id]",
	Short: "Run a job immediately, outside its schedule",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleTrigger,
}

var scheduleHistoryCmd = &cobra.Command{
	Use:   "history [job-id]",
	Short: "Show recent runs of a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleHistory,
}

func init() {
	scheduleHistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum runs to show")
	scheduleCmd.AddCommand(scheduleRunCmd, scheduleStatusCmd, scheduleTriggerCmd, scheduleHistoryCmd)
	rootCmd.AddCommand(scheduleCmd)
}

// registerJobs binds the default jobs to the wired services.
func registerJobs() error {
	dailyHour, dailyMinute, err := config.ParseClock(cfg.Scheduler.DailyTime)
	if err != nil {
		return err
	}
	backupHour, backupMinute, err := config.ParseClock(cfg.Scheduler.BackupTime)
	if err != nil {
		return err
	}
	weeklyDay, err := config.ParseWeekday(cfg.Scheduler.WeeklyDay)
	if err != nil {
		return err
	}

	return services.RegisterDefaultJobs(scheduler, services.JobSchedule{
		DailyHour:    dailyHour,
		DailyMinute:  dailyMinute,
		WeeklyDay:    weeklyDay,
		BackupHour:   backupHour,
		BackupMinute: backupMinute,
		HealthEvery:  time.Duration(cfg.Scheduler.HealthCheckHours) * time.Hour,
	}, services.JobDeps{
		Pipeline:      pipeline,
		Source:        source,
		Health:        health,
		Backup:        backupSvc.Run,
		DailyEntities: cfg.DailyEntities(),
		AllEntities:   cfg.AllEntities(),
		Log:           log,
	})
}

func runScheduleRun(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}
	if !cfg.Scheduler.Enabled {
		return errors.New("scheduler is disabled in configuration")
	}
	if err := registerJobs(); err != nil {
		return fmt.Errorf("registering jobs: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	cmd.Println("Scheduler running (Ctrl-C to stop)")
	<-ctx.Done()

	if err := scheduler.Stop(); err != nil {
		return err
	}
	// Bound the persisted run history before exiting.
	if err := store.SchedulerStore().PruneHistory(context.Background(), cfg.Scheduler.HistoryKeep); err != nil {
		log.Warn("Pruning run history: %v", err)
	}
	return nil
}

func runScheduleStatus(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}
	if err := registerJobs(); err != nil {
		return fmt.Errorf("registering jobs: %w", err)
	}

	status := scheduler.Status()
	if len(status.Jobs) == 0 {
		cmd.Println("No jobs registered.")
		return nil
	}

	for _, job := range status.Jobs {
		cmd.Printf("%s (%s)\n", job.ID, job.Trigger.Describe())
		cmd.Printf("  next run: %s\n", job.NextRun.Format(time.RFC3339))
		if job.LastRun.IsZero() {
			cmd.Println("  last run: never")
		} else {
			cmd.Printf("  last run: %s\n", job.LastRun.Format(time.RFC3339))
		}
		if job.LastError != "" {
			cmd.Printf("  last error: %s\n", job.LastError)
		}
	}
	return nil
}

func runScheduleTrigger(cmd *cobra.Command, args []string) error {
	if scheduler == nil {
		return errors.New("scheduler not configured")
	}
	if err := registerJobs(); err != nil {
		return fmt.Errorf("registering jobs: %w", err)
	}

	if err := scheduler.RunNow(context.Background(), args[0]); err != nil {
		return err
	}
	cmd.Printf("Job %s completed\n", args[0])
	return nil
}

func runScheduleHistory(cmd *cobra.Command, args []string) error {
	if store == nil {
		return errors.New("store not configured")
	}

	runs, err := store.SchedulerStore().RunHistory(context.Background(), args[0], historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		cmd.Println("No recorded runs.")
		return nil
	}

	for _, run := range runs {
		switch {
		case run.Misfire:
			cmd.Printf("%s  MISFIRE\n", run.StartedAt.Format(time.RFC3339))
		case run.Success:
			cmd.Printf("%s  OK (%s)\n", run.StartedAt.Format(time.RFC3339),
				run.EndedAt.Sub(run.StartedAt).Round(time.Millisecond))
		default:
			cmd.Printf("%s  FAILED: %s\n", run.StartedAt.Format(time.RFC3339), run.Error)
		}
	}
	return nil
}
