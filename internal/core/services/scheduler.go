package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rootiq-ai/earnings-rag-app/internal/core/domain"
	"github.com/rootiq-ai/earnings-rag-app/internal/core/ports/driven"
	"github.com/rootiq-ai/earnings-rag-app/internal/core/ports/driving"
	"github.com/rootiq-ai/earnings-rag-app/internal/logger"
)

// DefaultTickInterval is how often the trigger loop checks for due jobs.
const DefaultTickInterval = 30 * time.Second

// jobEntry binds a registration to its live scheduling state.
type jobEntry struct {
	reg     driving.Registration
	job     domain.Job
	running bool
}

// SchedulerService runs registered jobs on their triggers with at most
// one concurrent instance per job ID. State is persisted through the
// scheduler store so last-run information survives restarts.
type SchedulerService struct {
	store driven.SchedulerStore
	log   *logger.Logger
	tick  time.Duration
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]*jobEntry
	running bool
	stopCh  chan struct{}
	loopWG  sync.WaitGroup
	runWG   sync.WaitGroup
}

var _ driving.Scheduler = (*SchedulerService)(nil)

// NewSchedulerService creates a stopped scheduler. A nil logger discards
// output; a zero tick interval uses the default.
func NewSchedulerService(store driven.SchedulerStore, log *logger.Logger, tick time.Duration) *SchedulerService {
	if log == nil {
		log = logger.Discard()
	}
	if tick <= 0 {
		tick = DefaultTickInterval
	}
	return &SchedulerService{
		store:   store,
		log:     log,
		tick:    tick,
		now:     time.Now,
		entries: make(map[string]*jobEntry),
	}
}

// Register adds or replaces a job under its ID. An in-flight run of a
// replaced registration finishes undisturbed; exclusivity still applies
// until it does. Last-run state persisted under the same ID is restored.
func (s *SchedulerService) Register(reg driving.Registration) error {
	if reg.ID == "" {
		return fmt.Errorf("%w: job ID is required", domain.ErrInvalidInput)
	}
	if reg.Trigger == nil {
		return fmt.Errorf("%w: job %s has no trigger", domain.ErrUnknownTrigger, reg.ID)
	}
	if reg.Run == nil {
		return fmt.Errorf("%w: job %s has no body", domain.ErrInvalidInput, reg.ID)
	}

	now := s.now()
	job := domain.Job{
		ID:        reg.ID,
		Type:      reg.Type,
		Trigger:   reg.Trigger,
		CreatedAt: now,
		NextRun:   reg.Trigger.NextFire(now),
	}

	// Restore last-run state across restarts.
	if persisted, err := s.store.GetJob(context.Background(), reg.ID); err != nil {
		s.log.Warn("Reading persisted job %s: %v", reg.ID, err)
	} else if persisted != nil {
		job.LastRun = persisted.LastRun
		job.LastError = persisted.LastError
	}

	s.mu.Lock()
	replaced := false
	if existing, ok := s.entries[reg.ID]; ok {
		replaced = true
		// Exclusivity carries over so the old run is never overlapped.
		s.entries[reg.ID] = &jobEntry{reg: reg, job: job, running: existing.running}
	} else {
		s.entries[reg.ID] = &jobEntry{reg: reg, job: job}
	}
	s.mu.Unlock()

	if err := s.store.SaveJob(context.Background(), &job); err != nil {
		s.log.Warn("Persisting job %s: %v", reg.ID, err)
	}

	if replaced {
		s.log.Info("Replaced job %s (%s)", reg.ID, reg.Trigger.Describe())
	} else {
		s.log.Info("Registered job %s (%s)", reg.ID, reg.Trigger.Describe())
	}
	return nil
}

// Remove cancels future firings of the job. Returns false when the ID
// is not registered.
func (s *SchedulerService) Remove(id string) bool {
	s.mu.Lock()
	_, ok := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()

	if !ok {
		return false
	}
	if err := s.store.DeleteJob(context.Background(), id); err != nil {
		s.log.Warn("Deleting persisted job %s: %v", id, err)
	}
	s.log.Info("Removed job %s", id)
	return true
}

// Start launches the trigger loop. Starting a running scheduler is a
// warning-level no-op.
func (s *SchedulerService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.log.Warn("Scheduler already running")
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	s.loopWG.Add(1)
	go s.loop(ctx, stopCh)

	s.log.Info("Scheduler started (tick %s)", s.tick)
	return nil
}

// Stop blocks new firings immediately, waits for in-flight runs to
// drain, then returns. Stopping a stopped scheduler is a warning-level
// no-op.
func (s *SchedulerService) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		s.log.Warn("Scheduler already stopped")
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.loopWG.Wait()
	s.runWG.Wait()
	s.log.Info("Scheduler stopped")
	return nil
}

// RunNow executes the job body synchronously, outside its schedule.
// The job's trigger clock does not shift: NextRun stays untouched.
func (s *SchedulerService) RunNow(ctx context.Context, id string) error {
	s.mu.Lock()
	entry, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrJobNotFound, id)
	}
	if entry.running {
		s.mu.Unlock()
		return fmt.Errorf("job %s is already executing", id)
	}
	entry.running = true
	reg := entry.reg
	s.mu.Unlock()

	err := s.execute(ctx, reg, false)

	s.mu.Lock()
	if entry, ok := s.entries[id]; ok {
		entry.running = false
	}
	s.mu.Unlock()
	return err
}

// Status returns a snapshot of the scheduler and its registrations,
// ordered by job ID.
func (s *SchedulerService) Status() domain.SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := domain.SchedulerStatus{Running: s.running}
	for _, entry := range s.entries {
		status.Jobs = append(status.Jobs, entry.job)
	}
	sort.Slice(status.Jobs, func(i, j int) bool {
		return status.Jobs[i].ID < status.Jobs[j].ID
	})
	return status
}

// loop is the trigger loop: every tick, fire due jobs that are not
// already executing and record misfires for those that are.
func (s *SchedulerService) loop(ctx context.Context, stopCh chan struct{}) {
	defer s.loopWG.Done()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fireDue(ctx)
		}
	}
}

// fireDue starts every due idle job and suppresses due running ones.
func (s *SchedulerService) fireDue(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	var toRun []*jobEntry
	var misfired []string
	for _, entry := range s.entries {
		if entry.job.NextRun.After(now) {
			continue
		}
		if entry.running {
			// Previous run still in flight: skip this firing, never queue it.
			entry.job.NextRun = entry.reg.Trigger.NextFire(now)
			misfired = append(misfired, entry.reg.ID)
			continue
		}
		entry.running = true
		entry.job.LastRun = now
		entry.job.NextRun = entry.reg.Trigger.NextFire(now)
		toRun = append(toRun, entry)
	}
	s.mu.Unlock()

	for _, id := range misfired {
		s.recordMisfire(id, now)
	}

	for _, entry := range toRun {
		reg := entry.reg
		s.runWG.Add(1)
		go func() {
			defer s.runWG.Done()
			_ = s.execute(ctx, reg, true)

			// Clear by ID: a replacing registration inherits the running
			// flag, so it must also receive the reset when the old run ends.
			s.mu.Lock()
			if cur, ok := s.entries[reg.ID]; ok {
				cur.running = false
			}
			s.mu.Unlock()
		}()
	}
}

// execute runs one job body, catching panics, recording the outcome and
// updating persisted last-run state.
func (s *SchedulerService) execute(ctx context.Context, reg driving.Registration, scheduled bool) (err error) {
	started := s.now()
	if scheduled {
		s.log.Info("Running job %s", reg.ID)
	} else {
		s.log.Info("Running job %s on demand", reg.ID)
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("job %s panicked: %v", reg.ID, r)
			}
		}()
		err = reg.Run(ctx)
	}()

	ended := s.now()
	run := domain.JobRun{
		JobID:     reg.ID,
		StartedAt: started,
		EndedAt:   ended,
		Success:   err == nil,
	}
	if err != nil {
		run.Error = err.Error()
		s.log.Error("Job %s failed: %v", reg.ID, err)
	} else {
		s.log.Info("Job %s completed in %s", reg.ID, ended.Sub(started).Round(time.Millisecond))
	}
	if rerr := s.store.RecordRun(context.Background(), &run); rerr != nil {
		s.log.Warn("Recording run for %s: %v", reg.ID, rerr)
	}

	s.mu.Lock()
	if entry, ok := s.entries[reg.ID]; ok {
		entry.job.LastRun = started
		if err != nil {
			entry.job.LastError = err.Error()
		} else {
			entry.job.LastError = ""
		}
		job := entry.job
		s.mu.Unlock()
		if serr := s.store.SaveJob(context.Background(), &job); serr != nil {
			s.log.Warn("Persisting job %s: %v", reg.ID, serr)
		}
	} else {
		s.mu.Unlock()
	}

	return err
}

// recordMisfire logs and persists a suppressed firing.
func (s *SchedulerService) recordMisfire(id string, at time.Time) {
	s.log.Warn("Job %s still running, firing skipped", id)
	run := domain.JobRun{
		JobID:     id,
		StartedAt: at,
		EndedAt:   at,
		Success:   false,
		Error:     "previous run still executing",
		Misfire:   true,
	}
	if err := s.store.RecordRun(context.Background(), &run); err != nil {
		s.log.Warn("Recording misfire for %s: %v", id, err)
	}
}
