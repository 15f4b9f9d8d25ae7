package domain

import (
	"fmt"
	"strconv"
	"time"
)

// JobType classifies the recurring background jobs the scheduler runs.
type JobType string

// Built-in job types.
const (
	JobTypeDailyExtraction JobType = "daily_extraction"
	JobTypeWeeklyFullSync  JobType = "weekly_full_sync"
	JobTypeBackup          JobType = "backup"
	JobTypeHealthCheck     JobType = "health_check"
	JobTypeCustom          JobType = "custom"
)

// Default job IDs registered when the scheduler is enabled.
const (
	JobIDDailyExtraction = "daily_extraction"
	JobIDWeeklyFullSync  = "weekly_full_sync"
	JobIDDailyBackup     = "daily_backup"
	JobIDHealthCheck     = "health_check"
)

// Trigger is a scheduling rule determining when a job fires.
// It is a closed set of variants; the scheduler's fire-time calculator
// matches them exhaustively.
type Trigger interface {
	// NextFire returns the first fire time strictly after the given instant.
	NextFire(after time.Time) time.Time

	// Describe returns a short human-readable form for logs and status.
	Describe() string

	trigger()
}

// FixedDaily fires once per day at a fixed local time.
type FixedDaily struct {
	Hour   int
	Minute int
}

// NextFire returns the next HH:MM occurrence after the given instant.
func (t FixedDaily) NextFire(after time.Time) time.Time {
	next := time.Date(after.Year(), after.Month(), after.Day(), t.Hour, t.Minute, 0, 0, after.Location())
	if !next.After(after) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Describe returns the trigger in "daily at HH:MM" form.
func (t FixedDaily) Describe() string {
	return fmt.Sprintf("daily at %02d:%02d", t.Hour, t.Minute)
}

func (FixedDaily) trigger() {}

// WeeklyAt fires once per week on a fixed weekday and local time.
type WeeklyAt struct {
	Weekday time.Weekday
	Hour    int
	Minute  int
}

// NextFire returns the next weekday HH:MM occurrence after the given instant.
func (t WeeklyAt) NextFire(after time.Time) time.Time {
	next := time.Date(after.Year(), after.Month(), after.Day(), t.Hour, t.Minute, 0, 0, after.Location())
	days := (int(t.Weekday) - int(after.Weekday()) + 7) % 7
	next = next.AddDate(0, 0, days)
	if !next.After(after) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

// Describe returns the trigger in "weekly on <day> at HH:MM" form.
func (t WeeklyAt) Describe() string {
	return fmt.Sprintf("weekly on %s at %02d:%02d", t.Weekday, t.Hour, t.Minute)
}

func (WeeklyAt) trigger() {}

// Interval fires at a fixed period, starting one period after registration.
type Interval struct {
	Every time.Duration
}

// NextFire returns the instant one period after the given instant.
func (t Interval) NextFire(after time.Time) time.Time {
	return after.Add(t.Every)
}

// Describe returns the trigger in "every <duration>" form.
func (t Interval) Describe() string {
	return "every " + t.Every.String()
}

func (Interval) trigger() {}

// Job is a registered recurring task. Re-registering under the same ID
// replaces the previous registration; an in-flight run of the old
// registration is not interrupted.
type Job struct {
	// ID is the unique registration key.
	ID string

	// Type classifies the job.
	Type JobType

	// Trigger determines when the job fires.
	Trigger Trigger

	// CreatedAt is when the registration was made.
	CreatedAt time.Time

	// NextRun is the next computed fire time.
	NextRun time.Time

	// LastRun is when the job last started, zero if never.
	LastRun time.Time

	// LastError holds the most recent execution error message, if any.
	LastError string
}

// JobRun records the outcome of a single job execution.
type JobRun struct {
	// JobID identifies which job ran.
	JobID string

	// StartedAt is when the run began.
	StartedAt time.Time

	// EndedAt is when the run finished.
	EndedAt time.Time

	// Success indicates the run completed without error.
	Success bool

	// Error holds the failure message when Success is false.
	Error string

	// Misfire marks a suppressed firing: the trigger fired while the
	// previous run was still executing, so this run was skipped.
	Misfire bool
}

// SchedulerStatus is a point-in-time snapshot of the scheduler.
type SchedulerStatus struct {
	// Running reports whether the trigger loop is active.
	Running bool

	// Jobs lists the current registrations.
	Jobs []Job
}

// Period is a reporting period: a calendar year and quarter.
type Period struct {
	Year    string
	Quarter string
}

// String returns the "YEAR QUARTER" form used for display and comparisons.
func (p Period) String() string {
	return p.Year + " " + p.Quarter
}

// CurrentPeriod derives the reporting period containing the given instant.
func CurrentPeriod(now time.Time) Period {
	q := (int(now.Month())-1)/3 + 1
	return Period{
		Year:    strconv.Itoa(now.Year()),
		Quarter: "Q" + strconv.Itoa(q),
	}
}

// Previous returns the immediately preceding reporting period.
// Quarter 1 of year Y rolls back to quarter 4 of year Y-1.
func (p Period) Previous() Period {
	q, err := strconv.Atoi(trimQ(p.Quarter))
	if err != nil || q <= 1 {
		year, yerr := strconv.Atoi(p.Year)
		if yerr != nil {
			return Period{Year: p.Year, Quarter: "Q4"}
		}
		return Period{Year: strconv.Itoa(year - 1), Quarter: "Q4"}
	}
	return Period{Year: p.Year, Quarter: "Q" + strconv.Itoa(q-1)}
}

func trimQ(quarter string) string {
	if len(quarter) > 0 && (quarter[0] == 'Q' || quarter[0] == 'q') {
		return quarter[1:]
	}
	return quarter
}
