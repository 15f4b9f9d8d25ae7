package domain

import "time"

// Health thresholds for the periodic self-check.
const (
	// LowDiskThresholdBytes is the free-space floor below which the
	// health monitor raises a warning (1 GiB).
	LowDiskThresholdBytes = 1 << 30

	// LargeLogThresholdBytes is the log size above which the health
	// monitor raises a warning (100 MiB).
	LargeLogThresholdBytes = 100 << 20
)

// HealthReport is the outcome of one health-check pass. Individual
// failures become warnings in the report; the check itself never fails.
type HealthReport struct {
	// CheckedAt is when the check ran.
	CheckedAt time.Time

	// GenerationOK reports generation-backend connectivity.
	GenerationOK bool

	// EmbeddingOK reports embedding-backend connectivity.
	EmbeddingOK bool

	// FreeDiskBytes is the free space on the data directory's filesystem.
	FreeDiskBytes uint64

	// LogSizeBytes is the current log file size, 0 when absent.
	LogSizeBytes int64

	// Warnings lists human-readable findings.
	Warnings []string
}

// Healthy reports whether the check produced no warnings.
func (r *HealthReport) Healthy() bool {
	return len(r.Warnings) == 0
}
