package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/rootiq-ai/earnings-rag-app/internal/core/domain"
	"github.com/rootiq-ai/earnings-rag-app/internal/core/ports/driven"
	"github.com/rootiq-ai/earnings-rag-app/internal/core/ports/driving"
	"github.com/rootiq-ai/earnings-rag-app/internal/logger"
)

// HealthService checks backend connectivity, free disk space and log
// growth. Findings become warnings in the report; the check never fails.
type HealthService struct {
	embedder driven.EmbeddingService
	llm      driven.LLMService
	dataDir  string
	logFile  string
	log      *logger.Logger

	// freeDisk is swappable in tests.
	freeDisk func(path string) (uint64, error)
}

var _ driving.HealthChecker = (*HealthService)(nil)

// NewHealthService wires the health monitor. A nil logger discards output.
func NewHealthService(embedder driven.EmbeddingService, llm driven.LLMService, dataDir, logFile string, log *logger.Logger) *HealthService {
	if log == nil {
		log = logger.Discard()
	}
	return &HealthService{
		embedder: embedder,
		llm:      llm,
		dataDir:  dataDir,
		logFile:  logFile,
		log:      log,
		freeDisk: freeDiskBytes,
	}
}

// Check runs one health pass.
func (h *HealthService) Check(ctx context.Context) domain.HealthReport {
	report := domain.HealthReport{CheckedAt: time.Now()}

	if err := h.embedder.Ping(ctx); err != nil {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("embedding backend unreachable: %v", err))
	} else {
		report.EmbeddingOK = true
	}

	if err := h.llm.Ping(ctx); err != nil {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("generation backend unreachable: %v", err))
	} else {
		report.GenerationOK = true
	}

	free, err := h.freeDisk(h.dataDir)
	if err != nil {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("disk check failed for %s: %v", h.dataDir, err))
	} else {
		report.FreeDiskBytes = free
		if free < domain.LowDiskThresholdBytes {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("low disk space: %d MB free", free/(1<<20)))
		}
	}

	if info, err := os.Stat(h.logFile); err == nil {
		report.LogSizeBytes = info.Size()
		if info.Size() > domain.LargeLogThresholdBytes {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("log file is large: %d MB", info.Size()/(1<<20)))
		}
	}

	h.log.Debug("Health check: %d warnings", len(report.Warnings))
	return report
}

// freeDiskBytes returns the free space on the filesystem holding path.
func freeDiskBytes(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	return st.Bavail * uint64(st.Bsize), nil
}
