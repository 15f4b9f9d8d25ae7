package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rootiq-ai/earnings-rag-app/internal/core/domain"
)

func TestHealthService_AllHealthy(t *testing.T) {
	dataDir := t.TempDir()
	h := NewHealthService(&mockEmbeddingService{}, &mockLLMService{}, dataDir, filepath.Join(dataDir, "app.log"), nil)
	h.freeDisk = func(string) (uint64, error) { return 10 << 30, nil }

	report := h.Check(context.Background())

	assert.True(t, report.Healthy())
	assert.True(t, report.EmbeddingOK)
	assert.True(t, report.GenerationOK)
	assert.Equal(t, uint64(10<<30), report.FreeDiskBytes)
	assert.Zero(t, report.LogSizeBytes)
	assert.False(t, report.CheckedAt.IsZero())
}

func TestHealthService_BackendsDown(t *testing.T) {
	dataDir := t.TempDir()
	embedder := &mockEmbeddingService{pingErr: errors.New("dial tcp: refused")}
	llm := &mockLLMService{pingErr: errors.New("dial tcp: refused")}
	h := NewHealthService(embedder, llm, dataDir, filepath.Join(dataDir, "app.log"), nil)
	h.freeDisk = func(string) (uint64, error) { return 10 << 30, nil }

	report := h.Check(context.Background())

	assert.False(t, report.Healthy())
	assert.False(t, report.EmbeddingOK)
	assert.False(t, report.GenerationOK)
	assert.Len(t, report.Warnings, 2)
}

func TestHealthService_LowDisk(t *testing.T) {
	dataDir := t.TempDir()
	h := NewHealthService(&mockEmbeddingService{}, &mockLLMService{}, dataDir, filepath.Join(dataDir, "app.log"), nil)
	h.freeDisk = func(string) (uint64, error) { return domain.LowDiskThresholdBytes - 1, nil }

	report := h.Check(context.Background())

	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "low disk space")
}

func TestHealthService_LargeLog(t *testing.T) {
	dataDir := t.TempDir()
	logFile := filepath.Join(dataDir, "app.log")
	require.NoError(t, os.WriteFile(logFile, []byte("x"), 0o600))

	h := NewHealthService(&mockEmbeddingService{}, &mockLLMService{}, dataDir, logFile, nil)
	h.freeDisk = func(string) (uint64, error) { return 10 << 30, nil }

	report := h.Check(context.Background())
	assert.Equal(t, int64(1), report.LogSizeBytes)
	assert.True(t, report.Healthy())

	// Inflate the apparent size by truncating to beyond the threshold
	require.NoError(t, os.Truncate(logFile, domain.LargeLogThresholdBytes+1))
	report = h.Check(context.Background())
	assert.False(t, report.Healthy())
	assert.Contains(t, report.Warnings[0], "log file is large")
}
