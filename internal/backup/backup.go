// Package backup copies the data directory into dated backup snapshots
// and prunes old ones.
package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rootiq-ai/earnings-rag-app/internal/logger"
)

// DefaultKeep is how many dated snapshots are retained.
const DefaultKeep = 7

const snapshotPrefix = "scheduled_backup_"

// Service copies the data directory into backupDir/scheduled_backup_YYYYMMDD.
// The backup directory itself is excluded from the copy.
type Service struct {
	dataDir   string
	backupDir string
	keep      int
	log       *logger.Logger
}

// New creates a backup service. A nil logger discards output; keep <= 0
// uses the default retention.
func New(dataDir, backupDir string, keep int, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	if keep <= 0 {
		keep = DefaultKeep
	}
	return &Service{
		dataDir:   dataDir,
		backupDir: backupDir,
		keep:      keep,
		log:       log,
	}
}

// Run performs one backup pass: snapshot today's copy, then prune old
// snapshots. Re-running on the same day overwrites that day's snapshot.
func (s *Service) Run(ctx context.Context) error {
	target := filepath.Join(s.backupDir, snapshotPrefix+time.Now().Format("20060102"))

	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("clearing previous snapshot: %w", err)
	}
	if err := os.MkdirAll(target, 0o700); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	absBackup, err := filepath.Abs(s.backupDir)
	if err != nil {
		return fmt.Errorf("resolving backup directory: %w", err)
	}

	err = filepath.WalkDir(s.dataDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		// Never copy the backups into themselves.
		if abs == absBackup || strings.HasPrefix(abs, absBackup+string(filepath.Separator)) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(s.dataDir, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(target, rel)
		if d.IsDir() {
			return os.MkdirAll(dst, 0o700)
		}
		return copyFile(path, dst)
	})
	if err != nil {
		return fmt.Errorf("copying data directory: %w", err)
	}

	s.log.Info("Backup written to %s", target)
	return s.prune()
}

// prune deletes the oldest snapshots beyond the retention count. The
// date suffix sorts lexicographically, so name order is age order.
func (s *Service) prune() error {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		return fmt.Errorf("reading backup directory: %w", err)
	}

	var snapshots []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), snapshotPrefix) {
			snapshots = append(snapshots, entry.Name())
		}
	}
	if len(snapshots) <= s.keep {
		return nil
	}
	sort.Strings(snapshots)

	for _, name := range snapshots[:len(snapshots)-s.keep] {
		if err := os.RemoveAll(filepath.Join(s.backupDir, name)); err != nil {
			return fmt.Errorf("pruning snapshot %s: %w", name, err)
		}
		s.log.Info("Pruned old backup %s", name)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
