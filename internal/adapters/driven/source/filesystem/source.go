// Package filesystem reads raw ingestion artifacts from the local disk.
// Artifacts are JSON files named {entity}_{year}_{quarter}_{timestamp}.json,
// written by whatever acquisition process runs upstream of the pipeline.
package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rootiq-ai/earnings-rag-app/internal/core/domain"
	"github.com/rootiq-ai/earnings-rag-app/internal/core/ports/driven"
)

// artifact is the on-disk JSON shape of a raw disclosure.
type artifact struct {
	Content  string            `json:"content"`
	Source   string            `json:"source"`
	Date     string            `json:"date"`
	Entity   string            `json:"entity"`
	Year     string            `json:"year"`
	Quarter  string            `json:"quarter"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Source implements driven.DocumentSource over a directory of artifacts.
type Source struct {
	dir string
}

var _ driven.DocumentSource = (*Source)(nil)

// NewSource creates a document source over the given artifact directory.
func NewSource(dir string) (*Source, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: artifact directory is required", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating artifact directory: %w", err)
	}
	return &Source{dir: dir}, nil
}

// Dir returns the artifact directory.
func (s *Source) Dir() string {
	return s.dir
}

// Fetch returns the most recent artifact for the entity and period.
// The timestamp suffix in the filename sorts lexicographically, so the
// last matching name is the newest.
func (s *Source) Fetch(ctx context.Context, entity string, period domain.Period) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := fmt.Sprintf("%s_%s_%s_", entity, period.Year, period.Quarter)
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading artifact directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no artifact for %s %s", domain.ErrNotFound, entity, period)
	}
	sort.Strings(names)

	return s.Load(filepath.Join(s.dir, names[len(names)-1]))
}

// Load parses a single artifact file into a Document.
func (s *Source) Load(path string) (*domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading artifact %s: %w", path, err)
	}

	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: malformed artifact %s: %v", domain.ErrInvalidInput, path, err)
	}

	doc := &domain.Document{
		Content: a.Content,
		Entity:  a.Entity,
		Year:    a.Year,
		Quarter: a.Quarter,
		Date:    a.Date,
		Source:  a.Source,
		Extra:   a.Metadata,
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}
	return doc, nil
}

// WriteArtifact persists a document as a new artifact file and returns its
// path. The timestamp suffix keeps repeated writes for one period distinct.
func (s *Source) WriteArtifact(doc *domain.Document) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", err
	}

	a := artifact{
		Content:  doc.Content,
		Source:   doc.Source,
		Date:     doc.Date,
		Entity:   doc.Entity,
		Year:     doc.Year,
		Quarter:  doc.Quarter,
		Metadata: doc.Extra,
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding artifact: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s_%s.json", doc.Entity, doc.Year, doc.Quarter, time.Now().Format("20060102_150405"))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	return path, nil
}
