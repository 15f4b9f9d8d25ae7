package driven

import (
	"context"

	"github.com/rootiq-ai/earnings-rag-app/internal/core/domain"
)

// DocumentSource supplies raw earnings disclosures for a given entity and
// reporting period. Acquisition (registry fetches, provider APIs) happens
// behind this port; the pipeline only consumes the resulting documents.
type DocumentSource interface {
	// Fetch returns the disclosure for the entity and period, or
	// domain.ErrNotFound when none has been acquired yet.
	Fetch(ctx context.Context, entity string, period domain.Period) (*domain.Document, error)
}
