package repository

import (
	"context"

	"github.com/amolmagar-dev/jobsuitex/internal/domain"
)

// ResultRepository persists per-listing outcomes and per-run summaries.
type ResultRepository interface {
	SaveApplication(ctx context.Context, r *domain.ApplicationResult) error
	SaveRunSummary(ctx context.Context, s *domain.RunSummary) error
	ListRecentSummaries(ctx context.Context, campaignID string, limit int) ([]*domain.RunSummary, error)
}

// SessionStore caches serialized portal session tokens (cookie jars)
// keyed by (owner, portal).
type SessionStore interface {
	Get(ctx context.Context, ownerID, portal string) ([]byte, error)
	Put(ctx context.Context, ownerID, portal string, token []byte) error
	Delete(ctx context.Context, ownerID, portal string) error
}
