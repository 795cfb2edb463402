package repository

import (
	"context"
	"time"

	"github.com/amolmagar-dev/jobsuitex/internal/domain"
)

// CampaignRepository is the engine's view of the configuration store.
// The scheduler and orchestrator depend on this interface, never on the
// concrete postgres implementation, so tests can pass fakes.
type CampaignRepository interface {
	// FindDue returns active campaigns whose next_run_at <= now.
	FindDue(ctx context.Context, now time.Time) ([]*domain.Campaign, error)
	FindByID(ctx context.Context, id string) (*domain.Campaign, error)
	List(ctx context.Context, ownerID string) ([]*domain.Campaign, error)
	Create(ctx context.Context, c *domain.Campaign) (*domain.Campaign, error)
	// UpdateScheduleTimestamps advances a campaign's run bookkeeping.
	// A nil timestamp leaves the stored value untouched.
	UpdateScheduleTimestamps(ctx context.Context, id string, lastRun, nextRun *time.Time) error
	// SetActive toggles a campaign's trigger registration. Inactive
	// campaigns are never returned by FindDue.
	SetActive(ctx context.Context, id string, active bool) error
}
