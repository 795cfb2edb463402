package domain

import (
	"errors"
	"time"
)

var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrNoProfile        = errors.New("campaign has no AI profile configured")
	ErrInvalidSchedule  = errors.New("invalid schedule descriptor")

	// Run-time error taxonomy. Per-listing failures are absorbed by the
	// apply machine; per-campaign failures abort only that run.
	ErrLoginFailed         = errors.New("portal login failed")
	ErrScrapeTimeout       = errors.New("listing container never appeared")
	ErrApplyFlowTimeout    = errors.New("apply flow did not resolve in time")
	ErrOracleUnavailable   = errors.New("decision oracle unavailable")
	ErrResourceUnavailable = errors.New("browser engine unavailable")
)

// SearchCriteria drives the portal search and scrape phase.
type SearchCriteria struct {
	Keywords      []string
	Location      string
	MinExperience int
	MaxExperience int
}

// FilterCriteria is applied to scraped listings before any apply attempt.
type FilterCriteria struct {
	MinRating        float64
	RequiredSkills   []string
	ExcludeCompanies []string
}

// Campaign is a user's recurring search-and-apply configuration for one
// portal. The engine reads it from the configuration store and only ever
// writes back LastRunAt / NextRunAt.
type Campaign struct {
	ID      string
	OwnerID string
	Active  bool
	Portal  string

	// NotifyEmail receives per-application and run-failure messages.
	// Empty disables notifications for the campaign.
	NotifyEmail string

	Search   SearchCriteria
	Filter   FilterCriteria
	Schedule ScheduleDescriptor

	// ProfileText conditions the decision oracle; a campaign without one
	// is rejected before any browser action.
	ProfileText string

	LastRunAt *time.Time
	NextRunAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Credentials are handed to the engine already decrypted; encryption and
// storage live upstream.
type Credentials struct {
	Username string
	Password string
}
