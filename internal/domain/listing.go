package domain

import "time"

// Listing is one scraped job posting. Listings are ephemeral: they live
// only for the duration of a run and are never persisted pre-filter.
// Optional fields (salary, rating) default to "" when the portal omits
// them.
type Listing struct {
	Title      string
	Company    string
	Location   string
	Experience string
	Salary     string
	Rating     string
	Skills     []string
	PostedOn   string
	ApplyLink  string
	ScrapedAt  time.Time
}

type ApplicationStatus string

const (
	StatusApplied ApplicationStatus = "applied"
	StatusSkipped ApplicationStatus = "skipped"
	StatusFailed  ApplicationStatus = "failed"
)

// ApplicationResult records the terminal outcome of one listing's apply
// flow. Immutable once created.
type ApplicationResult struct {
	ID         string
	CampaignID string
	Listing    Listing
	Status     ApplicationStatus
	Reason     string
	AppliedAt  time.Time
}

// RunSummary aggregates one full campaign execution.
type RunSummary struct {
	ID         string
	CampaignID string
	Found      int
	Applied    int
	Failed     int
	Reason     string
	StartedAt  time.Time
	EndedAt    time.Time
}
