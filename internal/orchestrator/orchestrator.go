package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amolmagar-dev/jobsuitex/internal/apply"
	"github.com/amolmagar-dev/jobsuitex/internal/browser"
	"github.com/amolmagar-dev/jobsuitex/internal/domain"
	"github.com/amolmagar-dev/jobsuitex/internal/metrics"
	"github.com/amolmagar-dev/jobsuitex/internal/notify"
	"github.com/amolmagar-dev/jobsuitex/internal/oracle"
	"github.com/amolmagar-dev/jobsuitex/internal/portal"
	"github.com/amolmagar-dev/jobsuitex/internal/repository"
	"github.com/amolmagar-dev/jobsuitex/internal/requestid"
	"github.com/amolmagar-dev/jobsuitex/internal/scrape"
)

// Browser is the slice of the automation resource one run needs.
type Browser interface {
	Acquire(ctx context.Context) error
	NewTab() (browser.Tab, error)
	Release()
}

// Authenticator establishes a logged-in portal session on a tab.
type Authenticator interface {
	Login(ctx context.Context, tab browser.Tab, profile portal.Profile, ownerID string, creds domain.Credentials) error
}

// Lister extracts listings for the campaign's search criteria.
type Lister interface {
	Listings(ctx context.Context, tab browser.Tab, profile portal.Profile, criteria domain.SearchCriteria) ([]domain.Listing, error)
}

// Applier drives one listing through the apply flow.
type Applier interface {
	Apply(ctx context.Context, tab browser.Tab, profile portal.Profile, oracle apply.AnswerOracle, campaignID string, listing domain.Listing) *domain.ApplicationResult
}

// Orchestrator runs one campaign end to end: login, scrape, filter,
// then a sequential apply flow per qualifying listing. It is invoked
// only from the scheduler's single queue consumer, so the shared
// browser and oracle need no extra locking.
type Orchestrator struct {
	browser     Browser
	sessions    Authenticator
	scraper     Lister
	oracles     *oracle.Provider
	machine     Applier
	credentials repository.CredentialStore
	campaigns   repository.CampaignRepository
	results     repository.ResultRepository
	notifier    notify.Notifier
	logger      *slog.Logger
	now         func() time.Time
}

func New(
	b Browser,
	sessions Authenticator,
	scraper Lister,
	oracles *oracle.Provider,
	machine Applier,
	credentials repository.CredentialStore,
	campaigns repository.CampaignRepository,
	results repository.ResultRepository,
	notifier notify.Notifier,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		browser:     b,
		sessions:    sessions,
		scraper:     scraper,
		oracles:     oracles,
		machine:     machine,
		credentials: credentials,
		campaigns:   campaigns,
		results:     results,
		notifier:    notifier,
		logger:      logger.With("component", "orchestrator"),
		now:         time.Now,
	}
}

// Run executes one campaign run. A returned error means the run
// aborted before any listing outcome could be recorded; the caller
// records it as a failed run.
func (o *Orchestrator) Run(ctx context.Context, campaign *domain.Campaign) (*domain.RunSummary, error) {
	ctx = requestid.WithCampaign(ctx, campaign.ID)
	logger := o.logger.With("campaign_id", campaign.ID, "portal", campaign.Portal)
	started := o.now()

	summary, err := o.run(ctx, campaign, started, logger)
	if err != nil {
		o.notifyRunFailure(ctx, campaign, err.Error(), logger)
		return nil, err
	}

	metrics.RunDuration.Observe(summary.EndedAt.Sub(summary.StartedAt).Seconds())
	return summary, nil
}

func (o *Orchestrator) run(ctx context.Context, campaign *domain.Campaign, started time.Time, logger *slog.Logger) (*domain.RunSummary, error) {
	if strings.TrimSpace(campaign.ProfileText) == "" {
		// Nothing to condition the oracle with; refuse before touching
		// the browser.
		return nil, domain.ErrNoProfile
	}

	profile, err := portal.Lookup(campaign.Portal)
	if err != nil {
		return nil, err
	}

	creds, err := o.credentials.Get(ctx, campaign.OwnerID, campaign.Portal)
	if err != nil {
		return nil, err
	}

	answers := o.oracles.Configure(campaign.ProfileText)

	if err := o.browser.Acquire(ctx); err != nil {
		return nil, err
	}
	defer o.browser.Release()

	tab, err := o.browser.NewTab()
	if err != nil {
		return nil, err
	}
	defer tab.Close()

	if err := o.sessions.Login(ctx, tab, profile, campaign.OwnerID, *creds); err != nil {
		return nil, err
	}

	listings, err := o.scraper.Listings(ctx, tab, profile, campaign.Search)
	if err != nil {
		return nil, err
	}
	metrics.ScrapedListingsTotal.Add(float64(len(listings)))

	matched := scrape.Filter(listings, campaign.Search, campaign.Filter)
	logger.Info("listings filtered", "scraped", len(listings), "matched", len(matched))

	summary := &domain.RunSummary{
		ID:         uuid.NewString(),
		CampaignID: campaign.ID,
		Found:      len(matched),
		StartedAt:  started,
	}

	for _, listing := range matched {
		result := o.applyOne(ctx, profile, answers, campaign, listing, logger)
		switch result.Status {
		case domain.StatusApplied:
			summary.Applied++
		case domain.StatusFailed:
			summary.Failed++
		}

		if err := o.results.SaveApplication(ctx, result); err != nil {
			logger.Error("save application result", "listing", listing.Title, "error", err)
		}
		if result.Status == domain.StatusApplied {
			o.notifyApplication(ctx, campaign, result, logger)
		}

		if ctx.Err() != nil {
			summary.Reason = "run interrupted by shutdown"
			break
		}
	}

	summary.EndedAt = o.now()

	if err := o.campaigns.UpdateScheduleTimestamps(ctx, campaign.ID, &started, nil); err != nil {
		logger.Error("record last run", "error", err)
	}

	return summary, nil
}

// applyOne opens a fresh tab for the listing so a broken page cannot
// poison the login tab or later listings.
func (o *Orchestrator) applyOne(ctx context.Context, profile portal.Profile, answers apply.AnswerOracle, campaign *domain.Campaign, listing domain.Listing, logger *slog.Logger) *domain.ApplicationResult {
	tab, err := o.browser.NewTab()
	if err != nil {
		return &domain.ApplicationResult{
			ID:         uuid.NewString(),
			CampaignID: campaign.ID,
			Listing:    listing,
			Status:     domain.StatusFailed,
			Reason:     fmt.Sprintf("open tab: %v", err),
			AppliedAt:  o.now(),
		}
	}
	defer tab.Close()

	return o.machine.Apply(ctx, tab, profile, answers, campaign.ID, listing)
}

func (o *Orchestrator) notifyApplication(ctx context.Context, campaign *domain.Campaign, result *domain.ApplicationResult, logger *slog.Logger) {
	if campaign.NotifyEmail == "" {
		return
	}
	subject, body := notify.ComposeApplication(result)
	if err := o.notifier.Send(ctx, campaign.NotifyEmail, subject, body); err != nil {
		// Fire-and-forget: delivery failures never affect the run.
		logger.Warn("application notification failed", "error", err)
	}
}

func (o *Orchestrator) notifyRunFailure(ctx context.Context, campaign *domain.Campaign, reason string, logger *slog.Logger) {
	if campaign.NotifyEmail == "" {
		return
	}
	subject, body := notify.ComposeRunFailure(campaign, reason)
	if err := o.notifier.Send(ctx, campaign.NotifyEmail, subject, body); err != nil {
		logger.Warn("run failure notification failed", "error", err)
	}
}
