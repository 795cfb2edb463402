package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amolmagar-dev/jobsuitex/internal/browser"
	"github.com/amolmagar-dev/jobsuitex/internal/domain"
	"github.com/amolmagar-dev/jobsuitex/internal/portal"
)

// Scraper extracts listings from a portal's paginated search results.
type Scraper struct {
	maxPages int
	logger   *slog.Logger
	now      func() time.Time
}

func NewScraper(maxPages int, logger *slog.Logger) *Scraper {
	if maxPages <= 0 {
		maxPages = 1
	}
	return &Scraper{
		maxPages: maxPages,
		logger:   logger.With("component", "scraper"),
		now:      time.Now,
	}
}

// Listings paginates up to maxPages, stopping early when the portal
// shows no enabled next-page control. A results container that never
// appears on the first page is a scrape timeout; on later pages it just
// ends pagination.
func (s *Scraper) Listings(ctx context.Context, tab browser.Tab, profile portal.Profile, criteria domain.SearchCriteria) ([]domain.Listing, error) {
	sel := profile.Selectors
	var all []domain.Listing

	for page := 1; page <= s.maxPages; page++ {
		url := profile.SearchURL(criteria, page)
		if err := tab.Navigate(ctx, url); err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", domain.ErrScrapeTimeout, page, err)
		}
		if err := tab.WaitVisible(ctx, sel.ListingContainer); err != nil {
			if page == 1 {
				return nil, fmt.Errorf("%w: %v", domain.ErrScrapeTimeout, err)
			}
			break
		}

		src, err := tab.HTML(ctx, sel.ListingContainer)
		if err != nil {
			return nil, fmt.Errorf("read listing container: %w", err)
		}
		listings, err := ParseListings(src, sel, s.now())
		if err != nil {
			return nil, err
		}
		all = append(all, listings...)
		s.logger.Info("scraped page", "page", page, "listings", len(listings))

		next, _ := tab.Present(ctx, sel.NextPage)
		disabled, _ := tab.Present(ctx, sel.NextPageDisabled)
		if !next || disabled {
			break
		}
	}

	return all, nil
}
