package scrape_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/amolmagar-dev/jobsuitex/internal/browser/browsertest"
	"github.com/amolmagar-dev/jobsuitex/internal/domain"
	"github.com/amolmagar-dev/jobsuitex/internal/portal"
	"github.com/amolmagar-dev/jobsuitex/internal/scrape"
)

const listingPage = `
<div class="styles_job-listing-container__OeZhW">
  <article class="srp-jobtuple-wrapper">
    <h2><a class="title" href="https://jobs.test/apply/101">Senior Go Developer</a></h2>
    <span class="comp-name">Acme Systems</span>
    <span class="main-2">4.1</span>
    <span class="expwdth">3-6 Yrs</span>
    <span class="sal-wrap">12-18 Lacs PA</span>
    <span class="locWdth">Pune, Remote</span>
    <ul><li class="tag-li">Golang</li><li class="tag-li">Kubernetes</li></ul>
    <span class="job-post-day">3 days ago</span>
  </article>
  <article class="srp-jobtuple-wrapper">
    <h2><a class="title" href="/apply/102">Platform Engineer</a></h2>
    <span class="comp-name">Globex</span>
    <span class="expwdth">5+ Yrs</span>
    <span class="locWdth">Bengaluru</span>
    <ul><li class="tag-li">Go</li></ul>
  </article>
</div>`

func naukri(t *testing.T) portal.Profile {
	t.Helper()
	p, err := portal.Lookup("naukri")
	if err != nil {
		t.Fatal(err)
	}
	return p
}

var criteria = domain.SearchCriteria{Keywords: []string{"golang"}, Location: "Pune"}

func TestParseListings_ExtractsSchemaWithOptionalDefaults(t *testing.T) {
	profile := naukri(t)
	now := time.Now()

	listings, err := scrape.ParseListings(listingPage, profile.Selectors, now)
	if err != nil {
		t.Fatalf("ParseListings: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("parsed %d listings, want 2", len(listings))
	}

	first := listings[0]
	if first.Title != "Senior Go Developer" || first.Company != "Acme Systems" {
		t.Errorf("first listing = %+v", first)
	}
	if first.Rating != "4.1" || first.Salary != "12-18 Lacs PA" {
		t.Errorf("first listing optional fields = rating %q salary %q", first.Rating, first.Salary)
	}
	if first.ApplyLink != "https://jobs.test/apply/101" {
		t.Errorf("apply link = %q", first.ApplyLink)
	}
	if len(first.Skills) != 2 || first.Skills[1] != "Kubernetes" {
		t.Errorf("skills = %v", first.Skills)
	}
	if !first.ScrapedAt.Equal(now) {
		t.Errorf("scraped at = %v", first.ScrapedAt)
	}

	// Second card omits salary and rating; extraction defaults them.
	second := listings[1]
	if second.Salary != "" || second.Rating != "" {
		t.Errorf("missing optional fields should default to empty, got rating %q salary %q", second.Rating, second.Salary)
	}
}

func TestListings_StopsWhenNoNextPage(t *testing.T) {
	profile := naukri(t)
	tab := &browsertest.Tab{
		HTMLFn: func(context.Context, string) (string, error) { return listingPage, nil },
		// no next-page control present
	}

	s := scrape.NewScraper(5, slog.Default())
	listings, err := s.Listings(context.Background(), tab, profile, criteria)
	if err != nil {
		t.Fatalf("Listings: %v", err)
	}
	if len(listings) != 2 {
		t.Errorf("got %d listings, want 2 (single page)", len(listings))
	}

	var navigations int
	for _, call := range tab.Calls {
		if strings.HasPrefix(call, "navigate") {
			navigations++
		}
	}
	if navigations != 1 {
		t.Errorf("navigated %d times, want 1", navigations)
	}
}

func TestListings_PaginatesUpToMaxPages(t *testing.T) {
	profile := naukri(t)
	tab := &browsertest.Tab{
		HTMLFn: func(context.Context, string) (string, error) { return listingPage, nil },
		PresentFn: func(_ context.Context, sel string) (bool, error) {
			// next-page control always present and enabled
			return sel == profile.Selectors.NextPage, nil
		},
	}

	s := scrape.NewScraper(3, slog.Default())
	listings, err := s.Listings(context.Background(), tab, profile, criteria)
	if err != nil {
		t.Fatalf("Listings: %v", err)
	}
	if len(listings) != 6 {
		t.Errorf("got %d listings, want 6 (3 pages x 2)", len(listings))
	}
}

func TestListings_FirstPageTimeoutIsScrapeTimeout(t *testing.T) {
	profile := naukri(t)
	tab := &browsertest.Tab{
		WaitVisibleFn: func(context.Context, string) error {
			return errors.New("waiting for selector timed out")
		},
	}

	s := scrape.NewScraper(3, slog.Default())
	_, err := s.Listings(context.Background(), tab, profile, criteria)
	if !errors.Is(err, domain.ErrScrapeTimeout) {
		t.Errorf("error = %v, want ErrScrapeTimeout", err)
	}
}
