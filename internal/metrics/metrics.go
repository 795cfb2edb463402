package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Campaign runs

	CampaignRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "engine",
		Name:      "campaign_runs_total",
		Help:      "Total campaign executions, by outcome.",
	}, []string{"outcome"})

	RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "engine",
		Name:      "campaign_run_duration_seconds",
		Help:      "Duration of one full login-scrape-apply pipeline.",
		Buckets:   []float64{5, 15, 30, 60, 120, 300, 600, 1200},
	})

	// Applications

	ApplicationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "engine",
		Name:      "applications_total",
		Help:      "Per-listing apply outcomes.",
	}, []string{"status"})

	// Queue

	QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "engine",
		Name:      "queue_depth",
		Help:      "Campaigns currently waiting in the execution queue.",
	})

	// Scraping

	ScrapedListingsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "engine",
		Name:      "scraped_listings_total",
		Help:      "Listings extracted before filtering.",
	})

	// Oracle

	OracleCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "engine",
		Name:      "oracle_calls_total",
		Help:      "Decision-oracle calls, by kind and outcome.",
	}, []string{"kind", "outcome"})

	// Browser lifecycle

	BrowserLaunchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "engine",
		Name:      "browser_launches_total",
		Help:      "Times the browser engine was launched.",
	})

	// HTTP control plane

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "engine",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "engine",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		CampaignRunsTotal,
		RunDuration,
		ApplicationsTotal,
		QueueDepth,
		ScrapedListingsTotal,
		OracleCallsTotal,
		BrowserLaunchesTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}
