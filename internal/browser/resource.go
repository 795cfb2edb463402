package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"golang.org/x/sync/singleflight"

	"github.com/amolmagar-dev/jobsuitex/internal/domain"
	"github.com/amolmagar-dev/jobsuitex/internal/metrics"
)

const launchTimeout = 30 * time.Second

// Resource owns the single live browser engine instance shared by all
// campaign runs. The serialized queue processor is the only consumer,
// but Acquire is still safe under concurrent callers: launches are
// deduplicated so everyone shares one instance.
type Resource struct {
	headless bool
	timeout  time.Duration
	logger   *slog.Logger

	sf singleflight.Group

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

func NewResource(headless bool, navTimeout time.Duration, logger *slog.Logger) *Resource {
	return &Resource{
		headless: headless,
		timeout:  navTimeout,
		logger:   logger.With("component", "browser"),
	}
}

// Acquire launches the browser engine, or reuses the live instance.
func (r *Resource) Acquire(ctx context.Context) error {
	_, err, _ := r.sf.Do("launch", func() (any, error) {
		return nil, r.launch(ctx)
	})
	return err
}

func (r *Resource) launch(ctx context.Context) error {
	r.mu.Lock()
	live := r.browserCtx != nil && r.browserCtx.Err() == nil
	r.mu.Unlock()
	if live {
		return nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", r.headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	startCtx, startCancel := context.WithTimeout(browserCtx, launchTimeout)
	defer startCancel()
	if err := chromedp.Run(startCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("%w: launch: %v", domain.ErrResourceUnavailable, err)
	}
	if err := ctx.Err(); err != nil {
		browserCancel()
		allocCancel()
		return err
	}

	r.mu.Lock()
	r.allocCancel = allocCancel
	r.browserCtx = browserCtx
	r.browserCancel = browserCancel
	r.mu.Unlock()

	// When the engine dies out from under us, forget the handle so the
	// next Acquire relaunches instead of returning a dead instance.
	context.AfterFunc(browserCtx, func() { r.forget(browserCtx) })

	metrics.BrowserLaunchesTotal.Inc()
	r.logger.Info("browser launched", "headless", r.headless)
	return nil
}

func (r *Resource) forget(dead context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browserCtx == dead {
		r.browserCtx = nil
		r.browserCancel = nil
		r.allocCancel = nil
		r.logger.Warn("browser disconnected unexpectedly")
	}
}

// NewTab opens a fresh browsing context for one listing's flow. Tabs
// share the engine's cookie state but are otherwise isolated.
func (r *Resource) NewTab() (Tab, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browserCtx == nil || r.browserCtx.Err() != nil {
		return nil, domain.ErrResourceUnavailable
	}
	tabCtx, tabCancel := chromedp.NewContext(r.browserCtx)
	return &Page{ctx: tabCtx, cancel: tabCancel, timeout: r.timeout}, nil
}

// Release closes the engine. Safe to call when nothing is open.
func (r *Resource) Release() {
	r.mu.Lock()
	browserCancel := r.browserCancel
	allocCancel := r.allocCancel
	r.browserCtx = nil
	r.browserCancel = nil
	r.allocCancel = nil
	r.mu.Unlock()

	if browserCancel != nil {
		browserCancel()
	}
	if allocCancel != nil {
		allocCancel()
	}
}
