package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/amolmagar-dev/jobsuitex/internal/domain"
	"github.com/amolmagar-dev/jobsuitex/internal/metrics"
	"github.com/amolmagar-dev/jobsuitex/internal/repository"
)

// Runner executes one full campaign run. The returned summary is never
// nil when err is nil.
type Runner interface {
	Run(ctx context.Context, campaign *domain.Campaign) (*domain.RunSummary, error)
}

// Scheduler decides when campaigns run and serializes their execution.
// A ticker finds due campaigns and enqueues them; one logical consumer
// drains the queue so at most one campaign executes at a time. That
// single-consumer invariant is what makes the shared browser resource
// safe without further locking.
type Scheduler struct {
	campaigns repository.CampaignRepository
	results   repository.ResultRepository
	runner    Runner
	logger    *slog.Logger
	interval  time.Duration

	queue      *queue
	wake       chan struct{}
	processing atomic.Bool
	now        func() time.Time
}

func New(
	campaigns repository.CampaignRepository,
	results repository.ResultRepository,
	runner Runner,
	logger *slog.Logger,
	interval time.Duration,
) *Scheduler {
	return &Scheduler{
		campaigns: campaigns,
		results:   results,
		runner:    runner,
		logger:    logger.With("component", "scheduler"),
		interval:  interval,
		queue:     newQueue(),
		wake:      make(chan struct{}, 1),
		now:       time.Now,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler shut down")
			return
		case <-ticker.C:
			s.Tick(ctx)
			s.processQueue(ctx)
		case <-s.wake:
			s.processQueue(ctx)
		}
	}
}

// Tick enqueues every active campaign whose next run is due. The new
// next_run_at is persisted before the campaign is enqueued, so a crash
// mid-run cannot cause an immediate re-trigger on restart.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.now()

	due, err := s.campaigns.FindDue(ctx, now)
	if err != nil {
		// Retried on the next tick.
		s.logger.Error("find due campaigns", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}

	for _, c := range due {
		next, err := c.Schedule.NextRun(now)
		if err != nil {
			s.logger.Error("compute next run", "campaign_id", c.ID, "error", err)
			continue
		}
		if err := s.campaigns.UpdateScheduleTimestamps(ctx, c.ID, nil, &next); err != nil {
			// Skip rather than enqueue: without the advanced timestamp
			// the campaign would re-trigger on every tick.
			s.logger.Error("advance next run", "campaign_id", c.ID, "error", err)
			continue
		}
		if s.queue.Push(c.ID) {
			s.logger.Info("campaign enqueued", "campaign_id", c.ID, "next_run_at", next)
		}
	}
}

// RunNow places the campaign at the head of the queue and wakes the
// processor. Reports whether the campaign was newly queued; an entry
// already waiting keeps its position.
func (s *Scheduler) RunNow(id string) bool {
	queued := s.queue.PushFront(id)
	s.wakeProcessor()
	return queued
}

// AddJob registers a campaign's recurring trigger: activates it and
// persists its first next_run_at.
func (s *Scheduler) AddJob(ctx context.Context, id string) error {
	c, err := s.campaigns.FindByID(ctx, id)
	if err != nil {
		return err
	}

	next, err := c.Schedule.NextRun(s.now())
	if err != nil {
		return fmt.Errorf("campaign %s: %w", id, err)
	}
	if err := s.campaigns.SetActive(ctx, id, true); err != nil {
		return err
	}
	if err := s.campaigns.UpdateScheduleTimestamps(ctx, id, nil, &next); err != nil {
		return err
	}

	s.logger.Info("trigger registered", "campaign_id", id, "next_run_at", next)
	return nil
}

// RemoveJob deregisters a campaign's trigger. An entry already queued
// but not yet started is also dropped; a run in progress is never
// interrupted.
func (s *Scheduler) RemoveJob(ctx context.Context, id string) error {
	if err := s.campaigns.SetActive(ctx, id, false); err != nil {
		return err
	}
	if s.queue.Remove(id) {
		s.logger.Info("queued campaign dropped", "campaign_id", id)
	}
	s.logger.Info("trigger removed", "campaign_id", id)
	return nil
}

// UpdateJob re-registers a trigger after a schedule change, defined as
// remove-then-add so there is no partial-update state.
func (s *Scheduler) UpdateJob(ctx context.Context, id string) error {
	if err := s.RemoveJob(ctx, id); err != nil {
		return err
	}
	return s.AddJob(ctx, id)
}

func (s *Scheduler) wakeProcessor() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// processQueue drains the queue strictly FIFO. The CAS guard makes a
// second invocation a no-op while a drain is in flight, which is the
// single-consumer invariant the browser resource depends on.
func (s *Scheduler) processQueue(ctx context.Context) {
	if !s.processing.CompareAndSwap(false, true) {
		return
	}
	defer s.processing.Store(false)

	for {
		if ctx.Err() != nil {
			return
		}
		id, ok := s.queue.Pop()
		if !ok {
			return
		}
		s.runCampaign(ctx, id)
	}
}

func (s *Scheduler) runCampaign(ctx context.Context, id string) {
	logger := s.logger.With("campaign_id", id)

	campaign, err := s.campaigns.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrCampaignNotFound) {
			logger.Warn("queued campaign no longer exists")
			return
		}
		logger.Error("load queued campaign", "error", err)
		s.saveFailedSummary(ctx, id, s.now(), fmt.Sprintf("load campaign: %v", err))
		return
	}

	started := s.now()
	logger.Info("campaign run started")

	summary, err := s.runner.Run(ctx, campaign)
	if err != nil {
		// The failure aborts only this run; the queue keeps draining.
		logger.Error("campaign run failed", "error", err)
		metrics.CampaignRunsTotal.WithLabelValues("failed").Inc()
		s.saveFailedSummary(ctx, id, started, err.Error())
		return
	}

	metrics.CampaignRunsTotal.WithLabelValues("completed").Inc()
	if err := s.results.SaveRunSummary(ctx, summary); err != nil {
		logger.Error("save run summary", "error", err)
	}
	logger.Info("campaign run completed",
		"found", summary.Found,
		"applied", summary.Applied,
		"failed", summary.Failed,
		"duration", summary.EndedAt.Sub(summary.StartedAt),
	)
}

func (s *Scheduler) saveFailedSummary(ctx context.Context, campaignID string, started time.Time, reason string) {
	summary := &domain.RunSummary{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		Reason:     reason,
		StartedAt:  started,
		EndedAt:    s.now(),
	}
	if err := s.results.SaveRunSummary(ctx, summary); err != nil {
		s.logger.Error("save failed run summary", "campaign_id", campaignID, "error", err)
	}
}
