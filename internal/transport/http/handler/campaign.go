package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amolmagar-dev/jobsuitex/internal/domain"
	"github.com/amolmagar-dev/jobsuitex/internal/repository"
)

const defaultSummaryLimit = 20

// TriggerService is the scheduler surface the control plane exposes.
type TriggerService interface {
	RunNow(id string) bool
	AddJob(ctx context.Context, id string) error
	RemoveJob(ctx context.Context, id string) error
	UpdateJob(ctx context.Context, id string) error
}

type CampaignHandler struct {
	triggers TriggerService
	results  repository.ResultRepository
	logger   *slog.Logger
}

func NewCampaignHandler(triggers TriggerService, results repository.ResultRepository, logger *slog.Logger) *CampaignHandler {
	return &CampaignHandler{
		triggers: triggers,
		results:  results,
		logger:   logger.With("component", "campaign_handler"),
	}
}

// RunNow queues the campaign at the head of the execution queue. The
// call acknowledges queueing and never blocks on the run itself.
func (h *CampaignHandler) RunNow(ctx *gin.Context) {
	queued := h.triggers.RunNow(ctx.Param("id"))
	ctx.JSON(http.StatusAccepted, gin.H{"queued": queued})
}

func (h *CampaignHandler) AddTrigger(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := h.triggers.AddJob(ctx.Request.Context(), id); err != nil {
		h.writeTriggerError(ctx, id, "add trigger", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"registered": true})
}

func (h *CampaignHandler) RemoveTrigger(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := h.triggers.RemoveJob(ctx.Request.Context(), id); err != nil {
		h.writeTriggerError(ctx, id, "remove trigger", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"removed": true})
}

func (h *CampaignHandler) UpdateTrigger(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := h.triggers.UpdateJob(ctx.Request.Context(), id); err != nil {
		h.writeTriggerError(ctx, id, "update trigger", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"updated": true})
}

type runSummaryResponse struct {
	ID        string    `json:"id"`
	Found     int       `json:"found"`
	Applied   int       `json:"applied"`
	Failed    int       `json:"failed"`
	Reason    string    `json:"reason,omitempty"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

func (h *CampaignHandler) ListSummaries(ctx *gin.Context) {
	id := ctx.Param("id")

	limit, _ := strconv.Atoi(ctx.Query("limit"))
	if limit <= 0 || limit > 100 {
		limit = defaultSummaryLimit
	}

	summaries, err := h.results.ListRecentSummaries(ctx.Request.Context(), id, limit)
	if err != nil {
		h.logger.Error("list run summaries", "campaign_id", id, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	items := make([]runSummaryResponse, len(summaries))
	for i, s := range summaries {
		items[i] = runSummaryResponse{
			ID:        s.ID,
			Found:     s.Found,
			Applied:   s.Applied,
			Failed:    s.Failed,
			Reason:    s.Reason,
			StartedAt: s.StartedAt,
			EndedAt:   s.EndedAt,
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"summaries": items})
}

func (h *CampaignHandler) writeTriggerError(ctx *gin.Context, id, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrCampaignNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": errCampaignNotFound})
	case errors.Is(err, domain.ErrInvalidSchedule):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errInvalidSchedule})
	default:
		h.logger.Error(op, "campaign_id", id, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}
