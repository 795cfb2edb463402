package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"

	"github.com/amolmagar-dev/jobsuitex/internal/health"
	"github.com/amolmagar-dev/jobsuitex/internal/transport/http/handler"
	"github.com/amolmagar-dev/jobsuitex/internal/transport/http/middleware"
)

func NewRouter(logger *slog.Logger, campaignHandler *handler.CampaignHandler, checker *health.Checker) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	campaigns := r.Group("/campaigns")
	campaigns.POST("/:id/run-now", campaignHandler.RunNow)
	campaigns.POST("/:id/trigger", campaignHandler.AddTrigger)
	campaigns.DELETE("/:id/trigger", campaignHandler.RemoveTrigger)
	campaigns.PUT("/:id/trigger", campaignHandler.UpdateTrigger)
	campaigns.GET("/:id/summaries", campaignHandler.ListSummaries)

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, checker.Liveness(ctx.Request.Context()))
	})
	r.GET("/readyz", func(ctx *gin.Context) {
		result := checker.Readiness(ctx.Request.Context())
		status := http.StatusOK
		if result.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		ctx.JSON(status, result)
	})

	return r
}
