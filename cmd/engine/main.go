package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/amolmagar-dev/jobsuitex/config"
	"github.com/amolmagar-dev/jobsuitex/internal/apply"
	"github.com/amolmagar-dev/jobsuitex/internal/browser"
	"github.com/amolmagar-dev/jobsuitex/internal/health"
	"github.com/amolmagar-dev/jobsuitex/internal/infrastructure/postgres"
	"github.com/amolmagar-dev/jobsuitex/internal/infrastructure/redisstore"
	ctxlog "github.com/amolmagar-dev/jobsuitex/internal/log"
	"github.com/amolmagar-dev/jobsuitex/internal/metrics"
	"github.com/amolmagar-dev/jobsuitex/internal/notify"
	"github.com/amolmagar-dev/jobsuitex/internal/oracle"
	"github.com/amolmagar-dev/jobsuitex/internal/orchestrator"
	"github.com/amolmagar-dev/jobsuitex/internal/portal"
	"github.com/amolmagar-dev/jobsuitex/internal/scheduler"
	"github.com/amolmagar-dev/jobsuitex/internal/scrape"
	httptransport "github.com/amolmagar-dev/jobsuitex/internal/transport/http"
	"github.com/amolmagar-dev/jobsuitex/internal/transport/http/handler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	rdb, err := redisstore.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		stop()
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	logger.Info("stores connected")

	metrics.Register()

	campaignRepo := postgres.NewCampaignRepository(pool, logger)
	credentialRepo := postgres.NewCredentialRepository(pool)
	resultRepo := postgres.NewResultRepository(pool, logger)
	sessionStore := redisstore.NewSessionStore(rdb)

	checker := health.NewChecker([]health.Dependency{
		{Name: "postgres", Pinger: pool},
		{Name: "redis", Pinger: sessionStore},
	}, logger, prometheus.DefaultRegisterer)

	resource := browser.NewResource(cfg.Headless, cfg.NavTimeout(), logger)
	defer resource.Release()

	oracleClient := oracle.NewClient(oracle.ClientConfig{
		APIBase: cfg.OracleAPIBase,
		APIKey:  cfg.OracleAPIKey,
		Model:   cfg.OracleModel,
	}, &http.Client{Timeout: 60 * time.Second})
	oracles := oracle.NewProvider(oracleClient, logger)

	sessions := portal.NewSessionManager(sessionStore, logger)
	scraper := scrape.NewScraper(cfg.ScrapeMaxPages, logger)
	machine := apply.NewMachine(cfg.SettleDelay(), cfg.MaxAnswerAttempts, logger)
	notifier := notify.NewNotifier(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)

	runner := orchestrator.New(
		resource,
		sessions,
		scraper,
		oracles,
		machine,
		credentialRepo,
		campaignRepo,
		resultRepo,
		notifier,
		logger,
	)

	sched := scheduler.New(campaignRepo, resultRepo, runner, logger, cfg.TickInterval())
	go sched.Start(ctx)

	campaignHandler := handler.NewCampaignHandler(sched, resultRepo, logger)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, campaignHandler, checker),
	}

	metricsSrv := metrics.NewServer(":" + cfg.MetricsPort)

	go func() {
		logger.Info("control plane started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}

	logger.Info("engine shut down")
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
