package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/adserve-labs/adengine/internal/analytics"
	"github.com/adserve-labs/adengine/internal/api"
	"github.com/adserve-labs/adengine/internal/blob"
	"github.com/adserve-labs/adengine/internal/cache"
	"github.com/adserve-labs/adengine/internal/clock"
	"github.com/adserve-labs/adengine/internal/config"
	"github.com/adserve-labs/adengine/internal/db"
	"github.com/adserve-labs/adengine/internal/moderation"
	"github.com/adserve-labs/adengine/internal/observability"
	"github.com/adserve-labs/adengine/internal/selector"
	"github.com/adserve-labs/adengine/internal/service"
	"github.com/adserve-labs/adengine/internal/stats"
	"github.com/adserve-labs/adengine/internal/textgen"
)

func main() {
	cfg := config.Load()

	logger, err := observability.InitLogger(cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
		}
	}()

	if err := run(logger, cfg); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracing(ctx, logger, cfg.ServiceName, cfg.OTLPEndpoint, cfg.TracingSampleRate)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer shutdown()
	}

	pg, err := db.InitPostgres(cfg.PostgresDSN, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)
	if err != nil {
		return fmt.Errorf("failed to connect postgres: %w", err)
	}
	defer pg.Close()

	redisClient, err := db.InitRedis(cfg.RedisAddr)
	if err != nil {
		return fmt.Errorf("failed to connect redis: %w", err)
	}
	defer db.CloseRedis(redisClient)

	metricsRegistry := observability.NewPrometheusRegistry()

	var mirror analytics.Service
	if cfg.ClickHouseDSN != "" {
		analyticsSvc, err := analytics.InitClickHouse(cfg.ClickHouseDSN, metricsRegistry)
		if err != nil {
			return fmt.Errorf("failed to connect clickhouse: %w", err)
		}
		defer analyticsSvc.Close()
		mirror = analyticsSvc
	}

	activeCache := cache.NewActiveCache(redisClient)
	reconciler := service.NewReconciler(pg, pg, activeCache)

	clockSvc, err := clock.NewService(ctx, pg, reconciler.Run, metricsRegistry)
	if err != nil {
		return fmt.Errorf("init clock: %w", err)
	}
	if err := reconciler.Run(ctx, clockSvc.Now()); err != nil {
		return fmt.Errorf("initial cache reconcile: %w", err)
	}

	sel := selector.New(selector.Weights{
		Profit:      cfg.WeightProfit,
		Relevance:   cfg.WeightRelevance,
		Fulfillment: cfg.WeightFulfillment,
		TimeLeft:    cfg.WeightTimeLeft,
	}, cfg.ExplorationEpsilon, nil)

	moderationSvc := moderation.NewService(pg, cfg.ModerationSensitivity, metricsRegistry)
	generator := textgen.NewClient(cfg.GPTURL, cfg.GPTTimeout, logger, metricsRegistry)
	images := blob.NewRedisStore(redisClient, cfg.MaxImagesPerCampaign, cfg.MaxImageSize, cfg.AllowedImageTypes)

	adsSvc := service.NewAdService(pg, pg, pg, activeCache, sel, mirror, clockSvc, metricsRegistry)
	lifecycle := service.NewCampaignLifecycle(pg, pg, pg, activeCache, moderationSvc, generator,
		service.GeneratePrompts{Title: cfg.GPTTitlePrompt, Text: cfg.GPTTextPrompt}, images, clockSvc)
	statsEngine := stats.NewEngine(pg)

	srvDeps := api.NewServer(logger, pg, adsSvc, lifecycle, statsEngine, moderationSvc, clockSvc, images, metricsRegistry, cfg)
	r := srvDeps.NewRouter()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("Ad engine running", zap.String("addr", srv.Addr), zap.Uint32("day", clockSvc.Now()))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
