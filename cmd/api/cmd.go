package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/GregMSThompson/novaspeak/internal/bootstrap"
	"github.com/GregMSThompson/novaspeak/internal/cache"
	"github.com/GregMSThompson/novaspeak/internal/client/thingspeak"
	"github.com/GregMSThompson/novaspeak/internal/config"
	"github.com/GregMSThompson/novaspeak/internal/handlers"
	"github.com/GregMSThompson/novaspeak/internal/metrics"
	"github.com/GregMSThompson/novaspeak/internal/models"
	"github.com/GregMSThompson/novaspeak/internal/response"
	"github.com/GregMSThompson/novaspeak/internal/router"
	"github.com/GregMSThompson/novaspeak/internal/services"
	"github.com/GregMSThompson/novaspeak/internal/store"
	"github.com/GregMSThompson/novaspeak/internal/web"
	"github.com/GregMSThompson/novaspeak/pkg/logger"
)

const historyCacheTTL = 24 * time.Hour

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	_ = godotenv.Load()

	// bootstrap
	cfg := config.New()
	appCtx := context.Background()
	bs, err := bootstrap.Run(appCtx, cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()
	appCtx = logger.ToContext(appCtx, bs.Log)

	// clients
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	feed := thingspeak.New(cfg.ThingSpeakBaseURL, httpClient,
		thingspeak.WithTimezone(cfg.ThingSpeakTimezone),
		thingspeak.WithMetrics(bs.Metrics),
	)

	// stores
	cstore := store.NewConfigStore(bs.Settings, nil)
	if bs.KMS != nil {
		cstore = store.NewConfigStore(bs.Settings, bs.KMS)
	}
	dayCache, err := cache.New(cfg.HistoryCacheMB, historyCacheTTL)
	exitOnError("history cache init failed", err, bs.Log)

	// services
	defaults := models.DefaultAppConfig()
	defaults.ChannelID = cfg.DefaultChannelID
	defaults.ReadAPIKey = bs.DefaultReadKey
	cfgserv := services.NewConfigService(cstore, defaults)

	widgets := services.NewWidgetRegistry()
	controller := services.NewRefreshController(bs.Log, feed, widgets,
		services.WithResults(cfg.FeedResults),
		services.WithRefreshMetrics(bs.Metrics),
	)
	hserv := services.NewHistoryService(feed, dayCache, cfgserv, widgets, bs.Metrics,
		services.WithDayTimezone(cfg.ThingSpeakTimezone),
	)

	iserv := services.NewInsightService(nil, cfg.AIMaxTokens, bs.Metrics)
	if bs.VertexAdapter != nil {
		iserv = services.NewInsightService(bs.VertexAdapter, cfg.AIMaxTokens, bs.Metrics)
	}

	// response handler
	rh := response.New(bs.Log)

	// assets
	assets, err := web.New(cfg.AssetVersion)
	exitOnError("asset init failed", err, bs.Log)

	// dependencies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.ConfigSvc = cfgserv
	deps.Controller = controller
	deps.Widgets = widgets
	deps.HistorySvc = hserv
	deps.InsightSvc = iserv
	deps.Metrics = bs.Metrics
	deps.Assets = assets
	if prom, ok := bs.Metrics.(*metrics.Prometheus); ok {
		deps.MetricsHandler = prom.Handler()
	}

	// initial configuration
	initial, err := cfgserv.Load(appCtx)
	if err != nil {
		bs.Log.Error("config load failed, using defaults", "error", err)
	}
	go controller.ApplyInitial(appCtx, initial)

	// server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router.NewRouter(deps),
	}

	serverErr := make(chan error, 1)
	go func() {
		bs.Log.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		bs.Log.Info("shutdown signal received")
	case err := <-serverErr:
		controller.Stop()
		bs.Close()
		exitOnError("server failed", err, bs.Log)
	}

	controller.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		bs.Log.Error("shutdown failed", "error", err)
	}
	bs.Log.Info("gracefully stopped")
}
