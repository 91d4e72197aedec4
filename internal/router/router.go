package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/GregMSThompson/novaspeak/internal/handlers"
	"github.com/GregMSThompson/novaspeak/internal/metrics"
	"github.com/GregMSThompson/novaspeak/internal/middleware"
)

func NewRouter(deps *handlers.Deps) chi.Router {
	r := chi.NewRouter()

	lm := middleware.NewLoggerMiddleware(deps.Log)
	r.Use(chimiddleware.RequestID)
	r.Use(lm.LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)
	if deps.Metrics != nil {
		r.Use(metrics.Middleware(deps.Metrics))
	}

	cfh := handlers.NewConfigHandlers(deps)
	dbh := handlers.NewDashboardHandlers(deps)
	wgh := handlers.NewWidgetHandlers(deps)
	hsh := handlers.NewHistoryHandlers(deps)
	inh := handlers.NewInsightHandlers(deps)
	hh := handlers.NewHealthHandlers(deps)

	r.Route("/api", func(r chi.Router) {
		r.Use(chimiddleware.NoCache)
		r.Mount("/config", cfh.ConfigRoutes())
		r.Mount("/dashboard", dbh.DashboardRoutes())
		r.Mount("/widgets", wgh.WidgetRoutes())
		r.Mount("/history", hsh.HistoryRoutes())
		r.Mount("/insight", inh.InsightRoutes())
	})
	r.Get("/healthz", hh.Healthz)

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
	if deps.Assets != nil {
		r.With(chimiddleware.Compress(5)).Handle("/*", deps.Assets)
	}
	return r
}
