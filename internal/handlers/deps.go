package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/GregMSThompson/novaspeak/internal/dto"
	"github.com/GregMSThompson/novaspeak/internal/metrics"
	"github.com/GregMSThompson/novaspeak/internal/models"
	"github.com/GregMSThompson/novaspeak/internal/response"
)

type ConfigService interface {
	Current() models.AppConfig
	Save(ctx context.Context, req dto.ConfigRequest) (models.AppConfig, error)
}

// DashboardController is the refresh loop as seen by the HTTP layer.
type DashboardController interface {
	Apply(ctx context.Context, cfg models.AppConfig)
	Refresh(ctx context.Context) error
	State() models.DashboardState
	Snapshot() (models.ChannelSnapshot, bool)
}

type WidgetService interface {
	List() []models.WidgetConfig
	Get(id string) (models.WidgetConfig, error)
	ToggleKind(id string) (models.WidgetConfig, error)
	SetVisible(id string, visible bool) (models.WidgetConfig, error)
	SetUnit(id, unit string) (models.WidgetConfig, error)
	ActiveFieldKeys() []models.FieldKey
}

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	ConfigSvc       ConfigService
	Controller      DashboardController
	Widgets         WidgetService
	HistorySvc      HistoryService
	InsightSvc      InsightService
	Metrics         metrics.Recorder
	MetricsHandler  http.Handler
	Assets          http.Handler
}
