package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/novaspeak/internal/dto"
	"github.com/GregMSThompson/novaspeak/internal/response"
	"github.com/GregMSThompson/novaspeak/internal/services"
)

type InsightService interface {
	Current(ctx context.Context, source services.SnapshotSource, fields services.ActiveFields) (string, error)
}

type insightHandlers struct {
	ResponseHandler response.ResponseHandler
	InsightSvc      InsightService
	Controller      DashboardController
	Widgets         WidgetService
}

func NewInsightHandlers(deps *Deps) *insightHandlers {
	return &insightHandlers{
		ResponseHandler: deps.ResponseHandler,
		InsightSvc:      deps.InsightSvc,
		Controller:      deps.Controller,
		Widgets:         deps.Widgets,
	}
}

func (h *insightHandlers) InsightRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.GenerateInsight)
	return r
}

func (h *insightHandlers) GenerateInsight(w http.ResponseWriter, r *http.Request) {
	text, err := h.InsightSvc.Current(r.Context(), h.Controller, h.Widgets)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, dto.InsightResponse{Insight: text})
}
