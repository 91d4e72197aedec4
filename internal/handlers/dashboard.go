package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/novaspeak/internal/response"
)

type dashboardHandlers struct {
	ResponseHandler response.ResponseHandler
	Controller      DashboardController
}

func NewDashboardHandlers(deps *Deps) *dashboardHandlers {
	return &dashboardHandlers{
		ResponseHandler: deps.ResponseHandler,
		Controller:      deps.Controller,
	}
}

func (h *dashboardHandlers) DashboardRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetDashboard)
	r.Post("/refresh", h.Refresh)
	return r
}

func (h *dashboardHandlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.Controller.State())
}

// Refresh runs a manual load. Fetch failures are part of the returned state.
func (h *dashboardHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	_ = h.Controller.Refresh(r.Context())
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.Controller.State())
}
