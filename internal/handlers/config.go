package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/novaspeak/internal/dto"
	"github.com/GregMSThompson/novaspeak/internal/response"
)

type configHandlers struct {
	ResponseHandler response.ResponseHandler
	ConfigSvc       ConfigService
	Controller      DashboardController
}

func NewConfigHandlers(deps *Deps) *configHandlers {
	return &configHandlers{
		ResponseHandler: deps.ResponseHandler,
		ConfigSvc:       deps.ConfigSvc,
		Controller:      deps.Controller,
	}
}

func (h *configHandlers) ConfigRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetConfig)
	r.Put("/", h.SaveConfig)
	return r
}

func (h *configHandlers) GetConfig(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.ConfigSvc.Current())
}

// SaveConfig persists the submitted configuration and hands it to the
// refresh controller. A failed load after a channel change is reported
// through the dashboard state, not here.
func (h *configHandlers) SaveConfig(w http.ResponseWriter, r *http.Request) {
	var req dto.ConfigRequest
	if err := decodeBody(r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	cfg, err := h.ConfigSvc.Save(r.Context(), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.Controller.Apply(r.Context(), cfg)
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, cfg)
}
