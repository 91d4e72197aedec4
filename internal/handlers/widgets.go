package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/novaspeak/internal/dto"
	"github.com/GregMSThompson/novaspeak/internal/errs"
	"github.com/GregMSThompson/novaspeak/internal/response"
)

type widgetHandlers struct {
	ResponseHandler response.ResponseHandler
	Widgets         WidgetService
}

func NewWidgetHandlers(deps *Deps) *widgetHandlers {
	return &widgetHandlers{
		ResponseHandler: deps.ResponseHandler,
		Widgets:         deps.Widgets,
	}
}

func (h *widgetHandlers) WidgetRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListWidgets)
	r.Post("/{widgetId}/kind", h.ToggleKind)
	r.Patch("/{widgetId}", h.UpdateWidget)
	return r
}

func (h *widgetHandlers) ListWidgets(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.Widgets.List())
}

func (h *widgetHandlers) ToggleKind(w http.ResponseWriter, r *http.Request) {
	widget, err := h.Widgets.ToggleKind(chi.URLParam(r, "widgetId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, widget)
}

func (h *widgetHandlers) UpdateWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetId")
	var req dto.WidgetPatchRequest
	if err := decodeBody(r, &req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if req.Visible == nil && req.Unit == nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("nothing to update"))
		return
	}

	widget, err := h.Widgets.Get(widgetID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if req.Visible != nil {
		if widget, err = h.Widgets.SetVisible(widgetID, *req.Visible); err != nil {
			h.ResponseHandler.HandleError(w, r, err)
			return
		}
	}
	if req.Unit != nil {
		if widget, err = h.Widgets.SetUnit(widgetID, *req.Unit); err != nil {
			h.ResponseHandler.HandleError(w, r, err)
			return
		}
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, widget)
}
