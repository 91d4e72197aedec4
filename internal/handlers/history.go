package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/novaspeak/internal/dto"
	"github.com/GregMSThompson/novaspeak/internal/errs"
	"github.com/GregMSThompson/novaspeak/internal/models"
	"github.com/GregMSThompson/novaspeak/internal/response"
)

const historyDateLayout = "2006-01-02"

type HistoryService interface {
	DailyStats(ctx context.Context, date time.Time, showIgnored bool) ([]models.DailyFieldStats, error)
}

type historyHandlers struct {
	ResponseHandler response.ResponseHandler
	HistorySvc      HistoryService
	now             func() time.Time
}

func NewHistoryHandlers(deps *Deps) *historyHandlers {
	return &historyHandlers{
		ResponseHandler: deps.ResponseHandler,
		HistorySvc:      deps.HistorySvc,
		now:             time.Now,
	}
}

func (h *historyHandlers) HistoryRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetHistory)
	return r
}

// GetHistory returns per-field statistics for one calendar day.
// Query: date=YYYY-MM-DD (default today, UTC), showIgnored=bool.
func (h *historyHandlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	date := h.now().UTC().Truncate(24 * time.Hour)
	if raw := q.Get("date"); raw != "" {
		parsed, err := time.Parse(historyDateLayout, raw)
		if err != nil {
			h.ResponseHandler.HandleError(w, r, errs.NewValidationError("date must be YYYY-MM-DD"))
			return
		}
		date = parsed
	}

	showIgnored := false
	if raw := q.Get("showIgnored"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.ResponseHandler.HandleError(w, r, errs.NewValidationError("showIgnored must be a boolean"))
			return
		}
		showIgnored = v
	}

	stats, err := h.HistorySvc.DailyStats(r.Context(), date, showIgnored)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, dto.HistoryResponse{
		Date:        date.Format(historyDateLayout),
		ShowIgnored: showIgnored,
		Stats:       stats,
	})
}
