package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/novaspeak/internal/dto"
	"github.com/GregMSThompson/novaspeak/internal/errs"
	"github.com/GregMSThompson/novaspeak/internal/models"
	"github.com/GregMSThompson/novaspeak/internal/services"
)

type stubResponseHandler struct {
	writeSuccessCalled bool
	writeSuccessStatus int
	writeSuccessData   any

	handleErrorCalled bool
	handleError       error

	writeErrorCalled bool
	writeErrorStatus int
	writeErrorCode   string
	writeErrorMsg    string
}

func (s *stubResponseHandler) WriteSuccess(w http.ResponseWriter, r *http.Request, status int, data any) {
	s.writeSuccessCalled = true
	s.writeSuccessStatus = status
	s.writeSuccessData = data

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"success":true}`))
}

func (s *stubResponseHandler) WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	s.writeErrorCalled = true
	s.writeErrorStatus = status
	s.writeErrorCode = code
	s.writeErrorMsg = message
	w.WriteHeader(status)
}

func (s *stubResponseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	s.handleErrorCalled = true
	s.handleError = err
	w.WriteHeader(http.StatusInternalServerError)
}

func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

type stubConfigService struct {
	current models.AppConfig

	saveCalled bool
	saveReq    dto.ConfigRequest
	saved      models.AppConfig
	saveErr    error
}

func (s *stubConfigService) Current() models.AppConfig { return s.current }

func (s *stubConfigService) Save(_ context.Context, req dto.ConfigRequest) (models.AppConfig, error) {
	s.saveCalled = true
	s.saveReq = req
	if s.saveErr != nil {
		return models.AppConfig{}, s.saveErr
	}
	return s.saved, nil
}

type stubController struct {
	state    models.DashboardState
	snapshot *models.ChannelSnapshot

	applyCalled bool
	applied     models.AppConfig

	refreshCalled bool
	refreshErr    error
}

func (s *stubController) Apply(_ context.Context, cfg models.AppConfig) {
	s.applyCalled = true
	s.applied = cfg
}

func (s *stubController) Refresh(context.Context) error {
	s.refreshCalled = true
	return s.refreshErr
}

func (s *stubController) State() models.DashboardState { return s.state }

func (s *stubController) Snapshot() (models.ChannelSnapshot, bool) {
	if s.snapshot == nil {
		return models.ChannelSnapshot{}, false
	}
	return *s.snapshot, true
}

type stubWidgets struct {
	widgets []models.WidgetConfig

	toggled    string
	visibleSet *bool
	unitSet    *string
}

func (s *stubWidgets) List() []models.WidgetConfig { return s.widgets }

func (s *stubWidgets) find(id string) (int, error) {
	for i, w := range s.widgets {
		if w.ID == id {
			return i, nil
		}
	}
	return -1, errs.NewNotFoundError("widget not found")
}

func (s *stubWidgets) Get(id string) (models.WidgetConfig, error) {
	i, err := s.find(id)
	if err != nil {
		return models.WidgetConfig{}, err
	}
	return s.widgets[i], nil
}

func (s *stubWidgets) ToggleKind(id string) (models.WidgetConfig, error) {
	i, err := s.find(id)
	if err != nil {
		return models.WidgetConfig{}, err
	}
	s.toggled = id
	s.widgets[i].Kind = s.widgets[i].Kind.Next()
	return s.widgets[i], nil
}

func (s *stubWidgets) SetVisible(id string, visible bool) (models.WidgetConfig, error) {
	i, err := s.find(id)
	if err != nil {
		return models.WidgetConfig{}, err
	}
	s.visibleSet = &visible
	s.widgets[i].Visible = visible
	return s.widgets[i], nil
}

func (s *stubWidgets) SetUnit(id, unit string) (models.WidgetConfig, error) {
	i, err := s.find(id)
	if err != nil {
		return models.WidgetConfig{}, err
	}
	s.unitSet = &unit
	s.widgets[i].Unit = unit
	return s.widgets[i], nil
}

func (s *stubWidgets) ActiveFieldKeys() []models.FieldKey {
	var keys []models.FieldKey
	for _, w := range s.widgets {
		if w.Visible {
			keys = append(keys, w.FieldKey)
		}
	}
	return keys
}

type stubHistoryService struct {
	called      bool
	date        time.Time
	showIgnored bool
	stats       []models.DailyFieldStats
	err         error
}

func (s *stubHistoryService) DailyStats(_ context.Context, date time.Time, showIgnored bool) ([]models.DailyFieldStats, error) {
	s.called = true
	s.date = date
	s.showIgnored = showIgnored
	return s.stats, s.err
}

type stubInsightService struct {
	called bool
	source services.SnapshotSource
	fields services.ActiveFields
	text   string
	err    error
}

func (s *stubInsightService) Current(_ context.Context, source services.SnapshotSource, fields services.ActiveFields) (string, error) {
	s.called = true
	s.source = source
	s.fields = fields
	return s.text, s.err
}
