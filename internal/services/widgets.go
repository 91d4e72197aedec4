package services

import (
	"fmt"
	"sync"

	"github.com/GregMSThompson/novaspeak/internal/errs"
	"github.com/GregMSThompson/novaspeak/internal/models"
)

// Palette is the fixed widget color rotation.
var Palette = [...]string{
	"#6366f1",
	"#10b981",
	"#f43f5e",
	"#eab308",
	"#8b5cf6",
	"#06b6d4",
	"#f97316",
	"#ec4899",
}

func widgetID(k models.FieldKey) string {
	return fmt.Sprintf("w-%d", int(k))
}

// DeriveWidgets builds one widget per named channel field, in slot order.
func DeriveWidgets(snapshot models.ChannelSnapshot) []models.WidgetConfig {
	widgets := make([]models.WidgetConfig, 0, models.FieldCount)
	for _, key := range models.FieldKeys() {
		label := snapshot.Channel.FieldName(key)
		if label == "" {
			continue
		}
		kind := models.WidgetKindLine
		if key == 1 {
			kind = models.WidgetKindArea
		}
		widgets = append(widgets, models.WidgetConfig{
			ID:       widgetID(key),
			FieldKey: key,
			Label:    label,
			Kind:     kind,
			Color:    Palette[len(widgets)%len(Palette)],
			Visible:  true,
		})
	}
	return widgets
}

// WidgetRegistry holds the widgets of the current channel. It is replaced
// only through Derive; everything else edits single widgets in place.
type WidgetRegistry struct {
	mu      sync.RWMutex
	widgets []models.WidgetConfig
}

func NewWidgetRegistry() *WidgetRegistry {
	return &WidgetRegistry{}
}

func (r *WidgetRegistry) Derive(snapshot models.ChannelSnapshot) []models.WidgetConfig {
	widgets := DeriveWidgets(snapshot)
	r.mu.Lock()
	r.widgets = widgets
	r.mu.Unlock()
	return r.List()
}

// Reset drops every widget; used when the channel changes.
func (r *WidgetRegistry) Reset() {
	r.mu.Lock()
	r.widgets = nil
	r.mu.Unlock()
}

func (r *WidgetRegistry) List() []models.WidgetConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.WidgetConfig, len(r.widgets))
	copy(out, r.widgets)
	return out
}

func (r *WidgetRegistry) Get(id string) (models.WidgetConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return models.WidgetConfig{}, errs.NewNotFoundError("widget not found")
	}
	return r.widgets[i], nil
}

// ToggleKind advances the widget to the next kind in the cycle.
func (r *WidgetRegistry) ToggleKind(id string) (models.WidgetConfig, error) {
	return r.update(id, func(w *models.WidgetConfig) {
		w.Kind = w.Kind.Next()
	})
}

func (r *WidgetRegistry) SetVisible(id string, visible bool) (models.WidgetConfig, error) {
	return r.update(id, func(w *models.WidgetConfig) {
		w.Visible = visible
	})
}

func (r *WidgetRegistry) SetUnit(id, unit string) (models.WidgetConfig, error) {
	return r.update(id, func(w *models.WidgetConfig) {
		w.Unit = unit
	})
}

// ActiveFieldKeys returns the field keys of visible widgets in order.
func (r *WidgetRegistry) ActiveFieldKeys() []models.FieldKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]models.FieldKey, 0, len(r.widgets))
	for _, w := range r.widgets {
		if w.Visible {
			keys = append(keys, w.FieldKey)
		}
	}
	return keys
}

func (r *WidgetRegistry) update(id string, fn func(*models.WidgetConfig)) (models.WidgetConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return models.WidgetConfig{}, errs.NewNotFoundError("widget not found")
	}
	fn(&r.widgets[i])
	return r.widgets[i], nil
}

func (r *WidgetRegistry) indexOf(id string) int {
	for i := range r.widgets {
		if r.widgets[i].ID == id {
			return i
		}
	}
	return -1
}
