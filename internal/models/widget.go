package models

// WidgetKind is the visualization used to render a widget.
type WidgetKind string

const (
	WidgetKindLine WidgetKind = "line"
	WidgetKindArea WidgetKind = "area"
	WidgetKindBar  WidgetKind = "bar"
	WidgetKindStat WidgetKind = "stat"
)

// Next returns the kind that follows k in the toggle cycle.
func (k WidgetKind) Next() WidgetKind {
	switch k {
	case WidgetKindLine:
		return WidgetKindArea
	case WidgetKindArea:
		return WidgetKindBar
	case WidgetKindBar:
		return WidgetKindStat
	default:
		return WidgetKindLine
	}
}

// WidgetConfig represents one dashboard widget bound to a channel field slot.
// Label, color and field key are fixed at creation; kind, visibility and unit
// are user-editable.
type WidgetConfig struct {
	ID       string     `json:"id"`
	FieldKey FieldKey   `json:"fieldKey"`
	Label    string     `json:"label"`
	Kind     WidgetKind `json:"kind"`
	Color    string     `json:"color"`
	Unit     string     `json:"unit"`
	Visible  bool       `json:"visible"`
}
