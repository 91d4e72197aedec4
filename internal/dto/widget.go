package dto

// WidgetPatchRequest carries optional edits; nil fields are left unchanged.
type WidgetPatchRequest struct {
	Visible *bool   `json:"visible,omitempty"`
	Unit    *string `json:"unit,omitempty"`
}
