package models

import "time"

type DashboardStatus string

const (
	StatusUnconfigured DashboardStatus = "unconfigured"
	StatusLoading      DashboardStatus = "loading"
	StatusError        DashboardStatus = "error"
	StatusReady        DashboardStatus = "ready"
)

// DashboardState is the view the refresh controller exposes to the page.
type DashboardState struct {
	Status        DashboardStatus  `json:"status"`
	Loading       bool             `json:"loading"`
	ChannelID     string           `json:"channelId"`
	Snapshot      *ChannelSnapshot `json:"snapshot,omitempty"`
	Widgets       []WidgetConfig   `json:"widgets"`
	Error         string           `json:"error,omitempty"`
	LastRefreshed *time.Time       `json:"lastRefreshed,omitempty"`
	RefreshRate   int              `json:"refreshRate"`
}
