package models

const (
	MinRefreshRate     = 15
	MaxRefreshRate     = 3600
	DefaultRefreshRate = 15
)

// AppConfig is the single persisted user configuration.
type AppConfig struct {
	ChannelID   string `json:"channelId" validate:"isNumber"`
	ReadAPIKey  string `json:"readApiKey"`
	RefreshRate int    `json:"refreshRate" validate:"required|min:15|max:3600"`
}

func DefaultAppConfig() AppConfig {
	return AppConfig{RefreshRate: DefaultRefreshRate}
}

// Configured reports whether a channel has been set.
func (c AppConfig) Configured() bool { return c.ChannelID != "" }
