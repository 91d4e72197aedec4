package dto

type ConfigRequest struct {
	ChannelID   string `json:"channelId"`
	ReadAPIKey  string `json:"readApiKey"`
	RefreshRate int    `json:"refreshRate"`
}

// StoredConfig is the persisted document under the config storage key.
type StoredConfig struct {
	ChannelID   string `json:"channelId"`
	ReadAPIKey  string `json:"readApiKey"`
	RefreshRate int    `json:"refreshRate"`
}
