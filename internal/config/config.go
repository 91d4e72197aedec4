package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type StorageBackend string

const (
	StorageSQLite    StorageBackend = "sqlite"
	StoragePostgres  StorageBackend = "postgres"
	StorageRedis     StorageBackend = "redis"
	StorageFirestore StorageBackend = "firestore"
)

type Config struct {
	Port     string
	LogLevel string

	ProjectID   string
	Region      string
	VertexModel string
	AIMaxTokens int32
	KMSKeyName  string

	ReadAPIKeySecret string
	DefaultChannelID string

	StorageBackend StorageBackend
	StoragePath    string
	DatabaseURL    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	ThingSpeakBaseURL  string
	ThingSpeakTimezone string
	FeedResults        int
	HTTPTimeout        time.Duration

	HistoryCacheMB int
	AssetVersion   string
	MetricsEnabled bool
}

func New() *Config {
	return load(viper.New())
}

func load(v *viper.Viper) *Config {
	v.AutomaticEnv()
	setDefaults(v)

	return &Config{
		Port:               v.GetString("PORT"),
		LogLevel:           v.GetString("LOGLEVEL"),
		ProjectID:          v.GetString("PROJECTID"),
		Region:             v.GetString("REGION"),
		VertexModel:        v.GetString("VERTEXMODEL"),
		AIMaxTokens:        v.GetInt32("AIMAXTOKENS"),
		KMSKeyName:         v.GetString("KMSKEYNAME"),
		ReadAPIKeySecret:   v.GetString("READ_API_KEY_SECRET"),
		DefaultChannelID:   v.GetString("DEFAULT_CHANNEL_ID"),
		StorageBackend:     getStorageBackend(v.GetString("STORAGE_BACKEND")),
		StoragePath:        v.GetString("STORAGE_PATH"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		RedisDB:            v.GetInt("REDIS_DB"),
		ThingSpeakBaseURL:  strings.TrimRight(v.GetString("THINGSPEAK_BASEURL"), "/"),
		ThingSpeakTimezone: v.GetString("THINGSPEAK_TIMEZONE"),
		FeedResults:        v.GetInt("FEED_RESULTS"),
		HTTPTimeout:        v.GetDuration("HTTP_TIMEOUT"),
		HistoryCacheMB:     v.GetInt("HISTORY_CACHE_MB"),
		AssetVersion:       v.GetString("ASSET_VERSION"),
		MetricsEnabled:     v.GetBool("METRICS_ENABLED"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOGLEVEL", "info")
	v.SetDefault("REGION", "us-central1")
	v.SetDefault("VERTEXMODEL", "gemini-2.5-flash")
	v.SetDefault("AIMAXTOKENS", 512)
	v.SetDefault("STORAGE_BACKEND", string(StorageSQLite))
	v.SetDefault("STORAGE_PATH", "novaspeak.db")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("THINGSPEAK_BASEURL", "https://api.thingspeak.com")
	v.SetDefault("FEED_RESULTS", 50)
	v.SetDefault("HTTP_TIMEOUT", "0s")
	v.SetDefault("HISTORY_CACHE_MB", 64)
	v.SetDefault("ASSET_VERSION", "3")
	v.SetDefault("METRICS_ENABLED", true)
}

func getStorageBackend(backend string) StorageBackend {
	switch StorageBackend(strings.ToLower(backend)) {
	case StoragePostgres:
		return StoragePostgres
	case StorageRedis:
		return StorageRedis
	case StorageFirestore:
		return StorageFirestore
	default: // "sqlite"
		return StorageSQLite
	}
}
