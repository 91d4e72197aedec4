package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/gookit/validate"

	"github.com/GregMSThompson/novaspeak/internal/dto"
	"github.com/GregMSThompson/novaspeak/internal/errs"
	"github.com/GregMSThompson/novaspeak/internal/models"
	"github.com/GregMSThompson/novaspeak/pkg/logger"
)

type configStore interface {
	Load(ctx context.Context) (dto.StoredConfig, bool, error)
	Save(ctx context.Context, doc dto.StoredConfig) error
}

type configService struct {
	store    configStore
	defaults models.AppConfig

	mu      sync.RWMutex
	current models.AppConfig
}

// NewConfigService returns a service holding defaults until Load or Save
// installs a stored configuration.
func NewConfigService(store configStore, defaults models.AppConfig) *configService {
	defaults.RefreshRate = ClampRefreshRate(defaults.RefreshRate)
	return &configService{store: store, defaults: defaults, current: defaults}
}

// ClampRefreshRate forces a refresh rate into the allowed range; zero means
// the default.
func ClampRefreshRate(rate int) int {
	switch {
	case rate == 0:
		return models.DefaultRefreshRate
	case rate < models.MinRefreshRate:
		return models.MinRefreshRate
	case rate > models.MaxRefreshRate:
		return models.MaxRefreshRate
	default:
		return rate
	}
}

// Load reads the stored configuration. A missing, malformed or undecryptable
// document yields the defaults without an error; only storage failures are
// returned, and even then the defaults are installed.
func (s *configService) Load(ctx context.Context) (models.AppConfig, error) {
	log := logger.FromContext(ctx)

	doc, found, err := s.store.Load(ctx)
	if err != nil {
		var dbErr *errs.DatabaseError
		if errors.As(err, &dbErr) {
			s.set(s.defaults)
			return s.defaults, err
		}
		log.Warn("discarding stored config", "error", errs.Detail(err))
		s.set(s.defaults)
		return s.defaults, nil
	}
	if !found {
		log.Info("no stored config, using defaults")
		s.set(s.defaults)
		return s.defaults, nil
	}

	cfg := models.AppConfig{
		ChannelID:   strings.TrimSpace(doc.ChannelID),
		ReadAPIKey:  doc.ReadAPIKey,
		RefreshRate: ClampRefreshRate(doc.RefreshRate),
	}
	s.set(cfg)
	return cfg, nil
}

func (s *configService) Current() models.AppConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Save validates and persists cfg, replacing the current configuration
// only once the write succeeded.
func (s *configService) Save(ctx context.Context, req dto.ConfigRequest) (models.AppConfig, error) {
	cfg := models.AppConfig{
		ChannelID:   strings.TrimSpace(req.ChannelID),
		ReadAPIKey:  strings.TrimSpace(req.ReadAPIKey),
		RefreshRate: req.RefreshRate,
	}
	if err := validateConfig(cfg); err != nil {
		return models.AppConfig{}, err
	}

	err := s.store.Save(ctx, dto.StoredConfig{
		ChannelID:   cfg.ChannelID,
		ReadAPIKey:  cfg.ReadAPIKey,
		RefreshRate: cfg.RefreshRate,
	})
	if err != nil {
		return models.AppConfig{}, err
	}

	s.set(cfg)
	logger.FromContext(ctx).Info("config saved", "channelId", cfg.ChannelID, "refreshRate", cfg.RefreshRate, "hasReadKey", cfg.ReadAPIKey != "")
	return cfg, nil
}

func (s *configService) set(cfg models.AppConfig) {
	s.mu.Lock()
	s.current = cfg
	s.mu.Unlock()
}

func validateConfig(cfg models.AppConfig) error {
	v := validate.Struct(&cfg)
	v.AddMessages(map[string]string{
		"ChannelID.isNumber":   "channelId must contain digits only",
		"RefreshRate.required": "refreshRate is required",
		"RefreshRate.min":      "refreshRate must be at least 15 seconds",
		"RefreshRate.max":      "refreshRate must be at most 3600 seconds",
	})
	if !v.Validate() {
		return errs.NewValidationError(v.Errors.One())
	}
	return nil
}
