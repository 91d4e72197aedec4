package services

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/GregMSThompson/novaspeak/internal/metrics"
	"github.com/GregMSThompson/novaspeak/internal/models"
	"github.com/GregMSThompson/novaspeak/pkg/logger"
)

type dayFetcher interface {
	FetchDay(ctx context.Context, channelID, readKey string, day time.Time) (models.ChannelSnapshot, error)
}

type summaryCache interface {
	Get(key string) (models.DaySummary, bool)
	Set(key string, summary models.DaySummary) error
}

type configReader interface {
	Current() models.AppConfig
}

type widgetLister interface {
	List() []models.WidgetConfig
}

type historyService struct {
	fetcher  dayFetcher
	cache    summaryCache
	config   configReader
	widgets  widgetLister
	metrics  metrics.Recorder
	timezone string
	group    singleflight.Group
	now      func() time.Time
}

type HistoryOption func(*historyService)

// WithDayTimezone records the timezone the fetcher uses for day ranges;
// summaries are cached per timezone.
func WithDayTimezone(tz string) HistoryOption {
	return func(s *historyService) { s.timezone = tz }
}

func NewHistoryService(fetcher dayFetcher, cache summaryCache, config configReader, widgets widgetLister, rec metrics.Recorder, opts ...HistoryOption) *historyService {
	if rec == nil {
		rec = metrics.Noop{}
	}
	s := &historyService{
		fetcher: fetcher,
		cache:   cache,
		config:  config,
		widgets: widgets,
		metrics: rec,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DailyStats computes per-widget statistics for date and applies the
// display filter.
func (s *historyService) DailyStats(ctx context.Context, date time.Time, showIgnored bool) ([]models.DailyFieldStats, error) {
	cfg := s.config.Current()
	summary, err := s.daySummary(ctx, cfg, date)
	if err != nil {
		return nil, err
	}
	stats := StatsFromSummary(summary, s.widgets.List(), date)
	return FilterDisplayedStats(stats, showIgnored), nil
}

func (s *historyService) cacheKey(channelID string, date time.Time) string {
	key := channelID + "|" + date.Format(statsDateLayout)
	if s.timezone != "" {
		key += "|" + s.timezone
	}
	return key
}

func (s *historyService) daySummary(ctx context.Context, cfg models.AppConfig, date time.Time) (models.DaySummary, error) {
	log := logger.FromContext(ctx)
	key := s.cacheKey(cfg.ChannelID, date)
	cacheable := s.isPastDay(date)

	if cacheable {
		if summary, ok := s.cache.Get(key); ok {
			s.metrics.IncHistoryCacheHits()
			return summary, nil
		}
		s.metrics.IncHistoryCacheMisses()
	}

	// the flight outlives any single caller's request
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := s.group.Do(key, func() (any, error) {
		snap, err := s.fetcher.FetchDay(flightCtx, cfg.ChannelID, cfg.ReadAPIKey, date)
		if err != nil {
			return nil, err
		}
		summary := SummarizeDay(snap.Feeds)
		if cacheable {
			if err := s.cache.Set(key, summary); err != nil {
				log.Warn("history cache write failed", "key", key, "entries", len(snap.Feeds), "error", err)
			}
		}
		return summary, nil
	})
	if err != nil {
		return models.DaySummary{}, err
	}
	if shared {
		log.Debug("history fetch shared", "key", key)
	}

	summary, _ := v.(models.DaySummary)
	return summary, nil
}

// isPastDay reports whether date falls strictly before the current UTC day;
// only those days are complete and safe to cache.
func (s *historyService) isPastDay(date time.Time) bool {
	today := s.now().UTC().Format(statsDateLayout)
	return date.Format(statsDateLayout) < today
}
