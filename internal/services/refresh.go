package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GregMSThompson/novaspeak/internal/client/thingspeak"
	"github.com/GregMSThompson/novaspeak/internal/errs"
	"github.com/GregMSThompson/novaspeak/internal/metrics"
	"github.com/GregMSThompson/novaspeak/internal/models"
	"github.com/GregMSThompson/novaspeak/pkg/logger"
)

type feedFetcher interface {
	FetchLatest(ctx context.Context, channelID, readKey string, results int) (models.ChannelSnapshot, error)
}

type widgetDeriver interface {
	Derive(snapshot models.ChannelSnapshot) []models.WidgetConfig
	Reset()
	List() []models.WidgetConfig
}

// Ticker is the periodic source driving timer loads.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type TickerFactory func(d time.Duration) Ticker

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

type timerHandle struct {
	ticker Ticker
	done   chan struct{}
}

type RefreshOption func(*RefreshController)

func WithTicker(f TickerFactory) RefreshOption {
	return func(c *RefreshController) { c.newTicker = f }
}

func WithResults(n int) RefreshOption {
	return func(c *RefreshController) {
		if n > 0 {
			c.results = n
		}
	}
}

func WithClock(now func() time.Time) RefreshOption {
	return func(c *RefreshController) { c.now = now }
}

func WithRefreshMetrics(rec metrics.Recorder) RefreshOption {
	return func(c *RefreshController) { c.metrics = rec }
}

// RefreshController owns the poll loop and the current channel snapshot.
// Every state write happens under mu after a fetch completes. Loads carry
// the configuration epoch they started under and are discarded if the
// channel or read key changed meanwhile; within an epoch the last load to
// complete wins.
type RefreshController struct {
	fetcher   feedFetcher
	widgets   widgetDeriver
	log       *slog.Logger
	metrics   metrics.Recorder
	newTicker TickerFactory
	results   int
	now       func() time.Time

	mu            sync.Mutex
	applied       bool
	cfg           models.AppConfig
	epoch         uint64
	inFlight      int
	snapshot      *models.ChannelSnapshot
	errMsg        string
	lastRefreshed time.Time
	derivedFor    string
	timer         *timerHandle
	timerCtx      context.Context
}

func NewRefreshController(log *slog.Logger, fetcher feedFetcher, widgets widgetDeriver, opts ...RefreshOption) *RefreshController {
	c := &RefreshController{
		fetcher:   fetcher,
		widgets:   widgets,
		log:       log,
		metrics:   metrics.Noop{},
		newTicker: NewTimeTicker,
		results:   thingspeak.DefaultResults,
		now:       time.Now,
		timerCtx:  logger.ToContext(context.Background(), log),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches the latest readings for the configured channel. It is a
// no-op without a channel. Widgets are derived by the first load to succeed
// for a channel, whichever of the initial, timer or manual loads that is;
// isInitial only marks the load Apply starts.
func (c *RefreshController) Load(ctx context.Context, isInitial bool) error {
	c.mu.Lock()
	cfg := c.cfg
	epoch := c.epoch
	if !cfg.Configured() {
		c.mu.Unlock()
		return nil
	}
	c.inFlight++
	c.mu.Unlock()

	log, ctx := logger.With(ctx, "loadId", uuid.NewString(), "channelId", cfg.ChannelID)
	snap, err := c.fetcher.FetchLatest(ctx, cfg.ChannelID, cfg.ReadAPIKey, c.results)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight--

	if epoch != c.epoch {
		c.metrics.IncDiscardedLoads()
		log.Info("discarding load from superseded config")
		return nil
	}

	if err != nil {
		c.errMsg = displayMessage(err)
		return err
	}

	c.snapshot = &snap
	c.lastRefreshed = c.now()
	c.errMsg = ""
	if c.derivedFor != cfg.ChannelID {
		widgets := c.widgets.Derive(snap)
		c.derivedFor = cfg.ChannelID
		log.Info("widgets derived", "count", len(widgets), "initial", isInitial)
	}
	log.Debug("snapshot replaced", "entries", len(snap.Feeds))
	return nil
}

// Refresh is the manual trigger; it may overlap a timer load.
func (c *RefreshController) Refresh(ctx context.Context) error {
	return c.Load(ctx, false)
}

// Apply installs cfg. A channel change clears the snapshot and loads
// immediately; a read key change only invalidates in-flight loads; any
// change re-arms the timer. An interval-only change never fetches.
func (c *RefreshController) Apply(ctx context.Context, cfg models.AppConfig) {
	c.apply(ctx, cfg, false)
}

// ApplyInitial installs cfg only if no configuration has been applied yet,
// so a startup config cannot overwrite one saved in the meantime. It
// reports whether cfg was applied.
func (c *RefreshController) ApplyInitial(ctx context.Context, cfg models.AppConfig) bool {
	return c.apply(ctx, cfg, true)
}

func (c *RefreshController) apply(ctx context.Context, cfg models.AppConfig, onlyFirst bool) bool {
	cfg.RefreshRate = ClampRefreshRate(cfg.RefreshRate)

	c.mu.Lock()
	if onlyFirst && c.applied {
		c.mu.Unlock()
		logger.FromContext(ctx).Info("startup config skipped, a newer config is already applied")
		return false
	}
	prev := c.cfg
	first := !c.applied
	c.applied = true
	c.cfg = cfg

	channelChanged := first || prev.ChannelID != cfg.ChannelID
	keyChanged := prev.ReadAPIKey != cfg.ReadAPIKey
	rateChanged := prev.RefreshRate != cfg.RefreshRate

	if channelChanged || keyChanged {
		c.epoch++
	}
	if channelChanged {
		c.snapshot = nil
		c.errMsg = ""
		c.lastRefreshed = time.Time{}
		c.derivedFor = ""
		c.widgets.Reset()
	}
	if channelChanged || keyChanged || rateChanged {
		c.armLocked()
	}
	c.mu.Unlock()

	logger.FromContext(ctx).Info("refresh config applied",
		"channelId", cfg.ChannelID,
		"refreshRate", cfg.RefreshRate,
		"channelChanged", channelChanged,
		"rateChanged", rateChanged,
	)

	if channelChanged && cfg.Configured() {
		_ = c.Load(ctx, true)
	}
	return true
}

// Stop tears down the timer. Loads already in flight still complete.
func (c *RefreshController) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disarmLocked()
}

// Snapshot returns the current snapshot, if one has been loaded.
func (c *RefreshController) Snapshot() (models.ChannelSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		return models.ChannelSnapshot{}, false
	}
	return *c.snapshot, true
}

func (c *RefreshController) State() models.DashboardState {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := models.DashboardState{
		ChannelID:   c.cfg.ChannelID,
		Loading:     c.inFlight > 0,
		Error:       c.errMsg,
		RefreshRate: c.cfg.RefreshRate,
		Widgets:     c.widgets.List(),
	}
	if c.snapshot != nil {
		snap := *c.snapshot
		state.Snapshot = &snap
	}
	if !c.lastRefreshed.IsZero() {
		t := c.lastRefreshed
		state.LastRefreshed = &t
	}

	switch {
	case !c.cfg.Configured():
		state.Status = models.StatusUnconfigured
	case c.errMsg != "":
		state.Status = models.StatusError
	case c.snapshot == nil:
		state.Status = models.StatusLoading
	default:
		state.Status = models.StatusReady
	}
	return state
}

func (c *RefreshController) armLocked() {
	c.disarmLocked()
	if !c.cfg.Configured() {
		return
	}

	interval := time.Duration(c.cfg.RefreshRate) * time.Second
	h := &timerHandle{ticker: c.newTicker(interval), done: make(chan struct{})}
	c.timer = h
	go c.run(h)
	c.log.Debug("refresh timer armed", "interval", interval.String())
}

func (c *RefreshController) disarmLocked() {
	if c.timer == nil {
		return
	}
	c.timer.ticker.Stop()
	close(c.timer.done)
	c.timer = nil
}

func (c *RefreshController) run(h *timerHandle) {
	for {
		select {
		case <-h.done:
			return
		case <-h.ticker.C():
			select {
			case <-h.done:
				return
			default:
			}
			_ = c.Load(c.timerCtx, false)
		}
	}
}

// displayMessage turns a load error into the text shown on the dashboard.
func displayMessage(err error) string {
	var nf *errs.NotFoundError
	if errors.As(err, &nf) {
		return nf.Message
	}
	var ve *errs.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var ext *errs.ExternalServiceError
	if errors.As(err, &ext) {
		return ext.Message
	}
	return thingspeak.MsgFetchFailed
}
