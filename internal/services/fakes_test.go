package services

import (
	"context"
	"sync"
	"time"

	"github.com/GregMSThompson/novaspeak/internal/dto"
	"github.com/GregMSThompson/novaspeak/internal/models"
	"github.com/GregMSThompson/novaspeak/pkg/helpers"
)

// --- Fakes ---

func channelWithFields(id int64, names ...string) models.Channel {
	c := models.Channel{ID: id, Name: "test channel"}
	for i, n := range names {
		if i < models.FieldCount {
			c.Fields[i] = n
		}
	}
	return c
}

func entry(id int64, at time.Time, values map[models.FieldKey]*string) models.FeedEntry {
	e := models.FeedEntry{EntryID: id, CreatedAt: at}
	for k, v := range values {
		e.SetValue(k, v)
	}
	return e
}

func str(s string) *string { return helpers.Ptr(s) }

type fetchCall struct {
	channelID string
	readKey   string
	results   int
	day       time.Time
}

// fakeFetcher answers FetchLatest and FetchDay. When gate is set each call
// blocks until a value is sent on it.
type fakeFetcher struct {
	mu       sync.Mutex
	snapshot models.ChannelSnapshot
	err      error
	calls    []fetchCall
	gate     chan struct{}
	started  chan struct{}
	ctxErrs  []error
}

func (f *fakeFetcher) record(c fetchCall) (models.ChannelSnapshot, error, chan struct{}) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	snap, err, gate := f.snapshot, f.err, f.gate
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	return snap, err, gate
}

func (f *fakeFetcher) FetchLatest(_ context.Context, channelID, readKey string, results int) (models.ChannelSnapshot, error) {
	snap, err, gate := f.record(fetchCall{channelID: channelID, readKey: readKey, results: results})
	if gate != nil {
		<-gate
	}
	return snap, err
}

func (f *fakeFetcher) FetchDay(ctx context.Context, channelID, readKey string, day time.Time) (models.ChannelSnapshot, error) {
	snap, err, gate := f.record(fetchCall{channelID: channelID, readKey: readKey, day: day})
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	f.mu.Unlock()
	return snap, err
}

func (f *fakeFetcher) set(snap models.ChannelSnapshot, err error) {
	f.mu.Lock()
	f.snapshot, f.err = snap, err
	f.mu.Unlock()
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeConfigStore struct {
	doc     dto.StoredConfig
	found   bool
	loadErr error
	saveErr error
	saved   []dto.StoredConfig
}

func (f *fakeConfigStore) Load(_ context.Context) (dto.StoredConfig, bool, error) {
	return f.doc, f.found, f.loadErr
}

func (f *fakeConfigStore) Save(_ context.Context, doc dto.StoredConfig) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, doc)
	f.doc, f.found = doc, true
	return nil
}

type staticConfig struct{ cfg models.AppConfig }

func (s staticConfig) Current() models.AppConfig { return s.cfg }

type memorySummaryCache struct {
	mu   sync.Mutex
	data map[string]models.DaySummary
	sets int
}

func newMemorySummaryCache() *memorySummaryCache {
	return &memorySummaryCache{data: map[string]models.DaySummary{}}
}

func (m *memorySummaryCache) Get(key string) (models.DaySummary, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *memorySummaryCache) Set(key string, summary models.DaySummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = summary
	m.sets++
	return nil
}

type fakeVertex struct {
	resp    dto.VertexGenerateResponse
	err     error
	panics  bool
	reqs    []dto.VertexGenerateRequest
	ctxErrs []error
}

func (f *fakeVertex) GenerateContent(ctx context.Context, req dto.VertexGenerateRequest) (dto.VertexGenerateResponse, error) {
	f.reqs = append(f.reqs, req)
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	if f.panics {
		panic("generator exploded")
	}
	return f.resp, f.err
}

type fakeSnapshotSource struct {
	snap models.ChannelSnapshot
	ok   bool
}

func (f fakeSnapshotSource) Snapshot() (models.ChannelSnapshot, bool) { return f.snap, f.ok }

type fixedFields []models.FieldKey

func (f fixedFields) ActiveFieldKeys() []models.FieldKey { return f }

// fakeTicker is driven by tests through fire.
type fakeTicker struct {
	interval time.Duration
	ch       chan time.Time
	mu       sync.Mutex
	stopped  bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *fakeTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

func (t *fakeTicker) fire() { t.ch <- time.Now() }

type tickerFactory struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (f *tickerFactory) New(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{interval: d, ch: make(chan time.Time)}
	f.tickers = append(f.tickers, t)
	return t
}

func (f *tickerFactory) all() []*fakeTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*fakeTicker, len(f.tickers))
	copy(out, f.tickers)
	return out
}

func (f *tickerFactory) active() []*fakeTicker {
	var out []*fakeTicker
	for _, t := range f.all() {
		if !t.isStopped() {
			out = append(out, t)
		}
	}
	return out
}
