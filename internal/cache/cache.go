package cache

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/coocood/freecache"
	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"

	"github.com/GregMSThompson/novaspeak/internal/models"
)

// DayCache stores per-day slot summaries as zstd-compressed JSON in a
// fixed-size freecache arena. Entries must stay under 1/1024 of the arena,
// so whole day feeds are never stored.
type DayCache interface {
	Get(key string) (models.DaySummary, bool)
	Set(key string, summary models.DaySummary) error
}

type dayCache struct {
	cache   *freecache.Cache
	ttl     int
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// New returns a cache of sizeMB megabytes, or a no-op cache when sizeMB is
// not positive. A zero ttl keeps entries until evicted.
func New(sizeMB int, ttl time.Duration) (DayCache, error) {
	if sizeMB <= 0 {
		return noopCache{}, nil
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &dayCache{
		cache:   freecache.NewCache(sizeMB * 1024 * 1024),
		ttl:     int(ttl.Seconds()),
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// unsafeStringToBytes avoids a copy; freecache copies keys internally.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *dayCache) Get(key string) (models.DaySummary, bool) {
	val, err := c.cache.Get(unsafeStringToBytes(key))
	if err != nil {
		return models.DaySummary{}, false
	}
	raw, err := c.decoder.DecodeAll(val, nil)
	if err != nil {
		return models.DaySummary{}, false
	}
	var summary models.DaySummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return models.DaySummary{}, false
	}
	return summary, true
}

func (c *dayCache) Set(key string, summary models.DaySummary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode day summary: %w", err)
	}
	compressed := c.encoder.EncodeAll(raw, make([]byte, 0, len(raw)))
	if err := c.cache.Set(unsafeStringToBytes(key), compressed, c.ttl); err != nil {
		return fmt.Errorf("cache day summary: %w", err)
	}
	return nil
}

type noopCache struct{}

func (noopCache) Get(_ string) (models.DaySummary, bool)  { return models.DaySummary{}, false }
func (noopCache) Set(_ string, _ models.DaySummary) error { return nil }
