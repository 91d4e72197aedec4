package thingspeak

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/GregMSThompson/novaspeak/internal/errs"
	"github.com/GregMSThompson/novaspeak/internal/metrics"
	"github.com/GregMSThompson/novaspeak/internal/models"
	"github.com/GregMSThompson/novaspeak/pkg/logger"
)

const (
	DefaultBaseURL = "https://api.thingspeak.com"
	DefaultResults = 50

	serviceName = "thingspeak"
	dayLayout   = "2006-01-02"
)

const (
	MsgChannelRequired = "Channel ID is required"
	MsgChannelNotFound = "Channel not found. Please check ID and visibility."
	MsgFetchFailed     = "Failed to fetch ThingSpeak data"
	MsgHistoryFailed   = "Failed to fetch history data"
)

type Client struct {
	baseURL  string
	http     *http.Client
	timezone string
	metrics  metrics.Recorder
}

type Option func(*Client)

// WithTimezone adds a timezone parameter to day range requests. Without it
// the range is sent as naive wall-clock strings.
func WithTimezone(tz string) Option {
	return func(c *Client) { c.timezone = tz }
}

func WithMetrics(rec metrics.Recorder) Option {
	return func(c *Client) { c.metrics = rec }
}

func New(baseURL string, httpClient *http.Client, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		metrics: metrics.Noop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchLatest returns the most recent results entries of a channel.
func (c *Client) FetchLatest(ctx context.Context, channelID, readKey string, results int) (models.ChannelSnapshot, error) {
	if channelID == "" {
		return models.ChannelSnapshot{}, errs.NewValidationError(MsgChannelRequired)
	}
	if results <= 0 {
		results = DefaultResults
	}

	params := url.Values{}
	params.Set("results", strconv.Itoa(results))
	if readKey != "" {
		params.Set("api_key", readKey)
	}

	return c.fetch(ctx, metrics.FetchLatest, channelID, params, MsgFetchFailed)
}

// FetchDay returns every entry between 00:00:00 and 23:59:59 of the
// calendar date of day.
func (c *Client) FetchDay(ctx context.Context, channelID, readKey string, day time.Time) (models.ChannelSnapshot, error) {
	if channelID == "" {
		return models.ChannelSnapshot{}, errs.NewValidationError(MsgChannelRequired)
	}

	date := day.Format(dayLayout)
	params := url.Values{}
	params.Set("start", date+" 00:00:00")
	params.Set("end", date+" 23:59:59")
	if readKey != "" {
		params.Set("api_key", readKey)
	}
	if c.timezone != "" {
		params.Set("timezone", c.timezone)
	}

	return c.fetch(ctx, metrics.FetchDay, channelID, params, MsgHistoryFailed)
}

func (c *Client) fetch(ctx context.Context, kind, channelID string, params url.Values, failMsg string) (models.ChannelSnapshot, error) {
	log := logger.FromContext(ctx)
	start := time.Now()
	endpoint := fmt.Sprintf("%s/channels/%s/feeds.json?%s", c.baseURL, url.PathEscape(channelID), params.Encode())

	snap, outcome, err := c.do(ctx, endpoint, failMsg)
	c.metrics.ObserveFeedFetch(kind, outcome, time.Since(start))
	if err != nil {
		log.Warn("feed fetch failed", "kind", kind, "channelId", channelID, "error", errs.Detail(err))
		return models.ChannelSnapshot{}, err
	}

	if logger.IsDebugEnabled(ctx) {
		var lastEntry int64
		if latest, ok := snap.Latest(); ok {
			lastEntry = latest.EntryID
		}
		log.Debug("feed fetched", "kind", kind, "channelId", channelID, "entries", len(snap.Feeds), "lastEntryId", lastEntry)
	}
	return snap, nil
}

func (c *Client) do(ctx context.Context, endpoint, failMsg string) (models.ChannelSnapshot, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.ChannelSnapshot{}, "error", errs.NewExternalServiceError(serviceName, failMsg, 0, false, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		transient := !errors.Is(err, context.Canceled)
		return models.ChannelSnapshot{}, "transport_error", errs.NewExternalServiceError(serviceName, failMsg, 0, transient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.ChannelSnapshot{}, "transport_error", errs.NewExternalServiceError(serviceName, failMsg, resp.StatusCode, true, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return models.ChannelSnapshot{}, "not_found", errs.NewNotFoundError(MsgChannelNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		cause := fmt.Errorf("unexpected status code %d", resp.StatusCode)
		return models.ChannelSnapshot{}, "http_error", errs.NewExternalServiceError(serviceName, failMsg, resp.StatusCode, isTransientStatus(resp.StatusCode), cause)
	}

	// The API answers "-1" instead of JSON for private channels without a key.
	if strings.TrimSpace(string(body)) == "-1" {
		return models.ChannelSnapshot{}, "not_found", errs.NewNotFoundError(MsgChannelNotFound)
	}

	snap, err := decodeSnapshot(body)
	if err != nil {
		return models.ChannelSnapshot{}, "decode_error", errs.NewExternalServiceError(serviceName, failMsg, resp.StatusCode, false, fmt.Errorf("decode feed: %w", err))
	}
	return snap, "ok", nil
}

func isTransientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
