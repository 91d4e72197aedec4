package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/GregMSThompson/novaspeak/internal/dto"
	"github.com/GregMSThompson/novaspeak/internal/errs"
	"github.com/GregMSThompson/novaspeak/internal/metrics"
	"github.com/GregMSThompson/novaspeak/internal/models"
	"github.com/GregMSThompson/novaspeak/pkg/helpers"
	"github.com/GregMSThompson/novaspeak/pkg/logger"
)

const (
	InsightFallback = "Unable to generate insights at this time. Please check your API configuration."
	InsightEmpty    = "No analysis generated."

	insightWindow = 20
)

const insightPrompt = `You are an expert data analyst.
Analyze the following sensor data from a ThingSpeak channel named "%s".

Recent Data Points:
%s

Provide a brief, high-level summary of the current state and any trends.
Identify anomalies if any.
If the data represents environmental metrics (temp, humidity), comment on comfort or safety.
Keep it under 150 words. Format as Markdown.`

type vertexClient interface {
	GenerateContent(ctx context.Context, req dto.VertexGenerateRequest) (dto.VertexGenerateResponse, error)
}

type SnapshotSource interface {
	Snapshot() (models.ChannelSnapshot, bool)
}

type ActiveFields interface {
	ActiveFieldKeys() []models.FieldKey
}

type insightService struct {
	vertex    vertexClient
	maxTokens int32
	metrics   metrics.Recorder
	group     singleflight.Group
}

// NewInsightService accepts a nil vertex client; every summary then falls
// back to the fixed message.
func NewInsightService(vertex vertexClient, maxTokens int32, rec metrics.Recorder) *insightService {
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &insightService{vertex: vertex, maxTokens: maxTokens, metrics: rec}
}

// Summarize never fails: any error or panic is replaced by InsightFallback.
func (s *insightService) Summarize(ctx context.Context, snapshot models.ChannelSnapshot, keys []models.FieldKey) (text string) {
	log := logger.FromContext(ctx)
	defer func() {
		if r := recover(); r != nil {
			log.Error("insight generation panicked", "panic", fmt.Sprint(r))
			s.metrics.IncInsight("fallback")
			text = InsightFallback
		}
	}()

	if s.vertex == nil {
		log.Warn("insight requested without a generator configured")
		s.metrics.IncInsight("fallback")
		return InsightFallback
	}

	req := dto.VertexGenerateRequest{
		UserMessage:     BuildInsightPrompt(snapshot, keys),
		MaxOutputTokens: helpers.NonZero(s.maxTokens),
	}

	resp, err := s.vertex.GenerateContent(ctx, req)
	if err != nil {
		log.Error("insight generation failed", "error", err)
		s.metrics.IncInsight("fallback")
		return InsightFallback
	}
	if strings.TrimSpace(resp.Text) == "" {
		s.metrics.IncInsight("empty")
		return InsightEmpty
	}
	s.metrics.IncInsight("ok")
	return resp.Text
}

// Current summarises the latest snapshot over the visible fields. Concurrent
// callers for the same data share one generation.
func (s *insightService) Current(ctx context.Context, source SnapshotSource, fields ActiveFields) (string, error) {
	snapshot, ok := source.Snapshot()
	if !ok {
		return "", errs.NewValidationError("no channel data loaded yet")
	}
	keys := fields.ActiveFieldKeys()

	var lastEntry int64
	if latest, ok := snapshot.Latest(); ok {
		lastEntry = latest.EntryID
	}
	flightKey := fmt.Sprintf("%d|%d|%v", snapshot.Channel.ID, lastEntry, keys)

	// shared callers must not inherit the first caller's cancellation
	flightCtx := context.WithoutCancel(ctx)
	v, _, _ := s.group.Do(flightKey, func() (any, error) {
		return s.Summarize(flightCtx, snapshot, keys), nil
	})
	text, _ := v.(string)
	return text, nil
}

// BuildInsightPrompt renders the last readings, one line each, into the
// analysis prompt.
func BuildInsightPrompt(snapshot models.ChannelSnapshot, keys []models.FieldKey) string {
	feeds := snapshot.Feeds
	if len(feeds) > insightWindow {
		feeds = feeds[len(feeds)-insightWindow:]
	}

	lines := make([]string, 0, len(feeds))
	for _, f := range feeds {
		parts := []string{"Time: " + f.CreatedAt.Format(time.RFC3339)}
		for _, k := range keys {
			if v := f.Value(k); v != nil {
				parts = append(parts, fmt.Sprintf("%s: %s", k, *v))
			}
		}
		lines = append(lines, strings.Join(parts, ", "))
	}

	return fmt.Sprintf(insightPrompt, snapshot.Channel.Name, strings.Join(lines, "\n"))
}
