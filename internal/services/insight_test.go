package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/GregMSThompson/novaspeak/internal/dto"
	"github.com/GregMSThompson/novaspeak/internal/errs"
	"github.com/GregMSThompson/novaspeak/internal/models"
)

func insightSnapshot(n int) models.ChannelSnapshot {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	snap := models.ChannelSnapshot{Channel: channelWithFields(9, "Temp", "Hum")}
	snap.Channel.Name = "Greenhouse"
	for i := 0; i < n; i++ {
		snap.Feeds = append(snap.Feeds, entry(int64(i+1), base.Add(time.Duration(i)*time.Minute), map[models.FieldKey]*string{
			1: str("21.5"),
			2: nil,
		}))
	}
	return snap
}

func TestBuildInsightPrompt_LastTwentyReadings(t *testing.T) {
	prompt := BuildInsightPrompt(insightSnapshot(25), []models.FieldKey{1, 2})

	if !strings.Contains(prompt, `channel named "Greenhouse"`) {
		t.Errorf("prompt must name the channel:\n%s", prompt)
	}
	if strings.Count(prompt, "Time: ") != 20 {
		t.Errorf("expected 20 readings, got %d", strings.Count(prompt, "Time: "))
	}
	if strings.Contains(prompt, "Time: 2024-05-01T10:04:00Z") {
		t.Errorf("oldest readings should be dropped")
	}
	if !strings.Contains(prompt, "Time: 2024-05-01T10:24:00Z, field1: 21.5\n") {
		t.Errorf("expected last reading line with non-null fields only:\n%s", prompt)
	}
	if strings.Contains(prompt, "field2") {
		t.Errorf("null field values must be omitted")
	}
	if !strings.Contains(prompt, "under 150 words") {
		t.Errorf("prompt must bound the length")
	}
}

func TestBuildInsightPrompt_OnlyActiveFields(t *testing.T) {
	snap := insightSnapshot(1)
	snap.Feeds[0].SetValue(2, str("40"))

	prompt := BuildInsightPrompt(snap, []models.FieldKey{2})
	if !strings.Contains(prompt, "Time: 2024-05-01T10:00:00Z, field2: 40") {
		t.Errorf("unexpected prompt:\n%s", prompt)
	}
	if strings.Contains(prompt, "field1") {
		t.Errorf("inactive fields must be omitted")
	}
}

func TestSummarize_ReturnsText(t *testing.T) {
	vertex := &fakeVertex{resp: dto.VertexGenerateResponse{Text: "All good."}}
	svc := NewInsightService(vertex, 300, nil)

	got := svc.Summarize(context.Background(), insightSnapshot(3), []models.FieldKey{1})
	if got != "All good." {
		t.Errorf("expected generated text, got %q", got)
	}
	if len(vertex.reqs) != 1 || vertex.reqs[0].MaxOutputTokens == nil || *vertex.reqs[0].MaxOutputTokens != 300 {
		t.Errorf("expected bounded request, got %+v", vertex.reqs)
	}
}

func TestSummarize_FailureReturnsFallback(t *testing.T) {
	svc := NewInsightService(&fakeVertex{err: errors.New("network down")}, 0, nil)

	got := svc.Summarize(context.Background(), insightSnapshot(3), []models.FieldKey{1})
	if got != "Unable to generate insights at this time. Please check your API configuration." {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestSummarize_PanicReturnsFallback(t *testing.T) {
	svc := NewInsightService(&fakeVertex{panics: true}, 0, nil)

	if got := svc.Summarize(context.Background(), insightSnapshot(1), nil); got != InsightFallback {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestSummarize_NoGenerator(t *testing.T) {
	svc := NewInsightService(nil, 0, nil)

	if got := svc.Summarize(context.Background(), insightSnapshot(1), nil); got != InsightFallback {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestSummarize_EmptyText(t *testing.T) {
	svc := NewInsightService(&fakeVertex{resp: dto.VertexGenerateResponse{Text: "  "}}, 0, nil)

	if got := svc.Summarize(context.Background(), insightSnapshot(1), nil); got != "No analysis generated." {
		t.Errorf("expected empty marker, got %q", got)
	}
}

func TestCurrent_RequiresSnapshot(t *testing.T) {
	svc := NewInsightService(&fakeVertex{}, 0, nil)

	_, err := svc.Current(context.Background(), fakeSnapshotSource{}, fixedFields{1})
	var ve *errs.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCurrent_UsesActiveFields(t *testing.T) {
	vertex := &fakeVertex{resp: dto.VertexGenerateResponse{Text: "ok"}}
	svc := NewInsightService(vertex, 0, nil)

	text, err := svc.Current(context.Background(), fakeSnapshotSource{snap: insightSnapshot(2), ok: true}, fixedFields{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "ok" {
		t.Errorf("expected ok, got %q", text)
	}
	if !strings.Contains(vertex.reqs[0].UserMessage, "field1: 21.5") {
		t.Errorf("expected active field in prompt")
	}
}

func TestCurrent_GenerationIgnoresCallerCancellation(t *testing.T) {
	vertex := &fakeVertex{resp: dto.VertexGenerateResponse{Text: "ok"}}
	svc := NewInsightService(vertex, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	text, err := svc.Current(ctx, fakeSnapshotSource{snap: insightSnapshot(2), ok: true}, fixedFields{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "ok" {
		t.Errorf("expected ok, got %q", text)
	}
	if vertex.ctxErrs[0] != nil {
		t.Errorf("generation ran on a cancelled context: %v", vertex.ctxErrs[0])
	}
}
