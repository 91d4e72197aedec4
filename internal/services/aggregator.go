package services

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/GregMSThompson/novaspeak/internal/models"
	"github.com/GregMSThompson/novaspeak/pkg/helpers"
)

const statsDateLayout = "2006-01-02"

// ignoredLabelTerms hide fields from the history view unless overridden.
var ignoredLabelTerms = []string{"water", "level"}

// ComputeDailyStats reduces readings to min, max and average per field, in
// the order fields are given. Missing or non-numeric values are skipped.
func ComputeDailyStats(readings []models.FeedEntry, fields []models.WidgetConfig, date time.Time) []models.DailyFieldStats {
	return StatsFromSummary(SummarizeDay(readings), fields, date)
}

// SummarizeDay folds every numeric reading into its slot summary.
func SummarizeDay(readings []models.FeedEntry) models.DaySummary {
	var summary models.DaySummary
	for _, entry := range readings {
		for _, key := range models.FieldKeys() {
			if v, ok := numericValue(entry.Value(key)); ok {
				summary.Add(key, v)
			}
		}
	}
	return summary
}

// StatsFromSummary renders one DailyFieldStats per field. Averages are
// rounded to two decimals; fields without readings get nil values.
func StatsFromSummary(summary models.DaySummary, fields []models.WidgetConfig, date time.Time) []models.DailyFieldStats {
	day := date.Format(statsDateLayout)
	out := make([]models.DailyFieldStats, 0, len(fields))

	for _, f := range fields {
		stat := models.DailyFieldStats{
			Date:     day,
			FieldKey: f.FieldKey,
			Label:    f.Label,
			Unit:     f.Unit,
		}
		if slot := summary.Slot(f.FieldKey); slot.Count > 0 {
			avg := helpers.Round(slot.Sum/float64(slot.Count), 2)
			stat.Min = helpers.Ptr(slot.Min)
			stat.Max = helpers.Ptr(slot.Max)
			stat.Avg = &avg
		}
		out = append(out, stat)
	}
	return out
}

func numericValue(raw *string) (float64, bool) {
	if raw == nil {
		return 0, false
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// FilterDisplayedStats hides entries whose label contains "water" or
// "level", case-insensitively, unless showIgnored is set.
func FilterDisplayedStats(stats []models.DailyFieldStats, showIgnored bool) []models.DailyFieldStats {
	if showIgnored {
		return stats
	}
	out := make([]models.DailyFieldStats, 0, len(stats))
	for _, s := range stats {
		if isIgnoredLabel(s.Label) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func isIgnoredLabel(label string) bool {
	lower := strings.ToLower(label)
	for _, term := range ignoredLabelTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
