package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/pulse/internal/models"
	"github.com/your-org/pulse/internal/storage"
)

// DailySummary is one night's projection inside the weekly trend response.
// TotalSleepHours is nil when the analysis job did not report total sleep.
type DailySummary struct {
	Date                string   `json:"date"`
	SleepScore          int      `json:"sleep_score"`
	TotalSleepHours     *float64 `json:"total_sleep_hours"`
	DeepSleepPercentage float64  `json:"deep_sleep_percentage"`
	OverallQuality      string   `json:"overall_quality"`
}

type WeeklyTrends struct {
	DaysWithData               int            `json:"days_with_data"`
	AverageSleepScore          float64        `json:"average_sleep_score"`
	AverageSleepTimeHours      float64        `json:"average_sleep_time_hours"`
	AverageDeepSleepPercentage float64        `json:"average_deep_sleep_percentage"`
	DailySummaries             []DailySummary `json:"daily_summaries"`
}

type TrendAggregator struct {
	store storage.SleepStore
}

func NewTrendAggregator(store storage.SleepStore) *TrendAggregator {
	return &TrendAggregator{store: store}
}

// WeeklyTrends reduces the trailing 7-calendar-day window ending at today
// into rolling statistics. Each average covers only the nights that supplied
// the relevant field; a corrupt night is skipped, never fatal. The reference
// date is a parameter so callers control "today".
func (a *TrendAggregator) WeeklyTrends(ctx context.Context, userID uuid.UUID, today time.Time) (*WeeklyTrends, error) {
	from := today.AddDate(0, 0, -6)

	records, err := a.store.ListSleepRecords(ctx, userID, from, today, models.SleepKindSummary)
	if err != nil {
		return nil, err
	}

	var (
		scores       []int
		sleepHours   []float64
		deepPercents []float64
	)
	daily := make([]DailySummary, 0, len(records))

	for _, rec := range records {
		var summary models.SleepSummary
		if err := json.Unmarshal(rec.Data, &summary); err != nil {
			slog.Warn("skipping unparseable sleep summary",
				"night_date", rec.NightDate.Format(models.NightDateFormat), "error", err)
			continue
		}

		scores = append(scores, summary.SleepScore)

		var totalHours *float64
		if total := summary.SleepMetrics.TotalSleepSeconds; total != nil {
			h := float64(*total) / 3600.0
			totalHours = &h
			sleepHours = append(sleepHours, h)

			// A zero-length night cannot contribute a deep-sleep percentage.
			if deep := summary.SleepMetrics.DeepSleepSeconds; deep != nil && *total > 0 {
				deepPercents = append(deepPercents, float64(*deep)/float64(*total)*100.0)
			}
		}

		daily = append(daily, DailySummary{
			Date:                rec.NightDate.Format(models.NightDateFormat),
			SleepScore:          summary.SleepScore,
			TotalSleepHours:     totalHours,
			DeepSleepPercentage: summary.StageDistribution.DeepPercentage,
			OverallQuality:      summary.OverallQuality,
		})
	}

	return &WeeklyTrends{
		DaysWithData:               len(scores),
		AverageSleepScore:          meanInt(scores),
		AverageSleepTimeHours:      mean(sleepHours),
		AverageDeepSleepPercentage: mean(deepPercents),
		DailySummaries:             daily,
	}, nil
}

func meanInt(vals []int) float64 {
	if len(vals) == 0 {
		return 0.0
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return float64(sum) / float64(len(vals))
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
