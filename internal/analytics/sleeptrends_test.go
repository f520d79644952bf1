package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/pulse/internal/models"
	"github.com/your-org/pulse/internal/storage"
)

func intp(v int) *int { return &v }

func storeSummary(t *testing.T, store *storage.MemoryStore, user uuid.UUID, night time.Time, score int, metrics models.SleepMetrics, dist models.StageDistribution) {
	t.Helper()
	summary := models.SleepSummary{
		ID:                uuid.NewString(),
		UserID:            user.String(),
		NightDate:         night.Format(models.NightDateFormat),
		SleepMetrics:      metrics,
		SleepScore:        score,
		OverallQuality:    "Good",
		StageDistribution: dist,
	}
	data, err := json.Marshal(summary)
	require.NoError(t, err)
	require.NoError(t, store.InsertSleepRecord(context.Background(), &models.SleepRecord{
		UserID:    user,
		NightDate: night,
		DataType:  models.SleepKindSummary,
		Data:      data,
	}))
}

func TestWeeklyTrendsEmptyWindow(t *testing.T) {
	store := storage.NewMemoryStore()

	trends, err := NewTrendAggregator(store).WeeklyTrends(context.Background(), uuid.New(), ts("2024-03-07T00:00:00Z"))
	require.NoError(t, err)

	assert.Equal(t, 0, trends.DaysWithData)
	assert.Equal(t, 0.0, trends.AverageSleepScore)
	assert.Equal(t, 0.0, trends.AverageSleepTimeHours)
	assert.Equal(t, 0.0, trends.AverageDeepSleepPercentage)
	assert.NotNil(t, trends.DailySummaries)
	assert.Len(t, trends.DailySummaries, 0)
}

// Three nights, one missing its total sleep time. The score average covers
// all three nights while the sleep-time average covers only the two that
// reported totals.
func TestWeeklyTrendsToleratesPartialMetrics(t *testing.T) {
	store := storage.NewMemoryStore()
	user := uuid.New()
	today := ts("2024-03-07T00:00:00Z")

	storeSummary(t, store, user, today.AddDate(0, 0, -2), 80,
		models.SleepMetrics{TotalSleepSeconds: intp(8 * 3600), DeepSleepSeconds: intp(2 * 3600)},
		models.StageDistribution{DeepPercentage: 25})
	storeSummary(t, store, user, today.AddDate(0, 0, -1), 60,
		models.SleepMetrics{TotalSleepSeconds: intp(6 * 3600), DeepSleepSeconds: intp(1 * 3600)},
		models.StageDistribution{DeepPercentage: 16.7})
	storeSummary(t, store, user, today, 70,
		models.SleepMetrics{}, models.StageDistribution{})

	trends, err := NewTrendAggregator(store).WeeklyTrends(context.Background(), user, today)
	require.NoError(t, err)

	assert.Equal(t, 3, trends.DaysWithData)
	assert.InDelta(t, 70.0, trends.AverageSleepScore, 1e-9)
	assert.InDelta(t, 7.0, trends.AverageSleepTimeHours, 1e-9)
	// 25% and 100/6 % over the two nights with both totals and deep sleep.
	assert.InDelta(t, (25.0+100.0/6.0)/2, trends.AverageDeepSleepPercentage, 1e-9)

	require.Len(t, trends.DailySummaries, 3)
	assert.Nil(t, trends.DailySummaries[2].TotalSleepHours)
	assert.Equal(t, "2024-03-05", trends.DailySummaries[0].Date)
	assert.Equal(t, "2024-03-07", trends.DailySummaries[2].Date)
}

func TestWeeklyTrendsExcludesZeroLengthNightFromDeepAverage(t *testing.T) {
	store := storage.NewMemoryStore()
	user := uuid.New()
	today := ts("2024-03-07T00:00:00Z")

	storeSummary(t, store, user, today.AddDate(0, 0, -1), 50,
		models.SleepMetrics{TotalSleepSeconds: intp(0), DeepSleepSeconds: intp(0)},
		models.StageDistribution{})
	storeSummary(t, store, user, today, 80,
		models.SleepMetrics{TotalSleepSeconds: intp(8 * 3600), DeepSleepSeconds: intp(2 * 3600)},
		models.StageDistribution{DeepPercentage: 25})

	trends, err := NewTrendAggregator(store).WeeklyTrends(context.Background(), user, today)
	require.NoError(t, err)

	assert.Equal(t, 2, trends.DaysWithData)
	assert.InDelta(t, 25.0, trends.AverageDeepSleepPercentage, 1e-9)
	// The zero-length night still contributes to the sleep-time average.
	assert.InDelta(t, 4.0, trends.AverageSleepTimeHours, 1e-9)
}

func TestWeeklyTrendsSkipsCorruptRecord(t *testing.T) {
	store := storage.NewMemoryStore()
	user := uuid.New()
	today := ts("2024-03-07T00:00:00Z")

	require.NoError(t, store.InsertSleepRecord(context.Background(), &models.SleepRecord{
		UserID:    user,
		NightDate: today.AddDate(0, 0, -1),
		DataType:  models.SleepKindSummary,
		Data:      json.RawMessage(`{"sleep_score": "not a number"`),
	}))
	storeSummary(t, store, user, today, 90,
		models.SleepMetrics{TotalSleepSeconds: intp(7 * 3600)},
		models.StageDistribution{})

	trends, err := NewTrendAggregator(store).WeeklyTrends(context.Background(), user, today)
	require.NoError(t, err)

	assert.Equal(t, 1, trends.DaysWithData)
	assert.InDelta(t, 90.0, trends.AverageSleepScore, 1e-9)
	require.Len(t, trends.DailySummaries, 1)
}

func TestWeeklyTrendsMostRecentDocumentWinsPerNight(t *testing.T) {
	store := storage.NewMemoryStore()
	user := uuid.New()
	today := ts("2024-03-07T00:00:00Z")

	storeSummary(t, store, user, today, 40, models.SleepMetrics{}, models.StageDistribution{})
	storeSummary(t, store, user, today, 95, models.SleepMetrics{}, models.StageDistribution{})

	trends, err := NewTrendAggregator(store).WeeklyTrends(context.Background(), user, today)
	require.NoError(t, err)

	assert.Equal(t, 1, trends.DaysWithData)
	assert.InDelta(t, 95.0, trends.AverageSleepScore, 1e-9)
}

func TestWeeklyTrendsWindowCoversSevenCalendarDays(t *testing.T) {
	store := storage.NewMemoryStore()
	user := uuid.New()
	today := ts("2024-03-07T00:00:00Z")

	// One night inside each boundary and one just outside.
	storeSummary(t, store, user, today.AddDate(0, 0, -7), 10, models.SleepMetrics{}, models.StageDistribution{})
	storeSummary(t, store, user, today.AddDate(0, 0, -6), 20, models.SleepMetrics{}, models.StageDistribution{})
	storeSummary(t, store, user, today, 30, models.SleepMetrics{}, models.StageDistribution{})

	trends, err := NewTrendAggregator(store).WeeklyTrends(context.Background(), user, today)
	require.NoError(t, err)

	assert.Equal(t, 2, trends.DaysWithData)
	require.Len(t, trends.DailySummaries, 2)
	assert.Equal(t, "2024-03-01", trends.DailySummaries[0].Date)
	assert.Equal(t, "2024-03-07", trends.DailySummaries[1].Date)
}
