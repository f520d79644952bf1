package storage

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/pulse/internal/models"
)

func day(s string) time.Time {
	t, err := time.Parse(models.NightDateFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

func stamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func sensorRecord(user uuid.UUID, streamType models.StreamType, start time.Time) *models.SensorRecord {
	return &models.SensorRecord{
		UserID:     user,
		StreamType: streamType,
		StartTime:  start,
		EndTime:    start.Add(time.Minute),
		Payload:    json.RawMessage(`{"samples":[]}`),
	}
}

func TestMemoryStoreInsertAssignsIdentity(t *testing.T) {
	store := NewMemoryStore()
	rec := sensorRecord(uuid.New(), models.StreamHeartRate, stamp("2024-03-01T10:00:00Z"))

	require.NoError(t, store.InsertSensorRecord(context.Background(), rec))
	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestMemoryStoreListScopedToOwnerAndStream(t *testing.T) {
	store := NewMemoryStore()
	user, other := uuid.New(), uuid.New()
	ctx := context.Background()

	require.NoError(t, store.InsertSensorRecord(ctx, sensorRecord(user, models.StreamHeartRate, stamp("2024-03-01T10:00:00Z"))))
	require.NoError(t, store.InsertSensorRecord(ctx, sensorRecord(user, models.StreamAcceleration, stamp("2024-03-01T10:00:00Z"))))
	require.NoError(t, store.InsertSensorRecord(ctx, sensorRecord(other, models.StreamHeartRate, stamp("2024-03-01T10:00:00Z"))))

	out, err := store.ListSensorRecords(ctx, user, models.StreamHeartRate)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, user, out[0].UserID)
	assert.Equal(t, models.StreamHeartRate, out[0].StreamType)
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	user := uuid.New()
	ctx := context.Background()

	first := sensorRecord(user, models.StreamHeartRate, stamp("2024-03-01T10:00:00Z"))
	second := sensorRecord(user, models.StreamHeartRate, stamp("2024-03-01T11:00:00Z"))
	require.NoError(t, store.InsertSensorRecord(ctx, first))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, store.InsertSensorRecord(ctx, second))

	out, err := store.ListSensorRecords(ctx, user, models.StreamHeartRate)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, second.ID, out[0].ID)
	assert.Equal(t, first.ID, out[1].ID)
}

func TestMemoryStoreRangeBoundariesInclusive(t *testing.T) {
	store := NewMemoryStore()
	user := uuid.New()
	ctx := context.Background()

	starts := []string{
		"2024-03-01T09:59:59Z",
		"2024-03-01T10:00:00Z",
		"2024-03-01T10:30:00Z",
		"2024-03-01T11:00:00Z",
		"2024-03-01T11:00:01Z",
	}
	for _, s := range starts {
		require.NoError(t, store.InsertSensorRecord(ctx, sensorRecord(user, models.StreamGPSLocation, stamp(s))))
	}

	out, err := store.ListSensorRecordsInRange(ctx, user, models.StreamGPSLocation,
		stamp("2024-03-01T10:00:00Z"), stamp("2024-03-01T11:00:00Z"))
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, stamp("2024-03-01T10:00:00Z"), out[0].StartTime)
	assert.Equal(t, stamp("2024-03-01T10:30:00Z"), out[1].StartTime)
	assert.Equal(t, stamp("2024-03-01T11:00:00Z"), out[2].StartTime)
}

func TestMemoryStoreReadsAreIdempotent(t *testing.T) {
	store := NewMemoryStore()
	user := uuid.New()
	ctx := context.Background()

	require.NoError(t, store.InsertSensorRecord(ctx, sensorRecord(user, models.StreamBloodOxygen, stamp("2024-03-01T10:00:00Z"))))

	first, err := store.ListSensorRecords(ctx, user, models.StreamBloodOxygen)
	require.NoError(t, err)
	second, err := store.ListSensorRecords(ctx, user, models.StreamBloodOxygen)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMemoryStoreGetSleepRecordMostRecentWins(t *testing.T) {
	store := NewMemoryStore()
	user := uuid.New()
	ctx := context.Background()
	night := day("2024-03-05")

	require.NoError(t, store.InsertSleepRecord(ctx, &models.SleepRecord{
		UserID: user, NightDate: night, DataType: models.SleepKindSummary,
		Data: json.RawMessage(`{"sleep_score":40}`),
	}))
	require.NoError(t, store.InsertSleepRecord(ctx, &models.SleepRecord{
		UserID: user, NightDate: night, DataType: models.SleepKindSummary,
		Data: json.RawMessage(`{"sleep_score":90}`),
	}))

	rec, err := store.GetSleepRecord(ctx, user, night, models.SleepKindSummary)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.JSONEq(t, `{"sleep_score":90}`, string(rec.Data))
}

func TestMemoryStoreGetSleepRecordMissingIsNil(t *testing.T) {
	store := NewMemoryStore()

	rec, err := store.GetSleepRecord(context.Background(), uuid.New(), day("2024-03-05"), models.SleepKindStages)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestMemoryStoreListSleepRecordsOnePerNightOldestFirst(t *testing.T) {
	store := NewMemoryStore()
	user := uuid.New()
	ctx := context.Background()

	for _, n := range []string{"2024-03-06", "2024-03-04", "2024-03-05"} {
		require.NoError(t, store.InsertSleepRecord(ctx, &models.SleepRecord{
			UserID: user, NightDate: day(n), DataType: models.SleepKindStages,
			Data: json.RawMessage(`{}`),
		}))
	}
	// Duplicate for the 4th; the later insert must be the one returned.
	require.NoError(t, store.InsertSleepRecord(ctx, &models.SleepRecord{
		UserID: user, NightDate: day("2024-03-04"), DataType: models.SleepKindStages,
		Data: json.RawMessage(`{"revised":true}`),
	}))

	out, err := store.ListSleepRecords(ctx, user, day("2024-03-04"), day("2024-03-06"), models.SleepKindStages)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, day("2024-03-04"), out[0].NightDate)
	assert.Equal(t, day("2024-03-05"), out[1].NightDate)
	assert.Equal(t, day("2024-03-06"), out[2].NightDate)
	assert.JSONEq(t, `{"revised":true}`, string(out[0].Data))
}

func TestMemoryStoreListSleepRecordsFiltersKind(t *testing.T) {
	store := NewMemoryStore()
	user := uuid.New()
	ctx := context.Background()
	night := day("2024-03-05")

	require.NoError(t, store.InsertSleepRecord(ctx, &models.SleepRecord{
		UserID: user, NightDate: night, DataType: models.SleepKindStages, Data: json.RawMessage(`{}`),
	}))
	require.NoError(t, store.InsertSleepRecord(ctx, &models.SleepRecord{
		UserID: user, NightDate: night, DataType: models.SleepKindSummary, Data: json.RawMessage(`{}`),
	}))

	out, err := store.ListSleepRecords(ctx, user, night, night, models.SleepKindSummary)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, models.SleepKindSummary, out[0].DataType)
}
