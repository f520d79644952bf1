package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/pulse/internal/models"
)

// SensorStore persists immutable sensor records per user. Every query is
// owner-scoped; there is no cross-user listing.
type SensorStore interface {
	// InsertSensorRecord appends a record, assigning its ID and write timestamp.
	InsertSensorRecord(ctx context.Context, r *models.SensorRecord) error
	// ListSensorRecords returns all records of a type for a user, newest first.
	ListSensorRecords(ctx context.Context, userID uuid.UUID, streamType models.StreamType) ([]models.SensorRecord, error)
	// ListSensorRecordsInRange returns records whose start_time falls within
	// [from, to] inclusive, oldest first.
	ListSensorRecordsInRange(ctx context.Context, userID uuid.UUID, streamType models.StreamType, from, to time.Time) ([]models.SensorRecord, error)
}

// SleepStore reads sleep documents written by the external analysis job.
type SleepStore interface {
	InsertSleepRecord(ctx context.Context, r *models.SleepRecord) error
	// GetSleepRecord returns the most recently created document for the night,
	// or nil when none exists.
	GetSleepRecord(ctx context.Context, userID uuid.UUID, night time.Time, dataType string) (*models.SleepRecord, error)
	// ListSleepRecords returns one document per night in [from, to], oldest
	// night first. When a night has duplicates the most recently created wins.
	ListSleepRecords(ctx context.Context, userID uuid.UUID, from, to time.Time, dataType string) ([]models.SleepRecord, error)
}
