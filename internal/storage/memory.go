package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/pulse/internal/models"
)

// MemoryStore is an in-process implementation of SensorStore and SleepStore.
// It backs handler and analytics tests and local development without Postgres.
type MemoryStore struct {
	mu      sync.RWMutex
	sensors []models.SensorRecord
	sleep   []models.SleepRecord
	seq     int // tiebreaker for identical created_at timestamps
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) InsertSensorRecord(_ context.Context, r *models.SensorRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r.ID = uuid.New()
	r.CreatedAt = time.Now().UTC()
	m.sensors = append(m.sensors, *r)
	return nil
}

func (m *MemoryStore) ListSensorRecords(_ context.Context, userID uuid.UUID, streamType models.StreamType) ([]models.SensorRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.SensorRecord
	for _, r := range m.sensors {
		if r.UserID == userID && r.StreamType == streamType {
			out = append(out, r)
		}
	}
	// Newest first; insertion order breaks created_at ties.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) ListSensorRecordsInRange(_ context.Context, userID uuid.UUID, streamType models.StreamType, from, to time.Time) ([]models.SensorRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.SensorRecord
	for _, r := range m.sensors {
		if r.UserID != userID || r.StreamType != streamType {
			continue
		}
		if r.StartTime.Before(from) || r.StartTime.After(to) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

func (m *MemoryStore) InsertSleepRecord(_ context.Context, r *models.SleepRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.CreatedAt = time.Now().UTC()
	m.seq++
	// Nudge identical timestamps so "most recent wins" stays deterministic.
	r.CreatedAt = r.CreatedAt.Add(time.Duration(m.seq) * time.Nanosecond)
	m.sleep = append(m.sleep, *r)
	return nil
}

func (m *MemoryStore) GetSleepRecord(_ context.Context, userID uuid.UUID, night time.Time, dataType string) (*models.SleepRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var best *models.SleepRecord
	for i := range m.sleep {
		r := &m.sleep[i]
		if r.UserID != userID || r.DataType != dataType || !sameDay(r.NightDate, night) {
			continue
		}
		if best == nil || r.CreatedAt.After(best.CreatedAt) {
			best = r
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (m *MemoryStore) ListSleepRecords(_ context.Context, userID uuid.UUID, from, to time.Time, dataType string) ([]models.SleepRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	latest := map[string]models.SleepRecord{}
	for _, r := range m.sleep {
		if r.UserID != userID || r.DataType != dataType {
			continue
		}
		day := r.NightDate.Format(models.NightDateFormat)
		if day < from.Format(models.NightDateFormat) || day > to.Format(models.NightDateFormat) {
			continue
		}
		if cur, ok := latest[day]; !ok || r.CreatedAt.After(cur.CreatedAt) {
			latest[day] = r
		}
	}

	out := make([]models.SleepRecord, 0, len(latest))
	for _, r := range latest {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].NightDate.Before(out[j].NightDate)
	})
	return out, nil
}

func sameDay(a, b time.Time) bool {
	return a.Format(models.NightDateFormat) == b.Format(models.NightDateFormat)
}
