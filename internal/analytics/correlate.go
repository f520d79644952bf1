// Package analytics holds the cross-stream queries: time-window correlation
// and sleep trend aggregation.
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

// CorrelatedRecord is a primary record plus every secondary-stream sample
// whose timestamp fell inside the record's window.
type CorrelatedRecord struct {
	models.SensorRecord
	CorrelatedSamples []json.RawMessage
}

type Correlator struct {
	store storage.SensorStore
}

func NewCorrelator(store storage.SensorStore) *Correlator {
	return &Correlator{store: store}
}

// timedSample is one secondary sample with its parsed timestamp.
type timedSample struct {
	at  time.Time
	raw json.RawMessage
}

// Correlate answers "for each primary record in the window, which secondary
// samples co-occurred". Primary records come back oldest first; each carries
// the matching secondary samples in secondary-record order.
func (c *Correlator) Correlate(ctx context.Context, userID uuid.UUID, primaryType, secondaryType models.StreamType, from, to time.Time) ([]CorrelatedRecord, error) {
	primary, err := c.store.ListSensorRecordsInRange(ctx, userID, primaryType, from, to)
	if err != nil {
		return nil, err
	}
	if len(primary) == 0 {
		return []CorrelatedRecord{}, nil
	}

	secondary, err := c.store.ListSensorRecordsInRange(ctx, userID, secondaryType, from, to)
	if err != nil {
		return nil, err
	}

	// Parse each secondary payload once, not once per primary record.
	parsed := make([][]timedSample, len(secondary))
	for i, rec := range secondary {
		parsed[i] = extractSamples(rec)
	}

	out := make([]CorrelatedRecord, 0, len(primary))
	for _, p := range primary {
		matched := make([]json.RawMessage, 0)
		for i, s := range secondary {
			if !windowsOverlap(p.StartTime, p.EndTime, s.StartTime, s.EndTime) {
				continue
			}
			for _, smp := range parsed[i] {
				// Only samples inside the primary window count, even though
				// the parent record overlapped.
				if !smp.at.Before(p.StartTime) && !smp.at.After(p.EndTime) {
					matched = append(matched, smp.raw)
				}
			}
		}
		out = append(out, CorrelatedRecord{SensorRecord: p, CorrelatedSamples: matched})
	}
	return out, nil
}

// windowsOverlap reports whether [aStart,aEnd] and [bStart,bEnd] intersect.
// Both ends are inclusive: a shared boundary instant counts as overlap.
func windowsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// extractSamples pulls the sample array out of a record's payload document.
// A record with no samples, or samples with no parseable timestamp, simply
// contributes nothing.
func extractSamples(rec models.SensorRecord) []timedSample {
	var env models.PayloadEnvelope
	if err := json.Unmarshal(rec.Payload, &env); err != nil {
		slog.Warn("skipping record with unreadable payload", "record_id", rec.ID, "error", err)
		return nil
	}

	out := make([]timedSample, 0, len(env.Samples))
	for _, raw := range env.Samples {
		var inst models.SampleInstant
		if err := json.Unmarshal(raw, &inst); err != nil || inst.Timestamp.IsZero() {
			continue
		}
		out = append(out, timedSample{at: inst.Timestamp, raw: raw})
	}
	return out
}
