// Package ingest shapes raw sensor uploads into stored sensor records.
package ingest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/pulse/internal/models"
)

// Sample is implemented by every stream-type sample shape.
type Sample interface {
	At() time.Time
}

// Upload is the request body accepted by every upload endpoint. The sample
// element type is fixed per endpoint, so malformed sample shapes fail at
// JSON binding before any normalization runs.
type Upload[S Sample] struct {
	DataType       string            `json:"data_type"`
	DeviceInfo     models.DeviceInfo `json:"device_info"`
	SamplingRateHz int               `json:"sampling_rate_hz"`
	StartTime      time.Time         `json:"start_time"`
	EndTime        time.Time         `json:"end_time"`
	Samples        []S               `json:"samples"`
	Metadata       json.RawMessage   `json:"metadata,omitempty"`
}

// ValidationError marks a client-caused upload failure.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func invalidf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// Normalize validates an upload against the endpoint's expected stream type
// and produces a record ready for insertion. The record's owner comes from
// the authenticated caller, never from the body.
func Normalize[S Sample](expected models.StreamType, userID uuid.UUID, u Upload[S]) (*models.SensorRecord, error) {
	if u.DataType != string(expected) {
		return nil, invalidf("Invalid data type. Expected '%s'.", expected)
	}
	if u.StartTime.IsZero() {
		return nil, invalidf("start_time is required")
	}
	// Zero means the device did not report a rate; only negatives are invalid.
	if u.SamplingRateHz < 0 {
		return nil, invalidf("sampling_rate_hz must not be negative")
	}
	for i, s := range u.Samples {
		if s.At().IsZero() {
			return nil, invalidf("sample %d is missing a timestamp", i)
		}
	}

	endTime := deriveEndTime(u)
	if endTime.Before(u.StartTime) {
		return nil, invalidf("end_time must not be before start_time")
	}

	deviceInfo, err := json.Marshal(u.DeviceInfo)
	if err != nil {
		return nil, fmt.Errorf("marshal device info: %w", err)
	}

	samples := u.Samples
	if samples == nil {
		samples = []S{}
	}
	payload, err := json.Marshal(struct {
		Samples  []S             `json:"samples"`
		Metadata json.RawMessage `json:"metadata,omitempty"`
	}{Samples: samples, Metadata: u.Metadata})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	return &models.SensorRecord{
		UserID:         userID,
		StreamType:     expected,
		DeviceInfo:     deviceInfo,
		SamplingRateHz: u.SamplingRateHz,
		StartTime:      u.StartTime,
		EndTime:        endTime,
		Payload:        payload,
	}, nil
}

// deriveEndTime reproduces the upload contract exactly: a caller-supplied
// end_time distinct from start_time wins, then the last sample's timestamp,
// then start_time.
func deriveEndTime[S Sample](u Upload[S]) time.Time {
	if !u.EndTime.Equal(u.StartTime) && !u.EndTime.IsZero() {
		return u.EndTime
	}
	if n := len(u.Samples); n > 0 {
		return u.Samples[n-1].At()
	}
	return u.StartTime
}
