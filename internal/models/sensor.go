package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// StreamType is the closed set of sensor streams the service accepts.
type StreamType string

const (
	StreamAcceleration    StreamType = "acceleration"
	StreamHeartRate       StreamType = "heart_rate"
	StreamBloodOxygen     StreamType = "blood_oxygen"
	StreamSkinTemperature StreamType = "skin_temperature"
	StreamGPSLocation     StreamType = "gps_location"
)

func (t StreamType) Valid() bool {
	switch t {
	case StreamAcceleration, StreamHeartRate, StreamBloodOxygen, StreamSkinTemperature, StreamGPSLocation:
		return true
	}
	return false
}

// DeviceInfo is stored verbatim alongside every record.
type DeviceInfo struct {
	DeviceType string  `json:"device_type"`
	Model      string  `json:"model"`
	OSVersion  string  `json:"os_version"`
	DeviceID   *string `json:"device_id,omitempty"`
}

// SensorRecord is one immutable stored upload. The payload document holds
// the sample array and optional metadata exactly as uploaded.
type SensorRecord struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	UserID         uuid.UUID       `json:"user_id" db:"user_id"`
	StreamType     StreamType      `json:"data_type" db:"data_type"`
	DeviceInfo     json.RawMessage `json:"device_info" db:"device_info"`
	SamplingRateHz int             `json:"sampling_rate_hz" db:"sampling_rate_hz"`
	StartTime      time.Time       `json:"start_time" db:"start_time"`
	EndTime        time.Time       `json:"end_time" db:"end_time"`
	Payload        json.RawMessage `json:"data" db:"data"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// PayloadEnvelope is the shape of SensorRecord.Payload. Samples stay raw so
// the stored document round-trips without loss.
type PayloadEnvelope struct {
	Samples  []json.RawMessage `json:"samples"`
	Metadata json.RawMessage   `json:"metadata,omitempty"`
}

// SampleInstant extracts just the timestamp of a raw sample.
type SampleInstant struct {
	Timestamp time.Time `json:"timestamp"`
}

type AccelerationSample struct {
	Timestamp time.Time `json:"timestamp"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Z         float64   `json:"z"`
}

type HeartRateSample struct {
	Timestamp time.Time `json:"timestamp"`
	HeartRate int       `json:"heart_rate"`
	// Confidence is a score between 0 and 1; absent when the device does not report one.
	Confidence *float64 `json:"confidence,omitempty"`
}

type BloodOxygenSample struct {
	Timestamp  time.Time `json:"timestamp"`
	SpO2       float64   `json:"spo2"`
	Confidence *float64  `json:"confidence,omitempty"`
}

type SkinTemperatureSample struct {
	Timestamp time.Time `json:"timestamp"`
	// Temperature in Celsius.
	Temperature  float64  `json:"temperature"`
	Confidence   *float64 `json:"confidence,omitempty"`
	BodyLocation *string  `json:"body_location,omitempty"`
}

type GPSLocationSample struct {
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Altitude  *float64  `json:"altitude,omitempty"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	Speed     *float64  `json:"speed,omitempty"`
	Bearing   *float64  `json:"bearing,omitempty"`
}

// UploadEvent is the message published after a sensor record is stored,
// consumed by downstream processors and the live feed.
type UploadEvent struct {
	RecordID    uuid.UUID  `json:"record_id"`
	UserID      uuid.UUID  `json:"user_id"`
	StreamType  StreamType `json:"data_type"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	SampleCount int        `json:"sample_count"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (s AccelerationSample) At() time.Time    { return s.Timestamp }
func (s HeartRateSample) At() time.Time       { return s.Timestamp }
func (s BloodOxygenSample) At() time.Time     { return s.Timestamp }
func (s SkinTemperatureSample) At() time.Time { return s.Timestamp }
func (s GPSLocationSample) At() time.Time     { return s.Timestamp }
