package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Every endpoint answers with the same envelope: status is "success" or
// "error", message is human-readable, count/data carry the payload.

type UploadResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type ListResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
	Data   any    `json:"data"`
}

type DataResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

// CorrelatedRecord is one entry of the health_data_with_gps response: the
// primary record's own fields plus the GPS samples that fell inside its window.
type CorrelatedRecord struct {
	ID             uuid.UUID         `json:"id"`
	DataType       string            `json:"data_type"`
	DeviceInfo     json.RawMessage   `json:"device_info"`
	SamplingRateHz int               `json:"sampling_rate_hz"`
	StartTime      time.Time         `json:"start_time"`
	EndTime        time.Time         `json:"end_time"`
	Data           json.RawMessage   `json:"data"`
	CreatedAt      time.Time         `json:"created_at"`
	GPSData        []json.RawMessage `json:"gps_data"`
}

// WSEvent is a WebSocket message for the live telemetry feed.
type WSEvent struct {
	Type       string `json:"type"` // sensor_upload, sleep_document
	StreamType string `json:"stream_type,omitempty"`
	Data       any    `json:"data,omitempty"`
}
