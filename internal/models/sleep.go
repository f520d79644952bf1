package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Sleep documents are produced by the external analysis job and consumed
// read-only here. Two document kinds share the sleep_records table.
const (
	SleepKindStages  = "sleep_stages"
	SleepKindSummary = "sleep_summary"
)

// NightDateFormat is the calendar-date key format for sleep documents.
const NightDateFormat = "2006-01-02"

type SleepStage string

const (
	StageAwake   SleepStage = "awake"
	StageLight   SleepStage = "light"
	StageDeep    SleepStage = "deep"
	StageREM     SleepStage = "rem"
	StageUnknown SleepStage = "unknown"
)

type SleepStageSample struct {
	Timestamp       time.Time  `json:"timestamp"`
	Stage           SleepStage `json:"stage"`
	Confidence      *float64   `json:"confidence,omitempty"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
}

// SleepMetrics may be partially populated; every field is optional.
type SleepMetrics struct {
	SleepEfficiency     *float64 `json:"sleep_efficiency,omitempty"`
	SleepLatencySeconds *int     `json:"sleep_latency_seconds,omitempty"`
	Awakenings          *int     `json:"awakenings,omitempty"`
	TimeInBedSeconds    *int     `json:"time_in_bed_seconds,omitempty"`
	TotalSleepSeconds   *int     `json:"total_sleep_seconds,omitempty"`
	LightSleepSeconds   *int     `json:"light_sleep_seconds,omitempty"`
	DeepSleepSeconds    *int     `json:"deep_sleep_seconds,omitempty"`
	REMSleepSeconds     *int     `json:"rem_sleep_seconds,omitempty"`
	AwakeSeconds        *int     `json:"awake_seconds,omitempty"`
}

type StageDistribution struct {
	AwakePercentage float64 `json:"awake_percentage"`
	LightPercentage float64 `json:"light_percentage"`
	DeepPercentage  float64 `json:"deep_percentage"`
	REMPercentage   float64 `json:"rem_percentage"`
}

// ProcessedSleepData is the per-night stage-level document.
type ProcessedSleepData struct {
	ID         string             `json:"id"`
	UserID     string             `json:"user_id"`
	NightDate  string             `json:"night_date"`
	StartTime  time.Time          `json:"start_time"`
	EndTime    time.Time          `json:"end_time"`
	Samples    []SleepStageSample `json:"samples"`
	Metrics    SleepMetrics       `json:"metrics"`
	SleepScore int                `json:"sleep_score"`
	CreatedAt  time.Time          `json:"created_at"`
}

// SleepSummary is the per-night summary document used for trend computation.
type SleepSummary struct {
	ID                string            `json:"id"`
	UserID            string            `json:"user_id"`
	NightDate         string            `json:"night_date"`
	SleepMetrics      SleepMetrics      `json:"sleep_metrics"`
	SleepScore        int               `json:"sleep_score"`
	OverallQuality    string            `json:"overall_quality"`
	Highlights        []string          `json:"highlights"`
	Issues            []string          `json:"issues"`
	StageDistribution StageDistribution `json:"stage_distribution"`
	Recommendations   []string          `json:"recommendations"`
	CreatedAt         time.Time         `json:"created_at"`
}

// SleepDocument is the message the analysis job publishes for one night.
// Data carries the full ProcessedSleepData or SleepSummary document.
type SleepDocument struct {
	UserID    uuid.UUID       `json:"user_id"`
	NightDate string          `json:"night_date"`
	DataType  string          `json:"data_type"`
	Data      json.RawMessage `json:"data"`
}

// SleepRecord is one row of the sleep_records table. Data holds the raw
// document; it is parsed into ProcessedSleepData or SleepSummary on read.
type SleepRecord struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	UserID    uuid.UUID       `json:"user_id" db:"user_id"`
	NightDate time.Time       `json:"night_date" db:"night_date"`
	DataType  string          `json:"data_type" db:"data_type"`
	Data      json.RawMessage `json:"data" db:"data"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
