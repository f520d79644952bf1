package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/your-org/pulse/internal/config"
	"github.com/your-org/pulse/internal/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Sensor records ---

func (s *PostgresStore) InsertSensorRecord(ctx context.Context, r *models.SensorRecord) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sensor_records (id, user_id, data_type, device_info, sampling_rate_hz, start_time, end_time, data, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.UserID, r.StreamType, r.DeviceInfo, r.SamplingRateHz,
		r.StartTime, r.EndTime, r.Payload, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert sensor record: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListSensorRecords(ctx context.Context, userID uuid.UUID, streamType models.StreamType) ([]models.SensorRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, data_type, device_info, sampling_rate_hz, start_time, end_time, data, created_at
		 FROM sensor_records
		 WHERE user_id = $1 AND data_type = $2
		 ORDER BY created_at DESC`,
		userID, streamType)
	if err != nil {
		return nil, fmt.Errorf("list sensor records: %w", err)
	}
	defer rows.Close()

	return scanSensorRecords(rows)
}

func (s *PostgresStore) ListSensorRecordsInRange(ctx context.Context, userID uuid.UUID, streamType models.StreamType, from, to time.Time) ([]models.SensorRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, data_type, device_info, sampling_rate_hz, start_time, end_time, data, created_at
		 FROM sensor_records
		 WHERE user_id = $1 AND data_type = $2 AND start_time >= $3 AND start_time <= $4
		 ORDER BY start_time ASC`,
		userID, streamType, from, to)
	if err != nil {
		return nil, fmt.Errorf("list sensor records in range: %w", err)
	}
	defer rows.Close()

	return scanSensorRecords(rows)
}

func scanSensorRecords(rows pgx.Rows) ([]models.SensorRecord, error) {
	var records []models.SensorRecord
	for rows.Next() {
		var r models.SensorRecord
		if err := rows.Scan(&r.ID, &r.UserID, &r.StreamType, &r.DeviceInfo, &r.SamplingRateHz,
			&r.StartTime, &r.EndTime, &r.Payload, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sensor record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// --- Sleep records ---

func (s *PostgresStore) InsertSleepRecord(ctx context.Context, r *models.SleepRecord) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.CreatedAt = time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sleep_records (id, user_id, night_date, data_type, data, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.UserID, r.NightDate, r.DataType, r.Data, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert sleep record: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSleepRecord(ctx context.Context, userID uuid.UUID, night time.Time, dataType string) (*models.SleepRecord, error) {
	r := &models.SleepRecord{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, night_date, data_type, data, created_at
		 FROM sleep_records
		 WHERE user_id = $1 AND night_date = $2 AND data_type = $3
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID, night, dataType,
	).Scan(&r.ID, &r.UserID, &r.NightDate, &r.DataType, &r.Data, &r.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get sleep record: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) ListSleepRecords(ctx context.Context, userID uuid.UUID, from, to time.Time, dataType string) ([]models.SleepRecord, error) {
	// DISTINCT ON keeps the most recently created row per night.
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT ON (night_date) id, user_id, night_date, data_type, data, created_at
		 FROM sleep_records
		 WHERE user_id = $1 AND night_date >= $2 AND night_date <= $3 AND data_type = $4
		 ORDER BY night_date ASC, created_at DESC`,
		userID, from, to, dataType)
	if err != nil {
		return nil, fmt.Errorf("list sleep records: %w", err)
	}
	defer rows.Close()

	var records []models.SleepRecord
	for rows.Next() {
		var r models.SleepRecord
		if err := rows.Scan(&r.ID, &r.UserID, &r.NightDate, &r.DataType, &r.Data, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sleep record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
