package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/your-org/pulse/internal/api"
	"github.com/your-org/pulse/internal/api/ws"
	"github.com/your-org/pulse/internal/config"
	"github.com/your-org/pulse/internal/models"
	"github.com/your-org/pulse/internal/observability"
	"github.com/your-org/pulse/internal/queue"
	"github.com/your-org/pulse/internal/storage"
	"github.com/your-org/pulse/pkg/dto"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting pulse API service", "port", cfg.Server.Port)

	// Connect to Postgres
	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to MinIO
	archive, err := storage.NewArchiveStore(cfg.MinIO)
	if err != nil {
		slog.Error("connect to minio", "error", err)
		os.Exit(1)
	}
	if err := archive.EnsureBucket(context.Background()); err != nil {
		slog.Warn("ensure minio bucket", "error", err)
	}

	// Connect to NATS
	producer, err := queue.NewProducer(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	if err := producer.EnsureStreams(context.Background()); err != nil {
		slog.Warn("ensure nats streams", "error", err)
	}

	// WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Consume sleep documents published by the external analysis job.
	consumer, err := queue.NewConsumer(cfg.NATS.URL)
	if err != nil {
		slog.Error("create sleep consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = consumer.ConsumeSleepDocuments(ctx, "api-sleep", func(ctx context.Context, msg jetstream.Msg) error {
		var doc models.SleepDocument
		if err := json.Unmarshal(msg.Data(), &doc); err != nil {
			return err
		}

		night, err := time.Parse(models.NightDateFormat, doc.NightDate)
		if err != nil {
			return fmt.Errorf("parse night_date %q: %w", doc.NightDate, err)
		}
		if doc.DataType != models.SleepKindStages && doc.DataType != models.SleepKindSummary {
			return fmt.Errorf("unknown sleep document type %q", doc.DataType)
		}

		record := &models.SleepRecord{
			UserID:    doc.UserID,
			NightDate: night,
			DataType:  doc.DataType,
			Data:      doc.Data,
		}
		if err := db.InsertSleepRecord(ctx, record); err != nil {
			return err
		}
		observability.SleepSummariesConsumed.Inc()

		hub.BroadcastEvent(&dto.WSEvent{
			Type: "sleep_document",
			Data: map[string]any{
				"user_id":    doc.UserID,
				"night_date": doc.NightDate,
				"data_type":  doc.DataType,
			},
		})
		return nil
	})
	if err != nil {
		slog.Warn("start sleep consumer", "error", err)
	}

	// Setup router
	router := api.NewRouter(api.RouterConfig{
		APIKey:   cfg.Server.APIKey,
		DB:       db,
		Archive:  archive,
		Producer: producer,
		Hub:      hub,
	})

	// Start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("API server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down API server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("API server stopped")
}
