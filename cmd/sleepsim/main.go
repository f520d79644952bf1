// sleepsim publishes synthetic nightly sleep documents to NATS, standing in
// for the external analysis job during local development.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/pulse/internal/models"
	"github.com/your-org/pulse/internal/observability"
	"github.com/your-org/pulse/internal/queue"
)

func main() {
	natsURL := flag.String("nats", "nats://localhost:4222", "NATS server URL")
	userFlag := flag.String("user", "", "user UUID to generate summaries for")
	nights := flag.Int("nights", 7, "number of trailing nights to publish")
	flag.Parse()

	observability.SetupLogger("info", "text")

	userID, err := uuid.Parse(*userFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -user: %v\n", err)
		os.Exit(1)
	}

	producer, err := queue.NewProducer(*natsURL)
	if err != nil {
		slog.Error("connect to nats", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := producer.EnsureStreams(ctx); err != nil {
		slog.Error("ensure nats streams", "error", err)
		os.Exit(1)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	for i := *nights - 1; i >= 0; i-- {
		night := today.AddDate(0, 0, -i)
		doc := models.SleepDocument{
			UserID:    userID,
			NightDate: night.Format(models.NightDateFormat),
			DataType:  models.SleepKindSummary,
			Data:      synthSummary(userID, night),
		}
		if err := producer.PublishSleepDocument(ctx, doc.DataType, doc); err != nil {
			slog.Error("publish sleep document", "night", doc.NightDate, "error", err)
			os.Exit(1)
		}
		slog.Info("published sleep summary", "night", doc.NightDate)
	}
}

func synthSummary(userID uuid.UUID, night time.Time) json.RawMessage {
	total := 6*3600 + rand.Intn(3*3600)
	deep := total * (15 + rand.Intn(10)) / 100
	light := total / 2
	rem := total - deep - light
	score := 60 + rand.Intn(40)

	quality := "Fair"
	switch {
	case score >= 90:
		quality = "Excellent"
	case score >= 75:
		quality = "Good"
	case score < 50:
		quality = "Poor"
	}

	summary := models.SleepSummary{
		ID:         uuid.NewString(),
		UserID:     userID.String(),
		NightDate:  night.Format(models.NightDateFormat),
		SleepScore: score,
		SleepMetrics: models.SleepMetrics{
			TotalSleepSeconds: &total,
			DeepSleepSeconds:  &deep,
			LightSleepSeconds: &light,
			REMSleepSeconds:   &rem,
		},
		OverallQuality: quality,
		StageDistribution: models.StageDistribution{
			DeepPercentage:  float64(deep) / float64(total) * 100,
			LightPercentage: float64(light) / float64(total) * 100,
			REMPercentage:   float64(rem) / float64(total) * 100,
		},
		CreatedAt: time.Now().UTC(),
	}

	data, _ := json.Marshal(summary)
	return data
}
