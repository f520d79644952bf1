package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/pulse/internal/analytics"
	"github.com/your-org/pulse/internal/api/handlers"
	"github.com/your-org/pulse/internal/api/ws"
	"github.com/your-org/pulse/internal/auth"
	"github.com/your-org/pulse/internal/models"
	"github.com/your-org/pulse/internal/queue"
	"github.com/your-org/pulse/internal/storage"
)

type RouterConfig struct {
	APIKey   string
	DB       *storage.PostgresStore
	Archive  *storage.ArchiveStore
	Producer *queue.Producer
	Hub      *ws.Hub
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.DB, cfg.Archive, cfg.Producer)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 (service key + caller identity)
	v1 := r.Group("/v1")
	v1.Use(auth.APIKeyMiddleware(cfg.APIKey))
	v1.Use(auth.IdentityMiddleware())

	// WebSocket live feed
	v1.GET("/ws", cfg.Hub.HandleWS)

	// Sensor uploads and raw retrieval
	telemetryH := handlers.NewTelemetryHandler(cfg.DB, cfg.Archive, cfg.Producer, cfg.Hub)
	v1.POST("/upload_acceleration", handlers.UploadHandler[models.AccelerationSample](telemetryH, models.StreamAcceleration))
	v1.POST("/upload_heart_rate", handlers.UploadHandler[models.HeartRateSample](telemetryH, models.StreamHeartRate))
	v1.POST("/upload_blood_oxygen", handlers.UploadHandler[models.BloodOxygenSample](telemetryH, models.StreamBloodOxygen))
	v1.POST("/upload_skin_temperature", handlers.UploadHandler[models.SkinTemperatureSample](telemetryH, models.StreamSkinTemperature))
	v1.POST("/upload_gps_location", handlers.UploadHandler[models.GPSLocationSample](telemetryH, models.StreamGPSLocation))

	v1.GET("/acceleration_data", handlers.ListHandler(telemetryH, models.StreamAcceleration))
	v1.GET("/heart_rate_data", handlers.ListHandler(telemetryH, models.StreamHeartRate))
	v1.GET("/blood_oxygen_data", handlers.ListHandler(telemetryH, models.StreamBloodOxygen))
	v1.GET("/skin_temperature_data", handlers.ListHandler(telemetryH, models.StreamSkinTemperature))
	v1.GET("/gps_location_data", handlers.ListHandler(telemetryH, models.StreamGPSLocation))

	// Cross-stream correlation
	correlationH := handlers.NewCorrelationHandler(analytics.NewCorrelator(cfg.DB))
	v1.GET("/health_data_with_gps", correlationH.HealthDataWithGPS)

	// Sleep documents and trends
	sleepH := handlers.NewSleepHandler(cfg.DB, analytics.NewTrendAggregator(cfg.DB))
	v1.GET("/sleep_data", sleepH.GetSleepData)
	v1.GET("/sleep_data_range", sleepH.GetSleepDataRange)
	v1.GET("/sleep_summary", sleepH.GetSleepSummary)
	v1.GET("/sleep_trends", sleepH.GetSleepTrends)

	return r
}
