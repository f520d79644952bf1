package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/pulse/internal/analytics"
	"github.com/your-org/pulse/internal/auth"
	"github.com/your-org/pulse/internal/models"
	"github.com/your-org/pulse/internal/observability"
	"github.com/your-org/pulse/pkg/dto"
)

// CorrelationHandler serves health_data_with_gps: primary records in a time
// window, each augmented with the GPS samples that co-occurred.
type CorrelationHandler struct {
	correlator *analytics.Correlator
}

func NewCorrelationHandler(correlator *analytics.Correlator) *CorrelationHandler {
	return &CorrelationHandler{correlator: correlator}
}

func (h *CorrelationHandler) HealthDataWithGPS(c *gin.Context) {
	identity, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing user identity"})
		return
	}

	streamType := models.StreamType(c.Query("data_type"))
	if !streamType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid or missing data_type"})
		return
	}

	from, err := time.Parse(time.RFC3339, c.Query("start_time"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid start_time. Expected RFC 3339 timestamp."})
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("end_time"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid end_time. Expected RFC 3339 timestamp."})
		return
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "end_time must not be before start_time"})
		return
	}

	start := time.Now()
	correlated, err := h.correlator.Correlate(c.Request.Context(), identity.UserID, streamType, models.StreamGPSLocation, from, to)
	if err != nil {
		slog.Error("correlate health data with gps", "data_type", streamType, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to retrieve health data"})
		return
	}
	observability.CorrelationDuration.Observe(time.Since(start).Seconds())

	out := make([]dto.CorrelatedRecord, 0, len(correlated))
	for _, rec := range correlated {
		out = append(out, dto.CorrelatedRecord{
			ID:             rec.ID,
			DataType:       string(rec.StreamType),
			DeviceInfo:     rec.DeviceInfo,
			SamplingRateHz: rec.SamplingRateHz,
			StartTime:      rec.StartTime,
			EndTime:        rec.EndTime,
			Data:           rec.Payload,
			CreatedAt:      rec.CreatedAt,
			GPSData:        rec.CorrelatedSamples,
		})
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Status: "success",
		Count:  len(out),
		Data:   out,
	})
}
