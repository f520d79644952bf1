package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/pulse/internal/api/ws"
	"github.com/your-org/pulse/internal/auth"
	"github.com/your-org/pulse/internal/ingest"
	"github.com/your-org/pulse/internal/models"
	"github.com/your-org/pulse/internal/observability"
	"github.com/your-org/pulse/internal/queue"
	"github.com/your-org/pulse/internal/storage"
	"github.com/your-org/pulse/pkg/dto"
)

// streamLabels feed the human-readable upload messages.
var streamLabels = map[models.StreamType]string{
	models.StreamAcceleration:    "Acceleration",
	models.StreamHeartRate:       "Heart rate",
	models.StreamBloodOxygen:     "Blood oxygen",
	models.StreamSkinTemperature: "Skin temperature",
	models.StreamGPSLocation:     "GPS location",
}

// TelemetryHandler serves the per-stream upload and retrieval endpoints.
// Archive, Producer and Hub are optional; storage is the source of truth and
// the side channels are best-effort.
type TelemetryHandler struct {
	store    storage.SensorStore
	archive  *storage.ArchiveStore
	producer *queue.Producer
	hub      *ws.Hub
}

func NewTelemetryHandler(store storage.SensorStore, archive *storage.ArchiveStore, producer *queue.Producer, hub *ws.Hub) *TelemetryHandler {
	return &TelemetryHandler{store: store, archive: archive, producer: producer, hub: hub}
}

// UploadHandler returns the POST handler for one stream type. The sample
// shape S is fixed per endpoint so malformed samples fail at decode time.
func UploadHandler[S ingest.Sample](h *TelemetryHandler, streamType models.StreamType) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := auth.FromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing user identity"})
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "unable to read request body"})
			return
		}

		var req ingest.Upload[S]
		if err := json.Unmarshal(body, &req); err != nil {
			observability.UploadValidationFailures.WithLabelValues(string(streamType)).Inc()
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "malformed upload body: " + err.Error()})
			return
		}

		record, err := ingest.Normalize(streamType, identity.UserID, req)
		if err != nil {
			var verr *ingest.ValidationError
			if errors.As(err, &verr) {
				observability.UploadValidationFailures.WithLabelValues(string(streamType)).Inc()
				c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": verr.Error()})
				return
			}
			slog.Error("normalize upload", "stream_type", streamType, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to process upload"})
			return
		}

		if err := h.store.InsertSensorRecord(c.Request.Context(), record); err != nil {
			slog.Error("store sensor record", "stream_type", streamType, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "Failed to store " + string(streamType) + " data",
			})
			return
		}

		observability.UploadsStored.WithLabelValues(string(streamType)).Inc()
		observability.SamplesIngested.WithLabelValues(string(streamType)).Add(float64(len(req.Samples)))

		if h.archive != nil {
			key := storage.RawUploadKey(identity.UserID, streamType, record.ID)
			if err := h.archive.PutRawUpload(c.Request.Context(), key, body); err != nil {
				slog.Warn("archive raw upload", "key", key, "error", err)
			}
		}

		event := models.UploadEvent{
			RecordID:    record.ID,
			UserID:      record.UserID,
			StreamType:  streamType,
			StartTime:   record.StartTime,
			EndTime:     record.EndTime,
			SampleCount: len(req.Samples),
			CreatedAt:   record.CreatedAt,
		}
		if h.producer != nil {
			if err := h.producer.PublishUploadEvent(c.Request.Context(), string(streamType), event); err != nil {
				slog.Warn("publish upload event", "stream_type", streamType, "error", err)
			}
		}
		if h.hub != nil {
			h.hub.BroadcastEvent(&dto.WSEvent{
				Type:       "sensor_upload",
				StreamType: string(streamType),
				Data:       event,
			})
		}

		c.JSON(http.StatusOK, dto.UploadResponse{
			ID:      record.ID.String(),
			Status:  "success",
			Message: streamLabels[streamType] + " data uploaded successfully",
		})
	}
}

// ListHandler returns the GET handler for one stream type's raw records,
// newest first.
func ListHandler(h *TelemetryHandler, streamType models.StreamType) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := auth.FromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing user identity"})
			return
		}

		records, err := h.store.ListSensorRecords(c.Request.Context(), identity.UserID, streamType)
		if err != nil {
			slog.Error("list sensor records", "stream_type", streamType, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "Failed to retrieve " + string(streamType) + " data",
			})
			return
		}

		if records == nil {
			records = []models.SensorRecord{}
		}
		c.JSON(http.StatusOK, dto.ListResponse{
			Status: "success",
			Count:  len(records),
			Data:   records,
		})
	}
}
