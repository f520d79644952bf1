package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/pulse/internal/analytics"
	"github.com/your-org/pulse/internal/auth"
	"github.com/your-org/pulse/internal/models"
	"github.com/your-org/pulse/internal/storage"
	"github.com/your-org/pulse/pkg/dto"
)

// SleepHandler serves the sleep retrieval and trend endpoints. All documents
// it reads were written by the external analysis job.
type SleepHandler struct {
	store  storage.SleepStore
	trends *analytics.TrendAggregator

	// Now supplies the reference date for trend computation; tests override it.
	Now func() time.Time
}

func NewSleepHandler(store storage.SleepStore, trends *analytics.TrendAggregator) *SleepHandler {
	return &SleepHandler{store: store, trends: trends, Now: time.Now}
}

// GetSleepData returns the processed stage-level document for one night.
func (h *SleepHandler) GetSleepData(c *gin.Context) {
	identity, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing user identity"})
		return
	}

	night, ok := parseNight(c, c.Query("date"))
	if !ok {
		return
	}

	rec, err := h.store.GetSleepRecord(c.Request.Context(), identity.UserID, night, models.SleepKindStages)
	if err != nil {
		slog.Error("get sleep data", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to retrieve sleep data"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "No sleep data found for the specified date"})
		return
	}

	var data models.ProcessedSleepData
	if err := json.Unmarshal(rec.Data, &data); err != nil {
		slog.Error("parse processed sleep data", "night_date", rec.NightDate, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to parse processed sleep data"})
		return
	}

	c.JSON(http.StatusOK, dto.DataResponse{Status: "success", Data: data})
}

// GetSleepDataRange returns stage-level documents for an inclusive date range.
// Nights that fail to parse are skipped, not fatal.
func (h *SleepHandler) GetSleepDataRange(c *gin.Context) {
	identity, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing user identity"})
		return
	}

	from, ok := parseNightNamed(c, c.Query("start_date"), "start date")
	if !ok {
		return
	}
	to, ok := parseNightNamed(c, c.Query("end_date"), "end date")
	if !ok {
		return
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "End date must be equal to or after start date"})
		return
	}

	records, err := h.store.ListSleepRecords(c.Request.Context(), identity.UserID, from, to, models.SleepKindStages)
	if err != nil {
		slog.Error("list sleep data range", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to retrieve sleep data"})
		return
	}

	parsed := make([]models.ProcessedSleepData, 0, len(records))
	for _, rec := range records {
		var data models.ProcessedSleepData
		if err := json.Unmarshal(rec.Data, &data); err != nil {
			slog.Warn("skipping unparseable sleep data",
				"night_date", rec.NightDate.Format(models.NightDateFormat), "error", err)
			continue
		}
		parsed = append(parsed, data)
	}

	c.JSON(http.StatusOK, dto.ListResponse{Status: "success", Count: len(parsed), Data: parsed})
}

// GetSleepSummary returns the summary document for one night.
func (h *SleepHandler) GetSleepSummary(c *gin.Context) {
	identity, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing user identity"})
		return
	}

	night, ok := parseNight(c, c.Query("date"))
	if !ok {
		return
	}

	rec, err := h.store.GetSleepRecord(c.Request.Context(), identity.UserID, night, models.SleepKindSummary)
	if err != nil {
		slog.Error("get sleep summary", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to retrieve sleep summary"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "No sleep summary found for the specified date"})
		return
	}

	var summary models.SleepSummary
	if err := json.Unmarshal(rec.Data, &summary); err != nil {
		slog.Error("parse sleep summary", "night_date", rec.NightDate, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to parse sleep summary data"})
		return
	}

	c.JSON(http.StatusOK, dto.DataResponse{Status: "success", Data: summary})
}

// GetSleepTrends returns rolling statistics over the trailing 7 calendar days.
func (h *SleepHandler) GetSleepTrends(c *gin.Context) {
	identity, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing user identity"})
		return
	}

	today := h.Now().UTC().Truncate(24 * time.Hour)
	trends, err := h.trends.WeeklyTrends(c.Request.Context(), identity.UserID, today)
	if err != nil {
		slog.Error("compute weekly sleep trends", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Failed to retrieve sleep trends"})
		return
	}

	c.JSON(http.StatusOK, dto.DataResponse{Status: "success", Data: trends})
}

func parseNight(c *gin.Context, raw string) (time.Time, bool) {
	night, err := time.Parse(models.NightDateFormat, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid date format. Expected YYYY-MM-DD."})
		return time.Time{}, false
	}
	return night, true
}

func parseNightNamed(c *gin.Context, raw, name string) (time.Time, bool) {
	night, err := time.Parse(models.NightDateFormat, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid " + name + " format. Expected YYYY-MM-DD."})
		return time.Time{}, false
	}
	return night, true
}
