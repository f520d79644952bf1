package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/pulse/internal/auth"
	"github.com/your-org/pulse/internal/models"
	"github.com/your-org/pulse/internal/storage"
)

func newTelemetryRouter(store *storage.MemoryStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(auth.IdentityMiddleware())

	h := NewTelemetryHandler(store, nil, nil, nil)
	r.POST("/upload/heart_rate", UploadHandler[models.HeartRateSample](h, models.StreamHeartRate))
	r.POST("/upload/acceleration", UploadHandler[models.AccelerationSample](h, models.StreamAcceleration))
	r.GET("/heart_rate_data", ListHandler(h, models.StreamHeartRate))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string, user uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != uuid.Nil {
		req.Header.Set("X-User-ID", user.String())
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const heartRateBody = `{
	"data_type": "heart_rate",
	"device_info": {"device_type": "watch", "model": "w1", "os_version": "1.0"},
	"sampling_rate_hz": 1,
	"start_time": "2024-03-01T10:00:00Z",
	"end_time": "2024-03-01T10:00:00Z",
	"samples": [
		{"timestamp": "2024-03-01T10:00:00Z", "heart_rate": 62},
		{"timestamp": "2024-03-01T10:00:01Z", "heart_rate": 64}
	]
}`

func TestUploadStoresRecordAndRespondsWithID(t *testing.T) {
	store := storage.NewMemoryStore()
	r := newTelemetryRouter(store)
	user := uuid.New()

	w := doJSON(t, r, http.MethodPost, "/upload/heart_rate", heartRateBody, user)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "Heart rate data uploaded successfully", resp.Message)

	recID, err := uuid.Parse(resp.ID)
	require.NoError(t, err)

	stored, err := store.ListSensorRecords(context.Background(), user, models.StreamHeartRate)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, recID, stored[0].ID)
	assert.Equal(t, user, stored[0].UserID)
	// End time is derived from the last sample when the explicit end equals the start.
	assert.Equal(t, "2024-03-01T10:00:01Z", stored[0].EndTime.UTC().Format("2006-01-02T15:04:05Z07:00"))
}

func TestUploadRejectsMismatchedDataType(t *testing.T) {
	r := newTelemetryRouter(storage.NewMemoryStore())

	w := doJSON(t, r, http.MethodPost, "/upload/acceleration", heartRateBody, uuid.New())
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid data type. Expected 'acceleration'.")
}

func TestUploadRejectsMissingStartTime(t *testing.T) {
	store := storage.NewMemoryStore()
	r := newTelemetryRouter(store)
	user := uuid.New()

	body := `{
		"data_type": "heart_rate",
		"samples": [{"timestamp": "2024-03-01T10:00:00Z", "heart_rate": 62}]
	}`
	w := doJSON(t, r, http.MethodPost, "/upload/heart_rate", body, user)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "start_time")

	stored, err := store.ListSensorRecords(context.Background(), user, models.StreamHeartRate)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestUploadRejectsMalformedBody(t *testing.T) {
	r := newTelemetryRouter(storage.NewMemoryStore())

	w := doJSON(t, r, http.MethodPost, "/upload/heart_rate", `{"data_type": `, uuid.New())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadRequiresIdentity(t *testing.T) {
	r := newTelemetryRouter(storage.NewMemoryStore())

	w := doJSON(t, r, http.MethodPost, "/upload/heart_rate", heartRateBody, uuid.Nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUploadRejectsUnparseableUserID(t *testing.T) {
	r := newTelemetryRouter(storage.NewMemoryStore())

	req := httptest.NewRequest(http.MethodPost, "/upload/heart_rate", strings.NewReader(heartRateBody))
	req.Header.Set("X-User-ID", "not-a-uuid")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListReturnsOwnRecordsOnly(t *testing.T) {
	store := storage.NewMemoryStore()
	r := newTelemetryRouter(store)
	user, other := uuid.New(), uuid.New()

	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/upload/heart_rate", heartRateBody, user).Code)
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/upload/heart_rate", heartRateBody, other).Code)

	w := doJSON(t, r, http.MethodGet, "/heart_rate_data", "", user)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string                `json:"status"`
		Count  int                   `json:"count"`
		Data   []models.SensorRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, user, resp.Data[0].UserID)
}

func TestListEmptyIsSuccessWithEmptyArray(t *testing.T) {
	r := newTelemetryRouter(storage.NewMemoryStore())

	w := doJSON(t, r, http.MethodGet, "/heart_rate_data", "", uuid.New())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":0`)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}
