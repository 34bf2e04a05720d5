package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"viralcut/internal/response"
	"viralcut/internal/service"
	"viralcut/log"
	apperrors "viralcut/pkg/errors"
)

func buildJobRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	log.Logger = zap.NewNop()

	router := gin.New()
	h := Handler{Service: &service.Service{}}
	router.POST("/api/job", h.CreateJob)
	router.GET("/api/job/:jobId/clip/:segmentNumber", h.DownloadClip)
	return router
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateJobRejectsNonLocalUrl(t *testing.T) {
	router := buildJobRouter()

	body, _ := json.Marshal(map[string]string{"url": "https://example.com/video.mp4"})
	req, _ := http.NewRequest("POST", "/api/job", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, int32(apperrors.CodeInvalidParams), resp.Error)
}

func TestCreateJobRejectsMissingFile(t *testing.T) {
	router := buildJobRouter()

	body, _ := json.Marshal(map[string]string{"url": "local:/no/such/file.mp4"})
	req, _ := http.NewRequest("POST", "/api/job", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, int32(apperrors.CodeUnreadableMedia), resp.Error)
	assert.Contains(t, resp.Msg, "Unreadable media")
}

func TestCreateJobRejectsMalformedBody(t *testing.T) {
	router := buildJobRouter()

	req, _ := http.NewRequest("POST", "/api/job", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, int32(apperrors.CodeInvalidParams), resp.Error)
}

func TestDownloadClipRejectsBadSegmentNumber(t *testing.T) {
	router := buildJobRouter()

	req, _ := http.NewRequest("GET", "/api/job/job-1/clip/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, int32(apperrors.CodeInvalidParams), resp.Error)
}
