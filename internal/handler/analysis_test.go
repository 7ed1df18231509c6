package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"book-tracker/backend/internal/analysis"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVision struct {
	reply string
	err   error
}

func (s *stubVision) AnalyzeImage(context.Context, string, []byte) (string, error) {
	return s.reply, s.err
}

func setupAnalysisRouter(vision analysis.VisionClient) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAnalysisHandler(analysis.NewAnalyzer(vision), zerolog.Nop())
	r.POST("/api/book-analysis/analyze", h.Analyze)
	return r
}

func coverPayload() gin.H {
	return gin.H{"image_base64": base64.StdEncoding.EncodeToString([]byte{0xFF, 0xD8, 0xFF})}
}

func TestAnalyzeEndpointReturnsBookInfo(t *testing.T) {
	router := setupAnalysisRouter(&stubVision{reply: `{"title":"T","author":"A","category":"Novel"}`})

	w := doJSON(t, router, http.MethodPost, "/api/book-analysis/analyze", "", coverPayload())

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"title":"T","author":"A","category":"Novel"}`, w.Body.String())
}

func TestAnalyzeEndpointParseFailureIs422(t *testing.T) {
	router := setupAnalysisRouter(&stubVision{reply: "I could not read the cover."})

	w := doJSON(t, router, http.MethodPost, "/api/book-analysis/analyze", "", coverPayload())

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "failed to parse book info")
}

func TestAnalyzeEndpointUpstreamFailureIs500(t *testing.T) {
	router := setupAnalysisRouter(&stubVision{err: errors.New("inference timeout")})

	w := doJSON(t, router, http.MethodPost, "/api/book-analysis/analyze", "", coverPayload())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Error processing image")
}

func TestAnalyzeEndpointRejectsBadBase64(t *testing.T) {
	router := setupAnalysisRouter(&stubVision{})

	w := doJSON(t, router, http.MethodPost, "/api/book-analysis/analyze", "",
		gin.H{"image_base64": "%%%%"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeEndpointRequiresImage(t *testing.T) {
	router := setupAnalysisRouter(&stubVision{})

	w := doJSON(t, router, http.MethodPost, "/api/book-analysis/analyze", "", gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
