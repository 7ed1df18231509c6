package handler

import (
	"errors"
	"net/http"

	"book-tracker/backend/internal/analysis"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AnalysisHandler serves POST /book-analysis/analyze.
type AnalysisHandler struct {
	analyzer *analysis.Analyzer
	logger   zerolog.Logger
}

// NewAnalysisHandler creates an AnalysisHandler.
func NewAnalysisHandler(analyzer *analysis.Analyzer, logger zerolog.Logger) *AnalysisHandler {
	return &AnalysisHandler{analyzer: analyzer, logger: logger}
}

// AnalyzeRequest carries the cover photo, raw base64 or data-URL form.
type AnalyzeRequest struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
}

// Analyze extracts title, author and category from the cover. Parse
// failures answer 422 with the parse detail; upstream failures answer 500.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "image_base64 is required")
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), req.ImageBase64)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AnalysisHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, analysis.ErrInvalidImage) {
		abortDetail(c, http.StatusBadRequest, err.Error())
		return
	}

	var parseErr *analysis.ParseError
	if errors.As(err, &parseErr) {
		abortDetail(c, http.StatusUnprocessableEntity, parseErr.Error())
		return
	}

	h.logger.Error().Err(err).Msg("cover analysis failed")
	abortDetail(c, http.StatusInternalServerError, "Error processing image: "+err.Error())
}
