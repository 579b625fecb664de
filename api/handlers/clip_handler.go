package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/clip-extract-go/internal/app"
	"github.com/yourusername/clip-extract-go/internal/domain"
)

// ClipHandler serves the download and inspection endpoints
type ClipHandler struct {
	service *app.DownloadService
	logger  *zap.Logger
}

// NewClipHandler creates a new clip handler
func NewClipHandler(service *app.DownloadService, logger *zap.Logger) *ClipHandler {
	return &ClipHandler{
		service: service,
		logger:  logger,
	}
}

// CheckClipRequest is the body of POST /check-clip
type CheckClipRequest struct {
	URL string `json:"url"`
}

func failure(c *gin.Context, status int, err error) {
	c.JSON(status, domain.DownloadResult{Success: false, Error: err.Error()})
}

// Download handles POST /download
func (h *ClipHandler) Download(c *gin.Context) {
	var req domain.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, app.ErrNoURL)
		return
	}

	h.logger.Info("Received download request", zap.String("url", req.URL), zap.String("title", req.Title))

	// yt-dlp keeps running if the caller goes away; the history still gets the outcome
	ctx := context.WithoutCancel(c.Request.Context())

	result, err := h.service.Download(ctx, req)
	switch {
	case errors.Is(err, app.ErrNoURL):
		failure(c, http.StatusBadRequest, err)
	case err != nil && result != nil:
		c.JSON(http.StatusInternalServerError, result)
	case err != nil:
		failure(c, http.StatusInternalServerError, err)
	default:
		c.JSON(http.StatusOK, result)
	}
}

// CheckClip handles POST /check-clip
func (h *ClipHandler) CheckClip(c *gin.Context) {
	var req CheckClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, app.ErrNoURL)
		return
	}

	meta, err := h.service.Inspect(c.Request.Context(), req.URL)
	if errors.Is(err, app.ErrNoURL) {
		failure(c, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		h.logger.Warn("Clip inspection failed", zap.String("url", req.URL), zap.Error(err))
		failure(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, meta)
}
