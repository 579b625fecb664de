package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/clip-extract-go/internal/app"
	"github.com/yourusername/clip-extract-go/internal/domain"
)

// HistoryHandler exposes the download history
type HistoryHandler struct {
	service *app.DownloadService
	logger  *zap.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(service *app.DownloadService, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		service: service,
		logger:  logger,
	}
}

// GetDownload handles GET /api/v1/downloads/:id
func (h *HistoryHandler) GetDownload(c *gin.Context) {
	download, err := h.service.GetDownload(c.Param("id"))
	if errors.Is(err, domain.ErrDownloadNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "download not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to get download", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, download)
}

// ListDownloads handles GET /api/v1/downloads
func (h *HistoryHandler) ListDownloads(c *gin.Context) {
	filters := make(map[string]interface{})
	if status := c.Query("status"); status != "" {
		filters["status"] = status
	}
	if url := c.Query("url"); url != "" {
		filters["url"] = url
	}

	downloads, err := h.service.ListDownloads(filters)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if downloads == nil {
		downloads = []*domain.Download{}
	}

	c.JSON(http.StatusOK, gin.H{
		"downloads": downloads,
		"count":     len(downloads),
	})
}

// GetStats handles GET /api/v1/downloads/stats
func (h *HistoryHandler) GetStats(c *gin.Context) {
	stats, err := h.service.GetStats()
	if err != nil {
		h.logger.Error("Failed to get stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}
