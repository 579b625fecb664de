package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/clip-extract-go/api/handlers"
	"github.com/yourusername/clip-extract-go/api/middleware"
	"github.com/yourusername/clip-extract-go/internal/app"
	"github.com/yourusername/clip-extract-go/pkg/logger"
)

// SetupRouter sets up the companion service routes
func SetupRouter(service *app.DownloadService, logAdapter *logger.LoggerAdapter) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.Logger(logAdapter))
	router.Use(middleware.Recovery(logAdapter))
	router.Use(middleware.CORS())

	healthHandler := handlers.NewHealthHandler()
	router.GET("/health", healthHandler.Health)

	// Endpoints called by the relay
	clipHandler := handlers.NewClipHandler(service, logAdapter.Service())
	router.POST("/download", clipHandler.Download)
	router.POST("/check-clip", clipHandler.CheckClip)

	v1 := router.Group("/api/v1")
	{
		historyHandler := handlers.NewHistoryHandler(service, logAdapter.Service())
		downloads := v1.Group("/downloads")
		{
			downloads.GET("", historyHandler.ListDownloads)
			downloads.GET("/stats", historyHandler.GetStats)
			downloads.GET("/:id", historyHandler.GetDownload)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
	})

	return router
}
