package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yourusername/clip-extract-go/pkg/logger"
)

func newTestEngine(core *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	adapter := logger.NewSingleLoggerAdapter(core)

	r := gin.New()
	r.Use(Logger(adapter), Recovery(adapter), CORS())
	r.GET("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func TestCORS_Preflight(t *testing.T) {
	r := newTestEngine(zap.NewNop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ok", nil)
	req.Header.Set("Origin", "chrome-extension://abc")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestCORS_SimpleRequest(t *testing.T) {
	r := newTestEngine(zap.NewNop())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovery_ReturnsJSONError(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := newTestEngine(zap.New(core))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Internal server error"}`, w.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestLogger_WritesAccessLine(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := newTestEngine(zap.New(core))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok?x=1", nil))

	entries := logs.FilterMessage("HTTP request").All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "/ok", fields["path"])
		assert.Equal(t, "x=1", fields["query"])
		assert.Equal(t, int64(http.StatusOK), fields["status"])
	}
}
