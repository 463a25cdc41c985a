package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"coach-gateway/internal/middleware"
)

// NewRouter builds the gin engine serving GET / and POST /api/coach. Unknown
// routes and methods get the same JSON errors as the Lambda adapter.
func NewRouter(h *Handler, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(h.allowedOrigins))

	router.GET("/", h.handleHealth)
	router.POST("/api/coach", h.handleCoach)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Error: msgNotFound})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, errorResponse{Error: msgMethodNotAllowed})
	})
	return router
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, HealthMessage)
}

func (h *Handler) handleCoach(c *gin.Context) {
	status, payload := h.serveCoach(c.Request.Context(), c.GetHeader("Authorization"), func() ([]byte, error) {
		return io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	})
	c.JSON(status, payload)
}
