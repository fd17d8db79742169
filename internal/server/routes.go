package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/velora/medialog/internal/server/handlers"
)

// setupRoutes configures the server's own routes. Module routes are
// registered separately through the module registry.
func setupRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"service": "medialog",
			})
		})

		api.GET("/events/ws", func(c *gin.Context) {
			handlers.StreamEvents(c, systemEventBus)
		})
	}
}
