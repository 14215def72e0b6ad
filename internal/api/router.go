package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roadsense/telemetry-hub/internal/handler"
	"github.com/roadsense/telemetry-hub/internal/middleware"
)

// SetupRouter wires the HTTP surface: batch ingestion, record CRUD and the
// live-update websocket endpoint.
func SetupRouter(recordHandler *handler.RecordHandler, wsHandler *handler.WSHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "telemetry hub is running",
		})
	})

	records := r.Group("/processed_agent_data")
	records.Use(middleware.RateLimit(600, time.Minute))
	{
		records.POST("/", recordHandler.CreateRecords)
		records.GET("/", recordHandler.ListRecords)
		records.GET("/:id", recordHandler.GetRecord)
		records.PUT("/:id", recordHandler.UpdateRecord)
		records.DELETE("/:id", recordHandler.DeleteRecord)
	}

	r.GET("/ws/", wsHandler.Subscribe)

	return r
}
