package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires middleware and routes onto a fresh gin engine
func NewRouter(h *ScheduleHandler, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Logger(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"department": h.orchestrator.Department(),
			"time":       time.Now().UTC().Format(time.RFC3339),
		})
	})

	v1 := r.Group("/api/v1")
	{
		schedule := v1.Group("/schedule")
		schedule.GET("", h.List)
		schedule.GET("/export", h.Export)
		schedule.POST("/generate", h.Generate)
		schedule.POST("/edit", h.Edit)
		schedule.POST("/commit", h.Commit)

		v1.GET("/queue", h.Queue)
		v1.GET("/departments/counts", h.Counts)
		v1.GET("/events", h.Events)

		orders := v1.Group("/orders")
		orders.POST("/:id/progress", h.Progress)
		orders.GET("/:id/history", h.History)
		orders.GET("/:id/events", h.OrderEvents)
	}

	return r
}
