package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nutrilog/nutrilog/internal/config"
)

// New builds the HTTP router. Everything under /api/v1 requires an
// authenticated caller.
func New(cfg *config.Config, h *Handler) *gin.Engine {
	r := gin.Default()
	r.Use(RequestID())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(Auth(cfg.Auth.JWTSecret))
	{
		api.GET("/goals/current", h.GetCurrentGoal)
		api.GET("/goals", h.GetGoalHistory)
		api.POST("/goals", h.CreateGoal)
		api.PATCH("/goals/:id", h.UpdateGoal)
		api.DELETE("/goals/:id", h.DeleteGoal)

		api.GET("/summary/daily", h.GetDailySummary)
		api.GET("/summary/weekly", h.GetWeeklySummary)

		api.POST("/foods", h.CreateFood)
		api.GET("/foods/barcode/:barcode", h.GetFoodByBarcode)
		api.POST("/foods/:id/serving-units", h.AddServingUnit)

		api.POST("/logs", h.LogFood)
	}

	return r
}
