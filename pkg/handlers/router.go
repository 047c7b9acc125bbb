package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter wires all routes around the handler.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.RequestLogger())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Smart Scheduling Gateway",
			"version": "1.0.0",
		})
	})

	r.POST("/admin/login", h.Login)

	// Admin Endpoints
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	// Gateway Endpoints
	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.POST("/schedules/:id/optimize", h.SubmitRun)
		api.GET("/schedules/:id/runs", h.ListScheduleRuns)
		api.POST("/schedules/:id/runs/refresh", h.RefreshRuns)
		api.POST("/schedules/:id/runs/autoselect", h.AutoSelectRun)
		api.GET("/schedules/:id/coverage", h.GetScheduleCoverage)

		api.GET("/runs/:id", h.GetRun)
		api.GET("/runs/:id/solutions", h.GetSolutions)
		api.POST("/runs/:id/select", h.SelectRun)
		api.POST("/runs/:id/apply", h.ApplyRun)
		api.DELETE("/runs/:id", h.DeleteRun)

		api.GET("/dashboard/metrics", h.DashboardMetrics)
		api.GET("/usage", h.GetMyUsage)
	}

	return r
}
