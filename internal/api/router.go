package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the engine with logging and panic recovery.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	SetupRoutes(r, h)
	return r
}

func SetupRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		tasks := api.Group("/tasks")
		{
			tasks.GET("", h.ListTasks)
			tasks.POST("", h.CreateTask)
			tasks.PUT("/:id", h.UpdateTask)
			tasks.DELETE("/:id", h.DeleteTask)
			tasks.PUT("/:id/checked", h.SetChecked)
			tasks.PUT("/:id/days", h.SetActiveDays)
			tasks.GET("/:id/schedule", h.GetSchedule)
		}

		presets := api.Group("/presets")
		{
			presets.GET("", h.ListPresets)
			presets.PUT("/:name", h.ApplyPreset)
			presets.DELETE("", h.ClearPresets)
		}

		api.GET("/settings", h.GetSettings)
		api.PUT("/settings", h.UpdateSettings)
		api.PUT("/session/credentials", h.SetSessionCredentials)

		api.GET("/sync/tasks", h.ExportTasks)
		api.PUT("/sync/tasks", h.ImportTasks)

		api.POST("/check", h.RunCheck)
	}
}
