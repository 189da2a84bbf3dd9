package api

import (
	httpSwagger "github.com/swaggo/http-swagger"

	_ "rosterforge/docs"
	"rosterforge/internal/api/handler"
	"rosterforge/pkg/router"
)

func RegisterRoutes(r *router.Router, h *handler.Handler) {
	r.GET("/healthz", h.Healthz)

	r.POST("/generate-individuals", h.GenerateIndividuals)
	r.POST("/generate-groups", h.GenerateGroups)
	r.POST("/generate-mixed", h.GenerateMixed)
	r.POST("/generate", h.GenerateLegacy)

	r.GET("/tasks", h.ListTasks)
	// More specific routes first
	r.POST("/tasks/*/cancel", h.CancelTask)
	r.GET("/tasks/*/watch", h.WatchTask)
	// Generic task route last
	r.GET("/tasks/*", h.GetTask)

	r.GET("/download-all", h.DownloadAll)

	r.GET("/login", h.Login)
	r.GET("/auth/callback", h.AuthCallback)

	r.GET("/swagger/*", router.HandlerFunc(httpSwagger.WrapHandler))
}
