package api

import (
	httpSwagger "github.com/swaggo/http-swagger"

	_ "go-water-pipeline/docs" // registers the swagger document
	"go-water-pipeline/internal/api/handler"
	"go-water-pipeline/pkg/router"
)

func RegisterRoutes(r *router.Router, runs *handler.RunsHandler) {
	r.GET("/healthz", handler.Health)
	r.POST("/api/v1/runs", runs.CreateRun)
	r.GET("/api/v1/runs", runs.ListRuns)
	// More specific routes first
	r.GET("/api/v1/runs/latest", runs.GetLatestRun)
	r.GET("/api/v1/runs/*", runs.GetRun)
	r.GET("/swagger/*", httpSwagger.WrapHandler.ServeHTTP)
}
