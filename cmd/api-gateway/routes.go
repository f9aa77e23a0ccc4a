package main

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-timetable-api/internal/middleware"
)

type routeDeps struct {
	tokens     internalmiddleware.TokenValidator
	projects   *handler.ProjectHandler
	timetables *handler.TimetableHandler
	exports    *handler.ExportHandler
	metrics    *handler.MetricsHandler
}

func registerRoutes(api *gin.RouterGroup, deps routeDeps) {
	// Signed tokens authorise downloads on their own.
	if deps.exports != nil {
		api.GET("/exports/download/:token", deps.exports.Download)
	}

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(deps.tokens))

	read := secured.Group("")
	read.Use(internalmiddleware.CanRead())
	write := secured.Group("")
	write.Use(internalmiddleware.CanWrite())

	read.GET("/projects", deps.projects.List)
	read.GET("/projects/:id", deps.projects.Get)
	read.GET("/templates/:kind", deps.projects.Template)
	write.POST("/projects", deps.projects.Create)
	write.PUT("/projects/:id", deps.projects.Update)
	write.POST("/projects/:id/import/:kind", deps.projects.Import)
	write.DELETE("/projects/:id", deps.projects.Delete)

	read.POST("/timetables/preview", deps.timetables.Preview)
	read.POST("/timetables/conflicts", deps.timetables.Conflicts)
	read.GET("/projects/:id/timetables", deps.timetables.ListByProject)
	read.GET("/timetables/:id", deps.timetables.Get)
	write.POST("/timetables/generate", deps.timetables.Generate)
	write.POST("/timetables/save", deps.timetables.Save)
	write.DELETE("/timetables/:id", deps.timetables.Delete)

	if deps.exports != nil {
		write.POST("/timetables/:id/exports", deps.exports.Create)
		read.GET("/exports/:id", deps.exports.Status)
	}

	read.GET("/metrics/summary", deps.metrics.Snapshot)
}
