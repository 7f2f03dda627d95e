package handlers

import (
	"dispatch_crm_go/middleware"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the JSON API. Expensive endpoints get their own limiters.
func RegisterRoutes(e *echo.Echo, limits *middleware.Limiters) {
	e.GET("/health", HealthHandler)

	api := e.Group("/api")
	api.Use(limits.API.Middleware())

	leads := api.Group("/leads")
	{
		leads.GET("", ListLeadsHandler)
		leads.POST("", CreateLeadHandler)
		leads.DELETE("", DeleteLeadsHandler)
		leads.GET("/next", NextLeadHandler)
		leads.GET("/sources", LeadSourcesHandler)
		leads.GET("/export", ExportLeadsHandler)
		leads.GET("/import/template", LeadImportTemplateHandler)
		leads.POST("/import", ImportLeadsHandler, limits.Import.Middleware())
		leads.DELETE("/source/:source", DeleteLeadSourceHandler)
		leads.GET("/:id", GetLeadHandler)
		leads.PATCH("/:id", UpdateLeadHandler)
		leads.DELETE("/:id", DeleteLeadHandler)
		leads.PUT("/:id/status", UpdateLeadStatusHandler)
		leads.POST("/:id/notes", AddLeadNoteHandler)
	}

	calls := api.Group("/calls")
	{
		calls.GET("", ListCallsHandler)
		calls.POST("", LogCallHandler)
		calls.POST("/sync", SyncCallsHandler, limits.Sync.Middleware())
		calls.POST("/import", ImportCallReportHandler, limits.Import.Middleware())
		calls.GET("/dial", DialHandler)
	}
	api.GET("/softphone", SoftphoneHandler)

	pipeline := api.Group("/pipeline")
	{
		pipeline.GET("", GetPipelineHandler)
		pipeline.POST("", CreateOpportunityHandler)
		pipeline.PATCH("/:id", UpdateOpportunityHandler)
		pipeline.PUT("/:id/stage", UpdateOpportunityStageHandler)
		pipeline.DELETE("/:id", DeleteOpportunityHandler)
	}

	api.GET("/stats", StatsHandler)

	api.GET("/drivers", ListDriversHandler)
	api.POST("/drivers", CreateDriverHandler)
	api.GET("/assets", ListAssetsHandler)
	api.POST("/assets", CreateAssetHandler)
	api.PUT("/assets/:id/status", UpdateAssetStatusHandler)
	api.GET("/loads", ListLoadsHandler)
	api.POST("/loads", CreateLoadHandler)
	api.PUT("/loads/:id/status", UpdateLoadStatusHandler)
	api.GET("/loads/:id/documents", ListLoadDocumentsHandler)
	api.POST("/loads/:id/rate-confirmation", RateConfirmationHandler, limits.Documents.Middleware())
	api.GET("/trips", ListTripsHandler)
	api.POST("/trips", CreateTripHandler)
	api.GET("/trips/:id/stops", ListStopsHandler)
	api.POST("/trips/:id/stops", CreateStopHandler)
}
