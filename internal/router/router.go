package router

import (
	"github.com/gin-gonic/gin"

	"evidos/internal/handler"
	"evidos/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	allowedOrigins []string,
	systemH *handler.SystemHandler,
	documentH *handler.DocumentHandler,
	analysisH *handler.AnalysisHandler,
	evidenceH *handler.EvidenceHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	systems := v1.Group("/systems")
	systems.POST("", systemH.Create)
	systems.GET("", systemH.List)
	systems.GET("/:systemID", systemH.GetByID)
	systems.POST("/:systemID/analyze", analysisH.AnalyzeSystem)
	systems.GET("/:systemID/evidence", evidenceH.ListBySystem)
	systems.GET("/:systemID/evidence/export", evidenceH.Export)

	documents := systems.Group("/:systemID/documents")
	documents.POST("", documentH.Upload)
	documents.GET("", documentH.List)
	documents.GET("/:documentID", documentH.GetByID)
	documents.DELETE("/:documentID", documentH.Delete)
	documents.POST("/:documentID/analyze", analysisH.AnalyzeDocument)
	documents.POST("/:documentID/reprocess", analysisH.ReprocessDocument)
	documents.GET("/:documentID/analysis", analysisH.GetAnalysis)

	return r
}
