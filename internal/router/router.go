package router

import (
	"github.com/gin-gonic/gin"

	"parsegate/internal/handler"
	"parsegate/internal/middleware"
	"parsegate/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	allowedOrigins []string,
	authH *handler.AuthHandler,
	detectH *handler.DetectHandler,
	queueH *handler.QueueHandler,
	recordH *handler.RecordHandler,
	caseH *handler.CaseHandler,
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

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	// Document ingestion and ad-hoc detection
	protected.POST("/documents", detectH.Process)
	protected.POST("/detect", detectH.Detect)
	protected.GET("/documents/:id/records", recordH.ListByDocument)

	// Approval queue
	queue := protected.Group("/queue")
	queue.GET("", queueH.List)
	queue.GET("/stats", queueH.Stats)
	queue.POST("/batch-review", queueH.BatchReview)
	queue.GET("/:id", queueH.Get)
	queue.POST("/:id/review", queueH.Review)
	queue.POST("/:id/reprocess", queueH.Reprocess)
	queue.DELETE("/:id", queueH.Delete)

	// Detection audit log
	records := protected.Group("/records")
	records.GET("", recordH.List)
	records.GET("/stats", recordH.Stats)
	records.GET("/low-confidence", recordH.LowConfidence)
	records.GET("/export", recordH.ExportCSV)
	records.GET("/:id", recordH.Get)

	// Parse case catalog
	cases := protected.Group("/cases")
	cases.GET("", caseH.List)
	cases.GET("/:name", caseH.Get)
	cases.GET("/:name/summary", caseH.Summary)
	protected.GET("/detectors", caseH.Detectors)

	return r
}
