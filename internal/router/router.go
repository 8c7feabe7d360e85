package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"tallyflow/internal/handler"
	"tallyflow/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	jwtSecret string,
	log *logrus.Logger,
	runH *handler.RunHandler,
	approvalH *handler.ApprovalHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.ApproverIdentity(jwtSecret))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Pipeline runs
	runs := v1.Group("/runs")
	runs.POST("", runH.Create)
	runs.GET("/:id", runH.Get)
	runs.GET("/:id/artifacts", runH.ListArtifacts)

	// Master-data approval queue
	approvals := v1.Group("/approvals")
	approvals.GET("", approvalH.List)
	approvals.POST("/:id/decide", approvalH.Decide)
	approvals.POST("/bulk", approvalH.BulkDecide)

	// Export registry
	v1.GET("/exports", runH.ListExports)

	return r
}
