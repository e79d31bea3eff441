package console

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/banking-fraud-console/internal/console/handler"
	"github.com/banking-fraud-console/internal/console/middleware"
)

// setupRouter configures API routes and middleware for the console
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	sessionHandler *handler.SessionHandler,
	transactionHandler *handler.TransactionHandler,
	generateHandler *handler.GenerateHandler,
	dashboardHandler *handler.DashboardHandler,
	metricsHandler http.Handler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Operator session lifecycle and risk gate feed
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", sessionHandler.Create)
			sessions.POST("/:id/login", sessionHandler.Login)
			sessions.DELETE("/:id", sessionHandler.Delete)
			sessions.PUT("/:id/sender-account", sessionHandler.SetSenderAccount)
			sessions.GET("/:id/risk-status", sessionHandler.RiskStatus)
			sessions.POST("/:id/transactions", transactionHandler.Submit)
		}

		// Batch generation and dashboard proxy
		v1.POST("/generate", generateHandler.Generate)
		v1.GET("/dashboard/summary", dashboardHandler.Summary)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})

	// Prometheus exposition
	r.GET("/metrics", gin.WrapH(metricsHandler))
}
