package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"library-lending-backend/internal/shared/middleware"
	"library-lending-backend/pkg/container"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(c.Config.App.CORSOrigin),
		middleware.Metrics(),
	)

	router.GET("/health", healthCheckHandler(c))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		setupBookRoutes(v1, c)
		setupReaderRoutes(v1, c)
		setupLendingRoutes(v1, c)
		setupOverdueRoutes(v1, c)
		setupNotificationRoutes(v1, c)
		setupAuditRoutes(v1, c)
	}

	return router
}

// ========================================
// CATALOG
// ========================================

func setupBookRoutes(rg *gin.RouterGroup, c *container.Container) {
	books := rg.Group("/books")
	{
		books.POST("", c.BookHandler.CreateBook)
		books.GET("", c.BookHandler.ListBooks)
		books.GET("/:id", c.BookHandler.GetBook)
	}
}

func setupReaderRoutes(rg *gin.RouterGroup, c *container.Container) {
	readers := rg.Group("/readers")
	{
		readers.POST("", c.ReaderHandler.CreateReader)
		readers.GET("", c.ReaderHandler.ListReaders)
		readers.GET("/:id", c.ReaderHandler.GetReader)
	}
}

// ========================================
// LENDING LIFECYCLE
// ========================================

func setupLendingRoutes(rg *gin.RouterGroup, c *container.Container) {
	lendings := rg.Group("/lendings")
	{
		lendings.POST("", c.LendingHandler.Checkout)
		lendings.PUT("/return/:id", c.LendingHandler.ReturnBook)
		lendings.GET("", c.LendingHandler.ListLendings)
		lendings.GET("/reader/:readerId", c.LendingHandler.ListByReader)
		lendings.GET("/book/:bookId", c.LendingHandler.ListByBook)
		lendings.GET("/:id", c.LendingHandler.GetLending)
	}
}

func setupOverdueRoutes(rg *gin.RouterGroup, c *container.Container) {
	overdue := rg.Group("/overdue")
	{
		overdue.GET("", c.OverdueHandler.ListOverdue)
		overdue.GET("/export", c.OverdueHandler.ExportOverdue)
		overdue.GET("/:readerId", c.OverdueHandler.ListOverdueByReader)
	}
}

func setupNotificationRoutes(rg *gin.RouterGroup, c *container.Container) {
	rg.POST("/notifications/notify-overdue", c.OverdueHandler.NotifyOverdue)
}

// ========================================
// ADMIN
// ========================================

func setupAuditRoutes(rg *gin.RouterGroup, c *container.Container) {
	rg.GET("/audit-logs", middleware.AdminMiddleware(), c.AuditHandler.ListAuditLogs)
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
			"storage":   appCtx.Config.Storage.Driver,
		}

		// Check database (memory driver không có pool)
		dbStatus := "ok"
		if appCtx.Store == nil {
			if appCtx.DB == nil || appCtx.DB.Pool == nil {
				dbStatus = "disconnected"
			} else {
				ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
				defer cancel()

				if err := appCtx.DB.HealthCheck(ctx); err != nil {
					dbStatus = fmt.Sprintf("error: %v", err)
				}
			}
		}

		// Check cache
		cacheStatus := "ok"
		if appCtx.Cache == nil {
			cacheStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				cacheStatus = fmt.Sprintf("error: %v", err)
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"cache":    cacheStatus,
			"mailer":   appCtx.Mailer.State().String(),
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			health["status"] = "degraded"
			statusCode = http.StatusServiceUnavailable
		} else if cacheStatus != "ok" {
			health["status"] = "degraded"
		}

		c.JSON(statusCode, health)
	}
}
