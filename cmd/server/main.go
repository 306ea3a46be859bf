package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"case_flow_app_go/config"
	"case_flow_app_go/db"
	"case_flow_app_go/handlers"
	"case_flow_app_go/logging"
	"case_flow_app_go/middleware"
	"case_flow_app_go/models"
	"case_flow_app_go/services"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := logging.Init(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Sync()

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(models.All()...); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	providers := services.NewProviders(cfg)

	analyzeLimiter := middleware.NewAnalyzeRateLimiter()
	defer analyzeLimiter.Stop()
	outboundLimiter := middleware.NewOutboundRateLimiter()
	defer outboundLimiter.Stop()

	e := newServer(cfg, providers, analyzeLimiter, outboundLimiter)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.ServerPort), zap.String("environment", cfg.Environment))
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()

	// In-flight analyses keep running until the shutdown deadline
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
	logger.Info("Server stopped")
}

// newServer builds the echo instance with middleware and every API route
func newServer(cfg *config.Config, providers *services.Providers, analyzeLimiter, outboundLimiter *middleware.RateLimiter) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))

	// Make config and outbound providers available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(handlers.ConfigKey, cfg)
			c.Set(handlers.ProvidersKey, providers)
			return next(c)
		}
	})

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")

	cases := api.Group("/cases")
	{
		cases.GET("", handlers.ListCasesHandler)
		cases.GET("/:id", handlers.GetCaseHandler)
		cases.PATCH("/:id", handlers.UpdateCaseHandler)

		cases.POST("/:id/analyze", handlers.AnalyzeCaseHandler, analyzeLimiter.Middleware())
		cases.GET("/:id/analyze", handlers.ListCaseAnalysesHandler)

		cases.GET("/:id/tasks", handlers.ListCaseTasksHandler)
		cases.POST("/:id/tasks", handlers.CreateCaseTaskHandler)
		cases.GET("/:id/tasks/export", handlers.ExportCaseTasksHandler)
		cases.PATCH("/:id/tasks/:taskId", handlers.UpdateCaseTaskHandler)
		cases.DELETE("/:id/tasks/:taskId", handlers.DeleteCaseTaskHandler)

		cases.POST("/:id/email", handlers.SendCaseEmailHandler, outboundLimiter.Middleware())
		cases.POST("/:id/call", handlers.MakeCaseCallHandler, outboundLimiter.Middleware())
	}

	api.GET("/actions", handlers.ListActionsHandler)
	api.PATCH("/actions/:id", handlers.UpdateActionHandler)

	api.GET("/communications", handlers.ListCommunicationsHandler)
	api.GET("/files/:id/download", handlers.DownloadFileHandler)

	dashboard := api.Group("/dashboard")
	{
		dashboard.GET("/stats", handlers.DashboardStatsHandler)
		dashboard.GET("/recent-cases", handlers.RecentCasesHandler)
		dashboard.GET("/pending-actions", handlers.PendingActionsHandler)
	}

	return e
}
