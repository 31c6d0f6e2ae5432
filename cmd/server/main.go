package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fuelops/backend/internal/application/fuelreport"
	"github.com/fuelops/backend/internal/domain/fuel"
	"github.com/fuelops/backend/internal/infrastructure/cache"
	"github.com/fuelops/backend/internal/infrastructure/config"
	"github.com/fuelops/backend/internal/infrastructure/export"
	"github.com/fuelops/backend/internal/infrastructure/logger"
	"github.com/fuelops/backend/internal/infrastructure/metrics"
	"github.com/fuelops/backend/internal/infrastructure/persistence"
	"github.com/fuelops/backend/internal/interfaces/http/handler"
	"github.com/fuelops/backend/internal/interfaces/http/middleware"
	"github.com/fuelops/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting fuel report backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	policy, err := cfg.Fuel.Policy()
	if err != nil {
		log.Fatal("Invalid fuel configuration", zap.Error(err))
	}
	defaultSource, err := fuel.ParseUsageSource(cfg.Fuel.DefaultUsageSource)
	if err != nil {
		log.Fatal("Invalid fuel configuration", zap.Error(err))
	}

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.Driver == "sqlite" {
		// postgres schemas come from cmd/migrate
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	workspaces := cache.NewWorkspaceStore(cfg.Redis, cfg.Fuel.WorkspaceTTL, cache.WithLogger(log))
	defer func() {
		if err := workspaces.Close(); err != nil {
			log.Error("Error closing workspace store", zap.Error(err))
		}
	}()

	recorder := metrics.NewRecorder()

	service := fuelreport.NewService(
		persistence.NewGormCalibrationRepository(db.DB),
		persistence.NewGormRosterRepository(db.DB),
		persistence.NewGormStockSubmissionRepository(db.DB),
		workspaces,
		fuelreport.WithLogger(log),
		fuelreport.WithRecorder(recorder),
		fuelreport.WithExporter(export.NewXLSXExporter()),
		fuelreport.WithPolicy(policy),
		fuelreport.WithDefaultUsageSource(defaultSource),
		fuelreport.WithClearAfterSubmit(cfg.Fuel.ClearAfterSubmit),
	)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	// Middleware order matters:
	// RequestID, Recovery, Logger, Metrics, Security, CORS, BodyLimit
	engine.Use(logger.RequestID(log))
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(recorder.Middleware())
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, db)

	// Probes live outside API versioning
	engine.GET("/health", systemHandler.Health)
	engine.GET("/metrics", gin.WrapH(recorder.Handler()))

	fuelRoutes := router.FuelReportRoutes(handler.NewFuelReportHandler(service))
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(fuelRoutes).
		Register(router.SystemRoutes(systemHandler)).
		Setup()

	for _, route := range fuelRoutes.Routes() {
		log.Debug("Route registered", zap.String("method", route.Method), zap.String("path", "/api/v1"+route.Path))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
