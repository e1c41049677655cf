package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/CrownKira/recipe-app-api/internal/handler"
	"github.com/CrownKira/recipe-app-api/internal/middleware"
	"github.com/CrownKira/recipe-app-api/pkg/cache"
	"github.com/CrownKira/recipe-app-api/pkg/config"
	"github.com/CrownKira/recipe-app-api/pkg/database"
	"github.com/CrownKira/recipe-app-api/pkg/jwtutil"
	"github.com/CrownKira/recipe-app-api/pkg/logger"
	"github.com/CrownKira/recipe-app-api/pkg/storage"
	"github.com/CrownKira/recipe-app-api/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env, config file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()
	log.Info("Starting recipe service...", cfg.LogConfig()...)

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Initialize media storage
	if err := storage.Initialize(&cfg.Media); err != nil {
		log.Fatal("Failed to initialize media storage", zap.Error(err))
	}
	log.Info("Media storage initialized", zap.String("root", cfg.Media.Root))

	// Initialize the optional list cache; the service runs without it
	if err := cache.Initialize(context.Background(), &cfg.Redis); err != nil {
		log.Warn("Redis unavailable, caching disabled", zap.Error(err))
	} else if cache.Enabled() {
		log.Info("Redis cache connected", zap.String("addr", cfg.Redis.Addr))
	}
	defer cache.Close()

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	handler.ServiceName = cfg.ServiceName
	log.Info("Prometheus metrics initialized")

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	// Apply global middleware - order matters
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.BodyLimit(strconv.FormatInt(cfg.Media.MaxUploadSize+1<<20, 10)))
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Uploaded media
	e.Static(cfg.Media.URL, cfg.Media.Root)

	handler.RegisterRoutes(e)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
	log.Info("Server stopped")
}
