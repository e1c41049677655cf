package handler

import (
	"net/http"

	"github.com/CrownKira/recipe-app-api/pkg/database"
	"github.com/CrownKira/recipe-app-api/pkg/logger"
	"github.com/CrownKira/recipe-app-api/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ServiceName is reported by the health endpoint
var ServiceName = "recipe-app-api"

// HealthCheck handles the health check endpoint
func HealthCheck(c echo.Context) error {
	sqlDB, err := database.GetDB().DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request().Context())
	}
	if err != nil {
		logger.FromContext(c).Error("Health check failed: database unreachable", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"status":  "unhealthy",
			"service": ServiceName,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":  "healthy",
		"service": ServiceName,
	})
}

// MetricsHandler exposes the prometheus registry
func MetricsHandler(c echo.Context) error {
	prometheus.GetPrometheusHandler().ServeHTTP(c.Response(), c.Request())
	return nil
}
