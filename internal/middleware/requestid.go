package middleware

import (
	"github.com/CrownKira/recipe-app-api/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestIDKey is both the header name and the echo context key
const RequestIDKey = "X-Request-ID"

// RequestIDMiddleware adds a unique request ID to each request, reusing one
// supplied by the caller
func RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get(RequestIDKey)
		if requestID == "" {
			requestID = uuid.New().String()
			c.Request().Header.Set(RequestIDKey, requestID)
		}
		c.Response().Header().Set(RequestIDKey, requestID)
		c.Set("request_id", requestID)

		// Add request ID to logger context
		logger.Attach(c, logger.GetLogger().With(zap.String("request_id", requestID)))

		return next(c)
	}
}
