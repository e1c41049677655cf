package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/CrownKira/recipe-app-api/internal/model"
	"github.com/CrownKira/recipe-app-api/pkg/database"
	"github.com/CrownKira/recipe-app-api/pkg/jwtutil"
	"github.com/CrownKira/recipe-app-api/pkg/logger"
	"github.com/CrownKira/recipe-app-api/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Context keys set by AuthMiddleware
const (
	UserIDKey = "user_id"
	UserKey   = "user"
)

// AuthMiddleware validates the bearer token and loads the active user it names
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication credentials were not provided."})
		}

		// Check if it's a Bearer token
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			prometheus.RecordAuthError("invalid_auth_format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Warn("Invalid JWT token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Deleted or deactivated users are rejected even with a valid token
		var user model.User
		err = database.GetDB().First(&user, claims.UserID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !user.IsActive) {
			log.Warn("Token names an unknown or inactive user", zap.Uint("user_id", claims.UserID))
			prometheus.RecordAuthError("inactive_user")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "User inactive or deleted."})
		}
		if err != nil {
			log.Error("Failed to load authenticated user", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to authenticate request"})
		}

		// Store user info in context for later use
		c.Set(UserIDKey, user.ID)
		c.Set(UserKey, &user)
		logger.Attach(c, log.With(zap.Uint("user_id", user.ID)))

		return next(c)
	}
}

// CurrentUser returns the user loaded by AuthMiddleware
func CurrentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(UserKey).(*model.User)
	return user, ok
}

// GetUserIDFromContext retrieves the authenticated user's ID
// Returns 0, false if the request was not authenticated
func GetUserIDFromContext(c echo.Context) (uint, bool) {
	userID, ok := c.Get(UserIDKey).(uint)
	return userID, ok
}
