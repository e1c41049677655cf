package handler

import (
	"errors"
	"net/http"

	"github.com/CrownKira/recipe-app-api/internal/account"
	"github.com/CrownKira/recipe-app-api/internal/middleware"
	"github.com/CrownKira/recipe-app-api/internal/serializer"
	"github.com/CrownKira/recipe-app-api/pkg/database"
	"github.com/CrownKira/recipe-app-api/pkg/jwtutil"
	"github.com/CrownKira/recipe-app-api/pkg/logger"
	"github.com/CrownKira/recipe-app-api/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CreateUser handles signup
func CreateUser(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.UserCreateCounter.Inc()

	var req serializer.CreateUserRequest
	if err := bindRequest(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := account.CreateUser(database.GetDB(), req.Email, req.Password, req.Name)
	switch {
	case errors.Is(err, account.ErrEmailTaken):
		log.Warn("User already exists", zap.String("email", req.Email))
		return respondError(c, serializer.NewValidationError("email", "user with this email already exists."))
	case errors.Is(err, account.ErrEmailRequired):
		return respondError(c, serializer.NewValidationError("email", "This field is required."))
	case err != nil:
		return respondError(c, err)
	}

	log.Info("User created", zap.Uint("user_id", user.ID), zap.String("email", user.Email))
	return c.JSON(http.StatusCreated, serializer.NewUser(user))
}

// CreateToken exchanges an email and password for a bearer token
func CreateToken(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.TokenCounter.Inc()

	var req serializer.TokenRequest
	if err := bindRequest(c, &req); err != nil {
		return respondError(c, err)
	}

	db := database.GetDB()
	user, err := account.Authenticate(db, req.Email, req.Password)
	if errors.Is(err, account.ErrInvalidCredentials) {
		log.Warn("Invalid credentials", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_credentials")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Unable to authenticate with provided credentials"})
	}
	if err != nil {
		return respondError(c, err)
	}

	token, err := jwtutil.GenerateToken(user.Email, user.ID)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	if err := account.TouchLastLogin(db, user); err != nil {
		log.Warn("Failed to record last login", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	log.Info("Token issued", zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}

// GetMe returns the authenticated user's profile
func GetMe(c echo.Context) error {
	user, _ := middleware.CurrentUser(c)
	return c.JSON(http.StatusOK, serializer.NewUser(user))
}

// UpdateMe applies a partial profile update (PATCH)
func UpdateMe(c echo.Context) error {
	var req serializer.UpdateUserRequest
	if err := bindRequest(c, &req); err != nil {
		return respondError(c, err)
	}
	return saveProfile(c, req)
}

// ReplaceMe applies a full profile update (PUT)
func ReplaceMe(c echo.Context) error {
	var req serializer.ReplaceUserRequest
	if err := bindRequest(c, &req); err != nil {
		return respondError(c, err)
	}
	return saveProfile(c, req.Partial())
}

func saveProfile(c echo.Context, req serializer.UpdateUserRequest) error {
	log := logger.FromContext(c)
	user, _ := middleware.CurrentUser(c)

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Password != nil {
		if err := account.SetPassword(user, *req.Password); err != nil {
			return respondError(c, err)
		}
	}

	if err := database.GetDB().Model(user).Select("name", "password").Updates(user).Error; err != nil {
		return respondError(c, err)
	}

	log.Info("Profile updated",
		zap.Bool("name_changed", req.Name != nil),
		zap.Bool("password_changed", req.Password != nil))
	return c.JSON(http.StatusOK, serializer.NewUser(user))
}
