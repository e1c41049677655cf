package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/CrownKira/recipe-app-api/internal/middleware"
	"github.com/CrownKira/recipe-app-api/internal/serializer"
	"github.com/CrownKira/recipe-app-api/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var (
	errInvalidRequest = errors.New("invalid request")
	errNotFound       = errors.New("not found")
)

// bindRequest decodes the body into req and runs the registered validator.
// Fields of the wrong JSON type are reported per field; a body that is not
// a JSON object is an invalid request.
func bindRequest(c echo.Context, req interface{}) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		logger.FromContext(c).Warn("Failed to read request body", zap.Error(err))
		return errInvalidRequest
	}
	c.Request().Body = io.NopCloser(bytes.NewReader(body))

	if err := c.Bind(req); err != nil {
		if verr := serializer.FieldTypeErrors(body, req); verr != nil {
			return verr
		}
		logger.FromContext(c).Warn("Invalid request data", zap.Error(err))
		return errInvalidRequest
	}
	return c.Validate(req)
}

// respondError maps an error to the JSON error body the API uses.
func respondError(c echo.Context, err error) error {
	var verr *serializer.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, errInvalidRequest):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	default:
		logger.FromContext(c).Error("Request failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}

// currentUserID returns the id set by the auth middleware. Routes using it
// are always registered behind that middleware.
func currentUserID(c echo.Context) uint {
	id, _ := middleware.GetUserIDFromContext(c)
	return id
}

// pathID parses the :id route parameter. Anything that is not a positive
// integer cannot name a row, so callers treat it as not found.
func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errNotFound
	}
	return uint(id), nil
}
