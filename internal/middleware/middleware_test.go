package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/CrownKira/recipe-app-api/internal/account"
	"github.com/CrownKira/recipe-app-api/pkg/config"
	"github.com/CrownKira/recipe-app-api/pkg/database"
	"github.com/CrownKira/recipe-app-api/pkg/jwtutil"
	"github.com/CrownKira/recipe-app-api/pkg/logger"

	"github.com/labstack/echo/v4"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	conn, err := database.Open(&config.DBConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.Migrate(conn); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	database.SetDB(conn)
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-secret", ExpirationHours: 1})
}

func newProtectedServer() *echo.Echo {
	e := echo.New()
	e.Use(RequestIDMiddleware)
	e.GET("/me", func(c echo.Context) error {
		user, ok := CurrentUser(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		id, _ := GetUserIDFromContext(c)
		if id != user.ID {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.String(http.StatusOK, user.Email)
	}, AuthMiddleware)
	return e
}

func doGet(e *echo.Echo, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	setupTestDB(t)
	user, err := account.CreateUser(database.GetDB(), "test@example.com", "testpass", "Test")
	if err != nil {
		t.Fatal(err)
	}
	token, err := jwtutil.GenerateToken(user.Email, user.ID)
	if err != nil {
		t.Fatal(err)
	}

	rec := doGet(newProtectedServer(), "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "test@example.com" {
		t.Errorf("Expected the authenticated user's email, got %q", rec.Body.String())
	}
	if rec.Header().Get(RequestIDKey) == "" {
		t.Error("Expected a request id header")
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	setupTestDB(t)
	inactive, err := account.CreateUser(database.GetDB(), "inactive@example.com", "testpass", "Gone")
	if err != nil {
		t.Fatal(err)
	}
	database.GetDB().Model(inactive).Update("is_active", false)
	inactiveToken, _ := jwtutil.GenerateToken(inactive.Email, inactive.ID)
	unknownToken, _ := jwtutil.GenerateToken("ghost@example.com", 999)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Token abc"},
		{"garbage token", "Bearer abc.def.ghi"},
		{"inactive user", "Bearer " + inactiveToken},
		{"unknown user", "Bearer " + unknownToken},
	}

	e := newProtectedServer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := doGet(e, tt.header); rec.Code != http.StatusUnauthorized {
				t.Errorf("Expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestRequestIDMiddleware_ReusesIncomingID(t *testing.T) {
	e := echo.New()
	e.Use(RequestIDMiddleware)
	e.GET("/", func(c echo.Context) error {
		if logger.FromContext(c) == nil {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.String(http.StatusOK, c.Get("request_id").(string))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDKey, "abc-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Body.String() != "abc-123" || rec.Header().Get(RequestIDKey) != "abc-123" {
		t.Errorf("Expected request id abc-123, got body %q header %q", rec.Body.String(), rec.Header().Get(RequestIDKey))
	}
}
