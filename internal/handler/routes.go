package handler

import (
	"github.com/CrownKira/recipe-app-api/internal/middleware"
	"github.com/CrownKira/recipe-app-api/internal/serializer"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes installs the request validator and every API route on e.
// Authentication is attached per route so unsupported methods still answer 405.
func RegisterRoutes(e *echo.Echo) {
	e.Validator = serializer.NewValidator()

	// Public routes - no authentication required
	e.GET("/health", HealthCheck)
	e.GET("/metrics", MetricsHandler)

	api := e.Group("/api")
	auth := middleware.AuthMiddleware

	// Account routes
	user := api.Group("/user")
	user.POST("/create", CreateUser)
	user.POST("/token", CreateToken)
	user.GET("/me", GetMe, auth)
	user.PUT("/me", ReplaceMe, auth)
	user.PATCH("/me", UpdateMe, auth)

	// Recipe routes - all require authentication
	recipe := api.Group("/recipe")
	recipe.GET("/tags", ListTags, auth)
	recipe.POST("/tags", CreateTag, auth)
	recipe.GET("/ingredients", ListIngredients, auth)
	recipe.POST("/ingredients", CreateIngredient, auth)

	recipe.GET("/recipes", ListRecipes, auth)
	recipe.POST("/recipes", CreateRecipe, auth)
	recipe.GET("/recipes/:id", GetRecipe, auth)
	recipe.PUT("/recipes/:id", UpdateRecipe, auth)
	recipe.PATCH("/recipes/:id", PatchRecipe, auth)
	recipe.DELETE("/recipes/:id", DeleteRecipe, auth)
	recipe.POST("/recipes/:id/upload-image", UploadRecipeImage, auth)
}
