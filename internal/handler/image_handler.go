package handler

import (
	"errors"
	"net/http"

	"github.com/CrownKira/recipe-app-api/internal/serializer"
	"github.com/CrownKira/recipe-app-api/pkg/database"
	"github.com/CrownKira/recipe-app-api/pkg/logger"
	"github.com/CrownKira/recipe-app-api/pkg/storage"
	"github.com/CrownKira/recipe-app-api/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UploadRecipeImage stores the multipart "image" file for one of the caller's
// recipes and replaces any previous image.
func UploadRecipeImage(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordRecipeOperation("upload_image")

	db := database.GetDB()
	recipe, err := findRecipe(c, db)
	if errors.Is(err, errNotFound) {
		log.Warn("Recipe not found", zap.String("recipe_id", c.Param("id")))
		return recipeNotFound(c)
	}
	if err != nil {
		return respondError(c, err)
	}

	file, err := c.FormFile("image")
	if err != nil {
		log.Warn("Image upload without a file", zap.Error(err))
		prometheus.RecordImageUpload("rejected")
		return respondError(c, serializer.NewValidationError("image", "No file was submitted."))
	}

	src, err := file.Open()
	if err != nil {
		prometheus.RecordImageUpload("failed")
		return respondError(c, err)
	}
	defer src.Close()

	store := storage.Get()
	rel, err := store.SaveRecipeImage(src, recipe.Title)
	switch {
	case errors.Is(err, storage.ErrNotImage), errors.Is(err, storage.ErrTooLarge):
		log.Warn("Rejected image upload", zap.String("filename", file.Filename), zap.Error(err))
		prometheus.RecordImageUpload("rejected")
		return respondError(c, serializer.NewValidationError("image", err.Error()))
	case err != nil:
		prometheus.RecordImageUpload("failed")
		return respondError(c, err)
	}

	previous := recipe.Image
	if err := db.Model(recipe).Update("image", rel).Error; err != nil {
		prometheus.RecordImageUpload("failed")
		if rmErr := store.Delete(rel); rmErr != nil {
			log.Warn("Failed to remove orphaned image", zap.String("image", rel), zap.Error(rmErr))
		}
		return respondError(c, err)
	}
	recipe.Image = rel

	if previous != "" && previous != rel {
		if err := store.Delete(previous); err != nil {
			log.Warn("Failed to remove replaced image", zap.String("image", previous), zap.Error(err))
		}
	}

	prometheus.RecordImageUpload("stored")
	log.Info("Recipe image stored", zap.Uint("recipe_id", recipe.ID), zap.String("image", rel))
	return c.JSON(http.StatusOK, serializer.NewRecipeImage(recipe, store))
}
