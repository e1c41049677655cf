package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/CrownKira/recipe-app-api/internal/model"
	"github.com/CrownKira/recipe-app-api/internal/serializer"
	"github.com/CrownKira/recipe-app-api/pkg/database"
	"github.com/CrownKira/recipe-app-api/pkg/logger"
	"github.com/CrownKira/recipe-app-api/pkg/storage"
	"github.com/CrownKira/recipe-app-api/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func recipeNotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": "Recipe not found"})
}

// withRelations preloads tags and ingredients in id order
func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

// findRecipe loads one of the caller's recipes. Another user's recipe is
// reported exactly like a missing one.
func findRecipe(c echo.Context, db *gorm.DB) (*model.Recipe, error) {
	id, err := pathID(c)
	if err != nil {
		return nil, err
	}

	var recipe model.Recipe
	err = db.Scopes(model.OwnedBy(currentUserID(c)), withRelations).First(&recipe, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// ListRecipes returns the caller's recipes, newest first. The optional tags and
// ingredients query parameters are comma separated id lists: a recipe matches
// a list when it has any of its ids, and must match every list given.
func ListRecipes(c echo.Context) error {
	log := logger.FromContext(c)
	userID := currentUserID(c)
	prometheus.RecordRecipeOperation("list")

	query := database.GetDB().Scopes(model.OwnedBy(userID))

	if raw := c.QueryParam("tags"); raw != "" {
		ids, err := serializer.ParseIDList("tags", raw)
		if err != nil {
			return respondError(c, err)
		}
		if len(ids) > 0 {
			query = query.Scopes(model.WithAnyTag(ids))
			log.Info("Filtering recipes by tags", zap.Any("tag_ids", ids))
		}
	}

	if raw := c.QueryParam("ingredients"); raw != "" {
		ids, err := serializer.ParseIDList("ingredients", raw)
		if err != nil {
			return respondError(c, err)
		}
		if len(ids) > 0 {
			query = query.Scopes(model.WithAnyIngredient(ids))
			log.Info("Filtering recipes by ingredients", zap.Any("ingredient_ids", ids))
		}
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var recipes []model.Recipe
	if err := query.Scopes(withRelations).Order("id DESC").Find(&recipes).Error; err != nil {
		log.Error("Failed to list recipes", zap.Error(err))
		return respondError(c, err)
	}

	log.Info("Recipes retrieved successfully", zap.Int("count", len(recipes)))
	return c.JSON(http.StatusOK, serializer.NewRecipes(recipes, storage.Get()))
}

// GetRecipe returns one recipe with nested tags and ingredients
func GetRecipe(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordRecipeOperation("get")

	recipe, err := findRecipe(c, database.GetDB())
	if errors.Is(err, errNotFound) {
		log.Warn("Recipe not found", zap.String("recipe_id", c.Param("id")))
		return recipeNotFound(c)
	}
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, serializer.NewRecipeDetail(recipe, storage.Get()))
}

// CreateRecipe adds a recipe owned by the caller
func CreateRecipe(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordRecipeOperation("create")

	var req serializer.RecipeRequest
	if err := bindRequest(c, &req); err != nil {
		return respondError(c, err)
	}

	recipe := &model.Recipe{UserID: currentUserID(c)}
	if err := saveRecipe(database.GetDB(), recipe, req.Partial()); err != nil {
		return respondError(c, err)
	}

	log.Info("Recipe created", zap.Uint("recipe_id", recipe.ID), zap.String("title", recipe.Title))
	return c.JSON(http.StatusCreated, serializer.NewRecipe(recipe, storage.Get()))
}

// UpdateRecipe replaces a recipe (PUT). Omitted tag or ingredient lists clear the set.
func UpdateRecipe(c echo.Context) error {
	var req serializer.RecipeRequest
	if err := bindRequest(c, &req); err != nil {
		return respondError(c, err)
	}
	return changeRecipe(c, req.Partial())
}

// PatchRecipe changes only the fields present in the body (PATCH)
func PatchRecipe(c echo.Context) error {
	var req serializer.RecipePatchRequest
	if err := bindRequest(c, &req); err != nil {
		return respondError(c, err)
	}
	return changeRecipe(c, req)
}

func changeRecipe(c echo.Context, req serializer.RecipePatchRequest) error {
	log := logger.FromContext(c)
	prometheus.RecordRecipeOperation("update")

	db := database.GetDB()
	recipe, err := findRecipe(c, db)
	if errors.Is(err, errNotFound) {
		log.Warn("Recipe not found", zap.String("recipe_id", c.Param("id")))
		return recipeNotFound(c)
	}
	if err != nil {
		return respondError(c, err)
	}

	if err := saveRecipe(db, recipe, req); err != nil {
		return respondError(c, err)
	}

	log.Info("Recipe updated", zap.Uint("recipe_id", recipe.ID))
	return c.JSON(http.StatusOK, serializer.NewRecipe(recipe, storage.Get()))
}

// DeleteRecipe removes a recipe, its tag and ingredient links, and its image
func DeleteRecipe(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordRecipeOperation("delete")

	db := database.GetDB()
	recipe, err := findRecipe(c, db)
	if errors.Is(err, errNotFound) {
		log.Warn("Recipe not found", zap.String("recipe_id", c.Param("id")))
		return recipeNotFound(c)
	}
	if err != nil {
		return respondError(c, err)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := db.Select("Tags", "Ingredients").Delete(recipe).Error; err != nil {
		log.Error("Failed to delete recipe", zap.Uint("recipe_id", recipe.ID), zap.Error(err))
		return respondError(c, err)
	}

	if err := storage.Get().Delete(recipe.Image); err != nil {
		log.Warn("Failed to remove recipe image", zap.String("image", recipe.Image), zap.Error(err))
	}

	log.Info("Recipe deleted", zap.Uint("recipe_id", recipe.ID))
	return c.NoContent(http.StatusNoContent)
}

// saveRecipe writes the present fields of req onto recipe and replaces the
// tag and ingredient sets that req carries, all in one transaction. On
// success recipe holds the stored row with its relations loaded.
func saveRecipe(db *gorm.DB, recipe *model.Recipe, req serializer.RecipePatchRequest) error {
	if req.Title != nil {
		recipe.Title = *req.Title
	}
	if req.TimeMinutes != nil {
		recipe.TimeMinutes = *req.TimeMinutes
	}
	if req.Price != nil {
		recipe.Price = *req.Price
	}
	if req.Link != nil {
		recipe.Link = *req.Link
	}

	operation := "update"
	if recipe.ID == 0 {
		operation = "insert"
	}
	defer prometheus.TrackDBOperation(operation)(time.Now())

	err := db.Transaction(func(tx *gorm.DB) error {
		var tags []model.Tag
		if req.Tags != nil {
			if err := loadOwned(tx, &tags, "tags", *req.Tags, recipe.UserID); err != nil {
				return err
			}
		}
		var ingredients []model.Ingredient
		if req.Ingredients != nil {
			if err := loadOwned(tx, &ingredients, "ingredients", *req.Ingredients, recipe.UserID); err != nil {
				return err
			}
		}

		if recipe.ID == 0 {
			if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
				return fmt.Errorf("create recipe: %w", err)
			}
		} else {
			if err := tx.Omit(clause.Associations).Save(recipe).Error; err != nil {
				return fmt.Errorf("save recipe %d: %w", recipe.ID, err)
			}
		}

		if req.Tags != nil {
			if err := replaceAssociation(tx, recipe, "Tags", tags, len(tags)); err != nil {
				return err
			}
		}
		if req.Ingredients != nil {
			if err := replaceAssociation(tx, recipe, "Ingredients", ingredients, len(ingredients)); err != nil {
				return err
			}
		}

		return withRelations(tx).First(recipe, recipe.ID).Error
	})
	return err
}

// loadOwned fills dest with the caller's rows named by ids, failing with a
// field error for the first id that does not exist or belongs to someone else.
func loadOwned(tx *gorm.DB, dest interface{}, field string, ids []uint, userID uint) error {
	if len(ids) == 0 {
		return nil
	}

	var found []uint
	if err := tx.Table(field).Scopes(model.OwnedBy(userID)).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return fmt.Errorf("load %s: %w", field, err)
	}

	have := make(map[uint]bool, len(found))
	for _, id := range found {
		have[id] = true
	}
	for _, id := range ids {
		if !have[id] {
			return serializer.NewValidationError(field, fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
		}
	}

	return tx.Where("id IN ?", found).Order("id").Find(dest).Error
}

func replaceAssociation(tx *gorm.DB, recipe *model.Recipe, name string, values interface{}, n int) error {
	// link existing rows only, never upsert them
	assoc := tx.Model(recipe).Omit(name + ".*").Association(name)
	var err error
	if n == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(values)
	}
	if err != nil {
		return fmt.Errorf("replace %s of recipe %d: %w", name, recipe.ID, err)
	}
	return nil
}
