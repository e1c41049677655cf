package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/CrownKira/recipe-app-api/internal/model"
	"github.com/CrownKira/recipe-app-api/internal/serializer"
	"github.com/CrownKira/recipe-app-api/pkg/cache"
	"github.com/CrownKira/recipe-app-api/pkg/database"
	"github.com/CrownKira/recipe-app-api/pkg/logger"
	"github.com/CrownKira/recipe-app-api/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// taxonomyKind describes one of the two per-user name lists attached to recipes.
type taxonomyKind struct {
	name      string // "tags" or "ingredients"; also the cache and metric label
	model     interface{}
	joinTable string
	column    string
	create    func(db *gorm.DB, name string, userID uint) (serializer.TagResponse, error)
}

var (
	tagKind = taxonomyKind{
		name:      "tags",
		model:     &model.Tag{},
		joinTable: "recipe_tags",
		column:    "tag_id",
		create: func(db *gorm.DB, name string, userID uint) (serializer.TagResponse, error) {
			tag := model.Tag{Name: name, UserID: userID}
			if err := db.Omit("User").Create(&tag).Error; err != nil {
				return serializer.TagResponse{}, err
			}
			return serializer.NewTag(&tag), nil
		},
	}

	ingredientKind = taxonomyKind{
		name:      "ingredients",
		model:     &model.Ingredient{},
		joinTable: "recipe_ingredients",
		column:    "ingredient_id",
		create: func(db *gorm.DB, name string, userID uint) (serializer.TagResponse, error) {
			ingredient := model.Ingredient{Name: name, UserID: userID}
			if err := db.Omit("User").Create(&ingredient).Error; err != nil {
				return serializer.TagResponse{}, err
			}
			return serializer.NewIngredient(&ingredient), nil
		},
	}
)

func (k taxonomyKind) list(c echo.Context) error {
	log := logger.FromContext(c)
	userID := currentUserID(c)
	prometheus.RecordTaxonomyOperation(k.name, "list")

	assignedOnly := false
	if raw := c.QueryParam("assigned_only"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return respondError(c, serializer.NewValidationError("assigned_only", "A valid integer is required."))
		}
		assignedOnly = n != 0
	}

	ctx := c.Request().Context()
	prefix := cache.TaxonomyKey(k.name, userID)

	// Only the unfiltered list is cached. The generation is read before the
	// query so a create that lands in between moves readers past this entry.
	key := ""
	if !assignedOnly && cache.Enabled() {
		gen, err := cache.Generation(ctx, prefix)
		if err != nil {
			log.Warn("Cache generation lookup failed", zap.String("key", prefix), zap.Error(err))
			prometheus.RecordCacheLookup("error")
		} else {
			key = cache.VersionedKey(prefix, gen)
		}
	}

	if key != "" {
		var cached []serializer.TagResponse
		if hit := k.cached(ctx, log, key, &cached); hit {
			return c.JSON(http.StatusOK, cached)
		}
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	query := database.GetDB().Model(k.model).Scopes(model.OwnedBy(userID))
	if assignedOnly {
		query = query.Scopes(model.AssignedTo(k.joinTable, k.column))
	}

	items := []serializer.TagResponse{}
	if err := query.Order("name DESC").Find(&items).Error; err != nil {
		log.Error("Failed to list "+k.name, zap.Error(err))
		return respondError(c, err)
	}

	if key != "" {
		if err := cache.SetJSON(ctx, key, items); err != nil {
			log.Warn("Failed to cache list", zap.String("key", key), zap.Error(err))
		}
	}

	log.Info("Listed "+k.name, zap.Int("count", len(items)), zap.Bool("assigned_only", assignedOnly))
	return c.JSON(http.StatusOK, items)
}

func (k taxonomyKind) cached(ctx context.Context, log *zap.Logger, key string, dst *[]serializer.TagResponse) bool {
	hit, err := cache.GetJSON(ctx, key, dst)
	switch {
	case err != nil:
		log.Warn("Cache lookup failed", zap.String("key", key), zap.Error(err))
		prometheus.RecordCacheLookup("error")
		return false
	case hit:
		prometheus.RecordCacheLookup("hit")
		return true
	default:
		prometheus.RecordCacheLookup("miss")
		return false
	}
}

func (k taxonomyKind) add(c echo.Context) error {
	log := logger.FromContext(c)
	userID := currentUserID(c)
	prometheus.RecordTaxonomyOperation(k.name, "create")

	var req serializer.TagRequest
	if err := bindRequest(c, &req); err != nil {
		return respondError(c, err)
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	item, err := k.create(database.GetDB(), req.Name, userID)
	if err != nil {
		log.Error("Failed to create "+k.name, zap.String("name", req.Name), zap.Error(err))
		return respondError(c, err)
	}

	prefix := cache.TaxonomyKey(k.name, userID)
	if err := cache.Bump(c.Request().Context(), prefix); err != nil {
		log.Warn("Failed to invalidate cached list", zap.String("key", prefix), zap.Error(err))
	}

	log.Info("Created "+k.name, zap.Uint("id", item.ID), zap.String("name", item.Name))
	return c.JSON(http.StatusCreated, item)
}

// ListTags returns the caller's tags ordered by name descending
func ListTags(c echo.Context) error { return tagKind.list(c) }

// CreateTag adds a tag owned by the caller
func CreateTag(c echo.Context) error { return tagKind.add(c) }

// ListIngredients returns the caller's ingredients ordered by name descending
func ListIngredients(c echo.Context) error { return ingredientKind.list(c) }

// CreateIngredient adds an ingredient owned by the caller
func CreateIngredient(c echo.Context) error { return ingredientKind.add(c) }
