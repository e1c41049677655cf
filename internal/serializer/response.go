package serializer

import (
	"github.com/CrownKira/recipe-app-api/internal/model"
)

// ImageURLer resolves a stored media path to its public URL.
type ImageURLer interface {
	URL(rel string) string
}

// UserResponse is the client view of an account. The password is never included.
type UserResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TagResponse renders both tags and ingredients.
type TagResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// RecipeResponse is the list shape: related records appear as ids.
type RecipeResponse struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	TimeMinutes int     `json:"time_minutes"`
	Price       string  `json:"price"`
	Link        string  `json:"link"`
	Tags        []uint  `json:"tags"`
	Ingredients []uint  `json:"ingredients"`
	Image       *string `json:"image"`
}

// RecipeDetailResponse nests the related tags and ingredients.
type RecipeDetailResponse struct {
	ID          uint          `json:"id"`
	Title       string        `json:"title"`
	TimeMinutes int           `json:"time_minutes"`
	Price       string        `json:"price"`
	Link        string        `json:"link"`
	Tags        []TagResponse `json:"tags"`
	Ingredients []TagResponse `json:"ingredients"`
	Image       *string       `json:"image"`
}

// RecipeImageResponse is returned by the image upload action.
type RecipeImageResponse struct {
	ID    uint    `json:"id"`
	Image *string `json:"image"`
}

// NewUser renders a user profile.
func NewUser(u *model.User) UserResponse {
	return UserResponse{Email: u.Email, Name: u.Name}
}

// NewTag renders a tag.
func NewTag(t *model.Tag) TagResponse {
	return TagResponse{ID: t.ID, Name: t.Name}
}

// NewIngredient renders an ingredient with the same shape as a tag.
func NewIngredient(i *model.Ingredient) TagResponse {
	return TagResponse{ID: i.ID, Name: i.Name}
}

// NewTags renders tags in the given order.
func NewTags(tags []model.Tag) []TagResponse {
	out := make([]TagResponse, 0, len(tags))
	for i := range tags {
		out = append(out, NewTag(&tags[i]))
	}
	return out
}

// NewIngredients renders ingredients in the given order.
func NewIngredients(ingredients []model.Ingredient) []TagResponse {
	out := make([]TagResponse, 0, len(ingredients))
	for i := range ingredients {
		out = append(out, NewIngredient(&ingredients[i]))
	}
	return out
}

// NewRecipe renders the list view of a recipe with tag and ingredient ids.
func NewRecipe(r *model.Recipe, urls ImageURLer) RecipeResponse {
	return RecipeResponse{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.StringFixed(PriceMaxDecimals),
		Link:        r.Link,
		Tags:        r.TagIDs(),
		Ingredients: r.IngredientIDs(),
		Image:       imageURL(r.Image, urls),
	}
}

// NewRecipes renders recipes in the given order.
func NewRecipes(recipes []model.Recipe, urls ImageURLer) []RecipeResponse {
	out := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, NewRecipe(&recipes[i], urls))
	}
	return out
}

// NewRecipeDetail renders a recipe with nested tags and ingredients.
func NewRecipeDetail(r *model.Recipe, urls ImageURLer) RecipeDetailResponse {
	return RecipeDetailResponse{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.StringFixed(PriceMaxDecimals),
		Link:        r.Link,
		Tags:        NewTags(r.Tags),
		Ingredients: NewIngredients(r.Ingredients),
		Image:       imageURL(r.Image, urls),
	}
}

// NewRecipeImage renders the upload response of a recipe image.
func NewRecipeImage(r *model.Recipe, urls ImageURLer) RecipeImageResponse {
	return RecipeImageResponse{ID: r.ID, Image: imageURL(r.Image, urls)}
}

// imageURL returns nil for recipes without an image so it renders as null.
func imageURL(rel string, urls ImageURLer) *string {
	if rel == "" || urls == nil {
		return nil
	}
	u := urls.URL(rel)
	return &u
}
