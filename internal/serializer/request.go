package serializer

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CreateUserRequest is the signup payload.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=5"`
	Name     string `json:"name" validate:"required,min=1,max=255"`
}

// TokenRequest exchanges credentials for a bearer token.
type TokenRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest is a partial profile update. Email is read-only.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=255"`
	Password *string `json:"password" validate:"omitempty,min=5"`
}

// ReplaceUserRequest is a full profile update.
type ReplaceUserRequest struct {
	Name     *string `json:"name" validate:"required,min=1,max=255"`
	Password *string `json:"password" validate:"required,min=5"`
}

// Partial converts a full update into the fields to apply.
func (r ReplaceUserRequest) Partial() UpdateUserRequest {
	return UpdateUserRequest(r)
}

// TagRequest creates a tag or an ingredient.
type TagRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// RecipeRequest is the payload for create and full update. Omitted tag or
// ingredient lists mean an empty set.
type RecipeRequest struct {
	Title       *string          `json:"title" validate:"required,min=1,max=255"`
	TimeMinutes *int             `json:"time_minutes" validate:"required,gte=0"`
	Price       *decimal.Decimal `json:"price" validate:"required,price"`
	Link        *string          `json:"link" validate:"omitempty,max=255"`
	Tags        *[]uint          `json:"tags"`
	Ingredients *[]uint          `json:"ingredients"`
}

// Partial returns the same payload as a patch with both lists always present.
func (r RecipeRequest) Partial() RecipePatchRequest {
	p := RecipePatchRequest(r)
	if p.Tags == nil {
		p.Tags = &[]uint{}
	}
	if p.Ingredients == nil {
		p.Ingredients = &[]uint{}
	}
	if p.Link == nil {
		empty := ""
		p.Link = &empty
	}
	return p
}

// RecipePatchRequest changes only the fields that are present. A present
// list replaces the whole set.
type RecipePatchRequest struct {
	Title       *string          `json:"title" validate:"omitempty,min=1,max=255"`
	TimeMinutes *int             `json:"time_minutes" validate:"omitempty,gte=0"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,price"`
	Link        *string          `json:"link" validate:"omitempty,max=255"`
	Tags        *[]uint          `json:"tags"`
	Ingredients *[]uint          `json:"ingredients"`
}

// ParseIDList parses a comma separated list of ids such as "1,2,3".
// Blank entries are skipped.
func ParseIDList(field, value string) ([]uint, error) {
	var ids []uint
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			return nil, NewValidationError(field, "Enter a comma separated list of ids.")
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
