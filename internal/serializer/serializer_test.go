package serializer

import (
	"errors"
	"strings"
	"testing"

	"github.com/CrownKira/recipe-app-api/internal/model"

	"github.com/shopspring/decimal"
)

type fakeURLs struct{}

func (fakeURLs) URL(rel string) string { return "/media/" + rel }

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func fieldErrors(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected *ValidationError, got %v", err)
	}
	return verr.Fields
}

func TestValidate_CreateUser(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(&CreateUserRequest{Email: "test@example.com", Password: "testpass", Name: "Test"}); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}

	fields := fieldErrors(t, v.Validate(&CreateUserRequest{Email: "not-an-email", Password: "pw", Name: ""}))
	for _, name := range []string{"email", "password", "name"} {
		if len(fields[name]) == 0 {
			t.Errorf("Expected an error for %s, got %v", name, fields)
		}
	}
	if !strings.Contains(fields["password"][0], "at least 5") {
		t.Errorf("Unexpected password message: %q", fields["password"][0])
	}
}

func TestValidate_RecipeRequest(t *testing.T) {
	v := NewValidator()

	ok := &RecipeRequest{Title: strPtr("Chocolate cheesecake"), TimeMinutes: intPtr(0), Price: decPtr("5.00")}
	if err := v.Validate(ok); err != nil {
		t.Fatalf("zero minutes should be accepted: %v", err)
	}

	fields := fieldErrors(t, v.Validate(&RecipeRequest{}))
	for _, name := range []string{"title", "time_minutes", "price"} {
		if fields[name][0] != "This field is required." {
			t.Errorf("Expected %s to be required, got %v", name, fields[name])
		}
	}

	fields = fieldErrors(t, v.Validate(&RecipeRequest{
		Title:       strPtr(""),
		TimeMinutes: intPtr(-1),
		Price:       decPtr("1234.5"),
	}))
	if fields["title"][0] != "This field may not be blank." {
		t.Errorf("Unexpected title message: %v", fields["title"])
	}
	if len(fields["time_minutes"]) == 0 || len(fields["price"]) == 0 {
		t.Errorf("Expected time_minutes and price errors, got %v", fields)
	}
}

func TestValidate_RecipePatchSkipsAbsentFields(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(&RecipePatchRequest{Title: strPtr("New title")}); err != nil {
		t.Fatalf("partial payload rejected: %v", err)
	}
	fields := fieldErrors(t, v.Validate(&RecipePatchRequest{Price: decPtr("0.001")}))
	if len(fields["price"]) == 0 {
		t.Errorf("Expected a price error, got %v", fields)
	}
}

func TestValidPrice(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"5", true},
		{"5.25", true},
		{"999.99", true},
		{"1000", false},
		{"1.005", false},
		{"-999.99", true},
	}
	for _, tt := range tests {
		if got := ValidPrice(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("ValidPrice(%s) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRecipeRequestPartial_DefaultsLists(t *testing.T) {
	p := RecipeRequest{Title: strPtr("Soup")}.Partial()
	if p.Tags == nil || len(*p.Tags) != 0 {
		t.Errorf("Expected empty tag list, got %v", p.Tags)
	}
	if p.Ingredients == nil || len(*p.Ingredients) != 0 {
		t.Errorf("Expected empty ingredient list, got %v", p.Ingredients)
	}
	if p.Link == nil || *p.Link != "" {
		t.Errorf("Expected link to be cleared, got %v", p.Link)
	}
}

func TestParseIDList(t *testing.T) {
	ids, err := ParseIDList("tags", "1, 2,,3")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[2] != 3 {
		t.Errorf("Unexpected ids %v", ids)
	}

	if _, err := ParseIDList("tags", "1,abc"); err == nil {
		t.Error("Expected an error for a non-numeric id")
	} else if fieldErrors(t, err)["tags"] == nil {
		t.Errorf("Expected the error to be keyed by tags, got %v", err)
	}
}

func TestNewRecipe(t *testing.T) {
	r := &model.Recipe{
		ID:          7,
		Title:       "Steak",
		TimeMinutes: 10,
		Price:       decimal.RequireFromString("5"),
		Tags:        []model.Tag{{ID: 2, Name: "Dinner"}},
		Ingredients: []model.Ingredient{{ID: 3, Name: "Beef"}},
	}

	list := NewRecipe(r, fakeURLs{})
	if list.Price != "5.00" {
		t.Errorf("Expected price 5.00, got %s", list.Price)
	}
	if list.Image != nil {
		t.Errorf("Expected nil image, got %v", *list.Image)
	}
	if len(list.Tags) != 1 || list.Tags[0] != 2 {
		t.Errorf("Unexpected tag ids %v", list.Tags)
	}

	r.Image = "uploads/recipe/steak.jpg"
	detail := NewRecipeDetail(r, fakeURLs{})
	if detail.Image == nil || *detail.Image != "/media/uploads/recipe/steak.jpg" {
		t.Errorf("Unexpected image url %v", detail.Image)
	}
	if len(detail.Ingredients) != 1 || detail.Ingredients[0].Name != "Beef" {
		t.Errorf("Unexpected ingredients %v", detail.Ingredients)
	}
}

func TestFieldTypeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want map[string]string
	}{
		{"valid body", `{"title":"Soup","time_minutes":5,"price":"5.00","tags":[1,2]}`, nil},
		{"nulls decode", `{"title":null,"tags":null}`, nil},
		{"not an object", `[1,2]`, nil},
		{"unknown fields ignored", `{"extra":"x"}`, nil},
		{"number as title", `{"title":5}`, map[string]string{"title": "Not a valid string."}},
		{"boolean price", `{"price":true}`, map[string]string{"price": "A valid number is required."}},
		{"float tag id", `{"tags":[1.5]}`, map[string]string{"tags": "Incorrect type. Expected pk value, received float."}},
		{"object for ingredients", `{"ingredients":{"id":1}}`, map[string]string{"ingredients": `Expected a list of items but got type "dict".`}},
		{
			"several fields",
			`{"time_minutes":"ten","price":"abc"}`,
			map[string]string{"time_minutes": "A valid integer is required.", "price": "A valid number is required."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := FieldTypeErrors([]byte(tt.body), &RecipeRequest{})
			if tt.want == nil {
				if verr != nil {
					t.Errorf("Expected no errors, got %v", verr.Fields)
				}
				return
			}
			if verr == nil {
				t.Fatalf("Expected errors %v, got none", tt.want)
			}
			if len(verr.Fields) != len(tt.want) {
				t.Errorf("Expected fields %v, got %v", tt.want, verr.Fields)
			}
			for field, msg := range tt.want {
				if got := verr.Fields[field]; len(got) != 1 || got[0] != msg {
					t.Errorf("%s: expected %q, got %v", field, msg, got)
				}
			}
		})
	}
}
