package handler

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/CrownKira/recipe-app-api/internal/model"
	"github.com/CrownKira/recipe-app-api/internal/serializer"
	"github.com/CrownKira/recipe-app-api/pkg/storage"

	"github.com/labstack/echo/v4"
)

func uploadURL(id uint) string {
	return fmt.Sprintf("%s/%d/upload-image", recipesURL, id)
}

func sampleJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10)), nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// upload posts data as the multipart field name.
func upload(t *testing.T, e *echo.Echo, id uint, field string, data []byte, token string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, "upload.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, uploadURL(id), &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func storedImage(t *testing.T, id uint) string {
	t.Helper()
	var recipe model.Recipe
	if err := testDB().First(&recipe, id).Error; err != nil {
		t.Fatal(err)
	}
	return recipe.Image
}

func TestUploadImage_Success(t *testing.T) {
	e := setupTestServer(t)
	user := createUser(t, "test@londonappdev.com")
	recipe := createRecipe(t, user, "Sample recipe", nil, nil)

	rec := upload(t, e, recipe.ID, "image", sampleJPEG(t), tokenFor(t, user))
	expectStatus(t, rec, http.StatusOK)

	var body serializer.RecipeImageResponse
	decodeBody(t, rec, &body)
	if body.ID != recipe.ID || body.Image == nil {
		t.Fatalf("Unexpected response %s", rec.Body.String())
	}

	rel := storedImage(t, recipe.ID)
	if !strings.HasPrefix(rel, storage.RecipeImageDir+"/sample-recipe-") || !strings.HasSuffix(rel, ".jpg") {
		t.Errorf("Unexpected stored path %q", rel)
	}
	if *body.Image != "/media/"+rel {
		t.Errorf("Expected image url /media/%s, got %s", rel, *body.Image)
	}
	if _, err := os.Stat(storage.Get().Path(rel)); err != nil {
		t.Errorf("Expected the image file to exist: %v", err)
	}
}

func TestUploadImage_NotAnImage(t *testing.T) {
	e := setupTestServer(t)
	user := createUser(t, "test@londonappdev.com")
	recipe := createRecipe(t, user, "Sample recipe", nil, nil)

	rec := upload(t, e, recipe.ID, "image", []byte("notimage"), tokenFor(t, user))
	expectStatus(t, rec, http.StatusBadRequest)
	if fields := fieldErrors(t, rec); len(fields["image"]) == 0 {
		t.Errorf("Expected an image error, got %v", fields)
	}

	if rel := storedImage(t, recipe.ID); rel != "" {
		t.Errorf("Image should stay unset, got %q", rel)
	}
	entries, err := os.ReadDir(storage.Get().Path(storage.RecipeImageDir))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Rejected upload left %d files behind", len(entries))
	}
}

func TestUploadImage_MissingFile(t *testing.T) {
	e := setupTestServer(t)
	user := createUser(t, "test@londonappdev.com")
	recipe := createRecipe(t, user, "Sample recipe", nil, nil)

	rec := upload(t, e, recipe.ID, "picture", sampleJPEG(t), tokenFor(t, user))
	expectStatus(t, rec, http.StatusBadRequest)
	if rel := storedImage(t, recipe.ID); rel != "" {
		t.Errorf("Image should stay unset, got %q", rel)
	}
}

func TestUploadImage_ReplacesPrevious(t *testing.T) {
	e := setupTestServer(t)
	user := createUser(t, "test@londonappdev.com")
	recipe := createRecipe(t, user, "Sample recipe", nil, nil)
	token := tokenFor(t, user)

	expectStatus(t, upload(t, e, recipe.ID, "image", sampleJPEG(t), token), http.StatusOK)
	first := storedImage(t, recipe.ID)

	expectStatus(t, upload(t, e, recipe.ID, "image", sampleJPEG(t), token), http.StatusOK)
	second := storedImage(t, recipe.ID)

	if first == second {
		t.Fatal("Expected a new file name for the second upload")
	}
	if _, err := os.Stat(storage.Get().Path(first)); !os.IsNotExist(err) {
		t.Errorf("Expected the replaced image to be removed, stat err %v", err)
	}
}

func TestUploadImage_OtherUsersRecipe(t *testing.T) {
	e := setupTestServer(t)
	user := createUser(t, "test@londonappdev.com")
	other := createUser(t, "other@londonappdev.com")
	recipe := createRecipe(t, other, "Their recipe", nil, nil)

	rec := upload(t, e, recipe.ID, "image", sampleJPEG(t), tokenFor(t, user))
	expectStatus(t, rec, http.StatusNotFound)
}

func TestDeleteRecipe_RemovesImage(t *testing.T) {
	e := setupTestServer(t)
	user := createUser(t, "test@londonappdev.com")
	recipe := createRecipe(t, user, "Sample recipe", nil, nil)
	token := tokenFor(t, user)

	expectStatus(t, upload(t, e, recipe.ID, "image", sampleJPEG(t), token), http.StatusOK)
	rel := storedImage(t, recipe.ID)

	rec := doRequest(t, e, http.MethodDelete, recipeURL(recipe.ID), nil, token)
	expectStatus(t, rec, http.StatusNoContent)
	if _, err := os.Stat(storage.Get().Path(rel)); !os.IsNotExist(err) {
		t.Errorf("Expected the image file to be removed, stat err %v", err)
	}
}
