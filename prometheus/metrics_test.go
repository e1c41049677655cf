package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddleware_CountsRequests(t *testing.T) {
	e := echo.New()
	e.Use(MetricsMiddleware())
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})

	counter := HTTPRequestCounter.WithLabelValues("/ping", http.MethodGet, "200")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("Expected request counter to increase by 1, got %v -> %v", before, got)
	}
}

func TestMetricsMiddleware_RecordsRouterErrors(t *testing.T) {
	e := echo.New()
	e.Use(MetricsMiddleware())
	e.GET("/only-get", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	counter := StatusCategoryCounter.WithLabelValues("4xx", http.MethodPost)
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/only-get", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("Expected 405, got %d", rec.Code)
	}
	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("Expected 4xx counter to increase by 1, got %v -> %v", before, got)
	}
}

func TestStatusCategory(t *testing.T) {
	tests := map[int]string{200: "2xx", 204: "2xx", 301: "", 404: "4xx", 503: "5xx"}
	for code, want := range tests {
		if got := statusCategory(code); got != want {
			t.Errorf("statusCategory(%d) = %q, want %q", code, got, want)
		}
	}
}

func TestRecordHelpers(t *testing.T) {
	RecordAuthError("invalid_token")
	RecordRecipeOperation("create")
	RecordTaxonomyOperation("tags", "list")
	RecordImageUpload("rejected")
	RecordCacheLookup("miss")
	TrackDBOperation("query")(time.Now())

	if testutil.ToFloat64(AuthErrorCounter.WithLabelValues("invalid_token")) < 1 {
		t.Error("auth error not recorded")
	}
	if testutil.ToFloat64(RecipeOperationCounter.WithLabelValues("create")) < 1 {
		t.Error("recipe operation not recorded")
	}
	if testutil.ToFloat64(TaxonomyOperationCounter.WithLabelValues("tags", "list")) < 1 {
		t.Error("taxonomy operation not recorded")
	}
	if testutil.ToFloat64(ImageUploadCounter.WithLabelValues("rejected")) < 1 {
		t.Error("image upload not recorded")
	}
}

func TestPrometheusHandler_ExposesMetrics(t *testing.T) {
	RecordRecipeOperation("list")

	rec := httptest.NewRecorder()
	GetPrometheusHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if !strings.Contains(rec.Body.String(), "recipe_operations_total") {
		t.Error("Expected recipe_operations_total in metrics output")
	}
}
