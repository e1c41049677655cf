package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/CrownKira/recipe-app-api/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Account counters
	UserCreateCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recipe_user_create_total",
			Help: "Total number of account creation attempts",
		},
	)

	TokenCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recipe_token_requests_total",
			Help: "Total number of token requests",
		},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // type can be "invalid_credentials", "missing_token", "invalid_token" etc.
	)

	RecipeOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_operations_total",
			Help: "Total number of recipe operations",
		},
		[]string{"operation"}, // "list", "get", "create", "update", "delete", "upload_image"
	)

	TaxonomyOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_taxonomy_operations_total",
			Help: "Total number of tag and ingredient operations",
		},
		[]string{"kind", "operation"},
	)

	ImageUploadCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_image_uploads_total",
			Help: "Total number of recipe image uploads by result",
		},
		[]string{"result"}, // "stored", "rejected", "failed"
	)

	CacheCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_cache_lookups_total",
			Help: "Total number of cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	// Responses by status category (2xx, 4xx, 5xx)
	StatusCategoryCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_http_status_category_total",
			Help: "Total number of responses by status category",
		},
		[]string{"category", "method"},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Histogram metrics
var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recipe_info",
			Help: "Information about the recipe service",
		},
		[]string{"version", "service"},
	)
)

func init() {
	prometheus.MustRegister(UserCreateCounter)
	prometheus.MustRegister(TokenCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(RecipeOperationCounter)
	prometheus.MustRegister(TaxonomyOperationCounter)
	prometheus.MustRegister(ImageUploadCounter)
	prometheus.MustRegister(CacheCounter)
	prometheus.MustRegister(StatusCategoryCounter)
	prometheus.MustRegister(HTTPRequestCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(InfoGauge)
}

// InitMetrics publishes the service info gauge
func InitMetrics(cfg *config.Config) {
	InfoGauge.With(prometheus.Labels{"version": "1.0.0", "service": cfg.ServiceName}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations:
//
//	defer prometheus.TrackDBOperation("query")(time.Now())
func TrackDBOperation(operation string) func(time.Time) {
	return func(start time.Time) {
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(time.Since(start).Seconds())
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// write the error response now so the recorded status is the real one
				c.Error(err)
			}

			duration := time.Since(start).Seconds()
			code := c.Response().Status
			status := strconv.Itoa(code)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			if category := statusCategory(code); category != "" {
				StatusCategoryCounter.With(prometheus.Labels{"category": category, "method": method}).Inc()
			}

			return nil
		}
	}
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordRecipeOperation records a recipe operation
func RecordRecipeOperation(operation string) {
	RecipeOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordTaxonomyOperation records a tag or ingredient operation
func RecordTaxonomyOperation(kind, operation string) {
	TaxonomyOperationCounter.With(prometheus.Labels{"kind": kind, "operation": operation}).Inc()
}

// RecordImageUpload records the outcome of an image upload
func RecordImageUpload(result string) {
	ImageUploadCounter.With(prometheus.Labels{"result": result}).Inc()
}

// RecordCacheLookup records a cache hit, miss or error
func RecordCacheLookup(result string) {
	CacheCounter.With(prometheus.Labels{"result": result}).Inc()
}

func statusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	default:
		return ""
	}
}
