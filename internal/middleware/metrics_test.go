package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-desk-api/internal/service"
)

func TestMetricsRecordsRoutePatternAndResource(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics, "/api"))
	router.DELETE("/api/lessons/:id/series", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/lessons/abc/series", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/nope/1", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/nope/2", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`http_requests_total{method="DELETE",path="/api/lessons/:id/series",resource="lessons",status="200"} 1`,
		`http_requests_total{method="GET",path="unmatched",resource="unmatched",status="404"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s, got:\n%s", want, body)
		}
	}
}

func TestRouteResource(t *testing.T) {
	cases := map[string]struct {
		path, prefix, want string
	}{
		"api resource":    {"/api/payments/auto-select", "/api", "payments"},
		"trailing prefix": {"/api/students/:id", "/api/", "students"},
		"system route":    {"/health", "/api", "system"},
		"no prefix":       {"/notes", "", "notes"},
		"unmatched":       {"unmatched", "/api", "unmatched"},
	}
	for name, tc := range cases {
		if got := routeResource(tc.path, tc.prefix); got != tc.want {
			t.Errorf("%s: routeResource(%q, %q) = %q, want %q", name, tc.path, tc.prefix, got, tc.want)
		}
	}
}

func TestMetricsNilService(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Metrics(nil, "/api"))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}
