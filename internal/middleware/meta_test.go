package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-desk-api/pkg/middleware/requestid"
	"github.com/noah-isme/tutor-desk-api/pkg/response"
)

func TestResponseMetaCarriesCacheHitAndRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(requestid.Middleware(), WithResponseMeta())
	router.GET("/students", func(c *gin.Context) {
		SetCacheHit(c, true)
		response.OK(c, []string{})
	})

	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	req.Header.Set("X-Request-ID", "req-12345678")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, `"cacheHit":true`) {
		t.Fatalf("expected cache hit meta, got %s", body)
	}
	if !strings.Contains(body, `"requestId":"req-12345678"`) {
		t.Fatalf("expected request id meta, got %s", body)
	}
}

func TestSetCacheHitWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	SetCacheHit(c, false)
	meta := ExtractMeta(c)
	if hit, ok := meta[cacheHitKey].(bool); !ok || hit {
		t.Fatalf("unexpected meta: %#v", meta)
	}
}
