package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/tutor-desk-api/pkg/config"
)

func newRouter(origins ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(config.CORSConfig{AllowedOrigins: origins, MaxAge: time.Minute}))
	r.GET("/api/lessons", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestCORSAllowsListedOrigin(t *testing.T) {
	r := newRouter("https://tutor.example/")
	req := httptest.NewRequest(http.MethodGet, "/api/lessons", nil)
	req.Header.Set("Origin", "https://tutor.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://tutor.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "60", w.Header().Get("Access-Control-Max-Age"))
}

func TestCORSRejectsPreflightFromUnknownOrigin(t *testing.T) {
	r := newRouter("https://tutor.example")
	req := httptest.NewRequest(http.MethodOptions, "/api/lessons", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcardWithoutOrigin(t *testing.T) {
	r := newRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/lessons", nil))

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
