package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-desk-api/internal/models"
	appErrors "github.com/noah-isme/tutor-desk-api/pkg/errors"
)

type stubAuthenticator struct {
	claims *models.SessionClaims
	err    error
	token  string
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, token string) (*models.SessionClaims, error) {
	s.token = token
	return s.claims, s.err
}

func newSessionRouter(auth SessionAuthenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Session(auth))
	router.GET("/me", func(c *gin.Context) {
		claims := CurrentSession(c)
		if claims == nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, claims.UserID)
	})
	return router
}

func TestSessionAcceptsBearerToken(t *testing.T) {
	auth := &stubAuthenticator{claims: &models.SessionClaims{UserID: "user-1"}}
	router := newSessionRouter(auth)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer abc.def.ghi")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if rec.Body.String() != "user-1" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if auth.token != "abc.def.ghi" {
		t.Fatalf("unexpected token passed: %s", auth.token)
	}
}

func TestSessionRejectsMissingOrMalformedHeader(t *testing.T) {
	for _, header := range []string{"", "Token abc", "Bearer "} {
		router := newSessionRouter(&stubAuthenticator{claims: &models.SessionClaims{UserID: "user-1"}})
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: unexpected status %d", header, rec.Code)
		}
	}
}

func TestSessionPropagatesAuthenticatorError(t *testing.T) {
	router := newSessionRouter(&stubAuthenticator{err: appErrors.Clone(appErrors.ErrSessionExpired, "session expired or revoked")})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer revoked")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var body struct {
		Error appErrors.Error `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Code != appErrors.ErrSessionExpired.Code {
		t.Fatalf("unexpected error code: %s", body.Error.Code)
	}
}
