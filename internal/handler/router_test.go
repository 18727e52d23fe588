package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/tutor-desk-api/internal/middleware"
	"github.com/noah-isme/tutor-desk-api/internal/models"
	appErrors "github.com/noah-isme/tutor-desk-api/pkg/errors"
)

type tokenAuthenticator struct{}

func (tokenAuthenticator) Authenticate(_ context.Context, token string) (*models.SessionClaims, error) {
	if token != "valid" {
		return nil, appErrors.ErrSessionExpired
	}
	return &models.SessionClaims{UserID: "u-1"}, nil
}

func newTestRouter(lessons *fakeLessonSrv) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Handlers{
		Auth:            NewAuthHandler(&fakeAuthSrv{}),
		Students:        NewStudentHandler(&fakeStudentSrv{}),
		Parents:         NewParentHandler(nil),
		Lessons:         NewLessonHandler(lessons, &fakeExporter{}),
		RecurringLesson: NewRecurringLessonHandler(nil),
		Comments:        NewCommentHandler(nil),
		Notes:           NewNoteHandler(nil),
		Payments:        NewPaymentHandler(&fakePaymentSrv{}),
	}.Register(r.Group("/api"), middleware.Session(tokenAuthenticator{}))
	return r
}

func TestRouterLoginIsPublic(t *testing.T) {
	r := newTestRouter(&fakeLessonSrv{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"tutor@example.com","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterRequiresSession(t *testing.T) {
	r := newTestRouter(&fakeLessonSrv{})

	for _, token := range []string{"", "Bearer expired"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
		if token != "" {
			req.Header.Set("Authorization", token)
		}
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, token)
	}
}

func TestRouterStaticLessonRoutes(t *testing.T) {
	lessons := &fakeLessonSrv{deleted: 3}
	r := newTestRouter(lessons)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/lessons/agenda", nil)
	req.Header.Set("Authorization", "Bearer valid")
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, lessons.agendaNow.IsZero())

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/lessons/"+testLessonID+"/series", nil)
	req.Header.Set("Authorization", "Bearer valid")
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testLessonID, lessons.seriesID)
	assert.JSONEq(t, `{"data":{"deleted":3}}`, rec.Body.String())
}

func TestRouterPaymentSelectionRoutes(t *testing.T) {
	r := newTestRouter(&fakeLessonSrv{})

	for _, path := range []string{"/api/payments/auto-select", "/api/payments/selection/toggle"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"payerType":"student","payerId":"`+testStudentID+`","amount":"10"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer valid")
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
