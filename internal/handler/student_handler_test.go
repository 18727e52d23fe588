package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-desk-api/internal/models"
	"github.com/noah-isme/tutor-desk-api/internal/service"
	appErrors "github.com/noah-isme/tutor-desk-api/pkg/errors"
)

type fakeStudentSrv struct {
	filter  models.StudentFilter
	created service.StudentRequest
	err     error
}

func (f *fakeStudentSrv) List(_ context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, bool, error) {
	f.filter = filter
	var pagination *models.Pagination
	if filter.PageSize > 0 {
		pagination = &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: 1}
	}
	return []models.Student{{ID: "s-1", FirstName: "Ada"}}, pagination, false, f.err
}

func (f *fakeStudentSrv) Get(_ context.Context, id string) (*models.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Student{ID: id}, nil
}

func (f *fakeStudentSrv) Create(_ context.Context, req service.StudentRequest) (*models.Student, error) {
	f.created = req
	return &models.Student{ID: "s-2", PublicID: "123456", FirstName: req.FirstName}, f.err
}

func (f *fakeStudentSrv) Update(_ context.Context, id string, req service.StudentRequest) (*models.Student, error) {
	return &models.Student{ID: id, FirstName: req.FirstName}, f.err
}

func (f *fakeStudentSrv) Delete(context.Context, string) error { return f.err }

func TestStudentHandlerListUnpagedByDefault(t *testing.T) {
	srv := &fakeStudentSrv{}
	h := NewStudentHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/students?q=%20ada%20", nil)
	h.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ada", srv.filter.Search)
	assert.Zero(t, srv.filter.PageSize)
	assert.NotContains(t, rec.Body.String(), "pagination")
	assert.Equal(t, false, decodeEnvelope(t, rec).Meta["cacheHit"])
}

func TestStudentHandlerListPaged(t *testing.T) {
	srv := &fakeStudentSrv{}
	h := NewStudentHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/students?page=2&limit=10", nil)
	h.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, srv.filter.Page)
	assert.Equal(t, 10, srv.filter.PageSize)
	assert.Contains(t, rec.Body.String(), `"pageSize":10`)

	c, rec = newTestContext(http.MethodGet, "/students?limit=0", nil)
	h.List(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentHandlerCreate(t *testing.T) {
	srv := &fakeStudentSrv{}
	h := NewStudentHandler(srv)

	c, rec := newTestContext(http.MethodPost, "/students", map[string]interface{}{"firstName": "Grace", "color": "#abc"})
	h.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Grace", srv.created.FirstName)
	require.NotNil(t, srv.created.Color)
	assert.Equal(t, "#abc", *srv.created.Color)
}

func TestStudentHandlerGetNotFound(t *testing.T) {
	h := NewStudentHandler(&fakeStudentSrv{err: appErrors.Clone(appErrors.ErrNotFound, "student not found")})

	c, rec := newTestContext(http.MethodGet, "/students/"+missingID, nil)
	c.AddParam("id", missingID)
	h.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
