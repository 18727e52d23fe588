package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-desk-api/internal/dto"
	"github.com/noah-isme/tutor-desk-api/internal/models"
	"github.com/noah-isme/tutor-desk-api/internal/service"
	appErrors "github.com/noah-isme/tutor-desk-api/pkg/errors"
	"github.com/noah-isme/tutor-desk-api/pkg/export"
)

type fakeLessonSrv struct {
	lessons    []models.Lesson
	cached     bool
	lastFilter models.LessonFilter
	seriesID   string
	deleted    int64
	bulk       service.BulkDeleteRequest
	agendaNow  time.Time
	err        error
}

func (f *fakeLessonSrv) List(_ context.Context, filter models.LessonFilter) ([]models.Lesson, bool, error) {
	f.lastFilter = filter
	return f.lessons, f.cached, f.err
}

func (f *fakeLessonSrv) Get(_ context.Context, id string) (*models.Lesson, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Lesson{ID: id}, nil
}

func (f *fakeLessonSrv) Create(_ context.Context, req service.LessonRequest) (*models.Lesson, error) {
	return &models.Lesson{ID: "new", StudentID: req.StudentID, Subject: req.Subject}, f.err
}

func (f *fakeLessonSrv) Update(_ context.Context, id string, req service.LessonRequest) (*models.Lesson, error) {
	return &models.Lesson{ID: id, Subject: req.Subject}, f.err
}

func (f *fakeLessonSrv) Delete(context.Context, string) error { return f.err }

func (f *fakeLessonSrv) DeleteSeries(_ context.Context, id string) (int64, error) {
	f.seriesID = id
	return f.deleted, f.err
}

func (f *fakeLessonSrv) BulkDelete(_ context.Context, req service.BulkDeleteRequest) (int64, error) {
	f.bulk = req
	return f.deleted, f.err
}

func (f *fakeLessonSrv) Agenda(_ context.Context, now time.Time) (*dto.Agenda, error) {
	f.agendaNow = now
	return &dto.Agenda{}, f.err
}

type fakeExporter struct {
	format export.Format
	result *service.ExportResult
	err    error
}

func (f *fakeExporter) Lessons(_ context.Context, format export.Format, _ models.LessonFilter) (*service.ExportResult, error) {
	f.format = format
	return f.result, f.err
}

func TestLessonHandlerListParsesFilter(t *testing.T) {
	srv := &fakeLessonSrv{lessons: []models.Lesson{{ID: "l-1"}}, cached: true}
	h := NewLessonHandler(srv, &fakeExporter{})

	c, rec := newTestContext(http.MethodGet, "/lessons?studentId="+testStudentID+"&from=2024-03-01&to=2024-03-31T23:59:59Z&status=pending", nil)
	h.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testStudentID, srv.lastFilter.StudentID)
	assert.Equal(t, models.PaymentStatusPending, srv.lastFilter.Status)
	require.NotNil(t, srv.lastFilter.From)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *srv.lastFilter.From)
	require.NotNil(t, srv.lastFilter.To)
	assert.Equal(t, 31, srv.lastFilter.To.Day())

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope.Meta["cacheHit"])
	var lessons []models.Lesson
	decodeData(t, rec, &lessons)
	assert.Len(t, lessons, 1)
}

func TestLessonHandlerListRejectsBadDate(t *testing.T) {
	srv := &fakeLessonSrv{}
	h := NewLessonHandler(srv, &fakeExporter{})

	c, rec := newTestContext(http.MethodGet, "/lessons?from=yesterday", nil)
	h.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Contains(t, envelope.Error.Details, "from")
}

func TestLessonHandlerDeleteSeries(t *testing.T) {
	srv := &fakeLessonSrv{deleted: 4}
	h := NewLessonHandler(srv, &fakeExporter{})

	c, rec := newTestContext(http.MethodDelete, "/lessons/"+testLessonID+"/series", nil)
	c.AddParam("id", testLessonID)
	h.DeleteSeries(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testLessonID, srv.seriesID)
	var body deleteCountResponse
	decodeData(t, rec, &body)
	assert.EqualValues(t, 4, body.Deleted)
}

func TestLessonHandlerDeleteSeriesNotFound(t *testing.T) {
	srv := &fakeLessonSrv{err: appErrors.Clone(appErrors.ErrNotFound, "lesson not found")}
	h := NewLessonHandler(srv, &fakeExporter{})

	c, rec := newTestContext(http.MethodDelete, "/lessons/"+missingID+"/series", nil)
	c.AddParam("id", missingID)
	h.DeleteSeries(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLessonHandlerBulkDelete(t *testing.T) {
	srv := &fakeLessonSrv{deleted: 2}
	h := NewLessonHandler(srv, &fakeExporter{})

	c, rec := newTestContext(http.MethodPost, "/lessons/bulk-delete", map[string]interface{}{"ids": []string{"a", "b"}})
	h.BulkDelete(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a", "b"}, srv.bulk.IDs)

	c, rec = newTestContext(http.MethodPost, "/lessons/bulk-delete", "{not json")
	h.BulkDelete(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLessonHandlerDeleteReturnsNoContent(t *testing.T) {
	h := NewLessonHandler(&fakeLessonSrv{}, &fakeExporter{})

	c, rec := newTestContext(http.MethodDelete, "/lessons/"+testLessonID, nil)
	c.AddParam("id", testLessonID)
	h.Delete(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLessonHandlerAgendaUsesClock(t *testing.T) {
	srv := &fakeLessonSrv{}
	h := NewLessonHandler(srv, &fakeExporter{})
	fixed := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	c, rec := newTestContext(http.MethodGet, "/lessons/agenda", nil)
	h.Agenda(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fixed, srv.agendaNow)
}

func TestLessonHandlerExport(t *testing.T) {
	exporter := &fakeExporter{result: &service.ExportResult{
		Filename:    "lessons-20240506-0900.pdf",
		ContentType: "application/pdf",
		Payload:     []byte("%PDF-1.3"),
	}}
	h := NewLessonHandler(&fakeLessonSrv{}, exporter)

	c, rec := newTestContext(http.MethodGet, "/lessons/export?format=PDF", nil)
	h.Export(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.FormatPDF, exporter.format)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="lessons-20240506-0900.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3", rec.Body.String())
}

func TestLessonHandlerRejectsMalformedIDs(t *testing.T) {
	srv := &fakeLessonSrv{deleted: 1}
	h := NewLessonHandler(srv, &fakeExporter{})

	c, rec := newTestContext(http.MethodDelete, "/lessons/l-7/series", nil)
	c.AddParam("id", "l-7")
	h.DeleteSeries(c)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec).Error.Details, "id")
	assert.Empty(t, srv.seriesID)

	c, rec = newTestContext(http.MethodGet, "/lessons?studentId=s-1", nil)
	h.List(c)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec).Error.Details, "studentId")
}
