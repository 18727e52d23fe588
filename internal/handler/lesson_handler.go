package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-desk-api/internal/dto"
	"github.com/noah-isme/tutor-desk-api/internal/middleware"
	"github.com/noah-isme/tutor-desk-api/internal/models"
	"github.com/noah-isme/tutor-desk-api/internal/service"
	"github.com/noah-isme/tutor-desk-api/pkg/export"
	"github.com/noah-isme/tutor-desk-api/pkg/response"
)

type lessonService interface {
	List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, bool, error)
	Get(ctx context.Context, id string) (*models.Lesson, error)
	Create(ctx context.Context, req service.LessonRequest) (*models.Lesson, error)
	Update(ctx context.Context, id string, req service.LessonRequest) (*models.Lesson, error)
	Delete(ctx context.Context, id string) error
	DeleteSeries(ctx context.Context, id string) (int64, error)
	BulkDelete(ctx context.Context, req service.BulkDeleteRequest) (int64, error)
	Agenda(ctx context.Context, now time.Time) (*dto.Agenda, error)
}

type lessonExporter interface {
	Lessons(ctx context.Context, format export.Format, filter models.LessonFilter) (*service.ExportResult, error)
}

// LessonHandler exposes lesson scheduling endpoints.
type LessonHandler struct {
	service  lessonService
	exporter lessonExporter
	now      func() time.Time
}

// NewLessonHandler constructs handler.
func NewLessonHandler(svc lessonService, exporter lessonExporter) *LessonHandler {
	return &LessonHandler{service: svc, exporter: exporter, now: time.Now}
}

type deleteCountResponse struct {
	Deleted int64 `json:"deleted"`
}

// List godoc
// @Summary List lessons
// @Tags Lessons
// @Produce json
// @Param studentId query string false "Student filter"
// @Param from query string false "Lower bound (RFC 3339 or YYYY-MM-DD)"
// @Param to query string false "Upper bound (RFC 3339 or YYYY-MM-DD)"
// @Param status query string false "Payment status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /lessons [get]
func (h *LessonHandler) List(c *gin.Context) {
	filter, err := lessonFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	lessons, cached, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	response.OK(c, lessons)
}

// Agenda godoc
// @Summary Lesson agenda
// @Description Lessons from the lookback window onward, grouped by calendar day
// @Tags Lessons
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /lessons/agenda [get]
func (h *LessonHandler) Agenda(c *gin.Context) {
	agenda, err := h.service.Agenda(c.Request.Context(), h.now())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, agenda)
}

// Export godoc
// @Summary Export lessons
// @Tags Lessons
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Param studentId query string false "Student filter"
// @Param from query string false "Lower bound"
// @Param to query string false "Upper bound"
// @Param status query string false "Payment status"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /lessons/export [get]
func (h *LessonHandler) Export(c *gin.Context) {
	filter, err := lessonFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format := export.Format(strings.ToLower(c.DefaultQuery("format", string(export.FormatCSV))))
	result, err := h.exporter.Lessons(c.Request.Context(), format, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}

// Get godoc
// @Summary Get lesson
// @Tags Lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lessons/{id} [get]
func (h *LessonHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	lesson, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, lesson)
}

// Create godoc
// @Summary Create lesson
// @Description Subject, price and meeting link fall back to the student's defaults
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body service.LessonRequest true "Lesson payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /lessons [post]
func (h *LessonHandler) Create(c *gin.Context) {
	var req service.LessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid payload"))
		return
	}
	lesson, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lesson)
}

// Update godoc
// @Summary Update lesson
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body service.LessonRequest true "Lesson payload"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id} [put]
func (h *LessonHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.LessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid payload"))
		return
	}
	lesson, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, lesson)
}

// Delete godoc
// @Summary Delete a single lesson
// @Tags Lessons
// @Param id path string true "Lesson ID"
// @Success 204
// @Router /lessons/{id} [delete]
func (h *LessonHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteSeries godoc
// @Summary Delete a lesson series
// @Description Removes every lesson of the student in the reference lesson's series from its start onwards (series id, or same weekday and time of day)
// @Tags Lessons
// @Produce json
// @Param id path string true "Reference lesson ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lessons/{id}/series [delete]
func (h *LessonHandler) DeleteSeries(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	deleted, err := h.service.DeleteSeries(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, deleteCountResponse{Deleted: deleted})
}

// BulkDelete godoc
// @Summary Delete several lessons
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body service.BulkDeleteRequest true "Lesson ids"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /lessons/bulk-delete [post]
func (h *LessonHandler) BulkDelete(c *gin.Context) {
	var req service.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid payload"))
		return
	}
	deleted, err := h.service.BulkDelete(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, deleteCountResponse{Deleted: deleted})
}

func lessonFilterFromQuery(c *gin.Context) (models.LessonFilter, error) {
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return models.LessonFilter{}, err
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return models.LessonFilter{}, err
	}
	studentID, err := idQuery(c, "studentId")
	if err != nil {
		return models.LessonFilter{}, err
	}
	return models.LessonFilter{
		StudentID: studentID,
		From:      from,
		To:        to,
		Status:    models.PaymentStatus(c.Query("status")),
	}, nil
}
