package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-desk-api/internal/models"
	"github.com/noah-isme/tutor-desk-api/internal/service"
	"github.com/noah-isme/tutor-desk-api/pkg/response"
)

type recurringLessonService interface {
	Create(ctx context.Context, req service.RecurringLessonRequest) (*service.RecurringLessonResult, error)
	List(ctx context.Context) ([]models.RecurringLesson, error)
	Get(ctx context.Context, id string) (*models.RecurringLesson, error)
	Delete(ctx context.Context, id string) error
}

// RecurringLessonHandler exposes recurrence generation endpoints.
type RecurringLessonHandler struct {
	service recurringLessonService
}

// NewRecurringLessonHandler constructs handler.
func NewRecurringLessonHandler(svc recurringLessonService) *RecurringLessonHandler {
	return &RecurringLessonHandler{service: svc}
}

// Create godoc
// @Summary Repeat a lesson
// @Description Generates weekly or biweekly copies of the template lesson up to and including the end date
// @Tags Recurring Lessons
// @Accept json
// @Produce json
// @Param payload body service.RecurringLessonRequest true "Recurrence payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /recurring-lessons [post]
func (h *RecurringLessonHandler) Create(c *gin.Context) {
	var req service.RecurringLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid payload"))
		return
	}
	result, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List recurrence markers
// @Tags Recurring Lessons
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /recurring-lessons [get]
func (h *RecurringLessonHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Get godoc
// @Summary Get recurrence marker
// @Tags Recurring Lessons
// @Produce json
// @Param id path string true "Marker ID"
// @Success 200 {object} response.Envelope
// @Router /recurring-lessons/{id} [get]
func (h *RecurringLessonHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, item)
}

// Delete godoc
// @Summary Delete recurrence marker
// @Description Generated lessons are kept
// @Tags Recurring Lessons
// @Param id path string true "Marker ID"
// @Success 204
// @Router /recurring-lessons/{id} [delete]
func (h *RecurringLessonHandler) Delete(c *gin.Context) {
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
