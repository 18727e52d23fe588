package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-desk-api/internal/models"
	"github.com/noah-isme/tutor-desk-api/internal/service"
	"github.com/noah-isme/tutor-desk-api/pkg/response"
)

type noteService interface {
	List(ctx context.Context, filter models.NoteFilter) ([]models.Note, error)
	Get(ctx context.Context, id string) (*models.Note, error)
	Create(ctx context.Context, req service.NoteRequest) (*models.Note, error)
	Update(ctx context.Context, id string, req service.NoteRequest) (*models.Note, error)
	Delete(ctx context.Context, id string) error
}

// NoteHandler exposes tutor note endpoints.
type NoteHandler struct {
	service noteService
}

// NewNoteHandler constructs handler.
func NewNoteHandler(svc noteService) *NoteHandler {
	return &NoteHandler{service: svc}
}

// List godoc
// @Summary List notes
// @Tags Notes
// @Produce json
// @Param studentId query string false "Student filter"
// @Success 200 {object} response.Envelope
// @Router /notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	studentID, err := idQuery(c, "studentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	notes, err := h.service.List(c.Request.Context(), models.NoteFilter{StudentID: studentID})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, notes)
}

// Get godoc
// @Summary Get note
// @Tags Notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} response.Envelope
// @Router /notes/{id} [get]
func (h *NoteHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	note, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, note)
}

// Create godoc
// @Summary Create note
// @Tags Notes
// @Accept json
// @Produce json
// @Param payload body service.NoteRequest true "Note payload"
// @Success 201 {object} response.Envelope
// @Router /notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	var req service.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid payload"))
		return
	}
	note, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, note)
}

// Update godoc
// @Summary Update note
// @Tags Notes
// @Accept json
// @Produce json
// @Param id path string true "Note ID"
// @Param payload body service.NoteRequest true "Note payload"
// @Success 200 {object} response.Envelope
// @Router /notes/{id} [put]
func (h *NoteHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid payload"))
		return
	}
	note, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, note)
}

// Delete godoc
// @Summary Delete note
// @Tags Notes
// @Param id path string true "Note ID"
// @Success 204
// @Router /notes/{id} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
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
