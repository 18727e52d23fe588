package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-desk-api/internal/models"
	"github.com/noah-isme/tutor-desk-api/internal/service"
	"github.com/noah-isme/tutor-desk-api/pkg/response"
)

type commentService interface {
	ListByLesson(ctx context.Context, lessonID string, visibleOnly bool) ([]models.Comment, error)
	Create(ctx context.Context, lessonID string, req service.CommentRequest) (*models.Comment, error)
	Update(ctx context.Context, id string, req service.CommentRequest) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// CommentHandler exposes lesson comment endpoints.
type CommentHandler struct {
	service commentService
}

// NewCommentHandler constructs handler.
func NewCommentHandler(svc commentService) *CommentHandler {
	return &CommentHandler{service: svc}
}

// List godoc
// @Summary List lesson comments
// @Tags Comments
// @Produce json
// @Param id path string true "Lesson ID"
// @Param visibleOnly query bool false "Only comments visible to the student"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lessons/{id}/comments [get]
func (h *CommentHandler) List(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	comments, err := h.service.ListByLesson(c.Request.Context(), id, boolQuery(c, "visibleOnly"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, comments)
}

// Create godoc
// @Summary Comment on a lesson
// @Tags Comments
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body service.CommentRequest true "Comment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /lessons/{id}/comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid payload"))
		return
	}
	comment, err := h.service.Create(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, comment)
}

// Update godoc
// @Summary Update comment
// @Tags Comments
// @Accept json
// @Produce json
// @Param id path string true "Comment ID"
// @Param payload body service.CommentRequest true "Comment payload"
// @Success 200 {object} response.Envelope
// @Router /comments/{id} [put]
func (h *CommentHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid payload"))
		return
	}
	comment, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, comment)
}

// Delete godoc
// @Summary Delete comment
// @Tags Comments
// @Param id path string true "Comment ID"
// @Success 204
// @Router /comments/{id} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
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
