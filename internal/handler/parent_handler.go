package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-desk-api/internal/models"
	"github.com/noah-isme/tutor-desk-api/internal/service"
	"github.com/noah-isme/tutor-desk-api/pkg/response"
)

type parentService interface {
	List(ctx context.Context, filter models.ParentFilter) ([]models.Parent, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Parent, error)
	Create(ctx context.Context, req service.ParentRequest) (*models.Parent, error)
	Update(ctx context.Context, id string, req service.ParentRequest) (*models.Parent, error)
	Delete(ctx context.Context, id string) error
}

// ParentHandler exposes parent endpoints.
type ParentHandler struct {
	service parentService
}

// NewParentHandler constructs handler.
func NewParentHandler(svc parentService) *ParentHandler {
	return &ParentHandler{service: svc}
}

// List godoc
// @Summary List parents
// @Tags Parents
// @Produce json
// @Param q query string false "Search by name or email"
// @Param page query int false "Page number"
// @Param limit query int false "Page size; omit for the full list"
// @Success 200 {object} response.Envelope
// @Router /parents [get]
func (h *ParentHandler) List(c *gin.Context) {
	page, size, err := pagingQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	parents, pagination, err := h.service.List(c.Request.Context(), models.ParentFilter{
		Search:   strings.TrimSpace(c.Query("q")),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, parents, pagination)
}

// Get godoc
// @Summary Get parent
// @Tags Parents
// @Produce json
// @Param id path string true "Parent ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /parents/{id} [get]
func (h *ParentHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	parent, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, parent)
}

// Create godoc
// @Summary Create parent
// @Tags Parents
// @Accept json
// @Produce json
// @Param payload body service.ParentRequest true "Parent payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /parents [post]
func (h *ParentHandler) Create(c *gin.Context) {
	var req service.ParentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid payload"))
		return
	}
	parent, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, parent)
}

// Update godoc
// @Summary Update parent
// @Tags Parents
// @Accept json
// @Produce json
// @Param id path string true "Parent ID"
// @Param payload body service.ParentRequest true "Parent payload"
// @Success 200 {object} response.Envelope
// @Router /parents/{id} [put]
func (h *ParentHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.ParentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid payload"))
		return
	}
	parent, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, parent)
}

// Delete godoc
// @Summary Delete parent
// @Description Students keep existing and lose their parent link
// @Tags Parents
// @Param id path string true "Parent ID"
// @Success 204
// @Router /parents/{id} [delete]
func (h *ParentHandler) Delete(c *gin.Context) {
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
