package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-desk-api/internal/dto"
	"github.com/noah-isme/tutor-desk-api/internal/models"
	"github.com/noah-isme/tutor-desk-api/internal/service"
	"github.com/noah-isme/tutor-desk-api/pkg/response"
)

type paymentService interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error)
	Get(ctx context.Context, id string) (*models.Payment, error)
	Lessons(ctx context.Context, id string) ([]string, error)
	Create(ctx context.Context, req service.CreatePaymentRequest) (*models.Payment, error)
	Update(ctx context.Context, id string, req service.UpdatePaymentRequest) (*models.Payment, error)
	Delete(ctx context.Context, id string) error
	Candidates(ctx context.Context, payer models.Payer, showAll bool, selected []string) (*dto.CandidatesResponse, error)
	Toggle(ctx context.Context, req dto.ToggleSelectionRequest) (*dto.Selection, error)
	AutoSelect(ctx context.Context, req dto.AutoSelectRequest) (*dto.AutoSelectResponse, error)
}

// PaymentHandler exposes payment recording and lesson allocation endpoints.
type PaymentHandler struct {
	service paymentService
}

// NewPaymentHandler constructs handler.
func NewPaymentHandler(svc paymentService) *PaymentHandler {
	return &PaymentHandler{service: svc}
}

// List godoc
// @Summary List payments
// @Tags Payments
// @Produce json
// @Param studentId query string false "Student payer"
// @Param parentId query string false "Parent payer"
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	studentID, err := idQuery(c, "studentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	parentID, err := idQuery(c, "parentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	payments, err := h.service.List(c.Request.Context(), models.PaymentFilter{StudentID: studentID, ParentID: parentID})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, payments)
}

// Get godoc
// @Summary Get payment
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	payment, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, payment)
}

// Lessons godoc
// @Summary Lessons linked to a payment
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Router /payments/{id}/lessons [get]
func (h *PaymentHandler) Lessons(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	ids, err := h.service.Lessons(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, ids)
}

// Create godoc
// @Summary Record payment
// @Description Records a payment and marks the linked lessons as paid
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.CreatePaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req service.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid payload"))
		return
	}
	payment, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// Update godoc
// @Summary Update payment
// @Description Omitting lessonIds keeps the current links
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Payment ID"
// @Param payload body service.UpdatePaymentRequest true "Payment payload"
// @Success 200 {object} response.Envelope
// @Router /payments/{id} [put]
func (h *PaymentHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid payload"))
		return
	}
	payment, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, payment)
}

// Delete godoc
// @Summary Delete payment
// @Tags Payments
// @Param id path string true "Payment ID"
// @Success 204
// @Router /payments/{id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
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

// Candidates godoc
// @Summary Lessons available to a payer
// @Description Pending lessons of the payer's students; showAll includes every status
// @Tags Payments
// @Produce json
// @Param payerType query string true "student or parent"
// @Param payerId query string true "Payer ID"
// @Param showAll query bool false "Include settled lessons"
// @Param selected query string false "Comma separated selected lesson ids"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /payments/candidates [get]
func (h *PaymentHandler) Candidates(c *gin.Context) {
	var payer models.Payer
	if err := c.ShouldBindQuery(&payer); err != nil {
		response.Error(c, invalidPayload(err, "invalid query parameters"))
		return
	}
	result, err := h.service.Candidates(c.Request.Context(), payer, boolQuery(c, "showAll"), selectedQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Toggle godoc
// @Summary Toggle a lesson in a payment selection
// @Description Returns the selection with the lesson flipped and the amount recomputed
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body dto.ToggleSelectionRequest true "Selection payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /payments/selection/toggle [post]
func (h *PaymentHandler) Toggle(c *gin.Context) {
	var req dto.ToggleSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid payload"))
		return
	}
	selection, err := h.service.Toggle(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, selection)
}

// AutoSelect godoc
// @Summary Select lessons matching an amount
// @Description Greedily picks pending lessons, most recent first, whose total fits the amount
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body dto.AutoSelectRequest true "Auto-select payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /payments/auto-select [post]
func (h *PaymentHandler) AutoSelect(c *gin.Context) {
	var req dto.AutoSelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid payload"))
		return
	}
	result, err := h.service.AutoSelect(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// selectedQuery accepts repeated or comma separated selected ids.
func selectedQuery(c *gin.Context) []string {
	var out []string
	for _, raw := range c.QueryArray("selected") {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}
