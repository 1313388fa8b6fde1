package api

import (
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/report"
	"alcyxob/trainer-app/internal/repository"
	"alcyxob/trainer-app/internal/service"
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// --- DTOs ---

type PaymentRequest struct {
	StudentID   string               `json:"studentId" binding:"required"`
	PlanID      *string              `json:"planId"`
	AmountCents int64                `json:"amountCents" binding:"required"`
	Currency    string               `json:"currency"`
	Status      domain.PaymentStatus `json:"status"`
	Method      string               `json:"method"`
	Description string               `json:"description"`
	DueDate     string               `json:"dueDate" binding:"required"`
	PaidAt      string               `json:"paidAt"`
}

type MarkPaidRequest struct {
	PaidAt string `json:"paidAt"`
	Method string `json:"method"`
}

type PaymentResponse struct {
	ID          string               `json:"id"`
	StudentID   string               `json:"studentId"`
	PlanID      *string              `json:"planId,omitempty"`
	AmountCents int64                `json:"amountCents"`
	Currency    string               `json:"currency"`
	Status      domain.PaymentStatus `json:"status"`
	Overdue     bool                 `json:"overdue"`
	Method      string               `json:"method,omitempty"`
	Description string               `json:"description,omitempty"`
	DueDate     time.Time            `json:"dueDate"`
	PaidAt      *time.Time           `json:"paidAt,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

func (r *PaymentRequest) toInput() (service.PaymentInput, error) {
	due, err := parseDate("dueDate", r.DueDate)
	if err != nil {
		return service.PaymentInput{}, err
	}
	paidAt, err := parseDate("paidAt", r.PaidAt)
	if err != nil {
		return service.PaymentInput{}, err
	}
	return service.PaymentInput{
		StudentID:   r.StudentID,
		PlanID:      r.PlanID,
		AmountCents: r.AmountCents,
		Currency:    r.Currency,
		Status:      r.Status,
		Method:      r.Method,
		Description: r.Description,
		DueDate:     *due,
		PaidAt:      paidAt,
	}, nil
}

// paymentFilter reads the listing/export query parameters.
func paymentFilter(c *gin.Context) (repository.PaymentFilter, error) {
	page, err := parsePage(c)
	if err != nil {
		return repository.PaymentFilter{}, err
	}
	from, err := queryDate(c, "from")
	if err != nil {
		return repository.PaymentFilter{}, err
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return repository.PaymentFilter{}, err
	}
	return repository.PaymentFilter{
		StudentID: c.Query("studentId"),
		PlanID:    c.Query("planId"),
		Status:    domain.PaymentStatus(c.Query("status")),
		From:      from,
		To:        to,
		Page:      page,
	}, nil
}

// --- Handler Methods ---

// ListPayments godoc
// @Summary List payments
// @Description Sorted by due date, newest first. from/to bound the due date (to is exclusive).
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Page size (max 100)"
// @Param studentId query string false "Student ID"
// @Param planId query string false "Plan ID"
// @Param status query string false "pending, paid or cancelled"
// @Param from query string false "Due on or after (YYYY-MM-DD)"
// @Param to query string false "Due before (YYYY-MM-DD)"
// @Success 200 {object} ListResponse[PaymentResponse]
// @Router /payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	filter, err := paymentFilter(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	payments, total, err := h.paymentService.List(c.Request.Context(), id, filter)
	if err != nil {
		respondError(c, err, "list payments")
		return
	}
	c.JSON(http.StatusOK, newListResponse(MapPaymentsToResponse(payments, time.Now()), total, filter.Page))
}

// CreatePayment godoc
// @Summary Record a payment
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payment body PaymentRequest true "Payment"
// @Success 201 {object} PaymentResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Router /payments [post]
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	in, err := req.toInput()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	payment, err := h.paymentService.Create(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err, "create payment")
		return
	}
	c.JSON(http.StatusCreated, MapPaymentToResponse(payment, time.Now()))
}

// GetPayment godoc
// @Summary Get a payment
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Success 200 {object} PaymentResponse
// @Failure 404 {object} gin.H "Payment not found"
// @Router /payments/{id} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	payment, err := h.paymentService.Get(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondError(c, err, "load payment")
		return
	}
	c.JSON(http.StatusOK, MapPaymentToResponse(payment, time.Now()))
}

// UpdatePayment godoc
// @Summary Update a payment
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Param payment body PaymentRequest true "Payment"
// @Success 200 {object} PaymentResponse
// @Router /payments/{id} [put]
func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	in, err := req.toInput()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	payment, err := h.paymentService.Update(c.Request.Context(), id, c.Param("id"), in)
	if err != nil {
		respondError(c, err, "update payment")
		return
	}
	c.JSON(http.StatusOK, MapPaymentToResponse(payment, time.Now()))
}

// DeletePayment godoc
// @Summary Delete a payment
// @Tags Payments
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Success 204
// @Router /payments/{id} [delete]
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	if err := h.paymentService.Delete(c.Request.Context(), id, c.Param("id")); err != nil {
		respondError(c, err, "delete payment")
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkPaid godoc
// @Summary Mark a payment as paid
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Param request body MarkPaidRequest false "Payment date (default now) and method"
// @Success 200 {object} PaymentResponse
// @Failure 409 {object} gin.H "Payment is cancelled"
// @Router /payments/{id}/pay [post]
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	var req MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	paidAt, err := parseDate("paidAt", req.PaidAt)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	payment, err := h.paymentService.MarkPaid(c.Request.Context(), id, c.Param("id"), paidAt, req.Method)
	if err != nil {
		respondError(c, err, "mark payment as paid")
		return
	}
	c.JSON(http.StatusOK, MapPaymentToResponse(payment, time.Now()))
}

// DownloadExport godoc
// @Summary Download payments as an Excel workbook
// @Description Takes the same filters as the listing; pagination is ignored.
// @Tags Payments
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} binary
// @Router /payments/export.xlsx [get]
func (h *PaymentHandler) DownloadExport(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	filter, err := paymentFilter(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	n, err := h.paymentService.Export(c.Request.Context(), id, filter, &buf)
	if err != nil {
		respondError(c, err, "export payments")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="payments.xlsx"`)
	c.Header("X-Export-Rows", strconv.Itoa(n))
	c.Data(http.StatusOK, report.XLSXContentType, buf.Bytes())
}

// ExportToStorage godoc
// @Summary Export payments to object storage
// @Description Uploads the workbook and returns a temporary download link.
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Success 201 {object} service.ExportResult
// @Failure 503 {object} gin.H "Storage not configured"
// @Router /payments/export [post]
func (h *PaymentHandler) ExportToStorage(c *gin.Context) {
	id, ok := trainerID(c)
	if !ok {
		return
	}
	filter, err := paymentFilter(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.paymentService.ExportToStorage(c.Request.Context(), id, filter)
	if err != nil {
		respondError(c, err, "export payments")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// MapPaymentToResponse converts a payment; overdue is evaluated at now.
func MapPaymentToResponse(p *domain.Payment, now time.Time) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		StudentID:   p.StudentID,
		PlanID:      p.PlanID,
		AmountCents: p.AmountCents,
		Currency:    p.Currency,
		Status:      p.Status,
		Overdue:     p.IsOverdue(now),
		Method:      p.Method,
		Description: p.Description,
		DueDate:     p.DueDate,
		PaidAt:      p.PaidAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func MapPaymentsToResponse(payments []domain.Payment, now time.Time) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = MapPaymentToResponse(&payments[i], now)
	}
	return out
}
