package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Cruzitooo/salsa-studio-api/internal/models"
	"github.com/Cruzitooo/salsa-studio-api/internal/service"
	appErrors "github.com/Cruzitooo/salsa-studio-api/pkg/errors"
	"github.com/Cruzitooo/salsa-studio-api/pkg/response"
)

// PaymentHandler exposes payment endpoints. Writes invalidate the cached
// dashboard overview.
type PaymentHandler struct {
	payments  *service.PaymentService
	export    *service.ExportService
	dashboard *service.DashboardService
	metrics   *service.MetricsService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService, export *service.ExportService, dashboard *service.DashboardService, metrics *service.MetricsService) *PaymentHandler {
	return &PaymentHandler{payments: payments, export: export, dashboard: dashboard, metrics: metrics}
}

// History godoc
// @Summary List one month of payments, card and cash merged
// @Tags Payments
// @Produce json
// @Param year query int false "Year, defaults to current"
// @Param month query int false "Month, defaults to current"
// @Param category query string false "Category name, or 'all'"
// @Param source query string false "Source filter: card or cash"
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *PaymentHandler) History(c *gin.Context) {
	year, month := yearMonthQuery(c)
	history, err := h.payments.History(c.Request.Context(), service.PaymentHistoryRequest{
		Year:     year,
		Month:    month,
		Category: c.DefaultQuery("category", models.CategoryFilterAll),
		Source:   c.Query("source"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// RecordCash godoc
// @Summary Register a cash payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.RecordCashRequest true "Cash payment payload"
// @Success 201 {object} response.Envelope
// @Router /payments/cash [post]
func (h *PaymentHandler) RecordCash(c *gin.Context) {
	var req service.RecordCashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	payment, err := h.payments.RecordCash(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordPayment(string(models.PaymentSourceCash))
	h.dashboard.Invalidate(c.Request.Context())
	response.Created(c, payment)
}

// CreateLink godoc
// @Summary Request a payment link and open a pending card payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.CreateLinkRequest true "Payment link payload"
// @Success 201 {object} response.Envelope
// @Router /payments/links [post]
func (h *PaymentHandler) CreateLink(c *gin.Context) {
	var req service.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	link, err := h.payments.CreatePaymentLink(c.Request.Context(), req)
	if err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrGateway.Code {
			h.metrics.RecordPaylinkFailure()
		}
		response.Error(c, err)
		return
	}
	h.metrics.RecordPayment(string(models.PaymentSourceCard))
	h.dashboard.Invalidate(c.Request.Context())
	response.Created(c, link)
}

// StudentBalance godoc
// @Summary Get a student's cumulative payments and classes covered
// @Tags Payments
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/payments/balance [get]
func (h *PaymentHandler) StudentBalance(c *gin.Context) {
	balance, err := h.payments.StudentBalance(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, balance, nil)
}

// Export godoc
// @Summary Download one month of payments as CSV or PDF
// @Tags Payments
// @Produce octet-stream
// @Param year query int false "Year, defaults to current"
// @Param month query int false "Month, defaults to current"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} binary
// @Router /payments/export [get]
func (h *PaymentHandler) Export(c *gin.Context) {
	year, month := yearMonthQuery(c)
	switch c.DefaultQuery("format", "csv") {
	case "pdf":
		body, filename, err := h.export.PaymentsPDF(c.Request.Context(), year, month)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.File(c, "application/pdf", filename, body)
	case "csv":
		body, filename, err := h.export.PaymentsCSV(c.Request.Context(), year, month)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.File(c, "text/csv", filename, body)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}
