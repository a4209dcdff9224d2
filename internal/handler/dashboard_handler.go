package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Cruzitooo/salsa-studio-api/internal/middleware"
	"github.com/Cruzitooo/salsa-studio-api/internal/service"
	"github.com/Cruzitooo/salsa-studio-api/pkg/response"
)

// DashboardHandler exposes the aggregated payments board.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Payments godoc
// @Summary Month-at-a-glance payment overview per category
// @Tags Dashboard
// @Produce json
// @Param year query int false "Year, defaults to current"
// @Param month query int false "Month, defaults to current"
// @Success 200 {object} response.Envelope
// @Router /dashboard/payments [get]
func (h *DashboardHandler) Payments(c *gin.Context) {
	year, month := yearMonthQuery(c)
	overview, hit, err := h.dashboard.PaymentsOverview(c.Request.Context(), year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, overview, nil, middleware.ExtractMeta(c))
}
