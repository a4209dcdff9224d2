package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Cruzitooo/salsa-studio-api/internal/service"
	"github.com/Cruzitooo/salsa-studio-api/pkg/response"
)

// ScheduleHandler exposes session calendar endpoints.
type ScheduleHandler struct {
	schedule   *service.ScheduleService
	attendance *service.AttendanceService
}

// NewScheduleHandler constructs ScheduleHandler.
func NewScheduleHandler(schedule *service.ScheduleService, attendance *service.AttendanceService) *ScheduleHandler {
	return &ScheduleHandler{schedule: schedule, attendance: attendance}
}

// Sessions godoc
// @Summary List session dates of a category for one month
// @Tags Schedule
// @Produce json
// @Param id path string true "Category ID"
// @Param year query int false "Year, defaults to current"
// @Param month query int false "Month, defaults to current"
// @Success 200 {object} response.Envelope
// @Router /categories/{id}/sessions [get]
func (h *ScheduleHandler) Sessions(c *gin.Context) {
	year, month := yearMonthQuery(c)
	dates, err := h.schedule.SessionDates(c.Request.Context(), c.Param("id"), year, month)
	if err != nil {
		response.Error(c, err)
		return
	}

	formatted := make([]string, 0, len(dates))
	for _, date := range dates {
		formatted = append(formatted, date.Format("2006-01-02"))
	}
	response.JSON(c, http.StatusOK, gin.H{"year": year, "month": month, "dates": formatted}, nil)
}

// Roster godoc
// @Summary List active students of a category with their attendance for one day
// @Tags Schedule
// @Produce json
// @Param id path string true "Category ID"
// @Param date query string true "Session date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /categories/{id}/roster [get]
func (h *ScheduleHandler) Roster(c *gin.Context) {
	roster, err := h.attendance.Roster(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// yearMonthQuery reads year/month query params, falling back to the current
// month.
func yearMonthQuery(c *gin.Context) (int, int) {
	now := time.Now()
	year := now.Year()
	month := int(now.Month())
	if v, err := strconv.Atoi(c.Query("year")); err == nil {
		year = v
	}
	if v, err := strconv.Atoi(c.Query("month")); err == nil {
		month = v
	}
	return year, month
}
