package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Cruzitooo/salsa-studio-api/internal/service"
	appErrors "github.com/Cruzitooo/salsa-studio-api/pkg/errors"
	"github.com/Cruzitooo/salsa-studio-api/pkg/response"
)

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	metrics    *service.MetricsService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService, metrics *service.MetricsService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, metrics: metrics}
}

// Find godoc
// @Summary Get the attendance record for one student, category and day
// @Tags Attendance
// @Produce json
// @Param student_id query string true "Student ID"
// @Param category_id query string true "Category ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) Find(c *gin.Context) {
	record, err := h.attendance.Find(c.Request.Context(), c.Query("student_id"), c.Query("category_id"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Upsert godoc
// @Summary Set the attendance state for one class day
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.UpsertAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Router /attendance [put]
func (h *AttendanceHandler) Upsert(c *gin.Context) {
	var req service.UpsertAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.attendance.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordAttendanceWrite("upsert")
	response.JSON(c, http.StatusOK, record, nil)
}

// Toggle godoc
// @Summary Flip the attendance state for one class day
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.ToggleAttendanceRequest true "Attendance key"
// @Success 200 {object} response.Envelope
// @Router /attendance/toggle [post]
func (h *AttendanceHandler) Toggle(c *gin.Context) {
	var req service.ToggleAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.attendance.Toggle(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordAttendanceWrite("toggle")
	response.JSON(c, http.StatusOK, record, nil)
}

// MonthSummary godoc
// @Summary Count attended and absent days for a student in one month
// @Tags Attendance
// @Produce json
// @Param id path string true "Student ID"
// @Param category_id query string true "Category ID"
// @Param year query int false "Year, defaults to current"
// @Param month query int false "Month, defaults to current"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/attendance/summary [get]
func (h *AttendanceHandler) MonthSummary(c *gin.Context) {
	year, month := yearMonthQuery(c)
	summary, err := h.attendance.MonthSummary(c.Request.Context(), c.Param("id"), c.Query("category_id"), year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// MonthHistory godoc
// @Summary List a student's attendance records for one month
// @Tags Attendance
// @Produce json
// @Param id path string true "Student ID"
// @Param category_id query string true "Category ID"
// @Param year query int false "Year, defaults to current"
// @Param month query int false "Month, defaults to current"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/attendance/history [get]
func (h *AttendanceHandler) MonthHistory(c *gin.Context) {
	year, month := yearMonthQuery(c)
	records, err := h.attendance.MonthHistory(c.Request.Context(), c.Param("id"), c.Query("category_id"), year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}
