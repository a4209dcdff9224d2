package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Cruzitooo/salsa-studio-api/internal/models"
	"github.com/Cruzitooo/salsa-studio-api/internal/service"
)

type fakeAttendanceRepo struct {
	records map[string]models.AttendanceRecord
}

func fakeKey(studentID, categoryID string, date time.Time) string {
	return fmt.Sprintf("%s|%s|%s", studentID, categoryID, date.Format("2006-01-02"))
}

func (f *fakeAttendanceRepo) FindByKey(ctx context.Context, studentID, categoryID string, date time.Time) (*models.AttendanceRecord, error) {
	if record, ok := f.records[fakeKey(studentID, categoryID, date)]; ok {
		return &record, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAttendanceRepo) Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	key := fakeKey(record.StudentID, record.CategoryID, record.Date)
	stored, ok := f.records[key]
	if !ok {
		stored = *record
		stored.ID = "att-" + key
	} else {
		stored.Attended = record.Attended
		stored.Justified = record.Justified
	}
	f.records[key] = stored
	return &stored, nil
}

func (f *fakeAttendanceRepo) ListMonth(ctx context.Context, studentID, categoryID string, year, month int) ([]models.AttendanceRecord, error) {
	return nil, nil
}

func (f *fakeAttendanceRepo) MonthSummary(ctx context.Context, studentID, categoryID string, year, month int) (*models.AttendanceMonthSummary, error) {
	return &models.AttendanceMonthSummary{}, nil
}

func (f *fakeAttendanceRepo) ListByCategoryAndDate(ctx context.Context, categoryID string, date time.Time) ([]models.AttendanceRecord, error) {
	return nil, nil
}

type fakeStudentLister struct{}

func (fakeStudentLister) ListActiveByCategory(ctx context.Context, categoryName string) ([]models.Student, error) {
	return nil, nil
}

type fakeCategoryReader struct{}

func (fakeCategoryReader) GetByID(ctx context.Context, id string) (*models.Category, error) {
	return &models.Category{ID: id, Name: "Lunes Salsa"}, nil
}

func newAttendanceRouter() (*gin.Engine, *fakeAttendanceRepo) {
	gin.SetMode(gin.TestMode)
	repo := &fakeAttendanceRepo{records: make(map[string]models.AttendanceRecord)}
	svc := service.NewAttendanceService(repo, fakeStudentLister{}, fakeCategoryReader{}, nil, zap.NewNop())
	h := NewAttendanceHandler(svc, nil)

	router := gin.New()
	router.GET("/attendance", h.Find)
	router.PUT("/attendance", h.Upsert)
	router.POST("/attendance/toggle", h.Toggle)
	return router, repo
}

func TestAttendanceToggleEndpoint(t *testing.T) {
	router, repo := newAttendanceRouter()

	body, _ := json.Marshal(service.ToggleAttendanceRequest{
		StudentID:  "student-1",
		CategoryID: "cat-1",
		Date:       "2025-09-01",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/attendance/toggle", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data models.AttendanceRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Attended)
	assert.Len(t, repo.records, 1)

	// Toggling the same key flips it rather than creating a second record.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/attendance/toggle", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.Attended)
	assert.Len(t, repo.records, 1)
}

func TestAttendanceFindMissingReturns404(t *testing.T) {
	router, _ := newAttendanceRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/attendance?student_id=s1&category_id=c1&date=2025-09-01", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAttendanceUpsertRejectsBadDate(t *testing.T) {
	router, _ := newAttendanceRouter()

	body, _ := json.Marshal(service.UpsertAttendanceRequest{
		StudentID:  "student-1",
		CategoryID: "cat-1",
		Date:       "not-a-date",
		Attended:   true,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/attendance", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
