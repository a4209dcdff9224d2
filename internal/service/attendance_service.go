package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Cruzitooo/salsa-studio-api/internal/models"
	appErrors "github.com/Cruzitooo/salsa-studio-api/pkg/errors"
)

const dayFormat = "2006-01-02"

type attendanceRepository interface {
	FindByKey(ctx context.Context, studentID, categoryID string, date time.Time) (*models.AttendanceRecord, error)
	Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error)
	ListMonth(ctx context.Context, studentID, categoryID string, year, month int) ([]models.AttendanceRecord, error)
	MonthSummary(ctx context.Context, studentID, categoryID string, year, month int) (*models.AttendanceMonthSummary, error)
	ListByCategoryAndDate(ctx context.Context, categoryID string, date time.Time) ([]models.AttendanceRecord, error)
}

type rosterStudentReader interface {
	ListActiveByCategory(ctx context.Context, categoryName string) ([]models.Student, error)
}

type attendanceCategoryReader interface {
	GetByID(ctx context.Context, id string) (*models.Category, error)
}

// AttendanceService keeps at most one attendance record per student,
// category and calendar day, and aggregates them per month.
type AttendanceService struct {
	records    attendanceRepository
	students   rosterStudentReader
	categories attendanceCategoryReader
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAttendanceService constructs the service with its dependencies.
func NewAttendanceService(records attendanceRepository, students rosterStudentReader, categories attendanceCategoryReader, v *validator.Validate, logger *zap.Logger) *AttendanceService {
	if v == nil {
		v = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		records:    records,
		students:   students,
		categories: categories,
		validator:  v,
		logger:     logger,
	}
}

// UpsertAttendanceRequest sets the attendance state for one class day.
type UpsertAttendanceRequest struct {
	StudentID  string `json:"student_id" validate:"required"`
	CategoryID string `json:"category_id" validate:"required"`
	Date       string `json:"date" validate:"required"`
	Attended   bool   `json:"attended"`
	Justified  *bool  `json:"justified,omitempty"`
}

// ToggleAttendanceRequest flips the attendance state for one class day.
type ToggleAttendanceRequest struct {
	StudentID  string `json:"student_id" validate:"required"`
	CategoryID string `json:"category_id" validate:"required"`
	Date       string `json:"date" validate:"required"`
}

// Find returns the record for the given key, or ErrNotFound when the day has
// no attendance registered yet.
func (s *AttendanceService) Find(ctx context.Context, studentID, categoryID, date string) (*models.AttendanceRecord, error) {
	day, err := parseDay(date)
	if err != nil {
		return nil, err
	}
	record, err := s.records.FindByKey(ctx, studentID, categoryID, day)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no attendance registered for this date")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load attendance record")
	}
	return record, nil
}

// Upsert writes the attendance state for the key, creating or replacing the
// single record for that day. An attended day carries no justification.
func (s *AttendanceService) Upsert(ctx context.Context, req UpsertAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	day, err := parseDay(req.Date)
	if err != nil {
		return nil, err
	}

	record := &models.AttendanceRecord{
		StudentID:  req.StudentID,
		CategoryID: req.CategoryID,
		Date:       day,
		Attended:   req.Attended,
	}
	if !req.Attended {
		justified := false
		if req.Justified != nil {
			justified = *req.Justified
		}
		record.Justified = &justified
	}

	saved, err := s.records.Upsert(ctx, record)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to save attendance record")
	}

	s.logger.Info("attendance changed",
		zap.String("student_id", saved.StudentID),
		zap.String("category_id", saved.CategoryID),
		zap.String("date", saved.Date.Format(dayFormat)),
		zap.Bool("attended", saved.Attended))
	return saved, nil
}

// Toggle flips the state for the key. A day with no record yet becomes an
// attendance; an existing record has its attended flag inverted in place.
func (s *AttendanceService) Toggle(ctx context.Context, req ToggleAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	day, err := parseDay(req.Date)
	if err != nil {
		return nil, err
	}

	existing, err := s.records.FindByKey(ctx, req.StudentID, req.CategoryID, day)
	if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load attendance record")
	}

	record := &models.AttendanceRecord{
		StudentID:  req.StudentID,
		CategoryID: req.CategoryID,
		Date:       day,
		Attended:   true,
	}
	if existing != nil {
		record.Attended = !existing.Attended
		record.Justified = existing.Justified
	}

	saved, err := s.records.Upsert(ctx, record)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to save attendance record")
	}

	s.logger.Info("attendance changed",
		zap.String("student_id", saved.StudentID),
		zap.String("category_id", saved.CategoryID),
		zap.String("date", saved.Date.Format(dayFormat)),
		zap.Bool("attended", saved.Attended))
	return saved, nil
}

// MonthSummary counts attended and absent days for a student in a month.
func (s *AttendanceService) MonthSummary(ctx context.Context, studentID, categoryID string, year, month int) (*models.AttendanceMonthSummary, error) {
	if err := ValidateYearMonth(year, month); err != nil {
		return nil, err
	}
	summary, err := s.records.MonthSummary(ctx, studentID, categoryID, year, month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to aggregate attendance")
	}
	return summary, nil
}

// MonthHistory lists a student's records for a month in ascending date order.
func (s *AttendanceService) MonthHistory(ctx context.Context, studentID, categoryID string, year, month int) ([]models.AttendanceRecord, error) {
	if err := ValidateYearMonth(year, month); err != nil {
		return nil, err
	}
	records, err := s.records.ListMonth(ctx, studentID, categoryID, year, month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list attendance")
	}
	return records, nil
}

// Roster lists the active students of a category for one class day, pairing
// each with their attendance record when one exists.
func (s *AttendanceService) Roster(ctx context.Context, categoryID, date string) ([]models.RosterEntry, error) {
	day, err := parseDay(date)
	if err != nil {
		return nil, err
	}
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load category")
	}

	students, err := s.students.ListActiveByCategory(ctx, category.Name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list students")
	}
	records, err := s.records.ListByCategoryAndDate(ctx, categoryID, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list attendance")
	}

	byStudent := make(map[string]*models.AttendanceRecord, len(records))
	for i := range records {
		byStudent[records[i].StudentID] = &records[i]
	}

	roster := make([]models.RosterEntry, 0, len(students))
	for _, student := range students {
		roster = append(roster, models.RosterEntry{
			Student: student,
			Record:  byStudent[student.ID],
		})
	}
	return roster, nil
}

func parseDay(value string) (time.Time, error) {
	day, err := time.Parse(dayFormat, value)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date must be formatted as YYYY-MM-DD")
	}
	return day.UTC(), nil
}
