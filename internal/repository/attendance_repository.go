package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Cruzitooo/salsa-studio-api/internal/models"
)

const dayFormat = "2006-01-02"

// AttendanceRepository handles persistence for attendance records. The
// unique index on (student_id, category_id, date) is the single enforcement
// point of the one-record-per-day invariant; concurrent upserts on the same
// key serialise there.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// FindByKey returns the record for a (student, category, day) key, matching
// on calendar day. Returns sql.ErrNoRows when nothing is registered.
func (r *AttendanceRepository) FindByKey(ctx context.Context, studentID, categoryID string, date time.Time) (*models.AttendanceRecord, error) {
	query := `SELECT id, student_id, category_id, date, attended, justified, created_at, updated_at
FROM attendance_records
WHERE student_id = $1 AND category_id = $2 AND date = $3`
	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query, studentID, categoryID, date.Format(dayFormat)); err != nil {
		return nil, err
	}
	return &record, nil
}

// Upsert inserts or updates the record for its key and returns the stored row.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	query := `INSERT INTO attendance_records (id, student_id, category_id, date, attended, justified, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (student_id, category_id, date)
DO UPDATE SET attended = EXCLUDED.attended, justified = EXCLUDED.justified, updated_at = EXCLUDED.updated_at
RETURNING id, student_id, category_id, date, attended, justified, created_at, updated_at`
	var stored models.AttendanceRecord
	if err := r.db.GetContext(ctx, &stored, query,
		record.ID, record.StudentID, record.CategoryID, record.Date.Format(dayFormat),
		record.Attended, record.Justified, record.CreatedAt, record.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert attendance record: %w", err)
	}
	return &stored, nil
}

// ListMonth returns a student's records for a category in one month,
// ascending by day.
func (r *AttendanceRepository) ListMonth(ctx context.Context, studentID, categoryID string, year, month int) ([]models.AttendanceRecord, error) {
	start, end := monthBounds(year, month)
	query := `SELECT id, student_id, category_id, date, attended, justified, created_at, updated_at
FROM attendance_records
WHERE student_id = $1 AND category_id = $2 AND date >= $3 AND date < $4
ORDER BY date ASC`
	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, studentID, categoryID, start, end); err != nil {
		return nil, fmt.Errorf("list month attendance: %w", err)
	}
	return rows, nil
}

// MonthSummary counts attended and absent outcomes for a student and
// category over one month.
func (r *AttendanceRepository) MonthSummary(ctx context.Context, studentID, categoryID string, year, month int) (*models.AttendanceMonthSummary, error) {
	start, end := monthBounds(year, month)
	query := `SELECT attended, COUNT(*) AS cnt
FROM attendance_records
WHERE student_id = $1 AND category_id = $2 AND date >= $3 AND date < $4
GROUP BY attended`
	rows := []struct {
		Attended bool `db:"attended"`
		Count    int  `db:"cnt"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, studentID, categoryID, start, end); err != nil {
		return nil, fmt.Errorf("attendance month summary: %w", err)
	}
	summary := &models.AttendanceMonthSummary{}
	for _, row := range rows {
		if row.Attended {
			summary.AttendedCount += row.Count
		} else {
			summary.AbsentCount += row.Count
		}
	}
	return summary, nil
}

// ListByCategoryAndDate returns every record registered for a category on a
// given day, used to build the session roster.
func (r *AttendanceRepository) ListByCategoryAndDate(ctx context.Context, categoryID string, date time.Time) ([]models.AttendanceRecord, error) {
	query := `SELECT id, student_id, category_id, date, attended, justified, created_at, updated_at
FROM attendance_records
WHERE category_id = $1 AND date = $2`
	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, categoryID, date.Format(dayFormat)); err != nil {
		return nil, fmt.Errorf("list attendance by category and date: %w", err)
	}
	return rows, nil
}

func monthBounds(year, month int) (string, string) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return start.Format(dayFormat), end.Format(dayFormat)
}
