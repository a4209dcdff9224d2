package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/Cruzitooo/salsa-studio-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func attendanceColumns() []string {
	return []string{"id", "student_id", "category_id", "date", "attended", "justified", "created_at", "updated_at"}
}

func TestAttendanceRepositoryFindByKey(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	day := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(attendanceColumns()).
		AddRow("att-1", "student-1", "cat-1", day, true, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, category_id, date, attended, justified")).
		WithArgs("student-1", "cat-1", "2025-09-01").
		WillReturnRows(rows)

	record, err := repo.FindByKey(context.Background(), "student-1", "cat-1", day)
	require.NoError(t, err)
	require.Equal(t, "att-1", record.ID)
	require.True(t, record.Attended)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryFindByKeyMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, category_id, date")).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByKey(context.Background(), "student-1", "cat-1", time.Now())
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	day := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(attendanceColumns()).
		AddRow("att-1", "student-1", "cat-1", day, true, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO attendance_records")).
		WillReturnRows(rows)

	record := &models.AttendanceRecord{StudentID: "student-1", CategoryID: "cat-1", Date: day, Attended: true}
	stored, err := repo.Upsert(context.Background(), record)
	require.NoError(t, err)
	require.Equal(t, "att-1", stored.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryMonthSummary(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	rows := sqlmock.NewRows([]string{"attended", "cnt"}).
		AddRow(true, 3).
		AddRow(false, 1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT attended, COUNT(*) AS cnt")).
		WithArgs("student-1", "cat-1", "2025-09-01", "2025-10-01").
		WillReturnRows(rows)

	summary, err := repo.MonthSummary(context.Background(), "student-1", "cat-1", 2025, 9)
	require.NoError(t, err)
	require.Equal(t, 3, summary.AttendedCount)
	require.Equal(t, 1, summary.AbsentCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListMonthBounds(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	// December wraps the upper bound into the next year.
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY date ASC")).
		WithArgs("student-1", "cat-1", "2025-12-01", "2026-01-01").
		WillReturnRows(sqlmock.NewRows(attendanceColumns()))

	_, err := repo.ListMonth(context.Background(), "student-1", "cat-1", 2025, 12)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
