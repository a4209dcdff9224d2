package models

import "time"

// AttendanceRecord holds the outcome for one (student, category, day).
// At most one record exists per key; day comparisons use calendar-day
// equality, never timestamps. Justified is meaningful only when the
// student did not attend.
type AttendanceRecord struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	CategoryID string    `db:"category_id" json:"category_id"`
	Date       time.Time `db:"date" json:"date"`
	Attended   bool      `db:"attended" json:"attended"`
	Justified  *bool     `db:"justified" json:"justified,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// AttendanceMonthSummary counts outcomes over one month for a student and
// category.
type AttendanceMonthSummary struct {
	AttendedCount int `json:"attended_count"`
	AbsentCount   int `json:"absent_count"`
}

// RosterEntry pairs a student with their attendance record for a session
// date. Record is nil when nothing has been registered yet, which the
// client renders as a warning.
type RosterEntry struct {
	Student Student           `json:"student"`
	Record  *AttendanceRecord `json:"record,omitempty"`
}
