package models

import "time"

// Student represents a learner registered in the studio. The active flag
// hides a student from rosters without deleting their history.
type Student struct {
	ID           string    `db:"id" json:"id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone"`
	CategoryName string    `db:"category_name" json:"category_name"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search       string
	CategoryName string
	Active       *bool
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
