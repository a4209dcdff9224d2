package models

import "time"

// PaymentSource tags a unified payment with its origin. The tag is assigned
// when card and cash records are merged and never mutated afterwards.
type PaymentSource string

const (
	PaymentSourceCard PaymentSource = "card"
	PaymentSourceCash PaymentSource = "cash"
)

// Payment statuses are free-form strings carried over from the data entry
// flows; these are the common values.
const (
	PaymentStatusPaid    = "pagado"
	PaymentStatusPending = "pendiente"
)

// CategoryFilterAll bypasses category filtering in payment queries.
const CategoryFilterAll = "all"

// CardPayment is a payment originated through a payment link. It starts
// pending and is settled externally; StudentID is nullable for rows
// imported from before students carried stable identifiers.
type CardPayment struct {
	ID           string    `db:"id" json:"id"`
	StudentID    *string   `db:"student_id" json:"student_id,omitempty"`
	StudentName  string    `db:"student_name" json:"student_name"`
	Concept      string    `db:"concept" json:"concept"`
	Amount       float64   `db:"amount" json:"amount"`
	Status       string    `db:"status" json:"status"`
	CategoryName *string   `db:"category_name" json:"category_name,omitempty"`
	ProviderRef  *string   `db:"provider_ref" json:"provider_ref,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CashPayment is a payment entered by hand, created already paid.
type CashPayment struct {
	ID           string    `db:"id" json:"id"`
	StudentID    *string   `db:"student_id" json:"student_id,omitempty"`
	StudentName  string    `db:"student_name" json:"student_name"`
	Concept      string    `db:"concept" json:"concept"`
	Amount       float64   `db:"amount" json:"amount"`
	Status       string    `db:"status" json:"status"`
	CategoryName *string   `db:"category_name" json:"category_name,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// UnifiedPayment normalises a card or cash record into one common shape.
type UnifiedPayment struct {
	ID           string        `json:"id"`
	StudentID    *string       `json:"student_id,omitempty"`
	StudentName  string        `json:"student_name"`
	Concept      string        `json:"concept"`
	Amount       float64       `json:"amount"`
	Status       string        `json:"status"`
	CategoryName *string       `json:"category_name,omitempty"`
	Source       PaymentSource `json:"source"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Unified converts a card payment into the merged shape.
func (p CardPayment) Unified() UnifiedPayment {
	return UnifiedPayment{
		ID:           p.ID,
		StudentID:    p.StudentID,
		StudentName:  p.StudentName,
		Concept:      p.Concept,
		Amount:       p.Amount,
		Status:       p.Status,
		CategoryName: p.CategoryName,
		Source:       PaymentSourceCard,
		CreatedAt:    p.CreatedAt,
	}
}

// Unified converts a cash payment into the merged shape.
func (p CashPayment) Unified() UnifiedPayment {
	return UnifiedPayment{
		ID:           p.ID,
		StudentID:    p.StudentID,
		StudentName:  p.StudentName,
		Concept:      p.Concept,
		Amount:       p.Amount,
		Status:       p.Status,
		CategoryName: p.CategoryName,
		Source:       PaymentSourceCash,
		CreatedAt:    p.CreatedAt,
	}
}

// PaymentTotals sums amounts grouped by source plus overall.
type PaymentTotals struct {
	Card     float64 `json:"card"`
	Cash     float64 `json:"cash"`
	Combined float64 `json:"combined"`
}

// StudentBalance aggregates a student's cumulative payments against the
// configured price per class.
type StudentBalance struct {
	StudentID      string  `json:"student_id"`
	StudentName    string  `json:"student_name"`
	TotalPaid      float64 `json:"total_paid"`
	ClassesCovered int     `json:"classes_covered"`
}

// CategoryPaymentSummary is one dashboard card: how many students of a
// category have paid in the month, and how much came in.
type CategoryPaymentSummary struct {
	CategoryName  string  `json:"category_name"`
	PaidStudents  int     `json:"paid_students"`
	TotalStudents int     `json:"total_students"`
	Amount        float64 `json:"amount"`
}

// PaymentConcept is a named reason for a payment, user-managed with a few
// seeded defaults.
type PaymentConcept struct {
	Name     string `db:"name" json:"name"`
	Position int    `db:"position" json:"position"`
}
