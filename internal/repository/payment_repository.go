package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Cruzitooo/salsa-studio-api/internal/models"
)

// PaymentRepository persists card and cash payments in their separate
// source tables. Merging into the unified shape happens in the service.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// CardByMonth returns card payments created in the given month, newest
// first.
func (r *PaymentRepository) CardByMonth(ctx context.Context, year, month int) ([]models.CardPayment, error) {
	start, end := monthBounds(year, month)
	query := `SELECT id, student_id, student_name, concept, amount, status, category_name, provider_ref, created_at
FROM card_payments
WHERE created_at >= $1 AND created_at < $2
ORDER BY created_at DESC`
	var rows []models.CardPayment
	if err := r.db.SelectContext(ctx, &rows, query, start, end); err != nil {
		return nil, fmt.Errorf("list card payments by month: %w", err)
	}
	return rows, nil
}

// CashByMonth returns cash payments created in the given month, newest
// first.
func (r *PaymentRepository) CashByMonth(ctx context.Context, year, month int) ([]models.CashPayment, error) {
	start, end := monthBounds(year, month)
	query := `SELECT id, student_id, student_name, concept, amount, status, category_name, created_at
FROM cash_payments
WHERE created_at >= $1 AND created_at < $2
ORDER BY created_at DESC`
	var rows []models.CashPayment
	if err := r.db.SelectContext(ctx, &rows, query, start, end); err != nil {
		return nil, fmt.Errorf("list cash payments by month: %w", err)
	}
	return rows, nil
}

// CardByStudent returns every card payment referencing a student, matching
// the stable id when present and falling back to the display name for
// legacy rows.
func (r *PaymentRepository) CardByStudent(ctx context.Context, studentID, studentName string) ([]models.CardPayment, error) {
	query := `SELECT id, student_id, student_name, concept, amount, status, category_name, provider_ref, created_at
FROM card_payments
WHERE student_id = $1 OR (student_id IS NULL AND student_name = $2)
ORDER BY created_at DESC`
	var rows []models.CardPayment
	if err := r.db.SelectContext(ctx, &rows, query, studentID, studentName); err != nil {
		return nil, fmt.Errorf("list card payments by student: %w", err)
	}
	return rows, nil
}

// CashByStudent returns every cash payment referencing a student.
func (r *PaymentRepository) CashByStudent(ctx context.Context, studentID, studentName string) ([]models.CashPayment, error) {
	query := `SELECT id, student_id, student_name, concept, amount, status, category_name, created_at
FROM cash_payments
WHERE student_id = $1 OR (student_id IS NULL AND student_name = $2)
ORDER BY created_at DESC`
	var rows []models.CashPayment
	if err := r.db.SelectContext(ctx, &rows, query, studentID, studentName); err != nil {
		return nil, fmt.Errorf("list cash payments by student: %w", err)
	}
	return rows, nil
}

// InsertCard stores a card payment.
func (r *PaymentRepository) InsertCard(ctx context.Context, payment *models.CardPayment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO card_payments (id, student_id, student_name, concept, amount, status, category_name, provider_ref, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query,
		payment.ID, payment.StudentID, payment.StudentName, payment.Concept, payment.Amount,
		payment.Status, payment.CategoryName, payment.ProviderRef, payment.CreatedAt); err != nil {
		return fmt.Errorf("insert card payment: %w", err)
	}
	return nil
}

// InsertCash stores a cash payment.
func (r *PaymentRepository) InsertCash(ctx context.Context, payment *models.CashPayment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO cash_payments (id, student_id, student_name, concept, amount, status, category_name, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query,
		payment.ID, payment.StudentID, payment.StudentName, payment.Concept, payment.Amount,
		payment.Status, payment.CategoryName, payment.CreatedAt); err != nil {
		return fmt.Errorf("insert cash payment: %w", err)
	}
	return nil
}
