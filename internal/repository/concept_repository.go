package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Cruzitooo/salsa-studio-api/internal/models"
)

// ConceptRepository persists the user-managed list of payment concepts.
type ConceptRepository struct {
	db *sqlx.DB
}

// NewConceptRepository constructs the repository.
func NewConceptRepository(db *sqlx.DB) *ConceptRepository {
	return &ConceptRepository{db: db}
}

// List returns every concept ordered by position.
func (r *ConceptRepository) List(ctx context.Context) ([]models.PaymentConcept, error) {
	var rows []models.PaymentConcept
	query := `SELECT name, position FROM payment_concepts ORDER BY position ASC, name ASC`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list payment concepts: %w", err)
	}
	return rows, nil
}

// Count returns the number of stored concepts.
func (r *ConceptRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM payment_concepts`); err != nil {
		return 0, fmt.Errorf("count payment concepts: %w", err)
	}
	return total, nil
}

// Insert stores a concept; duplicate names conflict on the primary key.
func (r *ConceptRepository) Insert(ctx context.Context, concept models.PaymentConcept) error {
	query := `INSERT INTO payment_concepts (name, position) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, query, concept.Name, concept.Position); err != nil {
		return fmt.Errorf("insert payment concept: %w", err)
	}
	return nil
}

// Delete removes a concept by name.
func (r *ConceptRepository) Delete(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM payment_concepts WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete payment concept: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
