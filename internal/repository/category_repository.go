package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Cruzitooo/salsa-studio-api/internal/models"
)

// CategoryRepository handles persistence for class categories.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository constructs the repository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List returns categories matching the filter, ordered by position.
func (r *CategoryRepository) List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, int, error) {
	where := "1=1"
	args := []interface{}{}
	if filter.Search != "" {
		where = "name ILIKE $1"
		args = append(args, "%"+filter.Search+"%")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, name, icon, position, weekday, created_at, updated_at
FROM categories WHERE %s
ORDER BY position ASC, name ASC
LIMIT %d OFFSET %d`, where, size, offset)
	var rows []models.Category
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM categories WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}
	return rows, total, nil
}

// GetByID returns one category.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	query := `SELECT id, name, icon, position, weekday, created_at, updated_at
FROM categories WHERE id = $1`
	var category models.Category
	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		return nil, err
	}
	return &category, nil
}

// Create stores a new category.
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	now := time.Now().UTC()
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	category.CreatedAt = now
	category.UpdatedAt = now
	query := `INSERT INTO categories (id, name, icon, position, weekday, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query,
		category.ID, category.Name, category.Icon, category.Position, category.Weekday,
		category.CreatedAt, category.UpdatedAt); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// Update rewrites a category's mutable fields.
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	category.UpdatedAt = time.Now().UTC()
	query := `UPDATE categories
SET name = $2, icon = $3, position = $4, weekday = $5, updated_at = $6
WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query,
		category.ID, category.Name, category.Icon, category.Position, category.Weekday,
		category.UpdatedAt); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete removes a category. Attendance and payment rows keep their
// references; cleanup is not cascaded.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
