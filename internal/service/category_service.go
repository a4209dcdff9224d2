package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Cruzitooo/salsa-studio-api/internal/models"
	appErrors "github.com/Cruzitooo/salsa-studio-api/pkg/errors"
)

type categoryRepository interface {
	List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, int, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
}

// CategoryService manages class groups. It resolves each category's class
// weekday from the display name on create and rename, so schedules never
// re-parse names at read time.
type CategoryService struct {
	categories categoryRepository
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewCategoryService constructs the service.
func NewCategoryService(categories categoryRepository, v *validator.Validate, logger *zap.Logger) *CategoryService {
	if v == nil {
		v = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{categories: categories, validator: v, logger: logger}
}

// CreateCategoryRequest creates a new class group.
type CreateCategoryRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=120"`
	Icon     *string `json:"icon,omitempty"`
	Position int     `json:"position" validate:"gte=0"`
}

// UpdateCategoryRequest renames or reorders a class group.
type UpdateCategoryRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=120"`
	Icon     *string `json:"icon,omitempty"`
	Position int     `json:"position" validate:"gte=0"`
}

// List returns categories ordered by position.
func (s *CategoryService) List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, int, error) {
	categories, total, err := s.categories.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list categories")
	}
	return categories, total, nil
}

// Get loads one category by id.
func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load category")
	}
	return category, nil
}

// Create stores a new category with its weekday resolved from the name.
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*models.Category, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid category payload")
	}

	category := &models.Category{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(req.Name),
		Icon:     req.Icon,
		Position: req.Position,
	}
	category.Weekday = resolveWeekday(category.Name)
	if category.Weekday == nil {
		s.logger.Warn("category name carries no weekday word", zap.String("name", category.Name))
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to create category")
	}
	return category, nil
}

// Update renames or reorders a category, re-resolving the weekday when the
// name changed.
func (s *CategoryService) Update(ctx context.Context, id string, req UpdateCategoryRequest) (*models.Category, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid category payload")
	}

	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name != category.Name {
		category.Weekday = resolveWeekday(name)
	}
	category.Name = name
	category.Icon = req.Icon
	category.Position = req.Position

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to update category")
	}
	return category, nil
}

// Delete removes a category.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to delete category")
	}
	return nil
}

func resolveWeekday(name string) *int {
	weekday, ok := models.WeekdayForName(name)
	if !ok {
		return nil
	}
	value := int(weekday)
	return &value
}
