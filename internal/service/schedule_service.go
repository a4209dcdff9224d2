package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/Cruzitooo/salsa-studio-api/internal/models"
	"github.com/Cruzitooo/salsa-studio-api/pkg/config"
	appErrors "github.com/Cruzitooo/salsa-studio-api/pkg/errors"
)

type scheduleCategoryReader interface {
	GetByID(ctx context.Context, id string) (*models.Category, error)
}

// ScheduleService derives the concrete session dates a category meets in a
// month. Dates are recomputed from scratch on every call.
type ScheduleService struct {
	categories scheduleCategoryReader
	cfg        config.ScheduleConfig
	logger     *zap.Logger
}

// NewScheduleService constructs the service.
func NewScheduleService(categories scheduleCategoryReader, cfg config.ScheduleConfig, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{categories: categories, cfg: cfg, logger: logger}
}

// SessionDates returns the ascending calendar dates the category meets in
// (year, month).
func (s *ScheduleService) SessionDates(ctx context.Context, categoryID string, year, month int) ([]time.Time, error) {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load category")
	}
	return s.DatesFor(category, year, month)
}

// DatesFor computes session dates for an already-loaded category.
func (s *ScheduleService) DatesFor(category *models.Category, year, month int) ([]time.Time, error) {
	if err := ValidateYearMonth(year, month); err != nil {
		return nil, err
	}

	weekday, ok := category.ClassWeekday()
	if !ok {
		// Rows predating the structured weekday column fall back to the
		// name parser once; new writes always store the resolved weekday.
		weekday, ok = models.WeekdayForName(category.Name)
	}
	if !ok {
		if s.cfg.UnknownWeekdayPolicy != config.UnknownWeekdayDefault {
			s.logger.Warn("category has no recognisable weekday, returning empty schedule",
				zap.String("category", category.Name))
			return []time.Time{}, nil
		}
		weekday = time.Weekday(s.cfg.DefaultWeekday)
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	dates := make([]time.Time, 0, 5)
	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if date.Weekday() == weekday {
			dates = append(dates, date)
		}
	}
	return dates, nil
}

// ValidateYearMonth rejects calendar input the generator cannot enumerate.
func ValidateYearMonth(year, month int) error {
	if month < 1 || month > 12 {
		return appErrors.Clone(appErrors.ErrInvalidCalendar, "month must be between 1 and 12")
	}
	if year < 1900 || year > 2200 {
		return appErrors.Clone(appErrors.ErrInvalidCalendar, "year out of supported range")
	}
	return nil
}
